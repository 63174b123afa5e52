package user

import (
	"time"

	"clanstats-server/internal/auth"
)

// User is a clan account. Accounts are soft-deactivated, never deleted,
// so history entries keep pointing at a real actor name.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"nombre"`
	Role         auth.Role `json:"rol"`
	Active       bool      `json:"activo"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public is the representation embedded in auth responses.
type Public struct {
	Username string    `json:"username"`
	Name     string    `json:"nombre"`
	Role     auth.Role `json:"rol"`
}

func (u *User) Public() Public {
	return Public{
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
	}
}
