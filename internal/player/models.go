package player

import "time"

const (
	MinTownHall = 1
	MaxTownHall = 17
)

// Player is a clan member's in-game account. Players are created on first
// appearance in an import or manual add and soft-deactivated, never
// deleted, so statistics from old periods keep resolving.
type Player struct {
	ID        int       `json:"id"`
	Name      string    `json:"nombre"`
	TownHall  int       `json:"th"`
	Active    bool      `json:"activo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
