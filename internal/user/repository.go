package user

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"clanstats-server/internal/auth"
	"clanstats-server/internal/shared/database"
	apperrors "clanstats-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = "id, username, password_hash, name, role, active, created_at, updated_at"

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	logger := slog.With("component", "user_repository", "operation", "find_by_username", "username", username)

	query := fmt.Sprintf("SELECT %s FROM users WHERE username = $1", userColumns)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("user %q not found", username)
	}
	if err != nil {
		logger.Error("Failed to find user by username", "error", err)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return u, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*User, error) {
	logger := slog.With("component", "user_repository", "operation", "get_by_id", "user_id", id)

	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("user %d not found", id)
	}
	if err != nil {
		logger.Error("Failed to get user by id", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (r *Repository) Create(ctx context.Context, username, passwordHash, name string, role auth.Role) (*User, error) {
	logger := slog.With(
		"component", "user_repository",
		"operation", "create",
		"username", username,
		"role", role,
	)
	logger.Info("Creating new user")

	query := fmt.Sprintf(`
		INSERT INTO users (username, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, userColumns)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, username, passwordHash, name, role))
	if err != nil {
		logger.Error("Failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created", "user_id", u.ID)
	return u, nil
}

// ListActive returns active users ordered leader first, then by name.
func (r *Repository) ListActive(ctx context.Context) ([]User, error) {
	logger := slog.With("component", "user_repository", "operation", "list_active")

	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE active = TRUE
		ORDER BY
			CASE role
				WHEN 'leader' THEN 0
				WHEN 'co-leader' THEN 1
				ELSE 2
			END,
			name ASC
	`, userColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query users", "error", err)
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.PasswordHash,
			&u.Name,
			&u.Role,
			&u.Active,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan user row", "error", err)
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	logger.Debug("Users retrieved", "count", len(users))
	return users, nil
}

func (r *Repository) UpdateRole(ctx context.Context, id int, role auth.Role) (*User, error) {
	logger := slog.With(
		"component", "user_repository",
		"operation", "update_role",
		"user_id", id,
		"role", role,
	)

	query := fmt.Sprintf(`
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, userColumns)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, role))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("user %d not found", id)
	}
	if err != nil {
		logger.Error("Failed to update user role", "error", err)
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	logger.Info("User role updated")
	return u, nil
}
