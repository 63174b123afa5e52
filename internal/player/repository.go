package player

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"clanstats-server/internal/shared/database"
	apperrors "clanstats-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const playerColumns = "id, name, town_hall, active, created_at, updated_at"

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.Name, &p.TownHall, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListActive(ctx context.Context) ([]Player, error) {
	logger := slog.With("component", "player_repository", "operation", "list_active")

	query := fmt.Sprintf(`
		SELECT %s FROM players
		WHERE active = TRUE
		ORDER BY name ASC
	`, playerColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query players", "error", err)
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.TownHall, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			logger.Error("Failed to scan player row", "error", err)
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	logger.Debug("Players retrieved", "count", len(players))
	return players, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Player, error) {
	query := fmt.Sprintf("SELECT %s FROM players WHERE id = $1", playerColumns)

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("player %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (r *Repository) FindByName(ctx context.Context, exec database.Executor, name string) (*Player, error) {
	query := fmt.Sprintf("SELECT %s FROM players WHERE name = $1", playerColumns)

	p, err := scanPlayer(exec.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("player %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, exec database.Executor, name string, townHall int) (*Player, error) {
	logger := slog.With(
		"component", "player_repository",
		"operation", "create",
		"name", name,
		"town_hall", townHall,
	)
	logger.Info("Creating new player")

	query := fmt.Sprintf(`
		INSERT INTO players (name, town_hall)
		VALUES ($1, $2)
		RETURNING %s
	`, playerColumns)

	p, err := scanPlayer(exec.QueryRowContext(ctx, query, name, townHall))
	if err != nil {
		logger.Error("Failed to create player", "error", err)
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return p, nil
}

// FindOrCreate resolves a player by name, creating it with the given town
// hall level when absent. Runs on the supplied Executor so imports stay
// inside one transaction.
func (r *Repository) FindOrCreate(ctx context.Context, exec database.Executor, name string, townHall int) (*Player, error) {
	p, err := r.FindByName(ctx, exec, name)
	if err == nil {
		return p, nil
	}
	if apperrors.GetType(err) != apperrors.ErrorTypeNotFound {
		return nil, err
	}

	return r.Create(ctx, exec, name, townHall)
}

func (r *Repository) Update(ctx context.Context, id int, name string, townHall int) (*Player, error) {
	logger := slog.With("component", "player_repository", "operation", "update", "player_id", id)

	query := fmt.Sprintf(`
		UPDATE players SET name = $2, town_hall = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, playerColumns)

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id, name, townHall))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("player %d not found", id)
	}
	if err != nil {
		logger.Error("Failed to update player", "error", err)
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return p, nil
}

// Deactivate soft-deletes a player; their statistics stay in place.
func (r *Repository) Deactivate(ctx context.Context, id int) error {
	logger := slog.With("component", "player_repository", "operation", "deactivate", "player_id", id)

	result, err := r.db.ExecContext(ctx,
		"UPDATE players SET active = FALSE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		logger.Error("Failed to deactivate player", "error", err)
		return fmt.Errorf("failed to deactivate player: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation result: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("player %d not found", id)
	}

	logger.Info("Player deactivated")
	return nil
}
