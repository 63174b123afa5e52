package stats

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

const statColumns = "s.id, s.period_id, s.player_id, s.attacks, s.stars, s.created_at, s.updated_at"

// ListByPeriod returns every statistic of a period joined with its
// player's current name and town hall.
func (r *Repository) ListByPeriod(ctx context.Context, periodID int) ([]StatWithPlayer, error) {
	logger := slog.With("component", "stats_repository", "operation", "list_by_period", "period_id", periodID)

	query := fmt.Sprintf(`
		SELECT %s, p.name, p.town_hall
		FROM statistics s
		JOIN players p ON p.id = s.player_id
		WHERE s.period_id = $1
	`, statColumns)

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		logger.Error("Failed to query statistics", "error", err)
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	var result []StatWithPlayer
	for rows.Next() {
		var s StatWithPlayer
		err := rows.Scan(
			&s.ID,
			&s.PeriodID,
			&s.PlayerID,
			&s.Attacks,
			&s.Stars,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.PlayerName,
			&s.TownHall,
		)
		if err != nil {
			logger.Error("Failed to scan statistic row", "error", err)
			return nil, fmt.Errorf("failed to scan statistic: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistics: %w", err)
	}

	logger.Debug("Statistics retrieved", "count", len(result))
	return result, nil
}

func (r *Repository) GetByID(ctx context.Context, exec database.Executor, id int) (*StatWithPlayer, error) {
	query := fmt.Sprintf(`
		SELECT %s, p.name, p.town_hall
		FROM statistics s
		JOIN players p ON p.id = s.player_id
		WHERE s.id = $1
	`, statColumns)

	var s StatWithPlayer
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.PeriodID,
		&s.PlayerID,
		&s.Attacks,
		&s.Stars,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.PlayerName,
		&s.TownHall,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("statistic %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statistic: %w", err)
	}

	return &s, nil
}

func (r *Repository) CountByPeriod(ctx context.Context, exec database.Executor, periodID int) (int, error) {
	var count int
	err := exec.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM statistics WHERE period_id = $1", periodID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count statistics: %w", err)
	}
	return count, nil
}

func (r *Repository) ExistsForPlayer(ctx context.Context, exec database.Executor, periodID, playerID int) (bool, error) {
	var exists bool
	err := exec.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM statistics WHERE period_id = $1 AND player_id = $2)",
		periodID, playerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check statistic existence: %w", err)
	}
	return exists, nil
}

func (r *Repository) Create(ctx context.Context, exec database.Executor, periodID, playerID, attacks, stars int) (*Statistic, error) {
	logger := slog.With(
		"component", "stats_repository",
		"operation", "create",
		"period_id", periodID,
		"player_id", playerID,
	)

	query := `
		INSERT INTO statistics (period_id, player_id, attacks, stars)
		VALUES ($1, $2, $3, $4)
		RETURNING id, period_id, player_id, attacks, stars, created_at, updated_at
	`

	var s Statistic
	err := exec.QueryRowContext(ctx, query, periodID, playerID, attacks, stars).Scan(
		&s.ID,
		&s.PeriodID,
		&s.PlayerID,
		&s.Attacks,
		&s.Stars,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		logger.Error("Failed to create statistic", "error", err)
		return nil, fmt.Errorf("failed to create statistic: %w", err)
	}

	logger.Debug("Statistic created", "statistic_id", s.ID)
	return &s, nil
}

func (r *Repository) UpdateValues(ctx context.Context, exec database.Executor, id, attacks, stars int) (*Statistic, error) {
	logger := slog.With("component", "stats_repository", "operation", "update_values", "statistic_id", id)

	query := `
		UPDATE statistics SET attacks = $2, stars = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, period_id, player_id, attacks, stars, created_at, updated_at
	`

	var s Statistic
	err := exec.QueryRowContext(ctx, query, id, attacks, stars).Scan(
		&s.ID,
		&s.PeriodID,
		&s.PlayerID,
		&s.Attacks,
		&s.Stars,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("statistic %d not found", id)
	}
	if err != nil {
		logger.Error("Failed to update statistic", "error", err)
		return nil, fmt.Errorf("failed to update statistic: %w", err)
	}

	return &s, nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	logger := slog.With("component", "stats_repository", "operation", "delete", "statistic_id", id)

	result, err := r.db.ExecContext(ctx, "DELETE FROM statistics WHERE id = $1", id)
	if err != nil {
		logger.Error("Failed to delete statistic", "error", err)
		return fmt.Errorf("failed to delete statistic: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("statistic %d not found", id)
	}

	logger.Info("Statistic deleted")
	return nil
}
