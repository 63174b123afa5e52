package history

import (
	"context"
	"fmt"
	"log/slog"

	"clanstats-server/internal/shared/database"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Append writes one entry. It takes an Executor so statistic edits can
// record their history inside the same transaction as the update.
func (r *Repository) Append(ctx context.Context, exec database.Executor, entry Entry) error {
	logger := slog.With(
		"component", "history_repository",
		"operation", "append",
		"field", entry.Field,
		"player", entry.PlayerName,
	)

	query := `
		INSERT INTO history (statistic_id, player_name, field, old_value, new_value, changed_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := exec.ExecContext(ctx, query,
		entry.StatisticID,
		entry.PlayerName,
		entry.Field,
		entry.OldValue,
		entry.NewValue,
		entry.ChangedBy,
	)
	if err != nil {
		logger.Error("Failed to append history entry", "error", err)
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	logger.Debug("History entry appended")
	return nil
}

// Latest returns up to limit entries, newest first.
func (r *Repository) Latest(ctx context.Context, limit int) ([]Entry, error) {
	logger := slog.With("component", "history_repository", "operation", "latest")

	query := `
		SELECT id, statistic_id, player_name, field, old_value, new_value, changed_by, created_at
		FROM history
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		logger.Error("Failed to query history", "error", err)
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.ID,
			&entry.StatisticID,
			&entry.PlayerName,
			&entry.Field,
			&entry.OldValue,
			&entry.NewValue,
			&entry.ChangedBy,
			&entry.CreatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan history row", "error", err)
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	logger.Debug("History entries retrieved", "count", len(entries))
	return entries, nil
}
