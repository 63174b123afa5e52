package period

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"clanstats-server/internal/shared/database"
	apperrors "clanstats-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const periodColumns = "id, name, month, year, total_wars, start_date, end_date, active, created_at, updated_at"

func scanPeriod(row *sql.Row) (*Period, error) {
	var p Period
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Month,
		&p.Year,
		&p.TotalWars,
		&p.StartDate,
		&p.EndDate,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindActive(ctx context.Context) (*Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE active = TRUE", periodColumns)

	p, err := scanPeriod(r.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("no active period")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active period: %w", err)
	}
	return p, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE id = $1", periodColumns)

	p, err := scanPeriod(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("period %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	return p, nil
}

// List returns all periods, newest start date first.
func (r *Repository) List(ctx context.Context) ([]Period, error) {
	logger := slog.With("component", "period_repository", "operation", "list")

	query := fmt.Sprintf("SELECT %s FROM periods ORDER BY start_date DESC", periodColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query periods", "error", err)
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		var p Period
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Month,
			&p.Year,
			&p.TotalWars,
			&p.StartDate,
			&p.EndDate,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan period row", "error", err)
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		periods = append(periods, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating periods: %w", err)
	}

	logger.Debug("Periods retrieved", "count", len(periods))
	return periods, nil
}

// DeactivateAll closes every open period. Always paired with an insert in
// the same transaction so exactly one period ends up active.
func (r *Repository) DeactivateAll(ctx context.Context, exec database.Executor) error {
	_, err := exec.ExecContext(ctx,
		"UPDATE periods SET active = FALSE, end_date = COALESCE(end_date, NOW()), updated_at = NOW() WHERE active = TRUE")
	if err != nil {
		return fmt.Errorf("failed to deactivate periods: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, exec database.Executor, name, month string, year, totalWars int, startDate time.Time) (*Period, error) {
	logger := slog.With(
		"component", "period_repository",
		"operation", "create",
		"name", name,
		"total_wars", totalWars,
	)
	logger.Info("Creating new active period")

	query := fmt.Sprintf(`
		INSERT INTO periods (name, month, year, total_wars, start_date, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING %s
	`, periodColumns)

	p, err := scanPeriod(exec.QueryRowContext(ctx, query, name, month, year, totalWars, startDate))
	if err != nil {
		logger.Error("Failed to create period", "error", err)
		return nil, fmt.Errorf("failed to create period: %w", err)
	}

	return p, nil
}

func (r *Repository) UpdateTotalWars(ctx context.Context, id, totalWars int) (*Period, error) {
	logger := slog.With(
		"component", "period_repository",
		"operation", "update_total_wars",
		"period_id", id,
		"total_wars", totalWars,
	)

	query := fmt.Sprintf(`
		UPDATE periods SET total_wars = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, periodColumns)

	p, err := scanPeriod(r.db.QueryRowContext(ctx, query, id, totalWars))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("period %d not found", id)
	}
	if err != nil {
		logger.Error("Failed to update total wars", "error", err)
		return nil, fmt.Errorf("failed to update total wars: %w", err)
	}

	logger.Info("Total wars updated")
	return p, nil
}
