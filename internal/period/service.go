package period

import (
	"context"
	"log/slog"
	"time"

	apperrors "clanstats-server/internal/shared/errors"
)

// ViewCache invalidates cached statistics views when a period's metrics
// inputs change. Satisfied by the stats view cache; a no-op implementation
// is fine when caching is disabled.
type ViewCache interface {
	Invalidate(ctx context.Context, periodID int)
}

type Service struct {
	repo   *Repository
	cache  ViewCache
	logger *slog.Logger
}

func NewService(repo *Repository, cache ViewCache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *Service) GetActive(ctx context.Context) (*Period, error) {
	return s.repo.FindActive(ctx)
}

func (s *Service) ListPeriods(ctx context.Context) ([]Period, error) {
	return s.repo.List(ctx)
}

// CreatePeriod opens a new active period, closing all others in the same
// transaction so the single-active invariant can never be observed broken.
func (s *Service) CreatePeriod(ctx context.Context, name, month string, year, totalWars int, startDate time.Time) (*Period, error) {
	logger := s.logger.With("component", "period_service", "operation", "create", "name", name)

	if name == "" {
		return nil, apperrors.Validation("period name is required")
	}
	if totalWars < 1 {
		return nil, apperrors.Validation("total wars must be at least 1")
	}
	if startDate.IsZero() {
		startDate = time.Now()
	}

	tx, err := s.repo.db.BeginTxContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.repo.DeactivateAll(ctx, tx); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, tx, name, month, year, totalWars, startDate)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Info("Period created", "period_id", p.ID, "total_wars", p.TotalWars)
	return p, nil
}

// UpdateTotalWars changes a period's war count, which shifts every derived
// participation figure, so the cached view is dropped.
func (s *Service) UpdateTotalWars(ctx context.Context, id, totalWars int) (*Period, error) {
	if totalWars < 1 {
		return nil, apperrors.Validation("total wars must be at least 1")
	}

	p, err := s.repo.UpdateTotalWars(ctx, id, totalWars)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, p.ID)
	}

	return p, nil
}
