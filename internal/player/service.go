package player

import (
	"context"
	"log/slog"

	"clanstats-server/internal/period"
	apperrors "clanstats-server/internal/shared/errors"
)

// ViewCache invalidates cached statistics views when a player's name or
// town hall changes; both are embedded in the computed view and town hall
// is its primary sort key. Satisfied by the stats view cache.
type ViewCache interface {
	Invalidate(ctx context.Context, periodID int)
}

type Service struct {
	repo    *Repository
	periods *period.Repository
	cache   ViewCache
	logger  *slog.Logger
}

func NewService(repo *Repository, periods *period.Repository, cache ViewCache, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		periods: periods,
		cache:   cache,
		logger:  logger,
	}
}

func (s *Service) ListPlayers(ctx context.Context) ([]Player, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) CreatePlayer(ctx context.Context, name string, townHall int) (*Player, error) {
	if err := validate(name, townHall); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, s.repo.db, name); err == nil {
		return nil, apperrors.Validationf("player %q already exists", name)
	} else if apperrors.GetType(err) != apperrors.ErrorTypeNotFound {
		return nil, err
	}

	return s.repo.Create(ctx, s.repo.db, name, townHall)
}

func (s *Service) UpdatePlayer(ctx context.Context, id int, name string, townHall int) (*Player, error) {
	if err := validate(name, townHall); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, name, townHall)
	if err != nil {
		return nil, err
	}

	s.invalidateActiveView(ctx)
	return p, nil
}

func (s *Service) DeactivatePlayer(ctx context.Context, id int) error {
	// Deactivation leaves the player's statistics visible, so the
	// computed view does not change and the cache stays valid.
	return s.repo.Deactivate(ctx, id)
}

// invalidateActiveView drops the active period's cached view after a
// player edit; the view joins the player's current name and town hall.
func (s *Service) invalidateActiveView(ctx context.Context) {
	if s.cache == nil {
		return
	}

	active, err := s.periods.FindActive(ctx)
	if err != nil {
		return
	}

	s.cache.Invalidate(ctx, active.ID)
}

func validate(name string, townHall int) error {
	if name == "" {
		return apperrors.Validation("player name is required")
	}
	if townHall < MinTownHall || townHall > MaxTownHall {
		return apperrors.Validationf("town hall level must be between %d and %d", MinTownHall, MaxTownHall)
	}
	return nil
}
