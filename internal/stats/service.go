package stats

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"clanstats-server/internal/history"
	"clanstats-server/internal/period"
	"clanstats-server/internal/player"
	apperrors "clanstats-server/internal/shared/errors"
)

const historyLimit = 100

type Service struct {
	repo    *Repository
	periods *period.Repository
	players *player.Repository
	history *history.Repository
	cache   *Cache
	logger  *slog.Logger
}

func NewService(
	repo *Repository,
	periods *period.Repository,
	players *player.Repository,
	historyRepo *history.Repository,
	cache *Cache,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		periods: periods,
		players: players,
		history: historyRepo,
		cache:   cache,
		logger:  logger,
	}
}

// ActiveView returns the computed, sorted statistics view of the active
// period: town hall descending, then performance descending.
func (s *Service) ActiveView(ctx context.Context) ([]Row, error) {
	logger := s.logger.With("component", "stats_service", "operation", "active_view")

	activePeriod, err := s.periods.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	if rows, ok := s.cache.Get(ctx, activePeriod.ID); ok {
		logger.Debug("Statistics view served from cache", "period_id", activePeriod.ID)
		return rows, nil
	}

	stats, err := s.repo.ListByPeriod(ctx, activePeriod.ID)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(stats))
	for _, stat := range stats {
		rows = append(rows, Compute(activePeriod.TotalWars, stat))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TownHall != rows[j].TownHall {
			return rows[i].TownHall > rows[j].TownHall
		}
		return rows[i].Performance > rows[j].Performance
	})

	s.cache.Set(ctx, activePeriod.ID, rows)

	logger.Debug("Statistics view computed", "period_id", activePeriod.ID, "rows", len(rows))
	return rows, nil
}

// UpdateStatistic sets a statistic's attack and star counts. One history
// entry is appended per field that actually changed, in the same
// transaction as the update, recorded under the acting user's name.
func (s *Service) UpdateStatistic(ctx context.Context, id, attacks, stars int, actorName string) (*Statistic, error) {
	logger := s.logger.With("component", "stats_service", "operation", "update", "statistic_id", id)

	if err := validateTally(attacks, stars); err != nil {
		return nil, err
	}

	tx, err := s.repo.db.BeginTxContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := s.repo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if current.Attacks != attacks {
		entry := history.Entry{
			StatisticID: &current.ID,
			PlayerName:  current.PlayerName,
			Field:       history.FieldAttacks,
			OldValue:    current.Attacks,
			NewValue:    attacks,
			ChangedBy:   actorName,
		}
		if err := s.history.Append(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if current.Stars != stars {
		entry := history.Entry{
			StatisticID: &current.ID,
			PlayerName:  current.PlayerName,
			Field:       history.FieldStars,
			OldValue:    current.Stars,
			NewValue:    stars,
			ChangedBy:   actorName,
		}
		if err := s.history.Append(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateValues(ctx, tx, id, attacks, stars)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, updated.PeriodID)

	logger.Info("Statistic updated", "attacks", attacks, "stars", stars, "changed_by", actorName)
	return updated, nil
}

// DeleteStatistic removes one player's row from its period. The player
// itself is untouched.
func (s *Service) DeleteStatistic(ctx context.Context, id int) error {
	current, err := s.repo.GetByID(ctx, s.repo.db, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, current.PeriodID)
	return nil
}

// AddPlayer puts a player on the active period's roster, creating the
// player record on first appearance.
func (s *Service) AddPlayer(ctx context.Context, name string, townHall, attacks, stars int, actorName string) (*Statistic, error) {
	logger := s.logger.With("component", "stats_service", "operation", "add_player", "player", name)

	if name == "" {
		return nil, apperrors.Validation("player name is required")
	}
	if townHall < player.MinTownHall || townHall > player.MaxTownHall {
		return nil, apperrors.Validationf("town hall level must be between %d and %d", player.MinTownHall, player.MaxTownHall)
	}
	if err := validateTally(attacks, stars); err != nil {
		return nil, err
	}

	activePeriod, err := s.periods.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountByPeriod(ctx, s.repo.db, activePeriod.ID)
	if err != nil {
		return nil, err
	}
	if count >= MaxPlayersPerPeriod {
		return nil, apperrors.Validationf("period already has the maximum of %d players", MaxPlayersPerPeriod)
	}

	tx, err := s.repo.db.BeginTxContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	p, err := s.players.FindOrCreate(ctx, tx, name, townHall)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForPlayer(ctx, tx, activePeriod.ID, p.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Validationf("player %q is already in this period", name)
	}

	stat, err := s.repo.Create(ctx, tx, activePeriod.ID, p.ID, attacks, stars)
	if err != nil {
		return nil, err
	}

	entry := history.Entry{
		PlayerName: name,
		Field:      history.FieldAddPlayer,
		ChangedBy:  actorName,
	}
	if err := s.history.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, activePeriod.ID)

	logger.Info("Player added to period", "period_id", activePeriod.ID, "statistic_id", stat.ID)
	return stat, nil
}

// Import replaces the active period from spreadsheet rows: all periods are
// deactivated, one new active period is created and every row becomes one
// statistic, finding or creating players by name. The whole import is one
// transaction; any bad row rolls everything back.
func (s *Service) Import(ctx context.Context, periodName string, totalWars int, rows []ImportRow) (*period.Period, error) {
	logger := s.logger.With("component", "stats_service", "operation", "import", "period_name", periodName)

	if periodName == "" {
		return nil, apperrors.Validation("period name is required")
	}
	if totalWars < 1 {
		return nil, apperrors.Validation("total wars must be at least 1")
	}

	// The client filters blank rows before posting, but the cap and the
	// star bound are re-checked here; a trusting import endpoint was how
	// oversized periods appeared in the first place.
	valid := rows[:0:0]
	for _, row := range rows {
		if row.Name == "" || row.TownHall < player.MinTownHall {
			continue
		}
		if row.TownHall > player.MaxTownHall {
			return nil, apperrors.Validationf("town hall level must be between %d and %d (player %q)",
				player.MinTownHall, player.MaxTownHall, row.Name)
		}
		valid = append(valid, row)
	}

	if len(valid) == 0 {
		return nil, apperrors.Validation("no rows to import")
	}
	if len(valid) > MaxPlayersPerPeriod {
		return nil, apperrors.Validationf("import exceeds the maximum of %d players per period", MaxPlayersPerPeriod)
	}

	now := time.Now()

	tx, err := s.repo.db.BeginTxContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.periods.DeactivateAll(ctx, tx); err != nil {
		return nil, err
	}

	newPeriod, err := s.periods.Create(ctx, tx, periodName, period.SpanishMonth(now), now.Year(), totalWars, now)
	if err != nil {
		return nil, err
	}

	for _, row := range valid {
		if row.Stars > MaxStars(row.Attacks) {
			return nil, apperrors.Validationf("stars cannot exceed %d with %d attacks (player %q)",
				MaxStars(row.Attacks), row.Attacks, row.Name)
		}

		p, err := s.players.FindOrCreate(ctx, tx, row.Name, row.TownHall)
		if err != nil {
			return nil, err
		}

		if _, err := s.repo.Create(ctx, tx, newPeriod.ID, p.ID, row.Attacks, row.Stars); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, newPeriod.ID)

	logger.Info("Import completed", "period_id", newPeriod.ID, "rows", len(valid), "total_wars", totalWars)
	return newPeriod, nil
}

// History returns the latest change-log entries, newest first.
func (s *Service) History(ctx context.Context) ([]history.Entry, error) {
	return s.history.Latest(ctx, historyLimit)
}

func validateTally(attacks, stars int) error {
	if attacks < 0 {
		return apperrors.Validation("attacks cannot be negative")
	}
	if stars < 0 {
		return apperrors.Validation("stars cannot be negative")
	}
	if stars > MaxStars(attacks) {
		return apperrors.Validationf("stars cannot exceed %d with %d attacks", MaxStars(attacks), attacks)
	}
	return nil
}
