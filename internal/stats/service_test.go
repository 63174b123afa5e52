package stats

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clanstats-server/internal/history"
	"clanstats-server/internal/period"
	"clanstats-server/internal/player"
	"clanstats-server/internal/shared/database"
	apperrors "clanstats-server/internal/shared/errors"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := &database.DB{DB: sqlDB}
	service := NewService(
		NewRepository(db),
		period.NewRepository(db),
		player.NewRepository(db),
		history.NewRepository(db),
		NewCache(nil),
		slog.Default(),
	)
	return service, mock
}

func statJoinedRow(id, periodID, playerID, attacks, stars int, name string, townHall int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "period_id", "player_id", "attacks", "stars", "created_at", "updated_at", "name", "town_hall",
	}).AddRow(id, periodID, playerID, attacks, stars, now, now, name, townHall)
}

func statRow(id, periodID, playerID, attacks, stars int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "period_id", "player_id", "attacks", "stars", "created_at", "updated_at",
	}).AddRow(id, periodID, playerID, attacks, stars, now, now)
}

func activePeriodRow(id, totalWars int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "month", "year", "total_wars", "start_date", "end_date", "active", "created_at", "updated_at",
	}).AddRow(id, "Septiembre 2025", "septiembre", 2025, totalWars, now, nil, true, now, now)
}

func playerRow(id int, name string, townHall int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "town_hall", "active", "created_at", "updated_at",
	}).AddRow(id, name, townHall, true, now, now)
}

func TestActiveViewSortsByTownHallThenPerformance(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM periods WHERE active = TRUE").
		WillReturnRows(activePeriodRow(1, 5))

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "period_id", "player_id", "attacks", "stars", "created_at", "updated_at", "name", "town_hall",
	}).
		AddRow(1, 1, 10, 10, 30, now, now, "LowTH", 13).
		AddRow(2, 1, 11, 2, 2, now, now, "WeakHighTH", 15).
		AddRow(3, 1, 12, 10, 30, now, now, "StrongHighTH", 15)
	mock.ExpectQuery("FROM statistics s").WithArgs(1).WillReturnRows(rows)

	view, err := service.ActiveView(context.Background())
	require.NoError(t, err)
	require.Len(t, view, 3)

	assert.Equal(t, "StrongHighTH", view[0].Name)
	assert.Equal(t, "WeakHighTH", view[1].Name)
	assert.Equal(t, "LowTH", view[2].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveViewWithoutActivePeriod(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM periods WHERE active = TRUE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := service.ActiveView(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.GetType(err))
}

func TestUpdateStatisticRejectsExcessStars(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.UpdateStatistic(context.Background(), 1, 3, 10, "Leader")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	assert.Contains(t, err.Error(), "stars cannot exceed 9 with 3 attacks")
}

func TestUpdateStatisticRejectsNegativeValues(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.UpdateStatistic(context.Background(), 1, -1, 0, "Leader")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))

	_, err = service.UpdateStatistic(context.Background(), 1, 0, -1, "Leader")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
}

func TestUpdateStatisticRecordsHistoryPerChangedField(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM statistics s").WithArgs(7).
		WillReturnRows(statJoinedRow(7, 1, 2, 4, 6, "Kratos", 15))

	// Only attacks changed, so exactly one history insert.
	mock.ExpectExec("INSERT INTO history").
		WithArgs(7, "Kratos", history.FieldAttacks, 4, 5, "Leader").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectQuery("UPDATE statistics SET").WithArgs(7, 5, 6).
		WillReturnRows(statRow(7, 1, 2, 5, 6))
	mock.ExpectCommit()

	updated, err := service.UpdateStatistic(context.Background(), 7, 5, 6, "Leader")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Attacks)
	assert.Equal(t, 6, updated.Stars)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatisticRecordsBothFieldsWhenBothChange(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM statistics s").WithArgs(7).
		WillReturnRows(statJoinedRow(7, 1, 2, 4, 6, "Kratos", 15))

	mock.ExpectExec("INSERT INTO history").
		WithArgs(7, "Kratos", history.FieldAttacks, 4, 5, "Leader").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO history").
		WithArgs(7, "Kratos", history.FieldStars, 6, 9, "Leader").
		WillReturnResult(sqlmock.NewResult(2, 1))

	mock.ExpectQuery("UPDATE statistics SET").WithArgs(7, 5, 9).
		WillReturnRows(statRow(7, 1, 2, 5, 9))
	mock.ExpectCommit()

	_, err := service.UpdateStatistic(context.Background(), 7, 5, 9, "Leader")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatisticSkipsHistoryWhenUnchanged(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM statistics s").WithArgs(7).
		WillReturnRows(statJoinedRow(7, 1, 2, 4, 6, "Kratos", 15))

	// No history insert expected before the update.
	mock.ExpectQuery("UPDATE statistics SET").WithArgs(7, 4, 6).
		WillReturnRows(statRow(7, 1, 2, 4, 6))
	mock.ExpectCommit()

	_, err := service.UpdateStatistic(context.Background(), 7, 4, 6, "Leader")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPlayerRejectsFullRoster(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM periods WHERE active = TRUE").
		WillReturnRows(activePeriodRow(1, 5))
	mock.ExpectQuery("SELECT COUNT").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(MaxPlayersPerPeriod))

	_, err := service.AddPlayer(context.Background(), "Newcomer", 14, 0, 0, "Leader")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	assert.Contains(t, err.Error(), "maximum of 50 players")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPlayerRejectsDuplicateInPeriod(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM periods WHERE active = TRUE").
		WillReturnRows(activePeriodRow(1, 5))
	mock.ExpectQuery("SELECT COUNT").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM players WHERE name").WithArgs("Kratos").
		WillReturnRows(playerRow(2, "Kratos", 15))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := service.AddPlayer(context.Background(), "Kratos", 15, 0, 0, "Leader")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	assert.Contains(t, err.Error(), `already in this period`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPlayerValidatesInput(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.AddPlayer(ctx, "", 14, 0, 0, "Leader")
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))

	_, err = service.AddPlayer(ctx, "Kratos", 0, 0, 0, "Leader")
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))

	_, err = service.AddPlayer(ctx, "Kratos", 18, 0, 0, "Leader")
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))

	_, err = service.AddPlayer(ctx, "Kratos", 14, 2, 7, "Leader")
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
}

func TestImportCreatesPeriodAndStatistics(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE periods SET active = FALSE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO periods").
		WillReturnRows(activePeriodRow(2, 6))

	// Row 1: existing player.
	mock.ExpectQuery("FROM players WHERE name").WithArgs("Kratos").
		WillReturnRows(playerRow(2, "Kratos", 15))
	mock.ExpectQuery("INSERT INTO statistics").WithArgs(2, 2, 10, 25).
		WillReturnRows(statRow(20, 2, 2, 10, 25))

	// Row 2: unknown player gets created.
	mock.ExpectQuery("FROM players WHERE name").WithArgs("Atreus").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("INSERT INTO players").WithArgs("Atreus", 13).
		WillReturnRows(playerRow(9, "Atreus", 13))
	mock.ExpectQuery("INSERT INTO statistics").WithArgs(2, 9, 8, 20).
		WillReturnRows(statRow(21, 2, 9, 8, 20))

	mock.ExpectCommit()

	rows := []ImportRow{
		{Name: "Kratos", TownHall: 15, Attacks: 10, Stars: 25},
		{Name: "", TownHall: 14, Attacks: 4, Stars: 4}, // blank, filtered
		{Name: "Atreus", TownHall: 13, Attacks: 8, Stars: 20},
	}

	newPeriod, err := service.Import(context.Background(), "Septiembre 2025", 6, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, newPeriod.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRollsBackOnBadRow(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE periods SET active = FALSE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO periods").
		WillReturnRows(activePeriodRow(2, 6))

	mock.ExpectQuery("FROM players WHERE name").WithArgs("Kratos").
		WillReturnRows(playerRow(2, "Kratos", 15))
	mock.ExpectQuery("INSERT INTO statistics").WithArgs(2, 2, 10, 25).
		WillReturnRows(statRow(20, 2, 2, 10, 25))

	// Second row breaks the star bound; everything rolls back.
	mock.ExpectRollback()

	rows := []ImportRow{
		{Name: "Kratos", TownHall: 15, Attacks: 10, Stars: 25},
		{Name: "Atreus", TownHall: 13, Attacks: 2, Stars: 7},
	}

	_, err := service.Import(context.Background(), "Septiembre 2025", 6, rows)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	assert.Contains(t, err.Error(), `stars cannot exceed 6 with 2 attacks (player "Atreus")`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRejectsOversizedRoster(t *testing.T) {
	service, _ := newTestService(t)

	rows := make([]ImportRow, MaxPlayersPerPeriod+1)
	for i := range rows {
		rows[i] = ImportRow{Name: "Player", TownHall: 10}
	}

	_, err := service.Import(context.Background(), "Octubre 2025", 4, rows)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	assert.Contains(t, err.Error(), "import exceeds the maximum of 50 players")
}

func TestImportRejectsTownHallAboveRange(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Import(context.Background(), "Octubre 2025", 4, []ImportRow{
		{Name: "Kratos", TownHall: 15},
		{Name: "Mimir", TownHall: 25},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	assert.Contains(t, err.Error(), `town hall level must be between 1 and 17 (player "Mimir")`)
}

func TestImportRejectsEmptyAndInvalidInput(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Import(ctx, "", 4, []ImportRow{{Name: "Kratos", TownHall: 15}})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))

	_, err = service.Import(ctx, "Octubre 2025", 0, []ImportRow{{Name: "Kratos", TownHall: 15}})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))

	// Every row filtered out leaves nothing to import.
	_, err = service.Import(ctx, "Octubre 2025", 4, []ImportRow{
		{Name: "", TownHall: 15},
		{Name: "Ghost", TownHall: 0},
	})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	assert.Contains(t, err.Error(), "no rows to import")
}
