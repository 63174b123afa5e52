package history

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clanstats-server/internal/shared/database"
)

func newTestRepo(t *testing.T) (*Repository, *database.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := &database.DB{DB: sqlDB}
	return NewRepository(db), db, mock
}

func TestAppendWritesAllFields(t *testing.T) {
	repo, db, mock := newTestRepo(t)

	statID := 7
	mock.ExpectExec("INSERT INTO history").
		WithArgs(&statID, "Kratos", FieldAttacks, 4, 5, "Leader").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), db, Entry{
		StatisticID: &statID,
		PlayerName:  "Kratos",
		Field:       FieldAttacks,
		OldValue:    4,
		NewValue:    5,
		ChangedBy:   "Leader",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestReturnsNewestFirst(t *testing.T) {
	repo, _, mock := newTestRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "statistic_id", "player_name", "field", "old_value", "new_value", "changed_by", "created_at",
	}).
		AddRow(3, nil, "Atreus", FieldRegister, 0, 0, SystemRegistrationActor, now).
		AddRow(2, 7, "Kratos", FieldStars, 6, 9, "Leader", now.Add(-time.Minute))

	mock.ExpectQuery("FROM history").WithArgs(100).WillReturnRows(rows)

	entries, err := repo.Latest(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, FieldRegister, entries[0].Field)
	assert.Nil(t, entries[0].StatisticID)
	assert.Equal(t, SystemRegistrationActor, entries[0].ChangedBy)

	require.NotNil(t, entries[1].StatisticID)
	assert.Equal(t, 7, *entries[1].StatisticID)
	assert.Equal(t, 6, entries[1].OldValue)
	assert.Equal(t, 9, entries[1].NewValue)
}
