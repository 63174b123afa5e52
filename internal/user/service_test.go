package user

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"clanstats-server/internal/auth"
	"clanstats-server/internal/history"
	"clanstats-server/internal/shared/config"
	"clanstats-server/internal/shared/database"
	apperrors "clanstats-server/internal/shared/errors"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenExpiration: time.Hour,
		},
	}

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := &database.DB{DB: sqlDB}
	service := NewService(NewRepository(db), history.NewRepository(db), slog.Default())
	return service, mock
}

func userRow(id int, username, passwordHash, name string, role auth.Role, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "password_hash", "name", "role", "active", "created_at", "updated_at",
	}).AddRow(id, username, passwordHash, name, string(role), active, now, now)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginIssuesTokenWithIdentityClaims(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("kratos").
		WillReturnRows(userRow(1, "kratos", hashFor(t, "boy"), "Kratos", auth.RoleLeader, true))

	token, u, err := service.Login(context.Background(), "kratos", "boy")
	require.NoError(t, err)
	assert.Equal(t, "kratos", u.Username)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "Kratos", claims.Name)
	assert.Equal(t, auth.RoleLeader, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("kratos").
		WillReturnRows(userRow(1, "kratos", hashFor(t, "boy"), "Kratos", auth.RoleLeader, true))

	_, _, err := service.Login(context.Background(), "kratos", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetType(err))
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginRejectsUnknownUserWithSameMessage(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, _, err := service.Login(context.Background(), "ghost", "anything")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetType(err))
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("kratos").
		WillReturnRows(userRow(1, "kratos", hashFor(t, "boy"), "Kratos", auth.RoleLeader, false))

	_, _, err := service.Login(context.Background(), "kratos", "boy")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.GetType(err))
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestRegisterAlwaysCreatesMember(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("atreus").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("atreus", sqlmock.AnyArg(), "Atreus", "member").
		WillReturnRows(userRow(2, "atreus", "x", "Atreus", auth.RoleMember, true))
	mock.ExpectExec("INSERT INTO history").
		WithArgs(nil, "Atreus", history.FieldRegister, 0, 0, history.SystemRegistrationActor).
		WillReturnResult(sqlmock.NewResult(1, 1))

	u, err := service.Register(context.Background(), "atreus", "secret", "Atreus")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleMember, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("kratos").
		WillReturnRows(userRow(1, "kratos", "x", "Kratos", auth.RoleLeader, true))

	_, err := service.Register(context.Background(), "kratos", "secret", "Impostor")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	assert.Contains(t, err.Error(), `username "kratos" already exists`)
}

func TestRegisterRequiresAllFields(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for _, tc := range []struct{ username, password, name string }{
		{"", "secret", "Name"},
		{"user", "", "Name"},
		{"user", "secret", ""},
	} {
		_, err := service.Register(ctx, tc.username, tc.password, tc.name)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreateUser(context.Background(), "new", "secret", "New", auth.Role("elder"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
}

func TestChangeRoleRecordsTransitionInHistory(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE id").WithArgs(2).
		WillReturnRows(userRow(2, "atreus", "x", "Atreus", auth.RoleMember, true))
	mock.ExpectQuery("UPDATE users SET role").WithArgs(2, "co-leader").
		WillReturnRows(userRow(2, "atreus", "x", "Atreus", auth.RoleCoLeader, true))
	mock.ExpectExec("INSERT INTO history").
		WithArgs(nil, "Atreus", history.FieldRoleChange, 0, 0, "Kratos (member → co-leader)").
		WillReturnResult(sqlmock.NewResult(1, 1))

	u, err := service.ChangeRole(context.Background(), 2, auth.RoleCoLeader, "Kratos")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCoLeader, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleChangeActorFormat(t *testing.T) {
	actor := RoleChangeActor("Kratos", auth.RoleMember, auth.RoleLeader)
	assert.Equal(t, "Kratos (member → leader)", actor)
}

func TestEnsureLeaderSkipsExistingAccount(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("admin").
		WillReturnRows(userRow(1, "admin", "x", "Admin", auth.RoleLeader, true))

	err := service.EnsureLeader(context.Background(), "admin", "secret", "Admin")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureLeaderCreatesBootstrapAccount(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("admin").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("admin", sqlmock.AnyArg(), "Admin", "leader").
		WillReturnRows(userRow(1, "admin", "x", "Admin", auth.RoleLeader, true))

	err := service.EnsureLeader(context.Background(), "admin", "secret", "Admin")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureLeaderNoOpWithoutCredentials(t *testing.T) {
	service, _ := newTestService(t)

	require.NoError(t, service.EnsureLeader(context.Background(), "", "", ""))
}
