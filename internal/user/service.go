package user

import (
	"context"
	"fmt"
	"log/slog"

	"clanstats-server/internal/auth"
	"clanstats-server/internal/history"
	apperrors "clanstats-server/internal/shared/errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

type Service struct {
	repo    *Repository
	history *history.Repository
	logger  *slog.Logger
}

func NewService(repo *Repository, historyRepo *history.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		history: historyRepo,
		logger:  logger,
	}
}

// Login checks credentials and issues a signed token. Inactive accounts
// fail with the same message as bad credentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	logger := s.logger.With("component", "user_service", "operation", "login", "username", username)

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if apperrors.GetType(err) == apperrors.ErrorTypeNotFound {
			return "", nil, apperrors.Unauthorized("invalid credentials")
		}
		return "", nil, err
	}

	if !u.Active {
		logger.Warn("Login attempt on deactivated account")
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Debug("Password mismatch")
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := auth.GenerateToken(u.ID, u.Username, u.Name, u.Role)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("Login successful", "user_id", u.ID, "role", u.Role)
	return token, u, nil
}

// Register creates a self-service account. The role is always member; a
// leader promotes people afterwards.
func (s *Service) Register(ctx context.Context, username, password, name string) (*User, error) {
	logger := s.logger.With("component", "user_service", "operation", "register", "username", username)

	if username == "" || password == "" || name == "" {
		return nil, apperrors.Validation("username, password and name are required")
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, apperrors.Validationf("username %q already exists", username)
	} else if apperrors.GetType(err) != apperrors.ErrorTypeNotFound {
		return nil, err
	}

	u, err := s.create(ctx, username, password, name, auth.RoleMember)
	if err != nil {
		return nil, err
	}

	entry := history.Entry{
		PlayerName: name,
		Field:      history.FieldRegister,
		ChangedBy:  history.SystemRegistrationActor,
	}
	if err := s.history.Append(ctx, s.repo.db, entry); err != nil {
		logger.Warn("Failed to record registration in history", "error", err)
	}

	logger.Info("User registered", "user_id", u.ID)
	return u, nil
}

// CreateUser is the leader-only path and accepts any role from the enum.
func (s *Service) CreateUser(ctx context.Context, username, password, name string, role auth.Role) (*User, error) {
	if username == "" || password == "" || name == "" {
		return nil, apperrors.Validation("username, password and name are required")
	}

	if !role.IsValid() {
		return nil, apperrors.Validationf("invalid role %q", role)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, apperrors.Validationf("username %q already exists", username)
	} else if apperrors.GetType(err) != apperrors.ErrorTypeNotFound {
		return nil, err
	}

	return s.create(ctx, username, password, name, role)
}

func (s *Service) create(ctx context.Context, username, password, name string, role auth.Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Create(ctx, username, string(hash), name, role)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListActive(ctx)
}

// ChangeRole updates a user's role and records the transition in the
// history log, packed into the actor field ("<actor> (<old> → <new>)").
func (s *Service) ChangeRole(ctx context.Context, id int, newRole auth.Role, actorName string) (*User, error) {
	logger := s.logger.With("component", "user_service", "operation", "change_role", "user_id", id)

	if !newRole.IsValid() {
		return nil, apperrors.Validationf("invalid role %q", newRole)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldRole := current.Role
	updated, err := s.repo.UpdateRole(ctx, id, newRole)
	if err != nil {
		return nil, err
	}

	entry := history.Entry{
		PlayerName: updated.Name,
		Field:      history.FieldRoleChange,
		ChangedBy:  RoleChangeActor(actorName, oldRole, newRole),
	}
	if err := s.history.Append(ctx, s.repo.db, entry); err != nil {
		logger.Warn("Failed to record role change in history", "error", err)
	}

	logger.Info("Role changed", "old_role", oldRole, "new_role", newRole)
	return updated, nil
}

// RoleChangeActor formats the change-log actor field for role changes.
func RoleChangeActor(actorName string, oldRole, newRole auth.Role) string {
	return fmt.Sprintf("%s (%s → %s)", actorName, oldRole, newRole)
}

// EnsureLeader creates the bootstrap leader account on first startup so a
// fresh database has someone who can manage users. No-op when the account
// exists or bootstrap credentials are not configured.
func (s *Service) EnsureLeader(ctx context.Context, username, password, name string) error {
	if username == "" || password == "" {
		return nil
	}

	logger := s.logger.With("component", "user_service", "operation", "ensure_leader", "username", username)

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		logger.Debug("Bootstrap leader already exists")
		return nil
	} else if apperrors.GetType(err) != apperrors.ErrorTypeNotFound {
		return err
	}

	if name == "" {
		name = username
	}

	if _, err := s.create(ctx, username, password, name, auth.RoleLeader); err != nil {
		return fmt.Errorf("failed to create bootstrap leader: %w", err)
	}

	logger.Info("Bootstrap leader account created")
	return nil
}
