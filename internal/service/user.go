// Package service contains the business logic layer.
//
// Services orchestrate interactions between repositories, external APIs,
// and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database errors -> domain errors)
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/repository"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// BcryptCost is the cost factor for bcrypt password hashing.
	// Cost 12 provides good security (~250ms on modern hardware) while being
	// fast enough for login flows. NIST recommends cost 10+.
	//
	// SECURITY NOTE: This should NOT be configurable at runtime to prevent
	// accidental weakening. If you need to change it, do so here and redeploy.
	BcryptCost = 12

	// MinPasswordLength is the minimum password length for provisioned accounts.
	MinPasswordLength = 4

	// MaxPasswordLength prevents DoS via bcrypt on very long passwords.
	// bcrypt has a 72-byte limit anyway, but we cap earlier for clarity.
	MaxPasswordLength = 72
)

// =============================================================================
// Interface Definition
// =============================================================================

// UserService defines the interface for user-related operations.
//
// There is no self-service registration: accounts are provisioned at
// startup from configuration.
type UserService interface {
	// Provision creates a user account if the username is free. Existing
	// accounts are left untouched and returned as-is, so calling this on
	// every startup is safe.
	Provision(ctx context.Context, params domain.ProvisionParams) (*domain.User, error)

	// Login authenticates a user by username and password.
	// Returns the user with their subscription snapshot on success.
	// Returns domain.EUNAUTHORIZED for invalid credentials.
	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)

	// GetByUsername retrieves a user by username.
	// Returns domain.ENOTFOUND if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// =============================================================================
// Implementation
// =============================================================================

// userService is the concrete implementation of UserService.
type userService struct {
	queries *repository.Queries
	quota   QuotaService
	logger  *slog.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(queries *repository.Queries, quota QuotaService, logger *slog.Logger) UserService {
	return &userService{
		queries: queries,
		quota:   quota,
		logger:  logger,
	}
}

// Provision creates a user account if the username is free.
func (s *userService) Provision(ctx context.Context, params domain.ProvisionParams) (*domain.User, error) {
	const op = "UserService.Provision"

	params.Username = strings.TrimSpace(params.Username)
	params.Name = strings.TrimSpace(params.Name)

	if params.Username == "" {
		return nil, domain.Invalid(op, "Username is required")
	}
	if err := validatePassword(params.Password); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, "Invalid password")
	}
	if params.Role == "" {
		params.Role = domain.UserRoleUser
	}

	// Idempotent: an existing account wins
	existing, err := s.queries.GetUserByUsername(ctx, params.Username)
	if err == nil {
		existing.PasswordHash = ""
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "Failed to check username availability")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to hash password")
	}

	user, err := s.queries.CreateUser(ctx, repository.CreateUserParams{
		Username:     params.Username,
		PasswordHash: string(passwordHash),
		Name:         params.Name,
		Role:         string(params.Role),
	})
	if err != nil {
		// Unique constraint violation means a concurrent provision won
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "unique") {
			return nil, domain.Conflict(op, "Username already registered")
		}
		return nil, domain.Internal(err, op, "Failed to create user")
	}

	user.PasswordHash = ""
	s.logger.Info("user provisioned", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login authenticates a user by username and password.
//
// Security Considerations:
// - Constant-time password comparison via bcrypt
// - Generic error message prevents username enumeration
// - A dummy hash comparison keeps unknown-user latency close to the
//   known-user path
func (s *userService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	const op = "UserService.Login"

	username = strings.TrimSpace(username)

	user, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Use a dummy hash to maintain constant time
			dummyHash := "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW" // bcrypt hash of "dummy"
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, domain.Unauthorized(op, "Invalid username or password")
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		// Password mismatch - use same error message as user not found
		return nil, domain.Unauthorized(op, "Invalid username or password")
	}

	now := time.Now()
	if err := s.queries.UpdateLastLogin(ctx, user.Username, now); err != nil {
		// Non-fatal: login still succeeds
		s.logger.Warn("failed to update last login", "username", user.Username, "error", err)
	} else {
		user.LastLogin = &now
	}

	snapshot, err := s.quota.Snapshot(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)

	return &domain.LoginResult{
		User:         user,
		Subscription: snapshot,
	}, nil
}

// GetByUsername retrieves a user by username.
func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const op = "UserService.GetByUsername"

	user, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", username)
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}
	user.PasswordHash = ""
	return user, nil
}

// validatePassword enforces the password length bounds.
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password is too short")
	}
	if len(password) > MaxPasswordLength {
		return errors.New("password is too long")
	}
	return nil
}
