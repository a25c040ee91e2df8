package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	// dummyHash is compared against when the email is unknown so a miss
	// costs as much as a wrong password.
	dummyHash string
	bootstrap config.BootstrapAdminConfig
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Validate *validator.Validate
	Logger   *zap.Logger
}

// RegisterInput describes a new dashboard account.
type RegisterInput struct {
	Username string
	Email    string
	Role     string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	Role      string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	validate := deps.Validate
	if validate == nil {
		validate = validator.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dummyHash, err := auth.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		logger.Warn("invalid bcrypt cost; unknown-user logins skip hashing", zap.Int("cost", cfg.BcryptCost), zap.Error(err))
	}
	return &AuthService{
		users:      deps.UserRepo,
		dummyHash:  dummyHash,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		bcryptCost: cfg.BcryptCost,
		bootstrap:  cfg.BootstrapAdmin,
		validate:   validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies credentials and issues a bearer token. A password still
// stored in plaintext is accepted once and rewritten as a bcrypt hash.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.dummyHash != "" {
				_ = auth.ComparePassword(s.dummyHash, password)
			}
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewUpstreamFailure("document store unavailable", err)
	}

	if auth.IsHashed(user.Password) {
		if err := auth.ComparePassword(user.Password, password); err != nil {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
	} else {
		if !auth.CompareLegacyPassword(user.Password, password) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		s.upgradePassword(ctx, user, password)
	}

	token, err := s.tokenMgr.GenerateToken(user.Email, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token.Token, Role: token.Role, ExpiresAt: token.ExpiresAt}, nil
}

// Register creates a new account storing only the password hash.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	user := &domain.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(input.Email),
		Role:     strings.TrimSpace(input.Role),
	}

	var missing []string
	if user.Username == "" {
		missing = append(missing, "username")
	}
	if user.Email == "" {
		missing = append(missing, "email")
	}
	if user.Role == "" {
		missing = append(missing, "role")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if err := s.validate.Var(user.Email, "email"); err != nil {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"field": "email"})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewValidationError("password cannot be hashed", map[string]any{"field": "password"})
	}
	user.Password = hash
	user.CreatedAt = s.now()

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, apperrors.NewUpstreamFailure("failed to create user", err)
	}
	return user, nil
}

// MigrateLegacyPasswords hashes every stored password that is not already a
// bcrypt hash and returns how many records were rewritten.
func (s *AuthService) MigrateLegacyPasswords(ctx context.Context) (int, error) {
	migrated := 0
	err := s.users.ForEach(ctx, func(user *domain.User) error {
		if user.Password == "" || auth.IsHashed(user.Password) {
			return nil
		}
		hash, err := auth.HashPassword(user.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return err
		}
		migrated++
		return nil
	})
	if err != nil {
		return migrated, apperrors.NewUpstreamFailure("password migration failed", err)
	}
	if migrated > 0 {
		s.logger.Info("migrated legacy passwords", zap.Int("count", migrated))
	}
	return migrated, nil
}

// EnsureBootstrapAdmin creates the configured administrator when it does
// not exist yet. It does nothing when no bootstrap credentials are set.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	if s.bootstrap.Email == "" || s.bootstrap.Password == "" {
		return nil
	}
	_, err := s.users.GetByEmail(ctx, s.bootstrap.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewUpstreamFailure("document store unavailable", err)
	}

	username := s.bootstrap.Username
	if username == "" {
		username = "admin"
	}
	_, err = s.Register(ctx, RegisterInput{
		Username: username,
		Email:    s.bootstrap.Email,
		Role:     domain.RoleAdmin,
		Password: s.bootstrap.Password,
	})
	if apperrors.HasCode(err, apperrors.CodeConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info("created bootstrap admin", zap.String("email", s.bootstrap.Email))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) upgradePassword(ctx context.Context, user *domain.User, password string) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn("failed to upgrade legacy password", zap.String("email", user.Email), zap.Error(err))
	}
}
