package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// AuthService coordinates registration, email verification and login flows.
type AuthService struct {
	store           repository.Store
	dispatcher      events.Dispatcher
	tokenMgr        *auth.TokenManager
	bcryptCost      int
	verificationTTL time.Duration
	now             Clock
	logger          *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Tokens     *auth.TokenManager
	Clock      Clock
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	ttl := time.Duration(cfg.Auth.VerificationTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		store:           deps.Store,
		dispatcher:      deps.Dispatcher,
		tokenMgr:        tokens,
		bcryptCost:      cfg.Auth.BcryptCost,
		verificationTTL: ttl,
		now:             deps.Clock.orDefault(),
		logger:          loggerOrNop(deps.Logger),
	}
}

// Tokens exposes the token manager the auth middleware validates against.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterVolunteer creates an unverified volunteer account and its verification token.
func (s *AuthService) RegisterVolunteer(ctx context.Context, name, email, password string) (*domain.User, error) {
	if err := requireFields(map[string]string{"name": name, "email": email, "password": password}); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if _, err := s.store.Repos().Users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("user with this email already exists", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	tokenValue, err := auth.NewVerificationToken()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: domain.RoleVolunteer}
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return repos.VerificationTokens.Create(ctx, &domain.VerificationToken{
			UserID:    user.ID,
			Token:     tokenValue,
			ExpiresAt: s.now().Add(s.verificationTTL),
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("user with this email already exists", map[string]any{"email": email})
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("volunteer registered", zap.String("user_id", user.ID))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserRegistered, user.Identity(), s.now(),
		events.UserRegisteredPayload{User: *user, Token: tokenValue}))
	return user, nil
}

// VerifyEmail consumes a verification token and marks its user verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if err := requireFields(map[string]string{"token": token}); err != nil {
		return err
	}
	repos := s.store.Repos()
	vt, err := repos.VerificationTokens.GetByToken(ctx, token)
	if err != nil {
		return lookupError(err, "verification token", nil)
	}

	now := s.now()
	if vt.Expired(now) {
		if err := repos.VerificationTokens.Delete(ctx, vt.ID); err != nil {
			s.logger.Warn("expired token cleanup failed", zap.Error(err))
		}
		return apperrors.NewInvalidRange("verification token has expired", map[string]any{"expired_at": vt.ExpiresAt})
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.MarkVerified(ctx, vt.UserID, now); err != nil {
			return err
		}
		return repos.VerificationTokens.Delete(ctx, vt.ID)
	})
	if err != nil {
		return lookupError(err, "user", map[string]any{"user_id": vt.UserID})
	}
	s.logger.Info("email verified", zap.String("user_id", vt.UserID))
	return nil
}

// Login checks credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.store.Repos().Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Verified() {
		return nil, "", time.Time{}, apperrors.NewForbidden("email address not verified")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// IdentityFor loads the identity behind a token subject.
func (s *AuthService) IdentityFor(ctx context.Context, userID string) (domain.Identity, error) {
	user, err := s.store.Repos().Users.GetByID(ctx, userID)
	if err != nil {
		return domain.Identity{}, lookupError(err, "user", map[string]any{"user_id": userID})
	}
	return user.Identity(), nil
}

// BootstrapSuperAdmin creates the super admin account if no account uses email yet.
// It reports whether an account was created.
func (s *AuthService) BootstrapSuperAdmin(ctx context.Context, name, email, password string) (*domain.User, bool, error) {
	if err := requireFields(map[string]string{"name": name, "email": email, "password": password}); err != nil {
		return nil, false, err
	}
	email = normalizeEmail(email)
	repos := s.store.Repos()
	if existing, err := repos.Users.GetByEmail(ctx, email); err == nil {
		if existing.Role != domain.RoleSuperAdmin {
			return nil, false, apperrors.NewConflict("email belongs to a non super admin account", map[string]any{"email": email})
		}
		return existing, false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, false, apperrors.NewInternalError(err)
	}
	verifiedAt := s.now()
	user := &domain.User{
		Name:            name,
		Email:           email,
		PasswordHash:    hash,
		Role:            domain.RoleSuperAdmin,
		EmailVerifiedAt: &verifiedAt,
	}
	if err := repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, false, apperrors.NewInternalError(err)
	}
	s.logger.Info("super admin created", zap.String("user_id", user.ID))
	return user, true, nil
}
