package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/upb/petclinic/auth"
	"github.com/upb/petclinic/internal/observability"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/password"
	"github.com/upb/petclinic/repositories"
	"github.com/upb/petclinic/services/loginguard"
	"github.com/upb/petclinic/token"
	"go.uber.org/zap"
)

// dummyPassword backs the hash verified when no usable account exists.
const dummyPassword = "petclinic-timing-equalizer-0"

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	Issue(subject string, now time.Time) (*token.Token, error)
}

// LoginRequest is the credentials payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// SignupRequest is the payload for creating an account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=120"`
}

// TokenResponse is returned by login and signup.
type TokenResponse struct {
	Token string `json:"token"`
}

// AuthService handles login and signup.
type AuthService struct {
	users     repositories.UserRepository
	txManager repositories.TransactionManager
	resolver  auth.Resolver
	hasher    password.Hasher
	tokens    TokenIssuer
	guard     loginguard.Limiter
	metrics   observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
	dummyHash string
}

// NewAuthService creates a new AuthService. It hashes dummyPassword once
// with hasher.
func NewAuthService(
	users repositories.UserRepository,
	txManager repositories.TransactionManager,
	resolver auth.Resolver,
	hasher password.Hasher,
	tokens TokenIssuer,
	guard loginguard.Limiter,
	metrics observability.Metrics,
	logger *zap.Logger,
) (*AuthService, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, WrapInternal("failed to prepare password hasher", err)
	}
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &AuthService{
		users:     users,
		txManager: txManager,
		resolver:  resolver,
		hasher:    hasher,
		tokens:    tokens,
		guard:     guard,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummyHash,
	}, nil
}

// WithClock replaces the clock used to stamp issued tokens.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login verifies the credentials and returns a fresh token.
// Every rejection is ErrInvalidCredentials, except a locked subject which
// gets ErrTooManyAttempts. The attempt is counted before the password is
// checked so parallel guesses cannot slip past the limit.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	email := models.NormalizeEmail(req.Email)

	if retryAfter, locked := s.reserve(ctx, email); locked {
		s.metrics.RecordLogin(observability.ResultLocked)
		s.logger.Warn("login refused, too many attempts",
			zap.String("email", email),
			zap.Duration("retry_after", retryAfter))
		return nil, ErrTooManyAttempts.WithDetail("retry_after_seconds", int((retryAfter+time.Second-1)/time.Second))
	}

	principal, err := s.resolver.Resolve(ctx, email)
	if err == nil && principal == nil {
		err = auth.ErrPrincipalNotFound
	}
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrPrincipalNotFound), errors.Is(err, auth.ErrPrincipalDisabled):
		_, _ = password.Verify(req.Password, s.dummyHash)
		s.reject(email, err.Error())
		return nil, ErrInvalidCredentials
	default:
		s.logger.Error("failed to resolve principal", zap.String("email", email), zap.Error(err))
		return nil, WrapInternal("failed to authenticate", err)
	}

	ok, err := password.Verify(req.Password, principal.PasswordHash)
	if err != nil {
		s.logger.Error("stored credential is unreadable",
			zap.String("email", email),
			zap.Error(err))
		s.reject(email, "corrupt credential")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.reject(email, "wrong password")
		return nil, ErrInvalidCredentials
	}

	if s.guard != nil {
		if err := s.guard.Reset(ctx, email); err != nil {
			s.logger.Warn("failed to reset login guard", zap.String("email", email), zap.Error(err))
		}
	}

	s.metrics.RecordLogin(observability.ResultSuccess)
	s.logger.Info("login succeeded", zap.String("email", email))

	return s.issue(email)
}

// Signup creates a ROLE_USER account and returns a token for it.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	email := models.NormalizeEmail(req.Email)

	if ok, reasons := password.DefaultPolicy.Validate(req.Password); !ok {
		return nil, ErrWeakPassword.WithDetail("reasons", reasons)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(email, req.Name, hash, models.RoleUser)

	err = s.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		_, err := s.users.GetByEmail(ctx, email)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return s.users.Create(ctx, user)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrEmailTaken), errors.Is(err, repositories.ErrDuplicate):
		return nil, ErrEmailTaken
	default:
		s.logger.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, ErrDatabaseError.WithCause(err)
	}

	s.logger.Info("user signed up", zap.String("email", email), zap.String("user_id", user.ID.String()))

	return s.issue(email)
}

func (s *AuthService) issue(subject string) (*TokenResponse, error) {
	tok, err := s.tokens.Issue(subject, s.now())
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}
	s.metrics.RecordTokenIssued()
	return &TokenResponse{Token: tok.Value}, nil
}

// reserve counts one attempt for email and reports whether the guard refuses
// it. Guard failures let the attempt through.
func (s *AuthService) reserve(ctx context.Context, email string) (time.Duration, bool) {
	if s.guard == nil {
		return 0, false
	}
	res, err := s.guard.Reserve(ctx, email)
	if err != nil {
		s.logger.Warn("login guard unavailable", zap.String("email", email), zap.Error(err))
		return 0, false
	}
	return res.RetryAfter, !res.Allowed
}

func (s *AuthService) reject(email, reason string) {
	s.metrics.RecordLogin(observability.ResultFailure)
	s.logger.Info("login rejected",
		zap.String("email", email),
		zap.String("reason", strings.ReplaceAll(reason, " ", "_")))
}
