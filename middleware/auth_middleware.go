package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/upb/petclinic/auth"
	"github.com/upb/petclinic/internal/observability"
	"github.com/upb/petclinic/token"
	"go.uber.org/zap"
)

// TokenValidator checks a bearer token and returns its subject.
type TokenValidator interface {
	Validate(tokenString string, now time.Time) (string, error)
}

// AuthMiddleware installs the request's authentication context.
type AuthMiddleware struct {
	validator TokenValidator
	resolver  auth.Resolver
	metrics   observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(
	validator TokenValidator,
	resolver auth.Resolver,
	metrics observability.Metrics,
	logger *zap.Logger,
) *AuthMiddleware {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &AuthMiddleware{
		validator: validator,
		resolver:  resolver,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for token expiry.
func (m *AuthMiddleware) WithClock(now func() time.Time) *AuthMiddleware {
	m.now = now
	return m
}

// Authenticate reads the Authorization header and installs an
// authenticated context when the bearer token is valid and its subject
// resolves to an enabled principal. Every other request continues as
// anonymous; rejecting it is left to the authorization check.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ac, result := m.authenticate(ctx, r)
		m.metrics.RecordAuthentication(result)
		next.ServeHTTP(w, r.WithContext(auth.WithContext(ctx, ac)))
	})
}

func (m *AuthMiddleware) authenticate(ctx context.Context, r *http.Request) (*auth.Context, string) {
	requestID := GetRequestIDFromContext(ctx)

	raw, present := extractBearerToken(r)
	if !present {
		return auth.Anonymous(), observability.ResultAnonymous
	}
	if raw == "" {
		m.logger.Debug("malformed authorization header",
			zap.String("request_id", requestID))
		return auth.Anonymous(), observability.ResultInvalid
	}

	subject, err := m.validator.Validate(raw, m.now())
	if err != nil {
		result := observability.ResultInvalid
		if errors.Is(err, token.ErrExpired) {
			result = observability.ResultExpired
		}
		m.logger.Debug("bearer token rejected",
			zap.String("request_id", requestID),
			zap.Error(err))
		return auth.Anonymous(), result
	}

	principal, err := m.resolver.Resolve(ctx, subject)
	switch {
	case err == nil && principal != nil:
	case err == nil, errors.Is(err, auth.ErrPrincipalNotFound):
		m.logger.Info("token subject not found",
			zap.String("request_id", requestID),
			zap.String("subject", subject))
		return auth.Anonymous(), observability.ResultUnknown
	case errors.Is(err, auth.ErrPrincipalDisabled):
		m.logger.Info("token subject disabled",
			zap.String("request_id", requestID),
			zap.String("subject", subject))
		return auth.Anonymous(), observability.ResultDisabled
	default:
		m.logger.Error("failed to resolve principal",
			zap.String("request_id", requestID),
			zap.String("subject", subject),
			zap.Error(err))
		return auth.Anonymous(), observability.ResultError
	}

	m.logger.Debug("authentication successful",
		zap.String("request_id", requestID),
		zap.String("subject", principal.Subject))

	return auth.NewContext(principal), observability.ResultSuccess
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
// present is false when the header is absent or blank.
func extractBearerToken(r *http.Request) (tok string, present bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true
	}

	return strings.TrimSpace(parts[1]), true
}
