package middleware

import (
	"net/http"

	"github.com/upb/petclinic/auth"
	"github.com/upb/petclinic/internal/observability"
	"github.com/upb/petclinic/utils"
	"go.uber.org/zap"
)

// AuthorizationMiddleware enforces per-route requirements against the
// context installed by AuthMiddleware.
type AuthorizationMiddleware struct {
	metrics observability.Metrics
	logger  *zap.Logger
}

// NewAuthorizationMiddleware creates a new AuthorizationMiddleware
func NewAuthorizationMiddleware(metrics observability.Metrics, logger *zap.Logger) *AuthorizationMiddleware {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &AuthorizationMiddleware{
		metrics: metrics,
		logger:  logger,
	}
}

// Require returns a middleware admitting only requests that satisfy req.
// Anonymous callers and callers without the role get the same response.
func (m *AuthorizationMiddleware) Require(req auth.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := auth.FromContext(r.Context())

			if !auth.Permit(ac, req, r) {
				m.metrics.RecordAuthorization(observability.ResultDenied)
				m.logger.Info("access denied",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Bool("authenticated", ac.Authenticated()),
					zap.String("subject", ac.Subject()),
					zap.Strings("required_roles", req.Roles))
				_ = utils.WriteAccessDenied(w)
				return
			}

			m.metrics.RecordAuthorization(observability.ResultAllowed)
			next.ServeHTTP(w, r)
		})
	}
}
