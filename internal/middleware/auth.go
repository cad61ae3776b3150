package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/notabase/internal/service"
	"github.com/suteetoe/notabase/pkg/logger"
	"go.uber.org/zap"
)

const principalKey = "principal"

// PrincipalMiddleware resolves the bearer token into a principal and stores
// it in the request context. Resolution never fails the request: a missing,
// malformed, expired or stale token leaves the request anonymous and each
// handler decides whether that is acceptable.
func PrincipalMiddleware(identity *service.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return next(c)
			}

			p := identity.Authenticate(c.Request().Context(), token)
			if p == nil {
				logger.FromContext(c).Debug("credential did not resolve, continuing anonymous")
				return next(c)
			}

			c.Set(principalKey, p)

			// Enrich the request logger with the caller's identity
			ctxLogger := logger.FromContext(c).With(
				zap.Uint("user_id", p.UserID),
				zap.Uint("tenant_id", p.TenantID),
				zap.String("role", string(p.Role)),
			)
			c.Set("logger", ctxLogger)

			return next(c)
		}
	}
}

// GetPrincipal returns the resolved principal, or nil for anonymous requests.
func GetPrincipal(c echo.Context) *service.Principal {
	p, ok := c.Get(principalKey).(*service.Principal)
	if !ok {
		return nil
	}
	return p
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
