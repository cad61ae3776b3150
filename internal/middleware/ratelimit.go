package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/notabase/pkg/config"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware limits request rates on the protected API surface.
// Authenticated requests are counted per tenant so one noisy workspace
// cannot starve the others; anonymous requests are counted per client IP.
// It must run after PrincipalMiddleware.
func RateLimitMiddleware(cfg *config.RateLimitConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.MaxRequests) / cfg.Window.Seconds())

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(
			echomiddleware.RateLimiterMemoryStoreConfig{
				Rate:      limit,
				Burst:     cfg.MaxRequests,
				ExpiresIn: cfg.Window,
			},
		),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if p := GetPrincipal(c); p != nil {
				return "tenant:" + strconv.FormatUint(uint64(p.TenantID), 10), nil
			}
			return "ip:" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
		},
	})
}
