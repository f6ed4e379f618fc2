package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/pkg/metrics"
	"github.com/vidtube/backend/pkg/logger"
)

// Throttler counts attempts per key over a window.
type Throttler interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

// LoginThrottle limits login attempts per client IP. A successful login
// clears the counter. When the throttle store is unreachable requests are let
// through.
func LoginThrottle(t Throttler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := c.RealIP()

			allowed, retry, err := t.Allow(ctx, key)
			if err != nil {
				logger.Ctx(ctx).Warn().Err(err).Msg("login throttle unavailable")
				return next(c)
			}
			if !allowed {
				metrics.ThrottledRequestsTotal.WithLabelValues("login").Inc()
				c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
			}

			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status < http.StatusBadRequest {
				if err := t.Reset(ctx, key); err != nil {
					logger.Ctx(ctx).Warn().Err(err).Msg("login throttle reset failed")
				}
			}
			return nil
		}
	}
}
