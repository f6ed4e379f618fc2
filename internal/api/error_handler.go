package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/api/response"
	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/pkg/logger"
)

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:         http.StatusBadRequest,
	domain.KindUnauthenticated:    http.StatusUnauthorized,
	domain.KindInvalidToken:       http.StatusUnauthorized,
	domain.KindTokenReuse:         http.StatusUnauthorized,
	domain.KindInvalidCredentials: http.StatusUnauthorized,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindForbidden:          http.StatusForbidden,
	domain.KindConflict:           http.StatusConflict,
	domain.KindUpstream:           http.StatusInternalServerError,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps tagged domain errors to a status code by kind.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the error envelope: {"statusCode", "message", "success", "errors"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, details := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = response.Error(c, code, msg, details)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, []string) {
	// Echo's own errors (bind failures, 404 from router, rate limits, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		if code, ok := kindStatus[de.Kind]; ok {
			if de.Kind == domain.KindUpstream {
				requestLogger(c, &log).Error().Err(err).Str("path", c.Path()).Msg("upstream failure")
			}
			msg := de.Message
			if msg == "" {
				msg = de.Kind.String()
			}
			return code, msg, de.Details
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	requestLogger(c, &log).Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error", nil
}

// requestLogger prefers the request-scoped logger carrying the request id.
func requestLogger(c echo.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := logger.Ctx(c.Request().Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
