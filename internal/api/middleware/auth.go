package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
	"github.com/vidtube/backend/pkg/logger"
)

const (
	// UserKey is the echo context key holding the authenticated *domain.User.
	UserKey = "user"

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// UserLoader resolves the subject of a verified token.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth rejects requests without a valid access token. The token is read from
// the accessToken cookie, else from "Authorization: Bearer <token>". The owner
// of the token is loaded once and stored under UserKey.
func Auth(verifier ports.TokenVerifier, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authenticate(c, verifier, users)
			if err != nil {
				return err
			}
			attach(c, user)
			return next(c)
		}
	}
}

// OptionalAuth attaches the user when a valid access token is presented and
// lets the request through anonymously otherwise.
func OptionalAuth(verifier ports.TokenVerifier, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authenticate(c, verifier, users)
			if err == nil {
				attach(c, user)
				return next(c)
			}
			if k := domain.KindOf(err); k != domain.KindUnauthenticated && k != domain.KindInvalidToken {
				return err
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Auth or OptionalAuth, nil for
// anonymous requests.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(UserKey).(*domain.User)
	return u
}

func authenticate(c echo.Context, verifier ports.TokenVerifier, users UserLoader) (*domain.User, error) {
	token := accessToken(c)
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	userID, err := verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := users.FindByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, domain.NewError(domain.KindInvalidToken, "invalid access token", nil)
		}
		return nil, err
	}
	return user, nil
}

func attach(c echo.Context, user *domain.User) {
	c.Set(UserKey, user)

	req := c.Request()
	l := logger.Ctx(req.Context()).With().Str("user_id", user.ID).Logger()
	c.SetRequest(req.WithContext(logger.WithContext(req.Context(), l)))
}

func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
