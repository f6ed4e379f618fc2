package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/middleware"
	"github.com/vidtube/backend/internal/core/domain"
)

// CookiePolicy controls the attributes of the session cookies. Cookies are
// always HttpOnly and SameSite=Strict.
type CookiePolicy struct {
	Secure bool
}

func (p CookiePolicy) setTokens(c echo.Context, pair domain.TokenPair) {
	p.set(c, middleware.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt)
	p.set(c, middleware.RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt)
}

func (p CookiePolicy) clearTokens(c echo.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0).UTC(),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   p.Secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (p CookiePolicy) set(c echo.Context, name, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
