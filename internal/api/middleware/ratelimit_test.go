package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestIPRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 2, time.Minute)
	l.WithNowFunc(func() time.Time { return now })

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatalf("burst should allow two requests")
	}
	if l.Allow("1.1.1.1") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatalf("keys are limited independently")
	}

	now = now.Add(time.Second)
	if !l.Allow("1.1.1.1") {
		t.Fatalf("token should refill after one second")
	}
}

func TestIPRateLimiter_ExpiresIdleKeys(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(10, 10, time.Minute)
	l.WithNowFunc(func() time.Time { return now })

	l.Allow("a")
	l.Allow("b")
	now = now.Add(2 * time.Minute)
	l.Allow("c")

	if got := l.Len(); got != 1 {
		t.Fatalf("expected idle keys collected, got %d tracked", got)
	}
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func TestRateLimit_Rejects(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RateLimit(denyAll{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
}
