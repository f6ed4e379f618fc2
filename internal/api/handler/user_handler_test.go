package handler

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/middleware"
	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

var testPair = domain.TokenPair{
	AccessToken:      "access-1",
	AccessExpiresAt:  time.Now().Add(15 * time.Minute),
	RefreshToken:     "refresh-1",
	RefreshExpiresAt: time.Now().Add(240 * time.Hour),
}

func cookiesByName(resp *http.Response) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range resp.Cookies() {
		out[c.Name] = c
	}
	return out
}

// ---- Register ----

func TestUserHandler_Register_Multipart(t *testing.T) {
	e := newEcho()
	var got ports.RegisterInput
	var avatarBody string
	stub := &stubUserService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			got = in
			if in.Avatar != nil {
				b, _ := io.ReadAll(in.Avatar.Body)
				avatarBody = string(b)
			}
			return &domain.User{ID: "u1", Username: in.Username, Email: in.Email}, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, rec := newMultipartContext(t, e, http.MethodPost, "/api/v1/users/register",
		map[string]string{"fullname": "Alice A", "email": "a@x.com", "username": "alice", "password": "p1"},
		map[string]string{"avatar": "me.png"},
	)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Username != "alice" || got.Password != "p1" || got.FullName != "Alice A" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Avatar == nil || got.Avatar.Filename != "me.png" || avatarBody != "payload" {
		t.Fatalf("avatar not forwarded: %+v body=%q", got.Avatar, avatarBody)
	}
	if got.CoverImage != nil {
		t.Fatalf("cover image should be absent")
	}

	env, data := decodeEnvelope(t, rec)
	if !env.Success || env.StatusCode != http.StatusCreated || data["username"] != "alice" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if _, leaked := data["password"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestUserHandler_Register_MissingFields(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, _ := newMultipartContext(t, e, http.MethodPost, "/api/v1/users/register", map[string]string{"email": "a@x.com"}, nil)
	err := h.Register(c)
	requireKind(t, err, domain.KindValidation)

	var de *domain.Error
	if !asDomainError(err, &de) || len(de.Details) != 3 {
		t.Fatalf("expected 3 field errors, got %+v", de)
	}
}

func TestUserHandler_Register_Conflict(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, _ := newMultipartContext(t, e, http.MethodPost, "/api/v1/users/register",
		map[string]string{"fullname": "Bob", "email": "b@x.com", "username": "bob", "password": "p"}, nil)
	requireKind(t, h.Register(c), domain.KindConflict)
}

// ---- Login ----

func TestUserHandler_Login_SetsCookies(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		loginFn: func(_ context.Context, identifier, password string) (*domain.User, domain.TokenPair, error) {
			if identifier != "a@x.com" || password != "p1" {
				t.Fatalf("unexpected args: %s %s", identifier, password)
			}
			return &domain.User{ID: "u1", Username: "alice"}, testPair, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{Secure: true})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users/login", `{"email":"a@x.com","username":"ignored","password":"p1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	_, data := decodeEnvelope(t, rec)
	if data["accessToken"] != "access-1" || data["refreshToken"] != "refresh-1" {
		t.Fatalf("tokens missing from body: %+v", data)
	}

	cookies := cookiesByName(rec.Result())
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		ck, ok := cookies[name]
		if !ok {
			t.Fatalf("cookie %s not set", name)
		}
		if !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteStrictMode {
			t.Fatalf("cookie %s has weak attributes: %+v", name, ck)
		}
	}
	if cookies[middleware.AccessTokenCookie].Value != "access-1" {
		t.Fatalf("unexpected access cookie value")
	}
}

func TestUserHandler_Login_UsernameFallback(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		loginFn: func(_ context.Context, identifier, _ string) (*domain.User, domain.TokenPair, error) {
			if identifier != "alice" {
				t.Fatalf("expected username identifier, got %q", identifier)
			}
			return &domain.User{ID: "u1"}, testPair, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, _ := newJSONContext(e, http.MethodPost, "/api/v1/users/login", `{"username":"alice","password":"p1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_Login_MissingIdentifier(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		loginFn: func(context.Context, string, string) (*domain.User, domain.TokenPair, error) {
			t.Fatalf("should not be called")
			return nil, domain.TokenPair{}, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, _ := newJSONContext(e, http.MethodPost, "/api/v1/users/login", `{"password":"p1"}`)
	requireKind(t, h.Login(c), domain.KindValidation)
}

func TestUserHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		loginFn: func(context.Context, string, string) (*domain.User, domain.TokenPair, error) {
			return nil, domain.TokenPair{}, domain.ErrInvalidCredentials
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users/login", `{"email":"a@x.com","password":"bad"}`)
	requireKind(t, h.Login(c), domain.KindInvalidCredentials)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookies may be set on failed login")
	}
}

func TestUserHandler_Login_InvalidPayload(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{}, CookiePolicy{})

	c, _ := newJSONContext(e, http.MethodPost, "/api/v1/users/login", "{")
	requireKind(t, h.Login(c), domain.KindValidation)
}

// ---- Refresh / Logout ----

func TestUserHandler_Refresh_FromCookie(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		refreshFn: func(_ context.Context, token string) (domain.TokenPair, error) {
			if token != "cookie-token" {
				t.Fatalf("expected cookie token, got %q", token)
			}
			return testPair, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users/refresh-token", `{"refreshToken":"body-token"}`)
	c.Request().AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: "cookie-token"})
	if err := h.RefreshToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cookiesByName(rec.Result())[middleware.RefreshTokenCookie].Value != "refresh-1" {
		t.Fatalf("rotated refresh cookie not set")
	}
}

func TestUserHandler_Refresh_FromBody(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		refreshFn: func(_ context.Context, token string) (domain.TokenPair, error) {
			if token != "body-token" {
				t.Fatalf("expected body token, got %q", token)
			}
			return testPair, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, _ := newJSONContext(e, http.MethodPost, "/api/v1/users/refresh-token", `{"refreshToken":"body-token"}`)
	if err := h.RefreshToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_Refresh_ReuseClearsCookies(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		refreshFn: func(context.Context, string) (domain.TokenPair, error) {
			return domain.TokenPair{}, domain.ErrRefreshTokenReplayed
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users/refresh-token", `{"refreshToken":"old"}`)
	requireKind(t, h.RefreshToken(c), domain.KindTokenReuse)
	if ck := cookiesByName(rec.Result())[middleware.RefreshTokenCookie]; ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected refresh cookie cleared, got %+v", ck)
	}
}

func TestUserHandler_Logout(t *testing.T) {
	e := newEcho()
	var revoked string
	stub := &stubUserService{
		logoutFn: func(_ context.Context, userID string) error {
			revoked = userID
			return nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/users/logout", "")
	withUser(c, "u1")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked != "u1" {
		t.Fatalf("expected session of u1 revoked, got %q", revoked)
	}
	cookies := cookiesByName(rec.Result())
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		if ck := cookies[name]; ck == nil || ck.MaxAge >= 0 || ck.Value != "" {
			t.Fatalf("cookie %s not cleared: %+v", name, ck)
		}
	}
}

func TestUserHandler_ProtectedWithoutUser(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{}, CookiePolicy{})

	for name, fn := range map[string]echo.HandlerFunc{
		"logout":      h.Logout,
		"currentUser": h.CurrentUser,
		"history":     h.WatchHistory,
	} {
		c, _ := newJSONContext(e, http.MethodGet, "/", "")
		if got := domain.KindOf(fn(c)); got != domain.KindUnauthenticated {
			t.Fatalf("%s: expected unauthenticated, got %v", name, got)
		}
	}
}

// ---- Account ----

func TestUserHandler_UpdateAvatar_RequiresFile(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		updateAvatarFn: func(context.Context, string, ports.Upload) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, _ := newMultipartContext(t, e, http.MethodPatch, "/api/v1/users/avatar", nil, nil)
	withUser(c, "u1")
	requireKind(t, h.UpdateAvatar(c), domain.KindValidation)
}

func TestUserHandler_ChannelProfile_PassesViewer(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		channelFn: func(_ context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
			return &domain.ChannelProfile{Username: username, IsSubscribed: viewerID == "u1"}, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	c, rec := newJSONContext(e, http.MethodGet, "/", "")
	c.SetParamNames("username")
	c.SetParamValues("bob")
	withUser(c, "u1")
	if err := h.ChannelProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if _, data := decodeEnvelope(t, rec); data["isSubscribed"] != true || data["username"] != "bob" {
		t.Fatalf("unexpected profile: %+v", data)
	}
}

func TestUserHandler_AddWatchHistory_Status(t *testing.T) {
	e := newEcho()
	added := true
	stub := &stubUserService{
		addHistoryFn: func(_ context.Context, _, videoID string) (bool, []string, error) {
			return added, []string{videoID}, nil
		},
	}
	h := NewUserHandler(stub, CookiePolicy{})

	for _, tc := range []struct {
		added bool
		want  int
	}{{true, http.StatusCreated}, {false, http.StatusOK}} {
		added = tc.added
		c, rec := newJSONContext(e, http.MethodPost, "/", "")
		c.SetParamNames("videoId")
		c.SetParamValues("v1")
		withUser(c, "u1")
		if err := h.AddWatchHistory(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != tc.want {
			t.Fatalf("added=%v: expected %d, got %d", tc.added, tc.want, rec.Code)
		}
	}
}
