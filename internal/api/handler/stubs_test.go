package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/middleware"
	"github.com/vidtube/backend/internal/api/response"
	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

// ---- request helpers ----

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// multipartBody encodes fields and one small file per entry of files
// (form field -> filename).
func multipartBody(t *testing.T, fields, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for field, name := range files {
		fw, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = fw.Write([]byte("payload"))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func newMultipartContext(t *testing.T, e *echo.Echo, method, target string, fields, files map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withUser(c echo.Context, id string) {
	c.Set(middleware.UserKey, &domain.User{ID: id, Username: "user-" + id})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (response.Envelope, map[string]any) {
	t.Helper()
	var env response.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	data, _ := env.Data.(map[string]any)
	return env, data
}

func requireKind(t *testing.T, err error, want domain.Kind) {
	t.Helper()
	if got := domain.KindOf(err); got != want {
		t.Fatalf("expected %v, got %v (%v)", want, got, err)
	}
}

// ---- service stubs ----

type stubUserService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn          func(ctx context.Context, identifier, password string) (*domain.User, domain.TokenPair, error)
	logoutFn         func(ctx context.Context, userID string) error
	refreshFn        func(ctx context.Context, token string) (domain.TokenPair, error)
	changePasswordFn func(ctx context.Context, userID, oldPassword, newPassword string) error
	updateAvatarFn   func(ctx context.Context, userID string, file ports.Upload) (*domain.User, error)
	channelFn        func(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	addHistoryFn     func(ctx context.Context, userID, videoID string) (bool, []string, error)
}

func (s *stubUserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) Login(ctx context.Context, identifier, password string) (*domain.User, domain.TokenPair, error) {
	return s.loginFn(ctx, identifier, password)
}

func (s *stubUserService) Logout(ctx context.Context, userID string) error {
	return s.logoutFn(ctx, userID)
}

func (s *stubUserService) Refresh(ctx context.Context, token string) (domain.TokenPair, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubUserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return s.changePasswordFn(ctx, userID, oldPassword, newPassword)
}

func (s *stubUserService) UpdateAccount(context.Context, string, ports.AccountInput) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) UpdateAvatar(ctx context.Context, userID string, file ports.Upload) (*domain.User, error) {
	return s.updateAvatarFn(ctx, userID, file)
}

func (s *stubUserService) UpdateCoverImage(context.Context, string, ports.Upload) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	return s.channelFn(ctx, username, viewerID)
}

func (s *stubUserService) AddWatchHistory(ctx context.Context, userID, videoID string) (bool, []string, error) {
	return s.addHistoryFn(ctx, userID, videoID)
}

func (s *stubUserService) WatchHistory(context.Context, string) ([]domain.Video, error) {
	return []domain.Video{}, nil
}

type stubVideoService struct {
	uploadFn        func(ctx context.Context, ownerID string, in ports.VideoInput, thumbnail, file ports.Upload) (*domain.Video, error)
	getFn           func(ctx context.Context, id, viewerID string) (*domain.VideoDetail, error)
	listPublishedFn func(ctx context.Context, page domain.PageRequest) (domain.Page[domain.VideoDetail], error)
	updateFn        func(ctx context.Context, requesterID, id string, in ports.VideoInput, thumbnail, file *ports.Upload) (*domain.Video, error)
}

func (s *stubVideoService) Upload(ctx context.Context, ownerID string, in ports.VideoInput, thumbnail, file ports.Upload) (*domain.Video, error) {
	return s.uploadFn(ctx, ownerID, in, thumbnail, file)
}

func (s *stubVideoService) Get(ctx context.Context, id, viewerID string) (*domain.VideoDetail, error) {
	return s.getFn(ctx, id, viewerID)
}

func (s *stubVideoService) ListMine(context.Context, string) ([]domain.Video, error) {
	return []domain.Video{}, nil
}

func (s *stubVideoService) ListPublished(ctx context.Context, page domain.PageRequest) (domain.Page[domain.VideoDetail], error) {
	return s.listPublishedFn(ctx, page)
}

func (s *stubVideoService) Update(ctx context.Context, requesterID, id string, in ports.VideoInput, thumbnail, file *ports.Upload) (*domain.Video, error) {
	return s.updateFn(ctx, requesterID, id, in, thumbnail, file)
}

func (s *stubVideoService) Delete(context.Context, string, string) error { return nil }

func (s *stubVideoService) TogglePublish(context.Context, string, string) (*domain.Video, error) {
	return &domain.Video{}, nil
}

type stubLikeService struct {
	toggleFn func(ctx context.Context, userID string, target domain.LikeTarget) (domain.LikeToggle, error)
}

func (s *stubLikeService) Toggle(ctx context.Context, userID string, target domain.LikeTarget) (domain.LikeToggle, error) {
	return s.toggleFn(ctx, userID, target)
}

func (s *stubLikeService) LikedVideos(context.Context, string) ([]domain.Video, error) {
	return []domain.Video{}, nil
}

type stubSubscriptionService struct {
	toggleFn func(ctx context.Context, subscriberID, channelID string) (domain.SubscriptionToggle, error)
}

func (s *stubSubscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (domain.SubscriptionToggle, error) {
	return s.toggleFn(ctx, subscriberID, channelID)
}

func (s *stubSubscriptionService) Subscribers(context.Context, string) ([]domain.SubscriptionView, error) {
	return []domain.SubscriptionView{}, nil
}

func (s *stubSubscriptionService) SubscribedChannels(context.Context, string) ([]domain.SubscriptionView, error) {
	return []domain.SubscriptionView{}, nil
}

func asDomainError(err error, target **domain.Error) bool {
	return errors.As(err, target)
}
