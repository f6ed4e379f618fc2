package ports

import (
	"context"

	"github.com/vidtube/backend/internal/core/domain"
)

// TokenVerifier checks access tokens without touching storage.
type TokenVerifier interface {
	VerifyAccessToken(token string) (string, error)
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

// AccountInput carries editable profile fields.
type AccountInput struct {
	FullName string
	Email    string
	Username string
}

// UserService covers registration, the session lifecycle and account upkeep.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, identifier, password string) (*domain.User, domain.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, userID string, in AccountInput) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID string, file Upload) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, userID string, file Upload) (*domain.User, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	AddWatchHistory(ctx context.Context, userID, videoID string) (bool, []string, error)
	WatchHistory(ctx context.Context, userID string) ([]domain.Video, error)
}
