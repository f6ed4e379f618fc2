package ports

import (
	"context"

	"github.com/vidtube/backend/internal/core/domain"
)

// UserRepository is the credential store: user records, sessions, watch
// history and channel aggregates.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIdentifier matches a normalized username or email.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// ExistsByUsernameOrEmail reports whether another user (not excludeID)
	// already holds username or email.
	ExistsByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error)
	UpdateFields(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)

	// SetSession overwrites the stored session unconditionally.
	SetSession(ctx context.Context, id string, session domain.Session) error
	// SwapSession replaces expected with next atomically and fails with
	// domain.ErrRefreshTokenReplayed when the stored session is not expected.
	SwapSession(ctx context.Context, id string, expected, next domain.Session) error

	// AddToWatchHistory appends videoID unless present and returns whether it
	// was added along with the resulting history.
	AddToWatchHistory(ctx context.Context, id, videoID string) (bool, []string, error)
	WatchHistory(ctx context.Context, id string) ([]domain.Video, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
}
