package ports

import (
	"context"

	"github.com/vidtube/backend/internal/core/domain"
)

// VideoInput carries the editable text fields of a video.
type VideoInput struct {
	Title       string
	Description string
	Duration    float64
}

// VideoService manages uploads and their metadata.
type VideoService interface {
	Upload(ctx context.Context, ownerID string, in VideoInput, thumbnail, file Upload) (*domain.Video, error)
	Get(ctx context.Context, id, viewerID string) (*domain.VideoDetail, error)
	ListMine(ctx context.Context, ownerID string) ([]domain.Video, error)
	ListPublished(ctx context.Context, page domain.PageRequest) (domain.Page[domain.VideoDetail], error)
	// Update replaces text fields and, when given, the thumbnail or file.
	Update(ctx context.Context, requesterID, id string, in VideoInput, thumbnail, file *Upload) (*domain.Video, error)
	Delete(ctx context.Context, requesterID, id string) error
	TogglePublish(ctx context.Context, requesterID, id string) (*domain.Video, error)
}

// CommentService manages comments on videos.
type CommentService interface {
	Add(ctx context.Context, userID, videoID, content string) (*domain.Comment, error)
	List(ctx context.Context, viewerID, videoID string, page domain.PageRequest) (domain.Page[domain.CommentView], error)
	Update(ctx context.Context, requesterID, commentID, content string) (*domain.Comment, error)
	Delete(ctx context.Context, requesterID, commentID string) error
}

// PlaylistService manages playlists.
type PlaylistService interface {
	Create(ctx context.Context, ownerID, name, description string) (*domain.Playlist, error)
	ListMine(ctx context.Context, ownerID string) ([]domain.Playlist, error)
	Get(ctx context.Context, viewerID, id string) (*domain.PlaylistDetail, error)
	Update(ctx context.Context, requesterID, id, name, description string) (*domain.Playlist, error)
	Delete(ctx context.Context, requesterID, id string) error
	AddVideo(ctx context.Context, requesterID, id, videoID string) (*domain.Playlist, error)
	RemoveVideo(ctx context.Context, requesterID, id, videoID string) (*domain.Playlist, error)
}

// TweetService manages tweets.
type TweetService interface {
	Create(ctx context.Context, ownerID, content string) (*domain.Tweet, error)
	ListMine(ctx context.Context, ownerID string) ([]domain.Tweet, error)
	Update(ctx context.Context, requesterID, id, content string) (*domain.Tweet, error)
	Delete(ctx context.Context, requesterID, id string) error
}

// LikeService toggles likes.
type LikeService interface {
	Toggle(ctx context.Context, userID string, target domain.LikeTarget) (domain.LikeToggle, error)
	LikedVideos(ctx context.Context, userID string) ([]domain.Video, error)
}

// SubscriptionService toggles and lists channel subscriptions.
type SubscriptionService interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (domain.SubscriptionToggle, error)
	Subscribers(ctx context.Context, channelID string) ([]domain.SubscriptionView, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]domain.SubscriptionView, error)
}
