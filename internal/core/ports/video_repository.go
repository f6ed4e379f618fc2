package ports

import (
	"context"

	"github.com/vidtube/backend/internal/core/domain"
)

// VideoRepository persists videos.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (*domain.Video, error)
	FindByID(ctx context.Context, id string) (*domain.Video, error)
	// FindDetail returns the video with its owner summary embedded.
	FindDetail(ctx context.Context, id string) (*domain.VideoDetail, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Video, error)
	ListPublished(ctx context.Context, page domain.PageRequest) (domain.Page[domain.VideoDetail], error)
	Update(ctx context.Context, id string, patch domain.VideoPatch) (*domain.Video, error)
	Delete(ctx context.Context, id string) error
	// Visible reports whether the video exists and viewerID may view it.
	Visible(ctx context.Context, id, viewerID string) (bool, error)
}
