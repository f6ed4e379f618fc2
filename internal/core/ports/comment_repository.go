package ports

import (
	"context"

	"github.com/vidtube/backend/internal/core/domain"
)

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	// ListByVideo returns comments on videoID newest first with owners embedded.
	ListByVideo(ctx context.Context, videoID string, page domain.PageRequest) (domain.Page[domain.CommentView], error)
	UpdateContent(ctx context.Context, id, content string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	// DeleteByVideo removes every comment on a deleted video.
	DeleteByVideo(ctx context.Context, videoID string) error
	Exists(ctx context.Context, id string) (bool, error)
}
