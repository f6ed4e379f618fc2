package ports

import (
	"context"

	"github.com/vidtube/backend/internal/core/domain"
)

// TweetRepository persists tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet *domain.Tweet) (*domain.Tweet, error)
	FindByID(ctx context.Context, id string) (*domain.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (*domain.Tweet, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
