package ports

import (
	"context"

	"github.com/vidtube/backend/internal/core/domain"
)

// LikeRepository persists likes. A user likes a given target at most once.
type LikeRepository interface {
	Find(ctx context.Context, target domain.LikeTarget, userID string) (*domain.Like, error)
	Create(ctx context.Context, like *domain.Like) (*domain.Like, error)
	Delete(ctx context.Context, id string) error
	LikedVideos(ctx context.Context, userID string) ([]domain.Video, error)
}

// SubscriptionRepository persists channel subscriptions.
type SubscriptionRepository interface {
	Find(ctx context.Context, subscriberID, channelID string) (*domain.Subscription, error)
	Create(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	Delete(ctx context.Context, id string) error
	ListSubscribers(ctx context.Context, channelID string) ([]domain.SubscriptionView, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]domain.SubscriptionView, error)
}
