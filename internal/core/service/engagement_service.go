package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

type LikeService struct {
	likes    ports.LikeRepository
	videos   ports.VideoRepository
	comments ports.CommentRepository
	tweets   ports.TweetRepository
	log      zerolog.Logger
}

func NewLikeService(
	likes ports.LikeRepository,
	videos ports.VideoRepository,
	comments ports.CommentRepository,
	tweets ports.TweetRepository,
	log zerolog.Logger,
) *LikeService {
	return &LikeService{likes: likes, videos: videos, comments: comments, tweets: tweets, log: log}
}

// Toggle likes the target, or removes the like when userID already liked it.
func (s *LikeService) Toggle(ctx context.Context, userID string, target domain.LikeTarget) (domain.LikeToggle, error) {
	if err := s.requireTarget(ctx, userID, target); err != nil {
		return domain.LikeToggle{}, err
	}

	existing, err := s.likes.Find(ctx, target, userID)
	switch {
	case err == nil:
		if err := s.likes.Delete(ctx, existing.ID); err != nil {
			return domain.LikeToggle{}, err
		}
		return domain.LikeToggle{Liked: false}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domain.LikeToggle{}, err
	}

	like, err := s.likes.Create(ctx, domain.NewLike(target, userID, time.Now().UTC()))
	if err != nil {
		return domain.LikeToggle{}, err
	}
	return domain.LikeToggle{Liked: true, Like: like}, nil
}

func (s *LikeService) LikedVideos(ctx context.Context, userID string) ([]domain.Video, error) {
	videos, err := s.likes.LikedVideos(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.VisibleVideos(videos, userID), nil
}

func (s *LikeService) requireTarget(ctx context.Context, userID string, target domain.LikeTarget) error {
	var (
		ok       bool
		err      error
		notFound error
	)
	switch target.Kind {
	case domain.LikeVideo:
		ok, err = s.videos.Visible(ctx, target.ID, userID)
		notFound = domain.ErrVideoNotFound
	case domain.LikeComment:
		ok, err = s.comments.Exists(ctx, target.ID)
		notFound = domain.ErrCommentNotFound
	case domain.LikeTweet:
		ok, err = s.tweets.Exists(ctx, target.ID)
		notFound = domain.ErrTweetNotFound
	default:
		return domain.NewValidationError("unknown like target " + string(target.Kind))
	}
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}

type SubscriptionService struct {
	subs  ports.SubscriptionRepository
	users ports.UserRepository
	log   zerolog.Logger
}

func NewSubscriptionService(subs ports.SubscriptionRepository, users ports.UserRepository, log zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{subs: subs, users: users, log: log}
}

// Toggle subscribes subscriberID to channelID, or unsubscribes when already
// subscribed. Users cannot subscribe to themselves.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (domain.SubscriptionToggle, error) {
	if subscriberID == channelID {
		return domain.SubscriptionToggle{}, domain.ErrSelfSubscription
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return domain.SubscriptionToggle{}, err
	}

	existing, err := s.subs.Find(ctx, subscriberID, channelID)
	switch {
	case err == nil:
		if err := s.subs.Delete(ctx, existing.ID); err != nil {
			return domain.SubscriptionToggle{}, err
		}
		return domain.SubscriptionToggle{Subscribed: false}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domain.SubscriptionToggle{}, err
	}

	sub, err := s.subs.Create(ctx, &domain.Subscription{
		Subscriber: subscriberID,
		Channel:    channelID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.SubscriptionToggle{}, err
	}
	return domain.SubscriptionToggle{Subscribed: true, Subscription: sub}, nil
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channelID string) ([]domain.SubscriptionView, error) {
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return nil, err
	}
	return s.subs.ListSubscribers(ctx, channelID)
}

func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberID string) ([]domain.SubscriptionView, error) {
	if _, err := s.users.FindByID(ctx, subscriberID); err != nil {
		return nil, err
	}
	return s.subs.ListSubscribedChannels(ctx, subscriberID)
}
