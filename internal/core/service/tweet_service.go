package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

type TweetService struct {
	tweets ports.TweetRepository
	log    zerolog.Logger
}

func NewTweetService(tweets ports.TweetRepository, log zerolog.Logger) *TweetService {
	return &TweetService{tweets: tweets, log: log}
}

func (s *TweetService) Create(ctx context.Context, ownerID, content string) (*domain.Tweet, error) {
	if err := requireNonBlank(field{"content", content}); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.tweets.Create(ctx, &domain.Tweet{
		Content:   strings.TrimSpace(content),
		Owner:     ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *TweetService) ListMine(ctx context.Context, ownerID string) ([]domain.Tweet, error) {
	return s.tweets.ListByOwner(ctx, ownerID)
}

func (s *TweetService) Update(ctx context.Context, requesterID, id, content string) (*domain.Tweet, error) {
	if _, err := s.owned(ctx, requesterID, id); err != nil {
		return nil, err
	}
	if err := requireNonBlank(field{"content", content}); err != nil {
		return nil, err
	}
	return s.tweets.UpdateContent(ctx, id, strings.TrimSpace(content))
}

func (s *TweetService) Delete(ctx context.Context, requesterID, id string) error {
	if _, err := s.owned(ctx, requesterID, id); err != nil {
		return err
	}
	return s.tweets.Delete(ctx, id)
}

func (s *TweetService) owned(ctx context.Context, requesterID, id string) (*domain.Tweet, error) {
	tweet, err := s.tweets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner("tweet", requesterID, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}
