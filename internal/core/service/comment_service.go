package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

type CommentService struct {
	comments ports.CommentRepository
	videos   ports.VideoRepository
	log      zerolog.Logger
}

func NewCommentService(comments ports.CommentRepository, videos ports.VideoRepository, log zerolog.Logger) *CommentService {
	return &CommentService{comments: comments, videos: videos, log: log}
}

func (s *CommentService) Add(ctx context.Context, userID, videoID, content string) (*domain.Comment, error) {
	if err := requireNonBlank(field{"content", content}); err != nil {
		return nil, err
	}
	if err := s.requireVideo(ctx, videoID, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.comments.Create(ctx, &domain.Comment{
		Content:   strings.TrimSpace(content),
		Video:     videoID,
		Owner:     userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *CommentService) List(ctx context.Context, viewerID, videoID string, page domain.PageRequest) (domain.Page[domain.CommentView], error) {
	if err := s.requireVideo(ctx, videoID, viewerID); err != nil {
		return domain.Page[domain.CommentView]{}, err
	}
	return s.comments.ListByVideo(ctx, videoID, page.Normalize())
}

func (s *CommentService) Update(ctx context.Context, requesterID, commentID, content string) (*domain.Comment, error) {
	if _, err := s.owned(ctx, requesterID, commentID); err != nil {
		return nil, err
	}
	if err := requireNonBlank(field{"content", content}); err != nil {
		return nil, err
	}
	return s.comments.UpdateContent(ctx, commentID, strings.TrimSpace(content))
}

func (s *CommentService) Delete(ctx context.Context, requesterID, commentID string) error {
	if _, err := s.owned(ctx, requesterID, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *CommentService) owned(ctx context.Context, requesterID, id string) (*domain.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner("comment", requesterID, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) requireVideo(ctx context.Context, videoID, viewerID string) error {
	ok, err := s.videos.Visible(ctx, videoID, viewerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrVideoNotFound
	}
	return nil
}
