package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

type VideoService struct {
	videos   ports.VideoRepository
	comments ports.CommentRepository
	media    ports.MediaStore
	janitor  ports.MediaJanitor
	log      zerolog.Logger
}

func NewVideoService(
	videos ports.VideoRepository,
	comments ports.CommentRepository,
	media ports.MediaStore,
	janitor ports.MediaJanitor,
	log zerolog.Logger,
) *VideoService {
	return &VideoService{videos: videos, comments: comments, media: media, janitor: janitor, log: log}
}

func validateVideoInput(in ports.VideoInput) error {
	if err := requireNonBlank(field{"title", in.Title}, field{"description", in.Description}); err != nil {
		return err
	}
	if in.Duration < 0 {
		return domain.NewValidationError("duration must not be negative")
	}
	return nil
}

// Upload stores the video file and thumbnail, then records the video as
// published.
func (s *VideoService) Upload(ctx context.Context, ownerID string, in ports.VideoInput, thumbnail, file ports.Upload) (*domain.Video, error) {
	if err := validateVideoInput(in); err != nil {
		return nil, err
	}

	fileURL, err := uploadAsset(ctx, s.media, ports.FolderVideos, file)
	if err != nil {
		return nil, err
	}
	thumbURL, err := uploadAsset(ctx, s.media, ports.FolderThumbnails, thumbnail)
	if err != nil {
		s.janitor.Discard(fileURL)
		return nil, err
	}

	now := time.Now().UTC()
	video, err := s.videos.Create(ctx, &domain.Video{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Duration:    in.Duration,
		Thumbnail:   thumbURL,
		VideoFile:   fileURL,
		IsPublished: true,
		Owner:       ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.janitor.Discard(fileURL, thumbURL)
		return nil, fmt.Errorf("upload video: %w", err)
	}

	s.log.Info().Str("video_id", video.ID).Str("owner", ownerID).Msg("video uploaded")
	return video, nil
}

// Get returns a video with its owner. Unpublished videos are reported as
// missing to everyone but their owner.
func (s *VideoService) Get(ctx context.Context, id, viewerID string) (*domain.VideoDetail, error) {
	detail, err := s.videos.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !detail.Video.VisibleTo(viewerID) {
		return nil, domain.ErrVideoNotFound
	}
	return detail, nil
}

func (s *VideoService) ListMine(ctx context.Context, ownerID string) ([]domain.Video, error) {
	return s.videos.ListByOwner(ctx, ownerID)
}

func (s *VideoService) ListPublished(ctx context.Context, page domain.PageRequest) (domain.Page[domain.VideoDetail], error) {
	return s.videos.ListPublished(ctx, page.Normalize())
}

func (s *VideoService) Update(ctx context.Context, requesterID, id string, in ports.VideoInput, thumbnail, file *ports.Upload) (*domain.Video, error) {
	video, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if err := validateVideoInput(in); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	patch := domain.VideoPatch{Title: &title, Description: &description}
	if in.Duration > 0 {
		patch.Duration = &in.Duration
	}

	var uploaded, replaced []string
	if thumbnail != nil {
		url, err := uploadAsset(ctx, s.media, ports.FolderThumbnails, *thumbnail)
		if err != nil {
			return nil, err
		}
		patch.Thumbnail = &url
		uploaded = append(uploaded, url)
		replaced = append(replaced, video.Thumbnail)
	}
	if file != nil {
		url, err := uploadAsset(ctx, s.media, ports.FolderVideos, *file)
		if err != nil {
			s.janitor.Discard(uploaded...)
			return nil, err
		}
		patch.VideoFile = &url
		uploaded = append(uploaded, url)
		replaced = append(replaced, video.VideoFile)
	}

	updated, err := s.videos.Update(ctx, id, patch)
	if err != nil {
		s.janitor.Discard(uploaded...)
		return nil, err
	}
	s.janitor.Discard(replaced...)
	return updated, nil
}

// Delete removes the video with its comments and queues its assets.
func (s *VideoService) Delete(ctx context.Context, requesterID, id string) error {
	video, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.comments.DeleteByVideo(ctx, id); err != nil {
		s.log.Error().Err(err).Str("video_id", id).Msg("failed to delete comments of removed video")
	}
	s.janitor.Discard(video.VideoFile, video.Thumbnail)

	s.log.Info().Str("video_id", id).Msg("video deleted")
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, requesterID, id string) (*domain.Video, error) {
	video, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	published := !video.IsPublished
	return s.videos.Update(ctx, id, domain.VideoPatch{IsPublished: &published})
}

// owned loads the video and checks that requesterID owns it.
func (s *VideoService) owned(ctx context.Context, requesterID, id string) (*domain.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner("video", requesterID, video); err != nil {
		return nil, err
	}
	return video, nil
}
