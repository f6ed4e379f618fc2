package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

type PlaylistService struct {
	playlists ports.PlaylistRepository
	videos    ports.VideoRepository
	log       zerolog.Logger
}

func NewPlaylistService(playlists ports.PlaylistRepository, videos ports.VideoRepository, log zerolog.Logger) *PlaylistService {
	return &PlaylistService{playlists: playlists, videos: videos, log: log}
}

func (s *PlaylistService) Create(ctx context.Context, ownerID, name, description string) (*domain.Playlist, error) {
	if err := requireNonBlank(field{"name", name}); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.playlists.Create(ctx, &domain.Playlist{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Videos:      []string{},
		Owner:       ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *PlaylistService) ListMine(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	return s.playlists.ListByOwner(ctx, ownerID)
}

// Get resolves the playlist, leaving out videos the viewer may not see.
func (s *PlaylistService) Get(ctx context.Context, viewerID, id string) (*domain.PlaylistDetail, error) {
	detail, err := s.playlists.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Videos = domain.VisibleVideos(detail.Videos, viewerID)
	return detail, nil
}

func (s *PlaylistService) Update(ctx context.Context, requesterID, id, name, description string) (*domain.Playlist, error) {
	if _, err := s.owned(ctx, requesterID, id); err != nil {
		return nil, err
	}
	if err := requireNonBlank(field{"name", name}); err != nil {
		return nil, err
	}
	return s.playlists.Update(ctx, id, strings.TrimSpace(name), strings.TrimSpace(description))
}

func (s *PlaylistService) Delete(ctx context.Context, requesterID, id string) error {
	if _, err := s.owned(ctx, requesterID, id); err != nil {
		return err
	}
	return s.playlists.Delete(ctx, id)
}

func (s *PlaylistService) AddVideo(ctx context.Context, requesterID, id, videoID string) (*domain.Playlist, error) {
	playlist, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.videos.Visible(ctx, videoID, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	if playlist.Contains(videoID) {
		return nil, domain.ErrVideoAlreadyInList
	}
	return s.playlists.AddVideo(ctx, id, videoID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, requesterID, id, videoID string) (*domain.Playlist, error) {
	playlist, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if !playlist.Contains(videoID) {
		return nil, domain.ErrVideoNotInPlaylist
	}
	return s.playlists.RemoveVideo(ctx, id, videoID)
}

func (s *PlaylistService) owned(ctx context.Context, requesterID, id string) (*domain.Playlist, error) {
	playlist, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner("playlist", requesterID, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}
