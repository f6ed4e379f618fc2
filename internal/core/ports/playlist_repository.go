package ports

import (
	"context"

	"github.com/vidtube/backend/internal/core/domain"
)

// PlaylistRepository persists playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *domain.Playlist) (*domain.Playlist, error)
	FindByID(ctx context.Context, id string) (*domain.Playlist, error)
	FindDetail(ctx context.Context, id string) (*domain.PlaylistDetail, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error)
	Update(ctx context.Context, id, name, description string) (*domain.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, id, videoID string) (*domain.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID string) (*domain.Playlist, error)
}
