package ports

import (
	"context"
	"io"
)

// MediaFolder groups uploaded assets by purpose.
type MediaFolder string

const (
	FolderAvatars    MediaFolder = "avatars"
	FolderCovers     MediaFolder = "covers"
	FolderThumbnails MediaFolder = "thumbnails"
	FolderVideos     MediaFolder = "videos"
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaStore hosts uploaded files and returns their public URLs.
type MediaStore interface {
	Upload(ctx context.Context, folder MediaFolder, file Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

// MediaJanitor removes replaced or orphaned assets in the background.
type MediaJanitor interface {
	Discard(urls ...string)
}
