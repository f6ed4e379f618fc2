package domain

import "time"

// Video is an uploaded video and its thumbnail, both hosted on the media store.
type Video struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Thumbnail   string    `json:"thumbnail"`
	VideoFile   string    `json:"videofile"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"ispublished"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (v *Video) OwnerID() string {
	if v == nil {
		return ""
	}
	return v.Owner
}

// VisibleTo reports whether userID may view the video. Unpublished videos are
// visible to their owner only.
func (v *Video) VisibleTo(userID string) bool {
	return v.IsPublished || (userID != "" && v.Owner == userID)
}

// VisibleVideos keeps the videos userID may view, in order.
func VisibleVideos(videos []Video, userID string) []Video {
	out := make([]Video, 0, len(videos))
	for i := range videos {
		if videos[i].VisibleTo(userID) {
			out = append(out, videos[i])
		}
	}
	return out
}

// VideoPatch lists the fields to overwrite on update; nil fields are kept.
type VideoPatch struct {
	Title       *string
	Description *string
	Duration    *float64
	Thumbnail   *string
	VideoFile   *string
	IsPublished *bool
}

// VideoDetail is a video with its owner summary embedded.
type VideoDetail struct {
	Video
	OwnerInfo UserSummary `json:"ownerInfo"`
}
