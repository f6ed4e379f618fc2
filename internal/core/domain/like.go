package domain

import "time"

// LikeTargetKind names what a like points at.
type LikeTargetKind string

const (
	LikeVideo   LikeTargetKind = "video"
	LikeComment LikeTargetKind = "comment"
	LikeTweet   LikeTargetKind = "tweet"
)

// LikeTarget identifies the single resource a like refers to.
type LikeTarget struct {
	Kind LikeTargetKind
	ID   string
}

// Like records that LikedBy liked exactly one video, comment or tweet.
type Like struct {
	ID        string    `json:"_id"`
	Video     string    `json:"video,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	Tweet     string    `json:"tweet,omitempty"`
	LikedBy   string    `json:"likedby"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewLike builds a like for target.
func NewLike(target LikeTarget, userID string, at time.Time) *Like {
	l := &Like{LikedBy: userID, CreatedAt: at}
	switch target.Kind {
	case LikeVideo:
		l.Video = target.ID
	case LikeComment:
		l.Comment = target.ID
	case LikeTweet:
		l.Tweet = target.ID
	}
	return l
}

// LikeToggle is the outcome of toggling a like.
type LikeToggle struct {
	Liked bool  `json:"liked"`
	Like  *Like `json:"like,omitempty"`
}
