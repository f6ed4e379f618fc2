package domain

import "time"

// Comment is a user comment on a video.
type Comment struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Video     string    `json:"video"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Comment) OwnerID() string {
	if c == nil {
		return ""
	}
	return c.Owner
}

// CommentView is a comment as listed under a video, owner embedded.
type CommentView struct {
	ID        string      `json:"_id"`
	Content   string      `json:"content"`
	Owner     UserSummary `json:"owner"`
	CreatedAt time.Time   `json:"createdAt"`
}
