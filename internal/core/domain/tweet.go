package domain

import "time"

// Tweet is a short text post on a user's channel.
type Tweet struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Tweet) OwnerID() string {
	if t == nil {
		return ""
	}
	return t.Owner
}
