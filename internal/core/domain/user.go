package domain

import (
	"strings"
	"time"
)

// User models an authenticated principal and channel owner.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullname"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverimage"`
	PasswordHash string    `json:"-"`
	Session      Session   `json:"-"`
	WatchHistory []string  `json:"watchhistory"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch lists the fields to overwrite; nil fields are left untouched.
type UserPatch struct {
	FullName     *string
	Username     *string
	Email        *string
	Avatar       *string
	CoverImage   *string
	PasswordHash *string
}

// UserSummary is the owner view embedded in other resources.
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullname"`
	Avatar   string `json:"avatar,omitempty"`
}

// ChannelProfile is a public channel page with subscription counters.
type ChannelProfile struct {
	ID                       string    `json:"_id"`
	Username                 string    `json:"username"`
	FullName                 string    `json:"fullname"`
	Email                    string    `json:"email"`
	Avatar                   string    `json:"avatar"`
	CoverImage               string    `json:"coverimage"`
	SubscriberCount          int64     `json:"subscriberCount"`
	ChannelSubscribedToCount int64     `json:"channelSubscribedToCount"`
	IsSubscribed             bool      `json:"isSubscribed"`
	CreatedAt                time.Time `json:"createdAt"`
}

// NormalizeUsername lower-cases and trims a username so uniqueness is
// case-insensitive.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
