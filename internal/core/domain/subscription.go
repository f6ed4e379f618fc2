package domain

import "time"

// Subscription links a subscriber to a channel (another user).
type Subscription struct {
	ID         string    `json:"_id"`
	Subscriber string    `json:"subscriber"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SubscriptionToggle is the outcome of toggling a subscription.
type SubscriptionToggle struct {
	Subscribed   bool          `json:"subscribed"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// SubscriptionView is a subscription with the other party resolved.
type SubscriptionView struct {
	ID        string      `json:"_id"`
	User      UserSummary `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
}
