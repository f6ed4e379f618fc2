package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/vidtube/backend/internal/core/domain"
)

func TestLikeHandler_ToggleStatus(t *testing.T) {
	e := newEcho()
	liked := true
	var target domain.LikeTarget
	stub := &stubLikeService{
		toggleFn: func(_ context.Context, _ string, tg domain.LikeTarget) (domain.LikeToggle, error) {
			target = tg
			return domain.LikeToggle{Liked: liked}, nil
		},
	}
	h := NewLikeHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/", "")
	c.SetParamNames("commentId")
	c.SetParamValues("c1")
	withUser(c, "u1")
	if err := h.ToggleComment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on like, got %d", rec.Code)
	}
	if target.Kind != domain.LikeComment || target.ID != "c1" {
		t.Fatalf("unexpected target: %+v", target)
	}

	liked = false
	c, rec = newJSONContext(e, http.MethodPost, "/", "")
	c.SetParamNames("tweetId")
	c.SetParamValues("t1")
	withUser(c, "u1")
	if err := h.ToggleTweet(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on unlike, got %d", rec.Code)
	}
}

func TestSubscriptionHandler_Toggle(t *testing.T) {
	e := newEcho()
	stub := &stubSubscriptionService{
		toggleFn: func(_ context.Context, subscriberID, channelID string) (domain.SubscriptionToggle, error) {
			if subscriberID == channelID {
				return domain.SubscriptionToggle{}, domain.ErrSelfSubscription
			}
			return domain.SubscriptionToggle{Subscribed: true}, nil
		},
	}
	h := NewSubscriptionHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/", "")
	c.SetParamNames("channelId")
	c.SetParamValues("u2")
	withUser(c, "u1")
	if err := h.Toggle(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, _ = newJSONContext(e, http.MethodPost, "/", "")
	c.SetParamNames("channelId")
	c.SetParamValues("u1")
	withUser(c, "u1")
	requireKind(t, h.Toggle(c), domain.KindValidation)
}
