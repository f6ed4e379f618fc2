package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_KindSentinels(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", ErrVideoNotFound)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("specific sentinel should match its kind")
	}
	if !errors.Is(wrapped, ErrVideoNotFound) {
		t.Fatalf("specific sentinel should match itself")
	}
	if errors.Is(wrapped, ErrCommentNotFound) {
		t.Fatalf("specific sentinels of the same kind must not match each other")
	}
	if errors.Is(wrapped, ErrForbidden) {
		t.Fatalf("different kinds must not match")
	}
	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("unexpected kind %v", KindOf(wrapped))
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("untagged errors are internal")
	}
}

func TestError_OuterKindWins(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewError(KindInvalidToken, "invalid refresh token", fmt.Errorf("find: %w", ErrUserNotFound))

	if KindOf(err) != KindInvalidToken {
		t.Fatalf("expected outer kind, got %v", KindOf(err))
	}

	up := Upstream("failed to upload avatar", cause)
	if !errors.Is(up, cause) {
		t.Fatalf("upstream error should unwrap to its cause")
	}
	if up.Error() != "failed to upload avatar: connection reset" {
		t.Fatalf("unexpected message %q", up.Error())
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("title is required", "description is required")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind")
	}
	if len(err.Details) != 2 || err.Message != "title is required; description is required" {
		t.Fatalf("unexpected error %+v", err)
	}
}
