package domain

import (
	"errors"
	"strings"
)

// Kind classifies a failure so the transport layer can pick a status code
// without inspecting messages.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindInvalidToken
	KindTokenReuse
	KindInvalidCredentials
	KindNotFound
	KindForbidden
	KindConflict
	KindUpstream
)

var kindNames = map[Kind]string{
	KindInternal:           "internal error",
	KindValidation:         "validation failed",
	KindUnauthenticated:    "unauthenticated",
	KindInvalidToken:       "invalid token",
	KindTokenReuse:         "refresh token is expired or already used",
	KindInvalidCredentials: "invalid credentials",
	KindNotFound:           "not found",
	KindForbidden:          "access forbidden",
	KindConflict:           "conflict",
	KindUpstream:           "upstream failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindInternal]
}

// Error is the tagged error returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	// Details carries per-field messages for validation failures.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes a bare kind sentinel (no message) match any error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels. errors.Is(err, ErrNotFound) holds for every not-found error.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrTokenReuse         = &Error{Kind: KindTokenReuse}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrUpstream           = &Error{Kind: KindUpstream}
)

var (
	ErrUserNotFound         = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrVideoNotFound        = &Error{Kind: KindNotFound, Message: "video not found"}
	ErrCommentNotFound      = &Error{Kind: KindNotFound, Message: "comment not found"}
	ErrPlaylistNotFound     = &Error{Kind: KindNotFound, Message: "playlist not found"}
	ErrTweetNotFound        = &Error{Kind: KindNotFound, Message: "tweet not found"}
	ErrUserExists           = &Error{Kind: KindConflict, Message: "user with this username or email already exists"}
	ErrVideoAlreadyInList   = &Error{Kind: KindConflict, Message: "video already exists in the playlist"}
	ErrVideoNotInPlaylist   = &Error{Kind: KindNotFound, Message: "video is not in the playlist"}
	ErrSelfSubscription     = &Error{Kind: KindValidation, Message: "you cannot subscribe to yourself"}
	ErrMissingToken         = &Error{Kind: KindUnauthenticated, Message: "unauthorized request"}
	ErrRefreshTokenReplayed = &Error{Kind: KindTokenReuse, Message: "refresh token is expired or already used"}
)

// NewValidationError builds a validation failure listing each offending field.
func NewValidationError(details ...string) *Error {
	return &Error{Kind: KindValidation, Message: strings.Join(details, "; "), Details: details}
}

// NewError tags err with kind and a client-facing message.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Upstream wraps a media-store failure.
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf reports the kind of err, KindInternal for untagged errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
