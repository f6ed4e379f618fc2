package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SessionState is the refresh-token lifecycle of a user.
type SessionState uint8

const (
	SessionLoggedOut SessionState = iota
	SessionLoggedIn
)

func (s SessionState) String() string {
	if s == SessionLoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Session holds the single live refresh token of a user. Only its SHA-256
// digest is kept; the zero value is LoggedOut.
type Session struct {
	state     SessionState
	tokenHash string
}

// LoggedOut returns a session with no live refresh token.
func LoggedOut() Session { return Session{} }

// LoggedIn returns a session whose live refresh token hashes to tokenHash.
// An empty hash yields LoggedOut.
func LoggedIn(tokenHash string) Session {
	if tokenHash == "" {
		return Session{}
	}
	return Session{state: SessionLoggedIn, tokenHash: tokenHash}
}

// SessionFor hashes a raw refresh token into a LoggedIn session.
func SessionFor(refreshToken string) Session {
	return LoggedIn(HashToken(refreshToken))
}

func (s Session) State() SessionState { return s.state }
func (s Session) LoggedIn() bool      { return s.state == SessionLoggedIn }
func (s Session) TokenHash() string   { return s.tokenHash }

// Matches reports whether token is the live refresh token of this session.
func (s Session) Matches(token string) bool {
	if s.state != SessionLoggedIn || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(s.tokenHash)) == 1
}

// HashToken returns the hex SHA-256 digest of token.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
