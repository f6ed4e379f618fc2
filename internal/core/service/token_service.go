package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/pkg/metrics"
)

const (
	tokenIssuer     = "vidtube"
	audienceAccess  = "access"
	audienceRefresh = "refresh"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 10 * 24 * time.Hour
)

// SessionStore is the slice of the credential store the token service needs.
type SessionStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	SetSession(ctx context.Context, id string, session domain.Session) error
	SwapSession(ctx context.Context, id string, expected, next domain.Session) error
}

// TokenConfig holds the signing secrets and lifetimes. Access and refresh
// tokens must use different secrets.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

type accessClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullname,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues, verifies and rotates session tokens.
type TokenService struct {
	store SessionStore
	cfg   TokenConfig
	now   func() time.Time
	log   zerolog.Logger
}

func NewTokenService(store SessionStore, cfg TokenConfig, log zerolog.Logger) *TokenService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &TokenService{store: store, cfg: cfg, now: time.Now, log: log}
}

// IssueTokenPair signs a fresh pair for user and makes its refresh token the
// only live one, invalidating every earlier refresh token.
func (s *TokenService) IssueTokenPair(ctx context.Context, user *domain.User) (domain.TokenPair, error) {
	pair, err := s.sign(user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.store.SetSession(ctx, user.ID, domain.SessionFor(pair.RefreshToken)); err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	metrics.TokensIssuedTotal.WithLabelValues("login").Inc()
	return pair, nil
}

// VerifyAccessToken checks signature and expiry and returns the subject id.
// It never reads storage.
func (s *TokenService) VerifyAccessToken(token string) (string, error) {
	if token == "" {
		metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
		return "", domain.ErrMissingToken
	}
	userID, err := s.parse(token, s.cfg.AccessSecret, audienceAccess, &accessClaims{})
	if err != nil {
		metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
		return "", err
	}
	return userID, nil
}

// Refresh exchanges the live refresh token for a new pair. The stored session
// is swapped only if it still holds the presented token, so of two concurrent
// calls with the same token exactly one succeeds.
func (s *TokenService) Refresh(ctx context.Context, presented string) (domain.TokenPair, error) {
	if presented == "" {
		metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
		return domain.TokenPair{}, domain.ErrMissingToken
	}

	userID, err := s.parse(presented, s.cfg.RefreshSecret, audienceRefresh, &jwt.RegisteredClaims{})
	if err != nil {
		metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
		return domain.TokenPair{}, err
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
			return domain.TokenPair{}, domain.NewError(domain.KindInvalidToken, "invalid refresh token", nil)
		}
		return domain.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	if !user.Session.Matches(presented) {
		metrics.TokenRejectionsTotal.WithLabelValues("reused").Inc()
		s.log.Warn().Str("user_id", user.ID).Str("session", user.Session.State().String()).Msg("stale refresh token presented")
		return domain.TokenPair{}, domain.ErrRefreshTokenReplayed
	}

	pair, err := s.sign(user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.store.SwapSession(ctx, user.ID, user.Session, domain.SessionFor(pair.RefreshToken)); err != nil {
		if errors.Is(err, domain.ErrTokenReuse) {
			metrics.TokenRejectionsTotal.WithLabelValues("reused").Inc()
			s.log.Warn().Str("user_id", user.ID).Msg("refresh lost rotation race")
		}
		return domain.TokenPair{}, err
	}

	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return pair, nil
}

// Revoke logs the user out by clearing the stored session.
func (s *TokenService) Revoke(ctx context.Context, userID string) error {
	if err := s.store.SetSession(ctx, userID, domain.LoggedOut()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *TokenService) sign(user *domain.User) (domain.TokenPair, error) {
	now := s.now().UTC()
	accessExp := now.Add(s.cfg.AccessTTL)
	refreshExp := now.Add(s.cfg.RefreshTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		RegisteredClaims: s.registered(user.ID, audienceAccess, now, accessExp),
	})
	accessToken, err := access.SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, s.registered(user.ID, audienceRefresh, now, refreshExp))
	refreshToken, err := refresh.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// registered builds the standard claims. The random jti keeps two tokens
// issued within the same second distinct.
func (s *TokenService) registered(subject, audience string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
}

func (s *TokenService) parse(token, secret, audience string, claims jwt.Claims) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audience),
	)
	if err != nil || !parsed.Valid {
		return "", domain.NewError(domain.KindInvalidToken, "invalid or expired token", err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", domain.NewError(domain.KindInvalidToken, "token has no subject", err)
	}
	return subject, nil
}
