package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
	"github.com/vidtube/backend/internal/pkg/metrics"
)

// UserService implements registration, login, the refresh/logout lifecycle
// and account upkeep.
type UserService struct {
	users   ports.UserRepository
	videos  ports.VideoRepository
	tokens  *TokenService
	media   ports.MediaStore
	janitor ports.MediaJanitor
	log     zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	videos ports.VideoRepository,
	tokens *TokenService,
	media ports.MediaStore,
	janitor ports.MediaJanitor,
	log zerolog.Logger,
) *UserService {
	return &UserService{users: users, videos: videos, tokens: tokens, media: media, janitor: janitor, log: log}
}

func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := requireNonBlank(
		field{"fullname", in.FullName},
		field{"email", in.Email},
		field{"username", in.Username},
		field{"password", in.Password},
	); err != nil {
		return nil, err
	}

	username := domain.NormalizeUsername(in.Username)
	email := domain.NormalizeEmail(in.Email)

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email, "")
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	avatar, cover := "", ""
	if in.Avatar != nil {
		if avatar, err = uploadAsset(ctx, s.media, ports.FolderAvatars, *in.Avatar); err != nil {
			return nil, err
		}
		uploaded = append(uploaded, avatar)
	}
	if in.CoverImage != nil {
		if cover, err = uploadAsset(ctx, s.media, ports.FolderCovers, *in.CoverImage); err != nil {
			s.janitor.Discard(uploaded...)
			return nil, err
		}
		uploaded = append(uploaded, cover)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Avatar:       avatar,
		CoverImage:   cover,
		PasswordHash: hash,
		Session:      domain.LoggedOut(),
		WatchHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.janitor.Discard(uploaded...)
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login authenticates by username or email. Unknown identifiers and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*domain.User, domain.TokenPair, error) {
	if err := requireNonBlank(field{"email or username", identifier}, field{"password", password}); err != nil {
		return nil, domain.TokenPair{}, err
	}

	user, err := s.users.FindByIdentifier(ctx, domain.NormalizeEmail(identifier))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.LoginFailuresTotal.Inc()
			return nil, domain.TokenPair{}, domain.ErrInvalidCredentials
		}
		return nil, domain.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	if !checkPassword(user.PasswordHash, password) {
		metrics.LoginFailuresTotal.Inc()
		return nil, domain.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return user, pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	return s.tokens.Refresh(ctx, refreshToken)
}

// ChangePassword replaces the password hash and ends the current session.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := requireNonBlank(field{"oldPassword", oldPassword}, field{"newPassword", newPassword}); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, oldPassword) {
		return domain.NewValidationError("old password is incorrect")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.UpdateFields(ctx, userID, domain.UserPatch{PasswordHash: &hash}); err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, userID)
}

func (s *UserService) UpdateAccount(ctx context.Context, userID string, in ports.AccountInput) (*domain.User, error) {
	if err := requireNonBlank(
		field{"fullname", in.FullName},
		field{"email", in.Email},
		field{"username", in.Username},
	); err != nil {
		return nil, err
	}

	username := domain.NormalizeUsername(in.Username)
	email := domain.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email, userID)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	return s.users.UpdateFields(ctx, userID, domain.UserPatch{
		FullName: &fullName,
		Username: &username,
		Email:    &email,
	})
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID string, file ports.Upload) (*domain.User, error) {
	return s.replaceImage(ctx, userID, ports.FolderAvatars, file,
		func(u *domain.User) string { return u.Avatar },
		func(url string) domain.UserPatch { return domain.UserPatch{Avatar: &url} },
	)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, file ports.Upload) (*domain.User, error) {
	return s.replaceImage(ctx, userID, ports.FolderCovers, file,
		func(u *domain.User) string { return u.CoverImage },
		func(url string) domain.UserPatch { return domain.UserPatch{CoverImage: &url} },
	)
}

// replaceImage uploads the new image first, points the profile at it and only
// then queues the previous image for deletion.
func (s *UserService) replaceImage(
	ctx context.Context,
	userID string,
	folder ports.MediaFolder,
	file ports.Upload,
	current func(*domain.User) string,
	patch func(url string) domain.UserPatch,
) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := uploadAsset(ctx, s.media, folder, file)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.UpdateFields(ctx, userID, patch(url))
	if err != nil {
		s.janitor.Discard(url)
		return nil, err
	}

	if old := current(user); old != "" && old != url {
		s.janitor.Discard(old)
	}
	return updated, nil
}

func (s *UserService) ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	if err := requireNonBlank(field{"username", username}); err != nil {
		return nil, err
	}
	return s.users.ChannelProfile(ctx, domain.NormalizeUsername(username), viewerID)
}

func (s *UserService) AddWatchHistory(ctx context.Context, userID, videoID string) (bool, []string, error) {
	if err := requireNonBlank(field{"videoId", videoID}); err != nil {
		return false, nil, err
	}
	ok, err := s.videos.Visible(ctx, videoID, userID)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, nil, domain.ErrVideoNotFound
	}
	return s.users.AddToWatchHistory(ctx, userID, videoID)
}

func (s *UserService) WatchHistory(ctx context.Context, userID string) ([]domain.Video, error) {
	videos, err := s.users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.VisibleVideos(videos, userID), nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
