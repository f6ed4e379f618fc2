package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

// ---------------------------------------------------------------------------
// users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	seq    int
	users  map[string]*domain.User
	videos *stubVideoRepo
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.WatchHistory = append([]string(nil), u.WatchHistory...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if id == excludeID {
			continue
		}
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) UpdateFields(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.CoverImage != nil {
		u.CoverImage = *patch.CoverImage
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetSession(_ context.Context, id string, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Session = session
	return nil
}

func (r *stubUserRepo) SwapSession(_ context.Context, id string, expected, next domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.Session != expected {
		return domain.ErrRefreshTokenReplayed
	}
	u.Session = next
	return nil
}

func (r *stubUserRepo) AddToWatchHistory(_ context.Context, id, videoID string) (bool, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, nil, domain.ErrUserNotFound
	}
	for _, v := range u.WatchHistory {
		if v == videoID {
			return false, append([]string(nil), u.WatchHistory...), nil
		}
	}
	u.WatchHistory = append(u.WatchHistory, videoID)
	return true, append([]string(nil), u.WatchHistory...), nil
}

func (r *stubUserRepo) WatchHistory(ctx context.Context, id string) ([]domain.Video, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := []domain.Video{}
	for _, vid := range u.WatchHistory {
		if r.videos == nil {
			break
		}
		if v, err := r.videos.FindByID(ctx, vid); err == nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ChannelProfile(_ context.Context, username, _ string) (*domain.ChannelProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return &domain.ChannelProfile{ID: u.ID, Username: u.Username, FullName: u.FullName, Email: u.Email}, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// ---------------------------------------------------------------------------
// videos
// ---------------------------------------------------------------------------

type stubVideoRepo struct {
	mu     sync.Mutex
	seq    int
	videos map[string]*domain.Video
}

func newStubVideoRepo() *stubVideoRepo {
	return &stubVideoRepo{videos: make(map[string]*domain.Video)}
}

func (r *stubVideoRepo) Create(_ context.Context, video *domain.Video) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := *video
	stored.ID = fmt.Sprintf("video-%d", r.seq)
	r.videos[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubVideoRepo) FindByID(_ context.Context, id string) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	out := *v
	return &out, nil
}

func (r *stubVideoRepo) FindDetail(ctx context.Context, id string) (*domain.VideoDetail, error) {
	v, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.VideoDetail{Video: *v, OwnerInfo: domain.UserSummary{ID: v.Owner}}, nil
}

func (r *stubVideoRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Video{}
	for _, v := range r.videos {
		if v.Owner == ownerID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubVideoRepo) ListPublished(_ context.Context, page domain.PageRequest) (domain.Page[domain.VideoDetail], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.VideoDetail
	for _, v := range r.videos {
		if v.IsPublished {
			all = append(all, domain.VideoDetail{Video: *v})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := int(page.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return domain.NewPage(all[start:end], int64(len(all)), page), nil
}

func (r *stubVideoRepo) Update(_ context.Context, id string, patch domain.VideoPatch) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	if patch.Title != nil {
		v.Title = *patch.Title
	}
	if patch.Description != nil {
		v.Description = *patch.Description
	}
	if patch.Duration != nil {
		v.Duration = *patch.Duration
	}
	if patch.Thumbnail != nil {
		v.Thumbnail = *patch.Thumbnail
	}
	if patch.VideoFile != nil {
		v.VideoFile = *patch.VideoFile
	}
	if patch.IsPublished != nil {
		v.IsPublished = *patch.IsPublished
	}
	out := *v
	return &out, nil
}

func (r *stubVideoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[id]; !ok {
		return domain.ErrVideoNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *stubVideoRepo) Visible(_ context.Context, id, viewerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	return ok && v.VisibleTo(viewerID), nil
}

// ---------------------------------------------------------------------------
// comments
// ---------------------------------------------------------------------------

type stubCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments map[string]*domain.Comment
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[string]*domain.Comment)}
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := *c
	stored.ID = fmt.Sprintf("comment-%d", r.seq)
	r.comments[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubCommentRepo) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *stubCommentRepo) ListByVideo(_ context.Context, videoID string, page domain.PageRequest) (domain.Page[domain.CommentView], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var views []domain.CommentView
	for _, c := range r.comments {
		if c.Video == videoID {
			views = append(views, domain.CommentView{ID: c.ID, Content: c.Content, Owner: domain.UserSummary{ID: c.Owner}})
		}
	}
	return domain.NewPage(views, int64(len(views)), page), nil
}

func (r *stubCommentRepo) UpdateContent(_ context.Context, id, content string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	c.Content = content
	out := *c
	return &out, nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, id)
	return nil
}

func (r *stubCommentRepo) DeleteByVideo(_ context.Context, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.comments {
		if c.Video == videoID {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *stubCommentRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.comments[id]
	return ok, nil
}

// ---------------------------------------------------------------------------
// playlists
// ---------------------------------------------------------------------------

type stubPlaylistRepo struct {
	mu        sync.Mutex
	seq       int
	playlists map[string]*domain.Playlist
	videos    *stubVideoRepo
}

func newStubPlaylistRepo() *stubPlaylistRepo {
	return &stubPlaylistRepo{playlists: make(map[string]*domain.Playlist)}
}

func clonePlaylist(p *domain.Playlist) *domain.Playlist {
	clone := *p
	clone.Videos = append([]string{}, p.Videos...)
	return &clone
}

func (r *stubPlaylistRepo) Create(_ context.Context, p *domain.Playlist) (*domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := clonePlaylist(p)
	stored.ID = fmt.Sprintf("playlist-%d", r.seq)
	r.playlists[stored.ID] = stored
	return clonePlaylist(stored), nil
}

func (r *stubPlaylistRepo) FindByID(_ context.Context, id string) (*domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	return clonePlaylist(p), nil
}

func (r *stubPlaylistRepo) FindDetail(ctx context.Context, id string) (*domain.PlaylistDetail, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	videos := []domain.Video{}
	for _, vid := range p.Videos {
		if r.videos == nil {
			break
		}
		if v, err := r.videos.FindByID(ctx, vid); err == nil {
			videos = append(videos, *v)
		}
	}
	return &domain.PlaylistDetail{ID: p.ID, Name: p.Name, Description: p.Description, Videos: videos, Owner: p.Owner}, nil
}

func (r *stubPlaylistRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Playlist{}
	for _, p := range r.playlists {
		if p.Owner == ownerID {
			out = append(out, *clonePlaylist(p))
		}
	}
	return out, nil
}

func (r *stubPlaylistRepo) Update(_ context.Context, id, name, description string) (*domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	p.Name, p.Description = name, description
	return clonePlaylist(p), nil
}

func (r *stubPlaylistRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.playlists, id)
	return nil
}

func (r *stubPlaylistRepo) AddVideo(_ context.Context, id, videoID string) (*domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	p.Videos = append(p.Videos, videoID)
	return clonePlaylist(p), nil
}

func (r *stubPlaylistRepo) RemoveVideo(_ context.Context, id, videoID string) (*domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	kept := p.Videos[:0]
	for _, v := range p.Videos {
		if v != videoID {
			kept = append(kept, v)
		}
	}
	p.Videos = kept
	return clonePlaylist(p), nil
}

// ---------------------------------------------------------------------------
// tweets
// ---------------------------------------------------------------------------

type stubTweetRepo struct {
	mu     sync.Mutex
	seq    int
	tweets map[string]*domain.Tweet
}

func newStubTweetRepo() *stubTweetRepo {
	return &stubTweetRepo{tweets: make(map[string]*domain.Tweet)}
}

func (r *stubTweetRepo) Create(_ context.Context, t *domain.Tweet) (*domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := *t
	stored.ID = fmt.Sprintf("tweet-%d", r.seq)
	r.tweets[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubTweetRepo) FindByID(_ context.Context, id string) (*domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok {
		return nil, domain.ErrTweetNotFound
	}
	out := *t
	return &out, nil
}

func (r *stubTweetRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Tweet{}
	for _, t := range r.tweets {
		if t.Owner == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTweetRepo) UpdateContent(_ context.Context, id, content string) (*domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok {
		return nil, domain.ErrTweetNotFound
	}
	t.Content = content
	out := *t
	return &out, nil
}

func (r *stubTweetRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tweets, id)
	return nil
}

func (r *stubTweetRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tweets[id]
	return ok, nil
}

// ---------------------------------------------------------------------------
// likes and subscriptions
// ---------------------------------------------------------------------------

type stubLikeRepo struct {
	mu     sync.Mutex
	seq    int
	likes  map[string]*domain.Like
	videos *stubVideoRepo
}

func newStubLikeRepo() *stubLikeRepo {
	return &stubLikeRepo{likes: make(map[string]*domain.Like)}
}

func (r *stubLikeRepo) Find(_ context.Context, target domain.LikeTarget, userID string) (*domain.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := domain.NewLike(target, userID, time.Time{})
	for _, l := range r.likes {
		if l.LikedBy == userID && l.Video == want.Video && l.Comment == want.Comment && l.Tweet == want.Tweet {
			out := *l
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubLikeRepo) Create(_ context.Context, like *domain.Like) (*domain.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := *like
	stored.ID = fmt.Sprintf("like-%d", r.seq)
	r.likes[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubLikeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes, id)
	return nil
}

func (r *stubLikeRepo) LikedVideos(ctx context.Context, userID string) ([]domain.Video, error) {
	r.mu.Lock()
	var ids []string
	for _, l := range r.likes {
		if l.LikedBy == userID && l.Video != "" {
			ids = append(ids, l.Video)
		}
	}
	r.mu.Unlock()
	sort.Strings(ids)

	out := []domain.Video{}
	for _, id := range ids {
		if r.videos == nil {
			out = append(out, domain.Video{ID: id, IsPublished: true})
			continue
		}
		if v, err := r.videos.FindByID(ctx, id); err == nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

type stubSubscriptionRepo struct {
	mu   sync.Mutex
	seq  int
	subs map[string]*domain.Subscription
}

func newStubSubscriptionRepo() *stubSubscriptionRepo {
	return &stubSubscriptionRepo{subs: make(map[string]*domain.Subscription)}
}

func (r *stubSubscriptionRepo) Find(_ context.Context, subscriberID, channelID string) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.Subscriber == subscriberID && s.Channel == channelID {
			out := *s
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubSubscriptionRepo) Create(_ context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := *sub
	stored.ID = fmt.Sprintf("sub-%d", r.seq)
	r.subs[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubSubscriptionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
	return nil
}

func (r *stubSubscriptionRepo) ListSubscribers(_ context.Context, channelID string) ([]domain.SubscriptionView, error) {
	return r.list(func(s *domain.Subscription) (bool, string) { return s.Channel == channelID, s.Subscriber })
}

func (r *stubSubscriptionRepo) ListSubscribedChannels(_ context.Context, subscriberID string) ([]domain.SubscriptionView, error) {
	return r.list(func(s *domain.Subscription) (bool, string) { return s.Subscriber == subscriberID, s.Channel })
}

func (r *stubSubscriptionRepo) list(match func(*domain.Subscription) (bool, string)) ([]domain.SubscriptionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.SubscriptionView{}
	for _, s := range r.subs {
		if ok, other := match(s); ok {
			out = append(out, domain.SubscriptionView{ID: s.ID, User: domain.UserSummary{ID: other}})
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// media
// ---------------------------------------------------------------------------

type stubMedia struct {
	mu       sync.Mutex
	uploads  []string
	failWith error
}

func (m *stubMedia) Upload(_ context.Context, folder ports.MediaFolder, file ports.Upload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	url := fmt.Sprintf("https://cdn.test/%s/%d-%s", folder, len(m.uploads)+1, file.Filename)
	m.uploads = append(m.uploads, url)
	return url, nil
}

func (m *stubMedia) Delete(context.Context, string) error { return nil }

type stubJanitor struct {
	mu        sync.Mutex
	discarded []string
}

func (j *stubJanitor) Discard(urls ...string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, u := range urls {
		if u != "" {
			j.discarded = append(j.discarded, u)
		}
	}
}

func (j *stubJanitor) has(url string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, u := range j.discarded {
		if u == url {
			return true
		}
	}
	return false
}

var errUploadFailed = errors.New("bucket unavailable")
