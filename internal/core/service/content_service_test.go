package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

const (
	ownerA = "user-a"
	userB  = "user-b"
)

func newVideoFixture() (*VideoService, *stubVideoRepo, *stubCommentRepo, *stubJanitor) {
	videos := newStubVideoRepo()
	comments := newStubCommentRepo()
	janitor := &stubJanitor{}
	return NewVideoService(videos, comments, &stubMedia{}, janitor, zerolog.Nop()), videos, comments, janitor
}

func uploadVideo(t *testing.T, svc *VideoService, owner string) *domain.Video {
	t.Helper()
	v, err := svc.Upload(context.Background(), owner,
		ports.VideoInput{Title: "Intro", Description: "first", Duration: 12.5},
		*upload("thumb.png"), *upload("clip.mp4"))
	if err != nil {
		t.Fatalf("upload video: %v", err)
	}
	return v
}

func TestVideoService_OwnershipGuard(t *testing.T) {
	svc, _, _, _ := newVideoFixture()
	ctx := context.Background()
	video := uploadVideo(t, svc, ownerA)

	in := ports.VideoInput{Title: "Renamed", Description: "d"}
	if _, err := svc.Update(ctx, userB, video.ID, in, nil, nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner update, got %v", err)
	}
	if err := svc.Delete(ctx, userB, video.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner delete, got %v", err)
	}
	if _, err := svc.TogglePublish(ctx, userB, video.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner toggle, got %v", err)
	}
	if _, err := svc.Update(ctx, "", video.ID, in, nil, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without requester, got %v", err)
	}

	updated, err := svc.Update(ctx, ownerA, video.ID, in, nil, nil)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("unexpected title %q", updated.Title)
	}
}

func TestVideoService_MissingBeforeForbidden(t *testing.T) {
	svc, _, _, _ := newVideoFixture()
	if err := svc.Delete(context.Background(), userB, "video-404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVideoService_UnpublishedVisibleToOwnerOnly(t *testing.T) {
	svc, _, _, _ := newVideoFixture()
	ctx := context.Background()
	video := uploadVideo(t, svc, ownerA)

	toggled, err := svc.TogglePublish(ctx, ownerA, video.ID)
	if err != nil || toggled.IsPublished {
		t.Fatalf("expected unpublished video, got %+v (%v)", toggled, err)
	}

	if _, err := svc.Get(ctx, video.ID, ownerA); err != nil {
		t.Fatalf("owner should see unpublished video: %v", err)
	}
	if _, err := svc.Get(ctx, video.ID, userB); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other viewer, got %v", err)
	}
	if _, err := svc.Get(ctx, video.ID, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for anonymous viewer, got %v", err)
	}

	page, _ := svc.ListPublished(ctx, domain.PageRequest{})
	if page.TotalDocs != 0 || page.Limit != domain.DefaultPageLimit {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestVideoService_DeleteCascades(t *testing.T) {
	svc, videos, comments, janitor := newVideoFixture()
	ctx := context.Background()
	video := uploadVideo(t, svc, ownerA)
	_, _ = comments.Create(ctx, &domain.Comment{Content: "nice", Video: video.ID, Owner: userB})

	if err := svc.Delete(ctx, ownerA, video.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := videos.FindByID(ctx, video.ID); err == nil {
		t.Fatalf("video still stored")
	}
	if len(comments.comments) != 0 {
		t.Fatalf("comments of deleted video should be removed")
	}
	if !janitor.has(video.VideoFile) || !janitor.has(video.Thumbnail) {
		t.Fatalf("assets should be queued for deletion, got %v", janitor.discarded)
	}
}

func TestVideoService_UpdateReplacesThumbnail(t *testing.T) {
	svc, _, _, janitor := newVideoFixture()
	ctx := context.Background()
	video := uploadVideo(t, svc, ownerA)

	updated, err := svc.Update(ctx, ownerA, video.ID, ports.VideoInput{Title: "t", Description: "d"}, upload("new.png"), nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Thumbnail == video.Thumbnail || updated.VideoFile != video.VideoFile {
		t.Fatalf("only the thumbnail should change: %+v", updated)
	}
	if !janitor.has(video.Thumbnail) || janitor.has(video.VideoFile) {
		t.Fatalf("unexpected discards %v", janitor.discarded)
	}
}

// ---------------------------------------------------------------------------
// comments, playlists, tweets
// ---------------------------------------------------------------------------

func TestCommentService_Lifecycle(t *testing.T) {
	videos := newStubVideoRepo()
	comments := newStubCommentRepo()
	svc := NewCommentService(comments, videos, zerolog.Nop())
	ctx := context.Background()
	video, _ := videos.Create(ctx, &domain.Video{Owner: ownerA, IsPublished: true})

	if _, err := svc.Add(ctx, userB, "video-404", "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}
	if _, err := svc.Add(ctx, userB, video.ID, " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	comment, err := svc.Add(ctx, userB, video.ID, "hi")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Update(ctx, ownerA, comment.ID, "edited"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("video owner must not edit others' comments, got %v", err)
	}
	if _, err := svc.Update(ctx, userB, comment.ID, "edited"); err != nil {
		t.Fatalf("author update: %v", err)
	}

	page, err := svc.List(ctx, userB, video.ID, domain.PageRequest{Page: 1, Limit: 500})
	if err != nil || page.TotalDocs != 1 || page.Limit != domain.MaxPageLimit {
		t.Fatalf("unexpected list %+v (%v)", page, err)
	}

	if err := svc.Delete(ctx, userB, comment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, userB, comment.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPlaylistService_Videos(t *testing.T) {
	videos := newStubVideoRepo()
	svc := NewPlaylistService(newStubPlaylistRepo(), videos, zerolog.Nop())
	ctx := context.Background()
	video, _ := videos.Create(ctx, &domain.Video{Owner: ownerA})

	if _, err := svc.Create(ctx, ownerA, "", "d"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	list, err := svc.Create(ctx, ownerA, "Favs", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AddVideo(ctx, userB, list.ID, video.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.AddVideo(ctx, ownerA, list.ID, "video-404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}
	updated, err := svc.AddVideo(ctx, ownerA, list.ID, video.ID)
	if err != nil || len(updated.Videos) != 1 {
		t.Fatalf("add video: %+v (%v)", updated, err)
	}
	if _, err := svc.AddVideo(ctx, ownerA, list.ID, video.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate, got %v", err)
	}

	updated, err = svc.RemoveVideo(ctx, ownerA, list.ID, video.ID)
	if err != nil || len(updated.Videos) != 0 {
		t.Fatalf("remove video: %+v (%v)", updated, err)
	}
	if _, err := svc.RemoveVideo(ctx, ownerA, list.ID, video.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent video, got %v", err)
	}

	if err := svc.Delete(ctx, userB, list.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, ownerA, list.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestTweetService_OwnershipGuard(t *testing.T) {
	svc := NewTweetService(newStubTweetRepo(), zerolog.Nop())
	ctx := context.Background()

	tweet, err := svc.Create(ctx, ownerA, "hello")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(ctx, userB, tweet.ID, "x"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	updated, err := svc.Update(ctx, ownerA, tweet.ID, "hello again")
	if err != nil || updated.Content != "hello again" {
		t.Fatalf("owner update: %+v (%v)", updated, err)
	}
	if err := svc.Delete(ctx, userB, tweet.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, ownerA, tweet.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	mine, _ := svc.ListMine(ctx, ownerA)
	if len(mine) != 0 {
		t.Fatalf("expected no tweets, got %v", mine)
	}
}

func TestUnpublishedVideo_HiddenFromOtherUsers(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	playlists := newStubPlaylistRepo()
	playlists.videos = f.videos
	likes := newStubLikeRepo()
	likes.videos = f.videos
	comments := NewCommentService(newStubCommentRepo(), f.videos, zerolog.Nop())
	lists := NewPlaylistService(playlists, f.videos, zerolog.Nop())
	likeSvc := NewLikeService(likes, f.videos, newStubCommentRepo(), newStubTweetRepo(), zerolog.Nop())
	alice, _ := f.users.Create(ctx, &domain.User{Username: "alice", Email: "a@x.com"})
	bob, _ := f.users.Create(ctx, &domain.User{Username: "bob", Email: "b@x.com"})
	owner, viewer := alice.ID, bob.ID

	hidden, _ := f.videos.Create(ctx, &domain.Video{Title: "secret", VideoFile: "videos/secret.mp4", Owner: owner})
	shown, _ := f.videos.Create(ctx, &domain.Video{Title: "public", Owner: owner, IsPublished: true})
	list, _ := lists.Create(ctx, viewer, "mine", "")

	if _, _, err := f.svc.AddWatchHistory(ctx, viewer, hidden.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("watch history: expected ErrNotFound, got %v", err)
	}
	if _, err := lists.AddVideo(ctx, viewer, list.ID, hidden.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("playlist add: expected ErrNotFound, got %v", err)
	}
	if _, err := comments.Add(ctx, viewer, hidden.ID, "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("comment add: expected ErrNotFound, got %v", err)
	}
	if _, err := comments.List(ctx, viewer, hidden.ID, domain.PageRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("comment list: expected ErrNotFound, got %v", err)
	}
	if _, err := likeSvc.Toggle(ctx, viewer, domain.LikeTarget{Kind: domain.LikeVideo, ID: hidden.ID}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("like: expected ErrNotFound, got %v", err)
	}

	// The owner still reaches it.
	if _, err := comments.Add(ctx, owner, hidden.ID, "note to self"); err != nil {
		t.Fatalf("owner comment: %v", err)
	}
	if added, _, err := f.svc.AddWatchHistory(ctx, owner, hidden.ID); err != nil || !added {
		t.Fatalf("owner watch history: added=%v err=%v", added, err)
	}

	// Collected while published, then hidden.
	if _, _, err := f.svc.AddWatchHistory(ctx, viewer, shown.ID); err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if _, err := lists.AddVideo(ctx, viewer, list.ID, shown.ID); err != nil {
		t.Fatalf("playlist add: %v", err)
	}
	if _, err := likeSvc.Toggle(ctx, viewer, domain.LikeTarget{Kind: domain.LikeVideo, ID: shown.ID}); err != nil {
		t.Fatalf("like: %v", err)
	}
	unpublished := false
	_, _ = f.videos.Update(ctx, shown.ID, domain.VideoPatch{IsPublished: &unpublished})

	history, err := f.svc.WatchHistory(ctx, viewer)
	if err != nil || len(history) != 0 {
		t.Fatalf("watch history leaked %v (%v)", history, err)
	}
	detail, err := lists.Get(ctx, viewer, list.ID)
	if err != nil || len(detail.Videos) != 0 {
		t.Fatalf("playlist leaked %+v (%v)", detail, err)
	}
	liked, err := likeSvc.LikedVideos(ctx, viewer)
	if err != nil || len(liked) != 0 {
		t.Fatalf("liked videos leaked %v (%v)", liked, err)
	}

	own, _ := f.svc.WatchHistory(ctx, owner)
	if len(own) != 1 || own[0].ID != hidden.ID {
		t.Fatalf("owner history should keep own video, got %v", own)
	}
}

// ---------------------------------------------------------------------------
// likes and subscriptions
// ---------------------------------------------------------------------------

func TestLikeService_Toggle(t *testing.T) {
	videos := newStubVideoRepo()
	tweets := newStubTweetRepo()
	svc := NewLikeService(newStubLikeRepo(), videos, newStubCommentRepo(), tweets, zerolog.Nop())
	ctx := context.Background()
	video, _ := videos.Create(ctx, &domain.Video{Owner: ownerA, IsPublished: true})
	tweet, _ := tweets.Create(ctx, &domain.Tweet{Owner: ownerA, Content: "t"})

	target := domain.LikeTarget{Kind: domain.LikeVideo, ID: video.ID}
	res, err := svc.Toggle(ctx, userB, target)
	if err != nil || !res.Liked || res.Like == nil || res.Like.Video != video.ID {
		t.Fatalf("first toggle should like: %+v (%v)", res, err)
	}
	if _, err := svc.Toggle(ctx, userB, domain.LikeTarget{Kind: domain.LikeTweet, ID: tweet.ID}); err != nil {
		t.Fatalf("like tweet: %v", err)
	}

	liked, _ := svc.LikedVideos(ctx, userB)
	if len(liked) != 1 {
		t.Fatalf("expected one liked video, got %v", liked)
	}

	res, err = svc.Toggle(ctx, userB, target)
	if err != nil || res.Liked {
		t.Fatalf("second toggle should unlike: %+v (%v)", res, err)
	}

	if _, err := svc.Toggle(ctx, userB, domain.LikeTarget{Kind: domain.LikeComment, ID: "comment-404"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Toggle(ctx, userB, domain.LikeTarget{Kind: "story", ID: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSubscriptionService_Toggle(t *testing.T) {
	users := newStubUserRepo()
	svc := NewSubscriptionService(newStubSubscriptionRepo(), users, zerolog.Nop())
	ctx := context.Background()
	alice, _ := users.Create(ctx, &domain.User{Username: "alice", Email: "a@x.com"})
	bob, _ := users.Create(ctx, &domain.User{Username: "bob", Email: "b@x.com"})

	if _, err := svc.Toggle(ctx, alice.ID, alice.ID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for self subscription, got %v", err)
	}
	if _, err := svc.Toggle(ctx, alice.ID, "user-404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing channel, got %v", err)
	}

	res, err := svc.Toggle(ctx, alice.ID, bob.ID)
	if err != nil || !res.Subscribed {
		t.Fatalf("expected subscription, got %+v (%v)", res, err)
	}
	subs, _ := svc.Subscribers(ctx, bob.ID)
	if len(subs) != 1 || subs[0].User.ID != alice.ID {
		t.Fatalf("unexpected subscribers %v", subs)
	}
	channels, _ := svc.SubscribedChannels(ctx, alice.ID)
	if len(channels) != 1 || channels[0].User.ID != bob.ID {
		t.Fatalf("unexpected channels %v", channels)
	}

	res, err = svc.Toggle(ctx, alice.ID, bob.ID)
	if err != nil || res.Subscribed {
		t.Fatalf("expected unsubscribe, got %+v (%v)", res, err)
	}
}
