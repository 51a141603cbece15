package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, e *env, ownerID uint64, title string) *model.Video {
	t.Helper()
	video, err := e.videos.Publish(context.Background(), ownerID, PublishVideoInput{
		Title:       title,
		Description: "about " + title,
		Duration:    42,
		VideoFile:   upload("clip.mp4"),
		Thumbnail:   upload("thumb.jpg"),
	})
	require.NoError(t, err)
	return video
}

func TestPublishVideo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")

	video := publish(t, e, alice.ID, "hello")
	assert.True(t, video.IsPublished)
	assert.Equal(t, alice.ID, video.OwnerID)
	assert.Contains(t, video.VideoFile, "videos/")
	assert.Contains(t, video.Thumbnail, "thumbnails/")

	_, err := e.videos.Publish(ctx, alice.ID, PublishVideoInput{Title: " ", Description: "d", VideoFile: upload("a.mp4"), Thumbnail: upload("a.jpg")})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	_, err = e.videos.Publish(ctx, alice.ID, PublishVideoInput{Title: "t", Description: "d", VideoFile: upload("a.mp4")})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestVideoOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	bob := register(t, e, "bob", "bob@example.com")
	video := publish(t, e, alice.ID, "hello")

	_, err := e.videos.Update(ctx, bob.ID, video.ID, UpdateVideoInput{Title: "mine now"})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	_, err = e.videos.TogglePublishStatus(ctx, bob.ID, video.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	err = e.videos.Delete(ctx, bob.ID, video.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = e.videos.Update(ctx, alice.ID, 9999, UpdateVideoInput{Title: "x"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	_, err = e.videos.TogglePublishStatus(ctx, alice.ID, 9999)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	err = e.videos.Delete(ctx, alice.ID, 9999)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = e.videos.Update(ctx, alice.ID, video.ID, UpdateVideoInput{})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	updated, err := e.videos.Update(ctx, alice.ID, video.ID, UpdateVideoInput{Title: "renamed", Thumbnail: upload("new.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.NotEqual(t, video.Thumbnail, updated.Thumbnail)
	require.Len(t, e.publisher.messages, 1)
	assert.Contains(t, e.publisher.messages[0], video.Thumbnail)

	toggled, err := e.videos.TogglePublishStatus(ctx, alice.ID, video.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsPublished)

	// 未发布之后别人就看不到了
	_, err = e.videos.GetVisibleVideo(ctx, video.ID, bob.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	_, err = e.videos.GetVisibleVideo(ctx, video.ID, alice.ID)
	assert.NoError(t, err)

	require.NoError(t, e.videos.Delete(ctx, alice.ID, video.ID))
	_, err = e.videos.GetVideoByID(ctx, video.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestCommentLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	bob := register(t, e, "bob", "bob@example.com")
	video := publish(t, e, alice.ID, "hello")

	_, err := e.comments.Add(ctx, bob.ID, video.ID, "   ")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	_, err = e.comments.Add(ctx, bob.ID, 9999, "hi")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	comment, err := e.comments.Add(ctx, bob.ID, video.ID, " first! ")
	require.NoError(t, err)
	assert.Equal(t, "first!", comment.Content)
	assert.Equal(t, "bob", comment.Owner.Username)

	_, err = e.comments.Update(ctx, alice.ID, comment.ID, "edited by alice")
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	err = e.comments.Delete(ctx, alice.ID, comment.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	_, err = e.comments.Update(ctx, bob.ID, 777, "nope")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	edited, err := e.comments.Update(ctx, bob.ID, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	require.NoError(t, e.comments.Delete(ctx, bob.ID, comment.ID))
	err = e.comments.Delete(ctx, bob.ID, comment.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestToggleLikeParity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	bob := register(t, e, "bob", "bob@example.com")
	video := publish(t, e, alice.ID, "hello")

	for i := 1; i <= 5; i++ {
		liked, err := e.likes.ToggleVideoLike(ctx, bob.ID, video.ID)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 1, liked)

		var rows int64
		require.NoError(t, e.db.Model(&model.Like{}).
			Where("liked_by_id = ? AND target_kind = ? AND target_id = ?", bob.ID, model.LikeTargetVideo, video.ID).
			Count(&rows).Error)
		assert.EqualValues(t, i%2, rows)
	}

	_, err := e.likes.ToggleVideoLike(ctx, bob.ID, 9999)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	_, err = e.likes.ToggleCommentLike(ctx, bob.ID, 9999)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	_, err = e.likes.ToggleTweetLike(ctx, bob.ID, 9999)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestLikeKindsAreIndependent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	video := publish(t, e, alice.ID, "hello")
	comment, err := e.comments.Add(ctx, alice.ID, video.ID, "c")
	require.NoError(t, err)
	tweet, err := e.tweets.Create(ctx, alice.ID, "t")
	require.NoError(t, err)

	for _, toggle := range []func() (bool, error){
		func() (bool, error) { return e.likes.ToggleVideoLike(ctx, alice.ID, video.ID) },
		func() (bool, error) { return e.likes.ToggleCommentLike(ctx, alice.ID, comment.ID) },
		func() (bool, error) { return e.likes.ToggleTweetLike(ctx, alice.ID, tweet.ID) },
	} {
		liked, err := toggle()
		require.NoError(t, err)
		assert.True(t, liked)
	}

	var rows int64
	require.NoError(t, e.db.Model(&model.Like{}).Count(&rows).Error)
	assert.EqualValues(t, 3, rows)
}

func TestToggleSubscription(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	bob := register(t, e, "bob", "bob@example.com")

	_, err := e.subscriptions.ToggleSubscription(ctx, alice.ID, alice.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	_, err = e.subscriptions.ToggleSubscription(ctx, alice.ID, 9999)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	on, err := e.subscriptions.ToggleSubscription(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, on)
	off, err := e.subscriptions.ToggleSubscription(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, off)
	on, err = e.subscriptions.ToggleSubscription(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestPlaylistMembership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	bob := register(t, e, "bob", "bob@example.com")
	v1 := publish(t, e, alice.ID, "one")
	v2 := publish(t, e, alice.ID, "two")

	_, err := e.playlists.Create(ctx, alice.ID, "  ", "d")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	playlist, err := e.playlists.Create(ctx, alice.ID, "mix", "favourites")
	require.NoError(t, err)

	require.NoError(t, e.playlists.AddVideo(ctx, alice.ID, playlist.ID, v1.ID))
	require.NoError(t, e.playlists.AddVideo(ctx, alice.ID, playlist.ID, v2.ID))

	err = e.playlists.AddVideo(ctx, alice.ID, playlist.ID, v1.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	var members []model.PlaylistVideo
	require.NoError(t, e.db.Where("playlist_id = ?", playlist.ID).Order("position").Find(&members).Error)
	require.Len(t, members, 2)
	assert.Equal(t, v1.ID, members[0].VideoID)
	assert.Equal(t, v2.ID, members[1].VideoID)

	err = e.playlists.AddVideo(ctx, bob.ID, playlist.ID, v1.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	err = e.playlists.AddVideo(ctx, alice.ID, 9999, v1.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	err = e.playlists.AddVideo(ctx, alice.ID, playlist.ID, 9999)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = e.playlists.RemoveVideo(ctx, bob.ID, playlist.ID, v1.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	require.NoError(t, e.playlists.RemoveVideo(ctx, alice.ID, playlist.ID, v1.ID))
	err = e.playlists.RemoveVideo(ctx, alice.ID, playlist.ID, v1.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestPlaylistOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	bob := register(t, e, "bob", "bob@example.com")
	v1 := publish(t, e, alice.ID, "one")
	playlist, err := e.playlists.Create(ctx, alice.ID, "mix", "")
	require.NoError(t, err)
	require.NoError(t, e.playlists.AddVideo(ctx, alice.ID, playlist.ID, v1.ID))

	_, err = e.playlists.Update(ctx, bob.ID, playlist.ID, "stolen", "")
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	err = e.playlists.Delete(ctx, bob.ID, playlist.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	_, err = e.playlists.Update(ctx, alice.ID, 9999, "x", "")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	renamed, err := e.playlists.Update(ctx, alice.ID, playlist.ID, "renamed", "")
	require.NoError(t, err)
	assert.Equal(t, "renamed", renamed.Name)

	require.NoError(t, e.playlists.Delete(ctx, alice.ID, playlist.ID))
	var members int64
	require.NoError(t, e.db.Model(&model.PlaylistVideo{}).Where("playlist_id = ?", playlist.ID).Count(&members).Error)
	assert.Zero(t, members)
	err = e.playlists.Delete(ctx, alice.ID, playlist.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestTweetLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	bob := register(t, e, "bob", "bob@example.com")

	_, err := e.tweets.Create(ctx, alice.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	tweet, err := e.tweets.Create(ctx, alice.ID, "hello world")
	require.NoError(t, err)

	_, err = e.tweets.Update(ctx, bob.ID, tweet.ID, "hijack")
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	err = e.tweets.Delete(ctx, bob.ID, tweet.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	updated, err := e.tweets.Update(ctx, alice.ID, tweet.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, e.tweets.Delete(ctx, alice.ID, tweet.ID))
	_, err = e.tweets.Update(ctx, alice.ID, tweet.ID, "gone")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
