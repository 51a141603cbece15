package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, e *env, username, email string) *model.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), RegisterInput{
		Fullname: "Full " + username,
		Username: username,
		Email:    email,
		Password: "s3cret!",
		Avatar:   upload("me.png"),
	})
	require.NoError(t, err)
	return user
}

func TestRegisterNormalizesAndRejectsDuplicates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user := register(t, e, "  Alice ", "Alice@Example.com")
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Contains(t, user.Avatar, "avatars/")
	assert.NotEqual(t, "s3cret!", user.Password)

	_, err := e.users.Register(ctx, RegisterInput{
		Fullname: "Other", Username: "other", Email: "ALICE@EXAMPLE.COM", Password: "x", Avatar: upload("a.png"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	var count int64
	require.NoError(t, e.db.Model(&model.User{}).Where("email = ?", "alice@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Fullname: " ", Username: "bob", Email: "bob@example.com", Password: "pw", Avatar: upload("a.png")},
		{Fullname: "Bob", Username: "bob", Email: "bob example.com", Password: "pw", Avatar: upload("a.png")},
		{Fullname: "Bob", Username: "bob", Email: "bob@ example.com", Password: "pw", Avatar: upload("a.png")},
		{Fullname: "Bob", Username: "bob", Email: "bob@example.com", Password: "pw"},
	}
	for _, in := range cases {
		_, err := e.users.Register(ctx, in)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), "input %+v", in)
	}
}

func TestLoginRefreshAndLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	register(t, e, "alice", "alice@example.com")

	_, _, err := e.users.Login(ctx, "nobody", "", "s3cret!")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	_, _, err = e.users.Login(ctx, "alice", "", "wrong")
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))

	user, pair, err := e.users.Login(ctx, "", "ALICE@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, pair.AccessToken)

	rotated, err := e.users.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// 旧的refresh token轮换后立即失效
	_, err = e.users.RefreshToken(ctx, pair.RefreshToken)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))

	require.NoError(t, e.users.Logout(ctx, user.ID))
	_, err = e.users.RefreshToken(ctx, rotated.RefreshToken)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))

	_, err = e.users.RefreshToken(ctx, "garbage")
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := register(t, e, "alice", "alice@example.com")

	err := e.users.ChangePassword(ctx, user.ID, "wrong", "next")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	err = e.users.ChangePassword(ctx, user.ID, "s3cret!", "   ")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	require.NoError(t, e.users.ChangePassword(ctx, user.ID, "s3cret!", "next"))
	_, _, err = e.users.Login(ctx, "alice", "", "next")
	assert.NoError(t, err)
}

func TestUpdateAccountDetails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")
	register(t, e, "bob", "bob@example.com")

	_, err := e.users.UpdateAccountDetails(ctx, alice.ID, "", "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = e.users.UpdateAccountDetails(ctx, alice.ID, "", "BOB@example.com")
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	updated, err := e.users.UpdateAccountDetails(ctx, alice.ID, "Alice Liddell", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.Fullname)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUpdateAvatarSchedulesOldAssetCleanup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")

	updated, err := e.users.UpdateAvatar(ctx, alice.ID, upload("new.png"))
	require.NoError(t, err)
	assert.NotEqual(t, alice.Avatar, updated.Avatar)
	require.Len(t, e.publisher.messages, 1)
	assert.Contains(t, e.publisher.messages[0], QueueAssetCleanup)
	assert.Contains(t, e.publisher.messages[0], alice.Avatar)
	assert.Empty(t, e.store.deleted)

	// 队列不可用时当场删除
	e.publisher.fail = true
	again, err := e.users.UpdateAvatar(ctx, alice.ID, upload("newer.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{updated.Avatar}, e.store.deleted)
	assert.NotEqual(t, updated.Avatar, again.Avatar)

	_, err = e.users.UpdateCoverImage(ctx, alice.ID, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestRecordView(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := register(t, e, "alice", "alice@example.com")

	require.NoError(t, e.users.RecordView(ctx, alice.ID, 10))
	require.NoError(t, e.users.RecordView(ctx, alice.ID, 11))

	var entries []model.WatchHistoryEntry
	require.NoError(t, e.db.Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.EqualValues(t, 10, entries[0].VideoID)
	assert.EqualValues(t, 11, entries[1].VideoID)
}
