package service

import (
	"StreamHub/internal/auth"
	"StreamHub/internal/data"
	"StreamHub/internal/repository"
	"StreamHub/internal/testutil"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fakeStore struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (f *fakeStore) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	loc := "https://cdn.test/" + key
	f.uploaded = append(f.uploaded, loc)
	return loc, nil
}

func (f *fakeStore) Delete(_ context.Context, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, location)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	fail     bool
	messages []string
}

func (p *fakePublisher) Publish(_ context.Context, queue string, body []byte) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, queue+" "+string(body))
	return nil
}

type env struct {
	db        *gorm.DB
	store     *fakeStore
	publisher *fakePublisher

	users         UserService
	videos        VideoService
	comments      CommentService
	likes         LikeService
	subscriptions SubscriptionService
	playlists     PlaylistService
	tweets        TweetService
}

func newEnv(t *testing.T) *env {
	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db, nil)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	uow := data.NewUnitOfWork(db, likeRepo, subscriptionRepo, playlistRepo)

	store := &fakeStore{}
	publisher := &fakePublisher{}
	assets := NewAssetService(store, publisher)
	tokens := auth.NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	videos := NewVideoService(videoRepo, assets)

	return &env{
		db:            db,
		store:         store,
		publisher:     publisher,
		users:         NewUserService(userRepo, tokens, assets),
		videos:        videos,
		comments:      NewCommentService(commentRepo, videos),
		likes:         NewLikeService(uow, videos, commentRepo, tweetRepo),
		subscriptions: NewSubscriptionService(uow, userRepo),
		playlists:     NewPlaylistService(uow, playlistRepo, videos),
		tweets:        NewTweetService(tweetRepo),
	}
}

func upload(name string) *Upload {
	return &Upload{Reader: strings.NewReader("bytes"), Filename: name, ContentType: "application/octet-stream", Size: 5}
}
