package handler_test

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/auth"
	"StreamHub/internal/data"
	"StreamHub/internal/handler"
	"StreamHub/internal/middleware"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"StreamHub/internal/router"
	"StreamHub/internal/service"
	"StreamHub/internal/testutil"
	"StreamHub/internal/view"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memStore struct {
	mu      sync.Mutex
	deleted []string
}

func (s *memStore) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return "https://cdn.test/" + key, err
}

func (s *memStore) Delete(_ context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, location)
	return nil
}

type server struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	engine *gin.Engine
}

func newServer(t *testing.T) *server {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db, nil)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	uow := data.NewUnitOfWork(db, likeRepo, subscriptionRepo, playlistRepo)

	tokens := auth.NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	assets := service.NewAssetService(&memStore{}, nil)
	userService := service.NewUserService(userRepo, tokens, assets)
	videoService := service.NewVideoService(videoRepo, assets)
	composer := view.NewComposer(db)

	cookies := handler.CookieOptions{Secure: true, AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}
	h := router.Handlers{
		User:         handler.NewUserHandler(userService, composer, cookies, 1<<20),
		Video:        handler.NewVideoHandler(videoService, userService, composer, 1<<20),
		Comment:      handler.NewCommentHandler(service.NewCommentService(commentRepo, videoService), composer),
		Like:         handler.NewLikeHandler(service.NewLikeService(uow, videoService, commentRepo, tweetRepo), composer),
		Subscription: handler.NewSubscriptionHandler(service.NewSubscriptionService(uow, userRepo), composer),
		Playlist:     handler.NewPlaylistHandler(service.NewPlaylistService(uow, playlistRepo, videoService), composer),
		Tweet:        handler.NewTweetHandler(service.NewTweetService(tweetRepo), composer),
		Dashboard:    handler.NewDashboardHandler(composer),
	}
	return &server{db: db, tokens: tokens, engine: router.SetupRouter(h, tokens, userRepo, nil)}
}

func (s *server) tokenFor(t *testing.T, user *model.User) string {
	token, err := s.tokens.IssueAccess(user.ID, user.Username, user.Email, user.Fullname)
	require.NoError(t, err)
	return token
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestUserSessionFlow(t *testing.T) {
	s := newServer(t)

	register := func() *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, map[string]string{
			"fullname": "Alice Liddell",
			"username": "Alice",
			"email":    "Alice@Example.com",
			"password": "secret123",
		}, map[string]string{"avatar": "me.png"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.engine.ServeHTTP(rec, req)
		return rec
	}

	rec := register()
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = register()
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, decode(t, rec).Success)

	rec = s.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access := cookieNamed(rec, middleware.AccessTokenCookie)
	refresh := cookieNamed(rec, middleware.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.NotContains(t, rec.Body.String(), "password")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: access.Value})
	cur := httptest.NewRecorder()
	s.engine.ServeHTTP(cur, req)
	require.Equal(t, http.StatusOK, cur.Code)
	assert.Contains(t, cur.Body.String(), `"email":"alice@example.com"`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: refresh.Value})
	ref := httptest.NewRecorder()
	s.engine.ServeHTTP(ref, req)
	require.Equal(t, http.StatusOK, ref.Code, ref.Body.String())
	assert.NotNil(t, cookieNamed(ref, middleware.AccessTokenCookie))
	rotated := cookieNamed(ref, middleware.RefreshTokenCookie)
	require.NotNil(t, rotated)

	// 刷新后旧的刷新令牌就不能再用了
	rec = s.do(t, http.MethodPost, "/api/v1/users/refresh-token", "", map[string]string{"refreshToken": refresh.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/users/logout", access.Value, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := cookieNamed(rec, middleware.AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// 退出后最新的刷新令牌也失效
	rec = s.do(t, http.MethodPost, "/api/v1/users/refresh-token", "", map[string]string{"refreshToken": rotated.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorEnvelopeMapping(t *testing.T) {
	s := newServer(t)
	owner := testutil.CreateUser(t, s.db, "owner")
	other := testutil.CreateUser(t, s.db, "other")
	video := testutil.CreateVideo(t, s.db, owner.ID, "published", true)
	draft := testutil.CreateVideo(t, s.db, owner.ID, "draft", false)
	comment := testutil.CreateComment(t, s.db, video.ID, owner.ID, "first")
	tweet := &model.Tweet{Content: "hello", OwnerID: owner.ID}
	require.NoError(t, s.db.Create(tweet).Error)

	ownerToken := s.tokenFor(t, owner)
	otherToken := s.tokenFor(t, other)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"缺少令牌", http.MethodGet, "/api/v1/users/current-user", "", nil, http.StatusUnauthorized},
		{"令牌无效", http.MethodGet, "/api/v1/users/current-user", "garbage", nil, http.StatusUnauthorized},
		{"非法ID", http.MethodGet, "/api/v1/videos/abc", "", nil, http.StatusBadRequest},
		{"视频不存在", http.MethodGet, "/api/v1/videos/99999", "", nil, http.StatusNotFound},
		{"别人的草稿不可见", http.MethodGet, fmt.Sprintf("/api/v1/videos/%d", draft.ID), otherToken, nil, http.StatusNotFound},
		{"非法page", http.MethodGet, "/api/v1/videos?page=0", "", nil, http.StatusBadRequest},
		{"修改别人的评论", http.MethodPatch, fmt.Sprintf("/api/v1/comments/c/%d", comment.ID), otherToken, map[string]string{"content": "mine now"}, http.StatusForbidden},
		{"删除不存在的评论", http.MethodDelete, "/api/v1/comments/c/99999", ownerToken, nil, http.StatusNotFound},
		{"空白评论", http.MethodPost, fmt.Sprintf("/api/v1/comments/%d", video.ID), ownerToken, map[string]string{"content": "   "}, http.StatusBadRequest},
		{"删除别人的推文", http.MethodDelete, fmt.Sprintf("/api/v1/tweets/%d", tweet.ID), otherToken, nil, http.StatusForbidden},
		{"删除别人的视频", http.MethodDelete, fmt.Sprintf("/api/v1/videos/%d", video.ID), otherToken, nil, http.StatusForbidden},
		{"订阅自己", http.MethodPost, fmt.Sprintf("/api/v1/subscriptions/c/%d", owner.ID), ownerToken, nil, http.StatusBadRequest},
		{"频道不存在", http.MethodGet, "/api/v1/dashboard/stats/nobody", ownerToken, nil, http.StatusNotFound},
		{"接口不存在", http.MethodGet, "/api/v1/nope", "", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.token, tt.body)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			env := decode(t, rec)
			assert.Equal(t, tt.want, env.StatusCode)
			assert.False(t, env.Success)
			assert.NotNil(t, env.Errors)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestVideoEndpoints(t *testing.T) {
	s := newServer(t)
	owner := testutil.CreateUser(t, s.db, "owner")
	viewer := testutil.CreateUser(t, s.db, "viewer")
	token := s.tokenFor(t, owner)

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Go in practice",
		"description": "channels and contexts",
		"duration":    "120",
	}, map[string]string{"videoFile": "talk.mp4", "thumbnail": "talk.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var published struct {
		Data struct {
			ID uint64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &published))
	require.NotZero(t, published.Data.ID)

	// 缺封面
	body, contentType = multipartBody(t, map[string]string{"title": "t", "description": "d"}, map[string]string{"videoFile": "a.mp4"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/videos?page=1&limit=5&query=practice", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalVideos":1`)

	// 登录用户看视频会记观看历史
	viewerToken := s.tokenFor(t, viewer)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/videos/%d", published.Data.ID), viewerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodGet, "/api/v1/users/history", viewerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Go in practice")

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/videos/toggle/publish/%d", published.Data.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isPublished":false`)

	rec = s.do(t, http.MethodGet, "/api/v1/dashboard/videos", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Go in practice")
}

func TestLikeToggleOverHTTP(t *testing.T) {
	s := newServer(t)
	owner := testutil.CreateUser(t, s.db, "owner")
	video := testutil.CreateVideo(t, s.db, owner.ID, "clip", true)
	token := s.tokenFor(t, owner)
	path := fmt.Sprintf("/api/v1/likes/v/%d", video.ID)

	rec := s.do(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isLiked":true`)

	rec = s.do(t, http.MethodGet, "/api/v1/likes/videos", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalLikedVideos":1`)

	rec = s.do(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isLiked":false`)

	rec = s.do(t, http.MethodPost, "/api/v1/likes/t/4242", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaylistOverHTTP(t *testing.T) {
	s := newServer(t)
	owner := testutil.CreateUser(t, s.db, "owner")
	other := testutil.CreateUser(t, s.db, "other")
	video := testutil.CreateVideo(t, s.db, owner.ID, "clip", true)
	token := s.tokenFor(t, owner)

	rec := s.do(t, http.MethodPost, "/api/v1/playlist", token, map[string]string{"name": "favs", "description": "best ones"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data struct {
			ID uint64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	addPath := fmt.Sprintf("/api/v1/playlist/add/%d/%d", video.ID, created.Data.ID)
	rec = s.do(t, http.MethodPatch, addPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"totalVideos":1`)

	rec = s.do(t, http.MethodPatch, addPath, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, addPath, s.tokenFor(t, other), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/playlist/remove/%d/%d", video.ID, created.Data.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalVideos":0`)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/playlist/user/%d", owner.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "favs")
}

type brokenLikes struct{}

func (brokenLikes) ToggleVideoLike(context.Context, uint64, uint64) (bool, error) {
	return false, errors.New("dial tcp 10.0.0.7:3306: access denied for user 'root'@'secret-host'")
}

func (brokenLikes) ToggleCommentLike(context.Context, uint64, uint64) (bool, error) {
	return false, apperror.Internal(errors.New("secret-host unreachable"))
}

func (brokenLikes) ToggleTweetLike(context.Context, uint64, uint64) (bool, error) {
	return false, apperror.NotFound("推文不存在")
}

func TestInternalErrorsDoNotLeakCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.NewLikeHandler(brokenLikes{}, nil)
	r := gin.New()
	withUser := func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uint64(7))
		c.Next()
	}
	r.POST("/likes/v/:videoId", withUser, h.ToggleVideoLike)
	r.POST("/likes/c/:commentId", withUser, h.ToggleCommentLike)
	r.POST("/likes/t/:tweetId", withUser, h.ToggleTweetLike)

	for _, path := range []string{"/likes/v/1", "/likes/c/1"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret-host")
		env := decode(t, rec)
		assert.Equal(t, apperror.InternalMessage, env.Message)
		assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/likes/t/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "推文不存在", decode(t, rec).Message)
}

func TestPanicIsRecoveredIntoEnvelope(t *testing.T) {
	s := newServer(t)
	s.engine.GET("/api/v1/boom", func(c *gin.Context) {
		panic("secret-host exploded")
	})

	rec := s.do(t, http.MethodGet, "/api/v1/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "secret-host"))
	assert.Equal(t, apperror.InternalMessage, decode(t, rec).Message)
}

func TestHealthCheck(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/healthcheck", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}
