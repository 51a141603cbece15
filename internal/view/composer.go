package view

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/dto"
	"StreamHub/internal/model"
	"StreamHub/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Composer 读模型层：每个方法都是固定条数的联表/子查询，和结果条数无关，不会出现N+1
type Composer interface {
	ListVideoComments(ctx context.Context, videoID uint64, page, limit int) (*dto.CommentPage, error)
	// viewerID为0表示未登录
	GetVideoByID(ctx context.Context, videoID, viewerID uint64) (*dto.VideoDetail, error)
	ListVideos(ctx context.Context, q VideoQuery) (*dto.VideoPage, error)
	GetChannelStats(ctx context.Context, username string) (*dto.ChannelStats, error)
	ListChannelVideos(ctx context.Context, ownerID uint64) ([]dto.ChannelVideo, error)
	GetUserProfile(ctx context.Context, username string, viewerID uint64) (*dto.UserProfile, error)
	GetWatchHistory(ctx context.Context, userID uint64) ([]dto.VideoCard, error)
	GetLikedVideos(ctx context.Context, userID uint64) (*dto.LikedVideos, error)
	ListSubscribers(ctx context.Context, channelID uint64) (*dto.SubscriberList, error)
	ListSubscriptions(ctx context.Context, subscriberID uint64) (*dto.SubscriptionList, error)
	GetPlaylistByID(ctx context.Context, playlistID, viewerID uint64) (*dto.PlaylistView, error)
	ListUserPlaylists(ctx context.Context, userID uint64) ([]dto.PlaylistSummary, error)
	ListUserTweets(ctx context.Context, userID uint64) ([]dto.TweetView, error)
}

// VideoQuery 视频列表的筛选、排序和分页参数
type VideoQuery struct {
	Page     int
	Limit    int
	Query    string
	SortBy   string
	SortType string
	UserID   uint64 // 0表示不限作者
}

// 关键字里的%和_按字面匹配；转义符用!，MySQL和SQLite里写法一样
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// 排序字段白名单，值是真正的列名，避免把请求参数拼进ORDER BY
var sortColumns = map[string]string{
	"createdAt": "v.created_at",
	"updatedAt": "v.updated_at",
	"title":     "v.title",
	"duration":  "v.duration",
}

type composer struct {
	db *gorm.DB
}

func NewComposer(db *gorm.DB) Composer {
	return &composer{db: db}
}

func internal(err error, msg string) error {
	logger.Log.WithError(err).Error(msg)
	return apperror.Internal(err)
}

func checkPage(page, limit int) error {
	if page < 1 || limit < 1 {
		return apperror.Validation("page和limit必须是正整数")
	}
	return nil
}

// 评论列表：1、确认视频存在 2、统计总数 3、按时间正序分页取评论和评论人 4、一次IN查询取出这一页评论的全部点赞人
func (c *composer) ListVideoComments(ctx context.Context, videoID uint64, page, limit int) (*dto.CommentPage, error) {
	if err := checkPage(page, limit); err != nil {
		return nil, err
	}
	db := c.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&model.Video{}).Where("id = ?", videoID).Count(&exists).Error; err != nil {
		return nil, internal(err, "查询视频失败")
	}
	if exists == 0 {
		return nil, apperror.NotFound("视频不存在")
	}

	var total int64
	if err := db.Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&total).Error; err != nil {
		return nil, internal(err, "统计评论数失败")
	}

	var rows []commentRow
	err := c.commentQuery(ctx).
		Where("c.video_id = ?", videoID).
		Order("c.created_at ASC, c.id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询评论列表失败")
	}

	likers, err := c.likersOf(ctx, model.LikeTargetComment, commentIDs(rows))
	if err != nil {
		return nil, err
	}

	// 空页不是错误，返回空列表
	result := &dto.CommentPage{
		Comments:      make([]dto.CommentView, 0, len(rows)),
		Page:          page,
		Limit:         limit,
		TotalComments: total,
	}
	for _, r := range rows {
		result.Comments = append(result.Comments, r.view(likers[r.ID]))
	}
	return result, nil
}

// 视频详情：1、视频和作者 2、全部评论和评论人 3、视频的点赞人 4、评论的点赞人
// 未发布的视频只有作者本人能看到，其他人一律当成不存在
func (c *composer) GetVideoByID(ctx context.Context, videoID, viewerID uint64) (*dto.VideoDetail, error) {
	db := c.db.WithContext(ctx)

	var videos []videoRow
	err := db.Table("videos AS v").
		Select(videoColumns).
		Joins(joinVideoOwner).
		Where("v.id = ?", videoID).
		Limit(1).
		Scan(&videos).Error
	if err != nil {
		return nil, internal(err, "查询视频详情失败")
	}
	if len(videos) == 0 || (!videos[0].IsPublished && videos[0].OwnerID != viewerID) {
		return nil, apperror.NotFound("视频不存在")
	}

	var comments []commentRow
	err = c.commentQuery(ctx).
		Where("c.video_id = ?", videoID).
		Order("c.created_at ASC, c.id ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, internal(err, "查询视频评论失败")
	}

	videoLikers, err := c.likersOf(ctx, model.LikeTargetVideo, []uint64{videoID})
	if err != nil {
		return nil, err
	}
	commentLikers, err := c.likersOf(ctx, model.LikeTargetComment, commentIDs(comments))
	if err != nil {
		return nil, err
	}

	detail := &dto.VideoDetail{
		VideoCard: videos[0].card(),
		Comments:  make([]dto.CommentView, 0, len(comments)),
		Likes:     make([]dto.LikeView, 0, len(videoLikers[videoID])),
	}
	for _, r := range comments {
		detail.Comments = append(detail.Comments, r.view(commentLikers[r.ID]))
	}
	for _, l := range videoLikers[videoID] {
		detail.Likes = append(detail.Likes, dto.LikeView{ID: l.ID, LikedBy: l.profile(), CreatedAt: l.CreatedAt})
		if viewerID != 0 && l.LikedByID == viewerID {
			detail.IsLiked = true
		}
	}
	detail.LikeCount = int64(len(detail.Likes))
	detail.CommentCount = int64(len(detail.Comments))
	return detail, nil
}

// 视频列表：1、只看已发布的，按关键字和作者过滤 2、统计总数 3、白名单排序后分页，联表作者
func (c *composer) ListVideos(ctx context.Context, q VideoQuery) (*dto.VideoPage, error) {
	if err := checkPage(q.Page, q.Limit); err != nil {
		return nil, err
	}
	order, err := videoOrder(q.SortBy, q.SortType)
	if err != nil {
		return nil, err
	}

	filter := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("v.is_published = ?", true)
		if keyword := strings.ToLower(strings.TrimSpace(q.Query)); keyword != "" {
			pattern := "%" + likeEscaper.Replace(keyword) + "%"
			tx = tx.Where("(LOWER(v.title) LIKE ? ESCAPE '!' OR LOWER(v.description) LIKE ? ESCAPE '!')", pattern, pattern)
		}
		if q.UserID != 0 {
			tx = tx.Where("v.owner_id = ?", q.UserID)
		}
		return tx
	}

	db := c.db.WithContext(ctx)
	var total int64
	if err := db.Table("videos AS v").Scopes(filter).Count(&total).Error; err != nil {
		return nil, internal(err, "统计视频数失败")
	}

	var rows []videoRow
	err = db.Table("videos AS v").
		Select(videoColumns).
		Joins(joinVideoOwner).
		Scopes(filter).
		Order(order).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询视频列表失败")
	}

	return &dto.VideoPage{
		Videos:      cards(rows),
		Page:        q.Page,
		Limit:       q.Limit,
		TotalVideos: total,
	}, nil
}

func videoOrder(sortBy, sortType string) (string, error) {
	if sortBy == "" {
		sortBy = "createdAt"
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return "", apperror.Validation("不支持的排序字段: " + sortBy)
	}
	dir := strings.ToLower(sortType)
	switch dir {
	case "":
		dir = "desc"
	case "asc", "desc":
	default:
		return "", apperror.Validation("sortType只能是asc或desc")
	}
	// id兜底，保证同一排序值下分页稳定
	return fmt.Sprintf("%s %s, v.id %s", column, dir, dir), nil
}

// 频道统计：1、按用户名找到用户 2、已发布视频各自的评论数和点赞数 3、订阅人数 4、汇总
func (c *composer) GetChannelStats(ctx context.Context, username string) (*dto.ChannelStats, error) {
	user, err := c.userByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	rows, err := c.channelVideos(ctx, user.ID, true)
	if err != nil {
		return nil, err
	}

	var subscribers int64
	err = c.db.WithContext(ctx).Model(&model.Subscription{}).Where("channel_id = ?", user.ID).Count(&subscribers).Error
	if err != nil {
		return nil, internal(err, "统计订阅数失败")
	}

	stats := &dto.ChannelStats{
		ID:              user.ID,
		Username:        user.Username,
		Fullname:        user.Fullname,
		Avatar:          user.Avatar,
		SubscriberCount: subscribers,
		TotalVideoCount: int64(len(rows)),
		Videos:          rows,
	}
	for _, v := range rows {
		stats.TotalCommentCount += v.CommentCount
		stats.TotalLikes += v.LikeCount
	}
	return stats, nil
}

// 仪表盘视频列表，包括未发布的
func (c *composer) ListChannelVideos(ctx context.Context, ownerID uint64) ([]dto.ChannelVideo, error) {
	return c.channelVideos(ctx, ownerID, false)
}

func (c *composer) channelVideos(ctx context.Context, ownerID uint64, publishedOnly bool) ([]dto.ChannelVideo, error) {
	tx := c.db.WithContext(ctx).Table("videos AS v").
		Select("v.id, v.title, v.thumbnail, v.is_published, v.created_at, "+
			"(SELECT COUNT(*) FROM comments AS c WHERE c.video_id = v.id) AS comment_count, "+
			"(SELECT COUNT(*) FROM likes AS l WHERE l.target_kind = ? AND l.target_id = v.id) AS like_count",
			model.LikeTargetVideo).
		Where("v.owner_id = ?", ownerID)
	if publishedOnly {
		tx = tx.Where("v.is_published = ?", true)
	}

	var rows []channelVideoRow
	if err := tx.Order("v.created_at DESC, v.id DESC").Scan(&rows).Error; err != nil {
		return nil, internal(err, "查询频道视频失败")
	}

	out := make([]dto.ChannelVideo, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ChannelVideo(r))
	}
	return out, nil
}

// 用户主页：一条语句里用子查询算出订阅数、关注数，以及当前访问者是否已订阅
func (c *composer) GetUserProfile(ctx context.Context, username string, viewerID uint64) (*dto.UserProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperror.Validation("用户名不能为空")
	}

	var rows []profileRow
	err := c.db.WithContext(ctx).Table("users AS u").
		Select("u.id, u.username, u.email, u.fullname, u.avatar, u.cover_image, u.created_at, "+
			"(SELECT COUNT(*) FROM subscriptions AS s WHERE s.channel_id = u.id) AS subscriber_count, "+
			"(SELECT COUNT(*) FROM subscriptions AS s WHERE s.subscriber_id = u.id) AS subscribed_to_count, "+
			"(SELECT COUNT(*) FROM subscriptions AS s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS viewer_subscribed",
			viewerID).
		Where("u.username = ?", username).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询用户主页失败")
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("频道不存在")
	}

	r := rows[0]
	profile := &dto.UserProfile{
		ID:                r.ID,
		Username:          r.Username,
		Fullname:          r.Fullname,
		Avatar:            r.Avatar,
		CoverImage:        r.CoverImage,
		SubscriberCount:   r.SubscriberCount,
		SubscribedToCount: r.SubscribedToCount,
		IsSubscribed:      viewerID != 0 && r.ViewerSubscribed > 0,
		CreatedAt:         r.CreatedAt,
	}
	// 邮箱只给本人看
	if viewerID == r.ID {
		profile.Email = r.Email
	}
	return profile, nil
}

// 观看历史按记录的先后顺序返回，同一个视频看几次就出现几次
func (c *composer) GetWatchHistory(ctx context.Context, userID uint64) ([]dto.VideoCard, error) {
	var rows []videoRow
	err := c.db.WithContext(ctx).Table("watch_history_entries AS w").
		Select(videoColumns).
		Joins("JOIN videos AS v ON v.id = w.video_id").
		Joins(joinVideoOwner).
		Where("w.user_id = ?", userID).
		Where("(v.is_published = ? OR v.owner_id = ?)", true, userID).
		Order("w.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询观看历史失败")
	}
	return cards(rows), nil
}

// 点赞过的视频，最近点赞的在前
func (c *composer) GetLikedVideos(ctx context.Context, userID uint64) (*dto.LikedVideos, error) {
	var rows []likedVideoRow
	err := c.db.WithContext(ctx).Table("likes AS l").
		Select("l.created_at AS liked_at, "+videoColumns).
		Joins("JOIN videos AS v ON v.id = l.target_id").
		Joins(joinVideoOwner).
		Where("l.liked_by_id = ? AND l.target_kind = ?", userID, model.LikeTargetVideo).
		Where("(v.is_published = ? OR v.owner_id = ?)", true, userID).
		Order("l.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询点赞视频失败")
	}

	result := &dto.LikedVideos{Videos: make([]dto.LikedVideo, 0, len(rows))}
	for _, r := range rows {
		result.Videos = append(result.Videos, dto.LikedVideo{LikedAt: r.LikedAt, Video: r.Video.card()})
	}
	result.TotalLikedVideos = int64(len(result.Videos))
	return result, nil
}

func (c *composer) ListSubscribers(ctx context.Context, channelID uint64) (*dto.SubscriberList, error) {
	if err := c.ensureUser(ctx, channelID); err != nil {
		return nil, err
	}
	rows, err := c.subscriptionEdges(ctx, "s.subscriber_id", "s.channel_id = ?", channelID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriberList{Subscribers: edges(rows), TotalSubscribers: int64(len(rows))}, nil
}

func (c *composer) ListSubscriptions(ctx context.Context, subscriberID uint64) (*dto.SubscriptionList, error) {
	if err := c.ensureUser(ctx, subscriberID); err != nil {
		return nil, err
	}
	rows, err := c.subscriptionEdges(ctx, "s.channel_id", "s.subscriber_id = ?", subscriberID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionList{Channels: edges(rows), TotalSubscriptions: int64(len(rows))}, nil
}

// counterpart是订阅边另一端的列名，只会是代码里写死的两个值之一
func (c *composer) subscriptionEdges(ctx context.Context, counterpart, cond string, anchorID uint64) ([]edgeRow, error) {
	var rows []edgeRow
	err := c.db.WithContext(ctx).Table("subscriptions AS s").
		Select("s.created_at AS subscribed_at, "+counterpart+" AS user_id, "+
			"COALESCE(u.username, '') AS username, COALESCE(u.fullname, '') AS fullname, COALESCE(u.avatar, '') AS avatar").
		Joins("LEFT JOIN users AS u ON u.id = "+counterpart).
		Where(cond, anchorID).
		Order("s.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询订阅关系失败")
	}
	return rows, nil
}

// 播放列表详情：1、列表和创建者 2、按position取出成员视频和各自作者
func (c *composer) GetPlaylistByID(ctx context.Context, playlistID, viewerID uint64) (*dto.PlaylistView, error) {
	db := c.db.WithContext(ctx)

	var lists []playlistRow
	err := db.Table("playlists AS p").
		Select("p.id, p.name, p.description, p.created_at, p.updated_at, p.owner_id, "+
			"COALESCE(u.username, '') AS owner_username, COALESCE(u.fullname, '') AS owner_fullname, COALESCE(u.avatar, '') AS owner_avatar").
		Joins("LEFT JOIN users AS u ON u.id = p.owner_id").
		Where("p.id = ?", playlistID).
		Limit(1).
		Scan(&lists).Error
	if err != nil {
		return nil, internal(err, "查询播放列表失败")
	}
	if len(lists) == 0 {
		return nil, apperror.NotFound("播放列表不存在")
	}

	var rows []videoRow
	err = db.Table("playlist_videos AS pv").
		Select(videoColumns).
		Joins("JOIN videos AS v ON v.id = pv.video_id").
		Joins(joinVideoOwner).
		Where("pv.playlist_id = ?", playlistID).
		Where("(v.is_published = ? OR v.owner_id = ?)", true, viewerID).
		Order("pv.position ASC, pv.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询播放列表视频失败")
	}

	p := lists[0]
	videos := cards(rows)
	return &dto.PlaylistView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Owner: dto.Profile{
			ID:       p.OwnerID,
			Username: p.OwnerUsername,
			Fullname: p.OwnerFullname,
			Avatar:   p.OwnerAvatar,
		},
		Videos:      videos,
		TotalVideos: int64(len(videos)),
	}, nil
}

func (c *composer) ListUserPlaylists(ctx context.Context, userID uint64) ([]dto.PlaylistSummary, error) {
	if err := c.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var rows []playlistSummaryRow
	err := c.db.WithContext(ctx).Table("playlists AS p").
		Select("p.id, p.name, p.description, p.created_at, p.updated_at, " +
			"(SELECT COUNT(*) FROM playlist_videos AS pv WHERE pv.playlist_id = p.id) AS total_videos").
		Where("p.owner_id = ?", userID).
		Order("p.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询用户播放列表失败")
	}

	out := make([]dto.PlaylistSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PlaylistSummary(r))
	}
	return out, nil
}

// 用户动态，最新的在前，每条带点赞数
func (c *composer) ListUserTweets(ctx context.Context, userID uint64) ([]dto.TweetView, error) {
	if err := c.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var rows []tweetRow
	err := c.db.WithContext(ctx).Table("tweets AS t").
		Select("t.id, t.content, t.created_at, t.updated_at, t.owner_id, "+
			"COALESCE(u.username, '') AS owner_username, COALESCE(u.fullname, '') AS owner_fullname, COALESCE(u.avatar, '') AS owner_avatar, "+
			"(SELECT COUNT(*) FROM likes AS l WHERE l.target_kind = ? AND l.target_id = t.id) AS like_count",
			model.LikeTargetTweet).
		Joins("LEFT JOIN users AS u ON u.id = t.owner_id").
		Where("t.owner_id = ?", userID).
		Order("t.created_at DESC, t.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询用户动态失败")
	}

	out := make([]dto.TweetView, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TweetView{
			ID:        r.ID,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Owner: dto.Profile{
				ID:       r.OwnerID,
				Username: r.OwnerUsername,
				Fullname: r.OwnerFullname,
				Avatar:   r.OwnerAvatar,
			},
			LikeCount: r.LikeCount,
		})
	}
	return out, nil
}

func (c *composer) commentQuery(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).Table("comments AS c").
		Select("c.id, c.video_id, c.content, c.created_at, c.updated_at, c.owner_id, " +
			"COALESCE(u.username, '') AS owner_username, COALESCE(u.fullname, '') AS owner_fullname, COALESCE(u.avatar, '') AS owner_avatar").
		Joins("LEFT JOIN users AS u ON u.id = c.owner_id")
}

// likersOf 一次查询取出一批目标的全部点赞和点赞人，按目标ID分组
func (c *composer) likersOf(ctx context.Context, kind model.LikeTarget, targetIDs []uint64) (map[uint64][]likeRow, error) {
	grouped := make(map[uint64][]likeRow, len(targetIDs))
	if len(targetIDs) == 0 {
		return grouped, nil
	}

	var rows []likeRow
	err := c.db.WithContext(ctx).Table("likes AS l").
		Select("l.id, l.target_id, l.created_at, l.liked_by_id, "+
			"COALESCE(u.username, '') AS username, COALESCE(u.fullname, '') AS fullname, COALESCE(u.avatar, '') AS avatar").
		Joins("LEFT JOIN users AS u ON u.id = l.liked_by_id").
		Where("l.target_kind = ? AND l.target_id IN ?", kind, targetIDs).
		Order("l.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "查询点赞人失败")
	}
	for _, r := range rows {
		grouped[r.TargetID] = append(grouped[r.TargetID], r)
	}
	return grouped, nil
}

func (c *composer) userByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperror.Validation("用户名不能为空")
	}
	var user model.User
	err := c.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("频道不存在")
		}
		return nil, internal(err, "查询用户失败")
	}
	return &user, nil
}

func (c *composer) ensureUser(ctx context.Context, userID uint64) error {
	var n int64
	if err := c.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return internal(err, "查询用户失败")
	}
	if n == 0 {
		return apperror.NotFound("用户不存在")
	}
	return nil
}

func commentIDs(rows []commentRow) []uint64 {
	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
