// cmd/seeder/main.go

package main

import (
	"StreamHub/internal/data"
	"StreamHub/internal/model"
	"StreamHub/pkg/logger"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/go-faker/faker/v4"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	userCount     = flag.Int("users", 100, "用户数量")
	videoCount    = flag.Int("videos", 500, "视频数量")
	commentCount  = flag.Int("comments", 2000, "评论数量")
	likeCount     = flag.Int("likes", 3000, "点赞数量（重复的会被忽略）")
	subCount      = flag.Int("subscriptions", 400, "订阅数量（重复的会被忽略）")
	playlistCount = flag.Int("playlists", 60, "播放列表数量")
	tweetCount    = flag.Int("tweets", 300, "推文数量")
	reset         = flag.Bool("reset", true, "先删表再重建，会删除所有数据")
)

func main() {
	flag.Parse()
	fmt.Println("🚀 开始填充测试数据...")

	// --- 1. 连接数据库 ---
	// DSN和server读的是同一个环境变量
	_ = godotenv.Load()
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		logger.Log.Fatal("❌ 缺少MYSQL_DSN")
	}
	db, err := data.OpenMySQL(dsn)
	if err != nil {
		logger.Log.Fatalf("❌ 无法连接到数据库: %v", err)
	}

	// --- 2. 清理旧数据 (可选，但推荐) ---
	if *reset {
		fmt.Println("🧹 正在清理旧数据...")
		if err := db.Migrator().DropTable(model.AllModels()...); err != nil {
			logger.Log.Fatalf("❌ 删除旧表失败: %v", err)
		}
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		logger.Log.Fatalf("❌ 数据库迁移失败: %v", err)
	}
	fmt.Println("✅ 数据库迁移成功!")

	users := seedUsers(db, *userCount)
	videos := seedVideos(db, users, *videoCount)
	comments := seedComments(db, users, videos, *commentCount)
	tweets := seedTweets(db, users, *tweetCount)
	seedLikes(db, users, videos, comments, tweets, *likeCount)
	seedSubscriptions(db, users, *subCount)
	seedPlaylists(db, users, videos, *playlistCount)

	fmt.Println("🎉🎉🎉 所有测试数据填充完毕! 🎉🎉🎉")
}

func must(err error, what string) {
	if err != nil {
		logger.Log.Fatalf("❌ %s失败: %v", what, err)
	}
}

func pick(ids []uint64) uint64 {
	return ids[rand.Intn(len(ids))]
}

// --- 3. 创建用户 ---
// 所有用户的密码都是 "password"，用户名加序号保证不重复
func seedUsers(db *gorm.DB, n int) []uint64 {
	fmt.Println("👥 正在创建用户...")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	must(err, "密码加密")

	users := make([]model.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(faker.Username()), i)
		users = append(users, model.User{
			Username: username,
			Email:    username + "@example.com",
			Fullname: faker.Name(),
			Avatar:   fmt.Sprintf("https://test.com/avatars/%s.png", username),
			Password: string(hashedPassword),
		})
	}
	must(db.CreateInBatches(&users, 100).Error, "创建用户")

	ids := make([]uint64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	fmt.Printf("✅ 成功创建 %d 个用户!\n", len(ids))
	return ids
}

// --- 4. 创建视频 ---
// 大约每5个视频有一个是未发布的
func seedVideos(db *gorm.DB, users []uint64, n int) []uint64 {
	fmt.Println("🎬 正在创建视频...")
	videos := make([]model.Video, 0, n)
	for i := 0; i < n; i++ {
		videos = append(videos, model.Video{
			OwnerID:     pick(users),
			Title:       faker.Sentence(),  // 生成一个随机的句子作为标题
			Description: faker.Paragraph(), // 生成一个随机的段落作为简介
			VideoFile:   "https://test.com/video.mp4",
			Thumbnail:   "https://test.com/cover.jpg",
			Duration:    uint64(30 + rand.Intn(3600)),
			IsPublished: rand.Intn(5) != 0,
		})
	}
	must(db.CreateInBatches(&videos, 100).Error, "创建视频")

	ids := make([]uint64, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	fmt.Printf("✅ 成功创建 %d 个视频!\n", len(ids))
	return ids
}

func seedComments(db *gorm.DB, users, videos []uint64, n int) []uint64 {
	fmt.Println("💬 正在创建评论...")
	comments := make([]model.Comment, 0, n)
	for i := 0; i < n; i++ {
		comments = append(comments, model.Comment{
			VideoID: pick(videos),
			OwnerID: pick(users),
			Content: faker.Sentence(),
		})
	}
	must(db.CreateInBatches(&comments, 200).Error, "创建评论")

	ids := make([]uint64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	fmt.Printf("✅ 成功创建 %d 条评论!\n", len(ids))
	return ids
}

func seedTweets(db *gorm.DB, users []uint64, n int) []uint64 {
	fmt.Println("🐦 正在创建推文...")
	tweets := make([]model.Tweet, 0, n)
	for i := 0; i < n; i++ {
		tweets = append(tweets, model.Tweet{OwnerID: pick(users), Content: faker.Sentence()})
	}
	must(db.CreateInBatches(&tweets, 200).Error, "创建推文")

	ids := make([]uint64, len(tweets))
	for i, t := range tweets {
		ids[i] = t.ID
	}
	fmt.Printf("✅ 成功创建 %d 条推文!\n", len(ids))
	return ids
}

// --- 5. 创建随机点赞 ---
// 三种目标混在一起点，重复的交给唯一索引 + OnConflict DoNothing
func seedLikes(db *gorm.DB, users, videos, comments, tweets []uint64, n int) {
	fmt.Println("👍 正在创建随机点赞...")
	likes := make([]model.Like, 0, n)
	for i := 0; i < n; i++ {
		like := model.Like{LikedByID: pick(users)}
		switch rand.Intn(3) {
		case 0:
			like.TargetKind, like.TargetID = model.LikeTargetVideo, pick(videos)
		case 1:
			like.TargetKind, like.TargetID = model.LikeTargetComment, pick(comments)
		default:
			like.TargetKind, like.TargetID = model.LikeTargetTweet, pick(tweets)
		}
		likes = append(likes, like)
	}
	// 这会尝试插入，如果因为唯一键冲突失败，就什么都不做
	must(db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&likes, 200).Error, "创建点赞")
	fmt.Printf("✅ 成功创建(或尝试创建) %d 个随机点赞!\n", n)
}

func seedSubscriptions(db *gorm.DB, users []uint64, n int) {
	fmt.Println("🔔 正在创建订阅关系...")
	subs := make([]model.Subscription, 0, n)
	for i := 0; i < n; i++ {
		subscriber, channel := pick(users), pick(users)
		if subscriber == channel {
			continue
		}
		subs = append(subs, model.Subscription{SubscriberID: subscriber, ChannelID: channel})
	}
	if len(subs) > 0 {
		must(db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&subs, 200).Error, "创建订阅")
	}
	fmt.Printf("✅ 成功创建(或尝试创建) %d 条订阅!\n", len(subs))
}

// 每个播放列表随机放1~10个视频，Position从1开始
func seedPlaylists(db *gorm.DB, users, videos []uint64, n int) {
	fmt.Println("📃 正在创建播放列表...")
	for i := 0; i < n; i++ {
		playlist := model.Playlist{
			OwnerID:     pick(users),
			Name:        faker.Word() + " " + faker.Word(),
			Description: faker.Sentence(),
		}
		must(db.Create(&playlist).Error, "创建播放列表")

		seen := map[uint64]bool{}
		items := []model.PlaylistVideo{}
		size := 1 + rand.Intn(10)
		for j := 0; j < size; j++ {
			videoID := pick(videos)
			if seen[videoID] {
				continue
			}
			seen[videoID] = true
			items = append(items, model.PlaylistVideo{PlaylistID: playlist.ID, VideoID: videoID, Position: uint64(len(items) + 1)})
		}
		must(db.Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error, "添加播放列表视频")
	}
	fmt.Printf("✅ 成功创建 %d 个播放列表!\n", n)
}
