package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

var groups = []model.Group{
	{Title: "Leo Tolstoy", Slug: "tolstoy", Description: "Notes on the novels"},
	{Title: "Go", Slug: "golang", Description: "Everything about Go"},
	{Title: "Travel", Slug: "travel", Description: "Where to go this summer"},
}

// 填充演示数据：USERS 个用户（密码 PASSWORD），每人 POSTS 篇帖子，随机关注 FOLLOWS 个作者
func main() {
	cfg := must(config.Load())
	mustDo(logger.Init(cfg.Server.Mode))
	defer func() { _ = logger.Sync() }()

	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()
	mustDo(model.AutoMigrate(db))

	nUsers := envInt("USERS", 20)
	nPosts := envInt("POSTS", 15)
	nFollows := envInt("FOLLOWS", 3)
	password := os.Getenv("PASSWORD")
	if password == "" {
		password = "password"
	}

	for i := range groups {
		mustDo(db.Where(model.Group{Slug: groups[i].Slug}).FirstOrCreate(&groups[i]).Error)
	}

	// 同一密码只哈希一次
	hash := must(bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost))
	users := make([]model.User, nUsers)
	for i := range users {
		users[i] = model.User{Username: fmt.Sprintf("user%d", i), PasswordHash: string(hash)}
	}
	mustDo(db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&users, 500).Error)
	// ON CONFLICT 跳过的行拿不到 ID，重新查一次
	mustDo(db.Where("username LIKE ?", "user%").Order("id").Limit(nUsers).Find(&users).Error)

	rnd := rand.New(rand.NewSource(42))
	base := time.Now().Add(-time.Duration(nUsers*nPosts) * time.Minute)
	posts := make([]model.Post, 0, len(users)*nPosts)
	for i, u := range users {
		for j := 0; j < nPosts; j++ {
			p := model.Post{
				Text:     fmt.Sprintf("Post %d by %s", j+1, u.Username),
				AuthorID: u.ID,
				PubDate:  base.Add(time.Duration(i*nPosts+j) * time.Minute),
			}
			if g := rnd.Intn(len(groups) + 1); g < len(groups) {
				p.GroupID = &groups[g].ID
			}
			posts = append(posts, p)
		}
	}
	if len(posts) > 0 {
		mustDo(db.Omit(clause.Associations).CreateInBatches(&posts, 1000).Error)
	}

	ctx := context.Background()
	followRepo := repository.NewFollowRepository(db)
	for _, u := range users {
		for k := 0; k < nFollows && len(users) > 1; k++ {
			author := users[rnd.Intn(len(users))]
			if author.ID == u.ID {
				continue
			}
			mustDo(followRepo.Create(ctx, u.ID, author.ID))
		}
	}
	var follows int64
	mustDo(db.Model(&model.Follow{}).Count(&follows).Error)

	logger.Info("seed done",
		zap.Int("groups", len(groups)),
		zap.Int("users", len(users)),
		zap.Int("posts", len(posts)),
		zap.Int64("follows", follows),
	)
}
