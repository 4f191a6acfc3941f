package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/yatube/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err, "open db")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 每个连接都是独立的内存库
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.AutoMigrate(db), "migrate")
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "x"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedGroup(t *testing.T, db *gorm.DB, slug string) *model.Group {
	t.Helper()
	g := &model.Group{Title: "Group " + slug, Slug: slug, Description: "d"}
	require.NoError(t, NewGroupRepository(db).Create(context.Background(), g))
	return g
}

func seedPosts(t *testing.T, db *gorm.DB, author *model.User, group *model.Group, n int) []*model.Post {
	t.Helper()
	repo := NewPostRepository(db)
	posts := make([]*model.Post, n)
	for i := 0; i < n; i++ {
		p := &model.Post{Text: fmt.Sprintf("post %d", i), AuthorID: author.ID}
		if group != nil {
			p.GroupID = &group.ID
		}
		require.NoError(t, repo.Create(context.Background(), p))
		posts[i] = p
	}
	return posts
}
