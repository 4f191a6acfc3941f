package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/yatube/internal/model"
)

func setupBenchDB(b *testing.B) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := model.AutoMigrate(db); err != nil {
		b.Fatalf("migrate: %v", err)
	}
	return db
}

func seedBenchUsers(b *testing.B, db *gorm.DB, n int) []model.User {
	users := make([]model.User, n)
	for i := range users {
		users[i] = model.User{Username: fmt.Sprintf("u%04d", i), PasswordHash: "p"}
	}
	if err := db.CreateInBatches(&users, 500).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}
	return users
}

func BenchmarkFollowWrite(b *testing.B) {
	db := setupBenchDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()
	users := seedBenchUsers(b, db, 1000)

	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rng.Intn(len(users))].ID
		to := users[rng.Intn(len(users))].ID
		if from == to {
			continue
		}
		_ = followRepo.Create(ctx, from, to)
	}
}

func BenchmarkFollowedFeed(b *testing.B) {
	db := setupBenchDB(b)
	followRepo := NewFollowRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	// u0 关注 N 个作者，每个作者 5 篇帖子
	const N = 500
	users := seedBenchUsers(b, db, N+1)
	u0 := users[0]
	for _, u := range users[1:] {
		_ = followRepo.Create(ctx, u0.ID, u.ID)
		for j := 0; j < 5; j++ {
			_ = postRepo.Create(ctx, &model.Post{Text: fmt.Sprintf("%s %d", u.Username, j), AuthorID: u.ID})
		}
	}

	b.ResetTimer()
	b.Run("ListFollowed", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = postRepo.ListFollowed(ctx, u0.ID, 1, 10)
		}
	})

	b.Run("ListFollowings", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.ListFollowings(ctx, u0.ID, 0, 50)
		}
	})
}
