package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/database"
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

// N 个粉丝并发关注同一作者，每人重复 REPEAT 次；结束后校验关注数恰好为 N
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()
	mustDo(model.AutoMigrate(db))

	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	relSvc := service.NewRelationshipService(followRepo)

	ctx := context.Background()

	N := envInt("N", 2000)
	CONC := envInt("CONC", 8)
	REPEAT := envInt("REPEAT", 3)
	PAGE := envInt("PAGE", cfg.App.PageSize)

	// 作者 + N 个粉丝，每次运行使用新的用户名前缀
	run := uuid.New().String()[:8]
	author := model.User{Username: "author_" + run, PasswordHash: "x"}
	mustDo(db.Create(&author).Error)
	fans := make([]model.User, N)
	for i := range fans {
		fans[i] = model.User{Username: fmt.Sprintf("fan_%s_%d", run, i), PasswordHash: "x"}
	}
	mustDo(db.CreateInBatches(&fans, 1000).Error)

	posts := make([]model.Post, 50)
	for i := range posts {
		posts[i] = model.Post{Text: fmt.Sprintf("bench post %d", i), AuthorID: author.ID}
	}
	mustDo(db.Omit("Author", "Group").CreateInBatches(&posts, 50).Error)

	// 每个任务是一次 Follow 调用；同一粉丝出现 REPEAT 次
	feed := make(chan int, N*REPEAT)
	for r := 0; r < REPEAT; r++ {
		for i := 0; i < N; i++ {
			feed <- i
		}
	}
	close(feed)

	workers := CONC
	if workers > N*REPEAT {
		workers = N * REPEAT
	}
	latCh := make(chan time.Duration, N*REPEAT)
	errCh := make(chan error, workers)
	t0 := time.Now()
	for w := 0; w < workers; w++ {
		go func() {
			var firstErr error
			for i := range feed {
				st := time.Now()
				if err := relSvc.Follow(ctx, fans[i].ID, author.ID); err != nil && firstErr == nil {
					firstErr = err
				}
				latCh <- time.Since(st)
			}
			errCh <- firstErr
		}()
	}
	for w := 0; w < workers; w++ {
		if err := <-errCh; err != nil {
			fmt.Printf("follow error: %v\n", err)
		}
	}
	close(latCh)
	followDur := time.Since(t0)
	lats := make([]time.Duration, 0, N*REPEAT)
	for d := range latCh {
		lats = append(lats, d)
	}

	// 自己关注自己必须被拒绝
	selfErr := relSvc.Follow(ctx, author.ID, author.ID)

	followers, following, err := relSvc.Stats(ctx, author.ID)
	if err != nil {
		panic(err)
	}

	q0 := time.Now()
	page, err := postRepo.ListFollowed(ctx, fans[0].ID, 1, PAGE)
	if err != nil {
		panic(err)
	}
	feedDur := time.Since(q0)

	t1 := time.Now()
	for i := 0; i < N; i++ {
		_ = relSvc.Unfollow(ctx, fans[i].ID, author.ID)
	}
	unfollowDur := time.Since(t1)
	after, _, _ := relSvc.Stats(ctx, author.ID)

	fmt.Printf("N=%d, CONC=%d, REPEAT=%d, PAGE=%d\n", N, CONC, REPEAT, PAGE)
	fmt.Printf("Follow calls total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		followDur, followDur/time.Duration(len(lats)), pct(lats, 0.50), pct(lats, 0.95), pct(lats, 0.99))
	fmt.Printf("Followers after idempotent follows: %d (expected %d), author following: %d\n", followers, N, following)
	fmt.Printf("Self follow rejected: %v\n", selfErr != nil)
	fmt.Printf("Follow feed page 1: %d items of %d (%v)\n", len(page.Items), page.Count, feedDur)
	fmt.Printf("Unfollow total: %v, followers left: %d\n", unfollowDur, after)
	if followers != int64(N) || after != 0 {
		os.Exit(1)
	}
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}
