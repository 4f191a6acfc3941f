package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/pkg/redis"
)

type scenarioResult struct {
	durations   []time.Duration
	dbQueries   int
	cacheKeys   int
	memoryBytes int64
}

// 比较首页 feed 在无缓存、进程内缓存、redis 缓存下的延迟。
// 需要先用 cmd/seed 填充数据；REDIS_ADDR 为空时跳过 redis 场景
func main() {
	ctx := context.Background()

	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()
	mustDo(model.AutoMigrate(db))

	posts := repository.NewPostRepository(db)
	var total int64
	mustDo(db.Model(&model.Post{}).Count(&total).Error)
	if total == 0 {
		fmt.Println("no posts found, run cmd/seed first")
		os.Exit(1)
	}

	pageSize := cfg.App.PageSize
	numPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	reqs := makeRequests(envInt("REQUESTS", 3000), numPages)
	ttl := cfg.Cache.FeedTTL

	noCache := runScenario(ctx, reqs, nil, ttl, func(page int) (*repository.Page, error) {
		return posts.List(ctx, repository.PostFilter{}, page, pageSize)
	})
	memory := runScenario(ctx, reqs, cache.NewMemoryFeedCache(), ttl, func(page int) (*repository.Page, error) {
		return posts.List(ctx, repository.PostFilter{}, page, pageSize)
	})

	fmt.Printf("\nIndex feed latency (%d req, %d posts, page size %d, ttl %v)\n", len(reqs), total, pageSize, ttl)
	printResult("No cache", noCache)
	printResult("Memory cache", memory)

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = cfg.Redis.Addr
	}
	if addr == "" {
		return
	}
	rcfg := cfg.Redis
	rcfg.Addr = addr
	client := must(redis.NewClient(ctx, rcfg))
	defer client.Close()
	mustDo(client.FlushDB(ctx).Err())

	rc := runScenario(ctx, reqs, cache.NewRedisFeedCache(client), ttl, func(page int) (*repository.Page, error) {
		return posts.List(ctx, repository.PostFilter{}, page, pageSize)
	})
	keys, _ := client.Keys(ctx, "feed:index:*").Result()
	rc.cacheKeys = len(keys)
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		rc.memoryBytes = parseRedisMemory(info)
	}
	printResult("Redis cache", rc)
}

// runScenario 与 handler.Index 相同的读穿逻辑；feed 为 nil 时每次都查库
func runScenario(ctx context.Context, reqs []int, feed cache.FeedCache, ttl time.Duration, load func(int) (*repository.Page, error)) scenarioResult {
	res := scenarioResult{durations: make([]time.Duration, 0, len(reqs))}
	keys := map[string]struct{}{}
	for _, page := range reqs {
		start := time.Now()
		key := cache.IndexKey(page)
		if feed != nil {
			if _, ok := feed.Get(ctx, key); ok {
				res.durations = append(res.durations, time.Since(start))
				continue
			}
		}
		p, err := load(page)
		if err != nil {
			panic(err)
		}
		res.dbQueries++
		if feed != nil {
			feed.Put(ctx, key, p, ttl)
			keys[key] = struct{}{}
		}
		res.durations = append(res.durations, time.Since(start))
	}
	res.cacheKeys = len(keys)
	return res
}

func printResult(name string, r scenarioResult) {
	fmt.Printf("%-14s avg=%v p95=%v p99=%v db_queries=%d cache_keys=%d mem=%s\n",
		name, avg(r.durations), pct(r.durations, 0.95), pct(r.durations, 0.99),
		r.dbQueries, r.cacheKeys, formatBytes(r.memoryBytes))
}

// makeRequests 大部分请求落在前几页，少量深翻页
func makeRequests(n, numPages int) []int {
	out := make([]int, n)
	rnd := rand.New(rand.NewSource(42))
	for i := range out {
		page := 1 + rnd.Intn(minInt(3, numPages))
		if rnd.Float64() > 0.8 {
			page = 1 + rnd.Intn(numPages)
		}
		out[i] = page
	}
	return out
}

// parseRedisMemory 取 INFO memory 中的 used_memory
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "used_memory:"); ok {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

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
