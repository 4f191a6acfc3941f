package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/d60-Lab/yatube/internal/repository"
)

// FeedCache 全站 feed 的短时缓存。只有首页 handler 使用
type FeedCache interface {
	Get(ctx context.Context, key string) (*repository.Page, bool)
	Put(ctx context.Context, key string, page *repository.Page, ttl time.Duration)
}

// IndexKey 首页第 n 页的缓存 key
func IndexKey(page int) string { return fmt.Sprintf("feed:index:page:%d", page) }
