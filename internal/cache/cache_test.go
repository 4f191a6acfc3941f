package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

func samplePage() *repository.Page {
	return repository.NewPage([]*model.Post{
		{ID: 2, Text: "second", AuthorID: 1, Author: model.User{ID: 1, Username: "alice"}},
		{ID: 1, Text: "first", AuthorID: 1, Author: model.User{ID: 1, Username: "alice"}},
	}, 1, 10, 2)
}

func TestRedisFeedCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := NewRedisFeedCache(client)
	ctx := context.Background()

	_, ok := c.Get(ctx, IndexKey(1))
	assert.False(t, ok)

	c.Put(ctx, IndexKey(1), samplePage(), 20*time.Second)
	got, ok := c.Get(ctx, IndexKey(1))
	require.True(t, ok)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "second", got.Items[0].Text)
	assert.Equal(t, "alice", got.Items[0].Author.Username)
	assert.EqualValues(t, 2, got.Count)

	mr.FastForward(21 * time.Second)
	_, ok = c.Get(ctx, IndexKey(1))
	assert.False(t, ok, "entry expires after ttl")
}

func TestRedisFeedCache_CorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	require.NoError(t, mr.Set(IndexKey(1), "{not json"))

	_, ok := NewRedisFeedCache(client).Get(context.Background(), IndexKey(1))
	assert.False(t, ok)
}

func TestMemoryFeedCache_Expiry(t *testing.T) {
	c := NewMemoryFeedCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Put(ctx, IndexKey(1), samplePage(), 20*time.Second)
	c.Put(ctx, IndexKey(2), samplePage(), 0)

	got, ok := c.Get(ctx, IndexKey(1))
	require.True(t, ok)
	assert.Len(t, got.Items, 2)
	_, ok = c.Get(ctx, IndexKey(2))
	assert.False(t, ok, "zero ttl is not stored")

	now = now.Add(19 * time.Second)
	_, ok = c.Get(ctx, IndexKey(1))
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get(ctx, IndexKey(1))
	assert.False(t, ok)
}

func TestIndexKey(t *testing.T) {
	assert.Equal(t, "feed:index:page:3", IndexKey(3))
}
