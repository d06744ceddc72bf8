package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eringen/multiblog"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNewRequiresAddress(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestNewPingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(Config{Address: addr})
	assert.Error(t, err)
}

func TestSetAndGetPosts(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	published := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	posts := []multiblog.Post{{
		ID:          "p1",
		Title:       "Hello World",
		Route:       "blog",
		Slug:        "hello-world",
		PublishedAt: published,
		Categories:  []string{"go"},
	}}
	require.NoError(t, c.SetPosts(ctx, "db", posts, time.Minute))

	assert.True(t, mr.Exists("multiblog:posts:v1:db"))
	assert.Equal(t, time.Minute, mr.TTL("multiblog:posts:v1:db"))

	got, ok, err := c.GetPosts(ctx, "db")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, posts, got)
}

func TestGetPostsMiss(t *testing.T) {
	c, _ := setupCache(t)

	got, ok, err := c.GetPosts(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestPostsExpire(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetPosts(ctx, "db", nil, time.Minute))
	got, ok, err := c.GetPosts(ctx, "db")
	require.NoError(t, err)
	require.True(t, ok, "an empty list is still a hit")
	assert.Empty(t, got)

	mr.FastForward(time.Minute)
	_, ok, err = c.GetPosts(ctx, "db")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletePosts(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetPosts(ctx, "db", []multiblog.Post{{ID: "p1"}}, time.Minute))
	require.NoError(t, c.DeletePosts(ctx, "db"))
	assert.False(t, mr.Exists("multiblog:posts:v1:db"))
	require.NoError(t, c.DeletePosts(ctx, "missing"))
}

func TestGetPostsCorrupt(t *testing.T) {
	c, mr := setupCache(t)
	require.NoError(t, mr.Set("multiblog:posts:v1:db", "not json"))

	_, _, err := c.GetPosts(context.Background(), "db")
	assert.Error(t, err)
}

// memorySource counts content fetches for the PostCache integration test.
type memorySource struct {
	docs  []multiblog.RawDocument
	calls int
}

func (m *memorySource) ListDocuments(ctx context.Context, sourceID string) ([]multiblog.RawDocument, error) {
	m.calls++
	return m.docs, nil
}

func (m *memorySource) GetDocumentBody(ctx context.Context, documentID string) ([]multiblog.Block, error) {
	return nil, nil
}

func TestResolversShareFetchedPosts(t *testing.T) {
	mr := miniredis.RunT(t)
	shared := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { shared.Close() })

	src := &memorySource{docs: []multiblog.RawDocument{
		{"id": "p1", "title": "Hello World", "route": "blog"},
	}}
	tenant := multiblog.Tenant{ID: "t1", Slug: "acme", ContentSourceID: "db"}
	ctx := context.Background()

	first := multiblog.NewResolver(nil, src, multiblog.WithSharedPosts(shared))
	l, err := first.ResolveListing(ctx, tenant, "blog")
	require.NoError(t, err)
	require.Len(t, l.Articles, 1)

	second := multiblog.NewResolver(nil, src, multiblog.WithSharedPosts(shared))
	l, err = second.ResolveListing(ctx, tenant, "blog")
	require.NoError(t, err)
	require.Len(t, l.Articles, 1)
	assert.Equal(t, "hello-world", l.Articles[0].Slug)
	assert.Equal(t, 1, src.calls, "the second instance reads the shared copy")
}

func TestInvalidateTenantClearsSharedCopy(t *testing.T) {
	mr := miniredis.RunT(t)
	shared := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { shared.Close() })

	src := &memorySource{docs: []multiblog.RawDocument{
		{"id": "p1", "title": "Hello World", "route": "blog"},
	}}
	tenant := multiblog.Tenant{ID: "t1", Slug: "acme", ContentSourceID: "db"}
	ctx := context.Background()

	r := multiblog.NewResolver(nil, src, multiblog.WithSharedPosts(shared))
	_, err := r.ResolveListing(ctx, tenant, "blog")
	require.NoError(t, err)
	require.True(t, mr.Exists("multiblog:posts:v1:db"))

	r.InvalidateTenant(ctx, tenant)
	assert.False(t, mr.Exists("multiblog:posts:v1:db"))
}
