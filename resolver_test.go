package multiblog

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFixture() (*Resolver, *memorySource) {
	store := &memoryStore{tenants: []Tenant{
		{
			ID: "t-acme", Slug: "acme", CustomDomain: "acme.com", ContentSourceID: "db-acme",
			Settings: ParseSettings(`{"title":"Acme","links":[{"url":"/blog","cols":3}]}`),
		},
	}}
	src := &memorySource{bodies: map[string][]Block{
		"1": {{ID: "b1", Type: "paragraph", Text: "Body"}},
	}}
	src.setDocs("db-acme", []RawDocument{
		doc("1", "Hello", "blog", "2024-03-01", "go"),
		doc("2", "Second", "blog", "2024-02-01", "web"),
		doc("3", "Third", "news", "2024-01-01", "press"),
		doc("4", "Fourth", "news", "", ""),
	})
	return NewResolver(store, src, WithRand(rand.New(rand.NewPCG(1, 1)))), src
}

func TestResolveSiteByEitherAlias(t *testing.T) {
	r, _ := resolverFixture()
	ctx := context.Background()

	bySlug, err := r.ResolveSite(ctx, "acme")
	require.NoError(t, err)
	byDomain, err := r.ResolveSite(ctx, "ACME.com")
	require.NoError(t, err)
	assert.Equal(t, bySlug, byDomain)

	again, err := r.ResolveSite(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, bySlug, again, "resolution is idempotent")
}

func TestResolveSiteNotFound(t *testing.T) {
	r, _ := resolverFixture()
	_, err := r.ResolveSite(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveSiteStoreFailure(t *testing.T) {
	r := NewResolver(&memoryStore{err: errors.New("connection refused")}, &memorySource{})
	_, err := r.ResolveSite(context.Background(), "acme")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveListing(t *testing.T) {
	r, _ := resolverFixture()
	ctx := context.Background()
	tenant, err := r.ResolveSite(ctx, "acme")
	require.NoError(t, err)

	l, err := r.ResolveListing(ctx, tenant, "blog")
	require.NoError(t, err)
	require.Len(t, l.Articles, 2)
	assert.Equal(t, "hello", l.Articles[0].Slug)
	assert.Equal(t, []string{"blog", "news"}, l.Routes)
	assert.Equal(t, []string{"go", "web"}, l.Categories)
	assert.Equal(t, 3, l.Columns)
	assert.Equal(t, "Acme", l.Site.Title)
}

func TestResolveDetail(t *testing.T) {
	r, src := resolverFixture()
	ctx := context.Background()
	tenant, err := r.ResolveSite(ctx, "acme")
	require.NoError(t, err)

	d, err := r.ResolveDetail(ctx, tenant, "blog", "hello")
	require.NoError(t, err)
	assert.Equal(t, "1", d.Page.ID)
	assert.Len(t, d.MoreArticles, 3)
	for _, p := range d.MoreArticles {
		assert.NotEqual(t, "1", p.ID)
	}

	_, err = r.ResolveDetail(ctx, tenant, "blog", "missing")
	assert.ErrorIs(t, err, ErrArticleNotFound)

	blocks, err := r.DocumentBody(ctx, d.Page)
	require.NoError(t, err)
	assert.Equal(t, []Block{{ID: "b1", Type: "paragraph", Text: "Body"}}, blocks)

	assert.Equal(t, int32(1), src.calls.Load(), "one fetch inside the staleness window")
}

func TestResolveContentFailure(t *testing.T) {
	r, src := resolverFixture()
	src.failures = map[string]error{"db-acme": errors.New("notion down")}
	_, err := r.ResolveListing(context.Background(), Tenant{Slug: "acme", ContentSourceID: "db-acme"}, "blog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme")
}
