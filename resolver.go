package multiblog

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultRevalidate is the default staleness window for fetched content.
const DefaultRevalidate = time.Minute

// Resolver turns site identifiers, routes and slugs into renderable results.
// Every method takes its inputs explicitly and is safe for concurrent use.
type Resolver struct {
	tenants     TenantStore
	content     ContentSource
	cache       *PostCache
	logger      *zap.Logger
	staleness   time.Duration
	concurrency int
	metrics     *Metrics
	shared      SharedCache

	rngMu sync.Mutex
	rng   *rand.Rand
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for fetch failures and
// dropped-document counts.
func WithResolverLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithStaleness sets how long fetched content may be served before it is
// fetched again. Zero or a negative duration disables caching.
func WithStaleness(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.staleness = d
	}
}

// WithFetchConcurrency caps the number of concurrent content fetches during
// static path enumeration. Zero or less means one fetch per tenant at once.
func WithFetchConcurrency(n int) ResolverOption {
	return func(r *Resolver) {
		r.concurrency = n
	}
}

// WithMetrics records fetch, cache and enumeration metrics into m.
func WithMetrics(m *Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithSharedPosts adds a second cache level shared between instances.
func WithSharedPosts(s SharedCache) ResolverOption {
	return func(r *Resolver) {
		r.shared = s
	}
}

// WithRand makes related-article sampling draw from rng.
func WithRand(rng *rand.Rand) ResolverOption {
	return func(r *Resolver) {
		r.rng = rng
	}
}

// NewResolver creates a Resolver over a tenant store and a content source.
func NewResolver(tenants TenantStore, content ContentSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		tenants:   tenants,
		content:   content,
		logger:    zap.NewNop(),
		staleness: DefaultRevalidate,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = NewPostCache(content, r.staleness, r.logger)
	r.cache.metrics = r.metrics
	r.cache.shared = r.shared
	return r
}

// InvalidateTenant drops the cached posts of t, in memory and in the shared
// cache, so the next request refetches them.
func (r *Resolver) InvalidateTenant(ctx context.Context, t Tenant) {
	r.cache.Invalidate(ctx, t.ContentSourceID)
}

// ResolveSite returns the tenant answering to identifier, a subdomain label
// or a custom domain. It returns ErrTenantNotFound when none does.
func (r *Resolver) ResolveSite(ctx context.Context, identifier string) (Tenant, error) {
	t, err := r.tenants.FindTenant(ctx, NewSiteQuery(identifier))
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return Tenant{}, ErrTenantNotFound
		}
		return Tenant{}, fmt.Errorf("resolve site %q: %w", identifier, err)
	}
	return t, nil
}

func (r *Resolver) posts(ctx context.Context, t Tenant) ([]Post, error) {
	posts, err := r.cache.Posts(ctx, t.ContentSourceID)
	if err != nil {
		return nil, fmt.Errorf("fetch content for %s: %w", t.Slug, err)
	}
	return posts, nil
}

// ResolveListing returns the posts on route with the tenant's navigation
// facets.
func (r *Resolver) ResolveListing(ctx context.Context, t Tenant, route string) (Listing, error) {
	posts, err := r.posts(ctx, t)
	if err != nil {
		return Listing{}, err
	}
	return SelectListing(t, posts, route), nil
}

// ResolveHome returns every post of the tenant.
func (r *Resolver) ResolveHome(ctx context.Context, t Tenant) (Listing, error) {
	posts, err := r.posts(ctx, t)
	if err != nil {
		return Listing{}, err
	}
	return SelectHome(t, posts), nil
}

// ResolveDetail returns the post at (route, slug) and a random sample of
// other posts. It returns ErrArticleNotFound when no post matches.
func (r *Resolver) ResolveDetail(ctx context.Context, t Tenant, route, slug string) (Detail, error) {
	posts, err := r.posts(ctx, t)
	if err != nil {
		return Detail{}, err
	}
	if r.rng == nil {
		return SelectDetail(t, posts, route, slug, nil)
	}
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return SelectDetail(t, posts, route, slug, r.rng)
}

// DocumentBody returns the body blocks of post.
func (r *Resolver) DocumentBody(ctx context.Context, post Post) ([]Block, error) {
	if post.ID == "" {
		return nil, nil
	}
	blocks, err := r.content.GetDocumentBody(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch body of %s: %w", post.ID, err)
	}
	return blocks, nil
}
