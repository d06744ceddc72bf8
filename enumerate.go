package multiblog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TenantPaths returns the static paths of one tenant: every post with a route
// and a slug, once per alias (custom domain first, then subdomain). Absent
// aliases are skipped and duplicate (alias, route, slug) triples are emitted
// once, in first-seen order.
func TenantPaths(t Tenant, posts []Post) []SitePath {
	aliases := t.Aliases()
	if len(aliases) == 0 {
		return nil
	}
	type key struct{ alias, route, slug string }
	seen := make(map[key]struct{})
	var paths []SitePath
	for _, p := range posts {
		if p.Route == "" || p.Slug == "" {
			continue
		}
		for _, alias := range aliases {
			k := key{alias, p.Route, p.Slug}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			paths = append(paths, SitePath{
				TenantID: t.ID,
				Alias:    alias,
				Route:    p.Route,
				Slug:     p.Slug,
			})
		}
	}
	return paths
}

// SitePaths returns the static paths of one tenant from the cached content.
func (r *Resolver) SitePaths(ctx context.Context, t Tenant) ([]SitePath, error) {
	posts, err := r.posts(ctx, t)
	if err != nil {
		return nil, err
	}
	return TenantPaths(t, posts), nil
}

// EnumerateStaticPaths fetches every tenant's content concurrently, bypassing
// the cache, and returns the flattened static paths of all tenants. A tenant
// whose fetch fails contributes no paths; an error is returned only when the
// tenant list cannot be read or when every tenant failed. The fresh content
// replaces what the cache held.
func (r *Resolver) EnumerateStaticPaths(ctx context.Context) ([]SitePath, error) {
	return r.enumerate(ctx, r.cache.Fetch)
}

// CachedStaticPaths is EnumerateStaticPaths served from the cache: tenants
// fetched inside the staleness window are not fetched again.
func (r *Resolver) CachedStaticPaths(ctx context.Context) ([]SitePath, error) {
	return r.enumerate(ctx, r.cache.Posts)
}

func (r *Resolver) enumerate(ctx context.Context, load func(context.Context, string) ([]Post, error)) ([]SitePath, error) {
	tenants, err := r.tenants.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate static paths: %w", err)
	}

	perTenant := make([][]SitePath, len(tenants))
	errs := make([]error, len(tenants))

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, t := range tenants {
		g.Go(func() error {
			posts, err := load(ctx, t.ContentSourceID)
			if err != nil {
				errs[i] = fmt.Errorf("tenant %s: %w", t.Slug, err)
				r.logger.Warn("content fetch failed, tenant skipped",
					zap.String("tenant", t.Slug),
					zap.String("source", t.ContentSourceID),
					zap.Error(err))
				return nil
			}
			perTenant[i] = TenantPaths(t, posts)
			return nil
		})
	}
	_ = g.Wait()

	paths := []SitePath{}
	failed := 0
	for i := range tenants {
		if errs[i] != nil {
			failed++
			continue
		}
		paths = append(paths, perTenant[i]...)
	}
	r.metrics.enumerated(len(paths), failed)
	if failed > 0 && failed == len(tenants) {
		return nil, fmt.Errorf("enumerate static paths: all %d tenants failed: %w", failed, errors.Join(errs...))
	}
	r.logger.Info("enumerated static paths",
		zap.Int("tenants", len(tenants)),
		zap.Int("failed", failed),
		zap.Int("paths", len(paths)))
	return paths, nil
}

// PathURL is a SitePath with the absolute URL it is served at.
type PathURL struct {
	SitePath
	URL string `json:"url"`
}

// PathURLs resolves each path's alias to its host under rootDomain and
// returns the absolute URLs.
func PathURLs(paths []SitePath, scheme, rootDomain string) []PathURL {
	out := make([]PathURL, 0, len(paths))
	for _, p := range paths {
		out = append(out, PathURL{
			SitePath: p,
			URL:      scheme + "://" + AliasHost(p.Alias, rootDomain) + p.URLPath(),
		})
	}
	return out
}
