package multiblog

import (
	"math/rand/v2"
	"strings"
)

const (
	defaultColumns = 2
	wideColumns    = 3
)

// Columns returns the grid width configured for route: 3 when its navigation
// link asks for three columns, 2 otherwise.
func Columns(settings Settings, route string) int {
	if l, ok := settings.LinkFor(route); ok && l.Cols == wideColumns {
		return wideColumns
	}
	return defaultColumns
}

// MoreArticlesCount is the size of the related-articles sample for route.
// One row of the route's grid is shown.
func MoreArticlesCount(settings Settings, route string) int {
	return Columns(settings, route)
}

// SelectListing returns every post on route along with the navigation facets.
func SelectListing(t Tenant, posts []Post, route string) Listing {
	idx := IndexRoute(posts, route, t.Settings)
	return Listing{
		Tenant:     t,
		Route:      route,
		Articles:   idx.Articles,
		Routes:     idx.Routes,
		Categories: idx.Categories,
		Site:       idx.Site,
		Columns:    Columns(t.Settings, route),
	}
}

// SelectHome returns every post of the tenant, with categories drawn from the
// whole corpus.
func SelectHome(t Tenant, posts []Post) Listing {
	l := Listing{
		Tenant:     t,
		Articles:   []Post{},
		Routes:     []string{},
		Categories: []string{},
		Site:       SiteMeta{Title: t.Settings.Title, Description: t.Settings.Description},
		Columns:    defaultColumns,
	}
	seenRoutes := make(map[string]struct{})
	seenCategories := make(map[string]struct{})
	for _, p := range posts {
		l.Articles = append(l.Articles, p)
		if _, ok := seenRoutes[p.Route]; !ok {
			seenRoutes[p.Route] = struct{}{}
			l.Routes = append(l.Routes, p.Route)
		}
		for _, c := range p.Categories {
			if _, ok := seenCategories[c]; !ok {
				seenCategories[c] = struct{}{}
				l.Categories = append(l.Categories, c)
			}
		}
	}
	return l
}

// SelectDetail finds the post on route whose slug equals slug and samples
// the related articles from the rest of the tenant's corpus. rng may be nil.
func SelectDetail(t Tenant, posts []Post, route, slug string, rng *rand.Rand) (Detail, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	var page Post
	found := false
	for _, p := range posts {
		if p.Route == route && p.Slug != "" && p.Slug == slug {
			page, found = p, true
			break
		}
	}
	if !found {
		return Detail{}, ErrArticleNotFound
	}
	others := make([]Post, 0, len(posts))
	for _, p := range posts {
		if samePost(p, page) {
			continue
		}
		others = append(others, p)
	}
	Shuffle(rng, others)
	if n := MoreArticlesCount(t.Settings, route); len(others) > n {
		others = others[:n]
	}
	return Detail{
		Tenant:       t,
		Route:        route,
		Page:         page,
		MoreArticles: others,
		Columns:      Columns(t.Settings, route),
	}, nil
}

func samePost(a, b Post) bool {
	if a.ID != "" || b.ID != "" {
		return a.ID == b.ID
	}
	return a.Route == b.Route && a.Slug == b.Slug
}

// Shuffle permutes s uniformly in place (Fisher–Yates). A nil rng uses the
// package-level source.
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		s[i], s[j] = s[j], s[i]
	}
}
