package multiblog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func indexFixture() []Post {
	return []Post{
		{ID: "1", Title: "A", Route: "blog", Slug: "a", Categories: []string{"go", "web"}},
		{ID: "2", Title: "B", Route: "news", Slug: "b", Categories: []string{"press"}},
		{ID: "3", Title: "C", Route: "blog", Slug: "c", Categories: []string{"web", "ops"}},
		{ID: "4", Title: "D", Route: "Blog", Slug: "d", Categories: []string{"case"}},
	}
}

func TestIndexRoute(t *testing.T) {
	settings := Settings{Title: "Acme", Description: "Notes"}
	idx := IndexRoute(indexFixture(), "blog", settings)

	var ids []string
	for _, p := range idx.Articles {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"1", "3"}, ids)
	assert.Equal(t, []string{"blog", "news", "Blog"}, idx.Routes)
	assert.Equal(t, []string{"go", "web", "ops"}, idx.Categories)
	assert.Equal(t, SiteMeta{Title: "Acme", Description: "Notes"}, idx.Site)
}

func TestIndexRouteCategoriesOnlyFromMatchingRoute(t *testing.T) {
	idx := IndexRoute(indexFixture(), "news", Settings{})
	assert.Equal(t, []string{"press"}, idx.Categories)
	assert.NotContains(t, idx.Categories, "go")
}

func TestIndexRouteUnknownRoute(t *testing.T) {
	idx := IndexRoute(indexFixture(), "missing", Settings{})
	assert.NotNil(t, idx.Articles)
	assert.Empty(t, idx.Articles)
	assert.Empty(t, idx.Categories)
	assert.Len(t, idx.Routes, 3)
}

func TestIndexRouteEmptyCorpus(t *testing.T) {
	idx := IndexRoute(nil, "blog", Settings{})
	assert.Equal(t, RouteIndex{Articles: []Post{}, Routes: []string{}, Categories: []string{}}, idx)
}
