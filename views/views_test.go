package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/multiblog"
)

func renderDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func samplePosts() []multiblog.Post {
	return []multiblog.Post{
		{
			ID: "1", Title: "Hello <World>", Route: "blog", Slug: "hello-world",
			PublishedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Summary:     "First post", CoverImageURL: "https://img.example/cover.png",
			Categories: []string{"go", "web", "notes"},
		},
		{ID: "2", Title: "Second", Route: "notes", Slug: "second"},
	}
}

func TestListingRendersCardsAndNavigation(t *testing.T) {
	page := multiblog.ListingPage{
		Listing: multiblog.Listing{
			Route:      "blog",
			Articles:   samplePosts()[:1],
			Routes:     []string{"blog", "engineering-notes"},
			Categories: []string{"go", "web", "notes"},
			Site:       multiblog.SiteMeta{Title: "Acme", Description: "Acme blog"},
			Columns:    3,
		},
		Meta:    multiblog.PageMeta{Title: "blog | Acme", URL: "https://acme.com/blog/"},
		SiteURL: "https://acme.com",
	}
	doc := renderDoc(t, Listing(page))

	assert.Equal(t, "blog | Acme", doc.Find("title").Text())
	href, _ := doc.Find(`link[rel="alternate"]`).Attr("href")
	assert.Equal(t, "/blog/feed.xml", href)

	nav := doc.Find("nav a")
	require.Equal(t, 2, nav.Length())
	assert.Equal(t, "Blog", nav.First().Text())
	assert.Equal(t, "Engineering Notes", nav.Last().Text())
	current, _ := doc.Find(`nav a[aria-current="page"]`).Attr("href")
	assert.Equal(t, "/blog/", current)

	grid := doc.Find("main > div").First()
	assert.True(t, grid.HasClass("lg:grid-cols-3"))
	card := doc.Find("main article")
	require.Equal(t, 1, card.Length())
	assert.Equal(t, "Hello <World>", card.Find("h2").Text())
	assert.Equal(t, 2, card.Find("span").Length(), "cards show at most two categories")
	assert.Equal(t, "March 5, 2024", card.Find("time").Text())
	link, _ := card.Parent().Attr("href")
	assert.Equal(t, "/blog/hello-world/", link)
}

func TestListingWithoutArticles(t *testing.T) {
	doc := renderDoc(t, Listing(multiblog.ListingPage{
		Listing: multiblog.Listing{Route: "empty", Site: multiblog.SiteMeta{Title: "Acme"}},
	}))
	assert.Contains(t, doc.Find("main").Text(), "Nothing published here yet.")
}

func TestArticleRendersBodyAndMoreArticles(t *testing.T) {
	posts := samplePosts()
	page := multiblog.ArticlePage{
		Detail: multiblog.Detail{
			Tenant:       multiblog.Tenant{Name: "Acme"},
			Route:        "blog",
			Page:         posts[0],
			MoreArticles: posts[1:],
			Columns:      2,
		},
		Blocks: []multiblog.Block{
			{Type: "heading_2", Text: "Intro"},
			{Type: "paragraph", Text: "Some **bold** text."},
		},
		Meta:    multiblog.PageMeta{Title: "Hello | Acme", OGType: "article"},
		SiteURL: "https://acme.com",
	}
	doc := renderDoc(t, Article(page))

	assert.Equal(t, "Hello <World>", doc.Find("main article h1").Text())
	assert.Equal(t, "Intro", doc.Find("main article h2#intro").Text())
	assert.Equal(t, "bold", doc.Find("main article strong").Text())
	assert.Equal(t, 1, doc.Find("section article").Length())
	ld := doc.Find(`script[type="application/ld+json"]`).Text()
	assert.Contains(t, ld, `"BlogPosting"`)
	og, _ := doc.Find(`meta[property="og:type"]`).Attr("content")
	assert.Equal(t, "article", og)
}

func TestMoreArticlesHighlightSharedTags(t *testing.T) {
	posts := samplePosts()
	related := multiblog.Post{ID: "3", Title: "Third", Route: "blog", Slug: "third", Categories: []string{"rust", "web"}}
	page := multiblog.ArticlePage{
		Detail: multiblog.Detail{
			Tenant:       multiblog.Tenant{Name: "Acme"},
			Page:         posts[0],
			MoreArticles: []multiblog.Post{related},
			Columns:      2,
		},
	}
	doc := renderDoc(t, Article(page))

	tags := doc.Find("section article span")
	require.Equal(t, 2, tags.Length())
	rust, _ := tags.Eq(0).Attr("class")
	web, _ := tags.Eq(1).Attr("class")
	assert.Equal(t, TagClass(false), rust)
	assert.Equal(t, TagClass(true), web)
}

func TestUnsafeURLsAreNeutralized(t *testing.T) {
	p := multiblog.Post{Title: "x", Route: "blog", Slug: "x", CoverImageURL: "javascript:alert(1)"}
	doc := renderDoc(t, Home(multiblog.ListingPage{Listing: multiblog.Listing{Articles: []multiblog.Post{p}}}))
	src, _ := doc.Find("img").Attr("src")
	assert.NotContains(t, src, "javascript:")
}

func TestSiteNotFoundLinksToMainPage(t *testing.T) {
	fns := Funcs(Site{Name: "multiblog", RootURL: "https://example.com/"})
	doc := renderDoc(t, fns.SiteNotFound("ghost"))
	assert.Contains(t, doc.Find("main p").Text(), "ghost")
	href, _ := doc.Find("main a").Attr("href")
	assert.Equal(t, "https://example.com/", href)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "Engineering Notes", RouteLabel("engineering-notes"))
	assert.Equal(t, "Blog", RouteLabel("blog"))
}

func TestGridClass(t *testing.T) {
	assert.Contains(t, GridClass(3), "lg:grid-cols-3")
	assert.Contains(t, GridClass(2), "lg:grid-cols-2")
	assert.Contains(t, GridClass(0), "lg:grid-cols-2")
}
