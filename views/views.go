// Package views provides the default page templates of a multiblog server.
package views

import (
	"context"
	"io"
	"slices"

	"github.com/a-h/templ"

	"github.com/eringen/multiblog"
	"github.com/eringen/multiblog/markdown"
)

// Site describes the platform the templates render for.
type Site struct {
	Name    string // platform name shown on platform-level pages
	RootURL string // main page linked from the site-not-found page
}

// Funcs returns the default view functions.
func Funcs(site Site) multiblog.ViewFuncs {
	return multiblog.ViewFuncs{
		Home:         Home,
		Listing:      Listing,
		Article:      Article,
		SiteNotFound: func(name string) templ.Component { return SiteNotFound(site, name) },
		NotFound:     func() templ.Component { return NotFound(site) },
		ServerError:  func() templ.Component { return ServerError(site) },
	}
}

type head struct {
	meta   multiblog.PageMeta
	jsonLD string
	feed   string
}

func page(h head, body func(ctx context.Context, w *htmlWriter) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &htmlWriter{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.element("title", "", h.meta.Title)
		if h.meta.Description != "" {
			w.raw(`<meta name="description"`)
			w.attr("content", h.meta.Description)
			w.raw(">")
		}
		if h.meta.URL != "" {
			w.raw(`<link rel="canonical"`)
			w.url("href", h.meta.URL)
			w.raw(`><meta property="og:url"`)
			w.attr("content", h.meta.URL)
			w.raw(">")
		}
		w.raw(`<meta property="og:title"`)
		w.attr("content", h.meta.Title)
		w.raw(">")
		if h.meta.OGType != "" {
			w.raw(`<meta property="og:type"`)
			w.attr("content", h.meta.OGType)
			w.raw(">")
		}
		if h.meta.Image != "" {
			w.raw(`<meta property="og:image"`)
			w.attr("content", h.meta.Image)
			w.raw(">")
		}
		if h.feed != "" {
			w.raw(`<link rel="alternate" type="application/rss+xml"`)
			w.url("href", h.feed)
			w.raw(">")
		}
		if h.jsonLD != "" {
			// json.Marshal escapes <, > and &, so the payload cannot close the tag.
			w.raw(`<script type="application/ld+json">` + h.jsonLD + `</script>`)
		}
		w.raw(`</head><body class="mx-auto max-w-5xl px-4">`)
		if w.err != nil {
			return w.err
		}
		if err := body(ctx, w); err != nil {
			return err
		}
		w.raw("</body></html>")
		return w.err
	})
}

func header(w *htmlWriter, site multiblog.SiteMeta, routes []string, active string) {
	w.raw(`<header class="py-8"><a href="/" class="text-2xl font-bold">`)
	w.text(site.Title)
	w.raw("</a>")
	if site.Description != "" {
		w.element("p", "text-gray-500", site.Description)
	}
	if len(routes) > 0 {
		w.raw(`<nav class="mt-4 flex gap-4">`)
		for _, r := range routes {
			w.raw("<a")
			w.url("href", "/"+PathEscape(r)+"/")
			if r == active {
				w.attr("class", "font-semibold underline")
				w.raw(` aria-current="page"`)
			}
			w.raw(">")
			w.text(RouteLabel(r))
			w.raw("</a>")
		}
		w.raw("</nav>")
	}
	w.raw("</header>")
}

func categories(w *htmlWriter, cats []string) {
	if len(cats) == 0 {
		return
	}
	w.raw(`<ul class="flex flex-wrap gap-2 mb-8">`)
	for _, c := range cats {
		w.raw("<li>")
		w.element("span", TagClass(false), c)
		w.raw("</li>")
	}
	w.raw("</ul>")
}

// articleCard renders a post card. Tags listed in shared are highlighted.
func articleCard(w *htmlWriter, p multiblog.Post, shared []string) {
	w.raw("<a")
	w.url("href", p.Link())
	w.raw("><article")
	w.attr("class", CardClass(p.CoverImageURL != ""))
	w.raw(">")
	if p.CoverImageURL != "" {
		w.raw(`<div class="mb-4"><img class="object-cover w-full rounded-lg aspect-[16/9]" alt="article cover" loading="lazy"`)
		w.url("src", p.CoverImageURL)
		w.raw("></div>")
	}
	w.raw(`<div class="flex flex-col justify-between space-y-2">`)
	if cats := CardCategories(p.Categories); len(cats) > 0 {
		w.raw(`<div class="flex space-x-2 text-sm text-gray-400">`)
		for _, c := range cats {
			w.element("span", TagClass(slices.Contains(shared, c)), c)
		}
		w.raw("</div>")
	}
	w.element("h2", "text-lg font-semibold text-gray-900", p.Title)
	if p.Summary != "" {
		w.element("p", "mt-3 text-gray-500 line-clamp-2", p.Summary)
	}
	if d := FormatDate(p.PublishedAt); d != "" {
		w.raw(`<div class="text-sm text-gray-400"><time`)
		w.attr("datetime", p.PublishedAt.Format("2006-01-02"))
		w.raw(">")
		w.text(d)
		w.raw("</time></div>")
	}
	w.raw("</div></article></a>")
}

func articleGrid(w *htmlWriter, posts []multiblog.Post, cols int, shared []string) {
	w.raw("<div")
	w.attr("class", GridClass(cols))
	w.raw(">")
	for _, p := range posts {
		articleCard(w, p, shared)
	}
	w.raw("</div>")
}

// Home renders a tenant's landing page listing every post.
func Home(p multiblog.ListingPage) templ.Component {
	l := p.Listing
	return page(head{meta: p.Meta, jsonLD: multiblog.WebsiteJsonLD(l.Site, p.SiteURL)}, func(ctx context.Context, w *htmlWriter) error {
		header(w, l.Site, l.Routes, "")
		w.raw("<main>")
		categories(w, l.Categories)
		articleGrid(w, l.Articles, l.Columns, nil)
		w.raw("</main>")
		return w.err
	})
}

// Listing renders the posts of one route.
func Listing(p multiblog.ListingPage) templ.Component {
	l := p.Listing
	h := head{
		meta:   p.Meta,
		jsonLD: multiblog.WebsiteJsonLD(l.Site, p.SiteURL),
		feed:   "/" + PathEscape(l.Route) + "/feed.xml",
	}
	return page(h, func(ctx context.Context, w *htmlWriter) error {
		header(w, l.Site, l.Routes, l.Route)
		w.raw("<main>")
		categories(w, l.Categories)
		if len(l.Articles) == 0 {
			w.element("p", "text-gray-500", "Nothing published here yet.")
		} else {
			articleGrid(w, l.Articles, l.Columns, nil)
		}
		w.raw("</main>")
		return w.err
	})
}

// Article renders one post with its body and a selection of other posts.
func Article(p multiblog.ArticlePage) templ.Component {
	d := p.Detail
	site := multiblog.SiteMeta{Title: d.Tenant.Settings.Title, Description: d.Tenant.Settings.Description}
	if site.Title == "" {
		site.Title = d.Tenant.Name
	}
	h := head{meta: p.Meta, jsonLD: multiblog.BlogPostingJsonLD(d.Page, site, p.SiteURL)}
	return page(h, func(ctx context.Context, w *htmlWriter) error {
		header(w, site, nil, "")
		w.raw(`<main><article class="prose mx-auto">`)
		w.element("h1", "", d.Page.Title)
		if date := FormatDate(d.Page.PublishedAt); date != "" {
			w.raw(`<p class="text-sm text-gray-400"><time`)
			w.attr("datetime", d.Page.PublishedAt.Format("2006-01-02"))
			w.raw(">")
			w.text(date)
			w.raw("</time></p>")
		}
		categories(w, d.Page.Categories)
		if d.Page.CoverImageURL != "" {
			w.raw(`<img class="w-full rounded-lg" alt="article cover" fetchpriority="high"`)
			w.url("src", d.Page.CoverImageURL)
			w.raw(">")
		}
		if w.err != nil {
			return w.err
		}
		if err := markdown.Blocks(p.Blocks).Render(ctx, w.w); err != nil {
			return err
		}
		w.raw("</article>")
		if len(d.MoreArticles) > 0 {
			w.raw(`<section class="mt-16">`)
			w.element("h2", "text-xl font-semibold mb-6", "More articles")
			articleGrid(w, d.MoreArticles, d.Columns, d.Page.Categories)
			w.raw("</section>")
		}
		w.raw("</main>")
		return w.err
	})
}

func message(site Site, title string, body func(w *htmlWriter)) templ.Component {
	return page(head{meta: multiblog.PageMeta{Title: title + " | " + site.Name}}, func(ctx context.Context, w *htmlWriter) error {
		w.raw(`<main class="py-24 text-center">`)
		w.element("h1", "text-3xl font-bold", title)
		body(w)
		w.raw("</main>")
		return w.err
	})
}

// SiteNotFound renders the page shown for hosts no tenant answers to.
func SiteNotFound(site Site, name string) templ.Component {
	return message(site, "Site not found", func(w *htmlWriter) {
		w.raw(`<p class="mt-4">`)
		if name != "" {
			w.text("The site " + name + " probably does not exist, please contact the admin. ")
		} else {
			w.text("There is no blog here. ")
		}
		w.raw("<a")
		w.url("href", site.RootURL)
		w.raw(` class="underline">Go back to the main page</a></p>`)
	})
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return message(site, "Page not found", func(w *htmlWriter) {
		w.raw(`<p class="mt-4"><a href="/" class="underline">Back to the blog</a></p>`)
	})
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	return message(site, "Something went wrong", func(w *htmlWriter) {
		w.element("p", "mt-4", "Please try again in a moment.")
	})
}
