package multiblog

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"
)

// Tenant is one customer's blog. It is reachable through its subdomain label
// (Slug) and, when set, through CustomDomain.
type Tenant struct {
	ID              string
	Slug            string
	CustomDomain    string // empty when the tenant has no custom domain
	Name            string
	ContentSourceID string
	Settings        Settings
	SettingsRaw     string
}

// Aliases returns the site identifiers the tenant answers to, custom domain
// first. Empty aliases are never returned.
func (t Tenant) Aliases() []string {
	var out []string
	if t.CustomDomain != "" {
		out = append(out, t.CustomDomain)
	}
	if t.Slug != "" && t.Slug != t.CustomDomain {
		out = append(out, t.Slug)
	}
	return out
}

// Settings is the decoded tenant settings blob.
type Settings struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Links       []Link `json:"links"`
}

// Link is a navigation entry. Cols selects the grid width used for the
// route the link points at.
type Link struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
	Cols int    `json:"cols,omitempty"`
}

// ParseSettings decodes a settings blob. Empty or malformed input yields the
// zero Settings; use ValidateSettings to reject bad input at write time.
func ParseSettings(raw string) Settings {
	var s Settings
	if strings.TrimSpace(raw) == "" {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}
	}
	return s
}

// ValidateSettings reports whether raw is a well-formed settings blob.
func ValidateSettings(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return &SettingsError{Err: err}
	}
	return nil
}

// LinkFor returns the navigation link that targets route. A link matches when
// the last segment of its URL path equals the route.
func (s Settings) LinkFor(route string) (Link, bool) {
	if route == "" {
		return Link{}, false
	}
	for _, l := range s.Links {
		if linkRoute(l.URL) == route {
			return l, true
		}
	}
	return Link{}, false
}

func linkRoute(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// RawDocument is an untyped record returned by a content source.
type RawDocument map[string]any

// Post is a normalized document.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Route         string    `json:"route"`
	Slug          string    `json:"slug"`
	PublishedAt   time.Time `json:"publishedAt"`
	Summary       string    `json:"summary,omitempty"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	Categories    []string  `json:"categories,omitempty"`
}

// Link returns the site-relative URL of the post.
func (p Post) Link() string {
	return "/" + p.Route + "/" + p.Slug + "/"
}

// SiteMeta is the tenant-wide title and description shown on listings.
type SiteMeta struct {
	Title       string
	Description string
}

// RouteIndex is the result of grouping a tenant's posts for one route.
type RouteIndex struct {
	Articles   []Post
	Routes     []string
	Categories []string
	Site       SiteMeta
}

// Listing is what the rendering boundary needs for a route page.
type Listing struct {
	Tenant     Tenant
	Route      string
	Articles   []Post
	Routes     []string
	Categories []string
	Site       SiteMeta
	Columns    int
}

// Detail is what the rendering boundary needs for an article page.
type Detail struct {
	Tenant       Tenant
	Route        string
	Page         Post
	MoreArticles []Post
	Columns      int
}

// SitePath is one statically enumerable (alias, route, slug) address.
type SitePath struct {
	TenantID string `json:"tenantId"`
	Alias    string `json:"site"`
	Route    string `json:"route"`
	Slug     string `json:"slug"`
}

// URLPath returns the path served for p on its alias host.
func (p SitePath) URLPath() string {
	return "/" + p.Route + "/" + p.Slug + "/"
}

// Block is one unit of document body content handed to the rendering
// boundary. Text is inline Markdown, or the literal source for code blocks;
// Children holds nested blocks.
type Block struct {
	ID       string
	Type     string
	Text     string
	Language string
	URL      string
	Children []Block
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}
