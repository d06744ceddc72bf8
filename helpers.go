package multiblog

import (
	"encoding/json"
	"net"
	"net/url"
	"path"
	"strings"
)

// SiteFromHost maps a request host to a site identifier. Hosts under
// rootDomain yield their subdomain label; the bare root domain yields "".
// Any other host is a custom domain and is returned as is (lower-cased,
// without port).
func SiteFromHost(host, rootDomain string) string {
	host = hostName(host)
	rootDomain = strings.Trim(strings.ToLower(rootDomain), ".")
	if rootDomain == "" {
		return host
	}
	if host == rootDomain || host == "www."+rootDomain {
		return ""
	}
	if label, ok := strings.CutSuffix(host, "."+rootDomain); ok {
		if i := strings.LastIndexByte(label, '.'); i >= 0 {
			label = label[i+1:]
		}
		return label
	}
	return host
}

// hostName lower-cases host and strips its port and trailing dot.
func hostName(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}

// isPlatformWWW reports whether host is www.<rootDomain>. Only that host is
// redirected to its bare form; a tenant's www. custom domain is an alias in
// its own right.
func isPlatformWWW(host, rootDomain string) bool {
	rootDomain = strings.Trim(strings.ToLower(rootDomain), ".")
	return rootDomain != "" && hostName(host) == "www."+rootDomain
}

// AliasHost returns the host serving alias: subdomain labels are joined with
// rootDomain, custom domains are returned unchanged.
func AliasHost(alias, rootDomain string) string {
	if strings.Contains(alias, ".") || rootDomain == "" {
		return alias
	}
	return alias + "." + strings.Trim(rootDomain, ".")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty trims values and removes empty/whitespace-only strings.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site SiteMeta, siteURL string) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Title,
		"url":      BuildURL(siteURL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post Post, site SiteMeta, siteURL string) string {
	postURL := BuildURL(siteURL, post.Route, post.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Summary,
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !post.PublishedAt.IsZero() {
		data["datePublished"] = post.PublishedAt.Format("2006-01-02")
	}
	if post.CoverImageURL != "" {
		data["image"] = post.CoverImageURL
	}
	if site.Title != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Title,
		}
	}
	if len(post.Categories) > 0 {
		data["keywords"] = strings.Join(post.Categories, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
