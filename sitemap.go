package multiblog

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// renderSitemap lists the home page, one listing per route and every article
// path of the requesting alias.
func (a *App) renderSitemap(c echo.Context, base string, paths []SitePath) error {
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	routes := make(map[string]struct{})
	for _, p := range paths {
		if _, ok := routes[p.Route]; ok {
			continue
		}
		routes[p.Route] = struct{}{}
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p.Route)})
	}
	for _, p := range paths {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p.Route, p.Slug)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
