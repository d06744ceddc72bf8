package multiblog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// errSiteNotFound carries the unresolved identifier to the error handler.
type errSiteNotFound struct {
	site string
}

func (e errSiteNotFound) Error() string {
	return fmt.Sprintf("site %q does not exist", e.site)
}

func (e errSiteNotFound) Unwrap() error { return ErrTenantNotFound }

// siteURL is the origin of the alias host the request came in on.
func siteURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}

// tenant resolves the tenant addressed by the request host.
func (a *App) tenant(c echo.Context) (Tenant, string, error) {
	site := SiteFromHost(c.Request().Host, a.Config.RootDomain)
	t, err := a.Resolver.ResolveSite(c.Request().Context(), site)
	if errors.Is(err, ErrTenantNotFound) {
		return Tenant{}, site, errSiteNotFound{site: site}
	}
	return t, site, err
}

func (a *App) handleHome(c echo.Context) error {
	t, _, err := a.tenant(c)
	if err != nil {
		return err
	}
	l, err := a.Resolver.ResolveHome(c.Request().Context(), t)
	if err != nil {
		return err
	}
	base := siteURL(c)
	return Render(c, a.Views.Home(ListingPage{
		Listing: l,
		SiteURL: base,
		Meta: PageMeta{
			Title:       siteTitle(t),
			Description: t.Settings.Description,
			URL:         BuildURL(base),
			OGType:      "website",
		},
	}))
}

func (a *App) handleListing(c echo.Context) error {
	t, _, err := a.tenant(c)
	if err != nil {
		return err
	}
	route := c.Param("route")
	l, err := a.Resolver.ResolveListing(c.Request().Context(), t, route)
	if err != nil {
		return err
	}
	if len(l.Articles) == 0 {
		if _, ok := t.Settings.LinkFor(route); !ok {
			return echo.ErrNotFound
		}
	}
	base := siteURL(c)
	return Render(c, a.Views.Listing(ListingPage{
		Listing: l,
		SiteURL: base,
		Meta: PageMeta{
			Title:       route + " | " + siteTitle(t),
			Description: t.Settings.Description,
			URL:         BuildURL(base, route),
			OGType:      "website",
		},
	}))
}

func (a *App) handleArticle(c echo.Context) error {
	t, _, err := a.tenant(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	d, err := a.Resolver.ResolveDetail(ctx, t, c.Param("route"), c.Param("slug"))
	if errors.Is(err, ErrArticleNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	blocks, err := a.Resolver.DocumentBody(ctx, d.Page)
	if err != nil {
		return err
	}
	base := siteURL(c)
	return Render(c, a.Views.Article(ArticlePage{
		Detail:  d,
		Blocks:  blocks,
		SiteURL: base,
		Meta: PageMeta{
			Title:       d.Page.Title + " | " + siteTitle(t),
			Description: d.Page.Summary,
			URL:         BuildURL(base, d.Page.Route, d.Page.Slug),
			OGType:      "article",
			Image:       d.Page.CoverImageURL,
		},
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	t, site, err := a.tenant(c)
	if err != nil {
		return err
	}
	paths, err := a.Resolver.SitePaths(c.Request().Context(), t)
	if err != nil {
		return err
	}
	var own []SitePath
	for _, p := range paths {
		if p.Alias == site {
			own = append(own, p)
		}
	}
	return a.renderSitemap(c, siteURL(c), own)
}

func (a *App) handleFeed(c echo.Context) error {
	t, _, err := a.tenant(c)
	if err != nil {
		return err
	}
	route := c.Param("route")
	l, err := a.Resolver.ResolveListing(c.Request().Context(), t, route)
	if err != nil {
		return err
	}
	if len(l.Articles) == 0 {
		if _, ok := t.Settings.LinkFor(route); !ok {
			return echo.ErrNotFound
		}
	}
	return a.renderRSS(c, siteURL(c), l)
}

func (a *App) handlePaths(c echo.Context) error {
	if !a.apiLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
	}
	paths, err := a.Resolver.CachedStaticPaths(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PathURLs(paths, c.Scheme(), a.Config.RootDomain))
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", siteURL(c))
	return c.String(http.StatusOK, body)
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func siteTitle(t Tenant) string {
	if t.Settings.Title != "" {
		return t.Settings.Title
	}
	if t.Name != "" {
		return t.Name
	}
	return t.Slug
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var notFoundSite errSiteNotFound
	if errors.As(err, &notFoundSite) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.SiteNotFound(notFoundSite.site))
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.logger.Error("server error",
			zap.String("host", c.Request().Host),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
