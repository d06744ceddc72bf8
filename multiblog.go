// Package multiblog serves many blogs from one process. Each blog (tenant) is
// backed by its own content database and answers to a subdomain of the
// platform's root domain and, optionally, to a custom domain.
//
// The resolution core (Resolver) maps a site identifier, a route and a slug to
// renderable results and enumerates every static path across both aliases.
// Users provide their own templ templates via ViewFuncs; the package handles
// routing, caching and error pages.
package multiblog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ListingPage is passed to the Home and Listing views.
type ListingPage struct {
	Listing Listing
	Meta    PageMeta
	SiteURL string
}

// ArticlePage is passed to the Article view.
type ArticlePage struct {
	Detail  Detail
	Blocks  []Block
	Meta    PageMeta
	SiteURL string
}

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home         func(page ListingPage) templ.Component
	Listing      func(page ListingPage) templ.Component
	Article      func(page ArticlePage) templ.Component
	SiteNotFound func(site string) templ.Component
	NotFound     func() templ.Component
	ServerError  func() templ.Component
}

// App wires together the tenant store, content source, resolver, handlers,
// middleware and user-provided templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    TenantStore
	Content  ContentSource
	Resolver *Resolver
	Views    ViewFuncs

	Registry *prometheus.Registry
	Metrics  *Metrics

	logger       *zap.Logger
	shared       SharedCache
	apiLimiter   *RequestLimiter
	warmer       *cron.Cron
	customRoutes []func(*App)
	closers      []io.Closer
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		Views:    views,
		Registry: reg,
		Metrics:  NewMetrics(reg),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the tenant store if none was supplied, builds the resolver and
// registers middleware and routes. Start calls it; tests call it directly.
func (a *App) Init() error {
	if a.Content == nil {
		return fmt.Errorf("multiblog: a content source is required")
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabaseDriver, a.Config.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("multiblog: init store: %w", err)
		}
		a.Store = store
		a.closers = append(a.closers, store)
	}

	a.Resolver = NewResolver(a.Store, a.Content,
		WithResolverLogger(a.logger),
		WithStaleness(a.Config.RevalidateInterval),
		WithFetchConcurrency(a.Config.FetchConcurrency),
		WithMetrics(a.Metrics),
		WithSharedPosts(a.shared),
	)
	if s, ok := a.Store.(*Store); ok {
		s.AfterSave(a.Resolver.InvalidateTenant)
	}

	if a.Config.WarmSchedule != "" {
		if err := a.startWarmer(a.Config.WarmSchedule); err != nil {
			return fmt.Errorf("multiblog: warm schedule: %w", err)
		}
	}

	a.apiLimiter = NewRequestLimiter(a.Config.APIRateLimit, time.Minute)
	a.closers = append(a.closers, a.apiLimiter)

	a.Echo.HideBanner = true
	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until SIGINT or SIGTERM, then shuts
// down gracefully.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(ctx); err != nil {
			a.logger.Error("http server shutdown", zap.Error(err))
		}
	}()

	a.logger.Info("listening",
		zap.String("addr", a.Config.Addr),
		zap.String("root_domain", a.Config.RootDomain))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", handleHealth)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/api/paths", a.handlePaths)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	e.GET("/", a.handleHome)
	e.GET("/:route/", a.handleListing)
	e.GET("/:route/feed.xml", a.handleFeed)
	e.GET("/:route/:slug/", a.handleArticle)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.warmer != nil {
		<-a.warmer.Stop().Done()
	}
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
