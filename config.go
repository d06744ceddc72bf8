package multiblog

import (
	"time"

	"go.uber.org/zap"
)

// SiteConfig holds all configuration for a multiblog server.
type SiteConfig struct {
	Name       string // Platform name (default "multiblog")
	RootDomain string // Domain whose subdomains map to tenant slugs (default "localhost")

	Addr           string // Listen address (default ":3000")
	DatabaseDriver string // "sqlite" (default) or "pgx"
	DatabaseDSN    string // SQLite path or Postgres URL (default "data/tenants.db")

	RevalidateInterval time.Duration // Staleness window for fetched content (default 1m; negative disables caching)
	FetchConcurrency   int           // Concurrent tenant fetches during enumeration (default 8)
	APIRateLimit       int           // /api/ requests per IP per minute (default 10)
	WarmSchedule       string        // Cron spec for refetching every tenant, e.g. "@every 1m" (default off)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "multiblog"
	}
	if c.RootDomain == "" {
		c.RootDomain = "localhost"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = DriverSQLite
	}
	if c.DatabaseDSN == "" {
		c.DatabaseDSN = "data/tenants.db"
	}
	if c.RevalidateInterval == 0 {
		c.RevalidateInterval = DefaultRevalidate
	}
	if c.FetchConcurrency == 0 {
		c.FetchConcurrency = 8
	}
	if c.APIRateLimit == 0 {
		c.APIRateLimit = 10
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the structured logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithTenantStore replaces the SQL tenant store opened from the config.
func WithTenantStore(s TenantStore) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithSharedCache adds a post cache shared between server instances.
func WithSharedCache(s SharedCache) Option {
	return func(a *App) {
		a.shared = s
	}
}

// WithContentSource sets the content source. It is required.
func WithContentSource(src ContentSource) Option {
	return func(a *App) {
		a.Content = src
	}
}
