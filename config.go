package inkwell

import "time"

// SiteConfig holds all configuration for an inkwell site.
type SiteConfig struct {
	Name        string // Site name (default "Inkwell")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for feeds and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path for the metadata cache (default "data/inkwell.db")

	// External collaborators. Clients are constructed once at startup from
	// these values and injected; they are never re-read mid-request.
	ProfileDirectoryURL string // Profile directory base URL
	AnalyticsAPIURL     string // Analytics provider base URL
	AnalyticsSiteID     string // Provider-side site identifier
	AnalyticsAPIToken   string // Provider API token

	// AnalyticsFetchConcurrency caps concurrent per-path provider fetches
	// (default 8).
	AnalyticsFetchConcurrency int

	AdminPassword string // Required: operator login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	StoryCacheTTL time.Duration // In-memory story cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Inkwell"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/inkwell.db"
	}
	if c.StoryCacheTTL == 0 {
		c.StoryCacheTTL = 5 * time.Minute
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

// WithStaticDir sets the directory for static assets and cached avatars
// (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
