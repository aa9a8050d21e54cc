// Package inkwell is a decentralized blog publishing engine built with Go,
// Echo, and templ. Story content lives in per-user remote storage buckets;
// inkwell renders the public front end, keeps a thin SQLite cache of public
// story metadata, and serves analytics API endpoints backed by an external
// analytics provider.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// inkwell handles all the handler logic, middleware, and cache operations.
package inkwell

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/analytics"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home            func(siteURL string) templ.Component
	UserPage        func(profile analytics.Profile, stories []StoryMeta, avatarPath string, siteURL string) templ.Component
	UserPagePartial func(profile analytics.Profile, stories []StoryMeta, avatarPath string, siteURL string) templ.Component
	Story           func(profile analytics.Profile, story StoryMeta, stories []StoryMeta, siteURL string) templ.Component
	StoryPartial    func(profile analytics.Profile, story StoryMeta, stories []StoryMeta, siteURL string) templ.Component
	AdminLogin      func(showError bool, csrfToken string) templ.Component
	AdminDashboard  func(users []CachedUser, message string, csrfToken string) templ.Component
	NotFound        func() templ.Component
	ServerError     func() templ.Component
}

// App is the central inkwell application. It wires together the store, cache,
// handlers, middleware, external collaborators, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *StoryCache
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	resolver     analytics.ProfileResolver
	lister       analytics.StoryLister
	provider     analytics.Provider
	reporter     analytics.Reporter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new inkwell App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	views.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithResolver overrides the profile directory collaborator.
func WithResolver(r analytics.ProfileResolver) Option {
	return func(a *App) { a.resolver = r }
}

// WithLister overrides the bucket story-index collaborator.
func WithLister(l analytics.StoryLister) Option {
	return func(a *App) { a.lister = l }
}

// WithProvider overrides the analytics provider client.
func WithProvider(p analytics.Provider) Option {
	return func(a *App) { a.provider = p }
}

// WithReporter overrides the error/observability reporter.
func WithReporter(r analytics.Reporter) Option {
	return func(a *App) { a.reporter = r }
}

// Start initializes the database, cache, collaborators, middleware, and
// routes, then starts the server.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// init wires everything short of listening. Split from Start so tests can
// exercise the full route table against httptest.
func (a *App) init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("inkwell: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("inkwell: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inkwell: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewStoryCache(a.Store, a.Config.StoryCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	// Collaborator clients are built once here and injected; handlers never
	// reconstruct them from environment state.
	if a.resolver == nil {
		a.resolver = analytics.NewDirectoryClient(a.Config.ProfileDirectoryURL, nil)
	}
	if a.lister == nil {
		a.lister = analytics.NewBucketClient(nil)
	}
	if a.provider == nil {
		a.provider = analytics.NewClient(a.Config.AnalyticsAPIURL, a.Config.AnalyticsSiteID, a.Config.AnalyticsAPIToken, nil)
	}
	if a.reporter == nil {
		a.reporter = analytics.NewLogReporter(nil)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)

	e.GET("/", a.handleHome)
	e.GET("/:username/", a.handleUserPage)
	e.GET("/:username/feed.xml", a.handleFeed)
	e.GET("/:username/:story/", a.handleStory)

	// Operator routes — session-gated cache administration.
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/refresh/:username/", a.handleAdminRefresh)
	e.DELETE("/admin/user/:username/", a.handleAdminEvict)

	// Analytics API
	agg := analytics.NewAggregator(a.resolver, a.lister, a.provider, a.reporter, a.Config.AnalyticsFetchConcurrency)
	analytics.NewHandler(agg).RegisterRoutes(e)
}

// refreshUser re-fetches a user's public-story index, rewrites the cached
// metadata, and refreshes the local avatar copy.
func (a *App) refreshUser(ctx context.Context, profile analytics.Profile) ([]StoryMeta, error) {
	refs, err := a.lister.ListPublic(ctx, profile.BucketURL)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", profile.Username, err)
	}
	stories := make([]StoryMeta, 0, len(refs))
	for _, r := range refs {
		stories = append(stories, StoryMeta{
			ID:        r.ID,
			Username:  profile.Username,
			Title:     r.Title,
			Slug:      Slugify(r.Title),
			CreatedAt: r.CreatedAt,
			Link:      "/" + profile.Username + "/" + r.ID,
		})
	}
	if err := a.Store.ReplaceStories(profile.Username, stories); err != nil {
		return nil, fmt.Errorf("refresh %s: %w", profile.Username, err)
	}
	a.Cache.Invalidate(profile.Username)

	// Avatar refresh is best-effort; a missing avatar never fails the page.
	if profile.AvatarURL != "" {
		if err := a.refreshAvatar(ctx, profile); err != nil {
			a.Echo.Logger.Warnf("refresh avatar for %s: %v", profile.Username, err)
		}
	}
	return a.Cache.Stories(profile.Username)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in server main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("inkwell: required environment variable %s is not set", key)
	}
	return v
}
