// Package folio serves a personal portfolio site built with Go, Echo, and templ:
// a home page with a rotating tagline, work and about pages, and a writing
// collection with previous/next navigation.
//
// Page templates are supplied through ViewFuncs; DefaultViews returns the
// built-in set. folio owns the handlers, middleware, post store, and the
// live channel that keeps an open page's layout and tagline current.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/schedule"
	"github.com/eringen/folio/views"
)

// ViewFuncs holds the templ components the handlers render. Nil entries are
// filled from DefaultViews.
type ViewFuncs struct {
	Home         func(views.HomePage) templ.Component
	Work         func(views.WorkPage) templ.Component
	About        func(views.AboutPage) templ.Component
	Post         func(views.PostPage) templ.Component
	PostNotFound func(views.StatusPage) templ.Component
	NotFound     func(views.StatusPage) templ.Component
	ServerError  func(views.StatusPage) templ.Component
}

// DefaultViews returns the built-in page templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:         views.Home,
		Work:         views.Work,
		About:        views.About,
		Post:         views.Post,
		PostNotFound: views.PostNotFound,
		NotFound:     views.NotFound,
		ServerError:  views.ServerError,
	}
}

func (v *ViewFuncs) fill() {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Work == nil {
		v.Work = d.Work
	}
	if v.About == nil {
		v.About = d.About
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.PostNotFound == nil {
		v.PostNotFound = d.PostNotFound
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}

// App is the central folio application. It wires together the catalog,
// store, cache, handlers, middleware, and live channel.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Views  ViewFuncs

	site         atomic.Pointer[content.Site]
	initialSite  *content.Site
	sched        schedule.Scheduler
	liveLimiter  *IPLimiter
	hub          *liveHub
	liveHook     func(*liveSession) // runs before a live session starts
	images       *imageCache
	customRoutes []func(*App)

	setupOnce sync.Once
	setupErr  error
}

// New creates a folio App with the given configuration and view functions.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	v.fill()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  v,
		sched:  schedule.Real,
		hub:    newLiveHub(),
		images: newImageCache(imageCacheLimit),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup loads the catalog, opens the store, and registers middleware and
// routes. Start calls it; tests call it directly and serve a.Echo.
func (a *App) Setup() error {
	a.setupOnce.Do(func() {
		a.setupErr = a.setup()
	})
	return a.setupErr
}

func (a *App) setup() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	a.Echo.Logger.SetLevel(a.Config.logLevel())

	if a.Config.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("folio: generate session secret: %w", err)
		}
		a.Config.SessionSecret = secret
		a.Echo.Logger.Warn("folio: session_secret is not set; using a random one, sessions will not survive a restart")
	}

	site := a.initialSite
	if site == nil {
		var err error
		if site, err = a.loadSite(); err != nil {
			return fmt.Errorf("folio: load content: %w", err)
		}
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)

	if err := a.Reload(site); err != nil {
		return fmt.Errorf("folio: seed store: %w", err)
	}

	if a.Config.LiveEnabled {
		a.liveLimiter = NewIPLimiter(rate.Limit(a.Config.LiveRate), a.Config.LiveBurst, 10*time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) loadSite() (*content.Site, error) {
	if a.Config.ContentDir != "" {
		return content.LoadDir(a.Config.ContentDir)
	}
	return content.Default()
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("folio: serving %q on %s", a.siteName(), a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Reload installs site as the served catalog and reseeds the post store,
// with posts in Position order. site itself is not modified. A site that
// fails validation leaves the previous catalog in place.
func (a *App) Reload(site *content.Site) error {
	next := *site
	next.Posts = content.SortPosts(site.Posts)
	if err := a.Store.ReplacePosts(next.Posts); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.site.Store(&next)
	return nil
}

// Site returns the catalog currently being served.
func (a *App) Site() *content.Site {
	return a.site.Load()
}

// WatchContent reloads the catalog from the content directory whenever it
// changes, until ctx is done.
func (a *App) WatchContent(ctx context.Context) error {
	if a.Config.ContentDir == "" {
		return errors.New("folio: no content_dir to watch")
	}
	return content.Watch(ctx, a.Config.ContentDir, content.DefaultDebounce, func(site *content.Site, err error) {
		if err != nil {
			a.Echo.Logger.Errorf("folio: reload content: %v", err)
			return
		}
		if err := a.Reload(site); err != nil {
			a.Echo.Logger.Errorf("folio: apply content: %v", err)
			return
		}
		a.Echo.Logger.Infof("folio: reloaded content, %d posts", len(site.Posts))
	})
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets are served under /public/ ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	e.GET("/public/site.css", embeddedHandler)
	e.GET("/public/live.js", embeddedHandler)

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/_img/", a.handleImage)

	e.GET("/", a.handleHome)
	e.GET("/work/", a.handleWork)
	e.GET("/about/", a.handleAbout)
	e.GET("/writing", a.handleWritingRedirect)
	e.GET("/writing/", a.handleWritingRedirect)
	e.GET("/writing/:slug/", a.handlePost)

	if a.Config.LiveEnabled {
		e.GET("/live/", a.handleLive, a.liveLimiter.Middleware())
	}
}

// Shutdown closes live sessions, stops the server gracefully, and releases
// resources.
func (a *App) Shutdown(ctx context.Context) error {
	a.hub.closeAll()
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	a.hub.closeAll()
	if a.liveLimiter != nil {
		a.liveLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
