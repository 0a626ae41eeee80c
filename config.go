package folio

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/schedule"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `koanf:"name"`        // Site name (default: catalog name)
	URL         string `koanf:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `koanf:"description"` // Site description for RSS and meta tags
	Author      string `koanf:"author"`      // Author name for JSON-LD

	Addr         string `koanf:"addr"`          // Listen address (default ":3000")
	DatabasePath string `koanf:"database_path"` // SQLite path (default "data/folio.db")
	ContentDir   string `koanf:"content_dir"`   // Catalog directory; empty uses the embedded catalog
	WatchContent bool   `koanf:"watch_content"` // Reload ContentDir on change
	StaticDir    string `koanf:"static_dir"`    // User static assets (default "public")
	WritingURL   string `koanf:"writing_url"`   // External writing index (default: catalog value)

	SessionSecret string `koanf:"session_secret"` // Cookie session secret; generated when empty
	CookieSecure  bool   `koanf:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL  time.Duration `koanf:"post_cache_ttl"`  // Post cache TTL (default 5min)
	LogLevel      string        `koanf:"log_level"`       // debug, info, warn or error (default "info")
	LiveEnabled   bool          `koanf:"live_enabled"`    // Serve the /live/ channel
	LiveRate      float64       `koanf:"live_rate"`       // Live connections per second per IP (default 1)
	LiveBurst     int           `koanf:"live_burst"`      // Live connections allowed at once per IP (default 5)
	ImageMaxWidth int           `koanf:"image_max_width"` // Widest /_img/ rendition (default 1600)
}

// DefaultConfig returns the configuration LoadConfig starts from.
func DefaultConfig() SiteConfig {
	cfg := SiteConfig{LiveEnabled: true}
	cfg.setDefaults()
	return cfg
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LiveRate == 0 {
		c.LiveRate = 1
	}
	if c.LiveBurst == 0 {
		c.LiveBurst = 5
	}
	if c.ImageMaxWidth == 0 {
		c.ImageMaxWidth = 1600
	}
}

// Validate reports configuration values the server cannot run with.
func (c *SiteConfig) Validate() error {
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("folio: invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.PostCacheTTL < 0 {
		return errors.New("folio: post_cache_ttl must be non-negative")
	}
	if c.LiveRate < 0 {
		return errors.New("folio: live_rate must be non-negative")
	}
	if c.LiveBurst < 0 {
		return errors.New("folio: live_burst must be non-negative")
	}
	if c.ImageMaxWidth < 0 {
		return errors.New("folio: image_max_width must be non-negative")
	}
	if c.WatchContent && c.ContentDir == "" {
		return errors.New("folio: watch_content requires content_dir")
	}
	return nil
}

var logLevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
}

func (c *SiteConfig) logLevel() log.Lvl {
	if lvl, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return lvl
	}
	return log.INFO
}

// LoadConfig reads .env into the environment, then layers the YAML file at
// path (when it exists) and FOLIO_* environment variables over the defaults.
func LoadConfig(path string) (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return SiteConfig{}, fmt.Errorf("folio: read .env: %w", err)
	}

	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return SiteConfig{}, fmt.Errorf("folio: read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("folio: access config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("FOLIO_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FOLIO_"))
	}), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("folio: load env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("folio: unmarshal config: %w", err)
	}
	cfg.setDefaults()
	return cfg, cfg.Validate()
}

// randomSecret returns a hex-encoded 32-byte secret.
func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithScheduler replaces the timer source used by live sessions.
func WithScheduler(s schedule.Scheduler) Option {
	return func(a *App) {
		a.sched = s
	}
}

// WithSite serves site instead of loading a catalog.
func WithSite(site *content.Site) Option {
	return func(a *App) {
		a.initialSite = site
	}
}
