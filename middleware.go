package folio

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/folio/viewport"
)

const (
	sessionName = "folio_session"
	viewportKey = "viewport_width"
	mobileKey   = "mobile"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public/") ||
				strings.HasPrefix(path, "/_img/") ||
				strings.HasPrefix(path, "/live/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self' ws: wss:; media-src 'self' data:",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return isAssetPath(path) || path == "/writing"
		},
	}))

	e.Use(cacheControlMiddleware)
	e.Use(viewportMiddleware)
}

// isAssetPath reports whether path is served without page chrome.
func isAssetPath(path string) bool {
	return strings.HasPrefix(path, "/public") ||
		strings.HasPrefix(path, "/_img") ||
		strings.HasPrefix(path, "/live") ||
		path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case strings.HasPrefix(path, "/_img/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/live"):
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			// Pages depend on the visitor's viewport.
			c.Response().Header().Set("Cache-Control", "private, max-age=300")
		}
		return next(c)
	}
}

// viewportMiddleware classifies the request's viewport from the width client
// hint, falling back to the width remembered in the session, and stores the
// result under mobileKey for the page handlers.
func viewportMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isAssetPath(c.Request().URL.Path) {
			return next(c)
		}
		h := c.Response().Header()
		h.Set("Accept-CH", "Sec-CH-Viewport-Width, Viewport-Width")
		h.Add("Vary", "Sec-CH-Viewport-Width")
		h.Add("Vary", "Viewport-Width")

		width, ok := viewport.ParseHint(c.Request().Header)
		if sess, _ := session.Get(sessionName, c); sess != nil {
			stored, found := sess.Values[viewportKey].(int)
			switch {
			case ok && stored != width:
				sess.Values[viewportKey] = width
				if err := sess.Save(c.Request(), c.Response()); err != nil {
					c.Logger().Warnf("save viewport session: %v", err)
				}
			case !ok && found:
				width, ok = stored, true
			}
		}

		var d viewport.Display
		if ok {
			d = viewport.Fixed(width)
		}
		det := viewport.NewDetector(d, nil)
		defer det.Close()
		c.Set(mobileKey, det.IsMobile())
		return next(c)
	}
}

// IsMobile reports whether the current request was classified as mobile.
func IsMobile(c echo.Context) bool {
	mobile, _ := c.Get(mobileKey).(bool)
	return mobile
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 24 * 30,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}
