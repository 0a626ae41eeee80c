package folio

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/views"
)

// siteName is the configured name, or the catalog owner's name.
func (a *App) siteName() string {
	if a.Config.Name != "" {
		return a.Config.Name
	}
	if site := a.Site(); site != nil {
		return site.Name
	}
	return ""
}

// writingURL is where the writing index lives, on the external platform.
func (a *App) writingURL() string {
	if a.Config.WritingURL != "" {
		return a.Config.WritingURL
	}
	if site := a.Site(); site != nil && site.WritingURL != "" {
		return site.WritingURL
	}
	return "/"
}

func (a *App) viewSite() views.SiteConfig {
	cfg := views.SiteConfig{
		Name:        a.siteName(),
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
	if site := a.Site(); site != nil {
		if cfg.Description == "" {
			cfg.Description = site.Headline
		}
		if cfg.Author == "" {
			cfg.Author = site.Name
		}
	}
	return cfg
}

// jsonLDConfig is the configuration with name, description and author
// resolved against the catalog the way the page chrome resolves them.
func (a *App) jsonLDConfig() SiteConfig {
	site := a.viewSite()
	cfg := a.Config
	cfg.Name, cfg.Description, cfg.Author = site.Name, site.Description, site.Author
	return cfg
}

func (a *App) nav() []views.NavLink {
	return []views.NavLink{
		{Name: "Home", URL: "/", Icon: "home", Page: "home"},
		{Name: "Work", URL: "/work/", Icon: "lightbulb", Page: "work"},
		{Name: "Writing", URL: a.writingURL(), Icon: "pen", Page: "writing", External: true},
		{Name: "About", URL: "/about/", Icon: "user", Page: "about"},
	}
}

// layout builds the page chrome for the page identified by active.
func (a *App) layout(c echo.Context, active string, meta views.PageMeta) views.Layout {
	l := views.Layout{
		Site:   a.viewSite(),
		Meta:   meta,
		Nav:    a.nav(),
		Active: active,
		Mobile: IsMobile(c),
		Live:   a.Config.LiveEnabled,
	}
	if site := a.Site(); site != nil {
		l.Footer = site.Footer
	}
	if l.Meta.Description == "" {
		l.Meta.Description = l.Site.Description
	}
	l.JSONLD = template.JS(WebsiteJsonLD(a.jsonLDConfig()))
	return l
}

func (a *App) pageTitle(title string) string {
	name := a.siteName()
	if title == "" || title == name {
		return name
	}
	return title + " | " + name
}

func (a *App) handleHome(c echo.Context) error {
	site := a.Site()
	tagline := ""
	if len(site.Roles) > 0 {
		tagline = site.Roles[0]
	}
	l := a.layout(c, "home", views.PageMeta{
		Title:  a.pageTitle(""),
		URL:    BuildURL(a.Config.URL),
		OGType: "website",
	})
	l.JSONLD = template.JS(PersonJsonLD(site, a.Config))
	return Render(c, a.Views.Home(views.HomePage{Layout: l, Profile: site, Tagline: tagline}))
}

func (a *App) handleWork(c echo.Context) error {
	site := a.Site()
	l := a.layout(c, "work", views.PageMeta{
		Title:       a.pageTitle(site.Work.Title),
		Description: site.Work.Subtitle,
		URL:         BuildURL(a.Config.URL, "work"),
		OGType:      "website",
	})
	return Render(c, a.Views.Work(views.WorkPage{Layout: l, Work: site.Work}))
}

func (a *App) handleAbout(c echo.Context) error {
	site := a.Site()
	l := a.layout(c, "about", views.PageMeta{
		Title:       a.pageTitle(site.About.Title),
		Description: site.About.Subtitle,
		URL:         BuildURL(a.Config.URL, "about"),
		OGType:      "website",
	})
	return Render(c, a.Views.About(views.AboutPage{Layout: l, About: site.About}))
}

func (a *App) handleWritingRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, a.writingURL())
}

func (a *App) handlePost(c echo.Context) error {
	res, err := a.Cache.Resolve(c.Param("slug"))
	if err != nil {
		return err
	}
	if !res.Found() {
		l := a.layout(c, "writing", views.PageMeta{Title: a.pageTitle("Post not found")})
		return RenderStatus(c, http.StatusNotFound, a.Views.PostNotFound(views.StatusPage{Layout: l, IndexURL: a.writingURL()}))
	}
	post := *res.Post
	l := a.layout(c, "writing", views.PageMeta{
		Title:       a.pageTitle(post.Title),
		Description: post.Excerpt,
		URL:         BuildURL(a.Config.URL, "writing", post.Slug),
		OGType:      "article",
	})
	l.JSONLD = template.JS(BlogPostingJsonLD(post, a.jsonLDConfig()))
	return Render(c, a.Views.Post(views.PostPage{
		Layout:   l,
		Post:     post,
		Previous: res.Previous,
		Next:     res.Next,
		IndexURL: a.writingURL(),
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nSitemap: %s/sitemap.xml\n", strings.TrimRight(a.Config.URL, "/"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		l := a.layout(c, "", views.PageMeta{Title: a.pageTitle("Not found")})
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.StatusPage{Layout: l}))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		l := a.layout(c, "", views.PageMeta{Title: a.pageTitle("Error")})
		_ = RenderStatus(c, code, a.Views.ServerError(views.StatusPage{Layout: l}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
