package views

import (
	"html/template"

	"github.com/eringen/folio/content"
)

// SiteConfig holds site-wide settings every page needs in its <head>.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// NavLink is one icon in the sidebar. Page identifies which page marks it active.
type NavLink struct {
	Name     string
	URL      string
	Icon     string
	Page     string
	External bool
}

// Layout is the chrome shared by every page.
type Layout struct {
	Site   SiteConfig
	Meta   PageMeta
	Nav    []NavLink
	Active string
	Mobile bool
	Live   bool
	Footer string
	JSONLD template.JS
}

// HomePage renders the landing page.
type HomePage struct {
	Layout
	Profile *content.Site
	Tagline string
}

// WorkPage renders the résumé page.
type WorkPage struct {
	Layout
	Work content.Work
}

// AboutPage renders the personal page.
type AboutPage struct {
	Layout
	About content.About
}

// PostPage renders a single writing post with its neighbours.
type PostPage struct {
	Layout
	Post     content.Post
	Previous *content.Post
	Next     *content.Post
	IndexURL string
}

// StatusPage renders the post-not-found, 404 and 500 pages.
type StatusPage struct {
	Layout
	IndexURL string
}
