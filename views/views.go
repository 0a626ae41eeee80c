// Package views renders the site's pages. Templates are embedded and exposed
// as templ components so handlers render them the same way as any other
// component.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "work", "about", "post", "post_not_found", "not_found", "server_error"} {
		pages[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
}

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages[name], data)
}

// Home renders the landing page.
func Home(p HomePage) templ.Component { return page("home", p) }

// Work renders the résumé page.
func Work(p WorkPage) templ.Component { return page("work", p) }

// About renders the personal page.
func About(p AboutPage) templ.Component { return page("about", p) }

// Post renders a writing post.
func Post(p PostPage) templ.Component { return page("post", p) }

// PostNotFound renders the writing fallback for an unknown slug.
func PostNotFound(p StatusPage) templ.Component { return page("post_not_found", p) }

func NotFound(p StatusPage) templ.Component { return page("not_found", p) }

func ServerError(p StatusPage) templ.Component { return page("server_error", p) }
