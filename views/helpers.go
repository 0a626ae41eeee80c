package views

import (
	"html/template"
	"net/url"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/folio/markdown"
)

// palette maps catalog colour names to tag classes.
var palette = map[string]string{
	"blue":   "tag-blue",
	"navy":   "tag-navy",
	"green":  "tag-green",
	"red":    "tag-red",
	"orange": "tag-orange",
	"purple": "tag-purple",
	"teal":   "tag-teal",
	"yellow": "tag-yellow",
	"pink":   "tag-pink",
	"gray":   "tag-gray",
	"light":  "tag-light",
}

// TagClass returns CSS classes for a tag pill in the named colour, falling
// back to the section's default colour and then to gray.
func TagClass(color, fallback string) string {
	for _, name := range []string{color, fallback} {
		if c, ok := palette[strings.ToLower(strings.TrimSpace(name))]; ok {
			return "tag " + c
		}
	}
	return "tag tag-gray"
}

// NavClass returns CSS classes for a sidebar link, marking the active page.
func NavClass(link NavLink, active string) string {
	if link.Page != "" && link.Page == active {
		return "nav-link nav-active"
	}
	return "nav-link"
}

var upper = cases.Upper(language.Und)

// Upper renders small-caps section labels such as "EXPERIENCE".
func Upper(s string) string {
	return upper.String(s)
}

// Resized points raster images at the resizing endpoint. SVGs and remote
// images are returned unchanged.
func Resized(src string, width int) string {
	if width <= 0 || !strings.HasPrefix(src, "/public/") {
		return src
	}
	switch strings.ToLower(path.Ext(src)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return src
	}
	q := url.Values{}
	q.Set("src", src)
	q.Set("w", strconv.Itoa(width))
	return "/_img/?" + q.Encode()
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// markdownHTML renders catalog copy for html/template. Errors render nothing.
func markdownHTML(src string) template.HTML {
	var b strings.Builder
	if err := markdown.Render(&b, src); err != nil {
		return ""
	}
	return template.HTML(b.String())
}

// dict builds a map from alternating key/value arguments, so partials can
// take more than one value.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return m
}

var funcs = template.FuncMap{
	"tagClass":   TagClass,
	"navClass":   NavClass,
	"upper":      Upper,
	"resized":    Resized,
	"pathEscape": PathEscape,
	"icon":       Icon,
	"markdown":   markdownHTML,
	"dict":       dict,
}
