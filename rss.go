package folio

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
)

type rssFeed struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Self          rssLink   `xml:"atom:link"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Body        *rssCDATA `xml:"content:encoded,omitempty"`
	Category    string    `xml:"category,omitempty"`
	PubDate     string    `xml:"pubDate,omitempty"`
	GUID        rssGUID   `xml:"guid"`
}

type rssCDATA struct {
	Text string `xml:",cdata"`
}

type rssGUID struct {
	Value     string `xml:",chardata"`
	Permalink bool   `xml:"isPermaLink,attr"`
}

// feedItem converts a post. Posts with a body carry it rendered as HTML.
func feedItem(base string, p content.Post) rssItem {
	link := BuildURL(base, "writing", p.Slug)
	item := rssItem{
		Title:       p.Title,
		Link:        link,
		Description: p.Excerpt,
		Category:    p.Category,
		GUID:        rssGUID{Value: link, Permalink: true},
	}
	if t, ok := parsePostDate(p.Date); ok {
		item.PubDate = t.Format(time.RFC1123Z)
	}
	if p.HasContent() {
		var buf bytes.Buffer
		if err := markdown.Render(&buf, p.Content); err == nil {
			item.Body = &rssCDATA{Text: buf.String()}
		}
	}
	return item
}

func (a *App) renderRSS(c echo.Context, posts []content.Post) error {
	base := a.Config.URL
	site := a.viewSite()

	var newest time.Time
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, feedItem(base, p))
		if t, ok := parsePostDate(p.Date); ok && t.After(newest) {
			newest = t
		}
	}

	feed := rssFeed{
		Version:   "2.0",
		AtomNS:    "http://www.w3.org/2005/Atom",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		Channel: rssChannel{
			Title:       site.Name,
			Link:        BuildURL(base),
			Description: site.Description,
			Self: rssLink{
				Href: strings.TrimRight(BuildURL(base), "/") + "/feed.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}
	if !newest.IsZero() {
		feed.Channel.LastBuildDate = newest.Format(time.RFC1123Z)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
