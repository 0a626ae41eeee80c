package folio

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/folio/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

func marshalJSONLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJSONLD(data)
}

// PersonJsonLD returns a JSON-LD string for the site owner's Person schema.
func PersonJsonLD(site *content.Site, cfg SiteConfig) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     site.Name,
		"url":      BuildURL(cfg.URL),
	}
	if site.Headline != "" {
		data["jobTitle"] = site.Headline
	}
	if site.Location != "" {
		data["homeLocation"] = map[string]string{
			"@type": "Place",
			"name":  site.Location,
		}
	}
	var sameAs []string
	for _, l := range site.Social {
		if strings.HasPrefix(l.URL, "http") {
			sameAs = append(sameAs, l.URL)
		}
	}
	if len(sameAs) > 0 {
		data["sameAs"] = sameAs
	}
	return marshalJSONLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post content.Post, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "writing", post.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":    post.Title,
		"description": post.Excerpt,
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	// schema.org wants ISO 8601; unparseable display dates are left out.
	if t, ok := parsePostDate(post.Date); ok {
		data["datePublished"] = t.Format("2006-01-02")
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if post.Category != "" {
		data["articleSection"] = post.Category
	}
	return marshalJSONLD(data)
}
