// Package content holds the site's declarative data: the writing collection
// and the catalog behind the home, work and about pages.
package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound reports a slug with no post in the collection.
var ErrNotFound = errors.New("content: post not found")

// Post is one entry of the writing collection. The collection order is
// ascending Position, ties kept in load order (see SortPosts); it defines
// display adjacency and pagination.
type Post struct {
	ID       string `yaml:"id"`
	Slug     string `yaml:"slug"`
	Title    string `yaml:"title"`
	Excerpt  string `yaml:"excerpt"`
	Date     string `yaml:"date"`
	ReadTime string `yaml:"read_time"`
	Image    string `yaml:"image"`
	Category string `yaml:"category"`
	Position int    `yaml:"position"`
	Content  string `yaml:"-"`
}

// URL returns the site-relative path of the post page.
func (p Post) URL() string {
	return "/writing/" + p.Slug + "/"
}

// HasContent reports whether the post has a body.
func (p Post) HasContent() bool {
	return strings.TrimSpace(p.Content) != ""
}

// Resolution is the result of looking a post up by slug. A miss leaves all
// three fields nil.
type Resolution struct {
	Post     *Post
	Previous *Post
	Next     *Post
}

// Found reports whether the lookup matched.
func (r Resolution) Found() bool {
	return r.Post != nil
}

// Resolve finds the first post whose slug equals slug, together with its
// neighbours in collection order.
func Resolve(posts []Post, slug string) Resolution {
	for i := range posts {
		if posts[i].Slug != slug {
			continue
		}
		res := Resolution{Post: &posts[i]}
		if i > 0 {
			res.Previous = &posts[i-1]
		}
		if i < len(posts)-1 {
			res.Next = &posts[i+1]
		}
		return res
	}
	return Resolution{}
}

// SortPosts returns a copy of posts in collection order. posts is not
// modified.
func SortPosts(posts []Post) []Post {
	sorted := append([]Post(nil), posts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}

// ValidatePosts checks the collection invariants: every post has a slug and
// no two posts share a slug or an id.
func ValidatePosts(posts []Post) error {
	slugs := make(map[string]struct{}, len(posts))
	ids := make(map[string]struct{}, len(posts))
	for i, p := range posts {
		if p.Slug == "" {
			return fmt.Errorf("content: post %d (%q) has no slug", i, p.Title)
		}
		if _, dup := slugs[p.Slug]; dup {
			return fmt.Errorf("content: duplicate slug %q", p.Slug)
		}
		slugs[p.Slug] = struct{}{}
		if p.ID == "" {
			continue
		}
		if _, dup := ids[p.ID]; dup {
			return fmt.Errorf("content: duplicate id %q", p.ID)
		}
		ids[p.ID] = struct{}{}
	}
	return nil
}
