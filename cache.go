package folio

import (
	"sync"
	"time"

	"github.com/eringen/folio/content"
)

// PostCache is an in-memory cache of the writing collection with TTL.
// Cached slices are replaced, never mutated, so callers may hold them.
type PostCache struct {
	mu      sync.RWMutex
	posts   []content.Post
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts()
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []content.Post{}
	}
	c.posts = posts
	c.fetched = time.Now()
	return nil
}

// ListPosts returns the collection in display order. It tries a read lock
// first and only takes the write lock if a reload is needed.
func (c *PostCache) ListPosts() ([]content.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.posts, nil
}

// Resolve looks slug up in the cached collection.
func (c *PostCache) Resolve(slug string) (content.Resolution, error) {
	posts, err := c.ListPosts()
	if err != nil {
		return content.Resolution{}, err
	}
	return content.Resolve(posts, slug), nil
}
