package content

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

//go:embed data
var embedded embed.FS

const (
	siteFile  = "site.yaml"
	postsGlob = "posts/*.md"
)

// Default loads the catalog compiled into the binary.
func Default() (*Site, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads a catalog from a directory laid out like the embedded one:
// site.yaml plus posts/*.md.
func LoadDir(dir string) (*Site, error) {
	return Load(os.DirFS(dir))
}

// Load reads site.yaml and every post under posts/ from fsys.
func Load(fsys fs.FS) (*Site, error) {
	raw, err := fs.ReadFile(fsys, siteFile)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", siteFile, err)
	}
	var site Site
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return nil, fmt.Errorf("content: parse %s: %w", siteFile, err)
	}
	if strings.TrimSpace(site.Name) == "" {
		return nil, fmt.Errorf("content: %s: name is required", siteFile)
	}

	posts, err := loadPosts(fsys)
	if err != nil {
		return nil, err
	}
	site.Posts = posts
	return &site, nil
}

func loadPosts(fsys fs.FS) ([]Post, error) {
	matches, err := fs.Glob(fsys, postsGlob)
	if err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(matches))
	for _, name := range matches {
		p, err := parsePost(fsys, name)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	posts = SortPosts(posts)
	if err := ValidatePosts(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func parsePost(fsys fs.FS, name string) (Post, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Post{}, fmt.Errorf("content: read %s: %w", name, err)
	}
	var p Post
	body, err := frontmatter.Parse(bytes.NewReader(raw), &p)
	if err != nil {
		return Post{}, fmt.Errorf("content: parse %s: %w", name, err)
	}
	if p.Slug == "" {
		p.Slug = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	p.Content = strings.TrimSpace(string(body))
	return p, nil
}
