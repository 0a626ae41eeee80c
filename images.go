package folio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	jpegQuality     = 80
	imageCacheLimit = 128
)

// resizeJPEG decodes an image from src, scales it down to maxWidth when it is
// wider, and encodes it as JPEG.
func resizeJPEG(src io.Reader, maxWidth, quality int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// imageCache keeps the most recent renditions in memory, evicting the oldest.
type imageCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	order   []string
	limit   int
}

func newImageCache(limit int) *imageCache {
	return &imageCache{entries: make(map[string][]byte), limit: limit}
}

func (c *imageCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *imageCache) put(key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	if len(c.order) >= c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = b
	c.order = append(c.order, key)
}

// staticImagePath maps a /public/ URL path onto the static directory,
// rejecting anything that escapes it.
func staticImagePath(staticDir, src string) (string, bool) {
	if !strings.HasPrefix(src, "/public/") {
		return "", false
	}
	rel := path.Clean(strings.TrimPrefix(src, "/public/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return filepath.Join(staticDir, filepath.FromSlash(rel)), true
}

func (a *App) handleImage(c echo.Context) error {
	file, ok := staticImagePath(a.Config.StaticDir, c.QueryParam("src"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid image source")
	}
	width, _ := strconv.Atoi(c.QueryParam("w"))
	if width <= 0 || width > a.Config.ImageMaxWidth {
		width = a.Config.ImageMaxWidth
	}
	quality, err := strconv.Atoi(c.QueryParam("q"))
	if err != nil || quality < 1 || quality > 100 {
		quality = jpegQuality
	}

	key := fmt.Sprintf("%s|%d|%d", file, width, quality)
	if data, ok := a.images.get(key); ok {
		return c.Blob(http.StatusOK, "image/jpeg", data)
	}

	f, err := os.Open(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return echo.ErrNotFound
		}
		return err
	}
	defer f.Close()

	data, err := resizeJPEG(f, width, quality)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported image")
	}
	a.images.put(key, data)
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
