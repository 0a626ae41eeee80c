package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Watch reloads the catalog in dir whenever a file in it or in its posts/
// subdirectory changes, and hands the result to onReload. Bursts of events
// within debounce collapse into a single reload. Watch blocks until ctx is
// cancelled.
func Watch(ctx context.Context, dir string, debounce time.Duration, onReload func(*Site, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("content: watch %s: %w", dir, err)
	}
	postsDir := filepath.Join(dir, "posts")
	if info, err := os.Stat(postsDir); err == nil && info.IsDir() {
		if err := watcher.Add(postsDir); err != nil {
			return fmt.Errorf("content: watch %s: %w", postsDir, err)
		}
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		site, err := LoadDir(dir)
		onReload(site, err)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) && filepath.Clean(event.Name) == postsDir {
				_ = watcher.Add(postsDir)
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onReload(nil, fmt.Errorf("content: watcher: %w", err))
		}
	}
}
