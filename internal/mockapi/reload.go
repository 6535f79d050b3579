package mockapi

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jwtpizza/pizza-e2e/internal/scenario"
)

// Reloader re-resolves the active scenario whenever a YAML file in its
// directory changes. Bursts of writes collapse into one reload.
type Reloader struct {
	server        *Server
	dir           string
	name          string
	watcher       *fsnotify.Watcher
	debounceDelay time.Duration

	mu      sync.Mutex
	pending time.Time
}

// NewReloader watches dir and swaps the named scenario into s whenever a
// file in dir changes. The watch starts with Run.
func NewReloader(s *Server, dir, name string) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	return &Reloader{
		server:        s,
		dir:           dir,
		name:          name,
		watcher:       watcher,
		debounceDelay: 300 * time.Millisecond,
	}, nil
}

// Run processes file events until ctx is done.
func (r *Reloader) Run(ctx context.Context) {
	defer r.watcher.Close()
	log.Printf("[pizzamock] watching %s for scenario changes", r.dir)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !isScenarioFile(event.Name) {
				continue
			}
			r.mu.Lock()
			r.pending = time.Now()
			r.mu.Unlock()

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[pizzamock] watcher error: %v", err)

		case <-ticker.C:
			r.mu.Lock()
			due := !r.pending.IsZero() && time.Since(r.pending) >= r.debounceDelay
			if due {
				r.pending = time.Time{}
			}
			r.mu.Unlock()
			if due {
				r.reload()
			}
		}
	}
}

// A broken file keeps the previous scenario active.
func (r *Reloader) reload() {
	sc, err := scenario.Resolve(r.dir, r.name)
	if err != nil {
		log.Printf("[pizzamock] reload of %q failed, keeping previous: %v", r.name, err)
		return
	}
	r.server.Swap(sc)
}

func isScenarioFile(name string) bool {
	if strings.Contains(name, "/.") {
		return false
	}
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
