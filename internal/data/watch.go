package data

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/metrics"
)

// DefaultDebounce coalesces bursts of writes from editors and exporters.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Source when files in its data directory change.
type Watcher struct {
	dir      string
	source   *Source
	log      *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching dir. Call Run to process events.
func NewWatcher(dir string, source *Source, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		source:   source,
		log:      log,
		debounce: DefaultDebounce,
		watcher:  fw,
	}, nil
}

// Run blocks until ctx is cancelled, reloading the source once per burst
// of relevant file events.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.log.Debug("data file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			c, err := w.source.Reload(ctx)
			metrics.CatalogReload(err == nil)
			if err != nil {
				// The previous snapshot is gone; the next request retries the load.
				w.log.Error("catalog reload failed", zap.String("dir", w.dir), zap.Error(err))
				continue
			}
			n := c.Counts()
			w.log.Info("catalog reloaded",
				zap.Int("digimon", n.Digimon),
				zap.Int("skills", n.Skills),
				zap.Int("items", n.Items),
				zap.Int("bosses", n.Bosses),
			)
		}
	}
}

func relevant(e fsnotify.Event) bool {
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	switch filepath.Ext(e.Name) {
	case ".json", ".csv":
		return true
	}
	return false
}
