package guide

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = 250 * time.Millisecond

// Watch reloads the library when a markdown file under its directory
// changes and calls onReload after each successful reload. It blocks until
// ctx is cancelled.
func (l *Library) Watch(ctx context.Context, log *zap.Logger, onReload func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	err = filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", l.dir, err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				// New subdirectories need their own watch.
				_ = fw.Add(ev.Name)
			}
			if filepath.Ext(ev.Name) != ".md" && ev.Op&fsnotify.Remove == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("guide watcher error", zap.Error(err))

		case <-timer.C:
			if err := l.Load(); err != nil {
				log.Error("guide reload failed", zap.String("dir", l.dir), zap.Error(err))
				continue
			}
			log.Info("guides reloaded", zap.Int("pages", len(l.Pages())))
			if onReload != nil {
				onReload()
			}
		}
	}
}
