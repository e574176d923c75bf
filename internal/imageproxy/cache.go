package imageproxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	bodyExt = ".bin"
	metaExt = ".json"
	tmpExt  = ".tmp"
)

// Meta is the sidecar stored next to each cached image.
type Meta struct {
	Source      string    `json:"source"`
	ContentType string    `json:"content_type"`
	FetchedAt   time.Time `json:"fetched_at"`
	ETag        string    `json:"etag,omitempty"`
	Size        int64     `json:"size"`
}

// diskCache is the on-disk layout: <dir>/<key>.bin and <dir>/<key>.json.
type diskCache struct {
	dir string
}

func (d diskCache) bodyPath(key string) string { return filepath.Join(d.dir, key+bodyExt) }
func (d diskCache) metaPath(key string) string { return filepath.Join(d.dir, key+metaExt) }

// readMeta loads the sidecar for key. It returns fs.ErrNotExist when either
// file is missing.
func (d diskCache) readMeta(key string) (Meta, error) {
	var m Meta
	raw, err := os.ReadFile(d.metaPath(key))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("decode %s: %w", d.metaPath(key), err)
	}
	if _, err := os.Stat(d.bodyPath(key)); err != nil {
		return m, err
	}
	return m, nil
}

// write stores body and then meta, each through a temp file and rename so
// readers never see a partial file.
func (d diskCache) write(key string, body []byte, m Meta) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if body != nil {
		if err := d.writeAtomic(d.bodyPath(key), body); err != nil {
			return err
		}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return d.writeAtomic(d.metaPath(key), raw)
}

func (d diskCache) writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(d.dir, filepath.Base(path)+".*"+tmpExt)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// PruneResult counts what Prune removed.
type PruneResult struct {
	Entries int
	Temp    int
	Bytes   int64
}

// Prune deletes cache entries fetched before now-olderThan, orphaned
// bodies and temp files older than that by mtime.
func Prune(dir string, olderThan time.Duration, now time.Time) (PruneResult, error) {
	var res PruneResult
	cutoff := now.Add(-olderThan)
	d := diskCache{dir: dir}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read cache dir: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(name, tmpExt):
			// A recent temp file may belong to a write in progress.
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if os.Remove(filepath.Join(dir, name)) == nil {
				res.Temp++
			}

		case strings.HasSuffix(name, metaExt):
			key := strings.TrimSuffix(name, metaExt)
			raw, err := os.ReadFile(d.metaPath(key))
			if err != nil {
				continue
			}
			var m Meta
			if json.Unmarshal(raw, &m) == nil && !m.FetchedAt.Before(cutoff) {
				continue
			}
			if info, err := os.Stat(d.bodyPath(key)); err == nil {
				res.Bytes += info.Size()
			}
			os.Remove(d.bodyPath(key))
			if err := os.Remove(d.metaPath(key)); err != nil {
				return res, err
			}
			res.Entries++

		case strings.HasSuffix(name, bodyExt):
			key := strings.TrimSuffix(name, bodyExt)
			if _, err := os.Stat(d.metaPath(key)); err == nil {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if os.Remove(d.bodyPath(key)) == nil {
				res.Bytes += info.Size()
				res.Entries++
			}
		}
	}
	return res, nil
}
