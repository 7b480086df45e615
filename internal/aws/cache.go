package aws

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache stores AWS API results as JSON files with a time-to-live.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileCache creates a cache in dir. Entries older than ttl are ignored.
func NewFileCache(dir string, ttl time.Duration) *FileCache {
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}
}

// Get decodes a fresh entry into dest and reports whether it was found.
func (fc *FileCache) Get(key string, dest any) bool {
	info, err := os.Stat(fc.path(key))
	if err != nil || fc.now().Sub(info.ModTime()) >= fc.ttl {
		return false
	}

	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores value under key, replacing any previous entry atomically.
func (fc *FileCache) Set(key string, value any) error {
	if err := os.MkdirAll(fc.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}

	tmp, err := os.CreateTemp(fc.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	return os.Rename(tmp.Name(), fc.path(key))
}

// Clear removes all cached entries.
func (fc *FileCache) Clear() error {
	entries, err := os.ReadDir(fc.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(fc.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, key+".json")
}

func cacheKey(parts ...string) string {
	return strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(strings.Join(parts, "-"))
}
