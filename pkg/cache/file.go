package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value    json.RawMessage `json:"value,omitempty"`
	Text     *string         `json:"text,omitempty"`
	ExpireAt *time.Time      `json:"expire_at,omitempty"`
}

func (e *fileEntry) bytes() []byte {
	if e.Text != nil {
		return []byte(*e.Text)
	}
	return e.Value
}

// FileCache persists entries as one JSON document on disk. It survives restarts,
// which is what the scrape fallback needs when every upstream is down.
type FileCache struct {
	path       string
	defaultTTL time.Duration
	mutex      sync.Mutex
	entries    map[string]*fileEntry
}

// NewFileCache opens (or lazily creates) the cache file at path.
func NewFileCache(path string, opts ...FileOption) (*FileCache, error) {
	cfg := &FileConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	fc := &FileCache{
		path:       path,
		defaultTTL: cfg.DefaultTTL,
		entries:    make(map[string]*fileEntry),
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fc, nil
	case err != nil:
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &fc.entries); err != nil {
			return nil, fmt.Errorf("parse cache file %s: %w", path, err)
		}
	}
	return fc, nil
}

func (fc *FileCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	return fc.setRaw(ctx, key, data, expiration)
}

func (fc *FileCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := fc.getRaw(ctx, key)
	if err != nil {
		return err
	}
	return decode(data, dest)
}

func (fc *FileCache) setRaw(_ context.Context, key string, data []byte, expiration time.Duration) error {
	entry := &fileEntry{}
	if json.Valid(data) {
		entry.Value = append(json.RawMessage(nil), data...)
	} else {
		s := string(data)
		entry.Text = &s
	}
	if expiration <= 0 {
		expiration = fc.defaultTTL
	}
	if expiration > 0 {
		t := time.Now().Add(expiration).UTC()
		entry.ExpireAt = &t
	}

	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	fc.entries[key] = entry
	return fc.flushLocked()
}

func (fc *FileCache) getRaw(_ context.Context, key string) ([]byte, error) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	entry, ok := fc.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if entry.ExpireAt != nil && time.Now().After(*entry.ExpireAt) {
		return nil, ErrCacheMiss
	}
	return entry.bytes(), nil
}

func (fc *FileCache) Delete(_ context.Context, keys ...string) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	for _, key := range keys {
		delete(fc.entries, key)
	}
	return fc.flushLocked()
}

func (fc *FileCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := fc.getRaw(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	return err == nil, err
}

func (fc *FileCache) Close() error {
	return nil
}

// flushLocked rewrites the file through a temp file and rename.
func (fc *FileCache) flushLocked() error {
	b, err := json.MarshalIndent(fc.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}

	dir := filepath.Dir(fc.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fc.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
