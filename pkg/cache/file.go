package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileExt = ".json"

// fileEntry is the on-disk layout of a cached payload.
type fileEntry struct {
	Timestamp int64           `json:"timestamp"`
	TTL       int64           `json:"ttl,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// FileCache implements Service with one JSON file per key under a root directory.
// It survives restarts, which is what the HTTP client relies on between runs.
type FileCache struct {
	root       string
	defaultTTL time.Duration
	now        func() time.Time
}

// NewFileCache creates the root directory if needed.
func NewFileCache(opts ...FileOption) (*FileCache, error) {
	cfg := &FileConfig{
		Root:       filepath.Join(os.TempDir(), "stockpilot-cache"),
		DefaultTTL: time.Hour,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create root %s: %w", cfg.Root, err)
	}

	return &FileCache{
		root:       cfg.Root,
		defaultTTL: cfg.DefaultTTL,
		now:        time.Now,
	}, nil
}

// Root returns the cache directory.
func (fc *FileCache) Root() string { return fc.root }

func (fc *FileCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var data []byte
	var err error
	if str, ok := value.(string); ok {
		// strings are always JSON strings on disk, even "123"
		data, err = json.Marshal(str)
	} else if data, err = encode(value); err == nil && !json.Valid(data) {
		data, err = json.Marshal(string(data))
	}
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}

	if expiration <= 0 {
		expiration = fc.defaultTTL
	}

	body, err := json.Marshal(fileEntry{
		Timestamp: fc.now().Unix(),
		TTL:       int64(expiration / time.Second),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}

	tmp, err := os.CreateTemp(fc.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: temp file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), fc.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: rename: %w", err)
	}
	return nil
}

func (fc *FileCache) Get(_ context.Context, key string, dest interface{}) error {
	entry, err := fc.load(key)
	if err != nil {
		return err
	}

	switch d := dest.(type) {
	case *json.RawMessage, *[]byte:
		return decode(entry.Data, d)
	default:
		return json.Unmarshal(entry.Data, dest)
	}
}

func (fc *FileCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := os.Remove(fc.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cache: delete %s: %w", key, err)
		}
	}
	return nil
}

func (fc *FileCache) Exists(_ context.Context, keys ...string) (bool, error) {
	for _, key := range keys {
		if _, err := fc.load(key); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// Clear removes every entry file under the root.
func (fc *FileCache) Clear(_ context.Context) error {
	matches, err := filepath.Glob(filepath.Join(fc.root, "*"+fileExt))
	if err != nil {
		return fmt.Errorf("cache: list: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cache: clear: %w", err)
		}
	}
	return nil
}

func (fc *FileCache) Close() error { return nil }

// load returns a live entry; expired or unreadable files are removed.
func (fc *FileCache) load(key string) (*fileEntry, error) {
	p := fc.path(key)
	body, err := os.ReadFile(p)
	if err != nil {
		return nil, ErrCacheMiss
	}

	var entry fileEntry
	if err := json.Unmarshal(body, &entry); err != nil || entry.Data == nil {
		_ = os.Remove(p)
		return nil, ErrCacheMiss
	}

	ttl := time.Duration(entry.TTL) * time.Second
	if ttl <= 0 {
		ttl = fc.defaultTTL
	}
	age := fc.now().Sub(time.Unix(entry.Timestamp, 0))
	if age > ttl {
		_ = os.Remove(p)
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

func (fc *FileCache) path(key string) string {
	name := key
	if strings.ContainsAny(name, `/\:*?"<>|`) || len(name) > 128 {
		name = HashKey(key)
	}
	return filepath.Join(fc.root, name+fileExt)
}
