package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache persists allocation results and rendered artifacts under a
// directory, one JSON record per key. Plans can carry account balances, so
// records are written readable by the owning user only.
type FileCache struct {
	dir string
}

// NewFileCache opens a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// record is the on-disk form of one cache entry. A zero Expiry means the
// entry never expires.
type record struct {
	Payload []byte    `json:"payload"`
	Expiry  time.Time `json:"expiry,omitempty"`
}

// Get returns the payload stored under key. Expired and unreadable records
// are removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !rec.Expiry.IsZero() && time.Now().After(rec.Expiry) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return rec.Payload, true, nil
}

// Set stores data under key. A non-positive ttl stores without expiry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	rec := record{Payload: data}
	if ttl > 0 {
		rec.Expiry = time.Now().Add(ttl)
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o600)
}

// Delete removes the record under key. Missing keys are not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op; every operation opens and closes its own file.
func (c *FileCache) Close() error { return nil }

// path maps a key to a file, sharded by the first hash byte so a long-lived
// cache never piles every record into one directory.
func (c *FileCache) path(key string) string {
	sum := Hash([]byte(key))
	return filepath.Join(c.dir, sum[:2], sum[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
