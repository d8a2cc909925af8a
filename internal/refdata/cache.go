package refdata

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Entry is a cached payload and the time it was fetched.
type Entry struct {
	Body    []byte
	Fetched time.Time
}

// Cache stores reference payloads by URL. Expiry is decided by the Fetcher.
type Cache interface {
	Lookup(url string) (Entry, bool, error)
	Store(url string, e Entry) error
	Close() error
}

// MemoryCache lives for the lifetime of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]Entry{}}
}

func (c *MemoryCache) Lookup(url string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[url]
	return e, ok, nil
}

func (c *MemoryCache) Store(url string, e Entry) error {
	c.mu.Lock()
	c.entries[url] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error { return nil }

var boltBucket = []byte("refdata")

// BoltCache persists entries in a bbolt file so they survive restarts. Values
// are the fetch time in unix nanoseconds (8 bytes, big endian) followed by
// the payload.
type BoltCache struct {
	db *bolt.DB
}

func OpenBoltCache(path string) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "refdata: open bolt cache %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "refdata: create bucket")
	}
	return &BoltCache{db: db}, nil
}

func (c *BoltCache) Lookup(url string) (Entry, bool, error) {
	var (
		e  Entry
		ok bool
	)
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(url))
		if len(v) < 8 {
			return nil
		}
		e.Fetched = time.Unix(0, int64(binary.BigEndian.Uint64(v[:8])))
		e.Body = append([]byte(nil), v[8:]...)
		ok = true
		return nil
	})
	return e, ok, err
}

func (c *BoltCache) Store(url string, e Entry) error {
	v := make([]byte, 8+len(e.Body))
	binary.BigEndian.PutUint64(v[:8], uint64(e.Fetched.UnixNano()))
	copy(v[8:], e.Body)
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(url), v)
	})
}

func (c *BoltCache) Close() error { return c.db.Close() }
