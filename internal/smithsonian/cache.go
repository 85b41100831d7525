package smithsonian

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// PageCache stores raw search responses by request key.
type PageCache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, body []byte) error
}

var bucketPages = []byte("pages")

type cachedPage struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Body      json.RawMessage `json:"body"`
}

// BoltCache is a PageCache backed by a bbolt file.
type BoltCache struct {
	db     *bbolt.DB
	maxAge time.Duration
	now    func() time.Time
}

// OpenBoltCache opens or creates the cache at path. Entries older than
// maxAge are treated as missing; zero keeps entries forever.
func OpenBoltCache(path string, maxAge time.Duration) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open page cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init page cache: %w", err)
	}
	return &BoltCache{db: db, maxAge: maxAge, now: time.Now}, nil
}

func (c *BoltCache) Get(key string) ([]byte, bool, error) {
	var page cachedPage
	found := false
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPages).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &page)
	})
	if err != nil || !found {
		return nil, false, err
	}
	if c.maxAge > 0 && c.now().Sub(page.FetchedAt) > c.maxAge {
		return nil, false, nil
	}
	return page.Body, true, nil
}

func (c *BoltCache) Put(key string, body []byte) error {
	data, err := json.Marshal(cachedPage{FetchedAt: c.now().UTC(), Body: body})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPages).Put([]byte(key), data)
	})
}

// Len returns the number of cached responses.
func (c *BoltCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketPages).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear drops every cached response.
func (c *BoltCache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketPages); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketPages)
		return err
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
