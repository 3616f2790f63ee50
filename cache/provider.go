// Package cache stores serialized HTTP responses keyed by request URL,
// together with an expiration time derived from the token that authorized
// the response.
package cache

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/glebarez/go-sqlite"
)

// Provider is a store for cached responses.
// It stores and retrieves []byte values, which represent HTTP responses,
// and keeps track of expiration times of cache entries.
//
// Implementations must be thread-safe.
type Provider interface {
	// Get returns the cached response for the given key, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	// If the cache entry has expired, the boolean is false.
	Get(key string) ([]byte, bool, error)
	// Put stores the given response in the cache under the given key,
	// expiring at the given time.
	Put(key string, expires time.Time, bytes []byte) error
	// Oldest returns the key and expiration time of the entry with the
	// earliest expiration time, or an empty key if the cache is empty.
	Oldest() (string, time.Time, error)
	// Purge removes the cache entry for the given key.
	Purge(key string)
}

type memEntry struct {
	expires time.Time
	bytes   []byte
}

// MemCache is an in-memory Provider, used for tests and for running
// without a cache file.
type MemCache struct {
	mutex *sync.RWMutex
	db    map[string]memEntry
}

func NewMemCache() MemCache {
	return MemCache{
		mutex: &sync.RWMutex{},
		db:    make(map[string]memEntry),
	}
}

func (m MemCache) Get(key string) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	entry, ok := m.db[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expires) {
		return nil, false, nil
	}
	return entry.bytes, true, nil
}

func (m MemCache) Put(key string, expires time.Time, bytes []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.db[key] = memEntry{expires, bytes}
	return nil
}

func (m MemCache) Oldest() (string, time.Time, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range m.db {
		if oldestKey == "" || entry.expires.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.expires
		}
	}
	return oldestKey, oldestTime, nil
}

func (m MemCache) Purge(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.db, key)
}

// SQLiteCache is a Provider backed by a SQLite database file,
// so cached responses survive restarts.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(filename string) (SQLiteCache, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteCache{}, err
	}
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS cache (key TEXT PRIMARY KEY, expires INTEGER, bytes BLOB)"); err != nil {
		return SQLiteCache{}, err
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS expires_idx ON cache (expires)"); err != nil {
		return SQLiteCache{}, err
	}
	return SQLiteCache{db: db}, nil
}

func (s SQLiteCache) Get(key string) ([]byte, bool, error) {
	var expires int64
	var bytes []byte
	err := s.db.QueryRow("SELECT expires, bytes FROM cache WHERE key = ?", key).Scan(&expires, &bytes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Now().After(time.Unix(expires, 0)) {
		return nil, false, nil
	}
	return bytes, true, nil
}

func (s SQLiteCache) Put(key string, expires time.Time, bytes []byte) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO cache (key, expires, bytes) VALUES (?, ?, ?)", key, expires.Unix(), bytes)
	return err
}

func (s SQLiteCache) Oldest() (string, time.Time, error) {
	var key string
	var expires int64
	err := s.db.QueryRow("SELECT key, expires FROM cache ORDER BY expires ASC LIMIT 1").Scan(&key, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return key, time.Unix(expires, 0), nil
}

func (s SQLiteCache) Purge(key string) {
	if _, err := s.db.Exec("DELETE FROM cache WHERE key = ?", key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Could not purge cache entry")
	}
}

// Janitor runs an infinite loop purging expired entries, one at a time.
// Entries become unreachable through Get as soon as they expire; the
// janitor only reclaims the storage. It queries the provider for the entry
// with the earliest expiry, purges it if it has passed, and otherwise
// sleeps for the given interval.
func Janitor(p Provider, interval time.Duration) {
	log.Info().Msgf("Starting cache janitor with interval %s", interval)
	for {
		key, expiry, err := p.Oldest()
		if err != nil {
			log.Error().Err(err).Msg("Could not get oldest entry")
			time.Sleep(interval)
			continue
		}
		if key != "" && time.Now().After(expiry) {
			log.Trace().Str("key", key).Time("expiry", expiry).Msg("Purging expired entry")
			p.Purge(key)
		} else {
			time.Sleep(interval)
		}
	}
}
