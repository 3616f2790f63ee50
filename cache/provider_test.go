package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]Provider {
	t.Helper()
	sqlite, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	return map[string]Provider{
		"memory": NewMemCache(),
		"sqlite": sqlite,
	}
}

func TestPutGet(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put("/a", time.Now().Add(time.Minute), []byte("response-a")))

			bytes, ok, err := p.Get("/a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte("response-a"), bytes)
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := p.Get("/nope")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestGetExpired(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put("/a", time.Now().Add(-time.Second), []byte("stale")))

			_, ok, err := p.Get("/a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestPutReplaces(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put("/a", time.Now().Add(time.Minute), []byte("old")))
			require.NoError(t, p.Put("/a", time.Now().Add(time.Minute), []byte("new")))

			bytes, ok, err := p.Get("/a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte("new"), bytes)
		})
	}
}

func TestOldest(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			soon := time.Now().Add(time.Minute)
			later := time.Now().Add(time.Hour)
			require.NoError(t, p.Put("/later", later, []byte("b")))
			require.NoError(t, p.Put("/soon", soon, []byte("a")))

			key, expiry, err := p.Oldest()
			require.NoError(t, err)
			assert.Equal(t, "/soon", key)
			assert.WithinDuration(t, soon, expiry, time.Second)
		})
	}
}

func TestOldestEmpty(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			key, _, err := p.Oldest()
			require.NoError(t, err)
			assert.Empty(t, key)
		})
	}
}

func TestPurge(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put("/a", time.Now().Add(time.Minute), []byte("a")))
			p.Purge("/a")

			_, ok, err := p.Get("/a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}
