package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinelist/config"
	"cinelist/internal/database"
)

func TestNewSecret(t *testing.T) {
	a, err := newSecret()
	require.NoError(t, err)
	b, err := newSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestBuildRouterServesHealthAndGuardsWatchlist(t *testing.T) {
	cfg, err := config.FromLookup(func(key string) (string, bool) {
		switch key {
		case "OMDB_API_KEY":
			return "test-key", true
		case "JWT_SECRET":
			return "test-secret", true
		case "OMDB_BASE_URL":
			return "http://127.0.0.1:1", true
		}
		return "", false
	})
	require.NoError(t, err)

	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "cinelist.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	router, closers, err := buildRouter(cfg, db)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, c := range closers {
			c.Close()
		}
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
