package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cinelist/internal/database"
	"cinelist/models"
)

func seedBackfillDB(t *testing.T, path string) {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: path})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{ID: "u1", Username: "alice", PasswordHash: "x", CreatedAt: at}
	if err := database.NewUserRepository(db.Connection()).CreateUser(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	repo := database.NewWatchlistRepository(db.Connection())
	for _, e := range []models.WatchlistEntry{
		{ID: "e1", UserID: "u1", ExternalID: "tt1", Title: "Bare", MediaType: models.MediaTypeMovie, Status: models.WatchStatusCompleted, AddedAt: at, UpdatedAt: at},
		{ID: "e2", UserID: "u1", ExternalID: "tt2", Title: "Tagged", MediaType: models.MediaTypeMovie, Status: models.WatchStatusPending, Genres: []string{"Drama"}, AddedAt: at, UpdatedAt: at},
	} {
		e := e
		if err := repo.Insert(ctx, &e); err != nil {
			t.Fatalf("seed entry %s: %v", e.ID, err)
		}
	}
}

func TestRunFillsMissingGenres(t *testing.T) {
	var (
		mu      sync.Mutex
		lookups []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("i")
		mu.Lock()
		lookups = append(lookups, id)
		mu.Unlock()
		fmt.Fprintf(w, `{"Title":"Bare","imdbID":%q,"Type":"movie","Genre":"Horror, Thriller","Response":"True"}`, id)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cinelist.db")
	seedBackfillDB(t, path)

	t.Setenv("OMDB_API_KEY", "test-key")
	t.Setenv("OMDB_BASE_URL", srv.URL)
	t.Setenv("DATABASE_PATH", path)
	t.Setenv("OMDB_REQUESTS_PER_SECOND", "100")

	if err := run(0, false); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(lookups) != 1 || lookups[0] != "tt1" {
		t.Fatalf("expected a single lookup of tt1, got %v", lookups)
	}

	db, err := database.NewDB(database.Config{DatabasePath: path})
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer db.Close()
	entry, err := database.NewWatchlistRepository(db.Connection()).Find(context.Background(), "u1", "e1")
	if err != nil {
		t.Fatalf("find entry: %v", err)
	}
	if len(entry.Genres) != 2 || entry.Genres[0] != "Horror" || entry.Genres[1] != "Thriller" {
		t.Fatalf("unexpected genres %v", entry.Genres)
	}
}

func TestRunDryRunLeavesEntriesUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Title":"Bare","imdbID":"tt1","Type":"movie","Genre":"Horror","Response":"True"}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cinelist.db")
	seedBackfillDB(t, path)

	t.Setenv("OMDB_API_KEY", "test-key")
	t.Setenv("OMDB_BASE_URL", srv.URL)
	t.Setenv("DATABASE_PATH", path)

	if err := run(0, true); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	db, err := database.NewDB(database.Config{DatabasePath: path})
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer db.Close()
	missing, err := database.NewWatchlistRepository(db.Connection()).ListMissingGenres(context.Background(), 0)
	if err != nil || len(missing) != 1 {
		t.Fatalf("dry run should not write, got %d entries without genres (%v)", len(missing), err)
	}
}

func TestRunRequiresProviderKey(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "cinelist.db"))

	if err := run(0, false); err == nil {
		t.Fatal("expected missing OMDB_API_KEY to fail")
	}
}
