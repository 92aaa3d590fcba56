package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cinelist/handlers"
	"cinelist/internal/auth"
	"cinelist/internal/database"
	"cinelist/services/accounts"
	"cinelist/services/metadata"
	"cinelist/services/recommendations"
	"cinelist/services/watchlist"
	"cinelist/utils"
)

// fakeOMDb answers searches with two titles per query and lookups by ID.
func fakeOMDb(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("s") != "":
			fmt.Fprintf(w, `{"Search":[{"Title":"%[1]s One","Year":"2001","imdbID":"tt-%[1]s-1","Type":"movie","Poster":"N/A"},{"Title":"%[1]s Two","Year":"2002","imdbID":"tt001","Type":"movie","Poster":"N/A"}],"totalResults":"2","Response":"True"}`, q.Get("s"))
		case q.Get("i") == "tt404":
			fmt.Fprint(w, `{"Response":"False","Error":"Incorrect IMDb ID."}`)
		case q.Get("i") != "":
			fmt.Fprintf(w, `{"Title":"Title %[1]s","Year":"1999","Genre":"Drama, Crime","imdbID":"%[1]s","Type":"movie","Poster":"N/A","imdbRating":"8.1","Response":"True"}`, q.Get("i"))
		default:
			fmt.Fprint(w, `{"Response":"False","Error":"Something went wrong."}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	accountsSvc := accounts.NewService(database.NewUserRepository(db.Connection()))
	accountsSvc.SetHashCost(bcrypt.MinCost)
	watchlistSvc := watchlist.NewService(database.NewWatchlistRepository(db.Connection()))
	metadataSvc := metadata.NewService(metadata.NewClient(metadata.Config{BaseURL: fakeOMDb(t).URL, APIKey: "k", RetryAttempts: 0}))
	recsSvc := recommendations.NewService(metadataSvc, watchlistSvc)
	recsSvc.SetStore(database.NewRecommendationRepository(db.Connection()))

	static, err := handlers.NewStaticHandler("")
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Origins: utils.NewOriginPolicy(nil),
		Health:  db.Ping,
		Tokens:  issuer,
	}, Handlers{
		Auth:            handlers.NewAuthHandler(accountsSvc, issuer),
		Movies:          handlers.NewMoviesHandler(metadataSvc),
		Watchlist:       handlers.NewWatchlistHandler(watchlistSvc),
		Recommendations: handlers.NewRecommendationsHandler(recsSvc),
		Static:          static,
	})
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}

func TestWatchlistLifecycle(t *testing.T) {
	c := &client{t: t, h: newTestServer(t)}
	creds := map[string]string{"username": "alice", "password": "password123"}

	rec := c.do(http.MethodPost, "/auth/register", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/auth/login", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeInto(t, rec, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "alice", login.User.Username)
	c.token = login.Token

	rec = c.do(http.MethodGet, "/api/watchlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/watchlist", map[string]any{"externalId": "tt001", "title": "X", "type": "movie", "genres": []string{"Drama"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeInto(t, rec, &entry)
	assert.Equal(t, "pending", entry.Status)

	rec = c.do(http.MethodPost, "/api/watchlist", map[string]any{"externalId": "tt001", "title": "X", "type": "movie"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPatch, "/api/watchlist/"+entry.ID+"/status", map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeInto(t, rec, &entry)
	assert.Equal(t, "completed", entry.Status)

	rec = c.do(http.MethodGet, "/api/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var recs struct {
		Recommendations []struct {
			ExternalID string `json:"externalId"`
		} `json:"recommendations"`
	}
	decodeInto(t, rec, &recs)
	require.Len(t, recs.Recommendations, 1, "tt001 is on the watchlist and must be excluded")
	assert.Equal(t, "tt-Drama-1", recs.Recommendations[0].ExternalID)

	rec = c.do(http.MethodGet, "/api/recommendations/saved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tt-Drama-1")

	rec = c.do(http.MethodDelete, "/api/watchlist/"+entry.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodDelete, "/api/watchlist/"+entry.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodGet, "/api/watchlist", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/recommendations", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := &client{t: t, h: newTestServer(t)}

	rec := c.do(http.MethodGet, "/api/watchlist", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied. No token provided."}`, rec.Body.String())

	c.token = "garbage"
	rec = c.do(http.MethodGet, "/api/watchlist", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied. Invalid token."}`, rec.Body.String())
}

func TestExpiredTokenIsRejected(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("s", time.Minute)
	require.NoError(t, err)
	issuer.SetClock(func() time.Time { return time.Now().Add(-time.Hour) })
	token, _, err := issuer.Issue("u1", "alice")
	require.NoError(t, err)
	issuer.SetClock(time.Now)

	handler := RequireAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestMovieRoutes(t *testing.T) {
	c := &client{t: t, h: newTestServer(t)}

	rec := c.do(http.MethodGet, "/api/movies/search?query=heat&page=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page struct {
		Page         int `json:"page"`
		TotalResults int `json:"total_results"`
		Results      []struct {
			Poster *string `json:"poster"`
		} `json:"results"`
	}
	decodeInto(t, rec, &page)
	assert.Equal(t, 2, page.TotalResults)
	require.Len(t, page.Results, 2)
	assert.Nil(t, page.Results[0].Poster)

	rec = c.do(http.MethodGet, "/api/movies/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/movies/details/tt0113277", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"genres":["Drama","Crime"]`)

	rec = c.do(http.MethodGet, "/api/movies/details/tt404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndDashboard(t *testing.T) {
	c := &client{t: t, h: newTestServer(t)}

	rec := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>cinelist</title>")
}

func TestUnknownRoutesReturnJSONNotFound(t *testing.T) {
	c := &client{t: t, h: newTestServer(t)}

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/nope"},
		{http.MethodGet, "/api/nope"},
		{http.MethodGet, "/api/movies/unknown"},
		{http.MethodGet, "/auth"},
		{http.MethodDelete, "/index.html"},
	} {
		rec := c.do(tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String(), "%s %s", tc.method, tc.path)
	}

	rec := c.do(http.MethodPost, "/api/movies/search", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = c.do(http.MethodGet, "/app.js", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
