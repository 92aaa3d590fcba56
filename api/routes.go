package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinelist/handlers"
	"cinelist/utils"
)

// Handlers groups the HTTP handlers mounted by NewRouter. Static may be nil.
type Handlers struct {
	Auth            *handlers.AuthHandler
	Movies          *handlers.MoviesHandler
	Watchlist       *handlers.WatchlistHandler
	Recommendations *handlers.RecommendationsHandler
	Static          http.Handler
}

// RouterConfig carries the cross-cutting pieces of the router.
type RouterConfig struct {
	Origins *utils.OriginPolicy
	Health  utils.HealthCheck
	Tokens  TokenVerifier
	// AuthLimiter throttles register and login. Nil disables throttling.
	AuthLimiter *IPRateLimiter
	Logger      *slog.Logger
}

// NewRouter wires every route of the API.
func NewRouter(cfg RouterConfig, h Handlers) *mux.Router {
	r := utils.NewRouter(cfg.Origins, cfg.Health)
	r.Use(AccessLog(cfg.Logger))

	authRoutes := r.PathPrefix("/auth").Subrouter()
	register := http.Handler(http.HandlerFunc(h.Auth.Register))
	login := http.Handler(http.HandlerFunc(h.Auth.Login))
	if cfg.AuthLimiter != nil {
		register = RateLimit(cfg.AuthLimiter)(register)
		login = RateLimit(cfg.AuthLimiter)(login)
	}
	authRoutes.Handle("/register", register).Methods(http.MethodPost)
	authRoutes.Handle("/login", login).Methods(http.MethodPost)
	authRoutes.Handle("/me", RequireAuth(cfg.Tokens)(http.HandlerFunc(h.Auth.Me))).Methods(http.MethodGet)

	movies := r.PathPrefix("/api/movies").Subrouter()
	movies.HandleFunc("/search", h.Movies.Search).Methods(http.MethodGet)
	movies.HandleFunc("/recent", h.Movies.Recent).Methods(http.MethodGet)
	movies.HandleFunc("/details/{id}", h.Movies.Details).Methods(http.MethodGet)
	movies.HandleFunc("/series/{id}/season/{season:[0-9]+}", h.Movies.Season).Methods(http.MethodGet)
	movies.HandleFunc("/series/{id}/season/{season:[0-9]+}/episode/{episode:[0-9]+}", h.Movies.Episode).Methods(http.MethodGet)

	watchlist := r.PathPrefix("/api/watchlist").Subrouter()
	watchlist.Use(RequireAuth(cfg.Tokens))
	watchlist.HandleFunc("", h.Watchlist.List).Methods(http.MethodGet)
	watchlist.HandleFunc("", h.Watchlist.Add).Methods(http.MethodPost)
	watchlist.HandleFunc("/{id}/status", h.Watchlist.UpdateStatus).Methods(http.MethodPatch)
	watchlist.HandleFunc("/{id}", h.Watchlist.Remove).Methods(http.MethodDelete)

	recs := r.PathPrefix("/api/recommendations").Subrouter()
	recs.Use(RequireAuth(cfg.Tokens))
	recs.HandleFunc("", h.Recommendations.Generate).Methods(http.MethodGet)
	recs.HandleFunc("/saved", h.Recommendations.Saved).Methods(http.MethodGet)

	if h.Static != nil {
		r.PathPrefix("/").MatcherFunc(isAssetRequest).Handler(h.Static)
	}
	return r
}

// isAssetRequest matches reads outside the API namespaces. Anything else that
// no route claimed falls through to the JSON not-found handler.
func isAssetRequest(r *http.Request, _ *mux.RouteMatch) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	for _, prefix := range []string{"/api", "/auth"} {
		if r.URL.Path == prefix || strings.HasPrefix(r.URL.Path, prefix+"/") {
			return false
		}
	}
	return true
}
