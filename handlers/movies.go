package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinelist/internal/apperr"
	"cinelist/models"
	"cinelist/services/metadata"
)

var (
	errInvalidType = apperr.New(apperr.Validation, "type must be one of movie, series, episode")
	errInvalidPage = apperr.New(apperr.Validation, "page must be a positive number")
)

type metadataService interface {
	Search(ctx context.Context, query string, mediaType models.MediaType, page int) (*models.SearchPage, error)
	Recent(ctx context.Context, year string, mediaType models.MediaType, page int) (*models.SearchPage, error)
	Details(ctx context.Context, id string, mediaType models.MediaType) (*models.MediaDetails, error)
	Season(ctx context.Context, id string, season int) (*models.Season, error)
	Episode(ctx context.Context, id string, season, episode int) (*models.Episode, error)
}

var _ metadataService = (*metadata.Service)(nil)

// MoviesHandler serves title search and lookup.
type MoviesHandler struct {
	Service metadataService
}

func NewMoviesHandler(service metadataService) *MoviesHandler {
	return &MoviesHandler{Service: service}
}

func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mediaType, page, ok := parseListParams(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Search(r.Context(), q.Get("query"), mediaType, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	mediaType, page, ok := parseListParams(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Recent(r.Context(), r.URL.Query().Get("year"), mediaType, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) Details(w http.ResponseWriter, r *http.Request) {
	mediaType, ok := models.ParseMediaType(r.URL.Query().Get("type"))
	if !ok {
		writeError(w, r, errInvalidType)
		return
	}

	details, err := h.Service.Details(r.Context(), mux.Vars(r)["id"], mediaType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *MoviesHandler) Season(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	season, err := strconv.Atoi(vars["season"])
	if err != nil {
		writeError(w, r, metadata.ErrInvalidSeason)
		return
	}

	result, err := h.Service.Season(r.Context(), vars["id"], season)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) Episode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	season, err := strconv.Atoi(vars["season"])
	if err != nil {
		writeError(w, r, metadata.ErrInvalidSeason)
		return
	}
	episode, err := strconv.Atoi(vars["episode"])
	if err != nil {
		writeError(w, r, metadata.ErrInvalidEpisode)
		return
	}

	result, err := h.Service.Episode(r.Context(), vars["id"], season, episode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseListParams reads the optional type and page query parameters.
func parseListParams(w http.ResponseWriter, r *http.Request) (models.MediaType, int, bool) {
	q := r.URL.Query()
	mediaType, ok := models.ParseMediaType(q.Get("type"))
	if !ok {
		writeError(w, r, errInvalidType)
		return "", 0, false
	}

	page := 1
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, errInvalidPage)
			return "", 0, false
		}
		page = n
	}
	return mediaType, page, true
}
