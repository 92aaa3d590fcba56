package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"cinelist/internal/auth"
	"cinelist/models"
	"cinelist/services/watchlist"
)

type watchlistService interface {
	List(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
	Add(ctx context.Context, userID string, input models.WatchlistAdd) (*models.WatchlistEntry, error)
	UpdateStatus(ctx context.Context, userID, ref string, status models.WatchStatus) (*models.WatchlistEntry, error)
	Remove(ctx context.Context, userID, ref string) error
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service watchlistService
}

func NewWatchlistHandler(service watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), auth.GetUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body models.WatchlistAdd
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Service.Add(r.Context(), auth.GetUserID(r), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *WatchlistHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.WatchStatus `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Service.UpdateStatus(r.Context(), auth.GetUserID(r), mux.Vars(r)["id"], body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Remove(r.Context(), auth.GetUserID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Removed from watchlist")
}
