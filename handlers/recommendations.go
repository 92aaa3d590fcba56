package handlers

import (
	"context"
	"net/http"

	"cinelist/internal/auth"
	"cinelist/models"
	"cinelist/services/recommendations"
)

type recommendationService interface {
	Generate(ctx context.Context, userID string) ([]models.MediaItem, error)
	Saved(ctx context.Context, userID string) ([]models.Recommendation, error)
}

var _ recommendationService = (*recommendations.Service)(nil)

type RecommendationsHandler struct {
	Service recommendationService
}

func NewRecommendationsHandler(service recommendationService) *RecommendationsHandler {
	return &RecommendationsHandler{Service: service}
}

func (h *RecommendationsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Generate(r.Context(), auth.GetUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": items})
}

func (h *RecommendationsHandler) Saved(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Service.Saved(r.Context(), auth.GetUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}
