package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinelist/internal/apperr"
	"cinelist/internal/database"
	"cinelist/models"
)

var (
	ErrUserIDRequired     = apperr.New(apperr.Validation, "user id is required")
	ErrExternalIDRequired = apperr.New(apperr.Validation, "externalId is required")
	ErrTitleRequired      = apperr.New(apperr.Validation, "title is required")
	ErrInvalidMediaType   = apperr.New(apperr.Validation, "type must be one of movie, series, episode")
	ErrInvalidStatus      = apperr.New(apperr.Validation, "status must be one of pending, watching, completed")
	ErrAlreadyExists      = apperr.New(apperr.Conflict, "item already in watchlist")
	ErrNotFound           = apperr.New(apperr.NotFound, "watchlist item not found")
)

// Store is the persistence the service needs.
type Store interface {
	Insert(ctx context.Context, entry *models.WatchlistEntry) error
	ListByUser(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
	UpdateStatus(ctx context.Context, userID, ref string, status models.WatchStatus, at time.Time) (*models.WatchlistEntry, error)
	Delete(ctx context.Context, userID, ref string) (bool, error)
}

// Service manages per-user watchlists.
type Service struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

// NewService creates a watchlist service backed by store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		log:   slog.Default().With("component", "watchlist"),
	}
}

// List returns the user's entries, most recently added first.
func (s *Service) List(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	entries, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	return entries, nil
}

// Add saves a title with status pending. A title can be saved once per user.
func (s *Service) Add(ctx context.Context, userID string, input models.WatchlistAdd) (*models.WatchlistEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	externalID := strings.TrimSpace(input.ExternalID)
	if externalID == "" {
		return nil, ErrExternalIDRequired
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	mediaType, ok := models.ParseMediaType(string(input.MediaType))
	if !ok || mediaType == "" {
		return nil, ErrInvalidMediaType
	}

	genres := make([]string, 0, len(input.Genres))
	for _, g := range input.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}

	now := s.now().UTC()
	entry := &models.WatchlistEntry{
		ID:         uuid.NewString(),
		ExternalID: externalID,
		Title:      title,
		MediaType:  mediaType,
		UserID:     userID,
		Status:     models.WatchStatusPending,
		PosterURL:  input.PosterURL,
		Year:       strings.TrimSpace(input.Year),
		Rating:     input.Rating,
		Genres:     genres,
		AddedAt:    now,
		UpdatedAt:  now,
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("add to watchlist: %w", err)
	}
	s.log.Debug("watchlist item added", "user", userID, "externalId", externalID)
	return entry, nil
}

// UpdateStatus changes the status of an entry. ref may be the entry ID or the
// title's externalId.
func (s *Service) UpdateStatus(ctx context.Context, userID, ref string, status models.WatchStatus) (*models.WatchlistEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	status = models.WatchStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	entry, err := s.store.UpdateStatus(ctx, userID, strings.TrimSpace(ref), status, s.now().UTC())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update watchlist status: %w", err)
	}
	return entry, nil
}

// Remove deletes an entry. ref may be the entry ID or the title's externalId.
func (s *Service) Remove(ctx context.Context, userID, ref string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	removed, err := s.store.Delete(ctx, userID, strings.TrimSpace(ref))
	if err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
