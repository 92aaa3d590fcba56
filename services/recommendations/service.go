package recommendations

//go:generate mockgen -destination=mocks/mock_deps.go -package=mocks cinelist/services/recommendations Searcher,WatchlistReader,Store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mozillazg/go-unidecode"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"golang.org/x/text/cases"

	"cinelist/internal/apperr"
	"cinelist/models"
)

const (
	// MaxResults caps the number of recommendations returned.
	MaxResults = 20
	// DefaultMaxWorkers bounds concurrent per-genre searches.
	DefaultMaxWorkers = 4

	sourceGenre = "genre"
)

var (
	ErrUserIDRequired  = apperr.New(apperr.Validation, "user id is required")
	ErrNoBasis         = apperr.New(apperr.NotFound, "no completed titles to base recommendations on")
	ErrAllGenresFailed = apperr.New(apperr.Upstream, "unable to fetch recommendations")
)

// Searcher runs a normalized title search.
type Searcher interface {
	Search(ctx context.Context, query string, mediaType models.MediaType, page int) (*models.SearchPage, error)
}

// WatchlistReader lists a user's watchlist.
type WatchlistReader interface {
	List(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
}

// Store persists the latest batch per user.
type Store interface {
	ReplaceForUser(ctx context.Context, userID string, recs []models.Recommendation) error
	ListByUser(ctx context.Context, userID string) ([]models.Recommendation, error)
}

// Service builds genre-based recommendations from a user's completed titles.
type Service struct {
	searcher   Searcher
	watchlist  WatchlistReader
	store      Store
	maxWorkers int
	now        func() time.Time
	log        *slog.Logger
}

// NewService creates a recommendation service.
func NewService(searcher Searcher, watchlist WatchlistReader) *Service {
	return &Service{
		searcher:   searcher,
		watchlist:  watchlist,
		maxWorkers: DefaultMaxWorkers,
		now:        time.Now,
		log:        slog.Default().With("component", "recommendations"),
	}
}

// SetStore enables persistence of generated batches.
func (s *Service) SetStore(store Store) {
	s.store = store
}

// SetMaxWorkers bounds the number of concurrent genre searches.
func (s *Service) SetMaxWorkers(n int) {
	if n > 0 {
		s.maxWorkers = n
	}
}

// Generate returns up to MaxResults titles sharing a genre with something the
// user completed, excluding anything already on the watchlist. A failing genre
// only removes its own contribution.
func (s *Service) Generate(ctx context.Context, userID string) ([]models.MediaItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	entries, err := s.watchlist.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	onList := make(map[string]struct{}, len(entries))
	var completed []models.WatchlistEntry
	for _, e := range entries {
		onList[e.ExternalID] = struct{}{}
		if e.Status == models.WatchStatusCompleted {
			completed = append(completed, e)
		}
	}
	if len(completed) == 0 {
		return nil, ErrNoBasis
	}

	genres := s.distinctGenres(completed)
	if len(genres) == 0 {
		return []models.MediaItem{}, nil
	}

	slots, errs := s.searchGenres(ctx, genres)
	if len(errs) == len(genres) {
		return nil, fmt.Errorf("%w: %w", ErrAllGenresFailed, multierr.Combine(errs...))
	}

	items := mergeSlots(slots, onList)
	s.persist(ctx, userID, items)
	return items, nil
}

// Saved returns the last persisted batch for the user.
func (s *Service) Saved(ctx context.Context, userID string) ([]models.Recommendation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if s.store == nil {
		return []models.Recommendation{}, nil
	}
	recs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load saved recommendations: %w", err)
	}
	return recs, nil
}

// distinctGenres returns genres in first-seen order. Genres compare equal when
// they match after transliteration and case folding.
func (s *Service) distinctGenres(entries []models.WatchlistEntry) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		for _, g := range e.Genres {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			key := fold.String(unidecode.Unidecode(g))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, g)
		}
	}
	return out
}

// searchGenres runs one search per genre on a bounded pool. Results land in
// slots indexed like genres so ordering does not depend on scheduling.
func (s *Service) searchGenres(ctx context.Context, genres []string) ([][]models.MediaItem, []error) {
	slots := make([][]models.MediaItem, len(genres))
	var (
		errs []error
		mu   sync.Mutex
	)

	p := pool.New().WithMaxGoroutines(s.maxWorkers)
	for i, genre := range genres {
		p.Go(func() {
			page, err := s.searcher.Search(ctx, genre, models.MediaTypeMovie, 1)
			if err != nil {
				s.log.Warn("genre search failed", "genre", genre, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("genre %q: %w", genre, err))
				mu.Unlock()
				return
			}
			if page != nil {
				slots[i] = page.Results
			}
		})
	}
	p.Wait()
	return slots, errs
}

func mergeSlots(slots [][]models.MediaItem, exclude map[string]struct{}) []models.MediaItem {
	out := make([]models.MediaItem, 0, MaxResults)
	seen := make(map[string]struct{})
	for _, slot := range slots {
		for _, item := range slot {
			if item.ExternalID == "" {
				continue
			}
			if _, ok := seen[item.ExternalID]; ok {
				continue
			}
			seen[item.ExternalID] = struct{}{}
			if _, ok := exclude[item.ExternalID]; ok {
				continue
			}
			out = append(out, item)
			if len(out) == MaxResults {
				return out
			}
		}
	}
	return out
}

func (s *Service) persist(ctx context.Context, userID string, items []models.MediaItem) {
	if s.store == nil {
		return
	}
	at := s.now().UTC()
	recs := make([]models.Recommendation, len(items))
	for i, item := range items {
		recs[i] = models.Recommendation{
			UserID:      userID,
			Item:        item,
			Position:    i,
			Score:       1 / float64(i+1),
			Source:      sourceGenre,
			GeneratedAt: at,
		}
	}
	if err := s.store.ReplaceForUser(ctx, userID, recs); err != nil {
		s.log.Error("failed to persist recommendations", "user", userID, "error", err)
	}
}
