package metadata

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"cinelist/internal/apperr"
	"cinelist/models"
)

var (
	ErrQueryRequired   = apperr.New(apperr.Validation, "search query is required")
	ErrIDRequired      = apperr.New(apperr.Validation, "id is required")
	ErrInvalidSeason   = apperr.New(apperr.Validation, "season must be a positive number")
	ErrInvalidEpisode  = apperr.New(apperr.Validation, "episode must be a positive number")
	ErrInvalidYear     = apperr.New(apperr.Validation, "year must be a four digit number")
	ErrTitleNotFound   = apperr.New(apperr.NotFound, "title not found")
	ErrSeasonNotFound  = apperr.New(apperr.NotFound, "season not found")
	ErrEpisodeNotFound = apperr.New(apperr.NotFound, "episode not found")
)

const upstreamMessage = "metadata provider unavailable"

// Provider is the raw-payload API a Service normalizes.
type Provider interface {
	SearchByTitle(ctx context.Context, query string, mediaType models.MediaType, page int) (*SearchResponse, error)
	SearchByYear(ctx context.Context, year string, mediaType models.MediaType, page int) (*SearchResponse, error)
	GetDetailsByID(ctx context.Context, id string, mediaType models.MediaType) (*TitleResponse, error)
	GetSeasonDetails(ctx context.Context, id string, season int) (*SeasonResponse, error)
	GetEpisodeDetails(ctx context.Context, id string, season, episode int) (*TitleResponse, error)
}

// Service exposes normalized metadata and classifies provider failures.
type Service struct {
	provider Provider
	now      func() time.Time
	log      *slog.Logger
}

// NewService wraps a provider.
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
		now:      time.Now,
		log:      slog.Default().With("component", "metadata"),
	}
}

// Search finds titles by name. A provider "not found" is an empty page.
func (s *Service) Search(ctx context.Context, query string, mediaType models.MediaType, page int) (*models.SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	resp, err := s.provider.SearchByTitle(ctx, query, mediaType, page)
	if err != nil {
		if IsNotFound(err) {
			return FormatSearchPage(nil, page), nil
		}
		return nil, s.upstream("search", err)
	}
	return FormatSearchPage(resp, page), nil
}

// Recent lists titles released in year; an empty year means the current one.
func (s *Service) Recent(ctx context.Context, year string, mediaType models.MediaType, page int) (*models.SearchPage, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		year = strconv.Itoa(s.now().Year())
	}
	if n, err := strconv.Atoi(year); err != nil || len(year) != 4 || n < 1800 {
		return nil, ErrInvalidYear
	}
	if mediaType == "" {
		mediaType = models.MediaTypeMovie
	}
	resp, err := s.provider.SearchByYear(ctx, year, mediaType, page)
	if err != nil {
		if IsNotFound(err) {
			return FormatSearchPage(nil, page), nil
		}
		return nil, s.upstream("recent", err)
	}
	return FormatSearchPage(resp, page), nil
}

// Details returns the full record of a movie or series.
func (s *Service) Details(ctx context.Context, id string, mediaType models.MediaType) (*models.MediaDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrIDRequired
	}
	resp, err := s.provider.GetDetailsByID(ctx, id, mediaType)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrTitleNotFound
		}
		return nil, s.upstream("details", err)
	}
	details := FormatDetails(resp)
	if details == nil {
		return nil, ErrTitleNotFound
	}
	return details, nil
}

// Season lists the episodes of one season of a series.
func (s *Service) Season(ctx context.Context, id string, season int) (*models.Season, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrIDRequired
	}
	if season < 1 {
		return nil, ErrInvalidSeason
	}
	resp, err := s.provider.GetSeasonDetails(ctx, id, season)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrSeasonNotFound
		}
		return nil, s.upstream("season", err)
	}
	return FormatSeason(resp), nil
}

// Episode returns a single episode of a series.
func (s *Service) Episode(ctx context.Context, id string, season, episode int) (*models.Episode, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrIDRequired
	}
	if season < 1 {
		return nil, ErrInvalidSeason
	}
	if episode < 1 {
		return nil, ErrInvalidEpisode
	}
	resp, err := s.provider.GetEpisodeDetails(ctx, id, season, episode)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrEpisodeNotFound
		}
		return nil, s.upstream("episode", err)
	}
	ep := FormatEpisode(resp)
	if ep == nil {
		return nil, ErrEpisodeNotFound
	}
	return ep, nil
}

func (s *Service) upstream(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.log.Error("metadata provider call failed", "op", op, "error", err)
	return apperr.Wrap(apperr.Upstream, upstreamMessage, err)
}
