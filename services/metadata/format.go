package metadata

import (
	"strconv"
	"strings"

	"cinelist/models"
)

// FormatSearchResult normalizes a search item. Items without an ID or title
// yield nil so callers can drop them.
func FormatSearchResult(item *SearchItem) *models.MediaItem {
	if item == nil {
		return nil
	}
	id := clean(item.IMDbID)
	title := clean(item.Title)
	if id == "" || title == "" {
		return nil
	}
	return &models.MediaItem{
		ExternalID: id,
		Title:      title,
		MediaType:  normalizeType(item.Type),
		Year:       clean(item.Year),
		PosterURL:  optional(item.Poster),
		Genres:     []string{},
	}
}

// FormatSearchPage normalizes a search response, dropping unusable items.
func FormatSearchPage(resp *SearchResponse, page int) *models.SearchPage {
	out := &models.SearchPage{Page: normalizePage(page), Results: []models.MediaItem{}}
	if resp == nil {
		return out
	}
	out.TotalResults = atoi(resp.TotalResults)
	for _, raw := range resp.Search {
		if item := FormatSearchResult(raw); item != nil {
			out.Results = append(out.Results, *item)
		}
	}
	return out
}

// FormatDetails normalizes a movie or series record.
func FormatDetails(t *TitleResponse) *models.MediaDetails {
	if t == nil {
		return nil
	}
	id := clean(t.IMDbID)
	title := clean(t.Title)
	if id == "" || title == "" {
		return nil
	}

	ratings := make([]models.SourceRating, 0, len(t.Ratings))
	for _, r := range t.Ratings {
		if clean(r.Source) == "" || clean(r.Value) == "" {
			continue
		}
		ratings = append(ratings, models.SourceRating{Source: r.Source, Value: r.Value})
	}

	return &models.MediaDetails{
		MediaItem: models.MediaItem{
			ExternalID: id,
			Title:      title,
			MediaType:  normalizeType(t.Type),
			Year:       clean(t.Year),
			PosterURL:  optional(t.Poster),
			Rating:     optional(t.IMDbRating),
			Genres:     splitList(t.Genre),
		},
		Rated:        clean(t.Rated),
		Released:     clean(t.Released),
		Runtime:      clean(t.Runtime),
		Director:     clean(t.Director),
		Writer:       clean(t.Writer),
		Actors:       splitList(t.Actors),
		Plot:         clean(t.Plot),
		Language:     clean(t.Language),
		Country:      clean(t.Country),
		Awards:       clean(t.Awards),
		Ratings:      ratings,
		Metascore:    optional(t.Metascore),
		IMDbVotes:    optional(t.IMDbVotes),
		DVD:          clean(t.DVD),
		BoxOffice:    clean(t.BoxOffice),
		Production:   clean(t.Production),
		Website:      clean(t.Website),
		TotalSeasons: atoi(t.TotalSeasons),
	}
}

// FormatSeason normalizes a season listing. Episodes without an ID are dropped.
func FormatSeason(s *SeasonResponse) *models.Season {
	if s == nil {
		return nil
	}
	out := &models.Season{
		SeriesTitle:  clean(s.Title),
		Season:       atoi(s.Season),
		TotalSeasons: atoi(s.TotalSeasons),
		Episodes:     []models.EpisodeSummary{},
	}
	for _, ep := range s.Episodes {
		if ep == nil || clean(ep.IMDbID) == "" {
			continue
		}
		out.Episodes = append(out.Episodes, models.EpisodeSummary{
			ExternalID: clean(ep.IMDbID),
			Title:      clean(ep.Title),
			Episode:    atoi(ep.Episode),
			Released:   clean(ep.Released),
			Rating:     optional(ep.IMDbRating),
		})
	}
	return out
}

// FormatEpisode normalizes a single episode record.
func FormatEpisode(t *TitleResponse) *models.Episode {
	details := FormatDetails(t)
	if details == nil {
		return nil
	}
	details.MediaType = models.MediaTypeEpisode
	return &models.Episode{
		MediaDetails: *details,
		SeriesID:     clean(t.SeriesID),
		Season:       atoi(t.Season),
		Episode:      atoi(t.Episode),
	}
}

// clean trims s and maps the provider placeholder to the empty string.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, notAvailable) {
		return ""
	}
	return s
}

func optional(s string) *string {
	s = clean(s)
	if s == "" {
		return nil
	}
	return &s
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(clean(s), ",") {
		if part = clean(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(clean(s), ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func normalizeType(raw string) models.MediaType {
	if t, ok := models.ParseMediaType(raw); ok {
		return t
	}
	return models.MediaType(strings.ToLower(clean(raw)))
}
