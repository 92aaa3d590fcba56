package models

import "strings"

// MediaType identifies the kind of title returned by the metadata provider.
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeSeries  MediaType = "series"
	MediaTypeEpisode MediaType = "episode"
)

// ParseMediaType normalizes user input. An empty string is accepted and means "any type".
func ParseMediaType(raw string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", true
	case "movie", "movies":
		return MediaTypeMovie, true
	case "series", "tv", "show":
		return MediaTypeSeries, true
	case "episode":
		return MediaTypeEpisode, true
	default:
		return "", false
	}
}

// MediaItem is the normalized shape of a provider title. Provider field names and
// the provider's "N/A" sentinel never appear here.
type MediaItem struct {
	ExternalID string    `json:"externalId"`
	Title      string    `json:"title"`
	MediaType  MediaType `json:"type"`
	Year       string    `json:"year"`
	PosterURL  *string   `json:"poster"`
	Rating     *string   `json:"rating"`
	Genres     []string  `json:"genres"`
}

// SourceRating is a rating reported by a third party (IMDb, Rotten Tomatoes, ...).
type SourceRating struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// MediaDetails is the full detail view of a movie or series.
type MediaDetails struct {
	MediaItem
	Rated        string         `json:"rated,omitempty"`
	Released     string         `json:"released,omitempty"`
	Runtime      string         `json:"runtime,omitempty"`
	Director     string         `json:"director,omitempty"`
	Writer       string         `json:"writer,omitempty"`
	Actors       []string       `json:"actors"`
	Plot         string         `json:"plot,omitempty"`
	Language     string         `json:"language,omitempty"`
	Country      string         `json:"country,omitempty"`
	Awards       string         `json:"awards,omitempty"`
	Ratings      []SourceRating `json:"ratings"`
	Metascore    *string        `json:"metascore"`
	IMDbVotes    *string        `json:"imdbVotes"`
	DVD          string         `json:"dvd,omitempty"`
	BoxOffice    string         `json:"boxOffice,omitempty"`
	Production   string         `json:"production,omitempty"`
	Website      string         `json:"website,omitempty"`
	TotalSeasons int            `json:"totalSeasons,omitempty"`
}

// SearchPage is one page of normalized search results.
type SearchPage struct {
	Page         int         `json:"page"`
	TotalResults int         `json:"total_results"`
	Results      []MediaItem `json:"results"`
}

// EpisodeSummary is an entry of a season listing.
type EpisodeSummary struct {
	ExternalID string  `json:"externalId"`
	Title      string  `json:"title"`
	Episode    int     `json:"episode"`
	Released   string  `json:"released,omitempty"`
	Rating     *string `json:"rating"`
}

// Season lists the episodes of one season of a series.
type Season struct {
	SeriesTitle  string           `json:"seriesTitle"`
	Season       int              `json:"season"`
	TotalSeasons int              `json:"totalSeasons"`
	Episodes     []EpisodeSummary `json:"episodes"`
}

// Episode is the detail view of a single episode.
type Episode struct {
	MediaDetails
	SeriesID string `json:"seriesId,omitempty"`
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
}
