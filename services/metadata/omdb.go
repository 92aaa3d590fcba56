package metadata

// Raw payloads returned by the OMDb-compatible provider. Field names follow the
// provider; nothing outside this package should depend on them.

// notAvailable is the provider's placeholder for missing values.
const notAvailable = "N/A"

// envelope carries the provider-level status present on every response.
type envelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// SearchItem is one entry of a search response.
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// SearchResponse is the payload of a title or year search.
type SearchResponse struct {
	Search       []*SearchItem `json:"Search"`
	TotalResults string        `json:"totalResults"`
	Response     string        `json:"Response"`
}

// Rating is a third-party rating attached to a title.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// TitleResponse is the payload of a lookup by ID. Episodes carry the
// SeriesID/Season/Episode fields; series carry TotalSeasons.
type TitleResponse struct {
	Title        string   `json:"Title"`
	Year         string   `json:"Year"`
	Rated        string   `json:"Rated"`
	Released     string   `json:"Released"`
	Runtime      string   `json:"Runtime"`
	Genre        string   `json:"Genre"`
	Director     string   `json:"Director"`
	Writer       string   `json:"Writer"`
	Actors       string   `json:"Actors"`
	Plot         string   `json:"Plot"`
	Language     string   `json:"Language"`
	Country      string   `json:"Country"`
	Awards       string   `json:"Awards"`
	Poster       string   `json:"Poster"`
	Ratings      []Rating `json:"Ratings"`
	Metascore    string   `json:"Metascore"`
	IMDbRating   string   `json:"imdbRating"`
	IMDbVotes    string   `json:"imdbVotes"`
	IMDbID       string   `json:"imdbID"`
	Type         string   `json:"Type"`
	DVD          string   `json:"DVD"`
	BoxOffice    string   `json:"BoxOffice"`
	Production   string   `json:"Production"`
	Website      string   `json:"Website"`
	TotalSeasons string   `json:"totalSeasons"`
	SeriesID     string   `json:"seriesID"`
	Season       string   `json:"Season"`
	Episode      string   `json:"Episode"`
	Response     string   `json:"Response"`
}

// SeasonEpisode is one row of a season listing.
type SeasonEpisode struct {
	Title      string `json:"Title"`
	Released   string `json:"Released"`
	Episode    string `json:"Episode"`
	IMDbRating string `json:"imdbRating"`
	IMDbID     string `json:"imdbID"`
}

// SeasonResponse is the payload of a season lookup.
type SeasonResponse struct {
	Title        string           `json:"Title"`
	Season       string           `json:"Season"`
	TotalSeasons string           `json:"totalSeasons"`
	Episodes     []*SeasonEpisode `json:"Episodes"`
	Response     string           `json:"Response"`
}
