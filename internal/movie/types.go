package movie

import (
	"regexp"
	"strconv"
)

// DefaultReview is stored for every record until the user writes one.
const DefaultReview = "No review provided yet"

// Column limits. Values built from external data are clipped to these.
const (
	MaxTitleLen       = 250
	MaxDescriptionLen = 1000
	MaxReviewLen      = 500
	MaxImageURLLen    = 250
)

// Record is one persisted movie with the user's rating and review.
type Record struct {
	ID          int64   `json:"id" yaml:"-"`
	Title       string  `json:"title" yaml:"title"`
	Year        int     `json:"year" yaml:"year"`
	Description string  `json:"description" yaml:"description"`
	Rating      float64 `json:"rating" yaml:"rating"`
	Ranking     int     `json:"ranking" yaml:"ranking"`
	Review      string  `json:"review" yaml:"review"`
	ImageURL    string  `json:"img_url" yaml:"img_url"`
}

// Candidate is a search result from the metadata provider that has not been
// persisted yet.
type Candidate struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
	PosterPath    string `json:"poster_path"`
	Overview      string `json:"overview"`
}

// NewRecord builds the record stored when a candidate is selected. Only
// title, image URL, year and description come from the candidate; rating,
// ranking and review take their defaults.
func NewRecord(c Candidate, posterBase string) Record {
	return Record{
		Title:       clip(c.OriginalTitle, MaxTitleLen),
		Year:        ParseYear(c.ReleaseDate),
		Description: clip(c.Overview, MaxDescriptionLen),
		Rating:      0,
		Ranking:     0,
		Review:      DefaultReview,
		ImageURL:    clip(posterBase+c.PosterPath, MaxImageURLLen),
	}
}

var leadingYear = regexp.MustCompile(`^\s*(\d{4})`)

// ParseYear extracts the leading four-digit year from a release date such as
// "2021-09-15". It returns 0 when the value has no leading year.
func ParseYear(releaseDate string) int {
	m := leadingYear.FindStringSubmatch(releaseDate)
	if m == nil {
		return 0
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return year
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
