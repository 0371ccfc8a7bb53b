// Package models defines the data structures used throughout the application.
package models

import (
	"math"
	"strings"
)

// MediaType represents the type of media content
type MediaType string

// Media type constants
const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// ParseMediaType converts a raw discriminator into a MediaType.
// It reports false for anything other than "movie" or "tv".
func ParseMediaType(raw string) (MediaType, bool) {
	switch MediaType(strings.ToLower(strings.TrimSpace(raw))) {
	case MediaTypeMovie:
		return MediaTypeMovie, true
	case MediaTypeTV:
		return MediaTypeTV, true
	default:
		return "", false
	}
}

// Valid reports whether t is one of the supported discriminators.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// MediaSummary is a single card in a home section or a search result grid
type MediaSummary struct {
	ID         int       `json:"id"`
	MediaType  MediaType `json:"media_type"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path"`
}

// HomeSection is a named, curated list shown on the home screen
type HomeSection struct {
	Title string         `json:"title"`
	Items []MediaSummary `json:"items"`
}

// CastMember represents an actor in the credits
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// CrewMember represents a crew member in the credits
type CrewMember struct {
	Job  string `json:"job"`
	Name string `json:"name"`
}

// Provider is a flat-rate streaming service offering the title in the configured region
type Provider struct {
	ID       int    `json:"provider_id"`
	Name     string `json:"provider_name"`
	LogoPath string `json:"logo_path,omitempty"`
}

// Trailer points at a playable trailer video
type Trailer struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

// Country is a production country
type Country struct {
	Code string `json:"iso_3166_1"`
	Name string `json:"name"`
}

// MovieFacts holds the fields only movies carry
type MovieFacts struct {
	Budget  int64 `json:"budget"`
	Revenue int64 `json:"revenue"`
}

// ShowFacts holds the fields only shows carry
type ShowFacts struct {
	NumberOfSeasons int             `json:"number_of_seasons"`
	CreatedBy       []string        `json:"created_by,omitempty"`
	Seasons         []SeasonSummary `json:"seasons"`
}

// SeasonSummary is the season stub embedded in a show's detail record
type SeasonSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
}

// MediaDetail is the full record shown on the details screen.
// Exactly one of Movie and Show is set, matching MediaType.
type MediaDetail struct {
	ID                  int          `json:"id"`
	MediaType           MediaType    `json:"media_type"`
	Title               string       `json:"title"`
	OriginalTitle       string       `json:"original_title"`
	Overview            string       `json:"overview"`
	PosterPath          string       `json:"poster_path,omitempty"`
	BackdropPath        string       `json:"backdrop_path,omitempty"`
	VoteAverage         float64      `json:"vote_average"`
	VoteCount           int          `json:"vote_count"`
	ReleaseDate         string       `json:"release_date,omitempty"`
	Genres              []string     `json:"genres"`
	Runtime             int          `json:"runtime,omitempty"` // in minutes
	Status              string       `json:"status,omitempty"`
	OriginalLanguage    string       `json:"original_language,omitempty"`
	Cast                []CastMember `json:"cast"`
	Crew                []CrewMember `json:"crew"`
	Providers           []Provider   `json:"providers"`
	ProviderLink        string       `json:"provider_link,omitempty"`
	Trailer             *Trailer     `json:"trailer,omitempty"`
	ProductionCompanies []string     `json:"production_companies"`
	ProductionCountries []Country    `json:"production_countries"`
	Movie               *MovieFacts  `json:"movie,omitempty"`
	Show                *ShowFacts   `json:"show,omitempty"`
}

// Year returns the four digit release (or first air) year, or "" if unknown.
func (d *MediaDetail) Year() string {
	if len(d.ReleaseDate) >= 4 {
		return d.ReleaseDate[:4]
	}
	return ""
}

// DirectorOrCreator returns the movie director or the first show creator.
func (d *MediaDetail) DirectorOrCreator() string {
	for _, c := range d.Crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	if d.Show != nil && len(d.Show.CreatedBy) > 0 {
		return d.Show.CreatedBy[0]
	}
	return ""
}

// ScorePercent converts the 0-10 vote average to a rounded percentage.
func (d *MediaDetail) ScorePercent() int {
	return int(math.Round(d.VoteAverage * 10))
}

// ScoreBand buckets the score for colouring: low, mid or high.
func (d *MediaDetail) ScoreBand() string {
	p := d.ScorePercent()
	switch {
	case p < 50:
		return "low"
	case p < 70:
		return "mid"
	default:
		return "high"
	}
}

// HasWatchNow reports whether a "watch now" affordance should be offered.
func (d *MediaDetail) HasWatchNow() bool {
	return len(d.Providers) > 0
}

// FetchableSeasons returns the season numbers worth fetching, skipping specials (season 0).
func (d *MediaDetail) FetchableSeasons() []int {
	if d.MediaType != MediaTypeTV || d.Show == nil {
		return nil
	}
	numbers := make([]int, 0, len(d.Show.Seasons))
	for _, s := range d.Show.Seasons {
		if s.SeasonNumber > 0 {
			numbers = append(numbers, s.SeasonNumber)
		}
	}
	return numbers
}

// SeasonDetail is one season's episode listing
type SeasonDetail struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// Episode represents a TV show episode
type Episode struct {
	ID            int    `json:"id"`
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview,omitempty"`
}
