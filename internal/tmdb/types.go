package tmdb

import (
	"fmt"
	"strings"
	"time"
)

// MovieSummary is the movie shape returned by list endpoints.
type MovieSummary struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

// Year returns the release year or 0 when the date is missing or malformed.
func (m MovieSummary) Year() int {
	return releaseYear(m.ReleaseDate)
}

// SearchResponse models a paginated movie list.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []MovieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the /genre/movie/list payload.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Name returns the genre name for id.
func (g GenreList) Name(id int) (string, bool) {
	for _, genre := range g.Genres {
		if genre.ID == id {
			return genre.Name, true
		}
	}
	return "", false
}

// Video is a trailer, teaser, or clip attached to a movie.
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// EmbedURL returns the YouTube embed URL, or "" for other hosts.
func (v Video) EmbedURL() string {
	if !strings.EqualFold(v.Site, "YouTube") || v.Key == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + v.Key
}

// VideoList wraps appended videos.
type VideoList struct {
	Results []Video `json:"results"`
}

// CastMember is one billed performer.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewMember is one production credit.
type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

// Credits wraps appended cast and crew.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// TopCast returns at most n cast members in billing order.
func (c Credits) TopCast(n int) []CastMember {
	if n <= 0 {
		return nil
	}
	return c.Cast[:min(n, len(c.Cast))]
}

// Directors returns the distinct names credited with the Director job.
func (c Credits) Directors() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, member := range c.Crew {
		if member.Job != "Director" {
			continue
		}
		if _, dup := seen[member.Name]; dup {
			continue
		}
		seen[member.Name] = struct{}{}
		names = append(names, member.Name)
	}
	return names
}

// MovieDetails is the /movie/{id} payload with appended sub-resources.
type MovieDetails struct {
	ID              int64          `json:"id"`
	Title           string         `json:"title"`
	Overview        string         `json:"overview"`
	Tagline         string         `json:"tagline"`
	PosterPath      string         `json:"poster_path"`
	BackdropPath    string         `json:"backdrop_path"`
	ReleaseDate     string         `json:"release_date"`
	Runtime         int            `json:"runtime"`
	VoteAverage     float64        `json:"vote_average"`
	VoteCount       int64          `json:"vote_count"`
	Popularity      float64        `json:"popularity"`
	Genres          []Genre        `json:"genres"`
	Videos          VideoList      `json:"videos"`
	Credits         Credits        `json:"credits"`
	Similar         SearchResponse `json:"similar"`
	Recommendations SearchResponse `json:"recommendations"`
}

// Year returns the release year or 0 when the date is missing or malformed.
func (m MovieDetails) Year() int {
	return releaseYear(m.ReleaseDate)
}

// Summary projects the details onto the list shape.
func (m MovieDetails) Summary() MovieSummary {
	ids := make([]int, 0, len(m.Genres))
	for _, genre := range m.Genres {
		ids = append(ids, genre.ID)
	}
	return MovieSummary{
		ID:           m.ID,
		Title:        m.Title,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		ReleaseDate:  m.ReleaseDate,
		VoteAverage:  m.VoteAverage,
		VoteCount:    m.VoteCount,
		Popularity:   m.Popularity,
		GenreIDs:     ids,
	}
}

// FormatRuntime renders minutes as "2h 16m". Non-positive runtimes render as "".
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func releaseYear(date string) int {
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return 0
	}
	return parsed.Year()
}
