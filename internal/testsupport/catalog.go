package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FixtureMovie is one title served by CatalogServer.
type FixtureMovie struct {
	ID          int64
	Title       string
	ReleaseDate string
	Runtime     int
	VoteAverage float64
	Popularity  float64
	GenreIDs    []int
	Overview    string
	Director    string
	Cast        []string
	TrailerKeys []string
}

// FixtureGenres is the genre list served by CatalogServer.
var FixtureGenres = map[int]string{
	28:  "Action",
	12:  "Adventure",
	18:  "Drama",
	878: "Science Fiction",
}

// FixtureMovies is the default catalog.
var FixtureMovies = []FixtureMovie{
	{
		ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", Runtime: 136,
		VoteAverage: 8.2, Popularity: 90.5, GenreIDs: []int{28, 878},
		Overview: "A hacker learns the nature of his reality.", Director: "Lana Wachowski",
		Cast:        []string{"Keanu Reeves", "Laurence Fishburne", "Carrie-Anne Moss"},
		TrailerKeys: []string{"vKQi3bBA1y8", "m8e-FF8MsqU", "d0XL8yNTn9I", "OM0tSTEQCQA"},
	},
	{
		ID: 604, Title: "The Matrix Reloaded", ReleaseDate: "2003-05-15", Runtime: 138,
		VoteAverage: 7.0, Popularity: 60.1, GenreIDs: []int{28, 878},
		Director: "Lana Wachowski", Cast: []string{"Keanu Reeves"},
	},
	{
		ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", Runtime: 148,
		VoteAverage: 8.4, Popularity: 120.3, GenreIDs: []int{28, 878, 12},
		Director: "Christopher Nolan", Cast: []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt"},
	},
	{
		ID: 157336, Title: "Interstellar", ReleaseDate: "2014-11-05", Runtime: 169,
		VoteAverage: 8.4, Popularity: 140.7, GenreIDs: []int{12, 18, 878},
		Director: "Christopher Nolan", Cast: []string{"Matthew McConaughey", "Anne Hathaway"},
	},
}

// CatalogServer is a fake TMDB API backed by fixtures that counts hits per path.
type CatalogServer struct {
	*httptest.Server
	APIKey string

	mu       sync.Mutex
	movies   map[int64]FixtureMovie
	hits     map[string]int
	failures map[string]int
	queries  map[string]url.Values
}

// NewCatalogServer starts a fake catalog serving FixtureMovies and registers cleanup.
func NewCatalogServer(t testing.TB) *CatalogServer {
	t.Helper()
	cs := &CatalogServer{
		APIKey:   TestAPIKey,
		movies:   make(map[int64]FixtureMovie, len(FixtureMovies)),
		hits:     make(map[string]int),
		failures: make(map[string]int),
		queries:  make(map[string]url.Values),
	}
	for _, movie := range FixtureMovies {
		cs.movies[movie.ID] = movie
	}
	cs.Server = httptest.NewServer(http.HandlerFunc(cs.serve))
	t.Cleanup(cs.Close)
	return cs
}

// Hits returns how many requests reached path.
func (cs *CatalogServer) Hits(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.hits[path]
}

// TotalHits returns the number of requests served.
func (cs *CatalogServer) TotalHits() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	total := 0
	for _, n := range cs.hits {
		total += n
	}
	return total
}

// LastQuery returns the query parameters of the latest request to path.
func (cs *CatalogServer) LastQuery(path string) url.Values {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.queries[path]
}

// FailPath makes requests to path answer with status until cleared with status 0.
func (cs *CatalogServer) FailPath(path string, status int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if status == 0 {
		delete(cs.failures, path)
		return
	}
	cs.failures[path] = status
}

// AddMovie registers an additional fixture.
func (cs *CatalogServer) AddMovie(movie FixtureMovie) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.movies[movie.ID] = movie
}

func (cs *CatalogServer) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	query := r.URL.Query()

	cs.mu.Lock()
	cs.hits[path]++
	cs.queries[path] = query
	status, failing := cs.failures[path]
	cs.mu.Unlock()

	if query.Get("api_key") != cs.APIKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status_code": 7, "status_message": "Invalid API key"})
		return
	}
	if failing {
		writeJSON(w, status, map[string]any{"status_message": http.StatusText(status)})
		return
	}

	switch {
	case path == "/search/movie":
		needle := strings.ToLower(strings.TrimSpace(query.Get("query")))
		var matches []FixtureMovie
		if needle != "" {
			for _, movie := range cs.sortedMovies() {
				if strings.Contains(strings.ToLower(movie.Title), needle) {
					matches = append(matches, movie)
				}
			}
		}
		writeJSON(w, http.StatusOK, page(matches, query.Get("page")))
	case path == "/movie/popular":
		writeJSON(w, http.StatusOK, page(cs.sortedMovies(), query.Get("page")))
	case path == "/genre/movie/list":
		ids := make([]int, 0, len(FixtureGenres))
		for id := range FixtureGenres {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		genres := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			genres = append(genres, map[string]any{"id": id, "name": FixtureGenres[id]})
		}
		writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
	case strings.HasPrefix(path, "/movie/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(path, "/movie/"), 10, 64)
		cs.mu.Lock()
		movie, ok := cs.movies[id]
		cs.mu.Unlock()
		if err != nil || !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"status_code": 34, "status_message": "The resource you requested could not be found."})
			return
		}
		writeJSON(w, http.StatusOK, cs.details(movie))
	default:
		http.NotFound(w, r)
	}
}

// sortedMovies returns fixtures by popularity, highest first.
func (cs *CatalogServer) sortedMovies() []FixtureMovie {
	cs.mu.Lock()
	movies := make([]FixtureMovie, 0, len(cs.movies))
	for _, movie := range cs.movies {
		movies = append(movies, movie)
	}
	cs.mu.Unlock()
	slices.SortFunc(movies, func(a, b FixtureMovie) int {
		switch {
		case a.Popularity > b.Popularity:
			return -1
		case a.Popularity < b.Popularity:
			return 1
		default:
			return int(a.ID - b.ID)
		}
	})
	return movies
}

func (cs *CatalogServer) details(movie FixtureMovie) map[string]any {
	genres := make([]map[string]any, 0, len(movie.GenreIDs))
	for _, id := range movie.GenreIDs {
		genres = append(genres, map[string]any{"id": id, "name": FixtureGenres[id]})
	}
	videos := make([]map[string]any, 0, len(movie.TrailerKeys))
	for i, key := range movie.TrailerKeys {
		videos = append(videos, map[string]any{
			"id": "v" + strconv.Itoa(i), "key": key, "name": "Trailer " + strconv.Itoa(i+1),
			"site": "YouTube", "type": "Trailer",
		})
	}
	cast := make([]map[string]any, 0, len(movie.Cast))
	for i, name := range movie.Cast {
		cast = append(cast, map[string]any{"id": i + 1, "name": name, "character": "Role " + strconv.Itoa(i+1), "order": i})
	}
	var crew []map[string]any
	if movie.Director != "" {
		crew = append(crew, map[string]any{"id": 900, "name": movie.Director, "job": "Director", "department": "Directing"})
	}
	var similar []FixtureMovie
	for _, other := range cs.sortedMovies() {
		if other.ID != movie.ID {
			similar = append(similar, other)
		}
	}
	body := summary(movie)
	body["runtime"] = movie.Runtime
	body["tagline"] = ""
	body["vote_count"] = 1000
	body["genres"] = genres
	body["videos"] = map[string]any{"results": videos}
	body["credits"] = map[string]any{"cast": cast, "crew": crew}
	body["similar"] = page(similar, "1")
	body["recommendations"] = page(similar, "1")
	return body
}

func summary(movie FixtureMovie) map[string]any {
	return map[string]any{
		"id":            movie.ID,
		"title":         movie.Title,
		"overview":      movie.Overview,
		"release_date":  movie.ReleaseDate,
		"vote_average":  movie.VoteAverage,
		"popularity":    movie.Popularity,
		"genre_ids":     movie.GenreIDs,
		"poster_path":   "/" + strconv.FormatInt(movie.ID, 10) + ".jpg",
		"backdrop_path": "",
	}
}

func page(movies []FixtureMovie, rawPage string) map[string]any {
	pageNum, err := strconv.Atoi(rawPage)
	if err != nil || pageNum < 1 {
		pageNum = 1
	}
	results := make([]map[string]any, 0, len(movies))
	for _, movie := range movies {
		results = append(results, summary(movie))
	}
	totalPages := 0
	if len(movies) > 0 {
		totalPages = 1
	}
	return map[string]any{
		"page":          pageNum,
		"results":       results,
		"total_pages":   totalPages,
		"total_results": len(movies),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
