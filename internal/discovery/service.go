package discovery

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"reelist/internal/logging"
	"reelist/internal/tmdb"
	"reelist/internal/userdata"
)

// Section sizes for the detail view.
const (
	DetailCastLimit    = 10
	DetailVideoLimit   = 3
	DetailSimilarLimit = 6
)

// watchlistFetchLimit bounds concurrent detail requests while resolving the watchlist.
const watchlistFetchLimit = 4

// UserData is the slice of the user data store the views read and mutate.
type UserData interface {
	Watchlist() []userdata.WatchlistItem
	IsInWatchlist(movieID int64) bool
	GetUserRating(movieID int64) (int, bool)
	ToggleWatchlist(ctx context.Context, movieID int64) (bool, error)
}

var _ UserData = (*userdata.Store)(nil)

// Service builds views from the catalog and the user's data.
type Service struct {
	catalog tmdb.Catalog
	store   UserData
	logger  *slog.Logger
}

// New constructs a Service.
func New(catalog tmdb.Catalog, store UserData, logger *slog.Logger) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "discovery"),
	}
}

// HomePage is a page of movies from either the popular list or a search.
type HomePage struct {
	View    string
	Query   string
	Results *tmdb.SearchResponse
}

// Empty reports whether the page has no movies.
func (h *HomePage) Empty() bool {
	return h == nil || h.Results == nil || len(h.Results.Results) == 0
}

// Home returns popular movies for a blank query and search results otherwise.
// The query is trimmed before it is sent.
func (s *Service) Home(ctx context.Context, query string, page int) (*HomePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		results, err := s.catalog.GetPopularMovies(ctx, page)
		if err != nil {
			return nil, &ViewError{View: ViewPopular, Err: err}
		}
		return &HomePage{View: ViewPopular, Results: results}, nil
	}
	results, err := s.catalog.SearchMovies(ctx, query, page)
	if err != nil {
		return nil, &ViewError{View: ViewSearch, Err: err}
	}
	return &HomePage{View: ViewSearch, Query: query, Results: results}, nil
}

// Genres returns the catalog genre list.
func (s *Service) Genres(ctx context.Context) (*tmdb.GenreList, error) {
	genres, err := s.catalog.GetGenres(ctx)
	if err != nil {
		return nil, &ViewError{View: ViewGenres, Err: err}
	}
	return genres, nil
}

// DetailView is one movie with the user's state and trimmed sub-lists.
type DetailView struct {
	Movie       *tmdb.MovieDetails
	InWatchlist bool
	UserRating  int
	Rated       bool
	Directors   []string
	Cast        []tmdb.CastMember
	Videos      []tmdb.Video
	Similar     []tmdb.MovieSummary
	Runtime     string
	PosterURL   string
	BackdropURL string
}

// Detail fetches a movie and annotates it with watchlist and rating state.
func (s *Service) Detail(ctx context.Context, movieID int64) (*DetailView, error) {
	movie, err := s.catalog.GetMovieDetails(ctx, movieID)
	if err != nil {
		return nil, &ViewError{View: ViewDetails, Err: err}
	}
	rating, rated := s.store.GetUserRating(movie.ID)
	view := &DetailView{
		Movie:       movie,
		InWatchlist: s.store.IsInWatchlist(movie.ID),
		UserRating:  rating,
		Rated:       rated,
		Directors:   movie.Credits.Directors(),
		Cast:        movie.Credits.TopCast(DetailCastLimit),
		Videos:      movie.Videos.Results[:min(DetailVideoLimit, len(movie.Videos.Results))],
		Similar:     movie.Similar.Results[:min(DetailSimilarLimit, len(movie.Similar.Results))],
		Runtime:     tmdb.FormatRuntime(movie.Runtime),
	}
	if movie.PosterPath != "" {
		view.PosterURL = s.catalog.ImageURL(movie.PosterPath, tmdb.SizeW500)
	}
	if movie.BackdropPath != "" {
		view.BackdropURL = s.catalog.ImageURL(movie.BackdropPath, tmdb.SizeOriginal)
	}
	return view, nil
}

// ToggleWatchlist flips membership and reports whether the movie is now saved.
func (s *Service) ToggleWatchlist(ctx context.Context, movieID int64) (bool, error) {
	return s.store.ToggleWatchlist(ctx, movieID)
}

// WatchlistRow is one resolved watchlist entry.
type WatchlistRow struct {
	Movie   *tmdb.MovieDetails
	AddedAt time.Time
	Rating  int
	Rated   bool
}

// WatchlistView is the resolved watchlist, newest first.
type WatchlistView struct {
	Rows []WatchlistRow
	// Unavailable lists movie IDs whose details could not be fetched.
	Unavailable []int64
}

// Watchlist resolves every saved movie. Entries whose details fail to load
// are left out and reported in Unavailable.
func (s *Service) Watchlist(ctx context.Context) (*WatchlistView, error) {
	items := s.store.Watchlist()
	view := &WatchlistView{}
	if len(items) == 0 {
		return view, nil
	}

	var (
		mu     sync.Mutex
		logger = logging.WithContext(ctx, s.logger)
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(watchlistFetchLimit)
	for _, item := range items {
		group.Go(func() error {
			movie, err := s.catalog.GetMovieDetails(groupCtx, item.MovieID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logging.Warn(logger, "watchlist movie unavailable", logging.Problem{
					Event:  "watchlist_fetch_failed",
					Impact: "movie omitted from watchlist view",
				},
					logging.MovieID(item.MovieID),
					logging.Error(err),
				)
				view.Unavailable = append(view.Unavailable, item.MovieID)
				return nil
			}
			rating, rated := s.store.GetUserRating(item.MovieID)
			view.Rows = append(view.Rows, WatchlistRow{Movie: movie, AddedAt: item.AddedAt, Rating: rating, Rated: rated})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, &ViewError{View: ViewWatchlist, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ViewError{View: ViewWatchlist, Err: err}
	}

	slices.SortStableFunc(view.Rows, func(a, b WatchlistRow) int {
		if c := b.AddedAt.Compare(a.AddedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Movie.ID, b.Movie.ID)
	})
	slices.Sort(view.Unavailable)
	return view, nil
}
