package userdata

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"reelist/internal/logging"
	"reelist/internal/services"
)

// Store holds the watchlist and ratings in memory and writes every change
// through to its Backend. All methods are safe for concurrent use; mutations
// apply in call order.
type Store struct {
	mu        sync.Mutex
	backend   Backend
	now       func() time.Time
	logger    *slog.Logger
	watchlist []WatchlistItem
	ratings   []RatingEntry
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used to stamp AddedAt and RatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.NewComponentLogger(logger, "userdata")
	}
}

// Open loads both records from backend. Missing records start empty.
// Unreadable or malformed records also start empty and are reported as
// warnings; Open only fails when backend is nil.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, services.Wrap(services.ErrConfiguration, "userdata", "open", "backend required", nil)
	}
	s := &Store{
		backend: backend,
		now:     time.Now,
		logger:  logging.NewComponentLogger(nil, "userdata"),
	}
	for _, opt := range opts {
		opt(s)
	}

	logger := logging.WithContext(ctx, s.logger)
	state := State{
		Watchlist: s.loadWatchlist(ctx, logger),
		Ratings:   s.loadRatings(ctx, logger),
	}
	repaired, report := Repair(state)
	if report.Dropped() > 0 {
		logging.Warn(logger, "user data repaired on load", logging.Problem{
			Event:  "userdata_repaired",
			Hint:   "dropped entries are removed on the next save",
			Impact: "some saved entries were ignored",
		},
			logging.Int("duplicate_watchlist", report.DuplicateWatchlist),
			logging.Int("invalid_watchlist", report.InvalidWatchlist),
			logging.Int("duplicate_ratings", report.DuplicateRatings),
			logging.Int("invalid_ratings", report.InvalidRatings),
		)
	}
	s.watchlist = repaired.Watchlist
	s.ratings = repaired.Ratings

	logger.Debug("user data loaded",
		logging.Int("watchlist", len(s.watchlist)),
		logging.Int("ratings", len(s.ratings)),
	)
	return s, nil
}

func (s *Store) loadWatchlist(ctx context.Context, logger *slog.Logger) []WatchlistItem {
	data, ok := s.loadRecord(ctx, logger, KeyWatchlist)
	if !ok {
		return nil
	}
	items, err := decodeWatchlist(data)
	if err != nil {
		warnUnreadable(logger, KeyWatchlist, err)
		return nil
	}
	return items
}

func (s *Store) loadRatings(ctx context.Context, logger *slog.Logger) []RatingEntry {
	data, ok := s.loadRecord(ctx, logger, KeyRatings)
	if !ok {
		return nil
	}
	entries, err := decodeRatings(data)
	if err != nil {
		warnUnreadable(logger, KeyRatings, err)
		return nil
	}
	return entries
}

func (s *Store) loadRecord(ctx context.Context, logger *slog.Logger, key string) ([]byte, bool) {
	data, found, err := s.backend.Load(ctx, key)
	if err != nil {
		warnUnreadable(logger, key, err)
		return nil, false
	}
	return data, found
}

func warnUnreadable(logger *slog.Logger, key string, err error) {
	logging.Warn(logger, "user data record unreadable", logging.Problem{
		Event:  "userdata_load_failed",
		Hint:   "record will start empty",
		Impact: "previously saved " + key + " entries are not shown and are overwritten by the next change",
	},
		logging.String("key", key),
		logging.Error(err),
	)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// AddToWatchlist saves movieID for later. Adding a movie already present is a no-op.
func (s *Store) AddToWatchlist(ctx context.Context, movieID int64) error {
	if err := validateMovieID("add to watchlist", movieID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(ctx, movieID)
}

// RemoveFromWatchlist drops movieID. Removing an absent movie, including any
// non-positive ID, is a no-op.
func (s *Store) RemoveFromWatchlist(ctx context.Context, movieID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, movieID)
}

// ToggleWatchlist adds movieID when absent and removes it when present.
// It reports whether the movie is on the watchlist afterwards.
func (s *Store) ToggleWatchlist(ctx context.Context, movieID int64) (bool, error) {
	if err := validateMovieID("toggle watchlist", movieID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchlistIndex(movieID) >= 0 {
		if err := s.removeLocked(ctx, movieID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.addLocked(ctx, movieID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) addLocked(ctx context.Context, movieID int64) error {
	if s.watchlistIndex(movieID) >= 0 {
		return nil
	}
	next := append(slices.Clip(s.watchlist), WatchlistItem{MovieID: movieID, AddedAt: s.now()})
	if err := s.persistWatchlist(ctx, "add to watchlist", movieID, next); err != nil {
		return err
	}
	s.watchlist = next
	logging.WithContext(ctx, s.logger).Debug("added to watchlist", logging.MovieID(movieID))
	return nil
}

func (s *Store) removeLocked(ctx context.Context, movieID int64) error {
	idx := s.watchlistIndex(movieID)
	if idx < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.watchlist), idx, idx+1)
	if err := s.persistWatchlist(ctx, "remove from watchlist", movieID, next); err != nil {
		return err
	}
	s.watchlist = next
	logging.WithContext(ctx, s.logger).Debug("removed from watchlist", logging.MovieID(movieID))
	return nil
}

// IsInWatchlist reports whether movieID is on the watchlist.
func (s *Store) IsInWatchlist(movieID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchlistIndex(movieID) >= 0
}

// RateMovie records rating for movieID, replacing any earlier rating in place.
func (s *Store) RateMovie(ctx context.Context, movieID int64, rating int) error {
	if err := validateMovieID("rate movie", movieID); err != nil {
		return err
	}
	if !ValidRating(rating) {
		return services.Wrap(services.ErrValidation, "userdata", "rate movie",
			fmt.Sprintf("rating %d out of range %d-%d", rating, MinRating, MaxRating), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := RatingEntry{MovieID: movieID, Rating: rating, RatedAt: s.now()}
	next := slices.Clone(s.ratings)
	if idx := s.ratingIndex(movieID); idx >= 0 {
		next[idx] = entry
	} else {
		next = append(next, entry)
	}
	if err := s.persistRatings(ctx, "rate movie", movieID, next); err != nil {
		return err
	}
	s.ratings = next
	logging.WithContext(ctx, s.logger).Debug("movie rated",
		logging.MovieID(movieID),
		logging.Int("rating", rating),
	)
	return nil
}

// RemoveRating clears the rating for movieID. Clearing an absent rating is a no-op.
func (s *Store) RemoveRating(ctx context.Context, movieID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.ratingIndex(movieID)
	if idx < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.ratings), idx, idx+1)
	if err := s.persistRatings(ctx, "remove rating", movieID, next); err != nil {
		return err
	}
	s.ratings = next
	logging.WithContext(ctx, s.logger).Debug("rating removed", logging.MovieID(movieID))
	return nil
}

// GetUserRating returns the rating for movieID, if any.
func (s *Store) GetUserRating(movieID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.ratingIndex(movieID); idx >= 0 {
		return s.ratings[idx].Rating, true
	}
	return 0, false
}

// Watchlist returns a copy of the watchlist in insertion order.
func (s *Store) Watchlist() []WatchlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.watchlist)
}

// Ratings returns a copy of the ratings in insertion order.
func (s *Store) Ratings() []RatingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ratings)
}

// Snapshot returns a copy of both collections.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Watchlist: slices.Clone(s.watchlist),
		Ratings:   slices.Clone(s.ratings),
	}
}

func (s *Store) watchlistIndex(movieID int64) int {
	return slices.IndexFunc(s.watchlist, func(item WatchlistItem) bool { return item.MovieID == movieID })
}

func (s *Store) ratingIndex(movieID int64) int {
	return slices.IndexFunc(s.ratings, func(entry RatingEntry) bool { return entry.MovieID == movieID })
}

func (s *Store) persistWatchlist(ctx context.Context, operation string, movieID int64, items []WatchlistItem) error {
	data, err := encodeWatchlist(items)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "userdata", operation, fmt.Sprintf("movie %d", movieID), err)
	}
	return s.save(ctx, operation, movieID, KeyWatchlist, data)
}

func (s *Store) persistRatings(ctx context.Context, operation string, movieID int64, entries []RatingEntry) error {
	data, err := encodeRatings(entries)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "userdata", operation, fmt.Sprintf("movie %d", movieID), err)
	}
	return s.save(ctx, operation, movieID, KeyRatings, data)
}

func (s *Store) save(ctx context.Context, operation string, movieID int64, key string, data []byte) error {
	if err := s.backend.Save(ctx, key, data); err != nil {
		logging.Fail(logging.WithContext(ctx, s.logger), "user data save failed", logging.Problem{
			Event: "userdata_save_failed",
			Hint:  "check that the user data path is writable",
		},
			logging.String("key", key),
			logging.MovieID(movieID),
			logging.Error(err),
		)
		return services.Wrap(services.ErrPersistence, "userdata", operation, fmt.Sprintf("movie %d", movieID), err)
	}
	return nil
}

func validateMovieID(operation string, movieID int64) error {
	if movieID <= 0 {
		return services.Wrap(services.ErrValidation, "userdata", operation,
			fmt.Sprintf("movie id must be positive, got %d", movieID), nil)
	}
	return nil
}
