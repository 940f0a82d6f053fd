package userdata

import (
	"encoding/json"
	"fmt"
)

// Encode serializes both collections as JSON arrays.
func Encode(state State) (watchlist, ratings []byte, err error) {
	if watchlist, err = encodeWatchlist(state.Watchlist); err != nil {
		return nil, nil, err
	}
	if ratings, err = encodeRatings(state.Ratings); err != nil {
		return nil, nil, err
	}
	return watchlist, ratings, nil
}

// Decode parses both records. Nil input decodes as an empty collection.
// The result is not repaired; see Repair.
func Decode(watchlist, ratings []byte) (State, error) {
	items, err := decodeWatchlist(watchlist)
	if err != nil {
		return State{}, err
	}
	entries, err := decodeRatings(ratings)
	if err != nil {
		return State{}, err
	}
	return State{Watchlist: items, Ratings: entries}, nil
}

// RepairReport counts the entries dropped by Repair.
type RepairReport struct {
	DuplicateWatchlist int
	InvalidWatchlist   int
	DuplicateRatings   int
	InvalidRatings     int
}

// Dropped returns the total number of discarded entries.
func (r RepairReport) Dropped() int {
	return r.DuplicateWatchlist + r.InvalidWatchlist + r.DuplicateRatings + r.InvalidRatings
}

// Repair enforces the collection invariants on decoded data: one entry per
// movie (the first wins), positive movie IDs, and ratings within bounds.
func Repair(state State) (State, RepairReport) {
	var report RepairReport

	watchlist := make([]WatchlistItem, 0, len(state.Watchlist))
	seen := make(map[int64]struct{}, len(state.Watchlist))
	for _, item := range state.Watchlist {
		if item.MovieID <= 0 {
			report.InvalidWatchlist++
			continue
		}
		if _, dup := seen[item.MovieID]; dup {
			report.DuplicateWatchlist++
			continue
		}
		seen[item.MovieID] = struct{}{}
		watchlist = append(watchlist, item)
	}

	ratings := make([]RatingEntry, 0, len(state.Ratings))
	clear(seen)
	for _, entry := range state.Ratings {
		if entry.MovieID <= 0 || !ValidRating(entry.Rating) {
			report.InvalidRatings++
			continue
		}
		if _, dup := seen[entry.MovieID]; dup {
			report.DuplicateRatings++
			continue
		}
		seen[entry.MovieID] = struct{}{}
		ratings = append(ratings, entry)
	}

	return State{Watchlist: watchlist, Ratings: ratings}, report
}

func encodeWatchlist(items []WatchlistItem) ([]byte, error) {
	if items == nil {
		items = []WatchlistItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode watchlist: %w", err)
	}
	return data, nil
}

func encodeRatings(entries []RatingEntry) ([]byte, error) {
	if entries == nil {
		entries = []RatingEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode ratings: %w", err)
	}
	return data, nil
}

func decodeWatchlist(data []byte) ([]WatchlistItem, error) {
	items := []WatchlistItem{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}
	if items == nil {
		items = []WatchlistItem{}
	}
	return items, nil
}

func decodeRatings(data []byte) ([]RatingEntry, error) {
	entries := []RatingEntry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	if entries == nil {
		entries = []RatingEntry{}
	}
	return entries, nil
}
