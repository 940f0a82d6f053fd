package userdata

import "time"

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// WatchlistItem records that a movie was saved for later.
type WatchlistItem struct {
	MovieID int64     `json:"movieId"`
	AddedAt time.Time `json:"addedAt"`
}

// RatingEntry is the user's score for one movie.
type RatingEntry struct {
	MovieID int64     `json:"movieId"`
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"ratedAt"`
}

// State is a point-in-time copy of both collections in insertion order.
type State struct {
	Watchlist []WatchlistItem
	Ratings   []RatingEntry
}

// ValidRating reports whether rating is within [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
