package discovery

import (
	"errors"

	"reelist/internal/services"
)

// View names used to pick a display message.
const (
	ViewPopular   = "popular"
	ViewSearch    = "search"
	ViewDetails   = "details"
	ViewWatchlist = "watchlist"
	ViewGenres    = "genres"
)

// Display messages.
const (
	MessagePopularFailed   = "Failed to fetch popular movies. Please try again later."
	MessageSearchFailed    = "Failed to search movies. Please try again later."
	MessageDetailsFailed   = "Failed to fetch movie details. Please try again later."
	MessageWatchlistFailed = "Failed to fetch watchlist movies. Please try again later."
	MessageGenresFailed    = "Failed to fetch genres. Please try again later."
	MessageSaveFailed      = "Could not save your change. Please try again."
	MessageNoResults       = "No movies found. Try a different search."
	MessageEmptyWatchlist  = "Your watchlist is empty. Movies you add to your watchlist will appear here."
	MessageUnexpected      = "Something went wrong. Please try again later."
)

var fetchMessages = map[string]string{
	ViewPopular:   MessagePopularFailed,
	ViewSearch:    MessageSearchFailed,
	ViewDetails:   MessageDetailsFailed,
	ViewWatchlist: MessageWatchlistFailed,
	ViewGenres:    MessageGenresFailed,
}

// ViewError ties a failure to the view that could not be built.
type ViewError struct {
	View string
	Err  error
}

func (e *ViewError) Error() string {
	return e.View + ": " + e.Err.Error()
}

func (e *ViewError) Unwrap() error {
	return e.Err
}

// UserMessage returns a short message to show in place of data that failed to load.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, services.ErrPersistence):
		return MessageSaveFailed
	case errors.Is(err, services.ErrValidation):
		return err.Error()
	}
	var viewErr *ViewError
	if errors.As(err, &viewErr) {
		if msg, ok := fetchMessages[viewErr.View]; ok {
			return msg
		}
	}
	if errors.Is(err, services.ErrFetch) {
		return MessageDetailsFailed
	}
	return MessageUnexpected
}
