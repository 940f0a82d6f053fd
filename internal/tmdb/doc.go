// Package tmdb wraps the subset of The Movie Database API used by reelist:
// movie search, movie details with appended videos/credits/similar titles,
// popular movies, the genre list, and image URL construction.
//
// Every request carries the configured API key and language. Successful
// responses are kept in a respcache.Cache so repeated identical requests
// inside the freshness window never leave the process, and concurrent
// identical misses share one outbound call. Failures are reported as
// *FetchError, which matches services.ErrFetch, and are never cached.
package tmdb
