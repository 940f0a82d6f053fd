// Package discovery assembles what the CLI shows: the home listing (popular
// or search results), a movie's detail view annotated with the user's
// watchlist and rating state, and the watchlist resolved into full catalog
// records. It combines a tmdb.Catalog with the user data store and maps
// failures to short messages suitable for display.
package discovery
