// Package config loads, normalizes, and validates reelist configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and layers environment overrides such as
// TMDB_API_KEY on top. The Config type centralizes every knob the CLI needs so
// the catalog credential, cache freshness window, and user data location are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
