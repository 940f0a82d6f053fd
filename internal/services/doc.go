// Package services defines shared utilities consumed by the catalog client,
// the user data store, and the CLI.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so fetch, validation, and
//     persistence failures stay distinguishable as they cross package lines.
//   - Context helpers that stamp correlation identifiers for logging and
//     tracing.
//
// Use these helpers when wiring new components so operational behaviour
// (error classification, observability) stays uniform across the client.
package services
