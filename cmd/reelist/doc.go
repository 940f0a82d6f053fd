// Package main hosts the reelist CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into catalog lookups and
// watchlist or rating updates. It resolves configuration once per invocation,
// builds the logger, tracer, catalog client, and user data store, and hands a
// ready discovery service to each subcommand.
//
// Keep this package lean: new behavior belongs in the internal packages first
// and is surfaced here through a dedicated command or flag.
package main
