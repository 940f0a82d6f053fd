// Package respcache keeps catalog responses in memory keyed by request
// fingerprint so identical requests inside the freshness window are answered
// without another network call.
//
// Entries are never evicted. A stale entry stays in the map until a later
// successful fetch overwrites it; only freshness decides whether it is served.
package respcache
