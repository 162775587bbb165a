// Package gateway defines the submission boundary of the intake flows and
// ships three implementations: an in-process mock that simulates latency and
// records albums, an HTTP client for a remote intake API, and a per-flow
// registry.
//
// Gateways return failures as Outcome values; the error return is reserved
// for calls that could not complete at all.
package gateway
