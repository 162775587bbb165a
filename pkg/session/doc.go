// Package session holds the signed-in user and token that flows attach to
// their submissions. Storage is behind the Store interface; the service
// performs mock sign-in with simulated latency.
package session
