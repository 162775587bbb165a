// Package albums models the albums shown on the dashboard and keeps them in
// an in-memory repository that the mock gateway writes to.
package albums
