// Package summary renders plain-text review pages for the intake flows and
// album details from pongo2 templates.
package summary
