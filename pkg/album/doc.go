// Package album defines the four-step album creation flow: details, style
// selection, photo upload and review.
package album
