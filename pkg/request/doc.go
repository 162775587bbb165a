// Package request defines the four-step service request flow: contact
// details, photo type, reference photos and a free-text vision whose step
// also re-checks everything before it.
package request
