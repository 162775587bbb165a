// Package validation holds the pure step predicates shared by every intake
// flow. Each helper inspects a value and returns a Result; none of them keep
// state, so calling one twice with the same input yields the same Result.
package validation
