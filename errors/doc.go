// Package errors provides unified error handling for composekit.
//
// It implements a structured AppError with machine-readable codes, the
// ErrResolutionFailed sentinel matched by container errors, and a
// Classifier that separates framework-level error types from the
// application errors they wrap.
package errors
