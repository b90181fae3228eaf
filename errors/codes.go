package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Composition errors
const (
	// ErrCodeInvalidConfiguration indicates the application was wired incorrectly.
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
	// ErrCodeResolutionFailed indicates a requested service could not be resolved.
	ErrCodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Nothing in the composition layer is retried; the table exists so callers
// building on AppError can mark their own codes.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeInvalidConfiguration: false,
	ErrCodeResolutionFailed:     false,
	ErrCodeInternal:             false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
