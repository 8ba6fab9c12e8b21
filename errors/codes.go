package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction errors
const (
	// ErrCodeConfiguration indicates a missing or invalid backend-specific setting.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

// Call errors
const (
	// ErrCodeTransport indicates a non-success HTTP status, a connection
	// failure or a malformed response body.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeBackend indicates an explicit error reported inside a stream.
	ErrCodeBackend ErrorCode = "BACKEND_ERROR"
	// ErrCodeState indicates the provider is not in a state to serve the call.
	ErrCodeState ErrorCode = "STATE_ERROR"
	// ErrCodeUnsupported indicates the backend does not offer the operation.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport: true,
}

// IsRetryableCode returns true if the error code may succeed when repeated.
// Nothing in this module retries; the flag is informational for callers.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
