package errors

import (
	stderrors "errors"
	"fmt"
)

// Detail keys used by the constructors.
const (
	DetailField   = "field"
	DetailStatus  = "status"
	DetailBody    = "body"
	DetailBackend = "backend"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation may succeed when repeated.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code, so errors.Is(err, &AppError{Code: c}) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// StatusCode returns the HTTP status attached to a transport error, or 0.
func (e *AppError) StatusCode() int {
	if v, ok := e.Details[DetailStatus].(int); ok {
		return v
	}
	return 0
}

// Body returns the response body attached to a transport error, or "".
func (e *AppError) Body() string {
	if v, ok := e.Details[DetailBody].(string); ok {
		return v
	}
	return ""
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// Configuration creates an error for an invalid setting.
func Configuration(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details[DetailField] = field
	}
	return &AppError{
		Code: ErrCodeConfiguration, Message: reason, Details: details,
	}
}

// MissingField creates a configuration error for a required setting left empty.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeConfiguration, Message: fmt.Sprintf("missing required field: %s", field),
		Details: map[string]any{DetailField: field},
	}
}

// Transport creates an error for a non-success HTTP response.
func Transport(status int, body string) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: fmt.Sprintf("backend returned status %d", status),
		Retryable: status >= 500,
		Details:   map[string]any{DetailStatus: status, DetailBody: body},
	}
}

// ConnectionFailed creates a transport error for a request that never got a response.
func ConnectionFailed(target string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: fmt.Sprintf("unable to reach %s", target),
		Retryable: true, Cause: cause,
		Details: map[string]any{"target": target},
	}
}

// MalformedResponse creates a transport error for a body that could not be decoded.
func MalformedResponse(reason string, body []byte) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: fmt.Sprintf("malformed response: %s", reason),
		Details: map[string]any{DetailBody: string(body)},
	}
}

// BackendReported creates an error for an explicit error field inside a stream.
func BackendReported(backend, message string) *AppError {
	return &AppError{
		Code: ErrCodeBackend, Message: message,
		Details: map[string]any{DetailBackend: backend},
	}
}

// NoModelLoaded creates the state error returned by Infer before LoadModel.
func NoModelLoaded(backend string) *AppError {
	return &AppError{
		Code: ErrCodeState, Message: "no model loaded",
		Details: map[string]any{DetailBackend: backend},
	}
}

// Unsupported creates an error for an operation the backend does not offer.
func Unsupported(backend, operation string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupported, Message: fmt.Sprintf("%s does not support %s", backend, operation),
		Details: map[string]any{DetailBackend: backend, "operation": operation},
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "unexpected error", Cause: cause,
	}
}

// --- Inspection ---

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return IsCode(err, ErrCodeConfiguration) }

// IsTransport reports whether err is a transport error.
func IsTransport(err error) bool { return IsCode(err, ErrCodeTransport) }

// IsBackend reports whether err was reported by the backend inside a stream.
func IsBackend(err error) bool { return IsCode(err, ErrCodeBackend) }

// IsState reports whether err is a state error.
func IsState(err error) bool { return IsCode(err, ErrCodeState) }
