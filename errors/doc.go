// Package errors defines the error taxonomy shared by every locallm backend.
//
// All failures surface as *AppError values carrying one of four codes:
// configuration errors raised at construction, transport errors for
// non-success HTTP statuses or malformed bodies, backend errors reported
// inside an otherwise well-formed stream, and state errors such as calling
// Infer before a model is loaded.
package errors
