package httpclient

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/httpclient/sse"
)

// Request is one call to an inference server.
type Request struct {
	Method string
	// Path is joined to the base URL unless it is absolute.
	Path string
	// Headers override the client defaults.
	Headers map[string]string
	// Body is sent as is for io.Reader, []byte and string; anything else is
	// encoded as JSON.
	Body any
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into v. A body that does not decode is a malformed
// response.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.MalformedResponse(err.Error(), r.Body)
	}
	return nil
}

// StreamResponse is an open completion stream. Exactly one of SSE and Body
// is set, depending on the Content-Type the server answered with.
type StreamResponse struct {
	StatusCode int
	Headers    map[string]string
	SSE        sse.Reader
	Body       io.ReadCloser

	raw    *http.Response
	closed bool
}

// IsSSE reports whether the server answered with text/event-stream.
func (r *StreamResponse) IsSSE() bool {
	return r.SSE != nil
}

// Close releases the connection. Later calls do nothing.
func (r *StreamResponse) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	switch {
	case r.SSE != nil:
		return r.SSE.Close()
	case r.Body != nil:
		return r.Body.Close()
	case r.raw != nil:
		return r.raw.Body.Close()
	}
	return nil
}
