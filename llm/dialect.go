package llm

// StreamFormat indicates how a backend frames its streaming response.
type StreamFormat int

const (
	// StreamSSE uses Server-Sent Events, one JSON object per data payload.
	// Used by: koboldcpp, goinfer.
	StreamSSE StreamFormat = iota
	// StreamNDJSON uses newline-delimited JSON (one JSON object per line).
	// Used by: ollama.
	StreamNDJSON
)

func (f StreamFormat) String() string {
	if f == StreamNDJSON {
		return "ndjson"
	}
	return "sse"
}

// Decoder turns one framed payload into zero or more events. A payload that
// reports an error must return a BACKEND_ERROR; one that cannot be parsed
// returns a TRANSPORT_ERROR.
type Decoder func(data []byte) ([]StreamEvent, error)

// Dialect describes how a remote backend streams completions.
type Dialect interface {
	// Name returns the backend name.
	Name() string

	// StreamPath returns the completion endpoint path.
	StreamPath() string

	// HealthPath returns a cheap GET endpoint used by IsAvailable.
	HealthPath() string

	// StreamFormat returns how the backend frames its stream.
	StreamFormat() StreamFormat

	// DecodeEvent decodes one framed payload.
	DecodeEvent(data []byte) ([]StreamEvent, error)
}
