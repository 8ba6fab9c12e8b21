package llm

// Backend identifies one of the supported inference targets.
type Backend string

const (
	// BackendLocal runs an embedded engine in-process.
	BackendLocal Backend = "local"
	// BackendKoboldcpp talks to a koboldcpp server (SSE, token events).
	BackendKoboldcpp Backend = "koboldcpp"
	// BackendGoinfer talks to a goinfer server (SSE, msg_type events).
	BackendGoinfer Backend = "goinfer"
	// BackendOllama talks to an ollama server (NDJSON).
	BackendOllama Backend = "ollama"
)

// Backends lists the built-in backend kinds.
var Backends = []Backend{BackendLocal, BackendKoboldcpp, BackendGoinfer, BackendOllama}

// IsRemote reports whether the backend is reached over HTTP.
func (b Backend) IsRemote() bool {
	return b == BackendKoboldcpp || b == BackendGoinfer || b == BackendOllama
}

func (b Backend) String() string { return string(b) }

// InferenceResult is the outcome of a blocking inference call.
type InferenceResult struct {
	// Text is the generated text.
	Text string `json:"text"`
	// Stats holds backend-specific statistics. Never nil; empty when the
	// backend reports none.
	Stats map[string]any `json:"stats"`
}

// EventKind discriminates decoded stream units.
type EventKind int

const (
	// EventToken carries one generated text fragment.
	EventToken EventKind = iota
	// EventStart marks the start of emission, with optional metadata.
	EventStart
	// EventResult carries the terminal payload.
	EventResult
)

func (k EventKind) String() string {
	switch k {
	case EventToken:
		return "token"
	case EventStart:
		return "start"
	case EventResult:
		return "result"
	default:
		return "unknown"
	}
}

// StreamEvent is one decoded unit of a backend stream.
type StreamEvent struct {
	Kind EventKind
	// Token is set for EventToken. It may be empty.
	Token string
	// Data is the metadata attached to EventStart.
	Data any
	// Result is set for EventResult.
	Result *InferenceResult
	// Raw is the undecoded payload the event came from.
	Raw []byte
}

// TokenEvent builds an EventToken.
func TokenEvent(token string, raw []byte) StreamEvent {
	return StreamEvent{Kind: EventToken, Token: token, Raw: raw}
}

// StartEvent builds an EventStart.
func StartEvent(data any, raw []byte) StreamEvent {
	return StreamEvent{Kind: EventStart, Data: data, Raw: raw}
}

// ResultEvent builds an EventResult. A nil stats map is replaced by an empty one.
func ResultEvent(text string, stats map[string]any, raw []byte) StreamEvent {
	if stats == nil {
		stats = map[string]any{}
	}
	return StreamEvent{Kind: EventResult, Result: &InferenceResult{Text: text, Stats: stats}, Raw: raw}
}
