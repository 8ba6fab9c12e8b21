package koboldcpp

import (
	"github.com/tidwall/gjson"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/llm"
)

const (
	streamPath  = "/api/extra/generate/stream"
	contextPath = "/api/extra/true_max_context_length"
	modelPath   = "/api/v1/model"
	abortPath   = "/api/extra/abort"
)

type dialect struct{}

func (dialect) Name() string                   { return string(llm.BackendKoboldcpp) }
func (dialect) StreamPath() string             { return streamPath }
func (dialect) HealthPath() string             { return modelPath }
func (dialect) StreamFormat() llm.StreamFormat { return llm.StreamSSE }

// DecodeEvent reads the token of one SSE payload.
func (dialect) DecodeEvent(data []byte) ([]llm.StreamEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.MalformedResponse("event is not JSON", data)
	}
	token := gjson.GetBytes(data, "token")
	if !token.Exists() {
		return nil, errors.MalformedResponse("event has no token", data)
	}
	return []llm.StreamEvent{llm.TokenEvent(token.String(), data)}, nil
}
