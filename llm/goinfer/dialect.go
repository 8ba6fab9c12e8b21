package goinfer

import (
	"github.com/tidwall/gjson"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/logger"
)

const (
	loadPath       = "/model/load"
	completionPath = "/completion"
	statePath      = "/model/state"
)

// Message types and system contents.
const (
	msgToken         = "token"
	msgSystem        = "system"
	msgError         = "error"
	sysStartEmitting = "start_emitting"
	sysResult        = "result"
)

type dialect struct {
	verbose bool
	log     *logger.Logger
}

func (dialect) Name() string                   { return string(llm.BackendGoinfer) }
func (dialect) StreamPath() string             { return completionPath }
func (dialect) HealthPath() string             { return statePath }
func (dialect) StreamFormat() llm.StreamFormat { return llm.StreamSSE }

// DecodeEvent dispatches one event on its msg_type. Unknown types and system
// contents decode to nothing.
func (d dialect) DecodeEvent(data []byte) ([]llm.StreamEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.MalformedResponse("event is not JSON", data)
	}
	msg := gjson.ParseBytes(data)
	content := msg.Get("content")

	switch msg.Get("msg_type").String() {
	case msgToken:
		return []llm.StreamEvent{llm.TokenEvent(content.String(), data)}, nil
	case msgSystem:
		switch content.String() {
		case sysStartEmitting:
			meta := msg.Get("data")
			if d.verbose {
				d.log.Info("thinking time", logger.Fields("thinking_time", meta.Get("thinking_time_format").String()))
			}
			return []llm.StreamEvent{llm.StartEvent(meta.Value(), data)}, nil
		case sysResult:
			result := msg.Get("data")
			stats, _ := result.Get("stats").Value().(map[string]any)
			return []llm.StreamEvent{llm.ResultEvent(result.Get("text").String(), stats, data)}, nil
		}
	case msgError:
		return nil, errors.BackendReported(string(llm.BackendGoinfer), content.String())
	}
	return nil, nil
}
