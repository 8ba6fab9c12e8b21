package ollama

import (
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/llm"
)

const (
	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

// bookkeepingKeys are removed from the terminal line before it becomes stats.
var bookkeepingKeys = []string{"done", "context", "model", "created_at", "response"}

type dialect struct{}

func (dialect) Name() string                   { return string(llm.BackendOllama) }
func (dialect) StreamPath() string             { return generatePath }
func (dialect) HealthPath() string             { return tagsPath }
func (dialect) StreamFormat() llm.StreamFormat { return llm.StreamNDJSON }

// DecodeEvent turns one line into a token event, followed by the result
// event when the line is terminal. The error check runs before anything
// from the line is delivered.
func (dialect) DecodeEvent(data []byte) ([]llm.StreamEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.MalformedResponse("line is not JSON", data)
	}
	line := gjson.ParseBytes(data)
	if e := line.Get("error"); e.Exists() {
		return nil, errors.BackendReported(string(llm.BackendOllama), e.String())
	}

	events := []llm.StreamEvent{llm.TokenEvent(line.Get("response").String(), data)}
	if !line.Get("done").Bool() {
		return events, nil
	}
	stats, err := terminalStats(data)
	if err != nil {
		return nil, err
	}
	return append(events, llm.ResultEvent("", stats, data)), nil
}

func terminalStats(data []byte) (map[string]any, error) {
	var stats map[string]any
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, errors.MalformedResponse("terminal line is not an object", data)
	}
	for _, k := range bookkeepingKeys {
		delete(stats, k)
	}
	return stats, nil
}
