package goinfer

import (
	"slices"

	"github.com/kbukum/locallm/llm"
)

// translator keeps llama.cpp field names except tfs. The template travels as
// its own payload field.
var translator = llm.Translator{
	Fields: llm.FieldMap{
		llm.ParamStream:           "stream",
		llm.ParamThreads:          "threads",
		llm.ParamMaxTokens:        "max_tokens",
		llm.ParamTemperature:      "temperature",
		llm.ParamTopK:             "top_k",
		llm.ParamTopP:             "top_p",
		llm.ParamMinP:             "min_p",
		llm.ParamStop:             "stop",
		llm.ParamFrequencyPenalty: "frequency_penalty",
		llm.ParamPresencePenalty:  "presence_penalty",
		llm.ParamRepeatPenalty:    "repeat_penalty",
		llm.ParamTFS:              "tfs_z",
		llm.ParamGrammar:          "grammar",
	},
}

// Translate converts generic params to goinfer's completion fields.
func Translate(params llm.InferenceParams) (llm.Wire, []string) {
	wire, dropped := translator.Translate(params)
	dropped = slices.DeleteFunc(dropped, func(k string) bool { return k == llm.ParamTemplate })
	if len(dropped) == 0 {
		dropped = nil
	}
	return wire, dropped
}
