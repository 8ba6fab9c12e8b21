package local

import "github.com/kbukum/locallm/llm"

// translator drops threads, fixed when the engine loads, and the template,
// rendered into the prompt.
var translator = llm.Translator{
	Fields: llm.FieldMap{
		llm.ParamStream:           "stream",
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

// Translate converts generic params to the engine's completion options.
func Translate(params llm.InferenceParams) (llm.Wire, []string) {
	return translator.Translate(params)
}
