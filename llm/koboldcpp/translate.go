package koboldcpp

import "github.com/kbukum/locallm/llm"

// translator drops the penalties, threads, stream and template: the server
// has no such fields and the template is rendered into the prompt.
var translator = llm.Translator{
	Fields: llm.FieldMap{
		llm.ParamMaxTokens:     "max_length",
		llm.ParamTemperature:   "temperature",
		llm.ParamTopK:          "top_k",
		llm.ParamTopP:          "top_p",
		llm.ParamMinP:          "min_p",
		llm.ParamStop:          "stop_sequence",
		llm.ParamRepeatPenalty: "rep_pen",
		llm.ParamTFS:           "tfs",
		llm.ParamGrammar:       "grammar",
	},
}

// Translate converts generic params to koboldcpp's generate API fields.
func Translate(params llm.InferenceParams) (llm.Wire, []string) {
	return translator.Translate(params)
}
