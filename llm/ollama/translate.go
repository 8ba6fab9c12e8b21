package ollama

import "github.com/kbukum/locallm/llm"

var translator = llm.Translator{
	Fields: llm.FieldMap{
		llm.ParamStream:           "stream",
		llm.ParamThreads:          "num_threads",
		llm.ParamMaxTokens:        "num_predict",
		llm.ParamTemperature:      "temperature",
		llm.ParamTopK:             "top_k",
		llm.ParamTopP:             "top_p",
		llm.ParamMinP:             "min_p",
		llm.ParamStop:             "stop_sequence",
		llm.ParamFrequencyPenalty: "frequency_penalty",
		llm.ParamPresencePenalty:  "presence_penalty",
		llm.ParamRepeatPenalty:    "repeat_penalty",
		llm.ParamTFS:              "tfs_z",
		llm.ParamGrammar:          "grammar",
	},
	StopSeparator: ",",
}

// Translate converts generic params to ollama's generate fields and injects
// the model and context window, which ollama expects on every request.
func Translate(params llm.InferenceParams, model string, numCtx int) (llm.Wire, []string) {
	wire, dropped := translator.Translate(params)
	wire["model"] = model
	wire["num_ctx"] = numCtx
	return wire, dropped
}
