package llm

import (
	"slices"
	"strings"

	"github.com/kbukum/locallm/util"
)

// Generic parameter names, as used in FieldMap tables.
const (
	ParamStream           = "stream"
	ParamTemplate         = "template"
	ParamThreads          = "threads"
	ParamMaxTokens        = "max_tokens"
	ParamTemperature      = "temperature"
	ParamTopK             = "top_k"
	ParamTopP             = "top_p"
	ParamMinP             = "min_p"
	ParamStop             = "stop"
	ParamFrequencyPenalty = "frequency_penalty"
	ParamPresencePenalty  = "presence_penalty"
	ParamRepeatPenalty    = "repeat_penalty"
	ParamTFS              = "tfs"
	ParamGrammar          = "grammar"
)

// paramOrder fixes the iteration order of Fields and dropped-key reports.
var paramOrder = []string{
	ParamStream, ParamTemplate, ParamThreads, ParamMaxTokens, ParamTemperature,
	ParamTopK, ParamTopP, ParamMinP, ParamStop, ParamFrequencyPenalty,
	ParamPresencePenalty, ParamRepeatPenalty, ParamTFS, ParamGrammar,
}

// PromptPlaceholder is replaced by the prompt when a template is rendered.
const PromptPlaceholder = "{prompt}"

// InferenceParams is the backend-agnostic description of an inference request.
// Every field is optional: nil means unset and is never forwarded.
type InferenceParams struct {
	Stream           *bool    `json:"stream,omitempty" mapstructure:"stream"`
	Template         *string  `json:"template,omitempty" mapstructure:"template"`
	Threads          *int     `json:"threads,omitempty" mapstructure:"threads"`
	MaxTokens        *int     `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
	Temperature      *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	TopK             *int     `json:"top_k,omitempty" mapstructure:"top_k"`
	TopP             *float64 `json:"top_p,omitempty" mapstructure:"top_p"`
	MinP             *float64 `json:"min_p,omitempty" mapstructure:"min_p"`
	Stop             []string `json:"stop,omitempty" mapstructure:"stop"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" mapstructure:"frequency_penalty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" mapstructure:"presence_penalty"`
	RepeatPenalty    *float64 `json:"repeat_penalty,omitempty" mapstructure:"repeat_penalty"`
	TFS              *float64 `json:"tfs,omitempty" mapstructure:"tfs"`
	// Grammar is a GBNF grammar constraint.
	Grammar *string `json:"grammar,omitempty" mapstructure:"grammar"`
}

// Fields returns the explicitly set parameters keyed by generic name.
func (p InferenceParams) Fields() map[string]any {
	out := make(map[string]any)
	setPtr(out, ParamStream, p.Stream)
	setPtr(out, ParamTemplate, p.Template)
	setPtr(out, ParamThreads, p.Threads)
	setPtr(out, ParamMaxTokens, p.MaxTokens)
	setPtr(out, ParamTemperature, p.Temperature)
	setPtr(out, ParamTopK, p.TopK)
	setPtr(out, ParamTopP, p.TopP)
	setPtr(out, ParamMinP, p.MinP)
	if p.Stop != nil {
		out[ParamStop] = slices.Clone(p.Stop)
	}
	setPtr(out, ParamFrequencyPenalty, p.FrequencyPenalty)
	setPtr(out, ParamPresencePenalty, p.PresencePenalty)
	setPtr(out, ParamRepeatPenalty, p.RepeatPenalty)
	setPtr(out, ParamTFS, p.TFS)
	setPtr(out, ParamGrammar, p.Grammar)
	return out
}

func setPtr[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}

// WithStream returns a copy of p with stream forced to v.
func (p InferenceParams) WithStream(v bool) InferenceParams {
	p.Stream = util.Ptr(v)
	return p
}

// IsStream reports whether stream was explicitly set to true.
func (p InferenceParams) IsStream() bool {
	return util.Deref(p.Stream)
}

// RenderPrompt substitutes prompt into template. An empty template means
// "{prompt}".
func RenderPrompt(template, prompt string) string {
	if template == "" {
		return prompt
	}
	return strings.ReplaceAll(template, PromptPlaceholder, prompt)
}

// Render renders prompt with the params' template.
func (p InferenceParams) Render(prompt string) string {
	return RenderPrompt(util.Deref(p.Template), prompt)
}

// TemplateOrDefault returns the template, or "{prompt}" when unset.
func (p InferenceParams) TemplateOrDefault() string {
	return util.Coalesce(util.Deref(p.Template), PromptPlaceholder)
}

// Wire is a translated request payload fragment.
type Wire map[string]any

// FieldMap maps generic parameter names to wire names. Generic names absent
// from the map are dropped.
type FieldMap map[string]string

// Translator converts generic params into one backend's wire vocabulary.
type Translator struct {
	Fields FieldMap
	// StopSeparator, when non-empty, flattens the stop list into one string.
	StopSeparator string
}

// Translate returns the wire payload for the set fields of p and the generic
// names that were set but not forwarded. It never fails.
func (t Translator) Translate(p InferenceParams) (Wire, []string) {
	fields := p.Fields()
	wire := make(Wire, len(fields))
	var dropped []string
	for _, key := range paramOrder {
		v, ok := fields[key]
		if !ok {
			continue
		}
		name, ok := t.Fields[key]
		if !ok || name == "" {
			dropped = append(dropped, key)
			continue
		}
		if key == ParamStop && t.StopSeparator != "" {
			v = strings.Join(v.([]string), t.StopSeparator)
		}
		wire[name] = v
	}
	return wire, dropped
}

// Merge returns a new payload holding base overlaid with w. Keys of base win.
func (w Wire) Merge(base map[string]any) Wire {
	out := make(Wire, len(w)+len(base))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range base {
		out[k] = v
	}
	return out
}
