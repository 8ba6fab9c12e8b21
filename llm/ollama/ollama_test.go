package ollama

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/provider"
	"github.com/kbukum/locallm/util"
)

const terminalLine = `{"model":"llama3","created_at":"2024-05-01T10:00:00Z","response":"","done":true,"context":[1,2,3],"total_duration":1200,"eval_count":2}`

type fakeServer struct {
	t       *testing.T
	payload map[string]any
	headers http.Header
	lines   []string
	status  int
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case generatePath:
		s.headers = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &s.payload); err != nil {
			s.t.Errorf("invalid payload: %v", err)
		}
		if s.status != 0 {
			w.WriteHeader(s.status)
			_, _ = io.WriteString(w, `{"error":"model not found"}`)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = io.WriteString(w, strings.Join(s.lines, "\n")+"\n")
	case tagsPath:
		_, _ = io.WriteString(w, `{"models":[]}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestProvider(t *testing.T, srv *fakeServer, cfg llm.Config) *Provider {
	t.Helper()
	srv.t = t
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	cfg.ServerURL = ts.URL
	if cfg.OnToken == nil {
		cfg.OnToken = llm.DiscardTokens
	}
	cfg.Logger = logger.Nop()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestTranslate_StreamMaxTokensStop(t *testing.T) {
	params := llm.InferenceParams{
		Stream:    util.Ptr(true),
		MaxTokens: util.Ptr(5),
		Stop:      []string{"\n"},
	}
	got, dropped := Translate(params, "llama3", 2048)
	want := llm.Wire{
		"stream":        true,
		"num_predict":   5,
		"stop_sequence": "\n",
		"model":         "llama3",
		"num_ctx":       2048,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for _, k := range []string{"max_tokens", "stop"} {
		if _, ok := got[k]; ok {
			t.Errorf("generic key %q must not be forwarded", k)
		}
	}
	if dropped != nil {
		t.Errorf("nothing should be dropped, got %v", dropped)
	}
}

func TestTranslate_Renames(t *testing.T) {
	tests := []struct {
		name   string
		params llm.InferenceParams
		key    string
		value  any
	}{
		{"threads", llm.InferenceParams{Threads: util.Ptr(4)}, "num_threads", 4},
		{"tfs", llm.InferenceParams{TFS: util.Ptr(0.95)}, "tfs_z", 0.95},
		{"stop joined", llm.InferenceParams{Stop: []string{"a", "b"}}, "stop_sequence", "a,b"},
		{"repeat penalty", llm.InferenceParams{RepeatPenalty: util.Ptr(1.1)}, "repeat_penalty", 1.1},
		{"presence penalty", llm.InferenceParams{PresencePenalty: util.Ptr(0.2)}, "presence_penalty", 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Translate(tt.params, "m", 512)
			if !reflect.DeepEqual(got[tt.key], tt.value) {
				t.Errorf("%s: got %v, want %v", tt.key, got[tt.key], tt.value)
			}
			if len(got) != 3 {
				t.Errorf("expected one field plus model and num_ctx, got %v", got)
			}
		})
	}
}

func TestTranslate_TemplateDropped(t *testing.T) {
	got, dropped := Translate(llm.InferenceParams{Template: util.Ptr("[INST]{prompt}")}, "m", 512)
	if _, ok := got["template"]; ok {
		t.Error("template must be rendered into the prompt, not forwarded")
	}
	if !reflect.DeepEqual(dropped, []string{llm.ParamTemplate}) {
		t.Errorf("unexpected dropped %v", dropped)
	}
}

func TestDecodeEvent_StripsBookkeeping(t *testing.T) {
	events, err := dialect{}.DecodeEvent([]byte(terminalLine))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Kind != llm.EventToken || events[1].Kind != llm.EventResult {
		t.Fatalf("unexpected events %+v", events)
	}
	stats := events[1].Result.Stats
	for _, k := range bookkeepingKeys {
		if _, ok := stats[k]; ok {
			t.Errorf("stats must not contain %q", k)
		}
	}
	if stats["eval_count"] != float64(2) || stats["total_duration"] != float64(1200) {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestDecodeEvent_Malformed(t *testing.T) {
	_, err := dialect{}.DecodeEvent([]byte(`{"response":`))
	if !errors.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestInfer_NoModelLoaded(t *testing.T) {
	srv := &fakeServer{}
	p := newTestProvider(t, srv, llm.Config{})
	_, err := p.Infer(context.Background(), "Q", llm.InferenceParams{})
	if !errors.IsState(err) {
		t.Fatalf("expected state error, got %v", err)
	}
	if srv.payload != nil {
		t.Error("no request may be sent without a model")
	}
}

func TestInfer(t *testing.T) {
	srv := &fakeServer{lines: []string{
		`{"model":"llama3","response":"Hel","done":false}`,
		``,
		`{"model":"llama3","response":"lo","done":false}`,
		terminalLine,
	}}
	var calls []string
	p := newTestProvider(t, srv, llm.Config{
		OnToken:     func(tok string) { calls = append(calls, "token:"+tok) },
		OnStartEmit: func(data any) { calls = append(calls, "start") },
	})
	if err := p.LoadModel(context.Background(), "llama3", 4096); err != nil {
		t.Fatal(err)
	}

	res, err := p.Infer(context.Background(), "Say hello", llm.InferenceParams{
		Template:  util.Ptr("### {prompt}"),
		MaxTokens: util.Ptr(5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Hello" {
		t.Errorf("expected Hello, got %q", res.Text)
	}
	if _, ok := res.Stats["context"]; ok || res.Stats["eval_count"] != float64(2) {
		t.Errorf("unexpected stats %v", res.Stats)
	}
	wantCalls := []string{"start", "token:Hel", "token:lo", "token:"}
	if !reflect.DeepEqual(calls, wantCalls) {
		t.Errorf("got %v, want %v", calls, wantCalls)
	}

	want := map[string]any{
		"prompt":      "### Say hello",
		"model":       "llama3",
		"num_ctx":     float64(4096),
		"num_predict": float64(5),
	}
	if !reflect.DeepEqual(srv.payload, want) {
		t.Errorf("got payload %v, want %v", srv.payload, want)
	}
	if srv.headers.Get("Accept") != "application/x-ndjson" {
		t.Errorf("unexpected accept header %q", srv.headers.Get("Accept"))
	}
}

func TestInfer_ErrorLine(t *testing.T) {
	srv := &fakeServer{lines: []string{
		`{"response":"partial","done":false}`,
		`{"error":"oom"}`,
	}}
	var tokens []string
	p := newTestProvider(t, srv, llm.Config{OnToken: func(tok string) { tokens = append(tokens, tok) }})
	_ = p.LoadModel(context.Background(), "llama3", 2048)

	res, err := p.Infer(context.Background(), "Q", llm.InferenceParams{})
	if res != nil {
		t.Fatalf("partial text must not be returned as success, got %+v", res)
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeBackend || appErr.Message != "oom" {
		t.Fatalf("expected backend error oom, got %v", err)
	}
	if !reflect.DeepEqual(tokens, []string{"partial"}) {
		t.Errorf("unexpected tokens %v", tokens)
	}
}

func TestInfer_ErrorWithResponse(t *testing.T) {
	srv := &fakeServer{lines: []string{`{"response":"x","error":"oom"}`}}
	var tokens []string
	p := newTestProvider(t, srv, llm.Config{OnToken: func(tok string) { tokens = append(tokens, tok) }})
	_ = p.LoadModel(context.Background(), "llama3", 2048)

	if _, err := p.Infer(context.Background(), "Q", llm.InferenceParams{}); !errors.IsBackend(err) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("a line with an error must not deliver its token, got %v", tokens)
	}
}

func TestInfer_ErrorStatus(t *testing.T) {
	srv := &fakeServer{status: http.StatusNotFound}
	p := newTestProvider(t, srv, llm.Config{})
	_ = p.LoadModel(context.Background(), "missing", 2048)

	_, err := p.Infer(context.Background(), "Q", llm.InferenceParams{})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.StatusCode() != http.StatusNotFound || !strings.Contains(appErr.Body(), "model not found") {
		t.Fatalf("expected 404 transport error, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	srv := &fakeServer{lines: []string{`{"response":"a","done":false}`, terminalLine}}
	p := newTestProvider(t, srv, llm.Config{})
	_ = p.LoadModel(context.Background(), "llama3", 2048)

	it, err := p.Generate(context.Background(), "Q", llm.InferenceParams{Stream: util.Ptr(false)})
	if err != nil {
		t.Fatal(err)
	}
	events, err := provider.Collect(context.Background(), it)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 || events[2].Kind != llm.EventResult {
		t.Errorf("unexpected events %+v", events)
	}
	if srv.payload["stream"] != true {
		t.Errorf("Generate must force stream, got %v", srv.payload["stream"])
	}
}

func TestGenerate_CloseEarly(t *testing.T) {
	srv := &fakeServer{lines: []string{`{"response":"a","done":false}`, `{"response":"b","done":false}`, terminalLine}}
	p := newTestProvider(t, srv, llm.Config{})
	_ = p.LoadModel(context.Background(), "llama3", 2048)

	it, err := p.Generate(context.Background(), "Q", llm.InferenceParams{})
	if err != nil {
		t.Fatal(err)
	}
	ev, ok, err := it.Next(context.Background())
	if err != nil || !ok || ev.Token != "a" {
		t.Fatalf("unexpected first event %+v %v %v", ev, ok, err)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok, _ := it.Next(context.Background()); ok {
		t.Error("a closed stream must yield nothing")
	}
}

func TestNew_DefaultURL(t *testing.T) {
	p, err := New(llm.Config{Logger: logger.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	if p.adapter.BaseURL() != DefaultServerURL {
		t.Errorf("expected %s, got %s", DefaultServerURL, p.adapter.BaseURL())
	}
	if _, err := New(llm.Config{Backend: llm.BackendGoinfer, APIKey: "k", Logger: logger.Nop()}); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error for a foreign backend, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	p := newTestProvider(t, &fakeServer{}, llm.Config{})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
}
