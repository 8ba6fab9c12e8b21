package goinfer

import (
	"bytes"
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

const (
	startEvent  = `{"msg_type":"system","content":"start_emitting","data":{"thinking_time":1.5,"thinking_time_format":"1.5s"}}`
	resultEvent = `{"msg_type":"system","content":"result","data":{"text":"Paris","stats":{"total_tokens":3}}}`
)

type fakeServer struct {
	t           *testing.T
	loadPayload map[string]any
	payload     map[string]any
	headers     http.Header
	events      []string
	loadStatus  int
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	switch r.URL.Path {
	case loadPath:
		s.loadPayload = nil
		_ = json.Unmarshal(body, &s.loadPayload)
		if s.loadStatus != 0 {
			w.WriteHeader(s.loadStatus)
			_, _ = io.WriteString(w, "model not found")
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	case completionPath:
		s.headers = r.Header.Clone()
		if err := json.Unmarshal(body, &s.payload); err != nil {
			s.t.Errorf("invalid payload: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, ev := range s.events {
			_, _ = io.WriteString(w, "data: "+ev+"\n\n")
		}
	case statePath:
		w.WriteHeader(http.StatusUnauthorized)
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
	if cfg.APIKey == "" {
		cfg.APIKey = "5dz78"
	}
	if cfg.OnToken == nil {
		cfg.OnToken = llm.DiscardTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestTranslate(t *testing.T) {
	params := llm.InferenceParams{
		Stream:           util.Ptr(true),
		Template:         util.Ptr("<s>{prompt}"),
		Threads:          util.Ptr(8),
		MaxTokens:        util.Ptr(128),
		Stop:             []string{"</s>"},
		TFS:              util.Ptr(1.0),
		FrequencyPenalty: util.Ptr(0.1),
	}
	got, dropped := Translate(params)
	want := llm.Wire{
		"stream":            true,
		"threads":           8,
		"max_tokens":        128,
		"stop":              []string{"</s>"},
		"tfs_z":             1.0,
		"frequency_penalty": 0.1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if dropped != nil {
		t.Errorf("template is sent separately and must not be reported dropped, got %v", dropped)
	}
	if _, ok := got["tfs"]; ok {
		t.Error("tfs must be renamed")
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(llm.Config{Logger: logger.Nop()})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeConfiguration || appErr.Details[errors.DetailField] != "api_key" {
		t.Fatalf("expected configuration error on api_key, got %v", err)
	}
}

func TestNew_DefaultURLWarns(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Writer: &buf}, "test")
	p, err := New(llm.Config{APIKey: "k", Logger: log})
	if err != nil {
		t.Fatal(err)
	}
	if p.adapter.BaseURL() != DefaultServerURL {
		t.Errorf("expected default url, got %s", p.adapter.BaseURL())
	}
	if !strings.Contains(buf.String(), DefaultServerURL) {
		t.Errorf("expected a warning naming the default url, got %s", buf.String())
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

func TestLoadModel(t *testing.T) {
	srv := &fakeServer{}
	p := newTestProvider(t, srv, llm.Config{})

	if err := p.LoadModel(context.Background(), "mistral-7b.gguf", 2048, llm.WithGPULayers(20)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"name": "mistral-7b.gguf", "ctx": float64(2048), "gpu_layers": float64(20)}
	if !reflect.DeepEqual(srv.loadPayload, want) {
		t.Errorf("got %v, want %v", srv.loadPayload, want)
	}
	if p.LoadedModel() != "mistral-7b.gguf" || p.ContextSize() != 2048 {
		t.Errorf("unexpected state %q %d", p.LoadedModel(), p.ContextSize())
	}

	if err := p.LoadModel(context.Background(), "small.gguf", 512); err != nil {
		t.Fatal(err)
	}
	if _, ok := srv.loadPayload["gpu_layers"]; ok {
		t.Error("gpu_layers must be omitted when unset")
	}
}

func TestLoadModel_ErrorStatus(t *testing.T) {
	srv := &fakeServer{loadStatus: http.StatusNotFound}
	p := newTestProvider(t, srv, llm.Config{})
	err := p.LoadModel(context.Background(), "missing.gguf", 2048)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.StatusCode() != 404 || appErr.Body() != "model not found" {
		t.Fatalf("expected transport error, got %v", err)
	}
	if p.LoadedModel() != "" {
		t.Error("a failed load must not change the state")
	}
}

func TestInfer_Events(t *testing.T) {
	srv := &fakeServer{events: []string{
		startEvent,
		`{"msg_type":"token","content":"Par"}`,
		`{"msg_type":"token","content":"is"}`,
		resultEvent,
	}}
	var calls []string
	var startData any
	p := newTestProvider(t, srv, llm.Config{
		APIKey:  "secret",
		OnToken: func(tok string) { calls = append(calls, "token:"+tok) },
		OnStartEmit: func(data any) {
			calls = append(calls, "start")
			startData = data
		},
	})
	if err := p.LoadModel(context.Background(), "m", 2048); err != nil {
		t.Fatal(err)
	}

	res, err := p.Infer(context.Background(), "Capital of France?", llm.InferenceParams{TFS: util.Ptr(0.9)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Paris" || res.Stats["total_tokens"] != float64(3) {
		t.Errorf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(calls, []string{"start", "token:Par", "token:is"}) {
		t.Errorf("unexpected callbacks %v", calls)
	}
	meta, _ := startData.(map[string]any)
	if meta["thinking_time_format"] != "1.5s" {
		t.Errorf("expected start metadata, got %v", startData)
	}

	if srv.payload["prompt"] != "Capital of France?" || srv.payload["template"] != "{prompt}" || srv.payload["tfs_z"] != 0.9 {
		t.Errorf("unexpected payload %v", srv.payload)
	}
	if srv.headers.Get("Authorization") != "Bearer secret" || srv.headers.Get("Accept") != "text/event-stream" {
		t.Errorf("unexpected headers %v", srv.headers)
	}
}

func TestInfer_TemplateSentRaw(t *testing.T) {
	srv := &fakeServer{events: []string{resultEvent}}
	p := newTestProvider(t, srv, llm.Config{})
	_ = p.LoadModel(context.Background(), "m", 2048)

	if _, err := p.Infer(context.Background(), "Q", llm.InferenceParams{Template: util.Ptr("### {prompt}")}); err != nil {
		t.Fatal(err)
	}
	if srv.payload["prompt"] != "Q" || srv.payload["template"] != "### {prompt}" {
		t.Errorf("expected raw prompt and template, got %v", srv.payload)
	}
}

func TestInfer_ErrorEvent(t *testing.T) {
	srv := &fakeServer{events: []string{startEvent, `{"msg_type":"error","content":"context overflow"}`}}
	p := newTestProvider(t, srv, llm.Config{})
	_ = p.LoadModel(context.Background(), "m", 2048)

	_, err := p.Infer(context.Background(), "Q", llm.InferenceParams{})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeBackend || appErr.Message != "context overflow" {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestInfer_VerboseThinkingTime(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Writer: &buf}, "test")
	srv := &fakeServer{events: []string{startEvent, resultEvent}}
	p := newTestProvider(t, srv, llm.Config{Verbose: true, Logger: log})
	_ = p.LoadModel(context.Background(), "m", 2048)

	if _, err := p.Infer(context.Background(), "Q", llm.InferenceParams{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"thinking_time":"1.5s"`) {
		t.Errorf("expected thinking time log, got %s", buf.String())
	}
}

func TestGenerate(t *testing.T) {
	srv := &fakeServer{events: []string{startEvent, `{"msg_type":"token","content":"a"}`, `{"msg_type":"system","content":"other"}`, resultEvent}}
	p := newTestProvider(t, srv, llm.Config{})
	_ = p.LoadModel(context.Background(), "m", 2048)

	it, err := p.Generate(context.Background(), "Q", llm.InferenceParams{})
	if err != nil {
		t.Fatal(err)
	}
	events, err := provider.Collect(context.Background(), it)
	if err != nil {
		t.Fatal(err)
	}
	kinds := []llm.EventKind{}
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	if !reflect.DeepEqual(kinds, []llm.EventKind{llm.EventStart, llm.EventToken, llm.EventResult}) {
		t.Errorf("unexpected kinds %v", kinds)
	}
	if srv.payload["stream"] != true {
		t.Errorf("Generate must force stream, got %v", srv.payload["stream"])
	}
}

func TestIsAvailable(t *testing.T) {
	p := newTestProvider(t, &fakeServer{}, llm.Config{})
	if !p.IsAvailable(context.Background()) {
		t.Error("a reachable server is available")
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}
