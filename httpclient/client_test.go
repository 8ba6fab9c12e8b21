package httpclient

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/security"
	"github.com/kbukum/locallm/security/tlstest"
)

func TestClient_Do_HeadersAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if got := r.Header.Get("X-Default"); got != "d" {
			t.Errorf("expected default header, got %q", got)
		}
		if got := r.Header.Get("X-Request"); got != "r" {
			t.Errorf("expected request header, got %q", got)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "locallm/") {
			t.Errorf("unexpected user agent %q", ua)
		}
		if r.URL.Path != "/model/load" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	c, err := New(Config{
		BaseURL: srv.URL + "/",
		Auth:    BearerAuth("secret"),
		Headers: map[string]string{"X-Default": "d"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Do(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "/model/load",
		Headers: map[string]string{"X-Request": "r"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() || string(resp.Body) != "ok" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, resp.Body)
	}
}

func TestClient_Do_JSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"name":"mistral"`) {
			t.Errorf("unexpected body %s", body)
		}
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	if _, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: map[string]any{"name": "mistral"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("model not found"))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/model/load"})
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatal("expected response to be returned with the error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if appErr.StatusCode() != 404 || appErr.Body() != "model not found" {
		t.Errorf("unexpected details %v", appErr.Details)
	}
	if appErr.Retryable {
		t.Error("404 must not be retryable")
	}
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeTransport || !appErr.Retryable {
		t.Fatalf("expected retryable transport error, got %v", err)
	}
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := New(Config{BaseURL: srv.URL})
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClient_DoStream_SSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("expected SSE accept header")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"token\":\"Hi\"}\n\n")
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	stream, err := c.DoStream(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "/api/extra/generate/stream",
		Headers: map[string]string{"Accept": "text/event-stream"},
		Body:    map[string]any{"prompt": "x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if !stream.IsSSE() {
		t.Fatal("expected SSE stream")
	}
	ev, err := stream.SSE.Next()
	if err != nil || ev.Data != `{"token":"Hi"}` {
		t.Fatalf("unexpected event %v %v", ev, err)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("second close must be a no-op: %v", err)
	}
}

func TestClient_DoStream_Body(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = io.WriteString(w, "{\"response\":\"a\"}\n")
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Timeout: time.Millisecond})
	stream, err := c.DoStream(context.Background(), Request{Method: http.MethodPost, Path: "/api/generate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if stream.IsSSE() {
		t.Fatal("expected raw body stream")
	}
	data, _ := io.ReadAll(stream.Body)
	if string(data) != "{\"response\":\"a\"}\n" {
		t.Errorf("unexpected body %q", data)
	}
}

func TestClient_DoStream_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := c.DoStream(context.Background(), Request{Method: http.MethodPost, Path: "/completion"})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.StatusCode() != http.StatusUnauthorized || appErr.Body() != "bad key" {
		t.Fatalf("expected 401 transport error, got %v", err)
	}
}

func TestClient_TLS_HTTP2(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	srv := tlstest.NewServer(t, certs, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Proto)
	}))

	c, err := New(Config{BaseURL: srv.URL, TLS: &security.TLSConfig{CAFile: certs.CAFile}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "HTTP/2.0" {
		t.Errorf("expected HTTP/2.0, got %q", resp.Body)
	}
	c.CloseIdleConnections()
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{TLS: &security.TLSConfig{CertFile: "/cert.pem"}}
	cfg.ApplyDefaults()
	if !errors.IsConfiguration(cfg.Validate()) {
		t.Error("expected configuration error for cert without key")
	}
	if _, err := New(cfg); err == nil {
		t.Error("expected New to fail")
	}
}

func TestBearerAuth_Empty(t *testing.T) {
	if BearerAuth("") != nil {
		t.Error("expected nil auth for empty token")
	}
}

func TestClassifyStatusCode_TruncatesBody(t *testing.T) {
	err := ClassifyStatusCode(500, []byte(strings.Repeat("x", maxErrorBody+10)))
	appErr, _ := errors.AsAppError(err)
	if len(appErr.Body()) != maxErrorBody {
		t.Errorf("expected body capped at %d, got %d", maxErrorBody, len(appErr.Body()))
	}
	if ClassifyStatusCode(204, nil) != nil {
		t.Error("2xx must not be an error")
	}
}
