package llm

import (
	"context"
	"net/http"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/httpclient"
	"github.com/kbukum/locallm/httpclient/rest"
	"github.com/kbukum/locallm/provider"
)

// Adapter is the HTTP side of a remote backend: a REST client for control
// endpoints plus a Dialect for the completion stream.
type Adapter struct {
	rest    *rest.Client
	dialect Dialect
}

// NewAdapter creates an adapter for dialect.
func NewAdapter(dialect Dialect, cfg httpclient.Config) (*Adapter, error) {
	client, err := rest.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Adapter{rest: client, dialect: dialect}, nil
}

// Dialect returns the dialect used by this adapter.
func (a *Adapter) Dialect() Dialect { return a.dialect }

// REST returns the REST client for control endpoints.
func (a *Adapter) REST() *rest.Client { return a.rest }

// BaseURL returns the backend base URL.
func (a *Adapter) BaseURL() string { return a.rest.HTTP().BaseURL() }

// IsAvailable reports whether the server answers the dialect's health
// endpoint with anything below 500.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	_, err := a.rest.HTTP().Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   a.dialect.HealthPath(),
	})
	if err == nil {
		return true
	}
	appErr, ok := errors.AsAppError(err)
	return ok && appErr.StatusCode() > 0 && appErr.StatusCode() < 500
}

// Stream posts body to the dialect's completion path and returns the decoded
// events. A server that answers without text/event-stream is read line by line.
func (a *Adapter) Stream(ctx context.Context, body any, headers map[string]string) (provider.Iterator[StreamEvent], error) {
	h := map[string]string{"Accept": "application/x-ndjson"}
	if a.dialect.StreamFormat() == StreamSSE {
		h["Accept"] = "text/event-stream"
	}
	for k, v := range headers {
		h[k] = v
	}

	resp, err := a.rest.HTTP().DoStream(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    a.dialect.StreamPath(),
		Headers: h,
		Body:    body,
	})
	if err != nil {
		return nil, err
	}

	if resp.IsSSE() {
		return ReadSSE(resp.SSE, a.dialect.DecodeEvent), nil
	}
	return ReadNDJSON(resp.Body, a.dialect.DecodeEvent), nil
}

// Close drops pooled connections.
func (a *Adapter) Close() {
	a.rest.HTTP().CloseIdleConnections()
}
