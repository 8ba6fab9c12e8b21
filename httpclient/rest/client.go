package rest

import (
	"context"
	"net/http"

	"github.com/kbukum/locallm/httpclient"
)

// Client is a JSON-focused client that wraps the base HTTP client.
type Client struct {
	http *httpclient.Client
}

// New creates a REST client with its own HTTP client.
func New(cfg httpclient.Config) (*Client, error) {
	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

// Response wraps a typed REST response.
type Response[T any] struct {
	StatusCode int
	Headers    map[string]string
	Data       T
}

// Get performs a GET request and decodes the JSON response into type T.
func Get[T any](ctx context.Context, c *Client, path string) (*Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body and decodes the response into type T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPost, path, body)
}

// do executes a request and decodes the JSON response. Error statuses are
// returned as TRANSPORT_ERROR without decoding.
func do[T any](ctx context.Context, c *Client, method, path string, body any) (*Response[T], error) {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:  method,
		Path:    path,
		Body:    body,
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, err
	}

	out := &Response[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
	}
	if len(resp.Body) > 0 {
		if err := resp.JSON(&out.Data); err != nil {
			return nil, err
		}
	}
	return out, nil
}
