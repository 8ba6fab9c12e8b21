// Package httpclient is the HTTP transport shared by the remote inference
// backends. It resolves paths against a base URL, applies default headers
// and bearer auth, encodes JSON bodies and maps non-2xx responses to
// TRANSPORT_ERROR values carrying the status code and body text.
//
// Nothing here retries: a failed call is reported to the caller as is.
//
//   - rest: typed JSON GET/POST helpers
//   - sse: Server-Sent Events reader
//
// # Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:5143",
//	    Auth:    httpclient.BearerAuth(apiKey),
//	})
//	stream, err := client.DoStream(ctx, httpclient.Request{
//	    Method:  http.MethodPost,
//	    Path:    "/completion",
//	    Headers: map[string]string{"Accept": "text/event-stream"},
//	    Body:    payload,
//	})
//	defer stream.Close()
package httpclient
