package httpclient

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/locallm/errors"
)

// maxErrorBody caps the response text kept on a transport error.
const maxErrorBody = 4096

// ClassifyStatusCode returns nil for 2xx and a TRANSPORT_ERROR otherwise.
func ClassifyStatusCode(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return errors.Transport(statusCode, string(body))
}

// requestError wraps a failure that happened before any response arrived.
// Context cancellation is returned unchanged so callers can match it.
func requestError(ctx context.Context, target string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
		return ctxErr
	}
	return errors.ConnectionFailed(target, err)
}
