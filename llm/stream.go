package llm

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"io"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/httpclient/sse"
	"github.com/kbukum/locallm/provider"
)

// decodeStream adapts a source of framed payloads into an event iterator.
// Payloads decoding to several events are queued; release runs once.
func decodeStream(next func(ctx context.Context) ([]byte, bool, error), decode Decoder, release func() error) provider.Iterator[StreamEvent] {
	var pending []StreamEvent
	return provider.FromFunc(func(ctx context.Context) (StreamEvent, bool, error) {
		for len(pending) == 0 {
			data, ok, err := next(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return StreamEvent{}, false, ctxErr
				}
				return StreamEvent{}, false, err
			}
			if !ok {
				return StreamEvent{}, false, nil
			}
			events, err := decode(data)
			if err != nil {
				return StreamEvent{}, false, err
			}
			pending = events
		}
		ev := pending[0]
		pending = pending[1:]
		return ev, true, nil
	}, release)
}

func readError(err error) error {
	return errors.New(errors.ErrCodeTransport, "stream interrupted").WithCause(err)
}

// ReadSSE yields the events decoded from each SSE data payload. The reader
// is closed when the stream ends, fails, or the iterator is closed.
func ReadSSE(reader sse.Reader, decode Decoder) provider.Iterator[StreamEvent] {
	return decodeStream(func(context.Context) ([]byte, bool, error) {
		event, err := reader.Next()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return nil, false, nil
			}
			return nil, false, readError(err)
		}
		return []byte(event.Data), true, nil
	}, decode, reader.Close)
}

// ReadNDJSON yields the events decoded from each non-empty line of body.
func ReadNDJSON(body io.ReadCloser, decode Decoder) provider.Iterator[StreamEvent] {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), sse.MaxEventSize)
	return decodeStream(func(context.Context) ([]byte, bool, error) {
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			return append([]byte(nil), line...), true, nil
		}
		if err := scanner.Err(); err != nil {
			return nil, false, readError(err)
		}
		return nil, false, nil
	}, decode, body.Close)
}

// ReadChunks yields the events decoded from each chunk of an engine stream.
func ReadChunks(chunks provider.Iterator[[]byte], decode Decoder) provider.Iterator[StreamEvent] {
	return decodeStream(chunks.Next, decode, chunks.Close)
}
