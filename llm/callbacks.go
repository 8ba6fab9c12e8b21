package llm

import (
	"context"
	"io"
	"os"
)

// OnTokenFunc receives each generated fragment in arrival order.
type OnTokenFunc func(token string)

// OnStartEmitFunc is called once when a backend starts emitting. data is the
// backend's start metadata, or nil when the backend sends none.
type OnStartEmitFunc func(data any)

// Callbacks are the side effects fired by the dispatch loop.
type Callbacks struct {
	OnToken     OnTokenFunc
	OnStartEmit OnStartEmitFunc
}

// WriterOnToken returns a token callback writing each fragment to w.
func WriterOnToken(w io.Writer) OnTokenFunc {
	return func(token string) {
		_, _ = io.WriteString(w, token)
	}
}

// DefaultOnToken writes tokens to standard output. Providers use it when the
// configuration sets no token callback.
var DefaultOnToken OnTokenFunc = WriterOnToken(os.Stdout)

// DiscardTokens is a token callback that ignores every fragment.
func DiscardTokens(string) {}

// TokenObserver is notified of every delivered token. Instrumentation installs
// one per call through WithTokenObserver.
type TokenObserver func(n int)

type tokenObserverKey struct{}

// WithTokenObserver attaches an observer to ctx for Consume to notify.
func WithTokenObserver(ctx context.Context, obs TokenObserver) context.Context {
	return context.WithValue(ctx, tokenObserverKey{}, obs)
}

func tokenObserverFrom(ctx context.Context) TokenObserver {
	obs, _ := ctx.Value(tokenObserverKey{}).(TokenObserver)
	return obs
}
