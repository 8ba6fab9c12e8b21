package llm

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/observability"
	"github.com/kbukum/locallm/provider"
)

// Instrument wraps p so every call opens a span, carries a request id and
// records metrics when metrics is non-nil. The Aborter capability is kept.
func Instrument(p Provider, metrics *observability.InferenceMetrics) Provider {
	ip := &instrumented{next: p, metrics: metrics}
	if _, ok := p.(Aborter); ok {
		return &instrumentedAborter{ip}
	}
	return ip
}

// Unwrap returns the provider behind an Instrument wrapper, or p itself.
func Unwrap(p Provider) Provider {
	switch w := p.(type) {
	case *instrumented:
		return w.next
	case *instrumentedAborter:
		return w.next
	}
	return p
}

type instrumented struct {
	next    Provider
	metrics *observability.InferenceMetrics
}

func (i *instrumented) start(ctx context.Context, op, model string) (context.Context, *observability.Operation) {
	id := logger.RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, id)
	}
	return observability.StartOperation(ctx, i.metrics, i.next.Name(), op, model, id)
}

func (i *instrumented) Name() string                         { return i.next.Name() }
func (i *instrumented) IsAvailable(ctx context.Context) bool { return i.next.IsAvailable(ctx) }
func (i *instrumented) Close(ctx context.Context) error      { return i.next.Close(ctx) }
func (i *instrumented) Backend() Backend                     { return i.next.Backend() }
func (i *instrumented) LoadedModel() string                  { return i.next.LoadedModel() }
func (i *instrumented) ContextSize() int                     { return i.next.ContextSize() }

func (i *instrumented) LoadModel(ctx context.Context, name string, contextSize int, opts ...LoadOption) error {
	ctx, op := i.start(ctx, observability.SpanLoadModel, name)
	observability.SetSpanAttribute(ctx, observability.AttrContextSize, contextSize)
	err := i.next.LoadModel(ctx, name, contextSize, opts...)
	op.End(ctx, err)
	return err
}

func (i *instrumented) Infer(ctx context.Context, prompt string, params InferenceParams) (*InferenceResult, error) {
	ctx, op := i.start(ctx, observability.SpanInfer, i.next.LoadedModel())
	ctx = WithTokenObserver(ctx, op.AddTokens)
	res, err := i.next.Infer(ctx, prompt, params)
	op.End(ctx, err)
	return res, err
}

func (i *instrumented) Generate(ctx context.Context, prompt string, params InferenceParams) (provider.Iterator[StreamEvent], error) {
	ctx, op := i.start(ctx, observability.SpanGenerate, i.next.LoadedModel())
	it, err := i.next.Generate(ctx, prompt, params)
	if err != nil {
		op.End(ctx, err)
		return nil, err
	}

	var streamErr error
	return provider.FromFunc(func(callCtx context.Context) (StreamEvent, bool, error) {
		ev, ok, err := it.Next(callCtx)
		if err != nil {
			streamErr = err
		} else if ok && ev.Kind == EventToken {
			op.AddTokens(1)
		}
		return ev, ok, err
	}, func() error {
		err := it.Close()
		op.End(ctx, streamErr)
		return err
	}), nil
}

type instrumentedAborter struct {
	*instrumented
}

func (i *instrumentedAborter) Abort(ctx context.Context) error {
	ctx, op := i.start(ctx, observability.SpanAbort, i.next.LoadedModel())
	err := i.next.(Aborter).Abort(ctx)
	op.End(ctx, err)
	return err
}
