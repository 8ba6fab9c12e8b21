package provider

import (
	"context"
	"sync"
)

// Iterator provides pull-based sequential access to a stream of values.
// The consumer calls Next() to retrieve values one at a time.
// Close must be called when done to release resources.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// FromFunc builds an Iterator from a next function and an optional release
// function. release runs exactly once: on exhaustion, on the first error, or
// on Close, whichever comes first.
func FromFunc[T any](next func(ctx context.Context) (T, bool, error), release func() error) Iterator[T] {
	return &funcIterator[T]{next: next, release: release}
}

type funcIterator[T any] struct {
	next    func(ctx context.Context) (T, bool, error)
	release func() error
	once    sync.Once
	err     error
	done    bool
}

func (it *funcIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		it.finish()
		return zero, false, err
	}
	v, ok, err := it.next(ctx)
	if err != nil || !ok {
		it.finish()
		return zero, false, err
	}
	return v, true, nil
}

func (it *funcIterator[T]) Close() error {
	it.finish()
	return it.err
}

func (it *funcIterator[T]) finish() {
	it.done = true
	it.once.Do(func() {
		if it.release != nil {
			it.err = it.release()
		}
	})
}

// FromSlice returns an Iterator over items.
func FromSlice[T any](items []T) Iterator[T] {
	i := 0
	return FromFunc(func(context.Context) (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	}, nil)
}

// Collect drains it into a slice and closes it.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer func() { _ = it.Close() }()
	var out []T
	for {
		v, ok, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}
