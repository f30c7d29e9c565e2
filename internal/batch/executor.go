// Package batch runs homogeneous collections of work with a fixed
// concurrency ceiling and per-item failure isolation.
package batch

import (
	"context"
	"sync"
	"time"
)

// Result holds one item's outcome: a value or an error, never both.
type Result[R any] struct {
	// Value is the work function's return value on success.
	Value R
	// Err is the captured per-item failure, if any.
	Err error
}

// WorkFunc processes one item.
type WorkFunc[T, R any] func(ctx context.Context, item T) (R, error)

// Run processes items in fixed-size chunks of at most concurrency calls.
// Within a chunk all calls execute concurrently; the next chunk starts only
// after the whole chunk finishes, so peak concurrency is bounded and chunk
// latency is governed by the slowest item. A failing item cancels nothing:
// its error is captured against its key and every other item still runs.
// No retries happen here; retry policy belongs to the work function.
//
// The result map is keyed by key(item). If the context is cancelled between
// chunks, remaining items are recorded with the context's error and no new
// work starts; items already in flight finish normally.
func Run[T, R any](ctx context.Context, items []T, concurrency int, key func(T) string, work WorkFunc[T, R]) map[string]Result[R] {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(map[string]Result[R], len(items))
	var mu sync.Mutex

	for start := 0; start < len(items); start += concurrency {
		if err := ctx.Err(); err != nil {
			for _, item := range items[start:] {
				results[key(item)] = Result[R]{Err: err}
			}
			break
		}

		end := min(start+concurrency, len(items))
		var wg sync.WaitGroup
		for _, item := range items[start:end] {
			wg.Add(1)
			go func(item T) {
				defer wg.Done()
				value, err := work(ctx, item)
				mu.Lock()
				results[key(item)] = Result[R]{Value: value, Err: err}
				mu.Unlock()
			}(item)
		}
		wg.Wait()
	}

	return results
}

// WithTimeout wraps a work function so every call runs under its own
// deadline. A timed-out call reports the context error as an ordinary item
// failure; there is no separate timeout error class.
func WithTimeout[T, R any](d time.Duration, work WorkFunc[T, R]) WorkFunc[T, R] {
	if d <= 0 {
		return work
	}
	return func(ctx context.Context, item T) (R, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return work(ctx, item)
	}
}
