package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Status values for a processed item.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Limiter gates each item before it is processed.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Options configures Process.
type Options struct {
	// Workers bounds concurrent calls to fn. Values below 1 run sequentially.
	Workers int

	// Limiter is waited on before each call when set.
	Limiter Limiter
}

// Item is the outcome for one id. Exactly one of Value and Err is meaningful.
type Item[T any] struct {
	ID    string
	Value T
	Err   error
}

// Status returns StatusSuccess or StatusError.
func (i Item[T]) Status() string {
	if i.Err != nil {
		return StatusError
	}
	return StatusSuccess
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Process calls fn once per id with at most opts.Workers calls in flight.
//
// The returned items are in the same order as ids, whatever order the calls
// complete in. An error from fn is recorded on its item and does not stop
// the batch. Process itself fails only when ctx is done, in which case the
// partial items are discarded.
func Process[T any](ctx context.Context, ids []string, opts Options, fn func(ctx context.Context, id string) (T, error)) ([]Item[T], error) {
	items := make([]Item[T], len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if opts.Limiter != nil {
				if err := opts.Limiter.Wait(gctx); err != nil {
					return err
				}
			}
			v, err := fn(gctx, id)
			items[i] = Item[T]{ID: id, Value: v, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Summarize counts successes and failures.
func Summarize[T any](items []Item[T]) Summary {
	s := Summary{Total: len(items)}
	for _, it := range items {
		if it.Err != nil {
			s.Failed++
		} else {
			s.Successful++
		}
	}
	return s
}
