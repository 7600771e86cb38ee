package soundcloud

import (
	"context"
	"errors"
)

// ErrNoOperation is returned by Await when start returned no operation,
// as FetchNextPage does on the last page.
var ErrNoOperation = errors.New("soundcloud: no operation started")

// Await runs a callback style call and waits for its completion.
//
// If ctx ends first the operation is cancelled and ctx.Err() is
// returned.
//
//	resp, err := soundcloud.Await(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.Track])) soundcloud.CancelableOperation {
//	    return client.Tracks().Track(42, done)
//	})
func Await[T any](ctx context.Context, start func(completion func(T)) CancelableOperation) (T, error) {
	ch := make(chan T, 1)
	op := start(func(v T) {
		ch <- v
	})
	if op == nil {
		var zero T
		return zero, ErrNoOperation
	}

	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		op.Cancel()
		var zero T
		return zero, ctx.Err()
	}
}
