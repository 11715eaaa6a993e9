// Package contxt holds the bounded waits every long running loop is built from. None of them
// block past their timeout or past cancellation of the context.
package contxt

import (
	"context"
	"time"
)

// Sleep waits for d. It returns false when ctx ended first.
func Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Send delivers v on ch, waiting at most timeout. It returns false when v was not delivered.
func Send[T any](ctx context.Context, ch chan<- T, v T, timeout time.Duration) bool {
	select {
	case ch <- v:
		return true
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	case <-t.C:
		return false
	}
}

// Receive waits at most poll for a value on ch. ok is false on timeout, cancellation or a closed channel.
func Receive[T any](ctx context.Context, ch <-chan T, poll time.Duration) (v T, ok bool) {
	t := time.NewTimer(poll)
	defer t.Stop()
	select {
	case v, ok = <-ch:
		return v, ok
	case <-ctx.Done():
		return v, false
	case <-t.C:
		return v, false
	}
}
