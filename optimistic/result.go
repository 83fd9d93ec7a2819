package optimistic

import (
	"context"
	"sync"
)

// Result reports the background outcome of a single local mutation.
type Result struct {
	done chan struct{}
	once sync.Once
	err  error

	placeholder string // immutable
	key         string // written before done is closed
}

func newResult(key string) *Result {
	return &Result{done: make(chan struct{}), placeholder: key, key: key}
}

func (r *Result) resolve(key string, err error) {
	r.once.Do(func() {
		if key != "" {
			r.key = key
		}
		r.err = err
		close(r.done)
	})
}

// Done is closed once the mutation has been confirmed or rolled back.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Err is the sync error; only meaningful after Done is closed.
func (r *Result) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Key is the entity's identity: the placeholder until an insert is confirmed,
// the server identity afterwards.
func (r *Result) Key() string {
	select {
	case <-r.done:
		return r.key
	default:
		return r.placeholder
	}
}

// Wait blocks until the mutation settles or ctx ends.
func (r *Result) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
