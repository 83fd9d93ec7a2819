package optimistic

import "context"

// Remote is the authoritative backend for a Collection.
type Remote[T any] interface {
	// Create persists item and returns it with its server-assigned identity.
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, item T) error
}

// RemoteFuncs adapts plain functions to Remote. Nil functions succeed without
// doing anything, except CreateFunc which echoes the item back.
type RemoteFuncs[T any] struct {
	CreateFunc func(ctx context.Context, item T) (T, error)
	UpdateFunc func(ctx context.Context, item T) error
	DeleteFunc func(ctx context.Context, item T) error
}

func (r RemoteFuncs[T]) Create(ctx context.Context, item T) (T, error) {
	if r.CreateFunc == nil {
		return item, nil
	}
	return r.CreateFunc(ctx, item)
}

func (r RemoteFuncs[T]) Update(ctx context.Context, item T) error {
	if r.UpdateFunc == nil {
		return nil
	}
	return r.UpdateFunc(ctx, item)
}

func (r RemoteFuncs[T]) Delete(ctx context.Context, item T) error {
	if r.DeleteFunc == nil {
		return nil
	}
	return r.DeleteFunc(ctx, item)
}
