// Package optimistic provides a local mirror of a server-owned entity set that
// applies writes immediately and reconciles them with the backend in the background.
//
// Every entity owns an operation log. Local mutations are applied to the latest
// draft, appended to the log and drained in call order by one goroutine per
// entity. When an operation fails, the entity is restored to the state it had
// before that operation and the operations queued behind it are discarded.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const placeholderPrefix = "tmp-"

var (
	ErrNotFound = errors.New("entity not found")
	// ErrDiscarded resolves operations queued behind a failed one.
	ErrDiscarded = errors.New("discarded after earlier sync failure")
)

// Item is one visible entity together with its local identity.
type Item[T any] struct {
	ID string
	// Pending is true while background operations for the entity are outstanding.
	Pending bool
	Value   T
}

// Options configures a Collection.
type Options[T any] struct {
	// Name labels the collection in errors and the OnError hook.
	Name string
	// Key returns the server identity of a confirmed entity. Required.
	Key func(T) string
	// Adopt copies server-assigned fields from server into a local draft and
	// keeps every other field of the draft. Required.
	Adopt func(draft, server T) T
	// OnError is called after a failed operation has been rolled back.
	OnError func(op Op, key string, err error)
	// OnSuccess is called after an operation has been confirmed.
	OnSuccess func(op Op, key string)
}

// Op names the kind of background operation.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type operation[T any] struct {
	kind  Op
	value T // draft to send
	// state to restore if this operation fails
	base        T
	basePresent bool
	result      *Result
	// sync overrides the Remote call for updates.
	sync func(context.Context, T) error
}

type entry[T any] struct {
	id      string
	value   T
	present bool

	confirmed       T
	confirmedExists bool

	queue    []*operation[T]
	draining bool
}

// Collection is safe for concurrent use.
type Collection[T any] struct {
	remote Remote[T]
	opts   Options[T]

	mu      sync.Mutex
	entries map[string]*entry[T]
	order   []*entry[T]
	aliases map[string]string // placeholder -> server key

	subs    map[int]chan []Item[T]
	nextSub int

	inflight int
	settled  chan struct{}
}

// New creates an empty collection backed by remote.
func New[T any](remote Remote[T], opts Options[T]) *Collection[T] {
	if opts.Key == nil {
		panic("optimistic: Options.Key is required")
	}
	if opts.Adopt == nil {
		panic("optimistic: Options.Adopt is required")
	}
	if opts.Name == "" {
		opts.Name = "collection"
	}
	return &Collection[T]{
		remote:  remote,
		opts:    opts,
		entries: make(map[string]*entry[T]),
		aliases: make(map[string]string),
		subs:    make(map[int]chan []Item[T]),
	}
}

// IsPlaceholder reports whether id is a client-generated identity.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}

// Load replaces the mirror with a fresh server listing. Entities with
// outstanding operations keep their local draft, as do unconfirmed inserts.
func (c *Collection[T]) Load(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make(map[string]*entry[T], len(items))
	order := make([]*entry[T], 0, len(items))
	for _, item := range items {
		key := c.opts.Key(item)
		if existing, ok := c.entries[key]; ok && len(existing.queue) > 0 {
			existing.confirmed = item
			existing.confirmedExists = true
			next[key] = existing
			order = append(order, existing)
			continue
		}
		e := &entry[T]{id: key, value: item, present: true, confirmed: item, confirmedExists: true}
		next[key] = e
		order = append(order, e)
	}
	for _, e := range c.order {
		if _, kept := next[e.id]; kept || len(e.queue) == 0 {
			continue
		}
		next[e.id] = e
		order = append(order, e)
	}

	c.entries = next
	c.order = order
	c.publishLocked()
}

// Items returns the visible entities in insertion order.
func (c *Collection[T]) Items() []Item[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Values is Items without the bookkeeping.
func (c *Collection[T]) Values() []T {
	items := c.Items()
	values := make([]T, len(items))
	for i, it := range items {
		values[i] = it.Value
	}
	return values
}

// Get returns the latest local draft for id (placeholder or server key).
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookupLocked(id)
	if e == nil || !e.present {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Find returns the first visible entity matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (Item[T], bool) {
	for _, it := range c.Items() {
		if pred(it.Value) {
			return it, true
		}
	}
	return Item[T]{}, false
}

// Pending reports whether id has outstanding background operations.
func (c *Collection[T]) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookupLocked(id)
	return e != nil && len(e.queue) > 0
}

// Insert adds item under a placeholder identity and creates it remotely.
func (c *Collection[T]) Insert(item T) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := placeholderPrefix + uuid.NewString()
	e := &entry[T]{id: id, value: item, present: true}
	c.entries[id] = e
	c.order = append(c.order, e)

	res := newResult(id)
	c.enqueueLocked(e, &operation[T]{kind: OpInsert, value: item, basePresent: false, result: res})
	c.publishLocked()
	return res
}

// Update applies mutator to the latest local draft of id and syncs the result.
func (c *Collection[T]) Update(id string, mutator func(T) T) *Result {
	return c.UpdateWith(id, mutator, nil)
}

// UpdateWith is Update with a custom call in place of Remote.Update.
// syncFn receives the draft carrying the entity's server identity.
func (c *Collection[T]) UpdateWith(id string, mutator func(T) T, syncFn func(context.Context, T) error) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookupLocked(id)
	if e == nil || !e.present {
		res := newResult(id)
		res.resolve("", fmt.Errorf("%s %s: %w", c.opts.Name, id, ErrNotFound))
		return res
	}

	base := e.value
	e.value = mutator(base)

	res := newResult(e.id)
	c.enqueueLocked(e, &operation[T]{kind: OpUpdate, value: e.value, base: base, basePresent: true, result: res, sync: syncFn})
	c.publishLocked()
	return res
}

// Patch applies mutator locally without a background operation, for state
// the backend derives on its own. Rollback of an earlier pending operation
// may discard the patch.
func (c *Collection[T]) Patch(id string, mutator func(T) T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookupLocked(id)
	if e == nil || !e.present {
		return fmt.Errorf("%s %s: %w", c.opts.Name, id, ErrNotFound)
	}
	e.value = mutator(e.value)
	if e.confirmedExists {
		e.confirmed = mutator(e.confirmed)
	}
	c.publishLocked()
	return nil
}

// Delete hides id immediately and deletes it remotely.
func (c *Collection[T]) Delete(id string) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookupLocked(id)
	if e == nil || !e.present {
		res := newResult(id)
		res.resolve("", fmt.Errorf("%s %s: %w", c.opts.Name, id, ErrNotFound))
		return res
	}

	e.present = false
	res := newResult(e.id)
	c.enqueueLocked(e, &operation[T]{kind: OpDelete, value: e.value, base: e.value, basePresent: true, result: res})
	c.publishLocked()
	return res
}

// Subscribe returns a channel that always holds the most recent snapshot.
// Slow readers skip intermediate states. The channel is primed with the
// current state and closed by the returned cancel function.
func (c *Collection[T]) Subscribe() (<-chan []Item[T], func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan []Item[T], 1)
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

// Settle blocks until every outstanding operation has been confirmed or rolled back.
func (c *Collection[T]) Settle(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.inflight == 0 {
			c.mu.Unlock()
			return nil
		}
		wait := c.settled
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Collection[T]) lookupLocked(id string) *entry[T] {
	if e, ok := c.entries[id]; ok {
		return e
	}
	if key, ok := c.aliases[id]; ok {
		return c.entries[key]
	}
	return nil
}

func (c *Collection[T]) snapshotLocked() []Item[T] {
	items := make([]Item[T], 0, len(c.order))
	for _, e := range c.order {
		if e.present {
			items = append(items, Item[T]{ID: e.id, Pending: len(e.queue) > 0, Value: e.value})
		}
	}
	return items
}

func (c *Collection[T]) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (c *Collection[T]) enqueueLocked(e *entry[T], op *operation[T]) {
	if c.inflight == 0 {
		c.settled = make(chan struct{})
	}
	c.inflight++
	e.queue = append(e.queue, op)
	if !e.draining {
		e.draining = true
		go c.drain(e)
	}
}

// finishLocked resolves op and releases its Settle slot.
func (c *Collection[T]) finishLocked(op *operation[T], key string, err error) {
	op.result.resolve(key, err)
	c.inflight--
	if c.inflight == 0 {
		close(c.settled)
	}
}

func (c *Collection[T]) drain(e *entry[T]) {
	for {
		c.mu.Lock()
		if len(e.queue) == 0 {
			e.draining = false
			if !e.present && !e.confirmedExists {
				c.removeLocked(e)
			}
			c.publishLocked()
			c.mu.Unlock()
			return
		}
		op := e.queue[0]
		value := op.value
		if e.confirmedExists {
			value = c.opts.Adopt(value, e.confirmed)
		}
		c.mu.Unlock()

		created, err := c.send(op, value)

		c.mu.Lock()
		e.queue = e.queue[1:]
		key := e.id
		if err != nil {
			c.rollbackLocked(e, op, err)
		} else {
			c.confirmLocked(e, op, value, created)
			key = e.id
		}
		c.publishLocked()
		c.mu.Unlock()

		// Hooks run unlocked so they may read the collection.
		if err != nil && c.opts.OnError != nil {
			c.opts.OnError(op.kind, key, err)
		}
		if err == nil && c.opts.OnSuccess != nil {
			c.opts.OnSuccess(op.kind, key)
		}
	}
}

func (c *Collection[T]) send(op *operation[T], value T) (T, error) {
	ctx := context.Background()
	switch op.kind {
	case OpInsert:
		return c.remote.Create(ctx, value)
	case OpUpdate:
		if op.sync != nil {
			return value, op.sync(ctx, value)
		}
		return value, c.remote.Update(ctx, value)
	default:
		return value, c.remote.Delete(ctx, value)
	}
}

func (c *Collection[T]) confirmLocked(e *entry[T], op *operation[T], sent, created T) {
	switch op.kind {
	case OpInsert:
		e.confirmed = created
		e.confirmedExists = true
		key := c.opts.Key(created)
		if key != e.id {
			// A listing loaded during the create may already hold the row.
			if dup, ok := c.entries[key]; ok && dup != e {
				c.removeLocked(dup)
			}
			placeholder := e.id
			delete(c.entries, placeholder)
			c.aliases[placeholder] = key
			e.id = key
			c.entries[key] = e
		}
		e.value = c.opts.Adopt(e.value, created)
	case OpUpdate:
		e.confirmed = sent
	case OpDelete:
		e.confirmedExists = false
	}
	c.finishLocked(op, e.id, nil)
}

func (c *Collection[T]) rollbackLocked(e *entry[T], op *operation[T], err error) {
	e.value = op.base
	e.present = op.basePresent

	syncErr := fmt.Errorf("%s %s %s: %w", c.opts.Name, op.kind, e.id, err)
	c.finishLocked(op, "", syncErr)

	for _, queued := range e.queue {
		// The entity is gone either way, which is what a queued delete wanted.
		if queued.kind == OpDelete && !e.present {
			c.finishLocked(queued, "", nil)
			continue
		}
		c.finishLocked(queued, "", fmt.Errorf("%s %s %s: %w", c.opts.Name, queued.kind, e.id, ErrDiscarded))
	}
	e.queue = nil
}

func (c *Collection[T]) removeLocked(e *entry[T]) {
	for i, o := range c.order {
		if o == e {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.entries[e.id] != e {
		return
	}
	delete(c.entries, e.id)
	for placeholder, key := range c.aliases {
		if key == e.id {
			delete(c.aliases, placeholder)
		}
	}
}
