// Package reorder keeps the load order of a mod collection responsive while
// position changes are sent to the backend in the background.
package reorder

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"arma3-server-manager/logger"
)

const DefaultDebounce = 300 * time.Millisecond

// Sender moves modID to the 1-based position on the backend.
type Sender func(ctx context.Context, modID int64, position int) error

type Options struct {
	// Debounce delays sending after the last Move. Zero uses DefaultDebounce.
	Debounce time.Duration
	// OnError is called after a failed request has reverted the order.
	OnError func(modID int64, position int, err error)
}

type move struct {
	modID    int64
	position int
	// origin is the mod's index before the run of moves that this entry coalesces.
	origin int
}

// Controller is safe for concurrent use.
type Controller struct {
	send Sender
	opts Options

	mu        sync.Mutex
	local     []int64
	confirmed []int64

	pending []move // not yet sent
	queue   []move // flushed, waiting for the sender
	sending bool
	timer   *time.Timer

	outstanding int
	settled     chan struct{}
	resync      []int64
	hasResync   bool

	subs    map[int]chan []int64
	nextSub int
}

// New creates a controller whose confirmed and local order are both order.
func New(order []int64, send Sender, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Controller{
		send:      send,
		opts:      opts,
		local:     slices.Clone(order),
		confirmed: slices.Clone(order),
		subs:      make(map[int]chan []int64),
	}
}

// Order returns the local order.
func (c *Controller) Order() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.local)
}

// Confirmed returns the last order acknowledged by the backend.
func (c *Controller) Confirmed() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.confirmed)
}

// Move drops modID at the 0-based toIndex. It reports whether the order
// changed; dropping a mod onto its own position does nothing.
func (c *Controller) Move(modID int64, toIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := slices.Index(c.local, modID)
	if from < 0 {
		return false
	}
	toIndex = max(0, min(toIndex, len(c.local)-1))
	if from == toIndex {
		return false
	}
	c.local = moveTo(c.local, modID, toIndex)
	position := toIndex + 1

	if n := len(c.pending); n > 0 && c.pending[n-1].modID == modID {
		last := &c.pending[n-1]
		if last.origin == toIndex {
			// Back where the run started.
			c.pending = c.pending[:n-1]
			c.release(1)
		} else {
			last.position = position
		}
	} else {
		c.pending = append(c.pending, move{modID: modID, position: position, origin: from})
		c.acquire()
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.opts.Debounce, c.Flush)
	c.publishLocked()
	return true
}

// Flush sends pending moves without waiting for the debounce.
func (c *Controller) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if len(c.pending) == 0 {
		return
	}
	c.queue = append(c.queue, c.pending...)
	c.pending = nil
	if !c.sending {
		c.sending = true
		go c.drain()
	}
}

// Resync replaces both orders with a fresh server listing. While requests are
// outstanding the listing is held back and applied once they settle.
func (c *Controller) Resync(order []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outstanding > 0 {
		c.resync = slices.Clone(order)
		c.hasResync = true
		return
	}
	c.local = slices.Clone(order)
	c.confirmed = slices.Clone(order)
	c.publishLocked()
}

// Busy reports whether moves are pending or in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outstanding > 0
}

// Subscribe returns a channel holding the latest local order.
func (c *Controller) Subscribe() (<-chan []int64, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan []int64, 1)
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- slices.Clone(c.local)

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

// Settle blocks until every move has been confirmed or reverted. Pending
// moves are still subject to the debounce.
func (c *Controller) Settle(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.outstanding == 0 {
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

// Close flushes pending moves. In-flight requests are not cancelled.
func (c *Controller) Close() {
	c.Flush()
}

func (c *Controller) drain() {
	log := logger.Named("reorder")
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.sending = false
			c.mu.Unlock()
			return
		}
		m := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		err := c.send(context.Background(), m.modID, m.position)

		c.mu.Lock()
		if err == nil {
			c.confirmed = moveTo(c.confirmed, m.modID, m.position-1)
			c.release(1)
			c.mu.Unlock()
			continue
		}

		log.Warnw("Reorder failed, reverting to confirmed order", "mod", m.modID, "position", m.position, zap.Error(err))
		dropped := len(c.queue) + len(c.pending)
		c.queue = nil
		c.pending = nil
		if c.timer != nil {
			c.timer.Stop()
			c.timer = nil
		}
		c.local = slices.Clone(c.confirmed)
		c.publishLocked()
		c.release(1 + dropped)
		c.mu.Unlock()

		if c.opts.OnError != nil {
			c.opts.OnError(m.modID, m.position, err)
		}
	}
}

func (c *Controller) acquire() {
	if c.outstanding == 0 {
		c.settled = make(chan struct{})
	}
	c.outstanding++
}

// release must be called with mu held.
func (c *Controller) release(n int) {
	c.outstanding -= n
	if c.outstanding > 0 {
		return
	}
	c.outstanding = 0
	if c.hasResync {
		c.local = c.resync
		c.confirmed = slices.Clone(c.resync)
		c.resync = nil
		c.hasResync = false
		c.publishLocked()
	}
	close(c.settled)
}

func (c *Controller) publishLocked() {
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- slices.Clone(c.local)
	}
}

// moveTo returns order with modID removed and reinserted at index, which is
// how the backend shifts the neighbours of a moved mod.
func moveTo(order []int64, modID int64, index int) []int64 {
	from := slices.Index(order, modID)
	if from < 0 {
		return order
	}
	out := slices.Delete(slices.Clone(order), from, from+1)
	index = max(0, min(index, len(out)))
	return slices.Insert(out, index, modID)
}
