package reorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	fail  map[int64]error
	gate  chan struct{}
}

func (r *recorder) send(_ context.Context, modID int64, position int) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("%d@%d", modID, position))
	return r.fail[modID]
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func settle(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Settle(ctx); err != nil {
		t.Fatalf("Settle: %v", err)
	}
}

func TestMoveToOwnPositionIsNoop(t *testing.T) {
	rec := &recorder{}
	c := New([]int64{1, 2, 3}, rec.send, Options{Debounce: time.Millisecond})

	if c.Move(2, 1) {
		t.Error("Move onto own position reported a change")
	}
	if c.Busy() {
		t.Error("controller busy after no-op move")
	}
	time.Sleep(20 * time.Millisecond)
	if calls := rec.Calls(); len(calls) != 0 {
		t.Errorf("expected no requests, got %v", calls)
	}
}

func TestMoveUpdatesLocalOrderImmediately(t *testing.T) {
	rec := &recorder{gate: make(chan struct{})}
	c := New([]int64{1, 2, 3, 4}, rec.send, Options{Debounce: time.Millisecond})

	c.Move(4, 0)
	if diff := cmp.Diff([]int64{4, 1, 2, 3}, c.Order()); diff != "" {
		t.Errorf("local order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1, 2, 3, 4}, c.Confirmed()); diff != "" {
		t.Errorf("confirmed order changed before the backend answered:\n%s", diff)
	}

	close(rec.gate)
	settle(t, c)
	if diff := cmp.Diff([]string{"4@1"}, rec.Calls()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{4, 1, 2, 3}, c.Confirmed()); diff != "" {
		t.Errorf("confirmed order mismatch (-want +got):\n%s", diff)
	}
}

func TestDebounceCoalescesConsecutiveMovesOfSameMod(t *testing.T) {
	rec := &recorder{}
	c := New([]int64{1, 2, 3, 4}, rec.send, Options{Debounce: 50 * time.Millisecond})

	c.Move(1, 1)
	c.Move(1, 2)
	c.Move(1, 3)
	settle(t, c)

	if diff := cmp.Diff([]string{"1@4"}, rec.Calls()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestMovesOfDifferentModsAreSentInCallOrder(t *testing.T) {
	rec := &recorder{}
	c := New([]int64{1, 2, 3, 4}, rec.send, Options{Debounce: 20 * time.Millisecond})

	c.Move(1, 3) // 2 3 4 1
	c.Move(2, 2) // 3 4 2 1
	c.Move(1, 0) // 1 3 4 2
	settle(t, c)

	if diff := cmp.Diff([]string{"1@4", "2@3", "1@1"}, rec.Calls()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(c.Order(), c.Confirmed()); diff != "" {
		t.Errorf("confirmed order diverged from local (-local +confirmed):\n%s", diff)
	}
}

func TestMovingBackToStartCancelsRequest(t *testing.T) {
	rec := &recorder{}
	c := New([]int64{1, 2, 3}, rec.send, Options{Debounce: 20 * time.Millisecond})

	c.Move(3, 0)
	c.Move(3, 2)
	if c.Busy() {
		t.Error("controller busy after net-zero move")
	}
	time.Sleep(60 * time.Millisecond)
	if calls := rec.Calls(); len(calls) != 0 {
		t.Errorf("expected no requests, got %v", calls)
	}
}

func TestFailureRevertsToConfirmedOrder(t *testing.T) {
	rec := &recorder{fail: map[int64]error{3: errors.New("conflict")}}
	var failed []int64
	var mu sync.Mutex
	c := New([]int64{1, 2, 3}, rec.send, Options{
		Debounce: time.Millisecond,
		OnError: func(modID int64, _ int, _ error) {
			mu.Lock()
			failed = append(failed, modID)
			mu.Unlock()
		},
	})

	c.Move(3, 0)
	settle(t, c)

	if diff := cmp.Diff([]int64{1, 2, 3}, c.Order()); diff != "" {
		t.Errorf("order not reverted (-want +got):\n%s", diff)
	}
	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(failed)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]int64{3}, failed); diff != "" {
		t.Errorf("OnError calls mismatch (-want +got):\n%s", diff)
	}
}

func TestResyncIsDeferredWhileBusy(t *testing.T) {
	rec := &recorder{gate: make(chan struct{})}
	c := New([]int64{1, 2, 3}, rec.send, Options{Debounce: time.Millisecond})

	c.Move(1, 2)
	c.Resync([]int64{9, 8, 7})
	if diff := cmp.Diff([]int64{2, 3, 1}, c.Order()); diff != "" {
		t.Errorf("resync applied while busy (-want +got):\n%s", diff)
	}

	close(rec.gate)
	settle(t, c)
	if diff := cmp.Diff([]int64{9, 8, 7}, c.Order()); diff != "" {
		t.Errorf("deferred resync not applied (-want +got):\n%s", diff)
	}
}

func TestSubscribeSeesLocalMoves(t *testing.T) {
	rec := &recorder{gate: make(chan struct{})}
	defer close(rec.gate)
	c := New([]int64{1, 2}, rec.send, Options{Debounce: time.Hour})
	ch, cancel := c.Subscribe()
	defer cancel()

	<-ch
	c.Move(2, 0)
	if diff := cmp.Diff([]int64{2, 1}, <-ch); diff != "" {
		t.Errorf("published order mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveTo(t *testing.T) {
	tests := []struct {
		name  string
		order []int64
		mod   int64
		index int
		want  []int64
	}{
		{"down", []int64{1, 2, 3, 4}, 1, 2, []int64{2, 3, 1, 4}},
		{"up", []int64{1, 2, 3, 4}, 4, 1, []int64{1, 4, 2, 3}},
		{"clamped", []int64{1, 2, 3}, 1, 10, []int64{2, 3, 1}},
		{"missing", []int64{1, 2}, 5, 0, []int64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, moveTo(tt.order, tt.mod, tt.index)); diff != "" {
				t.Errorf("moveTo mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
