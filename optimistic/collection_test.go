package optimistic

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type widget struct {
	ID   int64
	Name string
}

func widgetKey(w widget) string { return strconv.FormatInt(w.ID, 10) }

func adoptWidget(draft, server widget) widget {
	draft.ID = server.ID
	return draft
}

// fakeRemote records calls and can be told to fail or block.
type fakeRemote struct {
	mu     sync.Mutex
	nextID int64
	calls  []string
	fail   map[string]error // keyed by "op:name"
	gate   chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{nextID: 100, fail: map[string]error{}}
}

func (f *fakeRemote) record(op string, w widget) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+":"+w.Name+":"+strconv.FormatInt(w.ID, 10))
	return f.fail[op+":"+w.Name]
}

func (f *fakeRemote) Create(_ context.Context, w widget) (widget, error) {
	if err := f.record("create", w); err != nil {
		return widget{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	w.ID = f.nextID
	return w, nil
}

func (f *fakeRemote) Update(_ context.Context, w widget) error { return f.record("update", w) }
func (f *fakeRemote) Delete(_ context.Context, w widget) error { return f.record("delete", w) }

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestCollection(remote Remote[widget]) *Collection[widget] {
	return New[widget](remote, Options[widget]{Name: "widgets", Key: widgetKey, Adopt: adoptWidget})
}

func settle(t *testing.T, c *Collection[widget]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Settle(ctx); err != nil {
		t.Fatalf("Settle: %v", err)
	}
}

func TestInsertIsVisibleImmediatelyAndRekeyed(t *testing.T) {
	remote := newFakeRemote()
	remote.gate = make(chan struct{})
	c := newTestCollection(remote)

	res := c.Insert(widget{Name: "alpha"})
	items := c.Items()
	if len(items) != 1 || !IsPlaceholder(items[0].ID) || !items[0].Pending {
		t.Fatalf("expected one pending placeholder item, got %+v", items)
	}
	placeholder := res.Key()

	close(remote.gate)
	if err := res.Wait(context.Background()); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	settle(t, c)

	if res.Key() != "101" {
		t.Errorf("Key() = %q, want 101", res.Key())
	}
	got, ok := c.Get(placeholder)
	if !ok || got.ID != 101 {
		t.Errorf("placeholder lookup = %+v, %v", got, ok)
	}
	want := []Item[widget]{{ID: "101", Value: widget{ID: 101, Name: "alpha"}}}
	if diff := cmp.Diff(want, c.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertThenImmediateDeleteLeavesNothing(t *testing.T) {
	remote := newFakeRemote()
	c := newTestCollection(remote)

	ins := c.Insert(widget{Name: "ghost"})
	del := c.Delete(ins.Key())
	if len(c.Items()) != 0 {
		t.Fatalf("entity still visible after delete")
	}
	settle(t, c)

	if err := ins.Err(); err != nil {
		t.Errorf("insert: %v", err)
	}
	if err := del.Err(); err != nil {
		t.Errorf("delete: %v", err)
	}
	want := []string{"create:ghost:0", "delete:ghost:101"}
	if diff := cmp.Diff(want, remote.Calls()); diff != "" {
		t.Errorf("remote calls mismatch (-want +got):\n%s", diff)
	}
	if len(c.Items()) != 0 || c.Pending(ins.Key()) {
		t.Errorf("residual entity: %+v", c.Items())
	}
}

func TestUpdateFailureRevertsToPreviousValue(t *testing.T) {
	remote := newFakeRemote()
	remote.fail["update:broken"] = errors.New("boom")

	var mu sync.Mutex
	var failures []Op
	c := New[widget](remote, Options[widget]{
		Key:   widgetKey,
		Adopt: adoptWidget,
		OnError: func(op Op, _ string, _ error) {
			mu.Lock()
			failures = append(failures, op)
			mu.Unlock()
		},
	})
	c.Load([]widget{{ID: 1, Name: "original"}})

	res := c.Update("1", func(w widget) widget { w.Name = "broken"; return w })
	if got, _ := c.Get("1"); got.Name != "broken" {
		t.Fatalf("optimistic value not applied: %+v", got)
	}
	if err := res.Wait(context.Background()); err == nil {
		t.Fatal("expected update error")
	}
	settle(t, c)

	if got, _ := c.Get("1"); got.Name != "original" {
		t.Errorf("value after rollback = %q, want original", got.Name)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(failures)
		mu.Unlock()
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]Op{OpUpdate}, failures); diff != "" {
		t.Errorf("OnError calls mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteFailureRestoresEntity(t *testing.T) {
	remote := newFakeRemote()
	remote.fail["delete:keep"] = errors.New("forbidden")
	c := newTestCollection(remote)
	c.Load([]widget{{ID: 7, Name: "keep"}})

	res := c.Delete("7")
	if _, ok := c.Get("7"); ok {
		t.Fatal("entity visible after optimistic delete")
	}
	if err := res.Wait(context.Background()); err == nil {
		t.Fatal("expected delete error")
	}
	settle(t, c)

	got, ok := c.Get("7")
	if !ok || got.Name != "keep" {
		t.Errorf("entity not restored: %+v, %v", got, ok)
	}
}

func TestInsertFailureRemovesEntityAndDiscardsQueued(t *testing.T) {
	remote := newFakeRemote()
	remote.fail["create:bad"] = errors.New("invalid")
	remote.gate = make(chan struct{})
	c := newTestCollection(remote)

	ins := c.Insert(widget{Name: "bad"})
	upd := c.Update(ins.Key(), func(w widget) widget { w.Name = "renamed"; return w })
	close(remote.gate)
	settle(t, c)

	if ins.Err() == nil {
		t.Error("expected insert error")
	}
	if !errors.Is(upd.Err(), ErrDiscarded) {
		t.Errorf("queued update error = %v, want ErrDiscarded", upd.Err())
	}
	if len(c.Items()) != 0 {
		t.Errorf("failed insert still visible: %+v", c.Items())
	}
	if diff := cmp.Diff([]string{"create:bad:0"}, remote.Calls()); diff != "" {
		t.Errorf("remote calls mismatch (-want +got):\n%s", diff)
	}
}

func TestOperationsRunInCallOrderWithLatestIdentity(t *testing.T) {
	remote := newFakeRemote()
	remote.gate = make(chan struct{})
	c := newTestCollection(remote)

	ins := c.Insert(widget{Name: "a"})
	c.Update(ins.Key(), func(w widget) widget { w.Name = "b"; return w })
	c.Update(ins.Key(), func(w widget) widget { w.Name = "c"; return w })
	close(remote.gate)
	settle(t, c)

	want := []string{"create:a:0", "update:b:101", "update:c:101"}
	if diff := cmp.Diff(want, remote.Calls()); diff != "" {
		t.Errorf("remote calls mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownIDReportsNotFound(t *testing.T) {
	c := newTestCollection(newFakeRemote())
	if err := c.Update("nope", func(w widget) widget { return w }).Err(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update err = %v, want ErrNotFound", err)
	}
	if err := c.Delete("nope").Err(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete err = %v, want ErrNotFound", err)
	}
}

func TestLoadKeepsPendingDrafts(t *testing.T) {
	remote := newFakeRemote()
	remote.gate = make(chan struct{})
	c := newTestCollection(remote)
	c.Load([]widget{{ID: 1, Name: "one"}, {ID: 2, Name: "two"}})

	c.Update("1", func(w widget) widget { w.Name = "local"; return w })
	c.Load([]widget{{ID: 1, Name: "server"}, {ID: 3, Name: "three"}})

	want := []Item[widget]{
		{ID: "1", Pending: true, Value: widget{ID: 1, Name: "local"}},
		{ID: "3", Value: widget{ID: 3, Name: "three"}},
	}
	if diff := cmp.Diff(want, c.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
	close(remote.gate)
	settle(t, c)
}

func TestSubscribeDeliversLatestSnapshot(t *testing.T) {
	c := newTestCollection(newFakeRemote())
	ch, cancel := c.Subscribe()
	defer cancel()

	if initial := <-ch; len(initial) != 0 {
		t.Fatalf("initial snapshot = %+v", initial)
	}
	c.Load([]widget{{ID: 1, Name: "x"}})
	c.Load([]widget{{ID: 1, Name: "x"}, {ID: 2, Name: "y"}})

	latest := <-ch
	if len(latest) != 2 {
		t.Errorf("latest snapshot has %d items, want 2", len(latest))
	}
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel not closed after cancel")
	}
}

func TestLoadDuringInsertKeepsOneEntity(t *testing.T) {
	remote := newFakeRemote()
	remote.gate = make(chan struct{})
	c := newTestCollection(remote)

	ins := c.Insert(widget{Name: "a"})
	c.Load([]widget{{ID: 101, Name: "a"}})
	close(remote.gate)
	settle(t, c)

	want := []Item[widget]{{ID: "101", Value: widget{ID: 101, Name: "a"}}}
	if diff := cmp.Diff(want, c.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
	if got, ok := c.Get(ins.Key()); !ok || got.ID != 101 {
		t.Errorf("lookup by insert key = %+v, %v", got, ok)
	}
	if got, ok := c.Get("101"); !ok || got.Name != "a" {
		t.Errorf("lookup by server key = %+v, %v", got, ok)
	}
}

func TestNewRequiresKeyAndAdopt(t *testing.T) {
	tests := []struct {
		name string
		opts Options[widget]
	}{
		{"missing key", Options[widget]{Adopt: adoptWidget}},
		{"missing adopt", Options[widget]{Key: widgetKey}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("New did not panic")
				}
			}()
			New[widget](newFakeRemote(), tt.opts)
		})
	}
}

func TestUpdateSendsDraftWithServerIdentity(t *testing.T) {
	remote := newFakeRemote()
	c := newTestCollection(remote)
	c.Load([]widget{{ID: 1, Name: "old"}})

	if err := c.Update("1", func(w widget) widget { w.Name = "new"; return w }).Wait(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}
	settle(t, c)

	if diff := cmp.Diff([]string{"update:new:1"}, remote.Calls()); diff != "" {
		t.Errorf("remote calls mismatch (-want +got):\n%s", diff)
	}
}
