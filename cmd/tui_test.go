package cmd

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"arma3-server-manager/arma"
	"arma3-server-manager/optimistic"
	"arma3-server-manager/reorder"
)

func testModel(t *testing.T) Model {
	t.Helper()
	m := newModel(context.Background(), &app{}, 20)
	m.loading = false
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func modItems(n int) modsMsg {
	items := make(modsMsg, n)
	for i := range items {
		id := int64(i + 1)
		items[i] = optimistic.Item[arma.ModSubscription]{
			ID:    fmt.Sprint(id),
			Value: arma.ModSubscription{ID: id, SteamID: 1000 + id, Name: fmt.Sprintf("Mod %02d", id)},
		}
	}
	return items
}

func TestModelInitialization(t *testing.T) {
	m := newModel(context.Background(), &app{}, 50)
	if !m.loading {
		t.Fatal("loading should be true initially")
	}
	if m.state.Screen != ScreenServer {
		t.Fatalf("initial screen = %s", m.state.Screen)
	}
	if m.pager.PerPage != 50 {
		t.Fatalf("PerPage = %d, want 50", m.pager.PerPage)
	}
}

func TestModelScreenKeys(t *testing.T) {
	m := press(t, testModel(t), runes("2"))
	if m.state.Screen != ScreenMods {
		t.Fatalf("screen after 2 = %s", m.state.Screen)
	}
	m = press(t, m, runes("4"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.state.Screen != ScreenMods {
		t.Errorf("esc should return to mods, got %s", m.state.Screen)
	}
}

func TestModelNavigation(t *testing.T) {
	m := press(t, testModel(t), runes("2"))
	next, _ := m.Update(modItems(3))
	m = next.(Model)

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	m = press(t, m, down, down, down)
	if got := m.cursor[ScreenMods]; got != 2 {
		t.Fatalf("cursor = %d, navigation should stop at last item", got)
	}
	m = press(t, m, up, up, up)
	if got := m.cursor[ScreenMods]; got != 0 {
		t.Fatalf("cursor = %d, navigation should stop at first item", got)
	}
}

func TestModelPagesMods(t *testing.T) {
	m := press(t, testModel(t), runes("2"))
	next, _ := m.Update(modItems(45))
	m = next.(Model)

	if m.pager.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", m.pager.TotalPages)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.pager.Page != 1 || m.cursor[ScreenMods] != 20 {
		t.Errorf("after right: page %d cursor %d", m.pager.Page, m.cursor[ScreenMods])
	}

	view := m.View()
	if !strings.Contains(view, "Mod 21") || strings.Contains(view, "Mod 01") {
		t.Errorf("second page not rendered:\n%s", view)
	}
}

func TestModelShrinkingListClampsCursor(t *testing.T) {
	m := press(t, testModel(t), runes("2"))
	next, _ := m.Update(modItems(5))
	m = press(t, next.(Model), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})

	next, _ = m.Update(modItems(2))
	m = next.(Model)
	if got := m.cursor[ScreenMods]; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
}

func TestModelPaletteNavigates(t *testing.T) {
	m := press(t, testModel(t), runes(":"))
	if !m.state.PaletteOpen {
		t.Fatal("palette not opened")
	}
	m = press(t, m, runes("s"), runes("c"), runes("h"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.state.PaletteOpen || m.state.Screen != ScreenSchedules {
		t.Errorf("palette state after enter = %+v", m.state)
	}
}

func TestModelPaletteSwallowsScreenKeys(t *testing.T) {
	m := press(t, testModel(t), runes(":"), runes("2"))
	if m.state.Screen != ScreenServer || m.state.PaletteQuery != "2" {
		t.Errorf("palette did not capture input: %+v", m.state)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state.PaletteOpen {
		t.Error("esc did not close the palette")
	}
}

func TestEmptyModList(t *testing.T) {
	m := press(t, testModel(t), runes("2"))
	if view := m.View(); !strings.Contains(view, "No mods subscribed") {
		t.Fatalf("View should explain an empty mod list:\n%s", view)
	}
}

func TestNoticeAndErrorMessages(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(noticeMsg("Saved"))
	m = next.(Model)
	if m.message != "Saved" || cmd == nil {
		t.Fatalf("notice not shown: %+v", m.message)
	}
	next, _ = m.Update(errorMsg("boom"))
	m = next.(Model)
	if m.error != "boom" || m.message != "" {
		t.Fatalf("error should replace the notice: %q %q", m.error, m.message)
	}
	next, _ = m.Update(clearMessageMsg{})
	if m = next.(Model); m.error != "" {
		t.Errorf("message not cleared")
	}
}

func reorderModel(t *testing.T, send reorder.Sender) Model {
	t.Helper()
	m := testModel(t)
	m.reorder = reorder.New([]int64{1, 2, 3}, send, reorder.Options{Debounce: time.Millisecond})
	m.order = m.reorder.Order()
	m.orderLabels = map[int64]string{1: "one", 2: "two", 3: "three"}
	m.state = m.state.OpenReorder("7", "Main Ops")
	return m
}

func listing(order ...int64) collectionsMsg {
	entries := make([]arma.CollectionEntry, len(order))
	for i, modID := range order {
		entries[i] = arma.CollectionEntry{CollectionID: 7, ModID: modID, LoadOrder: i + 1}
	}
	return collectionsMsg{{ID: "7", Value: arma.Collection{ID: 7, Name: "Main Ops", Mods: entries}}}
}

func TestCollectionsRefreshResyncsIdleReorder(t *testing.T) {
	m := reorderModel(t, func(context.Context, int64, int) error { return nil })

	next, _ := m.Update(listing(3, 1, 2, 4))
	m = next.(Model)

	if diff := cmp.Diff([]int64{3, 1, 2, 4}, m.order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got := m.orderLabels[4]; got != "mod #4" {
		t.Errorf("label for new mod = %q", got)
	}
}

func TestCollectionsRefreshWaitsForPendingMoves(t *testing.T) {
	gate := make(chan struct{})
	m := reorderModel(t, func(context.Context, int64, int) error {
		<-gate
		return nil
	})

	m.reorder.Move(1, 2)
	if !m.reorder.Busy() {
		t.Fatal("controller idle after move")
	}
	next, _ := m.Update(listing(3, 2, 1))
	m = next.(Model)
	if diff := cmp.Diff([]int64{2, 3, 1}, m.order); diff != "" {
		t.Errorf("listing applied during pending move (-want +got):\n%s", diff)
	}

	close(gate)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.reorder.Settle(ctx); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if diff := cmp.Diff([]int64{3, 2, 1}, m.reorder.Order()); diff != "" {
		t.Errorf("held back listing not applied (-want +got):\n%s", diff)
	}
}

func TestCollectionsRefreshIgnoresOtherCollections(t *testing.T) {
	m := reorderModel(t, func(context.Context, int64, int) error { return nil })
	msg := listing(3, 2, 1)
	msg[0].ID = "8"

	next, _ := m.Update(msg)
	m = next.(Model)
	if diff := cmp.Diff([]int64{1, 2, 3}, m.order); diff != "" {
		t.Errorf("order changed by another collection (-want +got):\n%s", diff)
	}
}
