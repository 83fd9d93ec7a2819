package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"arma3-server-manager/arma"
	"arma3-server-manager/format"
	"arma3-server-manager/logger"
	"arma3-server-manager/optimistic"
	"arma3-server-manager/reorder"
	"arma3-server-manager/store"
	"arma3-server-manager/ui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Long:  `Launch an interactive TUI to control the server and manage mods, collections and schedules.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// Model represents the state of the TUI
type Model struct {
	app   *app
	ctx   context.Context
	state AppState

	server      *arma.ServerConfig
	mods        []optimistic.Item[arma.ModSubscription]
	collections []optimistic.Item[arma.Collection]
	schedules   []optimistic.Item[arma.Schedule]

	modsCh        <-chan []optimistic.Item[arma.ModSubscription]
	collectionsCh <-chan []optimistic.Item[arma.Collection]
	schedulesCh   <-chan []optimistic.Item[arma.Schedule]

	pager  paginator.Model
	cursor map[Screen]int

	reorder     *reorder.Controller
	order       []int64
	orderCh     <-chan []int64
	stopOrder   func()
	orderLabels map[int64]string

	loading      bool
	spinnerFrame int
	error        string
	message      string
	width        int
	height       int
}

func newModel(ctx context.Context, a *app, perPage int) Model {
	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.PerPage = perPage
	return Model{
		app:     a,
		ctx:     ctx,
		state:   NewAppState(),
		pager:   pager,
		cursor:  map[Screen]int{},
		loading: true,
		width:   80,
		height:  24,
	}
}

// Initialize the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		tickSpinner(),
		watch(m.modsCh, func(v []optimistic.Item[arma.ModSubscription]) tea.Msg { return modsMsg(v) }),
		watch(m.collectionsCh, func(v []optimistic.Item[arma.Collection]) tea.Msg { return collectionsMsg(v) }),
		watch(m.schedulesCh, func(v []optimistic.Item[arma.Schedule]) tea.Msg { return schedulesMsg(v) }),
	)
}

func tickSpinner() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// watch delivers the next value of ch as a message; a closed channel ends it.
func watch[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

// Message types
type modsMsg []optimistic.Item[arma.ModSubscription]

type collectionsMsg []optimistic.Item[arma.Collection]

type schedulesMsg []optimistic.Item[arma.Schedule]

type orderMsg []int64

type refreshedMsg struct {
	server *arma.ServerConfig
	err    error
}

type errorMsg string

type noticeMsg string

type spinnerTickMsg struct{}

type clearMessageMsg struct{}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case modsMsg:
		m.mods = msg
		m.pager.SetTotalPages(len(m.mods))
		m.clampCursor(ScreenMods, len(m.mods))
		return m, watch(m.modsCh, func(v []optimistic.Item[arma.ModSubscription]) tea.Msg { return modsMsg(v) })
	case collectionsMsg:
		m.collections = msg
		m.clampCursor(ScreenCollections, len(m.collections))
		m.resyncReorder()
		return m, watch(m.collectionsCh, func(v []optimistic.Item[arma.Collection]) tea.Msg { return collectionsMsg(v) })
	case schedulesMsg:
		m.schedules = msg
		m.clampCursor(ScreenSchedules, len(m.schedules))
		return m, watch(m.schedulesCh, func(v []optimistic.Item[arma.Schedule]) tea.Msg { return schedulesMsg(v) })
	case orderMsg:
		m.order = msg
		m.clampCursor(ScreenReorder, len(m.order))
		return m, watch(m.orderCh, func(v []int64) tea.Msg { return orderMsg(v) })
	case refreshedMsg:
		m.loading = false
		m.server = msg.server
		if msg.err != nil {
			return m.flashError("Refresh failed: " + errorText(msg.err))
		}
	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		if m.loading || m.reorderBusy() {
			return m, tickSpinner()
		}
	case errorMsg:
		return m.flashError(string(msg))
	case noticeMsg:
		return m.flash(string(msg))
	case clearMessageMsg:
		m.message = ""
		m.error = ""
	}
	return m, nil
}

func (m Model) flash(text string) (tea.Model, tea.Cmd) {
	m.message = text
	m.error = ""
	return m, clearAfter(3 * time.Second)
}

func (m Model) flashError(text string) (tea.Model, tea.Cmd) {
	m.error = text
	m.message = ""
	return m, clearAfter(5 * time.Second)
}

func clearAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

func (m *Model) clampCursor(screen Screen, n int) {
	m.cursor[screen] = max(0, min(m.cursor[screen], n-1))
}

func (m Model) reorderBusy() bool {
	return m.reorder != nil && m.reorder.Busy()
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.PaletteOpen {
		return m.handlePaletteKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case ":", "ctrl+p":
		m.state = m.state.OpenPalette()
		return m, nil
	case "esc":
		if m.state.Screen == ScreenReorder {
			cmd := m.leaveReorder()
			return m, cmd
		}
		m.state = m.state.Back()
		return m, nil
	case "1":
		return m.navigate(ScreenServer)
	case "2":
		return m.navigate(ScreenMods)
	case "3":
		return m.navigate(ScreenCollections)
	case "4":
		return m.navigate(ScreenSchedules)
	case "r":
		m.loading = true
		return m, tea.Batch(m.refresh(), tickSpinner())
	}

	switch m.state.Screen {
	case ScreenServer:
		return m.handleServerKey(msg)
	case ScreenMods:
		return m.handleModsKey(msg)
	case ScreenCollections:
		return m.handleCollectionsKey(msg)
	case ScreenReorder:
		return m.handleReorderKey(msg)
	case ScreenSchedules:
		return m.handleSchedulesKey(msg)
	}
	return m, nil
}

// quit flushes an open reorder controller; runTUI waits for it to settle.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.reorder != nil {
		m.reorder.Close()
	}
	return m, tea.Quit
}

func (m Model) navigate(to Screen) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.state.Screen == ScreenReorder {
		cmd = m.leaveReorder()
	}
	m.state = m.state.Navigate(to)
	return m, cmd
}

func (m *Model) moveCursor(screen Screen, delta, n int) {
	m.cursor[screen] = max(0, min(m.cursor[screen]+delta, n-1))
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	matches := filterPalette(m.state.PaletteQuery)
	switch msg.String() {
	case "esc", "ctrl+c":
		m.state = m.state.ClosePalette()
	case "up":
		m.state.PaletteCursor = max(0, m.state.PaletteCursor-1)
	case "down":
		m.state.PaletteCursor = max(0, min(m.state.PaletteCursor+1, len(matches)-1))
	case "enter":
		m.state = m.state.ClosePalette()
		if len(matches) == 0 {
			return m, nil
		}
		return m.runPalette(matches[min(m.state.PaletteCursor, len(matches)-1)])
	case "backspace":
		m.state = m.state.TypePalette("backspace")
	default:
		switch msg.Type {
		case tea.KeySpace:
			m.state = m.state.TypePalette(" ")
		case tea.KeyRunes:
			m.state = m.state.TypePalette(string(msg.Runes))
		}
	}
	return m, nil
}

func (m Model) runPalette(action paletteAction) (tea.Model, tea.Cmd) {
	if action.Screen != "" {
		return m.navigate(action.Screen)
	}
	switch action.Action {
	case "server:start":
		return m, m.serverAction("Start", m.app.server.Start)
	case "server:stop":
		return m, m.serverAction("Stop", m.app.server.Stop)
	case "server:restart":
		return m, m.serverAction("Restart", m.app.server.Restart)
	case "refresh":
		m.loading = true
		return m, tea.Batch(m.refresh(), tickSpinner())
	case "quit":
		return m.quit()
	}
	return m, nil
}

func (m Model) handleServerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		return m, m.serverAction("Start", m.app.server.Start)
	case "S":
		return m, m.serverAction("Stop", m.app.server.Stop)
	case "R":
		return m, m.serverAction("Restart", m.app.server.Restart)
	}
	return m, nil
}

func (m Model) handleModsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.mods)
	switch msg.String() {
	case "up", "k":
		m.moveCursor(ScreenMods, -1, n)
	case "down", "j":
		m.moveCursor(ScreenMods, 1, n)
	case "left", "h":
		m.pager.PrevPage()
		m.cursor[ScreenMods], _ = m.pager.GetSliceBounds(n)
	case "right", "l":
		m.pager.NextPage()
		m.cursor[ScreenMods], _ = m.pager.GetSliceBounds(n)
	case "d", "u", "x":
		if n == 0 {
			return m, nil
		}
		mod := m.mods[m.cursor[ScreenMods]].Value
		switch msg.String() {
		case "d":
			return m, m.modJob("Download", mod, m.app.mods.Download)
		case "u":
			return m, m.modJob("Uninstall", mod, m.app.mods.Uninstall)
		default:
			res, err := m.app.mods.Remove(mod.SteamID)
			if err != nil {
				return m.flashError(errorText(err))
			}
			return m, m.await("Removed "+mod.Name, res)
		}
	}
	// Keep the visible page on the cursor.
	if m.pager.PerPage > 0 {
		m.pager.Page = m.cursor[ScreenMods] / m.pager.PerPage
	}
	return m, nil
}

func (m Model) handleCollectionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.collections)
	switch msg.String() {
	case "up", "k":
		m.moveCursor(ScreenCollections, -1, n)
	case "down", "j":
		m.moveCursor(ScreenCollections, 1, n)
	case "enter", "a", "x":
		if n == 0 {
			return m, nil
		}
		item := m.collections[m.cursor[ScreenCollections]]
		switch msg.String() {
		case "enter":
			return m.enterReorder(item)
		case "a":
			return m, m.await(item.Value.Name+" is now active", m.app.collections.SetActive(item.ID))
		default:
			return m, m.await("Deleted "+item.Value.Name, m.app.collections.Delete(item.ID))
		}
	}
	return m, nil
}

func (m Model) enterReorder(item optimistic.Item[arma.Collection]) (tea.Model, tea.Cmd) {
	ctrl, err := m.app.collections.Reorderer(item.ID)
	if err != nil {
		return m.flashError(errorText(err))
	}
	ch, cancel := ctrl.Subscribe()
	m.reorder = ctrl
	m.orderCh = ch
	m.stopOrder = cancel
	m.order = ctrl.Order()
	m.orderLabels = make(map[int64]string, len(item.Value.Mods))
	for _, e := range item.Value.Mods {
		m.orderLabels[e.ModID] = entryName(e, m.app.mods)
	}
	m.cursor[ScreenReorder] = 0
	m.state = m.state.OpenReorder(item.ID, item.Value.Name)
	return m, watch(m.orderCh, func(v []int64) tea.Msg { return orderMsg(v) })
}

// resyncReorder hands a fresh listing of the open collection to the reorder
// controller, which holds it back until outstanding moves settle.
func (m *Model) resyncReorder() {
	if m.reorder == nil {
		return
	}
	for _, item := range m.collections {
		if item.ID != m.state.CollectionID {
			continue
		}
		for _, e := range item.Value.Mods {
			if _, ok := m.orderLabels[e.ModID]; !ok {
				m.orderLabels[e.ModID] = entryName(e, m.app.mods)
			}
		}
		m.reorder.Resync(store.LoadOrder(item.Value))
		m.order = m.reorder.Order()
		m.clampCursor(ScreenReorder, len(m.order))
		return
	}
}

// leaveReorder flushes the open reorder controller and copies its order into
// the collection once every move has settled.
func (m *Model) leaveReorder() tea.Cmd {
	if m.reorder == nil {
		if m.state.Screen == ScreenReorder {
			m.state = m.state.Back()
		}
		return nil
	}
	ctrl, id, cancel := m.reorder, m.state.CollectionID, m.stopOrder
	m.reorder, m.orderCh, m.stopOrder = nil, nil, nil
	if m.state.Screen == ScreenReorder {
		m.state = m.state.Back()
	}

	ctrl.Close()
	cols := m.app.collections
	ctx := m.ctx
	return func() tea.Msg {
		defer cancel()
		if err := ctrl.Settle(ctx); err != nil {
			return errorMsg("Load order not saved: " + err.Error())
		}
		if err := cols.ApplyOrder(id, ctrl.Order()); err != nil {
			logger.Log.Warnw("Failed to apply load order", zap.String("collection", id), zap.Error(err))
		}
		return nil
	}
}

func (m Model) handleReorderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.order)
	at := m.cursor[ScreenReorder]
	switch msg.String() {
	case "up", "k":
		m.moveCursor(ScreenReorder, -1, n)
	case "down", "j":
		m.moveCursor(ScreenReorder, 1, n)
	case "K", "shift+up":
		if at > 0 && m.reorder.Move(m.order[at], at-1) {
			m.cursor[ScreenReorder] = at - 1
			m.order = m.reorder.Order()
			return m, tickSpinner()
		}
	case "J", "shift+down":
		if at < n-1 && m.reorder.Move(m.order[at], at+1) {
			m.cursor[ScreenReorder] = at + 1
			m.order = m.reorder.Order()
			return m, tickSpinner()
		}
	}
	return m, nil
}

func (m Model) handleSchedulesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.schedules)
	switch msg.String() {
	case "up", "k":
		m.moveCursor(ScreenSchedules, -1, n)
	case "down", "j":
		m.moveCursor(ScreenSchedules, 1, n)
	case " ", "t":
		if n == 0 {
			return m, nil
		}
		item := m.schedules[m.cursor[ScreenSchedules]]
		if msg.String() == " " {
			return m, m.await(item.Value.Name+" "+strings.ToLower(format.StatusText(!item.Value.Enabled)), m.app.schedules.Toggle(item.ID))
		}
		schedules, ctx, id := m.app.schedules, m.ctx, item.Value.ID
		return m, func() tea.Msg {
			jobID, err := schedules.Trigger(ctx, id)
			if err != nil {
				return errorMsg("Trigger failed: " + errorText(err))
			}
			return noticeMsg(fmt.Sprintf("Triggered %s (job %s)", item.Value.Name, jobID))
		}
	}
	return m, nil
}

// await reports the background outcome of res as a message.
func (m Model) await(success string, res *optimistic.Result) tea.Cmd {
	if res == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		if err := res.Wait(ctx); err != nil {
			return errorMsg(errorText(err) + " (rolled back)")
		}
		return noticeMsg(success)
	}
}

func (m Model) modJob(action string, mod arma.ModSubscription, request func(context.Context, int64) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		jobID, err := request(ctx, mod.SteamID)
		if err != nil {
			return errorMsg(fmt.Sprintf("%s %s: %s", action, mod.Name, errorText(err)))
		}
		return noticeMsg(fmt.Sprintf("%s requested for %s (job %s)", action, mod.Name, jobID))
	}
}

func (m Model) serverAction(label string, action func(context.Context) (*arma.ActionResponse, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		res, err := action(ctx)
		if err != nil {
			return errorMsg(label + " failed: " + errorText(err))
		}
		return noticeMsg(res.Message)
	}
}

func (m Model) refresh() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		var srv *arma.ServerConfig
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return a.mods.Refresh(gctx) })
		g.Go(func() error { return a.collections.Refresh(gctx) })
		g.Go(func() error { return a.schedules.Refresh(gctx) })
		g.Go(func() error {
			var err error
			srv, err = a.server.Status(gctx)
			if errors.Is(err, store.ErrNoActiveServer) {
				return nil
			}
			return err
		})
		err := g.Wait()
		if err != nil {
			logger.Log.Errorw("Failed to refresh dashboard", zap.Error(err))
		}
		return refreshedMsg{server: srv, err: err}
	}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case m.state.PaletteOpen:
		b.WriteString(m.renderPalette())
	case m.loading && m.server == nil && len(m.mods) == 0:
		b.WriteString(ui.Title.Render(spinnerFrames[m.spinnerFrame] + " Loading..."))
		b.WriteString("\n")
	default:
		switch m.state.Screen {
		case ScreenServer:
			b.WriteString(m.renderServer())
		case ScreenMods:
			b.WriteString(m.renderMods())
		case ScreenCollections:
			b.WriteString(m.renderCollections())
		case ScreenReorder:
			b.WriteString(m.renderReorder())
		case ScreenSchedules:
			b.WriteString(m.renderSchedules())
		}
	}

	b.WriteString("\n" + renderFooter(m.state))
	if m.error != "" {
		b.WriteString("\n" + ui.ErrorText.Render(m.error))
	} else if m.message != "" {
		b.WriteString("\n" + ui.SuccessText.Render(m.message))
	}
	return b.String()
}

func (m Model) renderHeader() string {
	crumbs := m.state.Breadcrumbs(nil)
	labels := make([]string, len(crumbs))
	for i, c := range crumbs {
		labels[i] = c.Label
	}
	tabs := make([]string, 0, 4)
	for i, s := range []Screen{ScreenServer, ScreenMods, ScreenCollections, ScreenSchedules} {
		tab := fmt.Sprintf("%d %s", i+1, screenTitles[s])
		if s == m.state.Screen || (s == ScreenCollections && m.state.Screen == ScreenReorder) {
			tab = ui.Selected.Render(tab)
		} else {
			tab = ui.MutedText.Render(tab)
		}
		tabs = append(tabs, tab)
	}
	indicator := " "
	if m.loading || m.reorderBusy() {
		indicator = spinnerFrames[m.spinnerFrame]
	}
	return ui.Title.Render("ARMA 3 Server Manager") + " " + indicator + "\n" +
		strings.Join(tabs, "  ") + "\n" +
		ui.Subtitle.Render(strings.Join(labels, " › "))
}

func renderFooter(state AppState) string {
	help := "1-4: screens  r: refresh  :: commands  esc: back  q: quit"
	switch state.Screen {
	case ScreenServer:
		help = "s: start  S: stop  R: restart  " + help
	case ScreenMods:
		help = "↑/↓: select  ←/→: page  d: download  u: uninstall  x: remove  " + help
	case ScreenCollections:
		help = "enter: load order  a: activate  x: delete  " + help
	case ScreenReorder:
		help = "↑/↓: select  K/J: move up/down  esc: done"
	case ScreenSchedules:
		help = "space: toggle  t: run now  " + help
	}
	if state.PaletteOpen {
		help = "type to filter  ↑/↓: select  enter: run  esc: close"
	}
	return ui.Footer.Render(help)
}

func (m Model) renderServer() string {
	if m.server == nil {
		return ui.WarningText.Render("No active server configuration.") + "\n"
	}
	srv := m.server
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", ui.Title.Render(srv.Name))
	fmt.Fprintf(&b, "Server name: %s\n", srv.ServerName)
	fmt.Fprintf(&b, "Players:     %d\n", srv.MaxPlayers)
	if col, ok := m.activeCollection(); ok {
		fmt.Fprintf(&b, "Collection:  %s (%d mods)\n", col.Name, col.ModCount)
	} else {
		fmt.Fprintf(&b, "Collection:  %s\n", ui.MutedText.Render("none"))
	}
	return ui.Card.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m Model) activeCollection() (arma.Collection, bool) {
	for _, item := range m.collections {
		if item.Value.IsActive {
			return item.Value, true
		}
	}
	return arma.Collection{}, false
}

func (m Model) renderMods() string {
	if len(m.mods) == 0 {
		return "No mods subscribed. Use 'mods subscribe' to add some.\n"
	}
	var b strings.Builder
	b.WriteString(ui.Header.Render(modHeader()) + "\n")
	start, end := m.pager.GetSliceBounds(len(m.mods))
	for i := start; i < end; i++ {
		row := modRow(m.mods[i], m.app.cfg.Locale)
		if i == m.cursor[ScreenMods] {
			row = ui.Selected.Render(row)
		}
		b.WriteString(" " + row + "\n")
	}
	fmt.Fprintf(&b, "\n %s  %s\n", m.pager.View(), ui.MutedText.Render(fmt.Sprintf("%d mods", len(m.mods))))
	return b.String()
}

func (m Model) renderCollections() string {
	if len(m.collections) == 0 {
		return "No collections yet.\n"
	}
	var b strings.Builder
	b.WriteString(ui.Header.Render(fmt.Sprintf("%-6s %-32s %-6s %s", "ID", "NAME", "MODS", "ACTIVE")) + "\n")
	for i, item := range m.collections {
		row := collectionRow(item)
		if i == m.cursor[ScreenCollections] {
			row = ui.Selected.Render(row)
		}
		b.WriteString(" " + row + "\n")
	}
	return b.String()
}

func (m Model) renderReorder() string {
	var b strings.Builder
	for i, modID := range m.order {
		label, ok := m.orderLabels[modID]
		if !ok {
			label = fmt.Sprintf("mod #%d", modID)
		}
		row := fmt.Sprintf("%3d. %s", i+1, label)
		if i == m.cursor[ScreenReorder] {
			row = ui.Selected.Render(row)
		}
		b.WriteString(" " + row + "\n")
	}
	if m.reorderBusy() {
		b.WriteString("\n" + ui.WarningText.Render("Saving load order..."))
	}
	return b.String()
}

func (m Model) renderSchedules() string {
	if len(m.schedules) == 0 {
		return "No schedules configured.\n"
	}
	var b strings.Builder
	for i, item := range m.schedules {
		s := item.Value
		row := fmt.Sprintf("%-28s %-16s %s %s", ui.Truncate(s.Name, 26), format.ActionLabel(s.Action), ui.EnabledBadge(s.Enabled), ui.PendingMark(item.Pending))
		if i == m.cursor[ScreenSchedules] {
			row = ui.Selected.Render(row)
		}
		b.WriteString(" " + row + "\n")
	}
	return b.String()
}

func (m Model) renderPalette() string {
	var b strings.Builder
	b.WriteString("> " + m.state.PaletteQuery + "▏\n")
	matches := filterPalette(m.state.PaletteQuery)
	if len(matches) == 0 {
		b.WriteString(ui.MutedText.Render("no matching commands"))
	}
	for i, a := range matches {
		line := "  " + a.Label
		if i == m.state.PaletteCursor {
			line = ui.Selected.Render("› " + a.Label)
		}
		b.WriteString(line + "\n")
	}
	return ui.Card.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func runTUI(ctx context.Context) {
	a := bootstrap(configDir)

	m := newModel(ctx, a, a.prefs.RowsPerPage())
	var cancels []func()
	m.modsCh, cancels = subscribeTo(a.mods.Collection, cancels)
	m.collectionsCh, cancels = subscribeTo(a.collections.Collection, cancels)
	m.schedulesCh, cancels = subscribeTo(a.schedules.Collection, cancels)
	defer func() {
		for _, cancel := range slices.Backward(cancels) {
			cancel()
		}
	}()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		logger.Log.Fatalw("Failed to run TUI", zap.Error(err))
	}

	settleCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if fm, ok := final.(Model); ok && fm.reorder != nil {
		if err := fm.reorder.Settle(settleCtx); err != nil {
			logger.Log.Warnw("Exited with load order changes still syncing", zap.Error(err))
		}
		if err := a.collections.ApplyOrder(fm.state.CollectionID, fm.reorder.Order()); err != nil {
			logger.Log.Warnw("Failed to apply load order", zap.Error(err))
		}
	}
	for _, s := range []interface{ Settle(context.Context) error }{a.mods, a.collections, a.schedules} {
		if err := s.Settle(settleCtx); err != nil {
			logger.Log.Warnw("Exited with changes still syncing", zap.Error(err))
		}
	}
}

func subscribeTo[T any](c *optimistic.Collection[T], cancels []func()) (<-chan []optimistic.Item[T], []func()) {
	ch, cancel := c.Subscribe()
	return ch, append(cancels, cancel)
}
