package cmd

import (
	"strings"

	"arma3-server-manager/format"
)

// Screen is a top-level TUI view.
type Screen string

const (
	ScreenServer      Screen = "server"
	ScreenMods        Screen = "mods"
	ScreenCollections Screen = "collections"
	ScreenReorder     Screen = "reorder"
	ScreenSchedules   Screen = "schedules"
)

var screenTitles = map[Screen]string{
	ScreenServer:      "Server",
	ScreenMods:        "Mods",
	ScreenCollections: "Collections",
	ScreenReorder:     "Load Order",
	ScreenSchedules:   "Schedules",
}

// AppState is the navigation and command palette state of the TUI. It is a
// plain value: every transition returns a new state.
type AppState struct {
	Screen  Screen
	History []Screen
	// CollectionID is the local id of the collection open on ScreenReorder.
	CollectionID   string
	CollectionName string

	PaletteOpen   bool
	PaletteQuery  string
	PaletteCursor int
}

func NewAppState() AppState {
	return AppState{Screen: ScreenServer}
}

// Navigate shows to, remembering the current screen for Back.
func (s AppState) Navigate(to Screen) AppState {
	if to == s.Screen {
		return s
	}
	s.History = append(append([]Screen(nil), s.History...), s.Screen)
	s.Screen = to
	s.PaletteOpen = false
	return s
}

// OpenReorder navigates to the load order of collection id.
func (s AppState) OpenReorder(id, name string) AppState {
	s = s.Navigate(ScreenReorder)
	s.CollectionID = id
	s.CollectionName = name
	return s
}

// Back returns to the previous screen; the first screen stays put.
func (s AppState) Back() AppState {
	if len(s.History) == 0 {
		return s
	}
	if s.Screen == ScreenReorder {
		s.CollectionID = ""
		s.CollectionName = ""
	}
	n := len(s.History)
	s.Screen = s.History[n-1]
	s.History = s.History[:n-1:n-1]
	return s
}

// Path is the breadcrumb path of the current screen.
func (s AppState) Path() string {
	if s.Screen == ScreenReorder {
		return "/collections/" + s.CollectionName + "/load-order"
	}
	return "/" + string(s.Screen)
}

// Breadcrumbs labels Path; navigate receives the path of a clicked crumb.
func (s AppState) Breadcrumbs(navigate func(string)) []format.Breadcrumb {
	return format.BuildBreadcrumbs(s.Path(), navigate, format.BreadcrumbOptions{})
}

func (s AppState) OpenPalette() AppState {
	s.PaletteOpen = true
	s.PaletteQuery = ""
	s.PaletteCursor = 0
	return s
}

func (s AppState) ClosePalette() AppState {
	s.PaletteOpen = false
	s.PaletteQuery = ""
	s.PaletteCursor = 0
	return s
}

// TypePalette edits the palette query; backspace removes the last rune.
func (s AppState) TypePalette(key string) AppState {
	switch key {
	case "backspace":
		if r := []rune(s.PaletteQuery); len(r) > 0 {
			s.PaletteQuery = string(r[:len(r)-1])
		}
	default:
		s.PaletteQuery += key
	}
	s.PaletteCursor = 0
	return s
}

// paletteAction is an entry of the command palette.
type paletteAction struct {
	Label  string
	Screen Screen // navigation target, empty for other actions
	Action string
}

var paletteActions = []paletteAction{
	{Label: "Go to Server", Screen: ScreenServer},
	{Label: "Go to Mods", Screen: ScreenMods},
	{Label: "Go to Collections", Screen: ScreenCollections},
	{Label: "Go to Schedules", Screen: ScreenSchedules},
	{Label: "Start Server", Action: "server:start"},
	{Label: "Stop Server", Action: "server:stop"},
	{Label: "Restart Server", Action: "server:restart"},
	{Label: "Refresh", Action: "refresh"},
	{Label: "Quit", Action: "quit"},
}

// filterPalette keeps actions whose label contains every word of query.
func filterPalette(query string) []paletteAction {
	words := strings.Fields(strings.ToLower(query))
	var out []paletteAction
	for _, a := range paletteActions {
		label := strings.ToLower(a.Label)
		match := true
		for _, w := range words {
			if !strings.Contains(label, w) {
				match = false
				break
			}
		}
		if match {
			out = append(out, a)
		}
	}
	return out
}
