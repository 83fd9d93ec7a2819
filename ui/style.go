// Package ui holds the terminal styling and interactive forms.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"arma3-server-manager/format"
)

// Palette, as 0xRRGGBB.
const (
	ColorGreen  = 0x5FD787
	ColorYellow = 0xFFD787
	ColorRed    = 0xFF8787
	ColorBlue   = 0x5FAFFF
	ColorGray   = 0x888888
	ColorMuted  = 0x555555
)

func hex(color int) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", color))
}

// Colorize renders text in the given 0xRRGGBB color.
func Colorize(text string, color int) string {
	return lipgloss.NewStyle().Foreground(hex(color)).Render(text)
}

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(hex(ColorBlue))

	Subtitle = lipgloss.NewStyle().Foreground(hex(ColorGray))

	Header = lipgloss.NewStyle().Bold(true).Foreground(hex(ColorBlue)).Padding(0, 1)

	Footer = lipgloss.NewStyle().Foreground(hex(ColorMuted)).Italic(true)

	Selected = lipgloss.NewStyle().Background(lipgloss.Color("8")).Bold(true)

	ErrorText = lipgloss.NewStyle().Foreground(hex(ColorRed)).Bold(true)

	SuccessText = lipgloss.NewStyle().Foreground(hex(ColorGreen)).Bold(true)

	WarningText = lipgloss.NewStyle().Foreground(hex(ColorYellow))

	MutedText = lipgloss.NewStyle().Foreground(hex(ColorMuted))

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1)
)

// ModStatusColor maps a mod status to its palette color.
func ModStatusColor(status format.ModStatusType) int {
	switch status {
	case format.ModUpToDate:
		return ColorGreen
	case format.ModUpdateAvailable:
		return ColorYellow
	case format.ModDownloadFailed:
		return ColorRed
	case format.ModUpdating, format.ModDownloading:
		return ColorBlue
	default:
		return ColorGray
	}
}

// EnabledBadge renders the Active/Inactive label of a schedule or webhook.
func EnabledBadge(enabled bool) string {
	if enabled {
		return Colorize("● "+format.StatusText(true), ColorGreen)
	}
	return Colorize("○ "+format.StatusText(false), ColorMuted)
}

// PendingMark flags rows whose changes are still syncing.
func PendingMark(pending bool) string {
	if pending {
		return Colorize("⟳", ColorYellow)
	}
	return " "
}

// Truncate shortens s to maxLen runes, ending in "...".
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen || maxLen < 4 {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
