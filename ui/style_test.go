package ui

import (
	"strings"
	"testing"

	"arma3-server-manager/format"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer mod name", 10, "a much ..."},
		{"déjà vu encore", 8, "déjà ..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestModStatusColor(t *testing.T) {
	if ModStatusColor(format.ModUpToDate) != ColorGreen {
		t.Error("up-to-date should be green")
	}
	if ModStatusColor(format.ModDownloadFailed) != ColorRed {
		t.Error("download-failed should be red")
	}
	if ModStatusColor(format.ModNotDownloaded) != ColorGray {
		t.Error("not-downloaded should be gray")
	}
}

func TestColorizeKeepsText(t *testing.T) {
	if out := Colorize("Active", ColorGreen); !strings.Contains(out, "Active") {
		t.Errorf("Colorize lost text: %q", out)
	}
}
