package format

import "fmt"

// FileSize renders a byte count in binary units, or "Unknown" for nil or zero.
func FileSize(bytes *int64) string {
	if bytes == nil || *bytes == 0 {
		return "Unknown"
	}
	kb := float64(*bytes) / 1024
	mb := kb / 1024
	gb := mb / 1024
	switch {
	case mb < 1:
		return fmt.Sprintf("%.3f KB", kb)
	case gb < 1:
		return fmt.Sprintf("%.2f MB", mb)
	default:
		return fmt.Sprintf("%.2f GB", gb)
	}
}
