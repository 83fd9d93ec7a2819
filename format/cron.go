// Package format holds the pure presentation helpers shared by the CLI and TUI.
package format

import (
	"errors"
	"fmt"
)

var ErrInvalidUnit = errors.New("unit must be minutes, hours or days")

// ToCron builds a cron expression that fires every interval units.
func ToCron(interval int, unit string) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive, got %d", interval)
	}
	switch unit {
	case "minutes":
		return fmt.Sprintf("*/%d * * * *", interval), nil
	case "hours":
		return fmt.Sprintf("0 */%d * * *", interval), nil
	case "days":
		return fmt.Sprintf("0 0 */%d * *", interval), nil
	}
	return "", fmt.Errorf("%q: %w", unit, ErrInvalidUnit)
}
