package format

import "arma3-server-manager/arma"

var actionLabels = map[string]string{
	arma.ScheduleServerRestart: "Restart Server",
	arma.ScheduleServerStart:   "Start Server",
	arma.ScheduleServerStop:    "Stop Server",
	arma.ScheduleModUpdate:     "Update Mods",
}

// ActionLabel names a schedule action; unknown actions are returned as is.
func ActionLabel(action string) string {
	if label, ok := actionLabels[action]; ok {
		return label
	}
	return action
}

func StatusText(enabled bool) string {
	if enabled {
		return "Active"
	}
	return "Inactive"
}
