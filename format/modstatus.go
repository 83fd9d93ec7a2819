package format

import "arma3-server-manager/arma"

type ModStatusType string

const (
	ModUpToDate        ModStatusType = "up-to-date"
	ModUpdateAvailable ModStatusType = "update-available"
	ModUpdating        ModStatusType = "updating"
	ModNotDownloaded   ModStatusType = "not-downloaded"
	ModDownloading     ModStatusType = "downloading"
	ModDownloadFailed  ModStatusType = "download-failed"
)

type ModStatusInfo struct {
	Type  ModStatusType
	Label string
}

// ModStatus derives the display status of a subscription. Installed mods are
// up to date unless updates are enabled and Steam has a newer revision;
// otherwise the backend's transient status decides.
func ModStatus(mod arma.ModSubscription) ModStatusInfo {
	if mod.Installed() {
		if mod.Status == arma.ModStatusUpdateRequested {
			return ModStatusInfo{ModUpdating, "Updating…"}
		}
		if mod.ShouldUpdate && newer(mod.SteamLastUpdated, mod.LastUpdated) {
			return ModStatusInfo{ModUpdateAvailable, "Update available"}
		}
		return ModStatusInfo{ModUpToDate, "Up to date"}
	}

	switch mod.Status {
	case arma.ModStatusInstallRequested:
		return ModStatusInfo{ModDownloading, "Downloading…"}
	case arma.ModStatusInstallFailed:
		return ModStatusInfo{ModDownloadFailed, "Download failed"}
	}
	return ModStatusInfo{ModNotDownloaded, "Not downloaded"}
}

func newer(a, b *string) bool {
	if a == nil || b == nil || *a == "" || *b == "" {
		return false
	}
	ta, err := ParseTimestamp(*a)
	if err != nil {
		return false
	}
	tb, err := ParseTimestamp(*b)
	if err != nil {
		return false
	}
	return ta.After(tb)
}
