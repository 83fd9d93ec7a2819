package arma

// --- Mods ---

// ModHelper is the Steam Workshop overview for an item.
type ModHelper struct {
	Description string   `json:"description"`
	FileSize    string   `json:"file_size"`
	PreviewURL  string   `json:"preview_url"`
	Tags        []string `json:"tags"`
	TimeUpdated string   `json:"time_updated"`
	Title       string   `json:"title"`
}

// Backend-driven transient mod states.
const (
	ModStatusInstallRequested = "install_requested"
	ModStatusInstallFailed    = "install_failed"
	ModStatusUpdateRequested  = "update_requested"
)

// ModSubscription mirrors the backend Mod model.
type ModSubscription struct {
	ID               int64   `json:"id"`
	SteamID          int64   `json:"steam_id"`
	Filename         string  `json:"filename"`
	Name             string  `json:"name"`
	ModType          *string `json:"mod_type"`
	LocalPath        *string `json:"local_path"`
	Arguments        *string `json:"arguments,omitempty"`
	ServerMod        bool    `json:"server_mod"`
	SizeBytes        *int64  `json:"size_bytes"`
	LastUpdated      *string `json:"last_updated"`
	SteamLastUpdated *string `json:"steam_last_updated"`
	ShouldUpdate     bool    `json:"should_update"`
	ImageAvailable   bool    `json:"image_available,omitempty"`
	Status           string  `json:"status,omitempty"`
}

// Installed reports whether the backend has the mod on disk.
func (m ModSubscription) Installed() bool {
	return m.LocalPath != nil && *m.LocalPath != ""
}

// ModUpdate is a partial update; nil fields are omitted.
type ModUpdate struct {
	Filename     *string `json:"filename,omitempty"`
	Name         *string `json:"name,omitempty"`
	ModType      *string `json:"mod_type,omitempty"`
	LocalPath    *string `json:"local_path,omitempty"`
	Arguments    *string `json:"arguments,omitempty"`
	ServerMod    *bool   `json:"server_mod,omitempty"`
	ShouldUpdate *bool   `json:"should_update,omitempty"`
}

// --- Collections ---

type CollectionEntry struct {
	ID           int64            `json:"id"`
	CollectionID int64            `json:"collection_id"`
	ModID        int64            `json:"mod_id"`
	LoadOrder    int              `json:"load_order"`
	AddedAt      string           `json:"added_at"`
	Mod          *ModSubscription `json:"mod,omitempty"`
}

type Collection struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	ModCount    int               `json:"mod_count"`
	Mods        []CollectionEntry `json:"mods"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
	// IsActive is derived client-side from the active server's collection_id.
	IsActive bool `json:"-"`
}

type NewCollection struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Mods        []int64 `json:"mods,omitempty"`
}

type CollectionUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Mods        []int64 `json:"mods,omitempty"`
}

// --- Server ---

type ServerConfig struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	ServerName       string  `json:"server_name"`
	MaxPlayers       int     `json:"max_players"`
	MissionFile      *string `json:"mission_file"`
	ServerConfigFile *string `json:"server_config_file"`
	BasicConfigFile  *string `json:"basic_config_file"`
	ServerMods       *string `json:"server_mods"`
	ClientMods       *string `json:"client_mods"`
	AdditionalParams *string `json:"additional_params"`
	ServerBinary     string  `json:"server_binary"`
	CollectionID     *int64  `json:"collection_id"`
	IsActive         bool    `json:"is_active"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	Password         *string `json:"password,omitempty"`
	AdminPassword    *string `json:"admin_password,omitempty"`
}

type ServerRequest struct {
	Name             *string `json:"name,omitempty"`
	Description      *string `json:"description,omitempty"`
	ServerName       *string `json:"server_name,omitempty"`
	Password         *string `json:"password,omitempty"`
	AdminPassword    *string `json:"admin_password,omitempty"`
	MaxPlayers       *int    `json:"max_players,omitempty"`
	MissionFile      *string `json:"mission_file,omitempty"`
	ServerConfigFile *string `json:"server_config_file,omitempty"`
	BasicConfigFile  *string `json:"basic_config_file,omitempty"`
	ServerMods       *string `json:"server_mods,omitempty"`
	ClientMods       *string `json:"client_mods,omitempty"`
	AdditionalParams *string `json:"additional_params,omitempty"`
	ServerBinary     *string `json:"server_binary,omitempty"`
}

type ServerAction string

const (
	ActionStart   ServerAction = "start"
	ActionStop    ServerAction = "stop"
	ActionRestart ServerAction = "restart"
)

type ActionResponse struct {
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

// --- Schedules ---

// Schedule action kinds.
const (
	ScheduleServerRestart = "server_restart"
	ScheduleServerStart   = "server_start"
	ScheduleServerStop    = "server_stop"
	ScheduleModUpdate     = "mod_update"
)

// Recurrence descriptors understood by the backend scheduler.
var ScheduleRecurrences = []string{"every_10_seconds", "every_hour", "every_day", "every_sunday", "every_month"}

const DefaultRecurrence = "every_hour"

type TaskLogEntry struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type Schedule struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	CeleryName  string         `json:"celery_name"`
	Action      string         `json:"action"`
	Enabled     bool           `json:"enabled"`
	LastOutcome *string        `json:"last_outcome,omitempty"`
	LastRun     *string        `json:"last_run,omitempty"`
	LogEntries  []TaskLogEntry `json:"log_entries,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

type ScheduleRequest struct {
	Name       string `json:"name"`
	CeleryName string `json:"celery_name"`
	Action     string `json:"action"`
	Enabled    bool   `json:"enabled"`
}

type ScheduleUpdate struct {
	Name       *string `json:"name,omitempty"`
	CeleryName *string `json:"celery_name,omitempty"`
	Action     *string `json:"action,omitempty"`
	Enabled    *bool   `json:"enabled,omitempty"`
}

// --- Notifications ---

type Notification struct {
	ID            int64   `json:"id"`
	Enabled       bool    `json:"enabled"`
	URL           string  `json:"URL"`
	SendServer    bool    `json:"send_server"`
	SendModUpdate bool    `json:"send_mod_update"`
	LastRun       *string `json:"last_run"`
	CreatedAt     *string `json:"created_at"`
	UpdatedAt     *string `json:"updated_at"`
}

type NotificationRequest struct {
	URL           string `json:"URL"`
	Enabled       bool   `json:"enabled"`
	SendServer    bool   `json:"send_server"`
	SendModUpdate bool   `json:"send_mod_update"`
}

type NotificationUpdate struct {
	URL           *string `json:"URL,omitempty"`
	Enabled       *bool   `json:"enabled,omitempty"`
	SendServer    *bool   `json:"send_server,omitempty"`
	SendModUpdate *bool   `json:"send_mod_update,omitempty"`
}

// --- Async jobs ---

type JobStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Done reports whether the job reached a terminal status.
func (j JobStatus) Done() bool {
	switch j.Status {
	case "SUCCESS", "SUCCEEDED", "FAILURE", "FAILED", "ABORTED":
		return true
	}
	return false
}

// Succeeded reports a terminal success.
func (j JobStatus) Succeeded() bool {
	return j.Status == "SUCCESS" || j.Status == "SUCCEEDED"
}

// Ptr returns a pointer to v, for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}
