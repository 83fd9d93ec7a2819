package db

import (
	"gorm.io/gorm"
)

// Preference is a persisted client-side setting (key/value).
type Preference struct {
	gorm.Model
	Key   string `gorm:"column:pref_key;uniqueIndex"`
	Value string
}

// Sync outcomes recorded in the journal.
const (
	SyncSucceeded  = "succeeded"
	SyncRolledBack = "rolled_back"
)

// SyncRecord journals the outcome of a background mutation against the backend.
type SyncRecord struct {
	gorm.Model
	Resource  string `gorm:"index"` // mods, collections, schedules, server
	Operation string                // insert, update, delete, reorder, ...
	EntityKey string                // local or server identity
	Status    string
	Error     string
}

func (SyncRecord) TableName() string {
	return "sync_journal"
}
