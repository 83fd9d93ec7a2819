package db

import (
	"gorm.io/gorm"
)

// RecordSync appends an entry to the sync journal. A nil conn is a no-op so
// callers without a local database (tests, one-shot commands) can share code paths.
func RecordSync(conn *gorm.DB, resource, operation, key string, syncErr error) error {
	if conn == nil {
		return nil
	}
	rec := SyncRecord{
		Resource:  resource,
		Operation: operation,
		EntityKey: key,
		Status:    SyncSucceeded,
	}
	if syncErr != nil {
		rec.Status = SyncRolledBack
		rec.Error = syncErr.Error()
	}
	return conn.Create(&rec).Error
}

// RecentSyncRecords returns the newest journal entries first.
func RecentSyncRecords(conn *gorm.DB, limit int) ([]SyncRecord, error) {
	var records []SyncRecord
	q := conn.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetPreference returns the stored value for key and whether it exists.
func GetPreference(conn *gorm.DB, key string) (string, bool, error) {
	var pref Preference
	res := conn.Where("pref_key = ?", key).Limit(1).Find(&pref)
	if res.Error != nil {
		return "", false, res.Error
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return pref.Value, true, nil
}

// SetPreference upserts key.
func SetPreference(conn *gorm.DB, key, value string) error {
	var pref Preference
	res := conn.Where("pref_key = ?", key).Limit(1).Find(&pref)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return conn.Create(&Preference{Key: key, Value: value}).Error
	}
	pref.Value = value
	return conn.Save(&pref).Error
}
