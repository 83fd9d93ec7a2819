// Package store holds the per-resource state shared by the CLI and the TUI.
// Each store mirrors one backend resource in an optimistic collection and
// journals every background sync outcome to the local database.
package store

import (
	"errors"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"arma3-server-manager/arma"
	"arma3-server-manager/db"
	"arma3-server-manager/logger"
	"arma3-server-manager/optimistic"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNoActiveServer = errors.New("no active server")
)

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// journal builds the success and failure hooks for a collection of resource.
func journal(conn *gorm.DB, resource string) (func(optimistic.Op, string), func(optimistic.Op, string, error)) {
	log := logger.Named(resource)
	record := func(op optimistic.Op, key string, syncErr error) {
		if err := db.RecordSync(conn, resource, string(op), key, syncErr); err != nil {
			log.Warnw("Failed to write sync journal", "op", op, "key", key, zap.Error(err))
		}
	}
	onSuccess := func(op optimistic.Op, key string) {
		log.Debugw("Synced", "op", op, "key", key)
		record(op, key, nil)
	}
	onError := func(op optimistic.Op, key string, err error) {
		log.Errorw("Sync failed, rolled back", "op", op, "key", key, "message", arma.ErrorMessage(err), zap.Error(err))
		record(op, key, err)
	}
	return onSuccess, onError
}
