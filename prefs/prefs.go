// Package prefs holds client-side preferences persisted in the local database.
package prefs

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"arma3-server-manager/db"
	"arma3-server-manager/logger"
)

const (
	rowsPerPageKey     = "dataTableRowsPerPage"
	DefaultRowsPerPage = 20
)

// ValidPageSizes is the allow-list for rows-per-page.
var ValidPageSizes = []int{20, 50, 100}

var ErrInvalidPageSize = errors.New("invalid page size")

type Store struct {
	conn *gorm.DB
}

func New(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

// RowsPerPage returns the stored page size, or DefaultRowsPerPage when nothing
// valid is stored or the database is unavailable.
func (s *Store) RowsPerPage() int {
	if s == nil || s.conn == nil {
		return DefaultRowsPerPage
	}
	raw, ok, err := db.GetPreference(s.conn, rowsPerPageKey)
	if err != nil {
		logger.Log.Warnw("Failed to read pagination preference", zap.Error(err))
		return DefaultRowsPerPage
	}
	if !ok {
		return DefaultRowsPerPage
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !slices.Contains(ValidPageSizes, n) {
		logger.Log.Warnw("Ignoring invalid stored page size", zap.String("value", raw))
		return DefaultRowsPerPage
	}
	return n
}

// SetRowsPerPage validates size against ValidPageSizes before persisting it.
func (s *Store) SetRowsPerPage(size int) error {
	if !slices.Contains(ValidPageSizes, size) {
		return fmt.Errorf("%w: %d (must be one of %v)", ErrInvalidPageSize, size, ValidPageSizes)
	}
	if s == nil || s.conn == nil {
		return errors.New("preferences database not initialized")
	}
	return db.SetPreference(s.conn, rowsPerPageKey, strconv.Itoa(size))
}
