package prefs

import (
	"errors"
	"path/filepath"
	"testing"

	"arma3-server-manager/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("db.Open failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(conn)
}

func TestRowsPerPageDefault(t *testing.T) {
	s := newTestStore(t)
	if got := s.RowsPerPage(); got != DefaultRowsPerPage {
		t.Errorf("RowsPerPage() = %d, want %d", got, DefaultRowsPerPage)
	}

	var nilStore *Store
	if got := nilStore.RowsPerPage(); got != DefaultRowsPerPage {
		t.Errorf("nil store RowsPerPage() = %d, want %d", got, DefaultRowsPerPage)
	}
}

func TestSetRowsPerPage(t *testing.T) {
	s := newTestStore(t)

	for _, size := range ValidPageSizes {
		if err := s.SetRowsPerPage(size); err != nil {
			t.Fatalf("SetRowsPerPage(%d) failed: %v", size, err)
		}
		if got := s.RowsPerPage(); got != size {
			t.Errorf("RowsPerPage() = %d, want %d", got, size)
		}
	}

	for _, size := range []int{0, 10, 25, 1000, -20} {
		if err := s.SetRowsPerPage(size); !errors.Is(err, ErrInvalidPageSize) {
			t.Errorf("SetRowsPerPage(%d) error = %v, want ErrInvalidPageSize", size, err)
		}
	}
	if got := s.RowsPerPage(); got != 100 {
		t.Errorf("rejected sizes must not overwrite the stored value, got %d", got)
	}
}

func TestRowsPerPageIgnoresTamperedValue(t *testing.T) {
	s := newTestStore(t)
	if err := db.SetPreference(s.conn, rowsPerPageKey, "37"); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if got := s.RowsPerPage(); got != DefaultRowsPerPage {
		t.Errorf("RowsPerPage() = %d, want default for invalid stored value", got)
	}
	if err := db.SetPreference(s.conn, rowsPerPageKey, "abc"); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if got := s.RowsPerPage(); got != DefaultRowsPerPage {
		t.Errorf("RowsPerPage() = %d, want default for non-numeric value", got)
	}
}
