package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"arma3-server-manager/arma"
	"arma3-server-manager/db"
)

var errBackend = errors.New("backend unavailable")

// fakeAPI implements every store API interface in memory.
type fakeAPI struct {
	mu sync.Mutex

	mods        []arma.ModSubscription
	collections []arma.Collection
	schedules   []arma.Schedule
	servers     []arma.ServerConfig
	nextID      int64

	failSetCollection bool
	failUpdate        bool
	calls             []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 1000}
}

func (f *fakeAPI) call(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) newID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func (f *fakeAPI) ListModSubscriptions(context.Context) ([]arma.ModSubscription, error) {
	return append([]arma.ModSubscription(nil), f.mods...), nil
}

func (f *fakeAPI) AddModSubscriptions(_ context.Context, steamIDs []int64) ([]int64, error) {
	f.call("add_mods")
	ids := make([]int64, len(steamIDs))
	for i := range steamIDs {
		ids[i] = f.newID()
	}
	return ids, nil
}

func (f *fakeAPI) UpdateModSubscription(context.Context, int64, arma.ModUpdate) error {
	f.call("update_mod")
	if f.failUpdate {
		return errBackend
	}
	return nil
}

func (f *fakeAPI) RemoveModSubscription(context.Context, int64) error {
	f.call("remove_mod")
	return nil
}

func (f *fakeAPI) DownloadMod(context.Context, int64) (string, error) {
	f.call("download")
	return "job-1", nil
}

func (f *fakeAPI) UninstallMod(context.Context, int64) (string, error) {
	f.call("uninstall")
	return "job-2", nil
}

func (f *fakeAPI) GetModHelper(context.Context, int64) (*arma.ModHelper, error) {
	return &arma.ModHelper{Title: "Helper"}, nil
}

func (f *fakeAPI) ListCollections(context.Context) ([]arma.Collection, error) {
	return append([]arma.Collection(nil), f.collections...), nil
}

func (f *fakeAPI) CreateCollection(context.Context, arma.NewCollection) (int64, error) {
	f.call("create_collection")
	return f.newID(), nil
}

func (f *fakeAPI) UpdateCollection(context.Context, int64, arma.CollectionUpdate) error {
	f.call("update_collection")
	if f.failUpdate {
		return errBackend
	}
	return nil
}

func (f *fakeAPI) DeleteCollection(context.Context, int64) error {
	f.call("delete_collection")
	return nil
}

func (f *fakeAPI) AddModsToCollection(context.Context, int64, []int64) error {
	f.call("add_to_collection")
	return nil
}

func (f *fakeAPI) RemoveModFromCollection(context.Context, int64, int64) error {
	f.call("remove_from_collection")
	return nil
}

func (f *fakeAPI) ReorderModInCollection(context.Context, int64, int64, int) error {
	f.call("reorder")
	return nil
}

func (f *fakeAPI) ListServers(context.Context) ([]arma.ServerConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]arma.ServerConfig(nil), f.servers...), nil
}

func (f *fakeAPI) GetServer(_ context.Context, id int64, _ bool) (*arma.ServerConfig, error) {
	for _, s := range f.servers {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, errBackend
}

func (f *fakeAPI) ActivateServer(context.Context, int64) error {
	f.call("activate_server")
	return nil
}

func (f *fakeAPI) SetServerCollection(_ context.Context, id int64, collectionID *int64) error {
	f.call("set_server_collection")
	if f.failSetCollection {
		return errBackend
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.servers {
		if f.servers[i].ID == id {
			f.servers[i].CollectionID = collectionID
		}
	}
	return nil
}

func (f *fakeAPI) PerformServerAction(_ context.Context, action arma.ServerAction) (*arma.ActionResponse, error) {
	f.call(string(action))
	return &arma.ActionResponse{Message: "ok"}, nil
}

func (f *fakeAPI) ListSchedules(context.Context) ([]arma.Schedule, error) {
	return append([]arma.Schedule(nil), f.schedules...), nil
}

func (f *fakeAPI) CreateSchedule(context.Context, arma.ScheduleRequest) (int64, error) {
	f.call("create_schedule")
	return f.newID(), nil
}

func (f *fakeAPI) UpdateSchedule(context.Context, int64, arma.ScheduleUpdate) error {
	f.call("update_schedule")
	return nil
}

func (f *fakeAPI) ToggleSchedule(context.Context, int64, bool) error {
	f.call("toggle_schedule")
	return nil
}

func (f *fakeAPI) DeleteSchedule(context.Context, int64) error {
	f.call("delete_schedule")
	return nil
}

func (f *fakeAPI) TriggerSchedule(context.Context, int64) (string, error) {
	f.call("trigger_schedule")
	return "triggered", nil
}

func (f *fakeAPI) ListNotifications(context.Context) ([]arma.Notification, error) {
	return nil, nil
}

func (f *fakeAPI) CreateNotification(context.Context, arma.NotificationRequest) (int64, error) {
	f.call("create_notification")
	return f.newID(), nil
}

func (f *fakeAPI) UpdateNotification(context.Context, int64, arma.NotificationUpdate) error {
	f.call("update_notification")
	return nil
}

func (f *fakeAPI) DeleteNotification(context.Context, int64) error {
	f.call("delete_notification")
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

type settler interface {
	Settle(ctx context.Context) error
}

func settle(t *testing.T, s settler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Settle(ctx); err != nil {
		t.Fatalf("Settle: %v", err)
	}
}

// eventually polls cond until it holds or a second passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
