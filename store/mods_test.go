package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"arma3-server-manager/arma"
	"arma3-server-manager/db"
)

func TestModsRefreshNamesUnnamedMods(t *testing.T) {
	api := newFakeAPI()
	api.mods = []arma.ModSubscription{{ID: 1, SteamID: 450814997, Name: "CBA_A3"}, {ID: 2, SteamID: 42}}
	mods := NewMods(api, nil)

	if err := mods.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	var names []string
	for _, m := range mods.Values() {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"CBA_A3", "Mod 42"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestModsSubscribeSkipsExistingAndAdoptsIDs(t *testing.T) {
	api := newFakeAPI()
	api.mods = []arma.ModSubscription{{ID: 1, SteamID: 100, Name: "Existing"}}
	mods := NewMods(api, nil)
	if err := mods.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	results := mods.Subscribe([]int64{100, 200})
	if len(results) != 1 {
		t.Fatalf("expected one new subscription, got %d", len(results))
	}
	if _, ok := mods.FindBySteamID(200); !ok {
		t.Fatal("new subscription not visible before sync")
	}
	settle(t, mods)

	if err := results[0].Err(); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	item, _ := mods.FindBySteamID(200)
	if item.Value.ID != 1001 || item.ID != "1001" {
		t.Errorf("subscription not reconciled: %+v", item)
	}
	if diff := cmp.Diff([]string{"add_mods"}, api.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestModsRemoveUnknownSteamID(t *testing.T) {
	mods := NewMods(newFakeAPI(), nil)
	if _, err := mods.Remove(5); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestModsEditFailureIsJournaled(t *testing.T) {
	conn := openTestDB(t)
	api := newFakeAPI()
	api.failUpdate = true
	api.mods = []arma.ModSubscription{{ID: 3, SteamID: 300, Name: "Before"}}
	mods := NewMods(api, conn)
	if err := mods.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	res, err := mods.Edit(300, func(m arma.ModSubscription) arma.ModSubscription {
		m.Name = "After"
		return m
	})
	if err != nil {
		t.Fatal(err)
	}
	settle(t, mods)

	if res.Err() == nil {
		t.Fatal("expected sync error")
	}
	if got, _ := mods.FindBySteamID(300); got.Value.Name != "Before" {
		t.Errorf("name after rollback = %q", got.Value.Name)
	}
	eventually(t, func() bool {
		records, err := db.RecentSyncRecords(conn, 10)
		return err == nil && len(records) == 1 && records[0].Status == db.SyncRolledBack
	}, "rollback not journaled")
}

func TestModsDownloadMarksRequested(t *testing.T) {
	api := newFakeAPI()
	api.mods = []arma.ModSubscription{{ID: 4, SteamID: 400}}
	mods := NewMods(api, nil)
	if err := mods.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	job, err := mods.Download(context.Background(), 400)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if job != "job-1" {
		t.Errorf("job = %q", job)
	}
	item, _ := mods.FindBySteamID(400)
	if item.Value.Status != arma.ModStatusInstallRequested {
		t.Errorf("status = %q, want %q", item.Value.Status, arma.ModStatusInstallRequested)
	}
	if item.Pending {
		t.Error("local status mark should not create a background operation")
	}
}
