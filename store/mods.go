package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"arma3-server-manager/arma"
	"arma3-server-manager/logger"
	"arma3-server-manager/optimistic"
)

// ModAPI is the slice of the backend client used by Mods.
type ModAPI interface {
	ListModSubscriptions(ctx context.Context) ([]arma.ModSubscription, error)
	AddModSubscriptions(ctx context.Context, steamIDs []int64) ([]int64, error)
	UpdateModSubscription(ctx context.Context, modID int64, update arma.ModUpdate) error
	RemoveModSubscription(ctx context.Context, modID int64) error
	DownloadMod(ctx context.Context, modID int64) (string, error)
	UninstallMod(ctx context.Context, modID int64) (string, error)
	GetModHelper(ctx context.Context, modID int64) (*arma.ModHelper, error)
}

// Mods mirrors the mod subscriptions. Callers address mods by Steam id.
type Mods struct {
	*optimistic.Collection[arma.ModSubscription]
	api ModAPI
	log *zap.SugaredLogger
}

func NewMods(api ModAPI, conn *gorm.DB) *Mods {
	onSuccess, onError := journal(conn, "mods")
	m := &Mods{api: api, log: logger.Named("mods")}
	m.Collection = optimistic.New[arma.ModSubscription](optimistic.RemoteFuncs[arma.ModSubscription]{
		CreateFunc: m.create,
		UpdateFunc: m.update,
		DeleteFunc: func(ctx context.Context, mod arma.ModSubscription) error {
			return api.RemoveModSubscription(ctx, mod.ID)
		},
	}, optimistic.Options[arma.ModSubscription]{
		Name:      "mod",
		Key:       func(mod arma.ModSubscription) string { return idKey(mod.ID) },
		Adopt:     adoptMod,
		OnSuccess: onSuccess,
		OnError:   onError,
	})
	return m
}

func adoptMod(draft, server arma.ModSubscription) arma.ModSubscription {
	draft.ID = server.ID
	return draft
}

func (m *Mods) create(ctx context.Context, mod arma.ModSubscription) (arma.ModSubscription, error) {
	ids, err := m.api.AddModSubscriptions(ctx, []int64{mod.SteamID})
	if err != nil {
		return arma.ModSubscription{}, err
	}
	if len(ids) == 0 {
		return arma.ModSubscription{}, fmt.Errorf("subscribing to %d returned no id", mod.SteamID)
	}
	mod.ID = ids[0]
	return mod, nil
}

func (m *Mods) update(ctx context.Context, mod arma.ModSubscription) error {
	return m.api.UpdateModSubscription(ctx, mod.ID, arma.ModUpdate{
		Name:         &mod.Name,
		Filename:     &mod.Filename,
		ModType:      mod.ModType,
		LocalPath:    mod.LocalPath,
		Arguments:    mod.Arguments,
		ServerMod:    &mod.ServerMod,
		ShouldUpdate: &mod.ShouldUpdate,
	})
}

// Refresh reloads the subscriptions from the backend.
func (m *Mods) Refresh(ctx context.Context) error {
	mods, err := m.api.ListModSubscriptions(ctx)
	if err != nil {
		return err
	}
	for i := range mods {
		if mods[i].Name == "" {
			mods[i].Name = fmt.Sprintf("Mod %d", mods[i].SteamID)
		}
	}
	m.Load(mods)
	return nil
}

// FindBySteamID returns the local identity and value of the mod with steamID.
func (m *Mods) FindBySteamID(steamID int64) (optimistic.Item[arma.ModSubscription], bool) {
	return m.Find(func(mod arma.ModSubscription) bool { return mod.SteamID == steamID })
}

// Subscribe adds one subscription per Steam id; already subscribed ids are skipped.
func (m *Mods) Subscribe(steamIDs []int64) []*optimistic.Result {
	results := make([]*optimistic.Result, 0, len(steamIDs))
	for _, steamID := range steamIDs {
		if _, ok := m.FindBySteamID(steamID); ok {
			m.log.Infow("Already subscribed", "steam_id", steamID)
			continue
		}
		results = append(results, m.Insert(arma.ModSubscription{
			SteamID: steamID,
			Name:    fmt.Sprintf("Mod %d", steamID),
		}))
	}
	return results
}

func (m *Mods) Remove(steamID int64) (*optimistic.Result, error) {
	item, ok := m.FindBySteamID(steamID)
	if !ok {
		return nil, fmt.Errorf("mod %d: %w", steamID, ErrNotFound)
	}
	return m.Delete(item.ID), nil
}

// Edit applies fn to the mod with steamID.
func (m *Mods) Edit(steamID int64, fn func(arma.ModSubscription) arma.ModSubscription) (*optimistic.Result, error) {
	item, ok := m.FindBySteamID(steamID)
	if !ok {
		return nil, fmt.Errorf("mod %d: %w", steamID, ErrNotFound)
	}
	return m.Update(item.ID, fn), nil
}

// Download requests an install of the mod's files and marks it as requested
// until the next refresh. It returns the backend job id.
func (m *Mods) Download(ctx context.Context, steamID int64) (string, error) {
	return m.requestJob(ctx, steamID, arma.ModStatusInstallRequested, m.api.DownloadMod)
}

// Uninstall requests removal of the mod's files; the subscription is kept.
func (m *Mods) Uninstall(ctx context.Context, steamID int64) (string, error) {
	return m.requestJob(ctx, steamID, "", m.api.UninstallMod)
}

func (m *Mods) requestJob(ctx context.Context, steamID int64, status string, call func(context.Context, int64) (string, error)) (string, error) {
	item, ok := m.FindBySteamID(steamID)
	if !ok {
		return "", fmt.Errorf("mod %d: %w", steamID, ErrNotFound)
	}
	if optimistic.IsPlaceholder(item.ID) {
		return "", fmt.Errorf("mod %d is still being subscribed", steamID)
	}
	jobID, err := call(ctx, item.Value.ID)
	if err != nil {
		return "", err
	}
	if status != "" {
		// The backend reports the real status on the next refresh.
		if err := m.Patch(item.ID, func(mod arma.ModSubscription) arma.ModSubscription {
			mod.Status = status
			return mod
		}); err != nil {
			m.log.Warnw("Failed to mark mod status", "steam_id", steamID, zap.Error(err))
		}
	}
	return jobID, nil
}

// Helper fetches the Workshop overview for the mod with steamID.
func (m *Mods) Helper(ctx context.Context, steamID int64) (*arma.ModHelper, error) {
	return m.api.GetModHelper(ctx, steamID)
}
