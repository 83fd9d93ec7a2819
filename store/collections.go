package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"arma3-server-manager/arma"
	"arma3-server-manager/db"
	"arma3-server-manager/logger"
	"arma3-server-manager/optimistic"
	"arma3-server-manager/reorder"
)

// CollectionAPI is the slice of the backend client used by Collections.
type CollectionAPI interface {
	ListCollections(ctx context.Context) ([]arma.Collection, error)
	CreateCollection(ctx context.Context, nc arma.NewCollection) (int64, error)
	UpdateCollection(ctx context.Context, id int64, update arma.CollectionUpdate) error
	DeleteCollection(ctx context.Context, id int64) error
	AddModsToCollection(ctx context.Context, id int64, modIDs []int64) error
	RemoveModFromCollection(ctx context.Context, id, modID int64) error
	ReorderModInCollection(ctx context.Context, id, modID int64, loadOrder int) error
	ListServers(ctx context.Context) ([]arma.ServerConfig, error)
	SetServerCollection(ctx context.Context, id int64, collectionID *int64) error
}

// Collections mirrors the mod collections. The active flag follows the
// collection_id of the active server.
type Collections struct {
	*optimistic.Collection[arma.Collection]
	api      CollectionAPI
	conn     *gorm.DB
	debounce time.Duration
	log      *zap.SugaredLogger
}

func NewCollections(api CollectionAPI, conn *gorm.DB, debounce time.Duration) *Collections {
	onSuccess, onError := journal(conn, "collections")
	c := &Collections{api: api, conn: conn, debounce: debounce, log: logger.Named("collections")}
	c.Collection = optimistic.New[arma.Collection](optimistic.RemoteFuncs[arma.Collection]{
		CreateFunc: func(ctx context.Context, col arma.Collection) (arma.Collection, error) {
			desc := ""
			if col.Description != nil {
				desc = *col.Description
			}
			id, err := api.CreateCollection(ctx, arma.NewCollection{Name: col.Name, Description: desc})
			if err != nil {
				return arma.Collection{}, err
			}
			col.ID = id
			return col, nil
		},
		UpdateFunc: func(ctx context.Context, col arma.Collection) error {
			return api.UpdateCollection(ctx, col.ID, arma.CollectionUpdate{Name: &col.Name, Description: col.Description})
		},
		DeleteFunc: func(ctx context.Context, col arma.Collection) error {
			return api.DeleteCollection(ctx, col.ID)
		},
	}, optimistic.Options[arma.Collection]{
		Name:      "collection",
		Key:       func(col arma.Collection) string { return idKey(col.ID) },
		Adopt:     adoptCollection,
		OnSuccess: onSuccess,
		OnError:   onError,
	})
	return c
}

// Refresh reloads collections and derives the active flag from the active server.
func (c *Collections) Refresh(ctx context.Context) error {
	var (
		cols    []arma.Collection
		servers []arma.ServerConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cols, err = c.api.ListCollections(gctx)
		return err
	})
	g.Go(func() (err error) {
		servers, err = c.api.ListServers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var activeID int64
	if srv := activeServer(servers); srv != nil && srv.CollectionID != nil {
		activeID = *srv.CollectionID
	}
	for i := range cols {
		cols[i].IsActive = cols[i].ID == activeID
		SortEntries(cols[i].Mods)
		if cols[i].ModCount == 0 {
			cols[i].ModCount = len(cols[i].Mods)
		}
	}
	c.Load(cols)
	return nil
}

// SortEntries orders entries by load order.
func SortEntries(entries []arma.CollectionEntry) {
	slices.SortStableFunc(entries, func(a, b arma.CollectionEntry) int {
		return a.LoadOrder - b.LoadOrder
	})
}

// adoptCollection gives a draft the server id, including entries added
// while the collection was still being created.
func adoptCollection(draft, server arma.Collection) arma.Collection {
	draft.ID = server.ID
	draft.Mods = slices.Clone(draft.Mods)
	for i := range draft.Mods {
		draft.Mods[i].CollectionID = server.ID
	}
	return draft
}

// LoadOrder returns the mod ids of col sorted by load order.
func LoadOrder(col arma.Collection) []int64 {
	entries := slices.Clone(col.Mods)
	SortEntries(entries)
	order := make([]int64, len(entries))
	for i, e := range entries {
		order[i] = e.ModID
	}
	return order
}

// ByID returns the local identity and value of collection id.
func (c *Collections) ByID(id int64) (optimistic.Item[arma.Collection], bool) {
	return c.Find(func(col arma.Collection) bool { return col.ID == id })
}

// Create adds a collection. Its name must not be blank.
func (c *Collections) Create(name, description string) (*optimistic.Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	return c.Insert(arma.Collection{Name: name, Description: &description, Mods: []arma.CollectionEntry{}}), nil
}

// Rename trims name and ignores blank names, returning nil.
func (c *Collections) Rename(id string, name string) *optimistic.Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return c.Update(id, func(col arma.Collection) arma.Collection {
		col.Name = name
		return col
	})
}

// AddMods appends mods to the end of collection id in the given order.
// Mods already in the collection are skipped.
func (c *Collections) AddMods(id string, mods []arma.ModSubscription) *optimistic.Result {
	var added []int64
	return c.UpdateWith(id, func(col arma.Collection) arma.Collection {
		entries := slices.Clone(col.Mods)
		for _, mod := range mods {
			if slices.ContainsFunc(entries, func(e arma.CollectionEntry) bool { return e.ModID == mod.ID }) {
				continue
			}
			m := mod
			entries = append(entries, arma.CollectionEntry{
				CollectionID: col.ID,
				ModID:        mod.ID,
				LoadOrder:    len(entries) + 1,
				Mod:          &m,
			})
			added = append(added, mod.ID)
		}
		col.Mods = entries
		col.ModCount = len(entries)
		return col
	}, func(ctx context.Context, col arma.Collection) error {
		if len(added) == 0 {
			return nil
		}
		return c.api.AddModsToCollection(ctx, col.ID, added)
	})
}

// RemoveMod drops modID from collection id and closes the gap in load order.
func (c *Collections) RemoveMod(id string, modID int64) *optimistic.Result {
	return c.UpdateWith(id, func(col arma.Collection) arma.Collection {
		entries := make([]arma.CollectionEntry, 0, len(col.Mods))
		for _, e := range col.Mods {
			if e.ModID == modID {
				continue
			}
			e.LoadOrder = len(entries) + 1
			entries = append(entries, e)
		}
		col.Mods = entries
		col.ModCount = len(entries)
		return col
	}, func(ctx context.Context, col arma.Collection) error {
		return c.api.RemoveModFromCollection(ctx, col.ID, modID)
	})
}

// SetActive makes collection id the only active one by pointing the active
// server at it. If that fails every collection returns to its previous flag.
func (c *Collections) SetActive(id string) *optimistic.Result {
	activate := c.UpdateWith(id, func(col arma.Collection) arma.Collection {
		col.IsActive = true
		return col
	}, func(ctx context.Context, col arma.Collection) error {
		servers, err := c.api.ListServers(ctx)
		if err != nil {
			return err
		}
		srv := activeServer(servers)
		if srv == nil {
			return ErrNoActiveServer
		}
		return c.api.SetServerCollection(ctx, srv.ID, &col.ID)
	})
	if activate.Err() != nil {
		return activate
	}

	target := activate.Key()
	for _, item := range c.Items() {
		if !item.Value.IsActive || item.ID == target {
			continue
		}
		c.UpdateWith(item.ID, func(col arma.Collection) arma.Collection {
			col.IsActive = false
			return col
		}, func(ctx context.Context, _ arma.Collection) error {
			return activate.Wait(ctx)
		})
	}
	return activate
}

// Active returns the active collection, if any.
func (c *Collections) Active() (optimistic.Item[arma.Collection], bool) {
	return c.Find(func(col arma.Collection) bool { return col.IsActive })
}

// Reorderer returns a controller for the load order of collection id.
// Call Close on it when done.
func (c *Collections) Reorderer(id string) (*reorder.Controller, error) {
	col, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	if optimistic.IsPlaceholder(id) {
		return nil, fmt.Errorf("collection %q is still being created", col.Name)
	}

	collectionID := col.ID
	return reorder.New(LoadOrder(col), func(ctx context.Context, modID int64, position int) error {
		return c.api.ReorderModInCollection(ctx, collectionID, modID, position)
	}, reorder.Options{
		Debounce: c.debounce,
		OnError: func(modID int64, position int, err error) {
			c.log.Errorw("Reorder rolled back", "collection", collectionID, "mod", modID, "position", position, zap.Error(err))
			key := fmt.Sprintf("%d/%d", collectionID, modID)
			if jerr := db.RecordSync(c.conn, "collections", "reorder", key, err); jerr != nil {
				c.log.Warnw("Failed to write sync journal", zap.Error(jerr))
			}
		},
	}), nil
}

// ApplyOrder mirrors a reorder controller's order onto the local entries of
// collection id without contacting the backend.
func (c *Collections) ApplyOrder(id string, order []int64) error {
	return c.Patch(id, func(col arma.Collection) arma.Collection {
		byMod := make(map[int64]arma.CollectionEntry, len(col.Mods))
		for _, e := range col.Mods {
			byMod[e.ModID] = e
		}
		entries := make([]arma.CollectionEntry, 0, len(col.Mods))
		for _, modID := range order {
			if e, ok := byMod[modID]; ok {
				e.LoadOrder = len(entries) + 1
				entries = append(entries, e)
			}
		}
		col.Mods = entries
		return col
	})
}

func activeServer(servers []arma.ServerConfig) *arma.ServerConfig {
	for i := range servers {
		if servers[i].IsActive {
			return &servers[i]
		}
	}
	return nil
}
