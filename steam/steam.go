// Package steam turns user input into Steam Workshop subscriptions.
package steam

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"arma3-server-manager/logger"
	"arma3-server-manager/optimistic"
)

var (
	ErrNoIDs = errors.New("no valid Steam Workshop ids")

	separators = regexp.MustCompile(`[,\s]+`)
)

// ParseIDs extracts the positive integer ids from a comma or whitespace
// separated list. Anything else is skipped.
func ParseIDs(input string) []int64 {
	var ids []int64
	for _, field := range separators.Split(input, -1) {
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Kind tells how an input was interpreted.
type Kind string

const (
	KindCollection Kind = "collection"
	KindMods       Kind = "mods"
)

type Resolution struct {
	Kind         Kind
	CollectionID int64 // set for KindCollection
	ModIDs       []int64
}

// CollectionLister is the part of the backend client the resolver needs.
type CollectionLister interface {
	SteamCollectionMods(ctx context.Context, collectionID int64, excludeSubscribed bool) ([]int64, error)
}

// Subscriber adds Steam items to the local mod set.
type Subscriber interface {
	Subscribe(steamIDs []int64) []*optimistic.Result
}

type Resolver struct {
	api CollectionLister
	log *zap.SugaredLogger
}

func NewResolver(api CollectionLister) *Resolver {
	return &Resolver{api: api, log: logger.Named("steam")}
}

// Resolve interprets input. A single id is first tried as a Workshop collection,
// skipping members that are already subscribed; when that fails or adds nothing
// the id is taken as a mod. Several ids are always mods.
func (r *Resolver) Resolve(ctx context.Context, input string) (Resolution, error) {
	ids := ParseIDs(input)
	switch len(ids) {
	case 0:
		return Resolution{}, ErrNoIDs
	case 1:
		members, err := r.api.SteamCollectionMods(ctx, ids[0], true)
		if err != nil {
			r.log.Debugw("Not a collection, subscribing as mod", "id", ids[0], zap.Error(err))
			break
		}
		if len(members) == 0 {
			r.log.Debugw("Collection has no new items, subscribing as mod", "id", ids[0])
			break
		}
		return Resolution{Kind: KindCollection, CollectionID: ids[0], ModIDs: members}, nil
	}
	return Resolution{Kind: KindMods, ModIDs: ids}, nil
}

// Subscribe resolves input and hands the resulting mod ids to sub.
func (r *Resolver) Subscribe(ctx context.Context, input string, sub Subscriber) (Resolution, []*optimistic.Result, error) {
	res, err := r.Resolve(ctx, input)
	if err != nil {
		return Resolution{}, nil, err
	}
	r.log.Infow("Subscribing", "kind", res.Kind, "count", len(res.ModIDs))
	return res, sub.Subscribe(res.ModIDs), nil
}
