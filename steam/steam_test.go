package steam

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"arma3-server-manager/optimistic"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		input string
		want  []int64
	}{
		{"", nil},
		{"123", []int64{123}},
		{"123456 987654, 13579", []int64{123456, 987654, 13579}},
		{" 1,,2\n3\t", []int64{1, 2, 3}},
		{"abc 0 -5 12.5 42", []int64{42}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseIDs(tt.input)); diff != "" {
				t.Errorf("ParseIDs(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

type fakeLister struct {
	members map[int64][]int64
	calls   []int64
}

func (f *fakeLister) SteamCollectionMods(_ context.Context, id int64, excludeSubscribed bool) ([]int64, error) {
	f.calls = append(f.calls, id)
	if !excludeSubscribed {
		return nil, errors.New("expected subscribed members to be excluded")
	}
	members, ok := f.members[id]
	if !ok {
		return nil, errors.New("400: not a collection")
	}
	return members, nil
}

func TestResolve(t *testing.T) {
	lister := &fakeLister{members: map[int64][]int64{
		500: {501, 502},
		600: {},
	}}
	r := NewResolver(lister)

	tests := []struct {
		name  string
		input string
		want  Resolution
	}{
		{"collection", "500", Resolution{Kind: KindCollection, CollectionID: 500, ModIDs: []int64{501, 502}}},
		{"empty collection falls back", "600", Resolution{Kind: KindMods, ModIDs: []int64{600}}},
		{"lookup error falls back", "700", Resolution{Kind: KindMods, ModIDs: []int64{700}}},
		{"several ids skip lookup", "500, 600", Resolution{Kind: KindMods, ModIDs: []int64{500, 600}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if diff := cmp.Diff([]int64{500, 600, 700}, lister.calls); diff != "" {
		t.Errorf("collection lookups mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRejectsEmptyInput(t *testing.T) {
	r := NewResolver(&fakeLister{})
	if _, err := r.Resolve(context.Background(), " , "); !errors.Is(err, ErrNoIDs) {
		t.Errorf("err = %v, want ErrNoIDs", err)
	}
}

type fakeSubscriber struct{ got []int64 }

func (f *fakeSubscriber) Subscribe(ids []int64) []*optimistic.Result {
	f.got = append(f.got, ids...)
	return nil
}

func TestSubscribeHandsModIDsToSubscriber(t *testing.T) {
	r := NewResolver(&fakeLister{members: map[int64][]int64{9: {10, 11}}})
	sub := &fakeSubscriber{}
	if _, _, err := r.Subscribe(context.Background(), "9", sub); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if diff := cmp.Diff([]int64{10, 11}, sub.got); diff != "" {
		t.Errorf("subscribed ids mismatch (-want +got):\n%s", diff)
	}
}
