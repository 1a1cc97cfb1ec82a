package auth

import (
	"context"
	"testing"
	"time"

	"github.com/OpenQueue/API/internal/cache"
	"github.com/OpenQueue/API/internal/domain/types"
)

func TestKeyCacheRoundtrip(t *testing.T) {
	ctx := context.Background()
	kc := NewKeyCache(cache.NewMemory(t.Name()), time.Minute)

	if got, err := kc.Get(ctx, "k1"); err != nil || got != nil {
		t.Fatalf("miss = (%v, %v), want (nil, nil)", got, err)
	}

	want := &CachedResolution{
		League: &types.LeagueHandle{LeagueID: "L1", OwnerID: "O1"},
		UserID: "U1",
		Scopes: types.ScopeMap{"league": true, "match.get": false},
	}
	if err := kc.Set(ctx, "k1", want); err != nil {
		t.Fatal(err)
	}

	got, err := kc.Get(ctx, "k1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.UserID != "U1" || got.League.LeagueID != "L1" {
		t.Fatalf("got %+v", got)
	}
	if got.Scopes["match.get"] {
		t.Fatal("non-public flag lost in the roundtrip")
	}

	if ok, err := kc.Exists(ctx, "k1"); err != nil || !ok {
		t.Fatalf("exists = (%v, %v)", ok, err)
	}
}

func TestKeyCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	kc := NewKeyCache(cache.NewMemory(t.Name()), time.Minute)

	res := &CachedResolution{
		League: &types.LeagueHandle{LeagueID: "L1"},
		Scopes: types.ScopeMap{"league": true},
	}
	if err := kc.Set(ctx, "k1", res); err != nil {
		t.Fatal(err)
	}
	if err := kc.Invalidate(ctx, "k1"); err != nil {
		t.Fatal(err)
	}
	if got, err := kc.Get(ctx, "k1"); err != nil || got != nil {
		t.Fatalf("invalidated entry = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestKeyCacheCorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory(t.Name())
	kc := NewKeyCache(mem, time.Minute)

	if err := mem.Set(ctx, "api-key-k1", "{not json", time.Minute); err != nil {
		t.Fatal(err)
	}
	if got, err := kc.Get(ctx, "k1"); err != nil || got != nil {
		t.Fatalf("corrupt entry = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestKeyCacheExpiry(t *testing.T) {
	ctx := context.Background()
	kc := NewKeyCache(cache.NewMemory(t.Name()), 20*time.Millisecond)

	res := &CachedResolution{
		League: &types.LeagueHandle{LeagueID: "L1"},
		Scopes: types.ScopeMap{"league": true},
	}
	if err := kc.Set(ctx, "k1", res); err != nil {
		t.Fatal(err)
	}
	time.Sleep(40 * time.Millisecond)
	if got, err := kc.Get(ctx, "k1"); err != nil || got != nil {
		t.Fatalf("expired entry = (%v, %v), want (nil, nil)", got, err)
	}
}
