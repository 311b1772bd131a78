package album_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"holocron/internal/album"
	"holocron/internal/card"
	"holocron/internal/catalog"
	"holocron/internal/kvstore"
	"holocron/internal/swapi"
)

func mustCard(t *testing.T, category catalog.Category, number int) card.Card {
	t.Helper()
	id := catalog.NewCardID(category, number)
	entity := swapi.Entity{Category: category}
	switch category {
	case catalog.Movies:
		entity.Movie = &swapi.Movie{Title: "Film"}
	case catalog.Characters:
		entity.Character = &swapi.Character{Name: "Person"}
	case catalog.Starships:
		entity.Starship = &swapi.Starship{Name: "Ship"}
	}
	c, err := card.New(id, entity)
	if err != nil {
		t.Fatalf("card.New: %v", err)
	}
	return c
}

type resetCounter struct{ calls int }

func (r *resetCounter) Reset(context.Context) { r.calls++ }

func TestAddIsIdempotentAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := album.New(ctx, kvstore.NewMemory())
	luke := mustCard(t, catalog.Characters, 1)

	if store.HasCard(luke.CardID) {
		t.Fatal("empty album should not hold the card")
	}
	if !store.Add(ctx, luke) {
		t.Fatal("first Add should succeed")
	}
	before := store.Snapshot()
	if store.Add(ctx, luke) {
		t.Fatal("second Add should report failure")
	}
	after := store.Snapshot()
	if before.Characters[0] != after.Characters[0] {
		t.Fatal("second Add must not change album state")
	}
	if !store.HasCard(luke.CardID) {
		t.Fatal("HasCard should be true after Add")
	}
	got, ok := store.Get(luke.CardID)
	if !ok || got.Name != "Person" {
		t.Fatalf("unexpected stored card: %+v", got)
	}

	if !store.Remove(ctx, luke.CardID) {
		t.Fatal("Remove should succeed")
	}
	if store.Remove(ctx, luke.CardID) {
		t.Fatal("second Remove should be a no-op")
	}
	if store.HasCard(luke.CardID) {
		t.Fatal("HasCard should be false after Remove")
	}
}

func TestSlotMapping(t *testing.T) {
	ctx := context.Background()
	store := album.New(ctx, kvstore.NewMemory())

	store.Add(ctx, mustCard(t, catalog.Movies, 6))
	store.Add(ctx, mustCard(t, catalog.Characters, 82))
	store.Add(ctx, mustCard(t, catalog.Starships, 9))

	snap := store.Snapshot()
	if snap.Movies[5] == nil || snap.Movies[5].Number != 6 {
		t.Fatal("movie 6 should occupy slot 5")
	}
	if snap.Characters[81] == nil || snap.Characters[81].Number != 82 {
		t.Fatal("character 82 should occupy slot 81")
	}
	if snap.Starships[3] == nil || snap.Starships[3].Number != 9 {
		t.Fatal("starship 9 should occupy slot 3")
	}
}

func TestInvalidIdentifiersAreRejected(t *testing.T) {
	ctx := context.Background()
	store := album.New(ctx, kvstore.NewMemory())
	invalid := []card.Card{
		{CardID: catalog.NewCardID(catalog.Starships, 4), Name: "Not a ship"},
		{CardID: catalog.NewCardID(catalog.Movies, 7), Name: "Episode VII"},
		{CardID: catalog.NewCardID(catalog.Characters, 0), Name: "Nobody"},
		{CardID: catalog.NewCardID("planets", 1), Name: "Tatooine"},
	}
	for _, c := range invalid {
		if store.Add(ctx, c) {
			t.Fatalf("Add(%s) should fail", c.CardID)
		}
		if store.HasCard(c.CardID) || store.Remove(ctx, c.CardID) {
			t.Fatalf("%s should never resolve to a slot", c.CardID)
		}
	}
	if store.Stats().Overall.Collected != 0 {
		t.Fatal("album should stay empty")
	}
}

func TestCopyOnWriteSnapshots(t *testing.T) {
	ctx := context.Background()
	store := album.New(ctx, kvstore.NewMemory())
	before := store.Snapshot()
	store.Add(ctx, mustCard(t, catalog.Movies, 1))
	if before.Movies[0] != nil {
		t.Fatal("earlier snapshot must not observe later mutations")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := album.New(ctx, kvstore.NewMemory())
	for n := 1; n <= 6; n++ {
		store.Add(ctx, mustCard(t, catalog.Movies, n))
	}
	for n := 1; n <= 10; n++ {
		store.Add(ctx, mustCard(t, catalog.Characters, n))
	}
	store.Add(ctx, mustCard(t, catalog.Starships, 2))

	stats := store.Stats()
	if stats.Movies != (album.CategoryStats{Collected: 6, Total: 6, Percentage: 100}) {
		t.Fatalf("unexpected movie stats: %+v", stats.Movies)
	}
	if stats.Characters != (album.CategoryStats{Collected: 10, Total: 82, Percentage: 12}) {
		t.Fatalf("unexpected character stats: %+v", stats.Characters)
	}
	if stats.Starships != (album.CategoryStats{Collected: 1, Total: 36, Percentage: 3}) {
		t.Fatalf("unexpected starship stats: %+v", stats.Starships)
	}
	if stats.Overall != (album.CategoryStats{Collected: 17, Total: 124, Percentage: 14}) {
		t.Fatalf("unexpected overall stats: %+v", stats.Overall)
	}
	if stats.Category(catalog.Characters) != stats.Characters {
		t.Fatal("Category accessor mismatch")
	}
}

func TestPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	store := album.New(ctx, kv)
	store.Add(ctx, mustCard(t, catalog.Starships, 77))

	raw, err := kv.Get(ctx, album.StorageKey)
	if err != nil {
		t.Fatalf("expected persisted album: %v", err)
	}
	var decoded map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded["movies"]) != 6 || len(decoded["characters"]) != 82 || len(decoded["starships"]) != 36 {
		t.Fatalf("unexpected persisted lengths: %d %d %d", len(decoded["movies"]), len(decoded["characters"]), len(decoded["starships"]))
	}
	if string(decoded["movies"][0]) != "null" {
		t.Fatalf("empty slots should persist as null, got %s", decoded["movies"][0])
	}

	reloaded := album.New(ctx, kv)
	if !reloaded.HasCard(catalog.NewCardID(catalog.Starships, 77)) {
		t.Fatal("reloaded album should hold starship 77")
	}
}

func TestLoadDropsMisplacedEntries(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	blob := `{
		"movies": [{"category":"movies","number":2,"name":"Wrong slot"}, {"category":"movies","number":2,"name":"Right slot"}],
		"characters": [{"category":"starships","number":1,"name":"Wrong category"}],
		"starships": [null, null, {"category":"starships","number":5,"name":"Right slot"}]
	}`
	if err := kv.Put(ctx, album.StorageKey, []byte(blob)); err != nil {
		t.Fatal(err)
	}
	store := album.New(ctx, kv)
	snap := store.Snapshot()
	if len(snap.Movies) != 6 || len(snap.Characters) != 82 || len(snap.Starships) != 36 {
		t.Fatal("loaded sections must have fixed lengths")
	}
	if snap.Movies[0] != nil || snap.Movies[1] == nil || snap.Movies[1].Name != "Right slot" {
		t.Fatalf("unexpected movies: %+v", snap.Movies[:2])
	}
	if snap.Characters[0] != nil {
		t.Fatal("entry from another category should be dropped")
	}
	if snap.Starships[2] == nil {
		t.Fatal("starship 5 belongs at slot 2")
	}
	if store.Stats().Overall.Collected != 2 {
		t.Fatalf("expected 2 collected, got %d", store.Stats().Overall.Collected)
	}
}

func TestMalformedBlobFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	if err := kv.Put(ctx, album.StorageKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	store := album.New(ctx, kv)
	if store.Stats().Overall.Collected != 0 || len(store.Snapshot().Characters) != 82 {
		t.Fatal("malformed blob should load as an empty album")
	}
}

type failingKV struct{ kvstore.Store }

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingKV) Put(context.Context, string, []byte) error   { return errors.New("disk gone") }

func TestStorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := album.New(ctx, failingKV{kvstore.NewMemory()})
	if !store.Add(ctx, mustCard(t, catalog.Movies, 3)) {
		t.Fatal("Add should succeed in memory when persistence fails")
	}
	if !store.HasCard(catalog.NewCardID(catalog.Movies, 3)) {
		t.Fatal("in-memory state should hold the card")
	}
}

func TestResetAllClearsCooldowns(t *testing.T) {
	ctx := context.Background()
	counter := &resetCounter{}
	store := album.New(ctx, kvstore.NewMemory(), album.WithCooldowns(counter))
	store.Add(ctx, mustCard(t, catalog.Movies, 1))
	store.Add(ctx, mustCard(t, catalog.Characters, 1))

	store.ResetAll(ctx)
	if store.Stats().Overall.Collected != 0 {
		t.Fatal("ResetAll should empty the album")
	}
	if counter.calls != 1 {
		t.Fatalf("expected cooldown reset, got %d calls", counter.calls)
	}
}

func TestResetCategory(t *testing.T) {
	ctx := context.Background()
	counter := &resetCounter{}
	store := album.New(ctx, kvstore.NewMemory(), album.WithCooldowns(counter))
	store.Add(ctx, mustCard(t, catalog.Movies, 1))
	store.Add(ctx, mustCard(t, catalog.Characters, 1))

	if err := store.ResetCategory(ctx, catalog.Movies); err != nil {
		t.Fatalf("ResetCategory: %v", err)
	}
	stats := store.Stats()
	if stats.Movies.Collected != 0 || stats.Characters.Collected != 1 {
		t.Fatalf("unexpected stats after category reset: %+v", stats)
	}
	if counter.calls != 0 {
		t.Fatal("category reset must not touch cooldowns")
	}
	if err := store.ResetCategory(ctx, "planets"); !errors.Is(err, album.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}
