package main

import (
	"encoding/json"
	"testing"

	"holocron/internal/album"
	"holocron/internal/cooldown"
)

func TestAlbumListAndReset(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"album", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("album list: %v", err)
	}
	requireContains(t, out, "No cards collected yet")

	if _, _, err := runCLI(t, []string{"open", "--keep-all", "--seed", "5"}, env.configPath, ""); err != nil {
		t.Fatalf("open: %v", err)
	}
	out, _, err = runCLI(t, []string{"album", "list", "characters"}, env.configPath, "")
	if err != nil {
		t.Fatalf("album list characters: %v", err)
	}
	requireContains(t, out, "Person ")

	if _, _, err := runCLI(t, []string{"album", "reset", "characters"}, env.configPath, ""); err == nil {
		t.Fatal("expected reset without --yes to fail")
	}
	out, _, err = runCLI(t, []string{"album", "reset", "characters", "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("reset characters: %v", err)
	}
	requireContains(t, out, "Cleared every characters card")

	stats := albumStats(t, env)
	if stats.Characters.Collected != 0 || stats.Overall.Collected != 2 {
		t.Fatalf("expected only characters cleared, got %+v", stats)
	}

	if _, _, err := runCLI(t, []string{"album", "reset", "--yes"}, env.configPath, ""); err != nil {
		t.Fatalf("reset all: %v", err)
	}
	if stats := albumStats(t, env); stats.Overall.Collected != 0 {
		t.Fatalf("expected empty album, got %+v", stats.Overall)
	}

	out, _, err = runCLI(t, []string{"envelopes", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("envelopes: %v", err)
	}
	var slots []cooldown.SlotStatus
	if err := json.Unmarshal([]byte(out), &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	for _, slot := range slots {
		if !slot.Available {
			t.Fatalf("full reset should re-arm slot %s", slot.Slot)
		}
	}
}

func TestAlbumListRejectsUnknownCategory(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"album", "list", "droids"}, env.configPath, ""); err == nil {
		t.Fatal("expected unknown category error")
	}
}

func albumStats(t *testing.T, env *cliTestEnv) album.Stats {
	t.Helper()
	out, _, err := runCLI(t, []string{"album", "stats", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("album stats: %v", err)
	}
	var stats album.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	return stats
}
