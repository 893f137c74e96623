package userdict

import (
	"path/filepath"
	"testing"

	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

func seq(p phoneme.Phoneme) []phoneme.Syllable {
	return []phoneme.Syllable{phoneme.NewSyllable(p)}
}

func TestAddAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.dat")
	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ph := phoneme.Pack(7, 1, 0, 3)
	if err := store.Add(seq(ph), "你", Tail, 1000); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries := store.Lookup(seq(ph), 1000)
	if len(entries) != 1 || entries[0].Text != "你" {
		t.Fatalf("Lookup = %+v, want one entry for 你", entries)
	}
}

func TestReopenReplaysLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.dat")
	ph := phoneme.Pack(7, 1, 0, 3)

	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Add(seq(ph), "你", Head, 1000); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	entries := reopened.Lookup(seq(ph), 1000)
	if len(entries) != 1 || entries[0].Text != "你" {
		t.Fatalf("after reopen, Lookup = %+v", entries)
	}
}

func TestRemoveThenReadd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.dat")
	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ph := phoneme.Pack(7, 1, 0, 3)
	if err := store.Add(seq(ph), "你", Tail, 1000); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Remove(seq(ph), "你", 1001); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if entries := store.Lookup(seq(ph), 1001); len(entries) != 0 {
		t.Fatalf("expected no entries after Remove, got %+v", entries)
	}
	if err := store.Add(seq(ph), "你", Tail, 1002); err != nil {
		t.Fatalf("re-Add: %v", err)
	}
	if entries := store.Lookup(seq(ph), 1002); len(entries) != 1 {
		t.Fatalf("expected one entry after re-Add, got %+v", entries)
	}
}

func TestAgingClampsToBounds(t *testing.T) {
	e := Entry{OriginalFreq: 10, MaxFreq: 100, RecentTime: 0}

	if f := e.EffectiveFreq(0); f != 100 {
		t.Fatalf("immediately after access, want MaxFreq 100, got %d", f)
	}
	if f := e.EffectiveFreq(HalfLifeSecs * 10); f != 10 {
		t.Fatalf("long after access, want OriginalFreq 10, got %d", f)
	}
}

func TestBumpFrequencyRaisesMaxFreq(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.dat")
	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ph := phoneme.Pack(7, 1, 0, 3)
	store.Add(seq(ph), "你", Tail, 1000)

	before := store.Lookup(seq(ph), 1000)[0].MaxFreq
	if err := store.BumpFrequency(seq(ph), "你", 1000); err != nil {
		t.Fatalf("BumpFrequency: %v", err)
	}
	after := store.Lookup(seq(ph), 1000)[0].MaxFreq
	if after <= before {
		t.Fatalf("expected MaxFreq to increase, before=%d after=%d", before, after)
	}
}
