package session

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/zhuyinime/zhuyin/internal/dict"
	"github.com/zhuyinime/zhuyin/internal/layout"
	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

const nodeSize = 10

func putNode(buf []byte, idx int, key uint16, a, b uint32) {
	off := idx * nodeSize
	binary.LittleEndian.PutUint16(buf[off:], key)
	binary.LittleEndian.PutUint32(buf[off+2:], a)
	binary.LittleEndian.PutUint32(buf[off+6:], b)
}

// buildFixture writes a one-phrase dictionary: a single character "冊"
// for the syllable produced by Default-layout keys "5j/6".
func buildFixture(t *testing.T) *dict.Tree {
	t.Helper()
	dir := t.TempDir()

	ph := phoneme.Pack(15, 2, 12, 2) // the syllable for Default keys 5 j / 6

	arena := append([]byte("冊"), 0)
	nodes := make([]byte, 3*nodeSize)
	putNode(nodes, 0, 1, 1, 2)
	putNode(nodes, 1, uint16(ph), 2, 3)
	putNode(nodes, 2, 0, 0, 500)

	treePath := filepath.Join(dir, "fonetree.dat")
	dictPath := filepath.Join(dir, "dict.dat")
	if err := os.WriteFile(treePath, nodes, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dictPath, arena, 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := dict.Open(treePath, dictPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { tree.Close() })
	return tree
}

func TestScenarioOneCommitsSingleChar(t *testing.T) {
	tree := buildFixture(t)
	cfg := DefaultConfig()
	cfg.KeyboardLayout = int(layout.Default)

	s := New(cfg, tree, nil, func() int64 { return 0 }, nil)

	for _, k := range []byte("5j/6") {
		if b := s.HandleKey(k); b == layout.KeyError {
			t.Fatalf("unexpected KeyError on key %q", k)
		}
	}
	if b := s.HandleKey(KeyEnter); b != layout.Commit {
		t.Fatalf("expected Commit on Enter, got %v", b)
	}
	if got := s.Commit(); got != "冊" {
		t.Fatalf("Commit() = %q, want 冊", got)
	}
}

func TestEscapeClearsInProgress(t *testing.T) {
	tree := buildFixture(t)
	cfg := DefaultConfig()
	s := New(cfg, tree, nil, func() int64 { return 0 }, nil)

	s.HandleKey('5')
	s.HandleKey(KeyEscape)
	if s.editor.IsEntering() {
		t.Fatal("expected editor state cleared after Escape")
	}
}

func TestEasySymbolModeCommitsBracket(t *testing.T) {
	tree := buildFixture(t)
	cfg := DefaultConfig()
	cfg.EasySymbolMode = true
	s := New(cfg, tree, nil, func() int64 { return 0 }, nil)

	if b := s.HandleKey('['); b != layout.Absorb {
		t.Fatalf("expected Absorb inserting symbol into preedit, got %v", b)
	}
	if b := s.HandleKey(KeyEnter); b != layout.Commit {
		t.Fatalf("expected Commit, got %v", b)
	}
	if got := s.Commit(); got != "「" {
		t.Fatalf("Commit() = %q, want 「", got)
	}
}

func TestFullshapeModeCommitsFullwidthBang(t *testing.T) {
	tree := buildFixture(t)
	cfg := DefaultConfig()
	cfg.FullshapeMode = true
	s := New(cfg, tree, nil, func() int64 { return 0 }, nil)

	s.HandleKey('!')
	s.HandleKey(KeyEnter)
	if got := s.Commit(); got != "！" {
		t.Fatalf("Commit() = %q, want ！", got)
	}
}
