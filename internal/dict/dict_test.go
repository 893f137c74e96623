package dict

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

// buildFixture writes a minimal fonetree.dat/dict.dat pair encoding one
// single-character phrase "冊" under syllable ph, and returns their
// paths. Layout: root(0) -> child[1] (key=ph, children [2,3)) -> leaf(2,
// key=0, pointing at the arena string).
func buildFixture(t *testing.T, ph phoneme.Phoneme, text string, freq uint32) (treePath, dictPath string) {
	t.Helper()
	dir := t.TempDir()

	arena := append([]byte(text), 0)

	nodes := make([]byte, 3*nodeSize)
	putNode(nodes, 0, 1 /* phrase count, sentinel */, 1, 2)
	putNode(nodes, 1, uint16(ph), 2, 3)
	putNode(nodes, 2, 0, 0 /* arena offset */, freq)

	treePath = filepath.Join(dir, "fonetree.dat")
	dictPath = filepath.Join(dir, "dict.dat")
	if err := os.WriteFile(treePath, nodes, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dictPath, arena, 0o644); err != nil {
		t.Fatal(err)
	}
	return treePath, dictPath
}

func putNode(buf []byte, idx int, key uint16, a, b uint32) {
	off := idx * nodeSize
	binary.LittleEndian.PutUint16(buf[off:], key)
	binary.LittleEndian.PutUint32(buf[off+2:], a)
	binary.LittleEndian.PutUint32(buf[off+6:], b)
}

func TestCharFirst(t *testing.T) {
	ph := phoneme.Pack(11, 0, 3, 2) // arbitrary syllable
	treePath, dictPath := buildFixture(t, ph, "冊", 500)

	tree, err := Open(treePath, dictPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tree.Close()

	if got := tree.PhraseCount(); got != 1 {
		t.Fatalf("PhraseCount = %d, want 1", got)
	}

	phrases, err := tree.CharFirst(ph)
	if err != nil {
		t.Fatalf("CharFirst: %v", err)
	}
	if len(phrases) != 1 || phrases[0].Text != "冊" || phrases[0].Freq != 500 {
		t.Fatalf("CharFirst = %+v, want [{冊 500}]", phrases)
	}
}

func TestCharFirstNoMatch(t *testing.T) {
	ph := phoneme.Pack(11, 0, 3, 2)
	treePath, dictPath := buildFixture(t, ph, "冊", 500)

	tree, err := Open(treePath, dictPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tree.Close()

	other := phoneme.Pack(1, 0, 0, 1)
	phrases, err := tree.CharFirst(other)
	if err != nil {
		t.Fatalf("CharFirst: %v", err)
	}
	if len(phrases) != 0 {
		t.Fatalf("expected no matches, got %+v", phrases)
	}
}

func TestPhraseFirstSingleSyllable(t *testing.T) {
	ph := phoneme.Pack(11, 0, 3, 2)
	treePath, dictPath := buildFixture(t, ph, "冊", 500)

	tree, err := Open(treePath, dictPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tree.Close()

	seq := []phoneme.Syllable{phoneme.NewSyllable(ph)}
	phrases, err := tree.PhraseFirst(seq)
	if err != nil {
		t.Fatalf("PhraseFirst: %v", err)
	}
	if len(phrases) != 1 || phrases[0].Text != "冊" {
		t.Fatalf("PhraseFirst = %+v", phrases)
	}
}

func TestHasPhrase(t *testing.T) {
	ph := phoneme.Pack(11, 0, 3, 2)
	treePath, dictPath := buildFixture(t, ph, "冊", 500)

	tree, err := Open(treePath, dictPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tree.Close()

	if !tree.HasPhrase([]phoneme.Syllable{phoneme.NewSyllable(ph)}) {
		t.Fatal("expected HasPhrase true")
	}
	other := phoneme.Pack(1, 0, 0, 1)
	if tree.HasPhrase([]phoneme.Syllable{phoneme.NewSyllable(other)}) {
		t.Fatal("expected HasPhrase false for unknown syllable")
	}
}
