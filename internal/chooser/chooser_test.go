package chooser

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/zhuyinime/zhuyin/internal/dict"
	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

const nodeSize = 10

func putNode(buf []byte, idx int, key uint16, a, b uint32) {
	off := idx * nodeSize
	binary.LittleEndian.PutUint16(buf[off:], key)
	binary.LittleEndian.PutUint32(buf[off+2:], a)
	binary.LittleEndian.PutUint32(buf[off+6:], b)
}

// buildTwoSyllableFixture builds a tree with:
//   - a single-char phrase "你" for ph1
//   - a single-char phrase "好" for ph2
//   - a two-syllable phrase "你好" for [ph1, ph2], at a higher frequency
//     than the product the two single chars would score, so the DP
//     should prefer the one-interval segmentation.
func buildTwoSyllableFixture(t *testing.T, ph1, ph2 phoneme.Phoneme) *dict.Tree {
	t.Helper()
	dir := t.TempDir()

	arena := []byte{}
	appendStr := func(s string) uint32 {
		off := uint32(len(arena))
		arena = append(arena, s...)
		arena = append(arena, 0)
		return off
	}

	niOff := appendStr("你")
	haoOff := appendStr("好")
	phraseOff := appendStr("你好")

	// Node layout:
	// 0: root, key=phrase count(3), children [1,3)
	// 1: internal, key=ph1, children [3,5)
	// 2: internal, key=ph2, children [5,6)
	// 3: leaf under ph1, "你"
	// 4: internal under ph1 for ph2 (two-syllable path), children [6,7)
	// 5: leaf under ph2, "好"
	// 6: leaf under ph1->ph2, "你好"
	nodes := make([]byte, 7*nodeSize)
	putNode(nodes, 0, 3, 1, 3)
	putNode(nodes, 1, uint16(ph1), 3, 5)
	putNode(nodes, 2, uint16(ph2), 5, 6)
	putNode(nodes, 3, 0, niOff, 100) // "你" freq 100
	putNode(nodes, 4, uint16(ph2), 6, 7)
	putNode(nodes, 5, 0, haoOff, 100) // "好" freq 100
	putNode(nodes, 6, 0, phraseOff, 50000) // "你好" freq 50000

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

func TestSegmentPrefersFewerIntervals(t *testing.T) {
	ph1 := phoneme.Pack(7, 1, 0, 3) // 你
	ph2 := phoneme.Pack(20, 0, 7, 3) // 好
	tree := buildTwoSyllableFixture(t, ph1, ph2)

	c := New(tree, nil, func() int64 { return 0 })
	seq := []phoneme.Syllable{phoneme.NewSyllable(ph1), phoneme.NewSyllable(ph2)}

	intervals, err := c.Segment(seq)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(intervals) != 1 || intervals[0].Text != "你好" {
		t.Fatalf("expected single interval '你好', got %+v", intervals)
	}
}

func TestSegmentHonoursPin(t *testing.T) {
	ph1 := phoneme.Pack(7, 1, 0, 3)
	ph2 := phoneme.Pack(20, 0, 7, 3)
	tree := buildTwoSyllableFixture(t, ph1, ph2)

	c := New(tree, nil, func() int64 { return 0 })
	seq := []phoneme.Syllable{phoneme.NewSyllable(ph1), phoneme.NewSyllable(ph2)}

	c.Pin(0, 1, "你")
	intervals, err := c.Segment(seq)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(intervals) != 2 || intervals[0].Text != "你" || intervals[1].Text != "好" {
		t.Fatalf("expected pinned single-char segmentation, got %+v", intervals)
	}
}

func TestSegmentWithAltsUnionsAlternateReading(t *testing.T) {
	ph1 := phoneme.Pack(7, 1, 0, 3)  // 你
	ph2 := phoneme.Pack(20, 0, 7, 3) // 好
	tree := buildTwoSyllableFixture(t, ph1, ph2)

	// ph2Alt has no phrase of its own in the fixture, so segmenting on
	// the alt reading alone would leave position 1 uncovered; unioning
	// it in at position 0 must not break the "你好" match which depends
	// on the primary reading.
	ph2Alt := phoneme.Pack(1, 0, 0, 1)

	c := New(tree, nil, func() int64 { return 0 })
	seq := []phoneme.Syllable{phoneme.NewSyllable(ph1), phoneme.NewSyllable(ph2)}
	alts := map[int]phoneme.Syllable{1: phoneme.NewSyllable(ph2Alt)}

	intervals, err := c.SegmentWithAlts(seq, alts)
	if err != nil {
		t.Fatalf("SegmentWithAlts: %v", err)
	}
	if len(intervals) != 1 || intervals[0].Text != "你好" {
		t.Fatalf("expected alt-less fallback to still prefer '你好', got %+v", intervals)
	}
}

// buildSingleCharFixture builds a one-node-plus-root tree holding a
// single single-char phrase for ph.
func buildSingleCharFixture(t *testing.T, ph phoneme.Phoneme, text string, freq uint32) *dict.Tree {
	t.Helper()
	dir := t.TempDir()

	arena := append([]byte(text), 0)
	nodes := make([]byte, 3*nodeSize)
	putNode(nodes, 0, 1, 1, 2)
	putNode(nodes, 1, uint16(ph), 2, 3)
	putNode(nodes, 2, 0, 0, freq)

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

func TestCandidatesAtWithAltsKeepsPrimaryWhenAltUnmatched(t *testing.T) {
	ph1 := phoneme.Pack(7, 1, 0, 3) // 你
	alt1 := phoneme.Pack(1, 0, 0, 1)

	tree := buildSingleCharFixture(t, ph1, "你", 100)
	c := New(tree, nil, func() int64 { return 0 })

	seq := []phoneme.Syllable{phoneme.NewSyllable(ph1)}
	cands, err := c.CandidatesAtWithAlts(seq, 0, nil)
	if err != nil {
		t.Fatalf("CandidatesAtWithAlts (no alt): %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate with no alt, got %+v", cands)
	}

	altCands, err := c.CandidatesAtWithAlts(seq, 0, map[int]phoneme.Syllable{0: phoneme.NewSyllable(alt1)})
	if err != nil {
		t.Fatalf("CandidatesAtWithAlts (alt differs, no matching phrase): %v", err)
	}
	if len(altCands) != 1 || altCands[0].Text != "你" {
		t.Fatalf("expected the primary reading's candidate to survive when the alt matches nothing, got %+v", altCands)
	}
}

func TestCandidatesAtEnumeratesAllLengths(t *testing.T) {
	ph1 := phoneme.Pack(7, 1, 0, 3)
	ph2 := phoneme.Pack(20, 0, 7, 3)
	tree := buildTwoSyllableFixture(t, ph1, ph2)

	c := New(tree, nil, func() int64 { return 0 })
	seq := []phoneme.Syllable{phoneme.NewSyllable(ph1), phoneme.NewSyllable(ph2)}

	cands, err := c.CandidatesAt(seq, 0)
	if err != nil {
		t.Fatalf("CandidatesAt: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates (你 and 你好), got %+v", cands)
	}
	if cands[0].Text != "你好" {
		t.Fatalf("expected highest-frequency candidate first, got %+v", cands[0])
	}
}
