// Package dict implements the read-only system dictionary: a
// memory-mapped phrase tree (fonetree.dat) paired with a phrase arena
// (dict.dat).
package dict

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

// nodeSize is the fixed width of one tree node record: a 16-bit key
// followed by two 24-bit fields each stored in a 4-byte slot with the
// high byte zero.
const nodeSize = 2 + 4 + 4

// node is one decoded fixed-width tree node. For an internal node
// (Key != 0, except at the root) FieldA/FieldB are the child index
// range [begin, end). For a leaf (Key == 0) they are the arena offset
// and the 24-bit frequency.
type node struct {
	Key    uint16
	FieldA uint32
	FieldB uint32
}

func decodeNode(b []byte) node {
	return node{
		Key:    binary.LittleEndian.Uint16(b[0:2]),
		FieldA: binary.LittleEndian.Uint32(b[2:6]) & 0x00FFFFFF,
		FieldB: binary.LittleEndian.Uint32(b[6:10]) & 0x00FFFFFF,
	}
}

// Tree is the memory-mapped phrase tree plus its phrase arena. Both
// files are mapped read-only and shared safely across sessions; once
// Open returns, Tree's only mutable state is the arena's mutex-guarded
// cache of per-offset validation results.
type Tree struct {
	treeFile  *os.File
	arenaFile *os.File
	treeMap   []byte
	arena     arena
}

// Open memory-maps fonetreePath and dictPath read-only. The maps are
// process-wide immutable and may be shared by many sessions; callers
// typically Open once and hand the resulting *Tree to every session.
func Open(fonetreePath, dictPath string) (*Tree, error) {
	treeFile, err := os.Open(fonetreePath)
	if err != nil {
		return nil, fmt.Errorf("dict: open tree file: %w", err)
	}
	treeMap, err := mmapFile(treeFile)
	if err != nil {
		treeFile.Close()
		return nil, fmt.Errorf("dict: mmap tree file: %w", err)
	}

	arenaFile, err := os.Open(dictPath)
	if err != nil {
		unix.Munmap(treeMap)
		treeFile.Close()
		return nil, fmt.Errorf("dict: open arena file: %w", err)
	}
	arenaMap, err := mmapFile(arenaFile)
	if err != nil {
		unix.Munmap(treeMap)
		treeFile.Close()
		arenaFile.Close()
		return nil, fmt.Errorf("dict: mmap arena file: %w", err)
	}

	if len(treeMap) < nodeSize {
		unix.Munmap(treeMap)
		unix.Munmap(arenaMap)
		treeFile.Close()
		arenaFile.Close()
		return nil, fmt.Errorf("dict: tree file too small to hold a root node")
	}

	return &Tree{
		treeFile:  treeFile,
		arenaFile: arenaFile,
		treeMap:   treeMap,
		arena:     newArena(arenaMap),
	}, nil
}

func mmapFile(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, fmt.Errorf("empty file")
	}
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
}

// Close releases the memory maps and underlying file handles. Callers
// must not retain any Phrase or node view returned by this Tree across
// a Close.
func (t *Tree) Close() error {
	var errs []error
	if err := unix.Munmap(t.treeMap); err != nil {
		errs = append(errs, err)
	}
	if err := unix.Munmap(t.arena.bytes); err != nil {
		errs = append(errs, err)
	}
	if err := t.treeFile.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := t.arenaFile.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("dict: close: %v", errs)
	}
	return nil
}

func (t *Tree) node(idx int) node {
	off := idx * nodeSize
	return decodeNode(t.treeMap[off : off+nodeSize])
}

func (t *Tree) numNodes() int {
	return len(t.treeMap) / nodeSize
}

// PhraseCount returns the total phrase count stored in the root node's
// key field. This is the only place that value is ever read: it is a
// property of the compiled dictionary file, not a compile-time
// constant, so nothing else in this package may hardcode it.
func (t *Tree) PhraseCount() int {
	return int(t.node(0).Key)
}

func (t *Tree) isLeaf(idx int) bool {
	return idx != 0 && t.node(idx).Key == 0
}

// childIndices returns the half-open [begin, end) child node index
// range of an internal node.
func (t *Tree) childIndices(idx int) (begin, end int) {
	n := t.node(idx)
	return int(n.FieldA), int(n.FieldB)
}

// findChild binary-searches idx's children for one whose key equals
// target, relying on children being stored in ascending key order.
func (t *Tree) findChild(idx int, target uint16) (int, bool) {
	begin, end := t.childIndices(idx)
	i := sort.Search(end-begin, func(i int) bool {
		return t.node(begin+i).Key >= target
	})
	pos := begin + i
	if pos < end && t.node(pos).Key == target {
		return pos, true
	}
	return 0, false
}

// Phrase is one dictionary entry surfaced to callers: its text and
// system-dictionary frequency.
type Phrase struct {
	Text string
	Freq uint32
}

// leavesUnder collects every leaf child of idx (its key == 0 children),
// i.e. every phrase completing the prefix that idx represents.
func (t *Tree) leavesUnder(idx int) ([]Phrase, error) {
	begin, end := t.childIndices(idx)
	var out []Phrase
	var offs []uint32
	for i := begin; i < end; i++ {
		n := t.node(i)
		if n.Key != 0 {
			continue
		}
		text, err := t.arena.readString(n.FieldA)
		if err != nil {
			return nil, fmt.Errorf("dict: arena offset %d: %w", n.FieldA, err)
		}
		out = append(out, Phrase{Text: text, Freq: n.FieldB})
		offs = append(offs, n.FieldA)
	}
	sortPhrases(out, offs)
	return out, nil
}

// sortPhrases orders p by descending frequency, then ascending arena
// offset for determinism; offs[i] is the arena offset of p[i].
func sortPhrases(p []Phrase, offs []uint32) {
	order := make([]int, len(p))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if p[i].Freq != p[j].Freq {
			return p[i].Freq > p[j].Freq
		}
		return offs[i] < offs[j]
	})
	sorted := make([]Phrase, len(p))
	for k, i := range order {
		sorted[k] = p[i]
	}
	copy(p, sorted)
}

// CharFirst returns every single-character phrase whose syllable equals
// phone, ordered by descending frequency.
func (t *Tree) CharFirst(phone phoneme.Phoneme) ([]Phrase, error) {
	idx, ok := t.findChild(0, uint16(phone))
	if !ok {
		return nil, nil
	}
	return t.leavesUnder(idx)
}

// PhraseFirst returns every phrase whose syllable sequence matches seq
// exactly, ordered by descending frequency.
func (t *Tree) PhraseFirst(seq []phoneme.Syllable) ([]Phrase, error) {
	idx, ok := t.walk(seq)
	if !ok {
		return nil, nil
	}
	return t.leavesUnder(idx)
}

// walk descends the tree along seq, returning the node index reached
// and whether the full sequence matched a path.
func (t *Tree) walk(seq []phoneme.Syllable) (int, bool) {
	idx := 0
	for _, s := range seq {
		next, ok := t.findChild(idx, uint16(s.Phoneme()))
		if !ok {
			return 0, false
		}
		idx = next
	}
	return idx, true
}

// ChildNode is one entry of PhraseTreeChildren: the phoneme key and an
// opaque handle the chooser passes back in to extend the prefix
// further.
type ChildNode struct {
	Key   phoneme.Phoneme
	Index int
}

// PhraseTreeChildren returns the phonetic children of the node reached
// by walking seq, for the chooser's prefix extension during DP
// segmentation. An empty seq returns the top-level children under the
// root.
func (t *Tree) PhraseTreeChildren(seq []phoneme.Syllable) ([]ChildNode, bool) {
	idx, ok := t.walk(seq)
	if !ok {
		return nil, false
	}
	begin, end := t.childIndices(idx)
	out := make([]ChildNode, 0, end-begin)
	for i := begin; i < end; i++ {
		n := t.node(i)
		if n.Key == 0 {
			continue // leaf, not a phonetic child
		}
		out = append(out, ChildNode{Key: phoneme.Phoneme(n.Key), Index: i})
	}
	return out, true
}

// HasPhrase reports whether any phrase exists for seq, without paying
// for the arena string reads leavesUnder does.
func (t *Tree) HasPhrase(seq []phoneme.Syllable) bool {
	idx, ok := t.walk(seq)
	if !ok {
		return false
	}
	begin, end := t.childIndices(idx)
	for i := begin; i < end; i++ {
		if t.node(i).Key == 0 {
			return true
		}
	}
	return false
}
