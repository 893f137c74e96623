package main

import (
	"encoding/binary"
	"sort"

	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

// nodeSize mirrors internal/dict's fixed node width: a 16-bit key
// followed by two 24-bit fields, each stored in a 4-byte slot with the
// high byte zero.
const nodeSize = 2 + 4 + 4

// trieNode groups word-list entries that share a syllable prefix: its
// leaves are phrases that end exactly here, its branches continue with
// one more syllable.
type trieNode struct {
	leaves   []wordEntry
	branches map[phoneme.Phoneme]*trieNode
}

func newTrieNode() *trieNode {
	return &trieNode{branches: make(map[phoneme.Phoneme]*trieNode)}
}

func (t *trieNode) insert(e wordEntry) {
	cur := t
	for _, ph := range e.seq {
		next, ok := cur.branches[ph]
		if !ok {
			next = newTrieNode()
			cur.branches[ph] = next
		}
		cur = next
	}
	cur.leaves = append(cur.leaves, e)
}

// compile builds the fonetree.dat node array and dict.dat arena for
// entries, matching internal/dict's tree-node layout exactly.
func compile(entries []wordEntry) (nodes []byte, arena []byte) {
	root := newTrieNode()
	for _, e := range entries {
		root.insert(e)
	}

	var rawNodes []rawNode
	arenaBuf := make([]byte, 0, 1<<16)

	appendString := func(s string) uint32 {
		off := uint32(len(arenaBuf))
		arenaBuf = append(arenaBuf, s...)
		arenaBuf = append(arenaBuf, 0)
		return off
	}

	var build func(t *trieNode) (begin, end int)
	build = func(t *trieNode) (begin, end int) {
		sort.SliceStable(t.leaves, func(i, j int) bool {
			if t.leaves[i].freq != t.leaves[j].freq {
				return t.leaves[i].freq > t.leaves[j].freq
			}
			return t.leaves[i].text < t.leaves[j].text
		})

		branchKeys := make([]phoneme.Phoneme, 0, len(t.branches))
		for k := range t.branches {
			branchKeys = append(branchKeys, k)
		}
		sort.Slice(branchKeys, func(i, j int) bool { return branchKeys[i] < branchKeys[j] })

		begin = len(rawNodes)
		total := len(t.leaves) + len(branchKeys)
		for i := 0; i < total; i++ {
			rawNodes = append(rawNodes, rawNode{})
		}
		end = len(rawNodes)

		for i, e := range t.leaves {
			off := appendString(e.text)
			rawNodes[begin+i] = rawNode{key: 0, a: off, b: e.freq}
		}
		for i, key := range branchKeys {
			childBegin, childEnd := build(t.branches[key])
			rawNodes[begin+len(t.leaves)+i] = rawNode{
				key: uint16(key),
				a:   uint32(childBegin),
				b:   uint32(childEnd),
			}
		}
		return begin, end
	}

	// Reserve index 0 for the root sentinel.
	rawNodes = append(rawNodes, rawNode{})
	rootBegin, rootEnd := build(root)
	rawNodes[0] = rawNode{key: uint16(len(entries)), a: uint32(rootBegin), b: uint32(rootEnd)}

	return serializeNodes(rawNodes), arenaBuf
}

type rawNode struct {
	key uint16
	a   uint32
	b   uint32
}

func serializeNodes(nodes []rawNode) []byte {
	buf := make([]byte, len(nodes)*nodeSize)
	for i, n := range nodes {
		off := i * nodeSize
		binary.LittleEndian.PutUint16(buf[off:], n.key)
		binary.LittleEndian.PutUint32(buf[off+2:], n.a&0x00FFFFFF)
		binary.LittleEndian.PutUint32(buf[off+6:], n.b&0x00FFFFFF)
	}
	return buf
}
