// Command zhuyinc compiles a plain-text phrase/frequency word list into
// the dict.dat/fonetree.dat pair internal/dict reads at runtime.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

// wordEntry is one parsed line of the input word list.
type wordEntry struct {
	text string
	seq  []phoneme.Phoneme
	freq uint32
}

// parseSyllable reads one "I-M-F-T" quad, e.g. "15-2-12-2".
func parseSyllable(tok string) (phoneme.Phoneme, error) {
	parts := strings.Split(tok, "-")
	if len(parts) != 4 {
		return 0, fmt.Errorf("syllable %q: want 4 dash-separated fields", tok)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("syllable %q: field %d: %w", tok, i, err)
		}
		v[i] = n
	}
	return phoneme.Pack(v[0], v[1], v[2], v[3]), nil
}

// parseLine reads one "phrase\tsyllables\tfreq" record. syllables is a
// space-separated list of I-M-F-T quads, one per character of phrase.
func parseLine(line string) (wordEntry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return wordEntry{}, fmt.Errorf("want 3 tab-separated fields, got %d", len(fields))
	}
	text := fields[0]
	freq, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return wordEntry{}, fmt.Errorf("frequency: %w", err)
	}

	tokens := strings.Fields(fields[1])
	seq := make([]phoneme.Phoneme, 0, len(tokens))
	for _, tok := range tokens {
		ph, err := parseSyllable(tok)
		if err != nil {
			return wordEntry{}, err
		}
		seq = append(seq, ph)
	}
	if len(seq) == 0 {
		return wordEntry{}, fmt.Errorf("no syllables given for %q", text)
	}
	return wordEntry{text: text, seq: seq, freq: uint32(freq)}, nil
}

func readWordList(path string) ([]wordEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []wordEntry
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func main() {
	input := flag.String("input", "", "path to the phrase/frequency word list")
	outDir := flag.String("out", ".", "directory to write dict.dat and fonetree.dat into")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "zhuyinc: -input is required")
		os.Exit(2)
	}

	entries, err := readWordList(*input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "zhuyinc:", err)
		os.Exit(1)
	}
	sortEntries(entries)

	nodes, arena := compile(entries)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "zhuyinc:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "fonetree.dat"), nodes, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "zhuyinc:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "dict.dat"), arena, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "zhuyinc:", err)
		os.Exit(1)
	}

	fmt.Printf("zhuyinc: wrote %d phrases (%d tree nodes, %d arena bytes)\n", len(entries), len(nodes)/nodeSize, len(arena))
}

// sort entries by phrase text purely so the build below is
// deterministic across runs (the tree is grouped by syllable regardless
// of input order).
func sortEntries(entries []wordEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].text < entries[j].text
	})
}
