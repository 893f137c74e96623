// Package userdict implements the user phrase store: a persistent,
// append-only log of user-defined phrases with frequency aging, merged
// with the system dictionary at lookup time.
package userdict

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

// HalfLifeSecs is the aging half-life used by the decay curve in
// EffectiveFreq. Thirty days gives simple per-phrase frequency aging
// without drifting into full language-model territory.
const HalfLifeSecs = 30 * 24 * 3600

const (
	opAdd byte = iota
	opRemove
	opBump
)

const recordVersion byte = 1

// Direction controls where a freshly added user phrase sorts among
// same-syllable candidates, as selected by the `add_phrase_direction`
// config option.
type Direction int

const (
	Head Direction = iota
	Tail
)

// Entry is one live user phrase record.
type Entry struct {
	Seq          []phoneme.Syllable
	Text         string
	OriginalFreq uint32
	MaxFreq      uint32
	RecentTime   int64
}

func entryKey(seq []phoneme.Syllable, text string) string {
	b := make([]byte, 0, len(seq)*2+len(text)+1)
	for _, s := range seq {
		v := uint16(s.Phoneme())
		b = append(b, byte(v), byte(v>>8))
	}
	b = append(b, 0)
	b = append(b, text...)
	return string(b)
}

// EffectiveFreq computes the aging curve: f = clamp(o + decay(now-t)*(m-o), o, m).
func (e Entry) EffectiveFreq(now int64) uint32 {
	delta := now - e.RecentTime
	decay := 1.0 - float64(delta)/float64(HalfLifeSecs)
	if decay < 0 {
		decay = 0
	}
	f := float64(e.OriginalFreq) + decay*float64(e.MaxFreq-e.OriginalFreq)
	if f < float64(e.OriginalFreq) {
		f = float64(e.OriginalFreq)
	}
	if f > float64(e.MaxFreq) {
		f = float64(e.MaxFreq)
	}
	return uint32(f)
}

// Store is the open user phrase log: an in-memory hash index backed by
// an append-only file, guarded by an advisory lock. A writer holds an
// exclusive lock and excludes everyone else; a reader holds a shared
// lock and may coexist with any number of other readers, only blocking
// while a writer is active.
type Store struct {
	path     string
	file     *os.File
	logger   *log.Logger
	readOnly bool

	mu       sync.Mutex
	index    map[string]*Entry
	order    []string        // first-seen order, for deterministic Lookup/compaction output
	inOrder  map[string]bool // membership set for order, so a remove-then-readd never duplicates it
	degraded bool
	appends  int // records appended since open/compaction, for the 2x-live compaction trigger
}

// Open opens (creating if necessary) the user phrase log at path for
// read-write access: it takes an exclusive advisory lock, blocking
// until every other opener (reader or writer) has released it, then
// replays the log into memory. logger may be nil, in which case
// diagnostics are discarded.
func Open(path string, logger *log.Logger) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("userdict: open %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("userdict: lock %s: %w", path, err)
	}

	s := &Store{path: path, file: f, logger: logger, index: make(map[string]*Entry), inOrder: make(map[string]bool)}
	if err := s.replay(); err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		return nil, fmt.Errorf("userdict: replay %s: %w", path, err)
	}
	return s, nil
}

// OpenReadOnly opens the user phrase log at path for lookup-only
// access: it takes a shared advisory lock, which any number of other
// read-only openers may hold at once, and only blocks while a writer
// (Open) holds the exclusive lock. The returned Store's mutating
// methods (Add, Remove, BumpFrequency) are no-ops that report an
// error rather than persist anything.
func OpenReadOnly(path string, logger *log.Logger) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("userdict: open %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		f.Close()
		return nil, fmt.Errorf("userdict: lock %s: %w", path, err)
	}

	s := &Store{path: path, file: f, logger: logger, readOnly: true, index: make(map[string]*Entry), inOrder: make(map[string]bool)}
	if err := s.replay(); err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		return nil, fmt.Errorf("userdict: replay %s: %w", path, err)
	}
	return s, nil
}

// errReadOnly is returned by the mutating methods on a Store opened
// with OpenReadOnly.
var errReadOnly = fmt.Errorf("userdict: store is read-only")

func (s *Store) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func (s *Store) replay() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r := bufio.NewReader(s.file)
	for {
		key, entry, op, err := readRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s.appends++
		switch op {
		case opAdd, opBump:
			if !s.inOrder[key] {
				s.order = append(s.order, key)
				s.inOrder[key] = true
			}
			s.index[key] = entry
		case opRemove:
			delete(s.index, key)
		}
	}
	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	return nil
}

func readRecord(r *bufio.Reader) (key string, e *Entry, op byte, err error) {
	header := make([]byte, 3)
	if _, err = io.ReadFull(r, header); err != nil {
		return "", nil, 0, err
	}
	// header[0] is the format version; only version 1 is understood.
	op = header[1]
	seqLen := int(header[2])

	seqBytes := make([]byte, seqLen*2)
	if _, err = io.ReadFull(r, seqBytes); err != nil {
		return "", nil, 0, err
	}
	seq := make([]phoneme.Syllable, seqLen)
	for i := 0; i < seqLen; i++ {
		v := binary.LittleEndian.Uint16(seqBytes[i*2:])
		seq[i] = phoneme.NewSyllable(phoneme.Phoneme(v))
	}

	var textLenBuf [2]byte
	if _, err = io.ReadFull(r, textLenBuf[:]); err != nil {
		return "", nil, 0, err
	}
	textLen := binary.LittleEndian.Uint16(textLenBuf[:])
	textBytes := make([]byte, textLen)
	if _, err = io.ReadFull(r, textBytes); err != nil {
		return "", nil, 0, err
	}
	text := string(textBytes)

	var tail [16]byte
	if _, err = io.ReadFull(r, tail[:]); err != nil {
		return "", nil, 0, err
	}
	freq := binary.LittleEndian.Uint32(tail[0:4])
	maxFreq := binary.LittleEndian.Uint32(tail[4:8])
	timestamp := int64(binary.LittleEndian.Uint64(tail[8:16]))

	e = &Entry{Seq: seq, Text: text, OriginalFreq: freq, MaxFreq: maxFreq, RecentTime: timestamp}
	return entryKey(seq, text), e, op, nil
}

func writeRecord(w io.Writer, op byte, seq []phoneme.Syllable, text string, freq, maxFreq uint32, timestamp int64) error {
	if len(seq) > 255 {
		return fmt.Errorf("userdict: syllable sequence too long (%d)", len(seq))
	}
	if len(text) > 0xFFFF {
		return fmt.Errorf("userdict: phrase text too long (%d bytes)", len(text))
	}

	buf := make([]byte, 0, 3+len(seq)*2+2+len(text)+16)
	buf = append(buf, recordVersion, op, byte(len(seq)))
	for _, s := range seq {
		v := uint16(s.Phoneme())
		buf = append(buf, byte(v), byte(v>>8))
	}
	var textLen [2]byte
	binary.LittleEndian.PutUint16(textLen[:], uint16(len(text)))
	buf = append(buf, textLen[:]...)
	buf = append(buf, text...)

	var tail [16]byte
	binary.LittleEndian.PutUint32(tail[0:4], freq)
	binary.LittleEndian.PutUint32(tail[4:8], maxFreq)
	binary.LittleEndian.PutUint64(tail[8:16], uint64(timestamp))
	buf = append(buf, tail[:]...)

	_, err := w.Write(buf)
	return err
}

// Lookup returns the live user entries for seq; the caller (normally
// the chooser) merges these with the system dictionary's PhraseFirst
// results, with the user entry winning on duplicate text.
func (s *Store) Lookup(seq []phoneme.Syllable, now int64) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, key := range s.order {
		e, ok := s.index[key]
		if !ok || len(e.Seq) != len(seq) {
			continue
		}
		match := true
		for i := range seq {
			if e.Seq[i] != seq[i] {
				match = false
				break
			}
		}
		if match {
			out = append(out, *e)
		}
	}
	return out
}

// Add inserts a new user phrase, or bumps an existing one's frequency if
// (seq, text) is already present. dir controls where a brand-new entry
// (no existing user or system record) sorts among same-syllable
// candidates by seeding OriginalFreq at either end of the plausible
// range.
func (s *Store) Add(seq []phoneme.Syllable, text string, dir Direction, now int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return errReadOnly
	}

	key := entryKey(seq, text)
	if e, ok := s.index[key]; ok {
		return s.bumpLocked(key, e, now)
	}

	var seed uint32 = 1
	if dir == Head {
		seed = 1 << 16
	}
	e := &Entry{Seq: seq, Text: text, OriginalFreq: seed, MaxFreq: seed, RecentTime: now}

	if s.degraded {
		s.logf("userdict: degraded, Add(%q) not persisted", text)
	} else if err := writeRecord(s.file, opAdd, seq, text, e.OriginalFreq, e.MaxFreq, now); err != nil {
		s.degraded = true
		s.logf("userdict: write failed, degrading to read-only: %v", err)
	}

	s.index[key] = e
	if !s.inOrder[key] {
		s.order = append(s.order, key)
		s.inOrder[key] = true
	}
	s.appends++
	return nil
}

// Remove deletes a user phrase entry.
func (s *Store) Remove(seq []phoneme.Syllable, text string, now int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return errReadOnly
	}

	key := entryKey(seq, text)
	if _, ok := s.index[key]; !ok {
		return nil
	}
	delete(s.index, key)

	if s.degraded {
		s.logf("userdict: degraded, Remove(%q) not persisted", text)
		return nil
	}
	if err := writeRecord(s.file, opRemove, seq, text, 0, 0, now); err != nil {
		s.degraded = true
		s.logf("userdict: write failed, degrading to read-only: %v", err)
	}
	s.appends++
	return nil
}

// BumpFrequency applies the aging function and records the access;
// called by the session whenever a phrase is committed or picked from
// the candidate window.
func (s *Store) BumpFrequency(seq []phoneme.Syllable, text string, now int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return errReadOnly
	}

	key := entryKey(seq, text)
	e, ok := s.index[key]
	if !ok {
		return fmt.Errorf("userdict: bump_frequency: no entry for %q", text)
	}
	return s.bumpLocked(key, e, now)
}

func (s *Store) bumpLocked(key string, e *Entry, now int64) error {
	f := e.EffectiveFreq(now)
	if f+1 > e.MaxFreq {
		e.MaxFreq = f + 1
	}
	e.RecentTime = now

	if s.degraded {
		s.logf("userdict: degraded, bump for %q not persisted", e.Text)
		return nil
	}
	if err := writeRecord(s.file, opBump, e.Seq, e.Text, e.OriginalFreq, e.MaxFreq, now); err != nil {
		s.degraded = true
		s.logf("userdict: write failed, degrading to read-only: %v", err)
	}
	s.appends++
	_ = key
	return nil
}

// Sync flushes the append log and compacts it when it has grown past
// twice the live entry count.
func (s *Store) Sync(now int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("userdict: sync: %w", err)
	}
	if s.appends > 2*len(s.index) {
		return s.compactLocked()
	}
	return nil
}

// compactLocked rewrites the log with exactly the live entries, dropping
// every superseded add/bump/remove record.
func (s *Store) compactLocked() error {
	tmpPath := s.path + ".compact"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("userdict: compact: %w", err)
	}

	for _, key := range s.order {
		e, ok := s.index[key]
		if !ok {
			continue
		}
		if err := writeRecord(tmp, opAdd, e.Seq, e.Text, e.OriginalFreq, e.MaxFreq, e.RecentTime); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("userdict: compact write: %w", err)
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("userdict: compact sync: %w", err)
	}
	tmp.Close()

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("userdict: compact rename: %w", err)
	}

	s.file.Close()
	f, err := os.OpenFile(s.path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("userdict: reopen after compact: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return fmt.Errorf("userdict: relock after compact: %w", err)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return err
	}
	s.file = f

	newOrder := make([]string, 0, len(s.index))
	newInOrder := make(map[string]bool, len(s.index))
	for _, key := range s.order {
		if _, ok := s.index[key]; ok {
			newOrder = append(newOrder, key)
			newInOrder[key] = true
		}
	}
	s.order = newOrder
	s.inOrder = newInOrder
	s.appends = len(newOrder)
	return nil
}

// Close releases the advisory lock and closes the log file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unix.Flock(int(s.file.Fd()), unix.LOCK_UN)
	return s.file.Close()
}
