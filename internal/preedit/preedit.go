// Package preedit implements the preedit buffer: an ordered,
// cursor-addressed sequence of symbols — completed syllables awaiting
// conversion, or already-committed characters.
package preedit

import "github.com/zhuyinime/zhuyin/internal/phoneme"

// Origin records how a Char symbol entered the buffer.
type Origin int

const (
	OriginCommit Origin = iota
	OriginTyped
	OriginFullwidth
)

// Symbol is the buffer's tagged variant: either a completed syllable
// awaiting conversion, or a character already committed to the buffer
// (from the chooser, from directly typed punctuation, or from
// fullwidth-mode ASCII).
type Symbol struct {
	Syllable   phoneme.Syllable
	IsSyllable bool
	Char       string
	Origin     Origin

	// AltSyllable is the second completion some layouts generate for an
	// ambiguous key run (Hsu, ET26), populated alongside Syllable so the
	// chooser can consult both when segmenting. HasAlt is false for
	// every layout that never produces one.
	AltSyllable phoneme.Syllable
	HasAlt      bool
}

// NewSyllableSymbol wraps a completed syllable.
func NewSyllableSymbol(s phoneme.Syllable) Symbol {
	return Symbol{Syllable: s, IsSyllable: true}
}

// NewSyllableSymbolWithAlt wraps a completed syllable together with the
// layout's alternate reading of the same key run.
func NewSyllableSymbolWithAlt(s, alt phoneme.Syllable) Symbol {
	return Symbol{Syllable: s, IsSyllable: true, AltSyllable: alt, HasAlt: true}
}

// NewCharSymbol wraps an already-committed character/grapheme.
func NewCharSymbol(ch string, origin Origin) Symbol {
	return Symbol{Char: ch, Origin: origin}
}

// ErrOutOfCapacity is returned by InsertAt when the buffer is already at
// its configured max_chi_symbol_len.
var ErrOutOfCapacity = outOfCapacityError{}

type outOfCapacityError struct{}

func (outOfCapacityError) Error() string { return "preedit: buffer at capacity" }

// MaxCapacityCeiling is the implementation-defined ceiling on
// max_chi_symbol_len: the buffer never grows past this many symbols
// regardless of configuration.
const MaxCapacityCeiling = 39

// DefaultCapacity is the default max_chi_symbol_len.
const DefaultCapacity = 10

// Buffer is the preedit sequence with cursor and bounded capacity.
type Buffer struct {
	symbols  []Symbol
	cursor   int
	capacity int
}

// New creates an empty buffer with the given capacity, clamped into
// [1, MaxCapacityCeiling].
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	if capacity > MaxCapacityCeiling {
		capacity = MaxCapacityCeiling
	}
	return &Buffer{capacity: capacity}
}

// SetCapacity adjusts the capacity bound in place; it does not evict
// existing symbols even if the new capacity is smaller than Len().
func (b *Buffer) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	if capacity > MaxCapacityCeiling {
		capacity = MaxCapacityCeiling
	}
	b.capacity = capacity
}

// Len returns the number of symbols currently buffered.
func (b *Buffer) Len() int { return len(b.symbols) }

// Cursor returns the current cursor position, in [0, Len()].
func (b *Buffer) Cursor() int { return b.cursor }

// SetCursor moves the cursor, clamped to [0, Len()].
func (b *Buffer) SetCursor(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.symbols) {
		pos = len(b.symbols)
	}
	b.cursor = pos
}

// Iter returns a copy of the buffered symbols in order.
func (b *Buffer) Iter() []Symbol {
	out := make([]Symbol, len(b.symbols))
	copy(out, b.symbols)
	return out
}

// At returns the symbol at index i.
func (b *Buffer) At(i int) Symbol { return b.symbols[i] }

// InsertAt inserts sym at the cursor. A buffer already at capacity
// silently rejects further phonetic input: callers translate
// ErrOutOfCapacity into an Absorb-to-Ignore downgrade rather than
// surfacing a hard error.
func (b *Buffer) InsertAt(sym Symbol) error {
	if len(b.symbols) >= b.capacity {
		return ErrOutOfCapacity
	}
	b.symbols = append(b.symbols, Symbol{})
	copy(b.symbols[b.cursor+1:], b.symbols[b.cursor:len(b.symbols)-1])
	b.symbols[b.cursor] = sym
	b.cursor++
	return nil
}

// DeleteBefore removes the symbol immediately before the cursor
// (backspace), reporting whether anything was removed.
func (b *Buffer) DeleteBefore() bool {
	if b.cursor == 0 {
		return false
	}
	b.symbols = append(b.symbols[:b.cursor-1], b.symbols[b.cursor:]...)
	b.cursor--
	return true
}

// DeleteAfter removes the symbol immediately after the cursor (forward
// delete), reporting whether anything was removed.
func (b *Buffer) DeleteAfter() bool {
	if b.cursor >= len(b.symbols) {
		return false
	}
	b.symbols = append(b.symbols[:b.cursor], b.symbols[b.cursor+1:]...)
	return true
}

// SplitAt splits the buffer into the symbols before and at/after
// position n, without mutating the receiver.
func (b *Buffer) SplitAt(n int) (before, after []Symbol) {
	if n < 0 {
		n = 0
	}
	if n > len(b.symbols) {
		n = len(b.symbols)
	}
	before = append([]Symbol(nil), b.symbols[:n]...)
	after = append([]Symbol(nil), b.symbols[n:]...)
	return before, after
}

// DrainHead removes and returns the symbol at position 0, shifting the
// cursor left by one if it was already past position 0. Used by the
// session façade to drain a committed interval's worth of symbols.
func (b *Buffer) DrainHead() (Symbol, bool) {
	if len(b.symbols) == 0 {
		return Symbol{}, false
	}
	sym := b.symbols[0]
	b.symbols = b.symbols[1:]
	if b.cursor > 0 {
		b.cursor--
	}
	return sym, true
}

// Reset empties the buffer and resets the cursor.
func (b *Buffer) Reset() {
	b.symbols = nil
	b.cursor = 0
}
