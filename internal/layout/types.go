// Package layout implements the thirteen keyboard layouts and the
// phonetic editor state machine that accumulates their keystrokes into
// a completed syllable.
package layout

import "github.com/zhuyinime/zhuyin/internal/phoneme"

// KeyBehavior is the outcome of feeding one key to the editor.
type KeyBehavior int

const (
	// Ignore: the key had no effect (e.g. buffer at capacity, or the
	// key is meaningless in the current state).
	Ignore KeyBehavior = iota
	// Absorb: the in-progress syllable was modified but is not complete.
	Absorb
	// Commit: a tone was set; the syllable is complete and ready to be
	// drained via Editor.Syllable.
	Commit
	// KeyError: the key cannot occupy the current slot.
	KeyError
	// NoWord: surfaced by the session (not the editor) when a completed
	// syllable has no single-character dictionary match; kept here so
	// callers share one enum across C2 and C7.
	NoWord
	// OpenSymbolTable: the key should open the punctuation/symbol table,
	// an external collaborator the editor never drives itself; this
	// value is reserved for the session façade.
	OpenSymbolTable
	// Error: unrecoverable per-keystroke error.
	Error
)

func (b KeyBehavior) String() string {
	switch b {
	case Ignore:
		return "Ignore"
	case Absorb:
		return "Absorb"
	case Commit:
		return "Commit"
	case KeyError:
		return "KeyError"
	case NoWord:
		return "NoWord"
	case OpenSymbolTable:
		return "OpenSymbolTable"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// ID identifies one of the thirteen supported layouts.
type ID int

const (
	Default ID = iota // Dachen
	Hsu
	ET
	ET26
	DachenCP26
	HanyuPinyin
	ThlPinyin
	MPS2Pinyin
	Dvorak
	DvorakHsu
	IBM
	GinYieh
	Carpalx
)

// EditorState is the mutable, layout-owned state of one in-progress
// syllable: the phoneme built so far, the raw keys consumed toward it
// (used to replay on RemoveLast), and an opaque per-layout auxiliary
// slot (Pinyin letter buffers, the CP26 pending first stroke, Hsu's
// tone-vs-letter disambiguation).
type EditorState struct {
	Phoneme phoneme.Phoneme
	Keys    []byte
	Aux     any
}

// reset clears the state back to empty, preserving no Aux — a fresh
// syllable starts with fresh auxiliary state.
func (s *EditorState) reset() {
	s.Phoneme = 0
	s.Keys = nil
	s.Aux = nil
}

// Layout is a pure function of (current in-progress state, key) to a
// behavior, mutating state in place. Implementations keep all of their
// per-layout quirks — contextual key roles, two-stroke composition,
// letter-buffer accumulation — behind this one method so the Editor
// never needs to know which layout it is driving.
type Layout interface {
	ID() ID
	Name() string
	Step(state *EditorState, key byte) KeyBehavior
}

// AltProducer is implemented by layouts that can generate a second,
// alternative completion from the same keystrokes (the contextual
// layouts Hsu, ET and ET26, and remaps over them); Alt reports false
// when the keystrokes have no alternate reading. Callers
// union the primary and alternate candidates downstream, preferring the
// primary on a tie.
type AltProducer interface {
	Alt(state EditorState) (phoneme.Phoneme, bool)
}

// Editor is the phonetic editor: it drives one Layout across a
// sequence of keystrokes and exposes the completed syllable once a tone
// key finalises it.
type Editor struct {
	layout Layout

	state EditorState

	lastBehavior KeyBehavior
	committed    phoneme.Phoneme
	committedAlt phoneme.Phoneme
	hasAlt       bool
}

// NewEditor creates an editor bound to the given layout.
func NewEditor(l Layout) *Editor {
	return &Editor{layout: l}
}

// KBType returns the configured layout id.
func (e *Editor) KBType() ID { return e.layout.ID() }

// SetLayout switches the active layout, clearing all in-progress state
// (switching mid-syllable is the host's decision, not the editor's).
func (e *Editor) SetLayout(l Layout) {
	e.layout = l
	e.RemoveAll()
}

// Input feeds one ASCII key to the editor.
func (e *Editor) Input(key byte) KeyBehavior {
	behavior := e.layout.Step(&e.state, key)
	e.lastBehavior = behavior

	switch behavior {
	case Absorb:
		e.state.Keys = append(e.state.Keys, key)
	case Commit:
		e.state.Keys = append(e.state.Keys, key)
		e.committed = e.state.Phoneme
		e.hasAlt = false
		if ap, ok := e.layout.(AltProducer); ok {
			if alt, has := ap.Alt(e.state); has && alt != e.committed {
				e.committedAlt = alt
				e.hasAlt = true
			}
		}
		e.state.reset()
	}

	return behavior
}

// Syllable returns the phoneme completed by the most recent Commit.
// Valid only immediately after Input returned Commit.
func (e *Editor) Syllable() phoneme.Syllable {
	return phoneme.NewSyllable(e.committed)
}

// AltSyllable returns the alternate completion some layouts generate
// alongside the primary one, if any.
func (e *Editor) AltSyllable() (phoneme.Syllable, bool) {
	if !e.hasAlt {
		return phoneme.Syllable(0), false
	}
	return phoneme.NewSyllable(e.committedAlt), true
}

// IsEntering reports whether any in-progress phonetic state exists.
func (e *Editor) IsEntering() bool {
	return e.state.Phoneme != 0 || len(e.state.Keys) > 0
}

// RemoveAll clears in-progress and auxiliary state.
func (e *Editor) RemoveAll() {
	e.state.reset()
}

// RemoveLast deletes the most recent keystroke. Behaviour is
// layout-specific only in the sense that replaying the remaining keys
// through the same Layout.Step naturally reproduces whatever the
// layout's own rules would have done with one fewer key: reset, then
// replay every key but the last.
func (e *Editor) RemoveLast() {
	if len(e.state.Keys) == 0 {
		return
	}
	keys := e.state.Keys[:len(e.state.Keys)-1]
	e.state.reset()
	for _, k := range keys {
		e.layout.Step(&e.state, k)
		e.state.Keys = append(e.state.Keys, k)
	}
}
