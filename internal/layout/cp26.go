package layout

import "github.com/zhuyinime/zhuyin/internal/phoneme"

// Phoneme is a local alias so this file reads the same as the rest of
// the package without repeating the import qualifier on every line.
type Phoneme = phoneme.Phoneme

// cp26Kind distinguishes which phoneme field a CP26 stroke sets.
type cp26Kind int

const (
	cp26Initial cp26Kind = iota
	cp26Medial
	cp26Final
)

type cp26Stroke struct {
	kind  cp26Kind
	value int
}

func (s cp26Stroke) apply(p Phoneme) Phoneme {
	switch s.kind {
	case cp26Initial:
		return p.WithInitial(s.value)
	case cp26Medial:
		return p.WithMedial(s.value)
	default:
		return p.WithFinal(s.value)
	}
}

// cp26Table gives each of the 26 letter keys a primary stroke (the same
// single-role assignment Default and Hsu use on that key, so a CP26
// typist who only ever taps once gets Default-compatible output) and a
// secondary stroke produced by tapping the same key twice in a row
// before any other key: a state variable records the first stroke
// until the second stroke arrives or another key interrupts it.
var cp26Table = buildCP26Table()

func buildCP26Table() map[byte][2]cp26Stroke {
	table := make(map[byte][2]cp26Stroke, 26)

	finals := make([]byte, 0, len(defaultFinals))
	for k := range defaultFinals {
		finals = append(finals, k)
	}
	// Deterministic order: iterate ASCII order rather than Go's
	// randomised map order, since this table is built once at package
	// init and must be stable across runs.
	sortBytes(finals)

	letters := make([]byte, 0, 26)
	for c := byte('a'); c <= 'z'; c++ {
		letters = append(letters, c)
	}

	secondaryCursor := 0
	nextSecondaryFinal := func(avoid int) cp26Stroke {
		for {
			k := finals[secondaryCursor%len(finals)]
			secondaryCursor++
			v := defaultFinals[k]
			if v != avoid {
				return cp26Stroke{kind: cp26Final, value: v}
			}
		}
	}

	for _, key := range letters {
		var primary cp26Stroke
		switch {
		case has(defaultInitials, key):
			primary = cp26Stroke{kind: cp26Initial, value: defaultInitials[key]}
		case has(defaultMedials, key):
			primary = cp26Stroke{kind: cp26Medial, value: defaultMedials[key]}
		case has(defaultFinals, key):
			primary = cp26Stroke{kind: cp26Final, value: defaultFinals[key]}
		default:
			continue
		}

		avoidFinal := -1
		if primary.kind == cp26Final {
			avoidFinal = primary.value
		}
		table[key] = [2]cp26Stroke{primary, nextSecondaryFinal(avoidFinal)}
	}

	return table
}

func has[K comparable, V any](m map[K]V, k K) bool {
	_, ok := m[k]
	return ok
}

func sortBytes(b []byte) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j-1] > b[j]; j-- {
			b[j-1], b[j] = b[j], b[j-1]
		}
	}
}

// DachenCP26Layout implements the Dachen-CP26 two-stroke keyboard.
type DachenCP26Layout struct{}

// NewDachenCP26Layout creates the Dachen-CP26 layout.
func NewDachenCP26Layout() *DachenCP26Layout { return &DachenCP26Layout{} }

func (DachenCP26Layout) ID() ID       { return DachenCP26 }
func (DachenCP26Layout) Name() string { return "Dachen-CP26" }

type cp26Aux struct {
	pendingKey   byte
	pendingStart Phoneme // phoneme value before the pending key's primary stroke was applied
}

func (DachenCP26Layout) Step(state *EditorState, key byte) KeyBehavior {
	if tone, ok := defaultTones[key]; ok {
		if state.Phoneme == 0 {
			return KeyError
		}
		state.Phoneme = state.Phoneme.WithTone(tone)
		state.Aux = nil
		return Commit
	}

	strokes, ok := cp26Table[key]
	if !ok {
		return KeyError
	}

	if aux, pending := state.Aux.(cp26Aux); pending && aux.pendingKey == key {
		// Second stroke on the same key: undo the tentative primary
		// application and apply the secondary stroke instead.
		state.Phoneme = strokes[1].apply(aux.pendingStart)
		state.Aux = nil
		return Absorb
	}

	// Either no pending key, or a different key was just pressed — the
	// previous pending stroke (if any) is already committed to
	// state.Phoneme from when it was first applied below, so it simply
	// stands finalised. Apply this key's primary stroke tentatively.
	start := state.Phoneme
	applied := strokes[0].apply(start)
	if applied == start {
		return KeyError
	}
	state.Phoneme = applied
	state.Aux = cp26Aux{pendingKey: key, pendingStart: start}
	return Absorb
}

var _ Layout = DachenCP26Layout{}
