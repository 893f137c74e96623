package layout

import "github.com/zhuyinime/zhuyin/internal/phoneme"

// etToneKeys and et26ToneKeys give ET and ET26 their own contextual tone
// keys, distinct from Hsu's — the mechanism (contextualStep) is shared,
// the table is not.
var etToneKeys = map[byte]int{
	'e': 2, 'r': 3, 't': 4, 'y': 5,
}

var et26ToneKeys = map[byte]int{
	's': 2, 'd': 3, 'f': 4, 'g': 5,
}

// ETLayout implements the ET direct-Zhuyin keyboard.
type ETLayout struct{}

// NewETLayout creates the ET layout.
func NewETLayout() *ETLayout { return &ETLayout{} }

func (ETLayout) ID() ID       { return ET }
func (ETLayout) Name() string { return "ET" }

func (ETLayout) Step(state *EditorState, key byte) KeyBehavior {
	return contextualStep(state, key, etToneKeys)
}

func (ETLayout) Alt(state EditorState) (phoneme.Phoneme, bool) {
	return contextualAlt(state)
}

// ET26Layout implements ET26 on the same shared initial/medial/final
// table as ET; it differs from ET only in its contextual tone keys
// (s/d/f/g instead of e/r/t/y).
type ET26Layout struct{}

// NewET26Layout creates the ET26 layout.
func NewET26Layout() *ET26Layout { return &ET26Layout{} }

func (ET26Layout) ID() ID       { return ET26 }
func (ET26Layout) Name() string { return "ET26" }

func (ET26Layout) Step(state *EditorState, key byte) KeyBehavior {
	return contextualStep(state, key, et26ToneKeys)
}

func (ET26Layout) Alt(state EditorState) (phoneme.Phoneme, bool) {
	return contextualAlt(state)
}

// contextualAlt is the Alt policy shared by every contextual layout:
// when the committing key took the tone branch, the alternate
// completion re-resolves that key as a final instead, with tone 1. Only
// a tone key that also has a final role in the shared table yields an
// alternate: of the current tone tables that is Hsu's 'k' alone, so ET
// and ET26 never report one.
func contextualAlt(state EditorState) (phoneme.Phoneme, bool) {
	aux, ok := state.Aux.(hsuAux)
	if !ok || !aux.tookToneBranch {
		return 0, false
	}
	finalValue, ok := defaultFinals[aux.lastContextualKey]
	if !ok {
		return 0, false
	}
	return state.Phoneme.WithFinal(finalValue).WithTone(1), true
}

var (
	_ Layout      = ETLayout{}
	_ AltProducer = ETLayout{}
	_ Layout      = ET26Layout{}
	_ AltProducer = ET26Layout{}
)
