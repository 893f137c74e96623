package layout

import "github.com/zhuyinime/zhuyin/internal/phoneme"

// hsuToneKeys are the four letter keys that double as tone keys once a
// valid initial has been entered.
var hsuToneKeys = map[byte]int{
	'd': 2, 'f': 3, 'j': 4, 'k': 5,
}

// HsuLayout implements the Hsu direct-Zhuyin keyboard: most keys share
// the Default table's initial/medial/final assignment, but d/f/j/k are
// contextual — they act as tone keys once an initial is present, and as
// ordinary phonetic keys otherwise. Hsu also generates an alternate
// completion (alt_syllable) alongside the primary one by trying the
// opposite resolution of the last contextual key and seeing if it also
// yields a complete syllable shape.
type HsuLayout struct{}

// NewHsuLayout creates the Hsu layout.
func NewHsuLayout() *HsuLayout { return &HsuLayout{} }

func (HsuLayout) ID() ID     { return Hsu }
func (HsuLayout) Name() string { return "Hsu" }

type hsuAux struct {
	lastContextualKey byte
	tookToneBranch    bool
}

func (HsuLayout) Step(state *EditorState, key byte) KeyBehavior {
	return contextualStep(state, key, hsuToneKeys)
}

// contextualStep is the shared shape behind Hsu and ET/ET26: a letter key
// is an ordinary initial/medial/final key unless it is listed in
// toneKeys and an initial has already been entered, in which case it
// finalises the syllable with that tone instead. Space always commits
// with tone 1. This is the one mechanism the spec calls for in three
// different layouts with three different toneKeys tables, so it is
// factored once rather than copied.
func contextualStep(state *EditorState, key byte, toneKeys map[byte]int) KeyBehavior {
	if key == ' ' {
		if state.Phoneme == 0 {
			return KeyError
		}
		state.Phoneme = state.Phoneme.WithTone(1)
		return Commit
	}

	if tone, ok := toneKeys[key]; ok && state.Phoneme.Initial() != 0 {
		state.Phoneme = state.Phoneme.WithTone(tone)
		state.Aux = hsuAux{lastContextualKey: key, tookToneBranch: true}
		return Commit
	}

	if v, ok := defaultInitials[key]; ok && state.Phoneme.Initial() == 0 &&
		state.Phoneme.Medial() == 0 && state.Phoneme.Final() == 0 {
		state.Phoneme = state.Phoneme.WithInitial(v)
		state.Aux = hsuAux{lastContextualKey: key}
		return Absorb
	}

	if v, ok := defaultMedials[key]; ok && state.Phoneme.Medial() == 0 && state.Phoneme.Final() == 0 {
		state.Phoneme = state.Phoneme.WithMedial(v)
		return Absorb
	}

	if v, ok := defaultFinals[key]; ok && state.Phoneme.Final() == 0 {
		state.Phoneme = state.Phoneme.WithFinal(v)
		state.Aux = hsuAux{lastContextualKey: key}
		return Absorb
	}

	return KeyError
}

// Alt produces the alternate completion Hsu generates when the final
// committing key was one of the contextual tone keys: the same phoneme
// but with that key's final-role value substituted for the tone,
// re-resolved with tone 1. Downstream (the chooser) looks both up and
// unions the dictionary hits, preferring the primary on a tie.
func (HsuLayout) Alt(state EditorState) (phoneme.Phoneme, bool) {
	return contextualAlt(state)
}

var _ Layout = HsuLayout{}
var _ AltProducer = HsuLayout{}
