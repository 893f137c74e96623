package layout

// DefaultLayout is the standard Dachen ("big") Zhuyin keyboard: direct,
// context-free key-to-phoneme mapping, strict initial→medial→final
// ordering, and tone keys fixed at space/6/3/4/7.
type DefaultLayout struct{}

// NewDefaultLayout creates the Dachen layout.
func NewDefaultLayout() *DefaultLayout { return &DefaultLayout{} }

func (DefaultLayout) ID() ID     { return Default }
func (DefaultLayout) Name() string { return "Default" }

var defaultInitials = map[byte]int{
	'1': 1, 'q': 2, 'a': 3, 'z': 4, '2': 5, 'w': 6, 's': 7, 'x': 8,
	'e': 9, 'd': 10, 'c': 11, 'r': 12, 'f': 13, 'v': 14, '5': 15,
	't': 16, 'g': 17, 'b': 18, 'y': 19, 'h': 20, 'n': 21,
}

var defaultMedials = map[byte]int{
	'u': 1, 'j': 2, 'm': 3,
}

var defaultFinals = map[byte]int{
	'8': 1, 'i': 2, 'k': 3, ',': 4,
	'9': 5, 'o': 6, 'l': 7, '.': 8,
	'0': 9, 'p': 10, ';': 11, '/': 12, '-': 13,
}

// defaultTones maps a tone key to its tone value (1-5): space=1, 6=2,
// 3=3, 4=4, 7=5.
var defaultTones = map[byte]int{
	' ': 1, '6': 2, '3': 3, '4': 4, '7': 5,
}

// Step implements the Default (Dachen) key table.
func (DefaultLayout) Step(state *EditorState, key byte) KeyBehavior {
	if tone, ok := defaultTones[key]; ok {
		if state.Phoneme == 0 {
			return KeyError
		}
		state.Phoneme = state.Phoneme.WithTone(tone)
		return Commit
	}

	if v, ok := defaultInitials[key]; ok {
		if state.Phoneme.Initial() != 0 || state.Phoneme.Medial() != 0 || state.Phoneme.Final() != 0 {
			return KeyError
		}
		state.Phoneme = state.Phoneme.WithInitial(v)
		return Absorb
	}

	if v, ok := defaultMedials[key]; ok {
		if state.Phoneme.Medial() != 0 || state.Phoneme.Final() != 0 {
			return KeyError
		}
		state.Phoneme = state.Phoneme.WithMedial(v)
		return Absorb
	}

	if v, ok := defaultFinals[key]; ok {
		if state.Phoneme.Final() != 0 {
			return KeyError
		}
		state.Phoneme = state.Phoneme.WithFinal(v)
		return Absorb
	}

	return KeyError
}

var _ Layout = DefaultLayout{}
