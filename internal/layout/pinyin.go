package layout

// pinyinInitialOrder lists the pinyin initial spellings tried by
// decodePinyin, longest spellings first so prefix matching never stops
// early on "z" when "zh" was typed. pinyinInitialIndex gives each
// spelling's field value, following phoneme.InitialSymbols
// (b p m f d t n l g k h j q x zh ch sh r z c s).
var pinyinInitialOrder = []string{
	"zh", "ch", "sh",
	"b", "p", "m", "f", "d", "t", "n", "l",
	"g", "k", "h", "j", "q", "x", "r", "z", "c", "s",
}

var pinyinInitialIndex = map[string]int{
	"b": 1, "p": 2, "m": 3, "f": 4, "d": 5, "t": 6, "n": 7, "l": 8,
	"g": 9, "k": 10, "h": 11, "j": 12, "q": 13, "x": 14,
	"zh": 15, "ch": 16, "sh": 17, "r": 18, "z": 19, "c": 20, "s": 21,
}

type rhyme struct {
	medial int
	final  int
}

// pinyinRhymes maps the pinyin spelling of a syllable's rhyme (medial +
// final, with the initial already stripped) to its (medial, final)
// phoneme fields. Covers the standard Hanyu Pinyin rhyme set.
var pinyinRhymes = map[string]rhyme{
	"a": {0, 1}, "o": {0, 2}, "e": {0, 3}, "ê": {0, 4},
	"ai": {0, 5}, "ei": {0, 6}, "ao": {0, 7}, "ou": {0, 8},
	"an": {0, 9}, "en": {0, 10}, "ang": {0, 11}, "eng": {0, 12}, "er": {0, 13},

	"i": {1, 0}, "ia": {1, 1}, "ie": {1, 4}, "iao": {1, 7},
	"iu": {1, 8}, "iou": {1, 8}, "ian": {1, 9}, "in": {1, 10},
	"iang": {1, 11}, "ing": {1, 12},

	"u": {2, 0}, "ua": {2, 1}, "uo": {2, 2}, "uai": {2, 5},
	"ui": {2, 6}, "uei": {2, 6}, "uan": {2, 9}, "un": {2, 10},
	"uen": {2, 10}, "uang": {2, 11}, "ueng": {2, 12}, "ong": {2, 12},

	"v": {3, 0}, "ü": {3, 0}, "ve": {3, 4}, "üe": {3, 4},
	"van": {3, 9}, "üan": {3, 9}, "vn": {3, 10}, "ün": {3, 10},
	"iong": {3, 12},
}

// decodePinyin splits a Hanyu Pinyin syllable spelling (no tone) into
// (initial, medial, final) phoneme field values.
func decodePinyin(buf string) (initial, medial, final int, ok bool) {
	rest := buf
	for _, ini := range pinyinInitialOrder {
		if len(rest) > len(ini) && rest[:len(ini)] == ini {
			initial = pinyinInitialIndex[ini]
			rest = rest[len(ini):]
			break
		}
	}

	r, ok := pinyinRhymes[rest]
	if !ok {
		return 0, 0, 0, false
	}
	return initial, r.medial, r.final, true
}

type pinyinAux struct {
	buf []byte
}

// pinyinScheme drives HanyuPinyin, ThlPinyin and MPS2Pinyin: accumulate
// ASCII letters, then on a tone digit translate the buffer via
// decodePinyin (after normalising scheme-specific spelling to Hanyu
// Pinyin through initialAliases).
type pinyinScheme struct {
	id              ID
	name            string
	initialAliases  map[string]string // scheme spelling -> Hanyu spelling, applied at the start of the buffer
}

func (p pinyinScheme) normalise(buf string) string {
	for alias, canon := range p.initialAliases {
		if len(buf) >= len(alias) && buf[:len(alias)] == alias {
			return canon + buf[len(alias):]
		}
	}
	return buf
}

func (p pinyinScheme) ID() ID       { return p.id }
func (p pinyinScheme) Name() string { return p.name }

func (p pinyinScheme) Step(state *EditorState, key byte) KeyBehavior {
	if key >= '1' && key <= '5' {
		aux, _ := state.Aux.(pinyinAux)
		if len(aux.buf) == 0 {
			return KeyError
		}
		initial, medial, final, ok := decodePinyin(p.normalise(string(aux.buf)))
		if !ok {
			return KeyError
		}
		tone := int(key - '0')
		state.Phoneme = Phoneme(0).WithInitial(initial).WithMedial(medial).WithFinal(final).WithTone(tone)
		return Commit
	}

	if key < 'a' || key > 'z' {
		if key != 'v' {
			return KeyError
		}
	}

	aux, _ := state.Aux.(pinyinAux)
	if len(aux.buf) >= 6 {
		return KeyError
	}
	aux.buf = append(aux.buf, key)
	state.Aux = aux
	return Absorb
}

// NewHanyuPinyinLayout creates the standard Hanyu Pinyin scheme.
func NewHanyuPinyinLayout() Layout {
	return pinyinScheme{id: HanyuPinyin, name: "HanyuPinyin"}
}

// NewThlPinyinLayout creates the Tongyong ("Thl") Pinyin scheme: the
// same rhyme table as Hanyu Pinyin, but "jh" where Hanyu spells "zh".
func NewThlPinyinLayout() Layout {
	return pinyinScheme{
		id:   ThlPinyin,
		name: "ThlPinyin",
		initialAliases: map[string]string{
			"jh": "zh",
		},
	}
}

// NewMPS2PinyinLayout creates the MPS2 scheme, which diverges from Hanyu
// Pinyin on several initials.
func NewMPS2PinyinLayout() Layout {
	return pinyinScheme{
		id:   MPS2Pinyin,
		name: "MPS2Pinyin",
		initialAliases: map[string]string{
			"jh": "zh",
			"c":  "q",
			"sy": "x",
		},
	}
}

var _ Layout = pinyinScheme{}
