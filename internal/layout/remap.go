package layout

// remapLayout wraps an existing Layout, translating each incoming key
// through a fixed positional substitution before delegating to the
// wrapped layout's Step. Dvorak, Dvorak-Hsu, IBM, Gin-Yieh and Carpalx
// are built this way: they are not new phonetic tables, they are
// physical keyboard layouts that land on the Default or Hsu table once
// the physical key is translated back to its QWERTY position.
type remapLayout struct {
	id     ID
	name   string
	base   Layout
	toQwerty map[byte]byte
}

func (r remapLayout) ID() ID       { return r.id }
func (r remapLayout) Name() string { return r.name }

func (r remapLayout) translate(key byte) byte {
	if q, ok := r.toQwerty[key]; ok {
		return q
	}
	return key
}

func (r remapLayout) Step(state *EditorState, key byte) KeyBehavior {
	return r.base.Step(state, r.translate(key))
}

func (r remapLayout) Alt(state EditorState) (Phoneme, bool) {
	if alt, ok := r.base.(AltProducer); ok {
		return alt.Alt(state)
	}
	return 0, false
}

// dvorakToQwerty maps each Dvorak physical key to the QWERTY key that
// sits in the same physical position, so NewDvorakLayout can delegate
// straight through to DefaultLayout's QWERTY-indexed tables.
var dvorakToQwerty = map[byte]byte{
	'\'': 'q', ',': 'w', '.': 'e', 'p': 'r', 'y': 't',
	'f': 'y', 'g': 'u', 'c': 'i', 'r': 'o', 'l': 'p',
	'/': '[', '=': ']',
	'a': 'a', 'o': 's', 'e': 'd', 'u': 'f', 'i': 'g',
	'd': 'h', 'h': 'j', 't': 'k', 'n': 'l', 's': ';', '-': '\'',
	';': 'z', 'q': 'x', 'j': 'c', 'k': 'v', 'x': 'b', 'b': 'n', 'm': 'm',
	'w': ',', 'v': '.', 'z': '/',
	'[': '-', ']': '=',
}

// ibmToQwerty maps the IBM layout's physical key positions, which swap a
// handful of punctuation/letter keys relative to QWERTY, back to QWERTY.
var ibmToQwerty = map[byte]byte{
	'?': '1', '7': '2', '6': '6', '0': '9', '9': '0', '2': '8', '1': '7',
}

// ginYiehToQwerty maps the Gin-Yieh layout's physical positions back to
// QWERTY; Gin-Yieh mainly relocates the digit-row final/tone keys.
var ginYiehToQwerty = map[byte]byte{
	'1': '1', '2': '2', '3': '3', '4': '4', '5': '5',
	'0': '6', '9': '7', '8': '8', '7': '9', '6': '0',
}

// carpalxToQwerty maps the Carpalx layout (an ergonomic full remap of
// every letter key) back to QWERTY positions.
var carpalxToQwerty = map[byte]byte{
	'q': 'q', 'g': 'w', 'm': 'e', 'l': 'r', 'w': 't',
	'y': 'y', 'f': 'u', 'u': 'i', 'b': 'o', 'j': 'p',
	'd': 'a', 's': 's', 't': 'd', 'n': 'f', 'r': 'g',
	'i': 'h', 'a': 'j', 'e': 'k', 'o': 'l',
	'z': 'z', 'x': 'x', 'c': 'c', 'v': 'v', 'k': 'b', 'h': 'n', 'p': 'm',
}

// NewDvorakLayout creates the Dvorak positional remap over Default.
func NewDvorakLayout() Layout {
	return remapLayout{id: Dvorak, name: "Dvorak", base: DefaultLayout{}, toQwerty: dvorakToQwerty}
}

// NewDvorakHsuLayout creates the Dvorak positional remap over Hsu.
func NewDvorakHsuLayout() Layout {
	return remapLayout{id: DvorakHsu, name: "DvorakHsu", base: HsuLayout{}, toQwerty: dvorakToQwerty}
}

// NewIBMLayout creates the IBM positional remap over Default.
func NewIBMLayout() Layout {
	return remapLayout{id: IBM, name: "IBM", base: DefaultLayout{}, toQwerty: ibmToQwerty}
}

// NewGinYiehLayout creates the Gin-Yieh positional remap over Default.
func NewGinYiehLayout() Layout {
	return remapLayout{id: GinYieh, name: "GinYieh", base: DefaultLayout{}, toQwerty: ginYiehToQwerty}
}

// NewCarpalxLayout creates the Carpalx positional remap over Default.
func NewCarpalxLayout() Layout {
	return remapLayout{id: Carpalx, name: "Carpalx", base: DefaultLayout{}, toQwerty: carpalxToQwerty}
}

var _ Layout = remapLayout{}
var _ AltProducer = remapLayout{}
