// Package phoneme defines the packed phonetic representation shared by
// every keyboard layout and consumed by the dictionary and chooser.
package phoneme

// Phoneme is a packed 16-bit Zhuyin value: initial (5 bits), medial
// (2 bits), final (4 bits), tone (3 bits), ordered most-significant to
// least-significant so that numeric order on the packed value equals
// lexicographic order on (initial, medial, final, tone).
type Phoneme uint16

const (
	toneBits  = 3
	finalBits = 4
	medialBits = 2

	toneShift  = 0
	finalShift = toneShift + toneBits
	medialShift = finalShift + finalBits
	initialShift = medialShift + medialBits

	toneMask   = (1 << toneBits) - 1
	finalMask  = (1 << finalBits) - 1
	medialMask = (1 << medialBits) - 1
	initialMask = (1 << 5) - 1
)

// Field bounds. The tone field holds six distinct values: the five
// lexical tones (space/6/3/4/7 in the Default layout select tones 1-5)
// plus the absent/in-progress state 0. All six fit in 3 bits, so
// MaxTone is 5.
const (
	MaxInitial = 21
	MaxMedial  = 3
	MaxFinal   = 13
	MaxTone    = 5
)

// Pack assembles a Phoneme from its four fields. Callers are responsible
// for keeping each field within its documented range; Pack does not
// itself validate bounds since callers of this package already enumerate
// valid keys from fixed, layout-specific tables.
func Pack(initial, medial, final, tone int) Phoneme {
	return Phoneme(
		uint16(initial&initialMask)<<initialShift |
			uint16(medial&medialMask)<<medialShift |
			uint16(final&finalMask)<<finalShift |
			uint16(tone&toneMask)<<toneShift,
	)
}

// Initial returns the initial consonant field (0 = absent).
func (p Phoneme) Initial() int { return int(p>>initialShift) & initialMask }

// Medial returns the medial glide field (0 = absent).
func (p Phoneme) Medial() int { return int(p>>medialShift) & medialMask }

// Final returns the final field (0 = absent).
func (p Phoneme) Final() int { return int(p>>finalShift) & finalMask }

// Tone returns the tone field (0 = absent / in-progress).
func (p Phoneme) Tone() int { return int(p>>toneShift) & toneMask }

// WithInitial returns a copy of p with the initial field replaced.
func (p Phoneme) WithInitial(v int) Phoneme {
	return Pack(v, p.Medial(), p.Final(), p.Tone())
}

// WithMedial returns a copy of p with the medial field replaced.
func (p Phoneme) WithMedial(v int) Phoneme {
	return Pack(p.Initial(), v, p.Final(), p.Tone())
}

// WithFinal returns a copy of p with the final field replaced.
func (p Phoneme) WithFinal(v int) Phoneme {
	return Pack(p.Initial(), p.Medial(), v, p.Tone())
}

// WithTone returns a copy of p with the tone field replaced.
func (p Phoneme) WithTone(v int) Phoneme {
	return Pack(p.Initial(), p.Medial(), p.Final(), v)
}

// IsEmpty reports whether p has no components set at all.
func (p Phoneme) IsEmpty() bool { return p == 0 }

// IsSyllable reports whether p is a completed syllable: non-empty with a
// finalising tone. Tone 1 is an explicit tone value and still counts.
func (p Phoneme) IsSyllable() bool { return p != 0 && p.Tone() != 0 }

// Syllable is a finalised Phoneme: IsSyllable() is guaranteed true for any
// value constructed via NewSyllable. It is a distinct type so that
// dictionary and chooser APIs cannot accidentally be handed an
// in-progress phoneme.
type Syllable Phoneme

// NewSyllable wraps a Phoneme as a Syllable. The caller must have already
// confirmed ph.IsSyllable(); this is normally only done by the phonetic
// editor at the moment it reports layout.Commit.
func NewSyllable(ph Phoneme) Syllable { return Syllable(ph) }

// Phoneme returns the underlying packed value.
func (s Syllable) Phoneme() Phoneme { return Phoneme(s) }
