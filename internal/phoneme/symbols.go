package phoneme

// InitialSymbols, MedialSymbols and FinalSymbols give the canonical
// Zhuyin glyph for each non-zero field value (index 0 is "absent" and
// renders empty). They are the single source of truth other packages
// use to render an in-progress or completed syllable for preedit
// display.
var InitialSymbols = [MaxInitial + 1]rune{
	0,
	'ㄅ', 'ㄆ', 'ㄇ', 'ㄈ', 'ㄉ', 'ㄊ', 'ㄋ', 'ㄌ',
	'ㄍ', 'ㄎ', 'ㄏ',
	'ㄐ', 'ㄑ', 'ㄒ',
	'ㄓ', 'ㄔ', 'ㄕ', 'ㄖ',
	'ㄗ', 'ㄘ', 'ㄙ',
}

var MedialSymbols = [MaxMedial + 1]rune{0, 'ㄧ', 'ㄨ', 'ㄩ'}

var FinalSymbols = [MaxFinal + 1]rune{
	0,
	'ㄚ', 'ㄛ', 'ㄜ', 'ㄝ',
	'ㄞ', 'ㄟ', 'ㄠ', 'ㄡ',
	'ㄢ', 'ㄣ', 'ㄤ', 'ㄥ', 'ㄦ',
}

// ToneSymbols gives the diacritic appended for each tone (tone 1 is
// conventionally unmarked).
var ToneSymbols = [MaxTone + 1]rune{0, 0, 'ˊ', 'ˇ', 'ˋ', '˙'}

// Render renders a Phoneme (in-progress or complete) as Zhuyin glyphs.
func Render(p Phoneme) string {
	var b []rune
	if r := InitialSymbols[p.Initial()]; r != 0 {
		b = append(b, r)
	}
	if r := MedialSymbols[p.Medial()]; r != 0 {
		b = append(b, r)
	}
	if r := FinalSymbols[p.Final()]; r != 0 {
		b = append(b, r)
	}
	if r := ToneSymbols[p.Tone()]; r != 0 {
		b = append(b, r)
	}
	return string(b)
}
