package layout

// New constructs the Layout implementation for the given id. The
// session façade uses this to honor the keyboard_layout config option
// without importing every concrete layout type itself.
func New(id ID) Layout {
	switch id {
	case Default:
		return DefaultLayout{}
	case Hsu:
		return HsuLayout{}
	case ET:
		return ETLayout{}
	case ET26:
		return ET26Layout{}
	case DachenCP26:
		return DachenCP26Layout{}
	case HanyuPinyin:
		return NewHanyuPinyinLayout()
	case ThlPinyin:
		return NewThlPinyinLayout()
	case MPS2Pinyin:
		return NewMPS2PinyinLayout()
	case Dvorak:
		return NewDvorakLayout()
	case DvorakHsu:
		return NewDvorakHsuLayout()
	case IBM:
		return NewIBMLayout()
	case GinYieh:
		return NewGinYiehLayout()
	case Carpalx:
		return NewCarpalxLayout()
	default:
		return DefaultLayout{}
	}
}
