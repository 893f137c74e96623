package session

import "github.com/zhuyinime/zhuyin/internal/userdict"

// Config bundles every host-visible option into one struct, mutated
// in place by SetOption so a session's sub-components can be rebuilt
// against the new value without the caller juggling each field itself.
type Config struct {
	KeyboardLayout       int // layout.ID
	MaxChiSymbolLen      int
	CandidatesPerPage    int
	AddPhraseDirection   userdict.Direction
	SpaceAsSelection     bool
	EasySymbolMode       bool
	FullshapeMode        bool
	PhraseChoiceRearward bool
	AutoShiftCursor      bool
}

// DefaultConfig returns the documented default for every option.
func DefaultConfig() Config {
	return Config{
		MaxChiSymbolLen:    10,
		CandidatesPerPage:  9,
		AddPhraseDirection: userdict.Tail,
		SpaceAsSelection:   false,
		AutoShiftCursor:    true,
	}
}

// Option identifies one of the settings SetOption can change, so
// callers have a single dispatch point rather than nine setters.
type Option int

const (
	OptKeyboardLayout Option = iota
	OptMaxChiSymbolLen
	OptCandidatesPerPage
	OptAddPhraseDirection
	OptSpaceAsSelection
	OptEasySymbolMode
	OptFullshapeMode
	OptPhraseChoiceRearward
	OptAutoShiftCursor
)
