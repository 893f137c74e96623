// Package session implements the session façade: it drives keystrokes
// through the phonetic editor, preedit buffer and chooser, and exposes
// the host-visible editing surface.
package session

import (
	"fmt"
	"log"
	"strings"

	"github.com/zhuyinime/zhuyin/internal/chooser"
	"github.com/zhuyinime/zhuyin/internal/dict"
	"github.com/zhuyinime/zhuyin/internal/layout"
	"github.com/zhuyinime/zhuyin/internal/phoneme"
	"github.com/zhuyinime/zhuyin/internal/preedit"
	"github.com/zhuyinime/zhuyin/internal/userdict"
)

// Abstract key names the host translates its own keycodes into before
// calling HandleKey. These are all ASCII control codes (below 0x20),
// distinct from every printable ASCII key any layout table assigns, so
// they can never collide with phonetic input.
const (
	KeyLeft      byte = 0x01
	KeyRight     byte = 0x02
	KeyUp        byte = 0x03
	KeyDown      byte = 0x04
	KeyEscape    byte = 0x1B
	KeyEnter     byte = '\r'
	KeyTab       byte = '\t'
	KeyBackspace byte = 0x08
)

// State is one of the three states a session can be in.
type State int

const (
	Entering State = iota
	Selecting
	Bypass
)

// Session is the per-session façade: owns a phonetic editor, a preedit
// buffer, and references to the shared system dictionary and the
// session's user phrase store.
type Session struct {
	cfg Config

	lay    layout.Layout
	editor *layout.Editor
	buf    *preedit.Buffer

	tree   *dict.Tree
	user   *userdict.Store
	chsr   *chooser.Chooser
	now    func() int64
	logger *log.Logger

	state      State
	intervals  []chooser.Interval
	commitText strings.Builder

	candWindowOpen bool
	candWindowPos  int
	candidates     []chooser.Candidate
	candSelected   int
}

// New creates a session bound to the given (shared, immutable) system
// dictionary and a (per-user, mutable) user store.
func New(cfg Config, tree *dict.Tree, user *userdict.Store, now func() int64, logger *log.Logger) *Session {
	lay := layout.New(layout.ID(cfg.KeyboardLayout))
	s := &Session{
		cfg:    cfg,
		lay:    lay,
		editor: layout.NewEditor(lay),
		buf:    preedit.New(cfg.MaxChiSymbolLen),
		tree:   tree,
		user:   user,
		now:    now,
		logger: logger,
	}
	s.chsr = chooser.New(tree, user, now)
	return s
}

func (s *Session) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// HandleKey feeds one abstract key to the session.
func (s *Session) HandleKey(key byte) layout.KeyBehavior {
	switch s.state {
	case Bypass:
		return s.handleBypass(key)
	case Selecting:
		return s.handleSelecting(key)
	default:
		return s.handleEntering(key)
	}
}

func (s *Session) handleBypass(key byte) layout.KeyBehavior {
	if key == KeyEscape {
		s.state = Entering
		return layout.Ignore
	}
	if key < 0x20 || key > 0x7E {
		return layout.KeyError
	}
	s.commitText.WriteByte(key)
	return layout.Commit
}

func (s *Session) handleEntering(key byte) layout.KeyBehavior {
	switch key {
	case KeyEscape:
		s.editor.RemoveAll()
		s.buf.Reset()
		s.intervals = nil
		return layout.Ignore
	case KeyEnter:
		return s.commitHead()
	case KeyBackspace:
		if s.editor.IsEntering() {
			s.editor.RemoveLast()
			return layout.Absorb
		}
		if s.buf.DeleteBefore() {
			s.resegment()
			return layout.Absorb
		}
		return layout.Ignore
	case KeyLeft:
		s.buf.SetCursor(s.buf.Cursor() - 1)
		return layout.Ignore
	case KeyRight:
		s.buf.SetCursor(s.buf.Cursor() + 1)
		return layout.Ignore
	case KeyDown:
		return s.openCandidateWindow()
	case KeyTab:
		s.cycleCandidateAtCursor()
		return layout.Absorb
	}

	if key == ' ' && s.cfg.SpaceAsSelection && s.buf.Len() > 0 {
		return s.openCandidateWindow()
	}

	behavior := s.editor.Input(key)
	switch behavior {
	case layout.Commit:
		if !s.commitSyllable() {
			return layout.Ignore
		}
		return layout.Commit
	case layout.KeyError:
		return s.handleNonPhoneticKey(key)
	default:
		return behavior
	}
}

// handleNonPhoneticKey handles a key the active layout's Step rejected:
// easy-symbol and fullshape translation, falling back to a literal
// typed character.
func (s *Session) handleNonPhoneticKey(key byte) layout.KeyBehavior {
	if key < 0x20 || key > 0x7E {
		return layout.KeyError
	}

	var sym preedit.Symbol
	switch {
	case s.cfg.EasySymbolMode && easySymbolTable[key] != "":
		sym = preedit.NewCharSymbol(easySymbolTable[key], preedit.OriginTyped)
	case s.cfg.FullshapeMode:
		sym = preedit.NewCharSymbol(fullwidth(key), preedit.OriginFullwidth)
	default:
		sym = preedit.NewCharSymbol(string(rune(key)), preedit.OriginTyped)
	}

	if err := s.buf.InsertAt(sym); err != nil {
		return layout.KeyError
	}
	s.resegment()
	return layout.Absorb
}

// commitSyllable pushes the editor's completed syllable into the preedit
// buffer, reporting false when the buffer is at capacity and the
// syllable was dropped.
func (s *Session) commitSyllable() bool {
	syl := s.editor.Syllable()
	var sym preedit.Symbol
	if alt, ok := s.editor.AltSyllable(); ok {
		sym = preedit.NewSyllableSymbolWithAlt(syl, alt)
	} else {
		sym = preedit.NewSyllableSymbol(syl)
	}
	if err := s.buf.InsertAt(sym); err != nil {
		s.logf("session: preedit at capacity, dropping completed syllable")
		return false
	}
	s.resegment()
	return true
}

// syllableRun returns the contiguous run of syllable symbols in the
// buffer and their start offset, which is what the chooser segments;
// already-committed Char symbols are left untouched. alts maps a
// position within the returned seq (not the buffer) to the layout's
// alternate completion for that syllable, where one exists.
func (s *Session) syllableRun() (int, []phoneme.Syllable, map[int]phoneme.Syllable) {
	symbols := s.buf.Iter()
	start := -1
	var seq []phoneme.Syllable
	var alts map[int]phoneme.Syllable
	for i, sym := range symbols {
		if !sym.IsSyllable {
			if start >= 0 {
				break
			}
			continue
		}
		if start < 0 {
			start = i
		}
		if sym.HasAlt {
			if alts == nil {
				alts = make(map[int]phoneme.Syllable)
			}
			alts[len(seq)] = sym.AltSyllable
		}
		seq = append(seq, sym.Syllable)
	}
	if start < 0 {
		return 0, nil, nil
	}
	return start, seq, alts
}

func (s *Session) resegment() {
	start, seq, alts := s.syllableRun()
	if len(seq) == 0 {
		s.intervals = nil
		return
	}
	intervals, err := s.chsr.SegmentWithAlts(seq, alts)
	if err != nil {
		s.logf("session: segment failed: %v", err)
		s.intervals = nil
		return
	}
	for i := range intervals {
		intervals[i].From += start
		intervals[i].To += start
	}
	s.intervals = intervals
}

// candidateAnchor resolves the syllable position the candidate window
// or Tab-cycle should search from. Forward search (the default) starts
// at the syllable under/after the cursor; rearward search instead
// starts one syllable earlier, so the window covers the phrase ending
// at the cursor rather than the one beginning there.
func (s *Session) candidateAnchor(start int, seqLen int) int {
	pos := s.buf.Cursor() - start
	if s.cfg.PhraseChoiceRearward {
		pos--
	}
	if pos < 0 || pos >= seqLen {
		pos = 0
	}
	return pos
}

func (s *Session) openCandidateWindow() layout.KeyBehavior {
	start, seq, alts := s.syllableRun()
	if len(seq) == 0 {
		return layout.Ignore
	}
	pos := s.candidateAnchor(start, len(seq))
	cands, err := s.chsr.CandidatesAtWithAlts(seq, pos, alts)
	if err != nil {
		s.logf("session: candidates failed: %v", err)
		return layout.Error
	}
	if len(cands) == 0 {
		return layout.NoWord
	}
	s.candidates = cands
	s.candWindowPos = start + pos
	s.candSelected = 0
	s.candWindowOpen = true
	s.state = Selecting
	return layout.Absorb
}

func (s *Session) handleSelecting(key byte) layout.KeyBehavior {
	switch key {
	case KeyEscape:
		s.closeCandidateWindow()
		return layout.Ignore
	case KeyUp:
		if s.candSelected > 0 {
			s.candSelected--
		}
		return layout.Absorb
	case KeyDown:
		if s.candSelected < len(s.candidates)-1 {
			s.candSelected++
		}
		return layout.Absorb
	case KeyEnter:
		return s.selectCandidate(s.candSelected)
	}
	if key >= '1' && key <= '9' {
		idx := int(key - '1')
		if idx < len(s.candidates) {
			return s.selectCandidate(idx)
		}
	}
	return layout.Ignore
}

func (s *Session) selectCandidate(idx int) layout.KeyBehavior {
	if idx < 0 || idx >= len(s.candidates) {
		return layout.KeyError
	}
	chosen := s.candidates[idx]
	start, seq, _ := s.syllableRun()
	relPos := s.candWindowPos - start
	s.chsr.Pin(relPos, chosen.Length, chosen.Text)
	windowPos := s.candWindowPos
	s.closeCandidateWindow()
	s.resegment()

	if s.cfg.AutoShiftCursor {
		s.buf.SetCursor(start + relPos + chosen.Length)
	} else {
		s.buf.SetCursor(windowPos)
	}

	if s.user != nil {
		now := s.nowOrZero()
		pinnedSeq := seq[relPos : relPos+chosen.Length]
		if err := s.user.BumpFrequency(pinnedSeq, chosen.Text, now); err != nil {
			s.user.Add(pinnedSeq, chosen.Text, s.cfg.AddPhraseDirection, now)
		}
	}
	return layout.Commit
}

func (s *Session) closeCandidateWindow() {
	s.candWindowOpen = false
	s.candidates = nil
	s.state = Entering
}

// cycleCandidateAtCursor implements Tab's "cycle alternative
// segmentation": it re-pins the interval under the cursor to its
// next-best candidate and re-runs the DP.
func (s *Session) cycleCandidateAtCursor() {
	start, seq, alts := s.syllableRun()
	if len(seq) == 0 {
		return
	}
	pos := s.candidateAnchor(start, len(seq))
	// Find the covering interval so we know which candidate is current.
	var current string
	for _, iv := range s.intervals {
		if iv.From-start <= pos && pos < iv.To-start {
			current = iv.Text
			break
		}
	}
	cands, err := s.chsr.CandidatesAtWithAlts(seq, pos, alts)
	if err != nil || len(cands) == 0 {
		return
	}
	next := cands[0]
	for i, c := range cands {
		if c.Text == current {
			next = cands[(i+1)%len(cands)]
			break
		}
	}
	s.chsr.Pin(pos, next.Length, next.Text)
	s.resegment()
}

func (s *Session) nowOrZero() int64 {
	if s.now != nil {
		return s.now()
	}
	return 0
}

// commitHead drains the interval (or bare syllable/char symbol)
// covering position 0.
func (s *Session) commitHead() layout.KeyBehavior {
	if s.buf.Len() == 0 {
		return layout.Ignore
	}

	if len(s.intervals) > 0 && s.intervals[0].From == 0 {
		iv := s.intervals[0]
		length := iv.To - iv.From

		_, seq, _ := s.syllableRun()
		pinnedSeq := append([]phoneme.Syllable(nil), seq[:length]...)

		for i := 0; i < length; i++ {
			s.buf.DrainHead()
		}
		s.commitText.WriteString(iv.Text)

		if s.user != nil {
			now := s.nowOrZero()
			if err := s.user.BumpFrequency(pinnedSeq, iv.Text, now); err != nil {
				s.user.Add(pinnedSeq, iv.Text, s.cfg.AddPhraseDirection, now)
			}
		}

		s.intervals = s.intervals[1:]
		for i := range s.intervals {
			s.intervals[i].From -= length
			s.intervals[i].To -= length
		}
		return layout.Commit
	}

	sym, ok := s.buf.DrainHead()
	if !ok {
		return layout.Ignore
	}
	if sym.IsSyllable {
		cands, err := s.tree.CharFirst(sym.Syllable.Phoneme())
		if err == nil && len(cands) > 0 {
			s.commitText.WriteString(cands[0].Text)
		} else {
			s.commitText.WriteString(phoneme.Render(sym.Syllable.Phoneme()))
			return layout.NoWord
		}
	} else {
		s.commitText.WriteString(sym.Char)
	}
	return layout.Commit
}

// Preedit renders the buffer's current display text: committed/pending
// interval text where segmented, raw Zhuyin rendering where not.
func (s *Session) Preedit() string {
	var b strings.Builder
	symbols := s.buf.Iter()
	startsAt := make(map[int]chooser.Interval, len(s.intervals))
	for _, iv := range s.intervals {
		startsAt[iv.From] = iv
	}
	for i := 0; i < len(symbols); {
		if iv, ok := startsAt[i]; ok && iv.To > i {
			b.WriteString(iv.Text)
			i = iv.To
			continue
		}
		sym := symbols[i]
		i++
		if sym.IsSyllable {
			b.WriteString(phoneme.Render(sym.Syllable.Phoneme()))
		} else {
			b.WriteString(sym.Char)
		}
	}
	return b.String()
}

// Commit drains and returns everything committed since the last Commit
// call.
func (s *Session) Commit() string {
	out := s.commitText.String()
	s.commitText.Reset()
	return out
}

// Candidates returns the current candidate window's page, honoring
// CandidatesPerPage.
func (s *Session) Candidates() []string {
	if !s.candWindowOpen {
		return nil
	}
	page := s.cfg.CandidatesPerPage
	if page <= 0 {
		page = len(s.candidates)
	}
	pageStart := (s.candSelected / page) * page
	pageEnd := pageStart + page
	if pageEnd > len(s.candidates) {
		pageEnd = len(s.candidates)
	}
	out := make([]string, 0, pageEnd-pageStart)
	for _, c := range s.candidates[pageStart:pageEnd] {
		out = append(out, c.Text)
	}
	return out
}

// Cursor returns the preedit cursor position.
func (s *Session) Cursor() int { return s.buf.Cursor() }

// SetOption applies one of the session's configuration options.
func (s *Session) SetOption(opt Option, value any) error {
	switch opt {
	case OptKeyboardLayout:
		id, ok := value.(layout.ID)
		if !ok {
			return fmt.Errorf("session: OptKeyboardLayout wants layout.ID, got %T", value)
		}
		s.cfg.KeyboardLayout = int(id)
		s.lay = layout.New(id)
		s.editor.SetLayout(s.lay)
	case OptMaxChiSymbolLen:
		n, ok := value.(int)
		if !ok {
			return fmt.Errorf("session: OptMaxChiSymbolLen wants int, got %T", value)
		}
		s.cfg.MaxChiSymbolLen = n
		s.buf.SetCapacity(n)
	case OptCandidatesPerPage:
		n, ok := value.(int)
		if !ok {
			return fmt.Errorf("session: OptCandidatesPerPage wants int, got %T", value)
		}
		s.cfg.CandidatesPerPage = n
	case OptAddPhraseDirection:
		d, ok := value.(userdict.Direction)
		if !ok {
			return fmt.Errorf("session: OptAddPhraseDirection wants userdict.Direction, got %T", value)
		}
		s.cfg.AddPhraseDirection = d
	case OptSpaceAsSelection:
		s.cfg.SpaceAsSelection, _ = value.(bool)
	case OptEasySymbolMode:
		s.cfg.EasySymbolMode, _ = value.(bool)
	case OptFullshapeMode:
		s.cfg.FullshapeMode, _ = value.(bool)
	case OptPhraseChoiceRearward:
		s.cfg.PhraseChoiceRearward, _ = value.(bool)
	case OptAutoShiftCursor:
		s.cfg.AutoShiftCursor, _ = value.(bool)
	default:
		return fmt.Errorf("session: unknown option %d", opt)
	}
	return nil
}

// Sync flushes the user store to disk.
func (s *Session) Sync() error {
	if s.user == nil {
		return nil
	}
	return s.user.Sync(s.nowOrZero())
}

// Close releases session-owned state. The shared dictionary handle is
// not unmapped here — callers that own the last reference to a Tree are
// responsible for calling Tree.Close themselves once every session
// referencing it has closed.
func (s *Session) Close() error {
	s.editor.RemoveAll()
	s.buf.Reset()
	if s.user != nil {
		return s.user.Sync(s.nowOrZero())
	}
	return nil
}
