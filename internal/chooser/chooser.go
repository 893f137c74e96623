// Package chooser implements the phrase chooser: a dynamic-programming
// segmentation of a syllable buffer into dictionary phrases, with
// user-pinned overrides and a separate candidate-window enumeration.
package chooser

import (
	"math"
	"sort"

	"github.com/zhuyinime/zhuyin/internal/dict"
	"github.com/zhuyinime/zhuyin/internal/phoneme"
	"github.com/zhuyinime/zhuyin/internal/userdict"
)

// MaxPhraseLen is the longest phrase the system dictionary can hold
// (11 characters).
const MaxPhraseLen = 11

// Candidate is one phrase choice available at a given position, sourced
// from either the system dictionary or the user store.
type Candidate struct {
	Text   string
	Freq   uint32
	Length int
}

// Interval is a chosen segmentation run.
type Interval struct {
	From, To int
	Text     string
}

type pin struct {
	length int
	text   string
}

// Chooser ties the DP segmenter to a system dictionary and a user
// store. Both may be nil for tests that only exercise pure lookup
// merging logic elsewhere, but Segment requires at least the tree.
type Chooser struct {
	tree *dict.Tree
	user *userdict.Store
	now  func() int64

	pins map[int]pin
}

// New creates a chooser over tree and user. now supplies the current
// time for user-store aging lookups (injected so callers can fix it in
// tests without the package reaching for a live clock itself).
func New(tree *dict.Tree, user *userdict.Store, now func() int64) *Chooser {
	return &Chooser{tree: tree, user: user, now: now, pins: make(map[int]pin)}
}

// Pin forces the segmentation at position i to use a phrase of the
// given length and text: a user's candidate-window selection replaces
// the covering interval at i with a pin, and the DP is rerun around it.
func (c *Chooser) Pin(i, length int, text string) {
	c.pins[i] = pin{length: length, text: text}
}

// Unpin clears any pin at position i.
func (c *Chooser) Unpin(i int) {
	delete(c.pins, i)
}

// lookup merges system-dictionary and user-store phrases for seq: the
// user entry wins on duplicate text.
func (c *Chooser) lookup(seq []phoneme.Syllable) ([]Candidate, error) {
	byText := make(map[string]Candidate)

	if c.tree != nil {
		sysPhrases, err := c.tree.PhraseFirst(seq)
		if err != nil {
			return nil, err
		}
		for _, p := range sysPhrases {
			byText[p.Text] = Candidate{Text: p.Text, Freq: p.Freq, Length: len(seq)}
		}
	}

	if c.user != nil {
		now := int64(0)
		if c.now != nil {
			now = c.now()
		}
		for _, e := range c.user.Lookup(seq, now) {
			byText[e.Text] = Candidate{Text: e.Text, Freq: e.EffectiveFreq(now), Length: len(seq)}
		}
	}

	out := make([]Candidate, 0, len(byText))
	for _, cand := range byText {
		out = append(out, cand)
	}
	sortCandidates(out)
	return out, nil
}

// sortCandidates orders by descending frequency, then by text for a
// deterministic tie-break standing in for the system dictionary's
// arena order (the user store carries no arena offset of its own).
func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Freq != c[j].Freq {
			return c[i].Freq > c[j].Freq
		}
		return c[i].Text < c[j].Text
	})
}

// CandidatesAt enumerates every phrase matching any length starting at
// position p, sorted by frequency. This window is independent of the
// DP segmentation: the user may pick a shorter or longer match than
// whatever Segment currently covers that position with.
func (c *Chooser) CandidatesAt(seq []phoneme.Syllable, p int) ([]Candidate, error) {
	return c.candidatesAt(seq, p, nil)
}

// CandidatesAtWithAlts is CandidatesAt, but additionally unions in
// phrases reachable by substituting each position's alt_syllable
// (Hsu/ET26 ambiguous completions).
func (c *Chooser) CandidatesAtWithAlts(seq []phoneme.Syllable, p int, alts map[int]phoneme.Syllable) ([]Candidate, error) {
	return c.candidatesAt(seq, p, alts)
}

func (c *Chooser) candidatesAt(seq []phoneme.Syllable, p int, alts map[int]phoneme.Syllable) ([]Candidate, error) {
	var out []Candidate
	maxLen := MaxPhraseLen
	if rem := len(seq) - p; rem < maxLen {
		maxLen = rem
	}
	for l := 1; l <= maxLen; l++ {
		cands, err := c.lookupWithAlts(seq, p, l, alts)
		if err != nil {
			return nil, err
		}
		out = append(out, cands...)
	}
	sortCandidates(out)
	return out, nil
}

// lookupWithAlts looks up seq[i:i+l], then unions in the phrases
// reachable by substituting any alt_syllable that falls within
// [i, i+l), preferring the primary reading's candidate on a text tie.
func (c *Chooser) lookupWithAlts(seq []phoneme.Syllable, i, l int, alts map[int]phoneme.Syllable) ([]Candidate, error) {
	primary, err := c.lookup(seq[i : i+l])
	if err != nil {
		return nil, err
	}
	if len(alts) == 0 {
		return primary, nil
	}
	altSeq, changed := altVariant(seq, i, l, alts)
	if !changed {
		return primary, nil
	}
	altCands, err := c.lookup(altSeq)
	if err != nil {
		return nil, err
	}
	return mergeCandidates(primary, altCands), nil
}

// altVariant builds seq[i:i+l] with any alt_syllable substituted in,
// reporting whether anything actually differs from the primary reading.
func altVariant(seq []phoneme.Syllable, i, l int, alts map[int]phoneme.Syllable) ([]phoneme.Syllable, bool) {
	var out []phoneme.Syllable
	changed := false
	for k := i; k < i+l; k++ {
		if a, ok := alts[k]; ok && a != seq[k] {
			if out == nil {
				out = append([]phoneme.Syllable(nil), seq[i:i+l]...)
			}
			out[k-i] = a
			changed = true
		}
	}
	return out, changed
}

// mergeCandidates unions primary and alt, with primary winning on a
// duplicate text.
func mergeCandidates(primary, alt []Candidate) []Candidate {
	byText := make(map[string]Candidate, len(primary)+len(alt))
	for _, c := range alt {
		byText[c.Text] = c
	}
	for _, c := range primary {
		byText[c.Text] = c
	}
	out := make([]Candidate, 0, len(byText))
	for _, c := range byText {
		out = append(out, c)
	}
	sortCandidates(out)
	return out
}

type dpEntry struct {
	valid     bool
	intervals int
	logScore  float64
	length    int
	text      string
}

// better reports whether (ni, ns) beats (ci, cs) under the segmentation
// objective: maximise lexicographically (-intervals, sum log freq).
func better(ni int, ns float64, ci int, cs float64) bool {
	if ni != ci {
		return ni < ci
	}
	return ns > cs
}

// Segment runs the DP segmentation over seq and returns the chosen
// intervals, every one of which matches an existing phrase. If any
// position of seq cannot be covered by a phrase, Segment returns no
// intervals at all (not a partial segmentation of the coverable part),
// and the session displays every position as a bare syllable.
func (c *Chooser) Segment(seq []phoneme.Syllable) ([]Interval, error) {
	return c.segment(seq, nil)
}

// SegmentWithAlts is Segment, but additionally unions in phrases
// reachable through each position's alt_syllable.
func (c *Chooser) SegmentWithAlts(seq []phoneme.Syllable, alts map[int]phoneme.Syllable) ([]Interval, error) {
	return c.segment(seq, alts)
}

func (c *Chooser) segment(seq []phoneme.Syllable, alts map[int]phoneme.Syllable) ([]Interval, error) {
	n := len(seq)
	best := make([]dpEntry, n+1)
	best[n] = dpEntry{valid: true}

	for i := n - 1; i >= 0; i-- {
		if p, ok := c.pins[i]; ok && i+p.length <= n && best[i+p.length].valid {
			suf := best[i+p.length]
			best[i] = dpEntry{
				valid:     true,
				intervals: 1 + suf.intervals,
				logScore:  suf.logScore, // pinned score does not depend on dictionary frequency
				length:    p.length,
				text:      p.text,
			}
			continue
		}

		maxLen := MaxPhraseLen
		if n-i < maxLen {
			maxLen = n - i
		}

		var cur dpEntry
		for l := maxLen; l >= 1; l-- {
			if !best[i+l].valid {
				continue
			}
			cands, err := c.lookupWithAlts(seq, i, l, alts)
			if err != nil {
				return nil, err
			}
			if len(cands) == 0 {
				continue
			}
			top := cands[0]
			suf := best[i+l]
			intervals := 1 + suf.intervals
			logScore := math.Log(float64(top.Freq)) + suf.logScore

			if !cur.valid || better(intervals, logScore, cur.intervals, cur.logScore) {
				cur = dpEntry{valid: true, intervals: intervals, logScore: logScore, length: l, text: top.Text}
			}
		}
		best[i] = cur
	}

	if !best[0].valid {
		return nil, nil
	}

	var intervals []Interval
	for i := 0; i < n; {
		e := best[i]
		if !e.valid {
			break
		}
		intervals = append(intervals, Interval{From: i, To: i + e.length, Text: e.text})
		i += e.length
	}
	return intervals, nil
}
