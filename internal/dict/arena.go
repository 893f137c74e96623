package dict

import (
	"bytes"
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// arena is the mapped dict.dat phrase arena: concatenated
// NUL-terminated UTF-8 phrases, addressed by byte offset. Validity is
// checked once per offset and cached.
type arena struct {
	bytes []byte

	mu      sync.Mutex
	checked map[uint32]bool
}

func newArena(b []byte) arena {
	return arena{bytes: b, checked: make(map[uint32]bool)}
}

// readString returns the NUL-terminated UTF-8 phrase at off, validating
// both UTF-8 well-formedness and normalisation stability the first time
// a given offset is touched.
func (a *arena) readString(off uint32) (string, error) {
	if int(off) >= len(a.bytes) {
		return "", fmt.Errorf("offset %d out of bounds (arena size %d)", off, len(a.bytes))
	}

	end := bytes.IndexByte(a.bytes[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("offset %d: no NUL terminator before end of arena", off)
	}
	raw := a.bytes[off : int(off)+end]

	a.mu.Lock()
	valid, known := a.checked[off]
	a.mu.Unlock()

	if !known {
		valid = validatePhrase(raw)
		a.mu.Lock()
		a.checked[off] = valid
		a.mu.Unlock()
	}
	if !valid {
		return "", fmt.Errorf("offset %d: not valid, normalisation-stable UTF-8", off)
	}

	return string(raw), nil
}

// validatePhrase confirms raw is well-formed UTF-8 whose NFC
// normalisation is a no-op, i.e. the arena already stores composed
// text rather than something a renderer would have to recompose.
func validatePhrase(raw []byte) bool {
	if !utf8.Valid(raw) {
		return false
	}
	return norm.NFC.IsNormal(raw)
}
