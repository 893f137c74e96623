package phoneme

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	tests := []struct {
		name                             string
		initial, medial, final, tone int
	}{
		{"empty", 0, 0, 0, 0},
		{"initial only", 5, 0, 0, 0},
		{"full", 15, 2, 9, 3},
		{"max fields", MaxInitial, MaxMedial, MaxFinal, MaxTone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Pack(tt.initial, tt.medial, tt.final, tt.tone)
			if p.Initial() != tt.initial {
				t.Errorf("Initial() = %d, want %d", p.Initial(), tt.initial)
			}
			if p.Medial() != tt.medial {
				t.Errorf("Medial() = %d, want %d", p.Medial(), tt.medial)
			}
			if p.Final() != tt.final {
				t.Errorf("Final() = %d, want %d", p.Final(), tt.final)
			}
			if p.Tone() != tt.tone {
				t.Errorf("Tone() = %d, want %d", p.Tone(), tt.tone)
			}
		})
	}
}

func TestCanonicalOrdering(t *testing.T) {
	// Lexicographic order on (initial, medial, final, tone) must equal
	// numeric order on the packed u16.
	a := Pack(1, 0, 0, 0)
	b := Pack(1, 0, 0, 1)
	c := Pack(2, 0, 0, 0)

	if !(a < b) {
		t.Errorf("expected %v < %v", a, b)
	}
	if !(b < c) {
		t.Errorf("expected %v < %v", b, c)
	}
}

func TestIsSyllable(t *testing.T) {
	inProgress := Pack(5, 0, 0, 0)
	if inProgress.IsSyllable() {
		t.Error("phoneme with tone 0 must not be a syllable")
	}

	complete := Pack(5, 0, 0, 1)
	if !complete.IsSyllable() {
		t.Error("phoneme with tone 1 must be a syllable")
	}

	if Phoneme(0).IsSyllable() {
		t.Error("zero phoneme must not be a syllable")
	}
}

func TestWithSetters(t *testing.T) {
	p := Pack(0, 0, 0, 0)
	p = p.WithInitial(3)
	p = p.WithMedial(1)
	p = p.WithFinal(8)
	p = p.WithTone(2)

	if p.Initial() != 3 || p.Medial() != 1 || p.Final() != 8 || p.Tone() != 2 {
		t.Errorf("unexpected fields after With* chain: %+v", p)
	}
}

func TestRender(t *testing.T) {
	// ㄋㄧˇ (initial n, medial i, tone 3 = hoi-equivalent rising)
	p := Pack(7, 1, 0, 3)
	got := Render(p)
	want := "ㄋㄧˇ"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}
