package preedit

import (
	"testing"

	"github.com/zhuyinime/zhuyin/internal/phoneme"
)

func syl(n int) Symbol {
	return NewSyllableSymbol(phoneme.NewSyllable(phoneme.Pack(1, 0, 0, n)))
}

func TestInsertAtCursor(t *testing.T) {
	b := New(DefaultCapacity)
	b.InsertAt(syl(1))
	b.InsertAt(syl(2))
	b.SetCursor(1)
	b.InsertAt(syl(3))

	got := b.Iter()
	if len(got) != 3 || got[1].Syllable.Phoneme().Tone() != 3 {
		t.Fatalf("expected syllable 3 inserted at index 1, got %+v", got)
	}
}

func TestCapacityRejectsOverflow(t *testing.T) {
	b := New(2)
	if err := b.InsertAt(syl(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.InsertAt(syl(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.InsertAt(syl(3)); err != ErrOutOfCapacity {
		t.Fatalf("expected ErrOutOfCapacity, got %v", err)
	}
}

func TestDeleteBeforeAndAfter(t *testing.T) {
	b := New(DefaultCapacity)
	b.InsertAt(syl(1))
	b.InsertAt(syl(2))
	b.InsertAt(syl(3))
	b.SetCursor(1)

	if !b.DeleteBefore() {
		t.Fatal("expected DeleteBefore to succeed")
	}
	if b.Len() != 2 || b.Cursor() != 0 {
		t.Fatalf("unexpected state after DeleteBefore: len=%d cursor=%d", b.Len(), b.Cursor())
	}

	if !b.DeleteAfter() {
		t.Fatal("expected DeleteAfter to succeed")
	}
	if b.Len() != 1 {
		t.Fatalf("expected len 1 after DeleteAfter, got %d", b.Len())
	}
}

func TestDrainHead(t *testing.T) {
	b := New(DefaultCapacity)
	b.InsertAt(syl(1))
	b.InsertAt(syl(2))
	b.SetCursor(2)

	sym, ok := b.DrainHead()
	if !ok || sym.Syllable.Phoneme().Tone() != 1 {
		t.Fatalf("expected to drain first symbol, got %+v ok=%v", sym, ok)
	}
	if b.Len() != 1 || b.Cursor() != 1 {
		t.Fatalf("unexpected state after DrainHead: len=%d cursor=%d", b.Len(), b.Cursor())
	}
}

func TestCapacityClampedToCeiling(t *testing.T) {
	b := New(1000)
	if b.capacity != MaxCapacityCeiling {
		t.Fatalf("expected capacity clamped to %d, got %d", MaxCapacityCeiling, b.capacity)
	}
}
