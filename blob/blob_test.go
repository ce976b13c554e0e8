package blob

import "testing"

// ring draws a hollow square, producing exactly one hole.
func ring(b *Blob) {
	for col := b.Left(); col <= b.Right(); col++ {
		b.SetBit(b.Top(), col, true)
		b.SetBit(b.Bottom(), col, true)
	}
	for row := b.Top(); row <= b.Bottom(); row++ {
		b.SetBit(row, b.Left(), true)
		b.SetBit(row, b.Right(), true)
	}
}

func TestFindHolesDetectsOneHoleInARing(t *testing.T) {
	b := New(0, 0, 6, 6)
	ring(b)
	b.FindHoles()
	if b.Holes() != 1 {
		t.Fatalf("holes = %d, want 1", b.Holes())
	}
	h := b.Hole(0)
	if h.Left() != 1 || h.Top() != 1 || h.Right() != 5 || h.Bottom() != 5 {
		t.Fatalf("hole bounds = %v,%v,%v,%v want 1,1,5,5", h.Left(), h.Top(), h.Right(), h.Bottom())
	}
}

func TestFindHolesOnSolidBlockFindsNone(t *testing.T) {
	b := New(0, 0, 4, 4)
	for row := b.Top(); row <= b.Bottom(); row++ {
		for col := b.Left(); col <= b.Right(); col++ {
			b.SetBit(row, col, true)
		}
	}
	b.FindHoles()
	if b.Holes() != 0 {
		t.Fatalf("holes = %d, want 0", b.Holes())
	}
}

func TestIDReportsBlobAndHoleDots(t *testing.T) {
	b := New(0, 0, 6, 6)
	ring(b)
	b.FindHoles()
	if id := b.ID(0, 0); id != 1 {
		t.Fatalf("id at ring = %d, want 1", id)
	}
	if id := b.ID(3, 3); id != -1 {
		t.Fatalf("id at hole center = %d, want -1", id)
	}
}

func TestIsAbnormalFlagsExtremeAspectRatios(t *testing.T) {
	tall := New(0, 0, 1, 20)
	if !tall.IsAbnormal() {
		t.Fatalf("very tall/narrow blob should be abnormal")
	}
	normal := New(0, 0, 9, 14)
	if normal.IsAbnormal() {
		t.Fatalf("ordinary-proportioned blob should not be abnormal")
	}
}

func TestFillHoleMergesBackIntoBlob(t *testing.T) {
	b := New(0, 0, 6, 6)
	ring(b)
	b.FindHoles()
	b.FillHole(0)
	if b.Holes() != 0 {
		t.Fatalf("hole should be gone after fill")
	}
	if !b.GetBit(3, 3) {
		t.Fatalf("hole interior should now be filled")
	}
}
