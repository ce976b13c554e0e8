package classify

import (
	"testing"

	"github.com/wudi/ocrkit/blob"
	"github.com/wudi/ocrkit/rect"
)

func solidBlock(height, width int) *blob.Blob {
	b := blob.New(0, 0, width-1, height-1)
	for row := 0; row <= height-1; row++ {
		for col := 0; col <= width-1; col++ {
			b.SetBit(row, col, true)
		}
	}
	b.FindHoles()
	return b
}

func ringBlob(size int) *blob.Blob {
	b := blob.New(0, 0, size-1, size-1)
	for col := 0; col < size; col++ {
		b.SetBit(0, col, true)
		b.SetBit(size-1, col, true)
	}
	for row := 0; row < size; row++ {
		b.SetBit(row, 0, true)
		b.SetBit(row, size-1, true)
	}
	b.FindHoles()
	return b
}

func TestRecognize110SolidWideBarGuessesDash(t *testing.T) {
	b := solidBlock(3, 15)
	c := NewCharacter(b)
	// The bar (rows 0..2) straddles the charbox's vertical centre (row 1).
	charbox := rect.New(0, -8, 14, 11)
	Recognize1(ASCII, charbox, c)
	if len(c.Guesses) == 0 {
		t.Fatalf("expected at least one guess")
	}
	if c.Guesses[0].Code != '-' {
		t.Fatalf("guess = %q, want '-'", c.Guesses[0].Code)
	}
}

func TestRecognize111RingGuessesHoleLetter(t *testing.T) {
	b := ringBlob(9)
	c := NewCharacter(b)
	charbox := rect.New(0, 0, 8, 8)
	Recognize1(ASCII, charbox, c)
	if len(c.Guesses) == 0 {
		t.Fatalf("expected a guess for a one-hole ring shape")
	}
}

func TestSetMergedGuessRecordsSplitSentinel(t *testing.T) {
	b := solidBlock(10, 10)
	c := NewCharacter(b)
	if !c.SetMergedGuess('r', 5, 't', 0) {
		t.Fatalf("SetMergedGuess should succeed for a valid blob index")
	}
	if c.Guesses[0].Code != -1 {
		t.Fatalf("merged sentinel code = %d, want -1", c.Guesses[0].Code)
	}
}

func TestMaybeFindsAddedGuess(t *testing.T) {
	b := solidBlock(10, 10)
	c := NewCharacter(b)
	c.AddGuess('8', 0)
	c.AddGuess('B', 1)
	if !c.Maybe('B') {
		t.Fatalf("Maybe('B') should be true after AddGuess('B', ...)")
	}
	if c.Maybe('Z') {
		t.Fatalf("Maybe('Z') should be false")
	}
}
