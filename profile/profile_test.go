package profile

import (
	"testing"

	"github.com/wudi/ocrkit/bitmap"
)

func vbar(height, width int) *bitmap.Bitmap {
	bm := bitmap.New(0, 0, width-1, height-1)
	col := width / 2
	for row := 0; row < height; row++ {
		bm.SetBit(row, col, true)
	}
	return bm
}

func TestLeftProfileOfCenteredBarIsConstant(t *testing.T) {
	bm := vbar(10, 9)
	p := New(bm, Left)
	want := bm.Width() / 2
	for i := 0; i < p.Samples(); i++ {
		if got := p.At(i); got != want {
			t.Fatalf("left profile[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestMeanAndMaxAreConsistent(t *testing.T) {
	bm := vbar(10, 9)
	p := New(bm, Left)
	if p.Max() != p.Mean() {
		t.Fatalf("uniform profile should have max==mean, got max=%d mean=%d", p.Max(), p.Mean())
	}
}

func TestIsFlatOnAFlatTopProfile(t *testing.T) {
	bm := bitmap.New(0, 0, 19, 9)
	for row := 0; row <= 9; row++ {
		for col := 0; col <= 19; col++ {
			bm.SetBit(row, col, true)
		}
	}
	p := New(bm, Top)
	if !p.IsFlat() {
		t.Fatalf("solid block's top profile should be flat")
	}
}
