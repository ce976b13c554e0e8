package feats

import (
	"testing"

	"github.com/wudi/ocrkit/blob"
)

func verticalBar(height, width int) *blob.Blob {
	b := blob.New(0, 0, width-1, height-1)
	col := width / 2
	for row := 0; row < height; row++ {
		b.SetBit(row, col, true)
	}
	b.FindHoles()
	return b
}

func TestSegmentsInRowCountsOneStroke(t *testing.T) {
	b := verticalBar(12, 5)
	f := New(b)
	for row := b.Top(); row <= b.Bottom(); row++ {
		if n := f.SegmentsInRow(row); n != 1 {
			t.Fatalf("segments_in_row(%d) = %d, want 1", row, n)
		}
	}
}

func TestVbarsDetectsATallNarrowStroke(t *testing.T) {
	b := verticalBar(40, 5)
	f := New(b)
	if n := f.Vbars(); n < 1 {
		t.Fatalf("vbars() = %d, want at least 1 for a tall vertical stroke", n)
	}
}

func TestColSegmentContainsThePoint(t *testing.T) {
	b := verticalBar(10, 5)
	f := New(b)
	seg := f.ColSegment(5, 2)
	if !seg.Valid() || !seg.IncludesCol(5) {
		t.Fatalf("col_segment(5,2) = %v, want a valid segment including row 5", seg)
	}
}

func TestSimilarWithinPercent(t *testing.T) {
	if !Similar(100, 104, 5, 0) {
		t.Fatalf("100 and 104 should be similar within 5%%")
	}
	if Similar(100, 200, 5, 0) {
		t.Fatalf("100 and 200 should not be similar within 5%%")
	}
}
