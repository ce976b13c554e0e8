package textblock

import (
	"testing"

	"github.com/wudi/ocrkit/blob"
	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/rect"
)

func TestNewGroupsSimilarHeightBlobsIntoOneLine(t *testing.T) {
	page := rect.New(0, 0, 199, 199)
	blobs := []*blob.Blob{
		blob.New(0, 0, 7, 11),
		blob.New(9, 0, 16, 11),
	}
	tb := New(page, page, blobs)
	if tb.Textlines() != 1 {
		t.Fatalf("textlines = %d, want 1", tb.Textlines())
	}
	if tb.Textline(0).Characters() != 2 {
		t.Fatalf("characters in line = %d, want 2", tb.Textline(0).Characters())
	}
	if tb.Characters() != 2 {
		t.Fatalf("Characters() = %d, want 2", tb.Characters())
	}
}

func TestNewSplitsTwoVerticallySeparatedBands(t *testing.T) {
	page := rect.New(0, 0, 199, 199)
	blobs := []*blob.Blob{
		blob.New(0, 0, 7, 11),
		blob.New(9, 0, 16, 11),
		blob.New(0, 40, 7, 51),
		blob.New(9, 40, 16, 51),
	}
	tb := New(page, page, blobs)
	if tb.Textlines() != 2 {
		t.Fatalf("textlines = %d, want 2", tb.Textlines())
	}
}

func TestRecognizeDropsUnrecognizedLine(t *testing.T) {
	page := rect.New(0, 0, 199, 199)
	blobs := []*blob.Blob{
		blob.New(0, 0, 7, 11),
		blob.New(9, 0, 16, 11),
	}
	tb := New(page, page, blobs)
	var f filter.Filter
	tb.Recognize(classify.ASCII, f)
	for i := 0; i < tb.Textlines(); i++ {
		line := tb.Textline(i)
		recognized := false
		for j := 0; j < line.Characters(); j++ {
			if len(line.Character(j).Guesses) > 0 {
				recognized = true
			}
		}
		if !recognized {
			t.Fatalf("line %d survived Recognize with no recognized character", i)
		}
	}
}
