package textpage

import (
	"testing"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/pageimage"
)

// drawBlock paints a filled black rectangle [l,t]-[r,b] (inclusive) into a
// width x height, zero-initialized 1-bit pixmap buffer.
func drawBlock(data []byte, width, l, t, r, b int) {
	for row := t; row <= b; row++ {
		for col := l; col <= r; col++ {
			data[row*width+col] = 1
		}
	}
}

func TestNewFindsTwoSeparateGlyphsOnOneLine(t *testing.T) {
	const width, height = 60, 40
	data := make([]byte, width*height)
	drawBlock(data, width, 5, 10, 12, 21)
	drawBlock(data, width, 20, 10, 27, 21)

	img, err := pageimage.FromPixmap(pageimage.Pixmap{Width: width, Height: height, Mode: pageimage.Bitmap, Data: data}, false)
	if err != nil {
		t.Fatalf("FromPixmap: %v", err)
	}

	var f filter.Filter
	tp := New(img, "test.pbm", classify.ASCII, f, false)
	if tp.Textblocks() == 0 {
		t.Fatalf("expected at least one textblock")
	}
	if tp.Characters() == 0 {
		t.Fatalf("expected at least one recognized character")
	}
}

func TestNewIgnoresBlankPage(t *testing.T) {
	const width, height = 40, 40
	data := make([]byte, width*height)
	img, err := pageimage.FromPixmap(pageimage.Pixmap{Width: width, Height: height, Mode: pageimage.Bitmap, Data: data}, false)
	if err != nil {
		t.Fatalf("FromPixmap: %v", err)
	}
	var f filter.Filter
	tp := New(img, "blank.pbm", classify.ASCII, f, false)
	if tp.Textblocks() != 0 {
		t.Fatalf("blank page should yield no textblocks, got %d", tp.Textblocks())
	}
}
