package ocrad

import (
	"bytes"
	"strings"
	"testing"

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

func twoGlyphPixmap() pageimage.Pixmap {
	const width, height = 60, 40
	data := make([]byte, width*height)
	drawBlock(data, width, 5, 10, 12, 21)
	drawBlock(data, width, 20, 10, 27, 21)
	return pageimage.Pixmap{Width: width, Height: height, Mode: pageimage.Bitmap, Data: data}
}

func TestDescriptorRecognizeFindsBlocks(t *testing.T) {
	d := Open(NewControl())
	if err := d.SetImage(twoGlyphPixmap(), "test.pbm"); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if err := d.Recognize(false); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if d.Errno() != ErrnoOK {
		t.Fatalf("Errno() = %v, want ErrnoOK", d.Errno())
	}
	if d.ResultBlocks() == 0 {
		t.Fatal("expected at least one result block")
	}
	if d.ResultCharsTotal() == 0 {
		t.Fatal("expected at least one recognized character")
	}
}

func TestDescriptorRecognizeWithoutImageIsSequenceError(t *testing.T) {
	d := Open(NewControl())
	err := d.Recognize(false)
	if err == nil {
		t.Fatal("Recognize without an image: want error, got nil")
	}
	if d.Errno() != ErrnoSequenceError {
		t.Fatalf("Errno() = %v, want ErrnoSequenceError", d.Errno())
	}
}

func TestDescriptorResultLineOutOfRangeIsBadArgument(t *testing.T) {
	d := Open(NewControl())
	if err := d.SetImage(twoGlyphPixmap(), "test.pbm"); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if err := d.Recognize(false); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if _, err := d.ResultLine(d.ResultBlocks(), 0); err == nil {
		t.Fatal("ResultLine with out-of-range block: want error, got nil")
	}
}

func TestDescriptorRecognizeIsCached(t *testing.T) {
	d := Open(NewControl())
	pix := twoGlyphPixmap()
	if err := d.SetImage(pix, "test.pbm"); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if err := d.Recognize(false); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	first := d.Textpage()

	if err := d.SetImage(pix, "test.pbm"); err != nil {
		t.Fatalf("SetImage (second): %v", err)
	}
	if err := d.Recognize(false); err != nil {
		t.Fatalf("Recognize (second): %v", err)
	}
	if d.Textpage() != first {
		t.Fatal("Recognize on an unchanged image/option pair should hit the cache")
	}
}

func TestDescriptorExportWritesOrfHeader(t *testing.T) {
	d := Open(NewControl())
	if err := d.SetImage(twoGlyphPixmap(), "test.pbm"); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if err := d.Recognize(false); err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	var buf bytes.Buffer
	if err := d.Export(&buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "# Ocr Results File.") {
		t.Fatalf("Export() output missing ORF header, got: %q", out[:min(40, len(out))])
	}
	if !strings.Contains(out, "source file test.pbm") {
		t.Fatalf("Export() output missing source file line, got: %q", out)
	}
}
