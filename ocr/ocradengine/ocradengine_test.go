package ocradengine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/wudi/ocrkit/ocr"
)

func blankPage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEngineName(t *testing.T) {
	e := NewEngine()
	if e.Name() != "ocrad" {
		t.Fatalf("Name() = %q, want ocrad", e.Name())
	}
}

func TestEngineRecognizeBlankPage(t *testing.T) {
	e := NewEngine()
	in := ocr.Input{ID: "page-0", Image: blankPage(t, 64, 32), Format: ocr.ImageFormatPNG, Languages: []string{"eng"}}

	res, err := e.Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.InputID != in.ID {
		t.Errorf("InputID = %q, want %q", res.InputID, in.ID)
	}
	if res.Language != "eng" {
		t.Errorf("Language = %q, want eng", res.Language)
	}
}

func TestEngineRecognizeBatch(t *testing.T) {
	e := NewEngine()
	inputs := []ocr.Input{
		{ID: "a", Image: blankPage(t, 48, 24)},
		{ID: "b", Image: blankPage(t, 48, 24)},
	}

	results, err := e.RecognizeBatch(context.Background(), inputs)
	if err != nil {
		t.Fatalf("RecognizeBatch() error = %v", err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("got %d results, want %d", len(results), len(inputs))
	}
	for i, res := range results {
		if res.InputID != inputs[i].ID {
			t.Errorf("result %d InputID = %q, want %q", i, res.InputID, inputs[i].ID)
		}
	}
}

func TestEngineRecognizeRespectsContextCancellation(t *testing.T) {
	e := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Recognize(ctx, ocr.Input{ID: "x", Image: blankPage(t, 16, 16)})
	if err == nil {
		t.Fatal("Recognize() with canceled context: want error, got nil")
	}
}

func TestEngineRecognizeRegionCrop(t *testing.T) {
	e := NewEngine()
	region := ocr.Region{X: 0, Y: 0, Width: 20, Height: 20}
	in := ocr.Input{ID: "cropped", Image: blankPage(t, 64, 64), Region: &region}

	if _, err := e.Recognize(context.Background(), in); err != nil {
		t.Fatalf("Recognize() with region error = %v", err)
	}
}
