// Package ocradengine adapts the ocrad façade to the ocr.Engine contract, so
// callers that only know about ocr.Input/ocr.Result can drive the
// character-recognition pipeline without importing ocrad directly.
package ocradengine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/ocr"
	"github.com/wudi/ocrkit/ocrad"
	"github.com/wudi/ocrkit/pageimage"
)

func init() {
	ocr.SetDefaultEngine(NewEngine())
}

// Engine implements ocr.Engine and ocr.BatchEngine over the ocrad façade,
// the library's own recognizer rather than an external OCR binary.
type Engine struct{}

// NewEngine constructs an ocrad-backed OCR engine.
func NewEngine() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "ocrad" }

// Recognize decodes in.Image, runs recognition, and flattens the result
// into ocr.Result's block/line/word shape. Word-level bounds are not part
// of ocrad's output model, so each line contributes a single synthetic word
// spanning its own bounds.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}

	pix, err := decodePixmap(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("ocradengine: decode input %s: %w", in.ID, err)
	}

	control := ocrad.NewControl(ocrad.WithCharset(charsetFor(in.Languages)), ocrad.WithThresholdAuto())
	desc := ocrad.Open(control)
	if err := desc.SetImage(pix, in.ID); err != nil {
		return ocr.Result{}, fmt.Errorf("ocradengine: set image %s: %w", in.ID, err)
	}
	if err := desc.Recognize(true); err != nil {
		return ocr.Result{}, fmt.Errorf("ocradengine: recognize %s: %w", in.ID, err)
	}

	return buildResult(desc, in.ID, firstOr(in.Languages, "")), nil
}

// RecognizeBatch runs Recognize sequentially; ocrad's Descriptor carries no
// state worth amortizing across images, unlike a client/server OCR provider.
func (e *Engine) RecognizeBatch(ctx context.Context, inputs []ocr.Input) ([]ocr.Result, error) {
	results := make([]ocr.Result, 0, len(inputs))
	for _, in := range inputs {
		res, err := e.Recognize(ctx, in)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func buildResult(desc *ocrad.Descriptor, id, language string) ocr.Result {
	tp := desc.Textpage()
	blocks := make([]ocr.TextBlock, 0, desc.ResultBlocks())
	var plain bytes.Buffer

	for i := 0; i < desc.ResultBlocks(); i++ {
		tb := tp.Textblock(i)
		lines := make([]ocr.TextLine, 0, tb.Textlines())
		var blockText bytes.Buffer
		for j := 0; j < tb.Textlines(); j++ {
			tl := tb.Textline(j)
			text, err := desc.ResultLine(i, j)
			if err != nil {
				continue
			}
			bounds := ocr.Region{
				X:      float64(tl.Left()),
				Y:      float64(tl.Top()),
				Width:  float64(tl.Width()),
				Height: float64(tl.Height()),
			}
			lines = append(lines, ocr.TextLine{
				Text:   text,
				Bounds: bounds,
				Words:  []ocr.TextWord{{Text: text, Bounds: bounds, Confidence: 1}},
			})
			blockText.WriteString(text)
			blockText.WriteByte('\n')
		}
		blocks = append(blocks, ocr.TextBlock{
			Text: blockText.String(),
			Bounds: ocr.Region{
				X:      float64(tb.Left()),
				Y:      float64(tb.Top()),
				Width:  float64(tb.Width()),
				Height: float64(tb.Height()),
			},
			Lines: lines,
		})
		plain.WriteString(blockText.String())
	}

	return ocr.Result{
		InputID:   id,
		PlainText: plain.String(),
		Blocks:    blocks,
		Language:  language,
	}
}

// charsetFor maps a BCP-47 language hint to the closest single-byte
// charset; ocrad's charset vocabulary is letterform-set, not locale, so this
// is a coarse approximation rather than a faithful translation.
func charsetFor(langs []string) classify.Charset {
	for _, l := range langs {
		switch l {
		case "eng":
			return classify.ASCII
		case "tur":
			return classify.ISO885909
		}
	}
	return classify.ISO885915
}

func firstOr(vals []string, def string) string {
	if len(vals) == 0 {
		return def
	}
	return vals[0]
}

// decodePixmap decodes a standard-library-supported image (PNG, JPEG, TIFF)
// and converts it to the Colormap pixmap shape pageimage.FromPixmap expects,
// cropping to region first when the caller restricted recognition to a
// subsection of the page.
func decodePixmap(data []byte, region *ocr.Region) (pageimage.Pixmap, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return pageimage.Pixmap{}, err
	}
	if region != nil && !region.IsEmpty() {
		cropRect := image.Rect(
			int(region.X), int(region.Y),
			int(region.X+region.Width), int(region.Y+region.Height),
		).Intersect(img.Bounds())
		if sub, ok := img.(interface {
			SubImage(image.Rectangle) image.Image
		}); ok && !cropRect.Empty() {
			img = sub.SubImage(cropRect)
		}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := make([]byte, 0, w*h*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			buf = append(buf, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}
	return pageimage.Pixmap{Width: w, Height: h, Mode: pageimage.Colormap, Data: buf}, nil
}
