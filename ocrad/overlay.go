package ocrad

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/ocrkit/pageimage"
	"github.com/wudi/ocrkit/textpage"
)

// ToImage renders a PageImage as a standard library image.Image, the bridge
// the debug overlay (and any other image/draw consumer) needs since
// PageImage itself only exposes the boolean bit view (spec §1's "debug/
// trace rendering" external collaborator).
func ToImage(img *pageimage.PageImage) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Width(), img.Height()))
	for row := img.Top(); row <= img.Bottom(); row++ {
		for col := img.Left(); col <= img.Right(); col++ {
			v := color.Gray{Y: 255}
			if img.GetBit(row, col) {
				v = color.Gray{Y: 0}
			}
			out.SetGray(col-img.Left(), row-img.Top(), v)
		}
	}
	return out
}

// Overlay draws a colored box around every recognized character on top of
// the source page, scaled to scale (>=1) by nearest-neighbour replication.
// When faceData is non-empty it also shapes each character's leading guess
// with go-text/typesetting to measure its advance width; that width is not
// used, and no label or glyph is drawn on the image.
func Overlay(img *pageimage.PageImage, tp *textpage.Textpage, scale int, faceData []byte) (image.Image, error) {
	if scale < 1 {
		scale = 1
	}
	src := ToImage(img)
	dstRect := image.Rect(0, 0, src.Bounds().Dx()*scale, src.Bounds().Dy()*scale)
	dst := image.NewRGBA(dstRect)
	draw.NearestNeighbor.Scale(dst, dstRect, src, src.Bounds(), draw.Over, nil)

	var face *gofont.Face
	if len(faceData) > 0 {
		f, err := gofont.ParseTTF(bytes.NewReader(faceData))
		if err != nil {
			return nil, fmt.Errorf("ocrad: parse overlay font: %w", err)
		}
		face = f
	}

	boxColor := color.RGBA{R: 220, G: 30, B: 30, A: 255}
	for i := 0; i < tp.Textblocks(); i++ {
		tb := tp.Textblock(i)
		for j := 0; j < tb.Textlines(); j++ {
			line := tb.Textline(j)
			for k := 0; k < line.Characters(); k++ {
				c := line.Character(k)
				box := line.Charbox(c)
				drawBoxOutline(dst, box.Left()*scale, box.Top()*scale, box.Right()*scale, box.Bottom()*scale, boxColor)
				if face != nil && len(c.Guesses) > 0 {
					measureLabel(face, string(c.Guesses[0].Code))
				}
			}
		}
	}
	return dst, nil
}

func measureLabel(face *gofont.Face, label string) fixed.Int26_6 {
	shaper := &shaping.HarfbuzzShaper{}
	runes := []rune(label)
	input := shaping.Input{
		Text:     runes,
		RunStart: 0,
		RunEnd:   len(runes),
		Face:     face,
		Size:     fixed.Int26_6(12 * 64),
		Language: language.DefaultLanguage(),
	}
	out := shaper.Shape(input)
	var w fixed.Int26_6
	for _, g := range out.Glyphs {
		w += g.XAdvance
	}
	return w
}

func drawBoxOutline(dst *image.RGBA, l, t, r, b int, col color.RGBA) {
	for x := l; x <= r; x++ {
		dst.SetRGBA(x, t, col)
		dst.SetRGBA(x, b, col)
	}
	for y := t; y <= b; y++ {
		dst.SetRGBA(l, y, col)
		dst.SetRGBA(r, y, col)
	}
}
