// Package pageimage implements the binarization stage: an 8-bit intensity
// grid plus a threshold, exposing a boolean "black" view over the grid
// without materializing a second bitmap. It owns PNM decoding, the Otsu
// automatic threshold, geometric transforms/crop/scale, and the colormap
// intensity formula the pixmap input contract requires.
package pageimage

import (
	"fmt"

	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/ocrerr"
	"github.com/wudi/ocrkit/rational"
	"github.com/wudi/ocrkit/rect"
)

// PixmapMode mirrors the three raster encodings the image-input contract
// accepts (spec §6).
type PixmapMode int

const (
	Bitmap PixmapMode = iota
	Greymap
	Colormap
)

// Pixmap is the caller-supplied raster: height rows of width pixels, 1 byte
// per pixel for Bitmap/Greymap, 3 bytes (R,G,B) per pixel for Colormap.
type Pixmap struct {
	Width, Height int
	Mode          PixmapMode
	Data          []byte
}

// PageImage owns the intensity grid exclusively; nothing else retains a
// reference to it once binarization is done: everything downstream only
// keeps the boolean Bit it read.
type PageImage struct {
	rect.Rectangle
	data      [][]uint8 // 256-level greymap, row-major
	maxval    uint8
	threshold uint8
	log       observability.Logger
}

// SetLogger wires a structured logger into this PageImage; nil restores the
// no-op logger.
func (p *PageImage) SetLogger(l observability.Logger) {
	if l == nil {
		l = observability.NopLogger{}
	}
	p.log = l
}

func (p *PageImage) logger() observability.Logger {
	if p.log == nil {
		return observability.NopLogger{}
	}
	return p.log
}

// FromPixmap builds a PageImage from an in-memory Pixmap, applying the
// colormap/greymap/bitmap intensity rules from the image-input contract.
func FromPixmap(img Pixmap, invert bool) (*PageImage, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, ocrerr.New(ocrerr.InvalidGeometry, "pageimage.FromPixmap", fmt.Errorf("non-positive dimensions %dx%d", img.Width, img.Height))
	}
	p := &PageImage{Rectangle: rect.New(0, 0, img.Width-1, img.Height-1)}
	rows, cols := p.Height(), p.Width()
	p.data = make([][]uint8, rows)
	for r := range p.data {
		p.data[r] = make([]uint8, cols)
	}

	switch img.Mode {
	case Bitmap:
		p.maxval, p.threshold = 1, 0
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				v := img.Data[row*cols+col]
				black := v != 0
				if invert {
					black = !black
				}
				if !black {
					p.data[row][col] = 1
				}
			}
		}
	case Greymap:
		p.maxval, p.threshold = 255, 127
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				v := img.Data[row*cols+col]
				if invert {
					v = p.maxval - v
				}
				p.data[row][col] = v
			}
		}
	case Colormap:
		p.maxval, p.threshold = 255, 127
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				i := (row*cols + col) * 3
				r, g, b := img.Data[i], img.Data[i+1], img.Data[i+2]
				var val uint8
				if !invert {
					val = minU8(r, minU8(g, b))
				} else {
					val = p.maxval - maxU8(r, maxU8(g, b))
				}
				p.data[row][col] = val
			}
		}
	default:
		return nil, ocrerr.New(ocrerr.BadArgument, "pageimage.FromPixmap", fmt.Errorf("unknown pixmap mode %d", img.Mode))
	}
	return p, nil
}

// GetBit reports whether (row,col) is black under the current threshold.
func (p *PageImage) GetBit(row, col int) bool {
	return p.data[row-p.Top()][col-p.Left()] <= p.threshold
}

// GetBitAt reports blackness under an explicit threshold (used by the blob
// scanner when probing at a caller-chosen sensitivity).
func (p *PageImage) GetBitAt(row, col int, th uint8) bool {
	return p.data[row-p.Top()][col-p.Left()] <= th
}

func (p *PageImage) SetBit(row, col int, black bool) {
	if black {
		p.data[row-p.Top()][col-p.Left()] = 0
	} else {
		p.data[row-p.Top()][col-p.Left()] = p.maxval
	}
}

func (p *PageImage) Maxval() uint8    { return p.maxval }
func (p *PageImage) Threshold() uint8 { return p.threshold }

// SetThresholdFraction applies a 0..1 fraction threshold, or falls back to
// Otsu when out of that range.
func (p *PageImage) SetThresholdFraction(th rational.Rational) {
	zero := rational.FromInt(0)
	one := rational.FromInt(1)
	if !rationalLess(th, zero) && !rationalLess(one, th) {
		p.threshold = uint8(th.Mul(rational.FromInt(int(p.maxval))).Trunc())
	} else {
		p.threshold = uint8(otsuThreshold(p.data, p.Rectangle, int(p.maxval)))
	}
	p.logger().Debug("pageimage: threshold set", observability.Int("threshold", int(p.threshold)))
}

// SetThresholdInt applies a 0..255 integer threshold rescaled to maxval, or
// Otsu when out of range.
func (p *PageImage) SetThresholdInt(th int) {
	if th >= 0 && th <= 255 {
		p.threshold = uint8((th * int(p.maxval)) / 255)
	} else {
		p.threshold = uint8(otsuThreshold(p.data, p.Rectangle, int(p.maxval)))
	}
	p.logger().Debug("pageimage: threshold set", observability.Int("threshold", int(p.threshold)))
}

// otsuThreshold picks the histogram split maximizing between-class variance
// (spec §4.1); if no split qualifies, it returns 0.
func otsuThreshold(data [][]uint8, re rect.Rectangle, maxval int) int {
	if maxval <= 1 {
		return 0
	}
	hist := make([]int64, maxval+1)
	for row := re.Top(); row <= re.Bottom(); row++ {
		for col := re.Left(); col <= re.Right(); col++ {
			hist[data[row-re.Top()][col-re.Left()]]++
		}
	}
	chist := make([]int64, maxval+1)
	cmom := make([]int64, maxval+1)
	chist[0] = hist[0]
	for i := 1; i <= maxval; i++ {
		chist[i] = chist[i-1] + hist[i]
		cmom[i] = cmom[i-1] + int64(i)*hist[i]
	}
	cmomMax := float64(cmom[maxval])
	n := float64(re.Size())
	bvarMax := 0.0
	threshold := 0
	for i := 0; i < maxval; i++ {
		if chist[i] > 0 && chist[i] < int64(re.Size()) {
			bvar := float64(cmom[i]) / float64(chist[i])
			bvar -= (cmomMax - float64(cmom[i])) / (n - float64(chist[i]))
			bvar *= bvar
			bvar *= float64(chist[i])
			bvar *= n - float64(chist[i])
			if bvar > bvarMax {
				bvarMax = bvar
				threshold = i
			}
		}
	}
	return threshold
}

func rationalLess(a, b rational.Rational) bool {
	// a<b  <=>  a.num*b.den < b.num*a.den, for positive denominators.
	return int64(a.Numerator())*int64(b.Denominator()) < int64(b.Numerator())*int64(a.Denominator())
}

func minU8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}
