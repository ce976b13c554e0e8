// Package ocrad is the library façade: a stateful descriptor wrapping the
// binarization, scan, layout, and classification pipeline behind the small
// setter/recognize/query surface the OCRAD C library exposed, adapted to the
// functional-options idiom the rest of this repository uses for tunables.
package ocrad

import (
	"fmt"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/pageimage"
	"github.com/wudi/ocrkit/rational"
)

// Version reports the classifier generation that produced a result, the Go
// equivalent of OCRAD_version_string.
const Version = "0.23-pre1-go"

// Control collects the engine's tunables (spec §6): charset, filter,
// transform, threshold, scale, utf8, layout, invert.
type Control struct {
	Charset     classify.Charset
	Filter      filter.Filter
	Transform   pageimage.TransformKind
	Threshold   rational.Rational // out-of-[0,1] means "auto" (Otsu)
	ThresholdOK bool
	Scale       int // 0/1 = no-op, >=2 enlarge, <=-2 reduce
	UTF8        bool
	Layout      bool
	Invert      bool
}

// ControlOption mutates a Control under construction.
type ControlOption func(*Control)

// NewControl builds a Control from the given options, defaulting to ASCII
// charset, no filter, no transform, automatic threshold, no scale, byte
// (non-UTF8) output, layout analysis off, and no intensity inversion.
func NewControl(opts ...ControlOption) *Control {
	c := &Control{
		Charset: classify.ASCII,
		Scale:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCharset selects which non-ASCII code points the classifier may emit.
func WithCharset(cs classify.Charset) ControlOption {
	return func(c *Control) { c.Charset = cs }
}

// WithFilter sets the post-classification code-class filter.
func WithFilter(f filter.Filter) ControlOption {
	return func(c *Control) { c.Filter = f }
}

// WithTransform sets the raster reorientation applied before binarization.
func WithTransform(t pageimage.TransformKind) ControlOption {
	return func(c *Control) { c.Transform = t }
}

// WithThresholdFraction sets an explicit 0..1 binarization threshold.
func WithThresholdFraction(th rational.Rational) ControlOption {
	return func(c *Control) { c.Threshold = th; c.ThresholdOK = true }
}

// WithThresholdAuto requests Otsu automatic thresholding (the default).
func WithThresholdAuto() ControlOption {
	return func(c *Control) { c.ThresholdOK = false }
}

// WithScale sets the integer scale factor: >=2 enlarges, <=-2 reduces, -1/0/1
// are no-ops.
func WithScale(n int) ControlOption {
	return func(c *Control) { c.Scale = n }
}

// WithUTF8 selects UTF-8 text output instead of single-byte charset output.
func WithUTF8(utf8 bool) ControlOption {
	return func(c *Control) { c.UTF8 = utf8 }
}

// WithLayout enables multi-zone layout analysis.
func WithLayout(layout bool) ControlOption {
	return func(c *Control) { c.Layout = layout }
}

// WithInvert inverts raster intensity at read time.
func WithInvert(invert bool) ControlOption {
	return func(c *Control) { c.Invert = invert }
}

func (c *Control) String() string {
	return fmt.Sprintf("Control{charset=%d scale=%d utf8=%v layout=%v invert=%v}",
		c.Charset, c.Scale, c.UTF8, c.Layout, c.Invert)
}
