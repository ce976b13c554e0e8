package ocrad

import (
	"testing"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/pageimage"
	"github.com/wudi/ocrkit/rational"
)

func TestNewControlDefaults(t *testing.T) {
	c := NewControl()
	if c.Charset != classify.ASCII {
		t.Errorf("default Charset = %v, want ASCII", c.Charset)
	}
	if c.ThresholdOK {
		t.Error("default ThresholdOK = true, want false (automatic)")
	}
	if c.UTF8 || c.Layout || c.Invert {
		t.Error("default UTF8/Layout/Invert should all be false")
	}
}

func TestControlOptionsApply(t *testing.T) {
	th := rational.New(1, 2)
	c := NewControl(
		WithCharset(classify.ISO885915),
		WithTransform(pageimage.Rotate90),
		WithThresholdFraction(th),
		WithScale(-2),
		WithUTF8(true),
		WithLayout(true),
		WithInvert(true),
	)
	if c.Charset != classify.ISO885915 {
		t.Errorf("Charset = %v, want ISO885915", c.Charset)
	}
	if c.Transform != pageimage.Rotate90 {
		t.Errorf("Transform = %v, want Rotate90", c.Transform)
	}
	if !c.ThresholdOK || c.Threshold.Cmp(th) != 0 {
		t.Errorf("Threshold = %v (ok=%v), want %v", c.Threshold, c.ThresholdOK, th)
	}
	if c.Scale != -2 {
		t.Errorf("Scale = %d, want -2", c.Scale)
	}
	if !c.UTF8 || !c.Layout || !c.Invert {
		t.Error("UTF8/Layout/Invert should all be true")
	}
}

func TestWithThresholdAutoResetsExplicitThreshold(t *testing.T) {
	c := NewControl(WithThresholdFraction(rational.New(3, 4)), WithThresholdAuto())
	if c.ThresholdOK {
		t.Error("WithThresholdAuto should clear ThresholdOK")
	}
}

func TestParseTransformKindRoundTrip(t *testing.T) {
	cases := map[string]pageimage.TransformKind{
		"none":       pageimage.TransformNone,
		"rotate90":   pageimage.Rotate90,
		"rotate180":  pageimage.Rotate180,
		"rotate270":  pageimage.Rotate270,
		"mirror_lr":  pageimage.MirrorLR,
		"mirror_tb":  pageimage.MirrorTB,
		"mirror_d1":  pageimage.MirrorD1,
		"mirror_d2":  pageimage.MirrorD2,
	}
	for name, want := range cases {
		got, ok := pageimage.ParseTransformKind(name)
		if !ok || got != want {
			t.Errorf("ParseTransformKind(%q) = (%v, %v), want (%v, true)", name, got, ok, want)
		}
	}
	if _, ok := pageimage.ParseTransformKind("sideways"); ok {
		t.Error(`ParseTransformKind("sideways") should report ok=false`)
	}
}
