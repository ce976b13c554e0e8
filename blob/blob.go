// Package blob implements the connected-component layer above bitmap: a
// Blob is a filled region (a character candidate) together with the holes
// punched through it (the counters of an 'o', 'a', 'e', ...), discovered by
// a single top-to-bottom scan that merges and evicts hole candidates as the
// scan line advances.
package blob

import (
	"fmt"

	"github.com/wudi/ocrkit/bitmap"
	"github.com/wudi/ocrkit/rect"
)

// Blob is a Bitmap plus its holes.
type Blob struct {
	bitmap.Bitmap
	holepv []*bitmap.Bitmap
}

// New creates a blank Blob.
func New(l, t, r, b int) *Blob {
	return &Blob{Bitmap: *bitmap.New(l, t, r, b)}
}

// FromPart creates a Blob from part of a Bitmap, mirroring bitmap.FromPart.
func FromPart(source *bitmap.Bitmap, re rect.Rectangle) *Blob {
	return &Blob{Bitmap: *bitmap.FromPart(source, re)}
}

func deleteOuterHoles(re rect.Rectangle, holepv []*bitmap.Bitmap) []*bitmap.Bitmap {
	out := holepv[:0]
	for _, h := range holepv {
		if re.StrictlyIncludes(h.Rectangle) {
			out = append(out, h)
		}
	}
	return out
}

// SetLeft grows/shrinks the blob horizontally; shrinking (moving the left
// edge inward) discards any hole no longer strictly inside the new bounds.
func (b *Blob) SetLeft(l int) {
	d := l - b.Left()
	if d == 0 {
		return
	}
	b.Bitmap.SetLeft(l)
	if d > 0 {
		b.holepv = deleteOuterHoles(b.Rectangle, b.holepv)
	}
}

func (b *Blob) SetTop(t int) {
	d := t - b.Top()
	if d == 0 {
		return
	}
	b.Bitmap.SetTop(t)
	if d > 0 {
		b.holepv = deleteOuterHoles(b.Rectangle, b.holepv)
	}
}

func (b *Blob) SetRight(r int) {
	d := r - b.Right()
	if d == 0 {
		return
	}
	b.Bitmap.SetRight(r)
	if d < 0 {
		b.holepv = deleteOuterHoles(b.Rectangle, b.holepv)
	}
}

func (b *Blob) SetBottom(bot int) {
	d := bot - b.Bottom()
	if d == 0 {
		return
	}
	b.Bitmap.SetBottom(bot)
	if d < 0 {
		b.holepv = deleteOuterHoles(b.Rectangle, b.holepv)
	}
}

func (b *Blob) SetHeight(h int) { b.SetBottom(b.Top() + h - 1) }
func (b *Blob) SetWidth(w int)  { b.SetRight(b.Left() + w - 1) }

func (b *Blob) Hole(i int) *bitmap.Bitmap {
	if i < 0 || i >= b.Holes() {
		panic("hole, index out of bounds")
	}
	return b.holepv[i]
}

func (b *Blob) Holes() int { return len(b.holepv) }

// ID returns 1 for a blob dot, -(i+1) for a dot belonging to hole i, 0
// otherwise.
func (b *Blob) ID(row, col int) int {
	if b.IncludesPoint(row, col) {
		if b.GetBit(row, col) {
			return 1
		}
		for i, h := range b.holepv {
			if h.IncludesPoint(row, col) && h.GetBit(row, col) {
				return -(i + 1)
			}
		}
	}
	return 0
}

// IsAbnormal flags blobs whose aspect ratio rules them out as a character
// candidate before the classifier ever looks at them.
func (b *Blob) IsAbnormal() bool {
	return b.Height() < 10 || b.Height() >= 5*b.Width() || b.Width() >= 3*b.Height()
}

// TestBD distinguishes 'B' from 'D' shapes by comparing how soon a dot
// appears tracing diagonally from the bottom-left versus the top-right.
func (b *Blob) TestBD() bool {
	wlimit := minInt(b.Height(), b.Width()) / 2
	lb, rt := wlimit, wlimit
	for i := 0; i < wlimit; i++ {
		if b.ID(b.Bottom()-i, b.Left()+i) == 1 || b.ID(b.Bottom()-i, b.Left()+i+1) == 1 {
			lb = i
			break
		}
	}
	for i := 0; i < wlimit; i++ {
		if b.ID(b.Top()+i, b.Right()-i) == 1 {
			rt = i
			break
		}
	}
	return rt >= 2 && 3*lb <= rt
}

// TestQ distinguishes 'Q' from 'O'-like shapes by the asymmetry of the
// diagonal tail near top-left versus bottom-right.
func (b *Blob) TestQ() bool {
	wlimit := minInt(b.Height(), b.Width()) / 2
	ltwmax, rbwmax := 0, 0
	ltimin, rbimin := wlimit, wlimit
	for disp := 0; disp < b.Width()/4; disp++ {
		ltw, rbw := 0, 0
		for i := 0; i < wlimit; i++ {
			if b.ID(b.Top()+i, b.Left()+disp+i) == 1 {
				ltw++
				if ltimin > i {
					ltimin = i
				}
			}
			if b.ID(b.Bottom()-i, b.Right()-disp-i) == 1 {
				rbw++
				if rbimin > i {
					rbimin = i
				}
			}
		}
		if ltwmax < ltw {
			ltwmax = ltw
		}
		if rbwmax < rbw {
			rbwmax = rbw
		}
	}
	return (ltimin > rbimin || rbimin == 0) &&
		(2*ltwmax < rbwmax || (2*ltwmax == rbwmax && rbwmax >= 4))
}

// Print renders an ASCII dump of the blob, matching the debug printer GNU
// Ocrad used for -x output.
func (b *Blob) Print() string {
	s := ""
	for row := b.Top(); row <= b.Bottom(); row++ {
		for col := b.Left(); col <= b.Right(); col++ {
			if b.GetBit(row, col) {
				s += " O"
			} else {
				s += " ."
			}
		}
		s += "\n"
	}
	s += "\n"
	return s
}

// FillHole merges hole i back into the blob's own filled area, erasing it
// as a counter (used when a hole is deemed noise rather than a real
// counter).
func (b *Blob) FillHole(i int) {
	if i < 0 || i >= b.Holes() {
		panic("fill_hole, index out of bounds")
	}
	b.AddBitmap(b.holepv[i])
	b.holepv = append(b.holepv[:i], b.holepv[i+1:]...)
}

func indexOfHole(holepv []*bitmap.Bitmap, p *bitmap.Bitmap) int {
	for i := len(holepv) - 1; i >= 0; i-- {
		if holepv[i] == p {
			return i
		}
	}
	return -1
}

func replaceFrom(v []*bitmap.Bitmap, from int, old, neu *bitmap.Bitmap) {
	for i := from; i < len(v); i++ {
		if v[i] == old {
			v[i] = neu
		}
	}
}

func replaceUpto(v []*bitmap.Bitmap, upto int, old, neu *bitmap.Bitmap) {
	for i := 0; i < upto && i < len(v); i++ {
		if v[i] == old {
			v[i] = neu
		}
	}
}

func (b *Blob) deleteHole(oldData, newData []*bitmap.Bitmap, p *bitmap.Bitmap, i int) {
	replaceFrom(oldData, i, p, nil)
	replaceUpto(newData, i, p, nil)
	idx := indexOfHole(b.holepv, p)
	if idx < 0 {
		panic("delete_hole, lost hole.")
	}
	b.holepv = append(b.holepv[:idx], b.holepv[idx+1:]...)
}

func (b *Blob) joinHoles(oldData, newData []*bitmap.Bitmap, p1, p2 *bitmap.Bitmap, i int) *bitmap.Bitmap {
	if p1.Top() > p2.Top() {
		p1, p2 = p2, p1
		replaceUpto(newData, i+1, p2, p1)
	} else {
		replaceFrom(oldData, i, p2, p1)
	}
	idx := indexOfHole(b.holepv, p2)
	if idx < 0 {
		panic("join_holes, lost hole")
	}
	b.holepv = append(b.holepv[:idx], b.holepv[idx+1:]...)
	p1.AddBitmap(p2)
	return p1
}

// FindHoles rescans the blob and rebuilds its hole list from scratch using
// a single top-to-bottom, left-to-right pass: a run of white pixels becomes
// a new hole candidate, adjacent runs from the row above extend it, and two
// candidates that turn out to be the same hole (reachable from both left
// and above) are merged. Holes too small to be real counters are dropped
// as noise.
func (b *Blob) FindHoles() {
	b.holepv = nil
	if b.Height() < 3 || b.Width() < 3 {
		return
	}

	self := &b.Bitmap
	width := b.Width()
	oldData := make([]*bitmap.Bitmap, width)
	newData := make([]*bitmap.Bitmap, width)

	for row := b.Top(); row <= b.Bottom(); row++ {
		oldData, newData = newData, oldData
		for i := range newData {
			newData[i] = nil
		}

		if b.GetBit(row, b.Left()) {
			newData[0] = self
		}

		for col := b.Left() + 1; col < b.Right(); col++ {
			dcol := col - b.Left()
			if b.GetBit(row, col) {
				newData[dcol] = self
				continue
			}
			var p *bitmap.Bitmap
			lp := newData[dcol-1]
			tp := oldData[dcol]
			switch {
			case lp == nil || tp == nil:
				p = nil
				if lp != nil && lp != self {
					b.deleteHole(oldData, newData, lp, dcol)
				} else if tp != nil && tp != self {
					b.deleteHole(oldData, newData, tp, dcol)
				}
			case lp != self:
				p = lp
				p.AddPoint(row, col)
			case tp != self:
				p = tp
				p.AddPoint(row, col)
			default:
				p = bitmap.New(col, row, col, row)
				p.SetBit(row, col, true)
				b.holepv = append(b.holepv, p)
			}
			newData[dcol] = p
			if p != nil && lp != tp && lp != self && tp != self {
				p = b.joinHoles(oldData, newData, lp, tp, dcol)
				newData[dcol] = p
			}
		}

		if !b.GetBit(row, b.Right()) {
			lp := newData[width-2]
			if lp != nil && lp != self {
				b.deleteHole(oldData, newData, lp, width-1)
			}
		}
	}

	for i := len(b.holepv) - 1; i >= 0; i-- {
		h := b.holepv[i]
		if b.StrictlyIncludes(h.Rectangle) &&
			(h.Height() > 4 || h.Width() > 4 ||
				((h.Height() > 2 || h.Width() > 2) && h.Area() > 3)) {
			continue
		}
		b.holepv = append(b.holepv[:i], b.holepv[i+1:]...)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// String satisfies fmt.Stringer for debug logging.
func (b *Blob) String() string {
	return fmt.Sprintf("blob[%d,%d,%d,%d holes=%d]", b.Left(), b.Top(), b.Right(), b.Bottom(), b.Holes())
}
