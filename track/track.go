// Package track implements the slanted-baseline model a Textline fits over
// its Characters: a Vrhomboid is one straight segment (two vertical sides,
// linearly-interpolated vertical center between them), and a Track is an
// ordered, contiguous chain of Vrhomboids covering a line's full horizontal
// extent.
package track

import (
	"sort"

	"github.com/wudi/ocrkit/rect"
)

// Vrhomboid is a parallelogram with two vertical sides at left/right,
// vertical centers lvcenter/rvcenter at those columns, and a common height.
type Vrhomboid struct {
	left, lvcenter, right, rvcenter, height int
}

// NewVrhomboid panics on r<l or h<=0, mirroring the original's bad-parameter
// abort (spec: internal invariant).
func NewVrhomboid(l, lc, r, rc, h int) Vrhomboid {
	if r < l || h <= 0 {
		panic("bad parameter building a Vrhomboid")
	}
	return Vrhomboid{left: l, lvcenter: lc, right: r, rvcenter: rc, height: h}
}

func (v Vrhomboid) Left() int     { return v.left }
func (v Vrhomboid) Lvcenter() int { return v.lvcenter }
func (v Vrhomboid) Right() int    { return v.right }
func (v Vrhomboid) Rvcenter() int { return v.rvcenter }
func (v Vrhomboid) Height() int   { return v.height }
func (v Vrhomboid) Width() int    { return v.right - v.left + 1 }
func (v Vrhomboid) Size() int     { return v.height * v.Width() }

func (v *Vrhomboid) SetLeft(l int) {
	if l > v.right {
		panic("left, bad parameter resizing a Vrhomboid")
	}
	v.left = l
}

func (v *Vrhomboid) SetRight(r int) {
	if r < v.left {
		panic("right, bad parameter resizing a Vrhomboid")
	}
	v.right = r
}

func (v *Vrhomboid) SetHeight(h int) {
	if h <= 0 {
		panic("height, bad parameter resizing a Vrhomboid")
	}
	v.height = h
}

func (v *Vrhomboid) ExtendLeft(l int) {
	if l > v.right {
		panic("extend_left, bad parameter resizing a Vrhomboid")
	}
	v.lvcenter = v.Vcenter(l)
	v.left = l
}

func (v *Vrhomboid) ExtendRight(r int) {
	if r < v.left {
		panic("extend_right, bad parameter resizing a Vrhomboid")
	}
	v.rvcenter = v.Vcenter(r)
	v.right = r
}

func (v Vrhomboid) Vcenter(col int) int {
	dx, dy := v.right-v.left, v.rvcenter-v.lvcenter
	vc := v.lvcenter
	if dx != 0 && dy != 0 {
		vc += (dy * (col - v.left)) / dx
	}
	return vc
}

func (v Vrhomboid) Bottom(col int) int { return v.Vcenter(col) + v.height/2 }
func (v Vrhomboid) Top(col int) int    { return v.Bottom(col) - v.height + 1 }

func (v Vrhomboid) Includes(r rect.Rectangle) bool {
	if r.Left() < v.left || r.Right() > v.right {
		return false
	}
	tl, bl := v.Top(r.Left()), v.Bottom(r.Left())
	tr, br := v.Top(r.Right()), v.Bottom(r.Left())
	t := maxInt(tl, tr)
	b := minInt(bl, br)
	return t <= r.Top() && b >= r.Bottom()
}

func (v Vrhomboid) IncludesPoint(row, col int) bool {
	if col < v.left || col > v.right {
		return false
	}
	t, b := v.Top(col), v.Bottom(col)
	return t <= row && b >= row
}

// Track is an ordered, contiguous chain of Vrhomboids covering a Textline's
// full horizontal extent; gaps between fitted segments are filled by
// synthetic bridging Vrhomboids.
type Track struct {
	data []Vrhomboid
}

func goodReference(r1, r2 rect.Rectangle, val *int, meanHeight, meanWidth int) int {
	if 4*r1.Height() >= 3*meanHeight && 4*r2.Height() >= 3*meanHeight &&
		(r1.Width() >= meanWidth || r2.Width() >= meanWidth) && *val > 0 {
		if 4*r1.Height() <= 5*meanHeight && 4*r2.Height() <= 5*meanHeight {
			if 9*r1.Height() <= 10*meanHeight && 9*r2.Height() <= 10*meanHeight &&
				10*absInt(r1.Bottom()-r2.Bottom()) <= meanHeight {
				*val = 0
				if r1.Height() <= r2.Height() {
					return 0
				}
				return 1
			}
			if *val > 1 && 10*absInt(r1.Vcenter()-r2.Vcenter()) <= meanHeight {
				*val = 1
				if r1.Bottom() <= r2.Bottom() {
					return 0
				}
				return 1
			}
		}
		if *val > 2 && 10*absInt(r1.Vcenter()-r2.Vcenter()) <= meanHeight {
			*val = 2
			if r1.Bottom() <= r2.Bottom() {
				return 0
			}
			return 1
		}
	}
	return -1
}

func setL(rv []rect.Rectangle, meanHeight, meanWidth int) int {
	n := len(rv)
	imax := n / 4
	ibest, val := -1, 3
	for i1 := 0; i1 < imax && val > 0; i1++ {
		for i2 := i1 + 1; i2 <= imax && i2 <= i1+2 && i2 < n; i2++ {
			i := goodReference(rv[i1], rv[i2], &val, meanHeight, meanWidth)
			if i >= 0 {
				if i == 0 {
					ibest = i1
				} else {
					ibest = i2
				}
				if val == 0 {
					break
				}
			}
		}
	}
	return ibest
}

func setR(rv []rect.Rectangle, meanHeight, meanWidth int) int {
	n := len(rv)
	imin := n - 1 - (n / 4)
	ibest, val := -1, 3
	for i1 := n - 1; i1 > imin && val > 0; i1-- {
		for i2 := i1 - 1; i2 >= imin && i2 >= i1-2 && i2 >= 0; i2-- {
			i := goodReference(rv[i1], rv[i2], &val, meanHeight, meanWidth)
			if i >= 0 {
				if i == 0 {
					ibest = i1
				} else {
					ibest = i2
				}
				if val == 0 {
					break
				}
			}
		}
	}
	return ibest
}

func setPartialTrack(rv []rect.Rectangle) Vrhomboid {
	n := len(rv)
	meanVcenter, meanHeight, meanWidth := 0, 0, 0
	for _, r := range rv {
		meanVcenter += r.Vcenter()
		meanHeight += r.Height()
		meanWidth += r.Width()
	}
	if n > 0 {
		meanVcenter /= n
		meanHeight /= n
		meanWidth /= n
	}

	if n < 8 {
		return NewVrhomboid(rv[0].Left(), meanVcenter, rv[n-1].Right(), meanVcenter, meanHeight)
	}

	l := setL(rv, meanHeight, meanWidth)
	r := setR(rv, meanHeight, meanWidth)

	var lcol, lvc, rcol, rvc int
	if l >= 0 {
		lcol = rv[l].Hcenter()
		lvc = rv[l].Bottom() - meanHeight/2
	} else {
		lcol = rv[0].Hcenter()
		lvc = meanVcenter
	}
	if r >= 0 {
		rcol = rv[r].Hcenter()
		rvc = rv[r].Bottom() - meanHeight/2
	} else {
		rcol = rv[n-1].Hcenter()
		rvc = meanVcenter
	}
	tmp := NewVrhomboid(lcol, lvc, rcol, rvc, meanHeight)
	tmp.ExtendLeft(rv[0].Left())
	tmp.ExtendRight(rv[n-1].Right())
	return tmp
}

// SetTrack (re)builds the track from the rectangles taken in order of
// increasing Hcenter; input not already in that order is sorted on a copy,
// leaving the caller's slice unchanged.
func (t *Track) SetTrack(rectangleVector []rect.Rectangle) {
	t.data = nil
	if len(rectangleVector) == 0 {
		return
	}
	rv := rectangleVector
	if !sort.SliceIsSorted(rv, func(i, j int) bool { return rv[i].Hcenter() < rv[j].Hcenter() }) {
		rv = append([]rect.Rectangle(nil), rv...)
		sort.Slice(rv, func(i, j int) bool { return rv[i].Hcenter() < rv[j].Hcenter() })
	}

	s1, s2 := rv[0].Width(), 0
	for i := 1; i < len(rv); i++ {
		s1 += rv[i].Width()
		s2 += rv[i].Left() - rv[i-1].Right()
	}
	maxGap := (5 * maxInt(s1, s2)) / len(rv)

	var tmp []rect.Rectangle
	for i := 0; i < len(rv); i++ {
		r1 := rv[i]
		tmp = append(tmp, r1)
		last := i+1 >= len(rv)
		if !last {
			r2 := rv[i+1]
			if r2.Left()-r1.Right() >= maxGap {
				last = true
			}
		}
		if last {
			t.data = append(t.data, setPartialTrack(tmp))
			tmp = nil
		}
	}

	for i := 0; i+1 < len(t.data); i++ {
		v1, v2 := t.data[i], t.data[i+1]
		if v1.Right()+1 < v2.Left() {
			bridge := NewVrhomboid(v1.Right()+1, v1.Rvcenter(), v2.Left()-1, v2.Lvcenter(), (v1.Height()+v2.Height())/2)
			t.data = append(t.data, Vrhomboid{})
			copy(t.data[i+2:], t.data[i+1:])
			t.data[i+1] = bridge
			i++
		}
	}
}

func (t *Track) Segments() int { return len(t.data) }

func (t *Track) Height() int {
	if len(t.data) == 0 {
		return 0
	}
	return t.data[0].Height()
}

func (t *Track) Left() int {
	if len(t.data) == 0 {
		return 0
	}
	return t.data[0].Left()
}

func (t *Track) Right() int {
	if len(t.data) == 0 {
		return 0
	}
	return t.data[len(t.data)-1].Right()
}

func (t *Track) segmentFor(col int) (Vrhomboid, bool) {
	for i, vr := range t.data {
		if col <= vr.Right() || i >= len(t.data)-1 {
			return vr, true
		}
	}
	return Vrhomboid{}, false
}

func (t *Track) Bottom(col int) int {
	if vr, ok := t.segmentFor(col); ok {
		return vr.Bottom(col)
	}
	return 0
}

func (t *Track) Top(col int) int {
	if vr, ok := t.segmentFor(col); ok {
		return vr.Top(col)
	}
	return 0
}

func (t *Track) Vcenter(col int) int {
	if vr, ok := t.segmentFor(col); ok {
		return vr.Vcenter(col)
	}
	return 0
}

func (t *Track) Includes(r rect.Rectangle) bool {
	for _, vr := range t.data {
		if vr.Includes(r) {
			return true
		}
	}
	if len(t.data) == 0 {
		return false
	}
	if r.Right() > t.data[len(t.data)-1].Right() {
		tmp := t.data[len(t.data)-1]
		tmp.ExtendRight(r.Right())
		return tmp.Includes(r)
	}
	if r.Left() < t.data[0].Left() {
		tmp := t.data[0]
		tmp.ExtendLeft(r.Left())
		return tmp.Includes(r)
	}
	return false
}

func (t *Track) IncludesPoint(row, col int) bool {
	for _, vr := range t.data {
		if vr.IncludesPoint(row, col) {
			return true
		}
	}
	if len(t.data) == 0 {
		return false
	}
	if col > t.data[len(t.data)-1].Right() {
		tmp := t.data[len(t.data)-1]
		tmp.ExtendRight(col)
		return tmp.IncludesPoint(row, col)
	}
	if col < t.data[0].Left() {
		tmp := t.data[0]
		tmp.ExtendLeft(col)
		return tmp.IncludesPoint(row, col)
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
