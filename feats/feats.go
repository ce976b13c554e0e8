// Package feats implements the shape-feature extractor the classifier
// consults alongside the raw profile predicates: bar detection (hbars/
// vbars), the segment-count scans used to tell how many strokes cross a
// given row or column, and a representative battery of the letter-shape
// tests GNU Ocrad runs before falling back to template matching.
package feats

import (
	"github.com/wudi/ocrkit/blob"
	"github.com/wudi/ocrkit/profile"
	"github.com/wudi/ocrkit/rect"
)

// Features is built once per classified Blob; every derived slice/profile
// is computed lazily and cached for the object's lifetime.
type Features struct {
	b *blob.Blob

	hbarsN, vbarsN int // -1 = not yet computed
	hbar, vbar     []rect.Rectangle

	rowScan [][]rect.Csegment
	colScan [][]rect.Csegment

	Lp, Tp, Rp, Bp, Hp, Wp *profile.Profile
}

// New builds a Features view over b.
func New(b *blob.Blob) *Features {
	return &Features{
		b: b, hbarsN: -1, vbarsN: -1,
		Lp: profile.New(&b.Bitmap, profile.Left),
		Tp: profile.New(&b.Bitmap, profile.Top),
		Rp: profile.New(&b.Bitmap, profile.Right),
		Bp: profile.New(&b.Bitmap, profile.Bottom),
		Hp: profile.New(&b.Bitmap, profile.Height),
		Wp: profile.New(&b.Bitmap, profile.Width),
	}
}

func (f *Features) Hbar(i int) rect.Rectangle { return f.hbar[i] }
func (f *Features) Vbar(i int) rect.Rectangle { return f.vbar[i] }

// Hbars counts horizontal bars: a run of rows whose column-span of black
// pixels spans most of the blob's width, wide enough to be a serif or a
// crossbar rather than noise.
func (f *Features) Hbars() int {
	if f.hbarsN >= 0 {
		return f.hbarsN
	}
	b := f.b
	limit := f.Wp.Max() / 2
	state, begin, l, r := 0, 0, 0, 0
	count := make([]int, b.Height())
	f.hbarsN = 0

	for row := b.Top(); row <= b.Bottom(); row++ {
		c, lt, rt, x := 0, 0, 0, 0
		maxcount := 0
		for col := b.Left(); col <= b.Right(); col++ {
			if b.GetBit(row, col) {
				c++
				x = col
				if col < b.Right() {
					continue
				}
			}
			if c > maxcount {
				maxcount = c
				rt = x
				lt = rt - c + 1
			}
			c = 0
		}
		count[row-b.Top()] = maxcount

		switch state {
		case 0:
			if maxcount > limit {
				state, begin, l, r = 1, row, lt, rt
			}
		case 1:
			if maxcount > limit {
				if lt < l {
					l = lt
				}
				if rt > r {
					r = rt
				}
				if row < b.Bottom() {
					break
				}
			}
			state = 0
			end := row
			if maxcount <= limit {
				end = row - 1
			}
			width := r - l + 1
			for begin <= end && 3*count[begin-b.Top()] < 2*width {
				begin++
			}
			for begin <= end && 3*count[end-b.Top()] < 2*width {
				end--
			}
			height := end - begin + 1
			if height < 1 || 2*height > 3*width {
				break
			}
			f.hbar = append(f.hbar, rect.New(l, begin, r, end))
			f.hbarsN++
		}
	}
	return f.hbarsN
}

// Vbars counts vertical bars the same way Hbars counts horizontal ones, by
// column instead of row, tracking a 4-state run-length machine.
func (f *Features) Vbars() int {
	if f.vbarsN >= 0 {
		return f.vbarsN
	}
	b := f.b
	state, begin := 0, 0
	limit := b.Height()
	if b.Height() < 40 {
		limit -= 3
	} else {
		limit -= b.Height() / 10
	}
	f.vbarsN = 0

	for col := b.Left(); col <= b.Right(); col++ {
		c, c2, count := 0, 0, 0
		for row := b.Top() + 1; row < b.Bottom(); row++ {
			black := b.GetBit(row, col)
			switch {
			case black:
				c++
				if row < b.Bottom()-1 {
					continue
				}
			case (col > b.Left() && b.GetBit(row, col-1)) || (col < b.Right() && b.GetBit(row, col+1)):
				c++
				c2++
				if row < b.Bottom()-1 {
					continue
				}
			}
			if c > count {
				count = c
			}
			c = 0
		}
		if (count-c2)*3 < limit*2 {
			count = 0
		}
		switch state {
		case 0:
			switch {
			case count >= limit:
				state, begin = 3, col
			case count*4 >= limit*3:
				state, begin = 2, col
			case count*3 >= limit*2:
				state, begin = 1, col
			}
		case 1:
			switch {
			case count >= limit:
				state = 3
			case count*4 >= limit*3:
				state = 2
			case count*3 < limit*2:
				state = 0
			default:
				begin = col
			}
		case 2:
			switch {
			case count >= limit:
				state = 3
			case count*3 < limit*2:
				state = 0
			case count*4 < limit*3:
				state = 1
			}
		case 3:
			if count*3 < limit*2 || col == b.Right() {
				end := col
				if count*3 < limit*2 {
					end = col - 1
				}
				f.vbar = append(f.vbar, rect.New(begin, b.Top(), end, b.Bottom()))
				f.vbarsN++
				state = 0
			}
		}
	}
	return f.vbarsN
}

func (f *Features) ensureRowScan() {
	if f.rowScan != nil {
		return
	}
	b := f.b
	f.rowScan = make([][]rect.Csegment, b.Height())
	l := -1
	for row := b.Top(); row <= b.Bottom(); row++ {
		l = -1
		for col := b.Left(); col <= b.Right(); col++ {
			black := b.GetBit(row, col)
			if l < 0 && black {
				l = col
			}
			if l >= 0 && (!black || col == b.Right()) {
				end := col
				if !black {
					end--
				}
				f.rowScan[row-b.Top()] = append(f.rowScan[row-b.Top()], rect.Csegment{Left: l, Right: end})
				l = -1
			}
		}
	}
}

func (f *Features) ensureColScan() {
	if f.colScan != nil {
		return
	}
	b := f.b
	f.colScan = make([][]rect.Csegment, b.Width())
	t := -1
	for col := b.Left(); col <= b.Right(); col++ {
		t = -1
		for row := b.Top(); row <= b.Bottom(); row++ {
			black := b.GetBit(row, col)
			if t < 0 && black {
				t = row
			}
			if t >= 0 && (!black || row == b.Bottom()) {
				end := row
				if !black {
					end--
				}
				f.colScan[col-b.Left()] = append(f.colScan[col-b.Left()], rect.Csegment{Left: t, Right: end})
				t = -1
			}
		}
	}
}

// SegmentsInRow is the number of vertical strokes crossing row.
func (f *Features) SegmentsInRow(row int) int {
	f.ensureRowScan()
	return len(f.rowScan[row-f.b.Top()])
}

// SegmentsInCol is the number of horizontal strokes crossing col.
func (f *Features) SegmentsInCol(col int) int {
	f.ensureColScan()
	return len(f.colScan[col-f.b.Left()])
}

// ColSegment returns the column segment containing (row,col), if any.
func (f *Features) ColSegment(row, col int) rect.Csegment {
	n := f.SegmentsInCol(col)
	for i := 0; i < n; i++ {
		seg := f.colScan[col-f.b.Left()][i]
		if seg.IncludesCol(row) {
			return seg
		}
	}
	return rect.EmptyCsegment()
}

// Similar reports whether a and b are close enough to be considered
// symmetric/matching within percentDif percent (or absDif absolute units).
func Similar(a, b, percentDif, absDif int) bool {
	diff := absInt(a - b)
	if percentDif > 0 && diff <= absDif {
		return true
	}
	maxAbs := maxInt(absInt(a), absInt(b))
	return diff*100 <= maxAbs*percentDif
}

// TestMisc runs a representative subset of the single-character shape
// tests GNU Ocrad falls back to once bar/pit/tip feature scoring narrows
// the candidates to a handful of unusual glyphs: '7', '1', 'T', 'l', 'I',
// 'F', bracket/paren pairs, and '|'.
func (f *Features) TestMisc(charbox rect.Rectangle) rune {
	b := f.b
	lp, tp, rp, bp, wp := f.Lp, f.Tp, f.Rp, f.Bp, f.Wp

	if bp.Minima(0) == 1 {
		if f.Hbars() == 1 &&
			f.hbar[0].Top() <= b.Top()+(b.Height()/10) &&
			4*f.hbar[0].Height() <= b.Height() &&
			5*f.hbar[0].Width() >= 4*b.Width() &&
			rp.At(f.hbar[0].Bottom()-b.Top()+2)-rp.At(f.hbar[0].Bottom()-b.Top()) < b.Width()/4 &&
			rp.Increasing(f.hbar[0].Vcenter()-b.Top()+1, 2) {
			return '7'
		}
		if b.Height() > b.Width() && rp.Increasing(1, 2) && !tp.Decreasing(1) &&
			b.SeekLeft(b.Vcenter(), b.Hcenter(), true) <= b.Left() {
			return '7'
		}
	}

	if tp.Minima(b.Height()/4) == 1 && bp.Minima(b.Height()/4) == 1 {
		if b.Height() > 2*b.Width() && rp.Increasing(1, 2) &&
			tp.Decreasing(1) && lp.IsCpit(25) {
			return '1'
		}

		if f.Hbars() == 1 ||
			(f.Hbars() == 2 && f.hbar[1].Bottom() >= b.Bottom()-1 &&
				3*f.hbar[0].Width() > 4*f.hbar[1].Width()) {
			if 3*f.hbar[0].Height() < b.Height() && f.hbar[0].Top() <= b.Top()+1 {
				i := lp.Pos(40)
				if 3*wp.At(i) < b.Width() && 5*lp.At(i) > b.Width() && 5*rp.At(i) > b.Width() {
					return 'T'
				}
			}
		}

		if 3*b.Height() > 4*b.Width() && f.Vbars() == 1 && f.vbar[0].Width() >= 2 {
			lg := f.vbar[0].Left() - b.Left()
			rg := b.Right() - f.vbar[0].Right()
			if 2*lg < b.Width() && 2*rg < b.Width() && Similar(lg, rg, 40, 0) &&
				4*bp.At(bp.Pos(25)) > 3*b.Height() && 4*tp.At(tp.Pos(75)) > 3*b.Height() {
				return 'l'
			}
		}

		if 5*b.Height() >= 4*charbox.Height() && b.Height() > wp.Max() &&
			3*wp.At(wp.Pos(50)) < b.Width() {
			if f.Hbars() == 1 && f.hbar[0].Bottom() >= b.Bottom()-1 &&
				f.hbar[0].Top() > b.Vpos(75) &&
				Similar(lp.At(lp.Pos(50)), rp.At(rp.Pos(50)), 20, 2) {
				return 'l'
			}
			if f.Hbars() == 2 && f.hbar[0].Bottom() < b.Vpos(25) &&
				f.hbar[1].Top() > b.Vpos(75) && f.hbar[1].Bottom() >= b.Bottom()-1 {
				if f.hbar[0].Right() <= f.hbar[1].Hcenter() {
					return 0
				}
				if 3*f.hbar[0].Width() <= 2*f.hbar[1].Width() || b.Height() >= 3*wp.Max() {
					return 'l'
				}
				return 'I'
			}
		}

		if (f.Hbars() == 2 || f.Hbars() == 3) && f.hbar[0].Top() <= b.Top()+1 &&
			f.hbar[1].IncludesVcenter(b.Rectangle) &&
			3*f.hbar[0].Width() > 4*f.hbar[1].Width() &&
			(f.Hbars() == 2 ||
				(f.hbar[2].Bottom() >= b.Bottom()-1 && 3*f.hbar[0].Width() > 4*f.hbar[2].Width())) {
			return 'F'
		}

		if b.Height() > 3*wp.Max() {
			if rp.IsTip() && lp.IsPit() {
				if lp.IsTpit() {
					return '{'
				}
				return '('
			}
			if lp.IsTip() && rp.IsPit() {
				if rp.IsTpit() {
					return '}'
				}
				return ')'
			}
			if b.Width() > 2*wp.Max() && rp.IsConvex() {
				return ')'
			}
		}

		if b.Height() > 2*b.Width() && 5*b.Height() >= 4*charbox.Height() &&
			lp.Max()+rp.Max() < b.Width() {
			return '|'
		}
	}

	return 0
}

// TestC distinguishes 'c', '(' and ')' by the openness of a single convex
// or pitted side profile and whether the opposite side stays open at the
// vertical center.
func (f *Features) TestC() rune {
	b := f.b
	lp, rp, tp, bp, wp := f.Lp, f.Rp, f.Tp, f.Bp, f.Wp

	if lp.IsConvex() || lp.IsPit() {
		urow := b.SeekTop(b.Vcenter(), b.Hcenter(), true)
		lrow := b.SeekBottom(b.Vcenter(), b.Hcenter(), true)

		if b.Height() > 2*b.Width() &&
			(3*wp.Max() <= 2*b.Width() ||
				(2*rp.At(urow-b.Top()) >= b.Width() && 2*rp.At(lrow-b.Top()) >= b.Width())) {
			if lp.IsConvex() {
				return '('
			}
			return 0
		}

		if urow > b.Top() && lrow < b.Bottom() && rp.IsCtip(50) &&
			(bp.IsPit() || tp.IsPit() || (bp.IsLpit() && tp.IsLpit())) &&
			b.EscapeRight(b.Vcenter(), b.Hcenter()) {
			return 'c'
		}
	}

	if b.Height() > 2*b.Width() && rp.IsConvex() {
		urow := b.SeekTop(b.Vcenter(), b.Hcenter(), true)
		lrow := b.SeekBottom(b.Vcenter(), b.Hcenter(), true)

		if 3*wp.Max() <= 2*b.Width() ||
			(2*lp.At(urow-b.Top()) >= b.Width() && 2*lp.At(lrow-b.Top()) >= b.Width()) {
			return ')'
		}
	}

	return 0
}

// TestG looks for the open throat and inner bar that distinguish 'G' from
// a plain 'C'/'c'-shaped blob.
func (f *Features) TestG() rune {
	b := f.b
	rp := f.Rp
	if !(f.Lp.IsConvex() || f.Lp.IsPit()) {
		return 0
	}

	col, row := 0, 0
	for i := rp.Pos(30); i <= rp.Pos(60); i++ {
		if rp.At(i) > col {
			col = rp.At(i)
			row = i
		}
	}
	if col == 0 {
		return 0
	}
	row += b.Top()
	col = b.Right() - col + 1
	if col <= b.Left() || col >= b.Hcenter() {
		return 0
	}

	col = (col + b.Hcenter()) / 2
	row = b.SeekBottom(row, col, true)
	if row >= b.Bottom() || !b.EscapeRight(row, col) || b.EscapeBottom(row, b.Hcenter()) {
		return 0
	}

	noise := maxInt(2, b.Height()/20)
	lrow := row - 1
	for ; lrow > b.Top(); lrow-- {
		if b.SeekRight(lrow, b.Hcenter(), true) >= b.Right() {
			break
		}
	}
	urow := lrow - 1
	for ; urow > b.Top(); urow-- {
		if b.SeekRight(urow, b.Hcenter(), true) < b.Right() {
			break
		}
	}
	lrow += noise
	urow -= noise
	if lrow < row && urow > b.Top() {
		uwidth := b.SeekLeft(urow, b.Right(), true) - b.SeekRight(urow, b.Hcenter(), true)
		lwidth := b.SeekLeft(lrow, b.Right(), true) - b.SeekRight(lrow, b.Hcenter(), true)
		if lrow-noise <= b.Vcenter() || lwidth > uwidth+noise {
			return 'G'
		}
	}
	return 0
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
