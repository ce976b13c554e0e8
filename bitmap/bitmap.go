// Package bitmap implements the dense per-pixel connectivity layer a Blob is
// scanned out of: a Rectangle plus a boolean grid, with the seek/escape/
// follow probes the segmentation pass uses to test whether two strokes
// touch, whether a gap can be crossed, and whether a stroke curls into a
// hook shape.
package bitmap

import (
	"github.com/wudi/ocrkit/rect"
)

// Bitmap composes a Rectangle (rather than inheriting from one) and owns a
// dense boolean grid addressed in absolute row/col coordinates.
type Bitmap struct {
	rect.Rectangle
	data [][]bool
}

// New creates a blank Bitmap spanning [l,r]x[t,b].
func New(l, t, r, b int) *Bitmap {
	bm := &Bitmap{Rectangle: rect.New(l, t, r, b)}
	bm.data = make([][]bool, bm.Height())
	for i := range bm.data {
		bm.data[i] = make([]bool, bm.Width())
	}
	return bm
}

// FromPart creates a Bitmap from the part of source covered by re; re must
// be wholly included in source.
func FromPart(source *Bitmap, re rect.Rectangle) *Bitmap {
	if !source.Includes(re) {
		panic("bad parameter building a Bitmap from part of another one")
	}
	bm := &Bitmap{Rectangle: re}
	ldiff := bm.Left() - source.Left()
	tdiff := bm.Top() - source.Top()
	bm.data = make([][]bool, bm.Height())
	for row := 0; row < bm.Height(); row++ {
		bm.data[row] = make([]bool, bm.Width())
		src := source.data[row+tdiff]
		copy(bm.data[row], src[ldiff:ldiff+bm.Width()])
	}
	return bm
}

func (bm *Bitmap) GetBit(row, col int) bool { return bm.data[row-bm.Top()][col-bm.Left()] }
func (bm *Bitmap) SetBit(row, col int, bit bool) {
	bm.data[row-bm.Top()][col-bm.Left()] = bit
}

func (bm *Bitmap) SetLeft(l int) {
	if l == bm.Left() {
		return
	}
	if l < bm.Left() {
		pad := bm.Left() - l
		for row := range bm.data {
			bm.data[row] = append(make([]bool, pad), bm.data[row]...)
		}
	} else {
		d := l - bm.Left()
		for row := range bm.data {
			bm.data[row] = bm.data[row][d:]
		}
	}
	bm.Rectangle.SetLeft(l)
}

func (bm *Bitmap) SetTop(t int) {
	if t == bm.Top() {
		return
	}
	if t < bm.Top() {
		pad := make([][]bool, bm.Top()-t)
		for i := range pad {
			pad[i] = make([]bool, bm.Width())
		}
		bm.data = append(pad, bm.data...)
	} else {
		bm.data = bm.data[t-bm.Top():]
	}
	bm.Rectangle.SetTop(t)
}

func (bm *Bitmap) SetRight(r int) {
	if r == bm.Right() {
		return
	}
	bm.Rectangle.SetRight(r)
	for row := range bm.data {
		if len(bm.data[row]) < bm.Width() {
			bm.data[row] = append(bm.data[row], make([]bool, bm.Width()-len(bm.data[row]))...)
		} else {
			bm.data[row] = bm.data[row][:bm.Width()]
		}
	}
}

func (bm *Bitmap) SetBottom(b int) {
	if b == bm.Bottom() {
		return
	}
	oldHeight := bm.Height()
	bm.Rectangle.SetBottom(b)
	if bm.Height() < len(bm.data) {
		bm.data = bm.data[:bm.Height()]
		return
	}
	for row := oldHeight; row < bm.Height(); row++ {
		bm.data = append(bm.data, make([]bool, bm.Width()))
	}
}

func (bm *Bitmap) SetHeight(h int) { bm.SetBottom(bm.Top() + h - 1) }
func (bm *Bitmap) SetWidth(w int)  { bm.SetRight(bm.Left() + w - 1) }

func (bm *Bitmap) AddBitmap(o *Bitmap) {
	bm.AddRectangle(o.Rectangle)
	for row := o.Top(); row <= o.Bottom(); row++ {
		for col := o.Left(); col <= o.Right(); col++ {
			if o.GetBit(row, col) {
				bm.SetBit(row, col, true)
			}
		}
	}
}

func (bm *Bitmap) AddPoint(row, col int) {
	if col > bm.Right() {
		bm.SetRight(col)
	} else if col < bm.Left() {
		bm.SetLeft(col)
	}
	if row > bm.Bottom() {
		bm.SetBottom(row)
	} else if row < bm.Top() {
		bm.SetTop(row)
	}
	bm.SetBit(row, col, true)
}

func (bm *Bitmap) AddRectangle(re rect.Rectangle) {
	if re.Left() < bm.Left() {
		bm.SetLeft(re.Left())
	}
	if re.Top() < bm.Top() {
		bm.SetTop(re.Top())
	}
	if re.Right() > bm.Right() {
		bm.SetRight(re.Right())
	}
	if re.Bottom() > bm.Bottom() {
		bm.SetBottom(re.Bottom())
	}
}

// AdjustHeight shrinks top/bottom to the first/last row with any black
// pixel; reports false if the bitmap is entirely blank.
func (bm *Bitmap) AdjustHeight() bool {
	row1 := bm.Bottom() + 1
outer1:
	for r := bm.Top(); r <= bm.Bottom(); r++ {
		for col := bm.Left(); col <= bm.Right(); col++ {
			if bm.GetBit(r, col) {
				row1 = r
				break outer1
			}
		}
	}
	if row1 > bm.Bottom() {
		return false
	}
	row2 := row1
outer2:
	for r := bm.Bottom(); r >= row1; r-- {
		for col := bm.Left(); col <= bm.Right(); col++ {
			if bm.GetBit(r, col) {
				row2 = r
				break outer2
			}
		}
	}
	if row1 > row2 {
		return false
	}
	if row1 > bm.Top() {
		bm.SetTop(row1)
	}
	if row2 < bm.Bottom() {
		bm.SetBottom(row2)
	}
	return true
}

// AdjustWidth shrinks left/right to the first/last column with any black
// pixel; reports false if the bitmap is entirely blank.
func (bm *Bitmap) AdjustWidth() bool {
	col1 := bm.Right() + 1
outer1:
	for c := bm.Left(); c <= bm.Right(); c++ {
		for row := bm.Top(); row <= bm.Bottom(); row++ {
			if bm.GetBit(row, c) {
				col1 = c
				break outer1
			}
		}
	}
	if col1 > bm.Right() {
		return false
	}
	col2 := col1
outer2:
	for c := bm.Right(); c >= col1; c-- {
		for row := bm.Top(); row <= bm.Bottom(); row++ {
			if bm.GetBit(row, c) {
				col2 = c
				break outer2
			}
		}
	}
	if col1 > col2 {
		return false
	}
	if col1 > bm.Left() {
		bm.SetLeft(col1)
	}
	if col2 < bm.Right() {
		bm.SetRight(col2)
	}
	return true
}

// Area is the total filled pixel count.
func (bm *Bitmap) Area() int {
	a := 0
	for row := bm.Top(); row <= bm.Bottom(); row++ {
		for col := bm.Left(); col <= bm.Right(); col++ {
			if bm.GetBit(row, col) {
				a++
			}
		}
	}
	return a
}

func bevelOf(bm *Bitmap) int {
	h, w := bm.Height(), bm.Width()
	m := h
	if w < m {
		m = w
	}
	return (29 * m) / 100
}

// AreaOctagon is the filled area inside the central octagon obtained by
// bevelling the four corners of the bounding box by 29% of min(height,width).
func (bm *Bitmap) AreaOctagon() int {
	a := 0
	bevel := bevelOf(bm)
	l := bm.Left() + bevel
	r := bm.Right() - bevel

	for i := 0; i < bevel; i++ {
		row := bm.Top() + i
		for col := l - i; col <= r+i; col++ {
			if bm.GetBit(row, col) {
				a++
			}
		}
	}
	for row := bm.Top() + bevel; row <= bm.Bottom()-bevel; row++ {
		for col := bm.Left(); col <= bm.Right(); col++ {
			if bm.GetBit(row, col) {
				a++
			}
		}
	}
	for i := bevel - 1; i >= 0; i-- {
		row := bm.Bottom() - i
		for col := l - i; col <= r+i; col++ {
			if bm.GetBit(row, col) {
				a++
			}
		}
	}
	return a
}

// SizeOctagon is the geometric size of that same central octagon.
func (bm *Bitmap) SizeOctagon() int {
	bevel := bevelOf(bm)
	return bm.Size() - 2*bevel*(bevel+1)
}

func (bm *Bitmap) SeekLeft(row, col int, black bool) int {
	c := col
	for c > bm.Left() && bm.GetBit(row, c-1) != black {
		c--
	}
	return c
}

func (bm *Bitmap) SeekTop(row, col int, black bool) int {
	r := row
	for r > bm.Top() && bm.GetBit(r-1, col) != black {
		r--
	}
	return r
}

func (bm *Bitmap) SeekRight(row, col int, black bool) int {
	c := col
	for c < bm.Right() && bm.GetBit(row, c+1) != black {
		c++
	}
	return c
}

func (bm *Bitmap) SeekBottom(row, col int, black bool) int {
	r := row
	for r < bm.Bottom() && bm.GetBit(r+1, col) != black {
		r++
	}
	return r
}

// EscapeLeft reports whether a blank pixel at (row,col) can "escape" off the
// left edge of the bitmap by sliding a vertical window of free rows leftward,
// the gap-crossing test used to decide whether a stroke continues past a
// near touch.
func (bm *Bitmap) EscapeLeft(row, col int) bool {
	if bm.GetBit(row, col) {
		return false
	}
	u, d := row, row
	for u = row; u > bm.Top()+1; u-- {
		if bm.GetBit(u-1, col) {
			break
		}
	}
	for d = row; d < bm.Bottom()-1; d++ {
		if bm.GetBit(d+1, col) {
			break
		}
	}
	for u <= d {
		col--
		if col < bm.Left() {
			break
		}
		if u > bm.Top()+1 && !bm.GetBit(u, col) {
			u--
		}
		if d < bm.Bottom()-1 && !bm.GetBit(d, col) {
			d++
		}
		for u <= d && bm.GetBit(u, col) {
			u++
		}
		for u <= d && bm.GetBit(d, col) {
			d--
		}
	}
	return col < bm.Left()
}

func (bm *Bitmap) EscapeTop(row, col int) bool {
	if bm.GetBit(row, col) {
		return false
	}
	l, r := col, col
	for l = col; l > bm.Left()+1; l-- {
		if bm.GetBit(row, l-1) {
			break
		}
	}
	for r = col; r < bm.Right()-1; r++ {
		if bm.GetBit(row, r+1) {
			break
		}
	}
	for l <= r {
		row--
		if row < bm.Top() {
			break
		}
		if l > bm.Left()+1 && !bm.GetBit(row, l) {
			l--
		}
		if r < bm.Right()-1 && !bm.GetBit(row, r) {
			r++
		}
		for l <= r && bm.GetBit(row, l) {
			l++
		}
		for l <= r && bm.GetBit(row, r) {
			r--
		}
	}
	return row < bm.Top()
}

func (bm *Bitmap) EscapeRight(row, col int) bool {
	if bm.GetBit(row, col) {
		return false
	}
	u, d := row, row
	for u = row; u > bm.Top()+1; u-- {
		if bm.GetBit(u-1, col) {
			break
		}
	}
	for d = row; d < bm.Bottom()-1; d++ {
		if bm.GetBit(d+1, col) {
			break
		}
	}
	for u <= d {
		col++
		if col > bm.Right() {
			break
		}
		if u > bm.Top()+1 && !bm.GetBit(u, col) {
			u--
		}
		if d < bm.Bottom()-1 && !bm.GetBit(d, col) {
			d++
		}
		for u <= d && bm.GetBit(u, col) {
			u++
		}
		for u <= d && bm.GetBit(d, col) {
			d--
		}
	}
	return col > bm.Right()
}

func (bm *Bitmap) EscapeBottom(row, col int) bool {
	if bm.GetBit(row, col) {
		return false
	}
	l, r := col, col
	for l = col; l > bm.Left()+1; l-- {
		if bm.GetBit(row, l-1) {
			break
		}
	}
	for r = col; r < bm.Right()-1; r++ {
		if bm.GetBit(row, r+1) {
			break
		}
	}
	for l <= r {
		row++
		if row > bm.Bottom() {
			break
		}
		if l > bm.Left()+1 && !bm.GetBit(row, l) {
			l--
		}
		if r < bm.Right()-1 && !bm.GetBit(row, r) {
			r++
		}
		for l <= r && bm.GetBit(row, l) {
			l++
		}
		for l <= r && bm.GetBit(row, r) {
			r--
		}
	}
	return row > bm.Bottom()
}

// FollowTop walks the black blob containing (row,col) upward, widening the
// tracked column span at each row exactly as far as touching black pixels
// extend it, and returns the topmost row that is still part of the blob.
func (bm *Bitmap) FollowTop(row, col int) int {
	if !bm.GetBit(row, col) {
		return row
	}
	width := bm.Width()
	array := make([]bool, width)
	c := col
	for c > bm.Left() && bm.GetBit(row, c-1) {
		c--
	}
	lo := c - bm.Left()
	c = col
	for c < bm.Right() && bm.GetBit(row, c+1) {
		c++
	}
	hi := c - bm.Left()
	for i := lo; i <= hi; i++ {
		array[i] = true
	}

	for {
		row--
		if row < bm.Top() {
			break
		}
		alive := false
		for i := 0; i < width; i++ {
			if array[i] {
				if !bm.GetBit(row, bm.Left()+i) {
					array[i] = false
				} else {
					alive = true
				}
			}
		}
		if !alive {
			break
		}
		for i := 1; i < width; i++ {
			if array[i-1] && !array[i] && bm.GetBit(row, bm.Left()+i) {
				array[i] = true
			}
		}
		for i := width - 2; i >= 0; i-- {
			if array[i+1] && !array[i] && bm.GetBit(row, bm.Left()+i) {
				array[i] = true
			}
		}
	}
	return row + 1
}

// FollowBottom is FollowTop's mirror image, walking downward.
func (bm *Bitmap) FollowBottom(row, col int) int {
	if !bm.GetBit(row, col) {
		return row
	}
	width := bm.Width()
	array := make([]bool, width)
	c := col
	for c > bm.Left() && bm.GetBit(row, c-1) {
		c--
	}
	lo := c - bm.Left()
	c = col
	for c < bm.Right() && bm.GetBit(row, c+1) {
		c++
	}
	hi := c - bm.Left()
	for i := lo; i <= hi; i++ {
		array[i] = true
	}

	for {
		row++
		if row > bm.Bottom() {
			break
		}
		alive := false
		for i := 0; i < width; i++ {
			if array[i] {
				if !bm.GetBit(row, bm.Left()+i) {
					array[i] = false
				} else {
					alive = true
				}
			}
		}
		if !alive {
			break
		}
		for i := 1; i < width; i++ {
			if array[i-1] && !array[i] && bm.GetBit(row, bm.Left()+i) {
				array[i] = true
			}
		}
		for i := width - 2; i >= 0; i-- {
			if array[i+1] && !array[i] && bm.GetBit(row, bm.Left()+i) {
				array[i] = true
			}
		}
	}
	return row - 1
}

// TopHook looks for an inverted-U-shaped curve near the top of the bitmap
// (as in an 'n' sitting above an 'm') and, if found, reports via hdiff which
// vertical bar goes deeper.
func (bm *Bitmap) TopHook() (hdiff int, ok bool) {
	lcol, rcol, blackSection, wmax := 0, 0, 0, 0
	row := bm.Top() + 1
	for ; row < bm.Vcenter(); row++ {
		l, r := -1, -2
		prevBlack := false
		blackSection = 0
		for col := bm.Left(); col <= bm.Right(); col++ {
			black := bm.GetBit(row, col)
			if black {
				if !prevBlack {
					blackSection++
					if blackSection == 2 {
						rcol = col
					}
				}
				r = col
				if l < 0 {
					l = col
				}
			} else if prevBlack && blackSection == 1 {
				lcol = col - 1
			}
			prevBlack = black
		}
		width := r - l + 1
		if 10*width <= 9*wmax {
			return 0, false
		}
		if width > wmax {
			wmax = width
		}
		if blackSection >= 2 {
			break
		}
	}
	if blackSection != 2 {
		return 0, false
	}
	if bm.EscapeTop(row, lcol+1) {
		return 0, false
	}
	lrow := bm.FollowBottom(row, lcol)
	rrow := bm.FollowBottom(row, rcol)
	if lrow <= row || rrow <= row {
		return 0, false
	}
	return lrow - rrow, true
}

// BottomHook looks for a U-shaped curve near the bottom of the bitmap and
// reports via hdiff which vertical bar is taller.
func (bm *Bitmap) BottomHook() (hdiff int, ok bool) {
	lcol, rcol, blackSection, wmax := 0, 0, 0, 0
	row := bm.Bottom()
	for ; row > bm.Vpos(80); row-- {
		var l, r int
		for l = bm.Left(); l <= bm.Right(); l++ {
			if bm.GetBit(row, l) {
				break
			}
		}
		for r = bm.Right(); r > l; r-- {
			if bm.GetBit(row, r) {
				break
			}
		}
		w := r - l + 1
		if w > wmax {
			wmax = w
		}
		if 4*w >= bm.Width() {
			i := l + 1
			for ; i < r; i++ {
				if !bm.GetBit(row, i) {
					break
				}
			}
			if i >= r {
				break
			}
		}
	}

	if row > bm.Vpos(80) {
		for {
			row--
			if row <= bm.Vcenter() {
				break
			}
			l, r := -1, -2
			prevBlack := false
			blackSection = 0
			for col := bm.Left(); col <= bm.Right(); col++ {
				black := bm.GetBit(row, col)
				if black {
					if !prevBlack {
						blackSection++
						if blackSection == 2 {
							rcol = col
						}
					}
					r = col
					if l < 0 {
						l = col
					}
				} else if prevBlack && blackSection == 1 {
					lcol = col - 1
				}
				prevBlack = black
			}
			w := r - l + 1
			if blackSection > 2 || 10*w <= 8*wmax {
				break
			}
			if w > wmax {
				wmax = w
			}
			if blackSection == 2 && rcol-lcol >= 2 {
				if bm.EscapeBottom(row, lcol+1) {
					break
				}
				return bm.FollowTop(row, lcol) - bm.FollowTop(row, rcol), true
			}
		}
	}
	return 0, false
}
