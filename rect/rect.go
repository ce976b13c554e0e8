// Package rect implements the geometry primitives the rest of the OCR
// pipeline is built on: an inclusive-bounds Rectangle and a one-dimensional
// Csegment. Every later stage (Bitmap, Blob, Character, Track, Textline,
// ...) composes a Rectangle rather than inheriting from one.
package rect

import "fmt"

// Rectangle holds inclusive integer bounds. The invariant left<=right,
// top<=bottom is enforced by every mutator; callers that would violate it
// get a panic carrying enough context to find the call site, matching the
// "internal_error" abort-equivalent the rest of the pipeline uses for
// invariant violations.
type Rectangle struct {
	left, top, right, bottom int
}

// New builds a Rectangle, panicking if l>r or t>b.
func New(l, t, r, b int) Rectangle {
	if r < l || b < t {
		panic(fmt.Sprintf("bad parameter building a Rectangle: l=%d t=%d r=%d b=%d", l, t, r, b))
	}
	return Rectangle{l, t, r, b}
}

func (re Rectangle) Left() int   { return re.left }
func (re Rectangle) Top() int    { return re.top }
func (re Rectangle) Right() int  { return re.right }
func (re Rectangle) Bottom() int { return re.bottom }
func (re Rectangle) Height() int { return re.bottom - re.top + 1 }
func (re Rectangle) Width() int  { return re.right - re.left + 1 }
func (re Rectangle) Size() int   { return re.Height() * re.Width() }

func (re Rectangle) Hcenter() int { return (re.left + re.right) / 2 }
func (re Rectangle) Vcenter() int { return (re.top + re.bottom) / 2 }

func (re Rectangle) Hpos(p int) int { return re.left + ((re.right-re.left)*p)/100 }
func (re Rectangle) Vpos(p int) int { return re.top + ((re.bottom-re.top)*p)/100 }

// SetLeft etc. are the resize mutators; each panics rather than silently
// producing an inverted rectangle.
func (re *Rectangle) SetLeft(l int) {
	if l > re.right {
		panic("left, bad parameter resizing a Rectangle")
	}
	re.left = l
}

func (re *Rectangle) SetTop(t int) {
	if t > re.bottom {
		panic("top, bad parameter resizing a Rectangle")
	}
	re.top = t
}

func (re *Rectangle) SetRight(r int) {
	if r < re.left {
		panic("right, bad parameter resizing a Rectangle")
	}
	re.right = r
}

func (re *Rectangle) SetBottom(b int) {
	if b < re.top {
		panic("bottom, bad parameter resizing a Rectangle")
	}
	re.bottom = b
}

func (re *Rectangle) SetHeight(h int) {
	if h <= 0 {
		panic("height, bad parameter resizing a Rectangle")
	}
	re.bottom = re.top + h - 1
}

func (re *Rectangle) SetWidth(w int) {
	if w <= 0 {
		panic("width, bad parameter resizing a Rectangle")
	}
	re.right = re.left + w - 1
}

func (re *Rectangle) AddPoint(row, col int) {
	if row > re.bottom {
		re.bottom = row
	} else if row < re.top {
		re.top = row
	}
	if col > re.right {
		re.right = col
	} else if col < re.left {
		re.left = col
	}
}

func (re *Rectangle) AddRectangle(o Rectangle) {
	if o.left < re.left {
		re.left = o.left
	}
	if o.top < re.top {
		re.top = o.top
	}
	if o.right > re.right {
		re.right = o.right
	}
	if o.bottom > re.bottom {
		re.bottom = o.bottom
	}
}

func (re *Rectangle) Enlarge(scale int) {
	if scale > 1 {
		re.left *= scale
		re.top *= scale
		re.right *= scale
		re.bottom *= scale
	}
}

func (re *Rectangle) Move(row, col int) {
	if d := row - re.top; d != 0 {
		re.top += d
		re.bottom += d
	}
	if d := col - re.left; d != 0 {
		re.left += d
		re.right += d
	}
}

func (re Rectangle) Equal(o Rectangle) bool {
	return re.left == o.left && re.top == o.top && re.right == o.right && re.bottom == o.bottom
}

func (re Rectangle) Includes(o Rectangle) bool {
	return re.left <= o.left && re.top <= o.top && re.right >= o.right && re.bottom >= o.bottom
}

func (re Rectangle) IncludesPoint(row, col int) bool {
	return re.left <= col && re.right >= col && re.top <= row && re.bottom >= row
}

func (re Rectangle) StrictlyIncludes(o Rectangle) bool {
	return re.left < o.left && re.top < o.top && re.right > o.right && re.bottom > o.bottom
}

func (re Rectangle) StrictlyIncludesPoint(row, col int) bool {
	return re.left < col && re.right > col && re.top < row && re.bottom > row
}

func (re Rectangle) IncludesHcenter(o Rectangle) bool {
	return re.left <= o.Hcenter() && re.right >= o.Hcenter()
}

func (re Rectangle) IncludesVcenter(o Rectangle) bool {
	return re.top <= o.Vcenter() && re.bottom >= o.Vcenter()
}

func (re Rectangle) HIncludes(o Rectangle) bool { return re.left <= o.left && re.right >= o.right }
func (re Rectangle) HIncludesCol(col int) bool  { return re.left <= col && re.right >= col }
func (re Rectangle) VIncludes(o Rectangle) bool { return re.top <= o.top && re.bottom >= o.bottom }
func (re Rectangle) VIncludesRow(row int) bool  { return re.top <= row && re.bottom >= row }

func (re Rectangle) HOverlaps(o Rectangle) bool { return re.left <= o.right && re.right >= o.left }
func (re Rectangle) VOverlaps(o Rectangle) bool { return re.top <= o.bottom && re.bottom >= o.top }

func (re Rectangle) VOverlapPercent(o Rectangle) int {
	ov := minInt(re.bottom, o.bottom) - maxInt(re.top, o.top) + 1
	if ov <= 0 {
		return 0
	}
	return maxInt(1, (ov*100)/minInt(re.Height(), o.Height()))
}

func (re Rectangle) IsHcentredIn(o Rectangle) bool {
	if re.HIncludesCol(o.Hcenter()) {
		return true
	}
	w := minInt(o.Height(), o.Width()) / 2
	if re.Width() < w {
		d := (w + 1) / 2
		if re.Hcenter()-d <= o.Hcenter() && re.Hcenter()+d >= o.Hcenter() {
			return true
		}
	}
	return false
}

func (re Rectangle) IsVcentredIn(o Rectangle) bool {
	if re.VIncludesRow(o.Vcenter()) {
		return true
	}
	h := minInt(o.Height(), o.Width()) / 2
	if re.Height() < h {
		d := (h + 1) / 2
		if re.Vcenter()-d <= o.Vcenter() && re.Vcenter()+d >= o.Vcenter() {
			return true
		}
	}
	return false
}

func (re Rectangle) Precedes(o Rectangle) bool {
	if re.right < o.left {
		return true
	}
	if re.HOverlaps(o) && (re.top < o.top || (re.top == o.top && re.left < o.left)) {
		return true
	}
	return false
}

func (re Rectangle) HPrecedes(o Rectangle) bool { return re.Hcenter() < o.Hcenter() }

func (re Rectangle) VPrecedes(o Rectangle) bool {
	if re.bottom < o.Vcenter() || re.Vcenter() < o.top {
		return true
	}
	if re.IncludesVcenter(o) && o.IncludesVcenter(re) {
		return re.HPrecedes(o)
	}
	return false
}

func (re Rectangle) Distance(o Rectangle) int {
	return Hypoti(re.HDistance(o), re.VDistance(o))
}

func (re Rectangle) DistancePoint(row, col int) int {
	return Hypoti(re.HDistanceCol(col), re.VDistanceRow(row))
}

func (re Rectangle) HDistance(o Rectangle) int {
	if o.right <= re.left {
		return re.left - o.right
	}
	if o.left >= re.right {
		return o.left - re.right
	}
	return 0
}

func (re Rectangle) HDistanceCol(col int) int {
	if col <= re.left {
		return re.left - col
	}
	if col >= re.right {
		return col - re.right
	}
	return 0
}

func (re Rectangle) VDistance(o Rectangle) int {
	if o.bottom <= re.top {
		return re.top - o.bottom
	}
	if o.top >= re.bottom {
		return o.top - re.bottom
	}
	return 0
}

func (re Rectangle) VDistanceRow(row int) int {
	if row <= re.top {
		return re.top - row
	}
	if row >= re.bottom {
		return row - re.bottom
	}
	return 0
}

// Hypoti computes the nearest integer to hypot(c1,c2) via binary search on
// the squared distance, avoiding floating-point rounding at the boundary
// calibration points the classifier thresholds rely on.
func Hypoti(c1, c2 int) int {
	temp := int64(c1) * int64(c1)
	target := int64(c2)*int64(c2) + temp
	lower := maxInt(absInt(c1), absInt(c2))
	upper := absInt(c1) + absInt(c2)
	for upper-lower > 1 {
		m := (lower + upper) / 2
		temp = int64(m) * int64(m)
		if temp < target {
			lower = m
		} else {
			upper = m
		}
	}
	lt := int64(lower) * int64(lower)
	target *= 2
	target -= lt
	ut := int64(upper) * int64(upper)
	if target < ut {
		return lower
	}
	return upper
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
