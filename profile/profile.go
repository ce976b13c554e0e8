// Package profile implements the six edge-distance projections a Blob (or
// one of its holes) is reduced to before classification, plus the shape
// predicates (pits, tips, concave/convex runs, flats) the feature extractor
// and the classifier build on. Every derived value is computed lazily on
// first use and then cached, mirroring the source Bitmap's read-only
// lifetime during recognition.
package profile

import "github.com/wudi/ocrkit/bitmap"

// Type selects which of the four directional profiles, or the merged
// height/width profile, to project.
type Type int

const (
	Left Type = iota
	Top
	Right
	Bottom
	Height
	Width
)

// Profile is a lazily-built projection over a Bitmap; every accessor
// initializes the backing data slice on first call.
type Profile struct {
	bm   *bitmap.Bitmap
	typ  Type
	data []int
	limit,
	max,
	min,
	mean int

	isconcave, isconvex, isflat, isflats,
	ispit, istpit, isupit, isvpit, istip int // -1 unknown, 0 false, 1 true
}

// New builds a Profile over bm; nothing is computed until first use.
func New(bm *bitmap.Bitmap, t Type) *Profile {
	return &Profile{
		bm: bm, typ: t,
		limit: -1, max: -1, min: -1, mean: -1,
		isconcave: -1, isconvex: -1, isflat: -1, isflats: -1,
		ispit: -1, istpit: -1, isupit: -1, isvpit: -1, istip: -1,
	}
}

func (p *Profile) initialize() {
	bm := p.bm
	switch p.typ {
	case Left:
		p.data = make([]int, bm.Height())
		p.limit = bm.Width()
		for row := bm.Top(); row <= bm.Bottom(); row++ {
			j := bm.Left()
			for j <= bm.Right() && !bm.GetBit(row, j) {
				j++
			}
			p.data[row-bm.Top()] = j - bm.Left()
		}
	case Top:
		p.data = make([]int, bm.Width())
		p.limit = bm.Height()
		for col := bm.Left(); col <= bm.Right(); col++ {
			j := bm.Top()
			for j <= bm.Bottom() && !bm.GetBit(j, col) {
				j++
			}
			p.data[col-bm.Left()] = j - bm.Top()
		}
	case Right:
		p.data = make([]int, bm.Height())
		p.limit = bm.Width()
		for row := bm.Top(); row <= bm.Bottom(); row++ {
			j := bm.Right()
			for j >= bm.Left() && !bm.GetBit(row, j) {
				j--
			}
			p.data[row-bm.Top()] = bm.Right() - j
		}
	case Bottom:
		p.data = make([]int, bm.Width())
		p.limit = bm.Height()
		for col := bm.Left(); col <= bm.Right(); col++ {
			j := bm.Bottom()
			for j >= bm.Top() && !bm.GetBit(j, col) {
				j--
			}
			p.data[col-bm.Left()] = bm.Bottom() - j
		}
	case Height:
		p.data = make([]int, bm.Width())
		p.limit = bm.Height()
		for col := bm.Left(); col <= bm.Right(); col++ {
			u, d := bm.Top(), bm.Bottom()
			for u <= d && !bm.GetBit(u, col) {
				u++
			}
			for u <= d && !bm.GetBit(d, col) {
				d--
			}
			p.data[col-bm.Left()] = d - u + 1
		}
	case Width:
		p.data = make([]int, bm.Height())
		p.limit = bm.Width()
		for row := bm.Top(); row <= bm.Bottom(); row++ {
			l, r := bm.Left(), bm.Right()
			for l <= r && !bm.GetBit(row, l) {
				l++
			}
			for l <= r && !bm.GetBit(row, r) {
				r--
			}
			p.data[row-bm.Top()] = r - l + 1
		}
	}
}

func (p *Profile) Limit() int {
	if p.limit < 0 {
		p.initialize()
	}
	return p.limit
}

func (p *Profile) Samples() int {
	if p.limit < 0 {
		p.initialize()
	}
	return len(p.data)
}

func (p *Profile) Mean() int {
	if p.mean < 0 {
		if p.limit < 0 {
			p.initialize()
		}
		m := 0
		for i := 0; i < p.Samples(); i++ {
			m += p.data[i]
		}
		if p.Samples() > 1 {
			m /= p.Samples()
		}
		p.mean = m
	}
	return p.mean
}

func (p *Profile) Max() int {
	if p.max < 0 {
		if p.limit < 0 {
			p.initialize()
		}
		p.max = p.data[0]
		for i := 1; i < p.Samples(); i++ {
			if p.data[i] > p.max {
				p.max = p.data[i]
			}
		}
	}
	return p.max
}

// MaxRange returns max(data[l..r]); r<0 means "to the end".
func (p *Profile) MaxRange(l, r int) int {
	if p.limit < 0 {
		p.initialize()
	}
	if r < 0 {
		r = p.Samples() - 1
	}
	m := 0
	for i := l; i <= r; i++ {
		if p.data[i] > m {
			m = p.data[i]
		}
	}
	return m
}

func (p *Profile) Min() int {
	if p.min < 0 {
		if p.limit < 0 {
			p.initialize()
		}
		p.min = p.data[0]
		for i := 1; i < p.Samples(); i++ {
			if p.data[i] < p.min {
				p.min = p.data[i]
			}
		}
	}
	return p.min
}

// MinRange returns min(data[l..r]); r<0 means "to the end".
func (p *Profile) MinRange(l, r int) int {
	if p.limit < 0 {
		p.initialize()
	}
	if r < 0 {
		r = p.Samples() - 1
	}
	m := p.limit
	for i := l; i <= r; i++ {
		if p.data[i] < m {
			m = p.data[i]
		}
	}
	return m
}

// At is the clamped element accessor (operator[] in the original).
func (p *Profile) At(i int) int {
	if p.limit < 0 {
		p.initialize()
	}
	if i < 0 {
		i = 0
	} else if i >= p.Samples() {
		i = p.Samples() - 1
	}
	return p.data[i]
}

func (p *Profile) Pos(pct int) int { return ((p.Samples() - 1) * pct) / 100 }
func (p *Profile) Range() int      { return p.Max() - p.Min() }

// Area sums data[l..r]; r<0 means "to the end".
func (p *Profile) Area(l, r int) int {
	if p.limit < 0 {
		p.initialize()
	}
	if r < 0 {
		r = p.Samples() - 1
	}
	a := 0
	for i := l; i <= r; i++ {
		a += p.data[i]
	}
	return a
}

func (p *Profile) Increasing(i, minDelta int) bool {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	if i < 0 || i > n-2 || p.data[n-1]-p.data[i] < minDelta {
		return false
	}
	for i++; i < n; i++ {
		if p.data[i] < p.data[i-1] {
			return false
		}
	}
	return true
}

func (p *Profile) Decreasing(i int) bool {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	noise := minInt(n, p.limit)/20 + 1
	if i < 0 || n-i <= 2*noise || p.data[i]-p.data[n-noise] < noise+1 {
		return false
	}
	for i++; i < n-noise; i++ {
		if p.data[i] > p.data[i-1] {
			return false
		}
	}
	return true
}

func (p *Profile) IsConcave() bool {
	if p.isconcave < 0 {
		p.isconcave = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if n < 5 {
			return false
		}
		dmax, l, r := -1, 0, 0
		for i := p.Pos(10); i <= p.Pos(90); i++ {
			if p.data[i] > dmax {
				dmax, l, r = p.data[i], i, i
			} else if p.data[i] == dmax {
				r = i
			}
		}
		if l > r || l < p.Pos(25) || r > p.Pos(75) {
			return false
		}
		if p.data[p.Pos(10)] >= dmax || p.data[p.Pos(90)] >= dmax {
			return false
		}
		imax := (l + r) / 2
		for i := p.Pos(10); i < imax; i++ {
			if p.data[i] > p.data[i+1] {
				return false
			}
		}
		for i := p.Pos(90); i > imax; i-- {
			if p.data[i] > p.data[i-1] {
				return false
			}
		}
		p.isconcave = 1
	}
	return p.isconcave == 1
}

func (p *Profile) IsConvex() bool {
	if p.isconvex < 0 {
		p.isconvex = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if n < 9 || p.limit < 5 {
			return false
		}
		mn, minBegin, minEnd := p.limit, 0, 0
		lmin, rmax, l, r := p.limit, -p.limit, 0, 0
		for i := 1; i < n; i++ {
			d := p.data[i] - p.data[i-1]
			if d < lmin {
				lmin, l = d, i-1
			}
			if d >= rmax {
				rmax, r = d, i
			}
			if p.data[i] <= mn {
				minEnd = i
				if p.data[i] < mn {
					mn, minBegin = p.data[i], i
				}
			}
		}
		if l >= r || l >= p.Pos(25) || r <= p.Pos(75) {
			return false
		}
		if lmin >= 0 || rmax <= 0 || p.data[l] < 2 || p.data[r] < 2 ||
			3*(p.data[l]+p.data[r]) <= minInt(p.limit, n) {
			return false
		}
		if 3*(minEnd-minBegin+1) > 2*n {
			return false
		}
		if 2*l >= minBegin || 2*r <= minEnd+n-1 {
			return false
		}
		if minBegin < p.Pos(10) || minEnd > p.Pos(90) {
			return false
		}

		noise := minInt(n, p.limit)/30 + 1
		dmax := -p.limit
		for i := l + 1; i <= r; i++ {
			if i >= minBegin && i <= minEnd {
				if p.data[i] <= noise {
					continue
				}
				return false
			}
			d := p.data[i] - p.data[i-1]
			if d == 0 {
				continue
			}
			if d > dmax {
				if absInt(d) <= noise {
					dmax++
				} else {
					dmax = d
				}
			} else if d < dmax-noise {
				return false
			}
		}
		if 2*(minEnd-minBegin+1) < n {
			varea := (minBegin-l+1)*p.data[l]/2 + (r-minEnd+1)*p.data[r]/2
			if p.Area(l, minBegin-1)+p.Area(minEnd+1, r) >= varea {
				return false
			}
		}
		p.isconvex = 1
	}
	return p.isconvex == 1
}

func (p *Profile) IsFlat() bool {
	if p.isflat < 0 {
		p.isflat = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if n < 10 {
			return false
		}
		mn, mx := p.data[n/2], p.data[n/2]
		for i := 1; i < n-1; i++ {
			if p.data[i] < mn {
				mn = p.data[i]
			} else if p.data[i] > mx {
				mx = p.data[i]
			}
		}
		if mx-mn <= 1+n/30 {
			p.isflat = 1
		}
	}
	return p.isflat == 1
}

func (p *Profile) IsFlats() bool {
	if p.isflats < 0 {
		p.isflats = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if n < 12 {
			return false
		}
		s1 := maxInt(p.Pos(15), 3)
		s2 := minInt(p.Pos(85), n-4)
		mn, mx := -1, 0
		for i := s1 + 2; i < s2; i++ {
			if p.data[i-1] == p.data[i] {
				mn, mx = p.data[i], p.data[i]
				break
			}
		}
		if mn < 0 {
			return false
		}
		for i := 1; i <= s1; i++ {
			if p.data[i] > mx {
				mx = p.data[i]
			}
		}
		for i := s1 + 1; i < s2; i++ {
			if p.data[i] < mn {
				mn = p.data[i]
			} else if p.data[i] > mx {
				mx = p.data[i]
			}
		}
		for i := s2; i < n-1; i++ {
			if p.data[i] > mx {
				mx = p.data[i]
			}
		}
		if mx-mn <= 1+n/30 {
			p.isflats = 1
		}
	}
	return p.isflats == 1
}

func (p *Profile) IsPit() bool {
	if p.ispit < 0 {
		p.ispit = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if n < 5 {
			return false
		}
		noise := minInt(n, p.limit)/25 + 1
		for i := 0; i < noise; i++ {
			if p.data[i] <= noise-i || p.data[n-i-1] <= noise-i {
				return false
			}
		}
		dmin, dmax := p.Min(), p.limit/2
		begin, end := 0, 0
		ref := dmax
		i := 0
		for ; i < n; i++ {
			d := p.data[i]
			if d == dmin {
				begin = i
				break
			}
			if d < ref {
				ref = d
			} else if d > ref+noise && ref < dmax {
				return false
			}
		}
		if begin < 2 || begin > n-3 {
			return false
		}
		ref = dmax
		for i = n - 1; i >= begin; i-- {
			d := p.data[i]
			if d == dmin {
				end = i
				break
			}
			if d < ref {
				ref = d
			} else if d > ref+noise && ref < dmax {
				return false
			}
		}
		if end < begin || end > n-3 {
			return false
		}
		for i = begin + 1; i < end; i++ {
			if p.data[i] > dmin+noise {
				return false
			}
		}
		p.ispit = 1
	}
	return p.ispit == 1
}

func (p *Profile) IsCpit(cpos int) bool {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	if n < 5 || cpos < 25 || cpos > 75 {
		return false
	}
	mid := ((n - 1) * cpos) / 100
	iend := minInt(n/4, minInt(mid, n-mid))
	th := p.Mean()
	if th < 2 {
		th = 2
	}
	imin := -1
	for i := 0; i < iend; i++ {
		if p.data[mid+i] < th {
			imin = mid + i
			break
		}
		if p.data[mid-i-1] < th {
			imin = mid - i - 1
			break
		}
	}
	if imin < 0 {
		return false
	}
	for i := imin + 1; i < n; i++ {
		if p.data[i] > th {
			for j := imin - 1; j >= 0; j-- {
				if p.data[j] > th {
					return true
				}
			}
			break
		}
	}
	return false
}

func (p *Profile) IsLpit() bool {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	if n < 5 {
		return false
	}
	noise := n / 30
	if p.data[0] < noise+2 {
		return false
	}
	dmin := p.Min()
	begin, ref := 0, p.limit
	for i := 0; i < n; i++ {
		d := p.data[i]
		if d == dmin {
			begin = i
			break
		}
		if d < ref {
			ref = d
		} else if d > ref+1 {
			return false
		}
	}
	return begin >= 2 && 2*begin < n
}

func (p *Profile) IsTpit() bool {
	if p.istpit < 0 {
		p.istpit = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if p.limit < 5 || n < 5 || !p.IsPit() {
			return false
		}
		noise := minInt(p.limit, n)/30 + 1
		l, r := -1, 0
		for i := 0; i < n; i++ {
			if p.data[i] <= noise {
				r = i
				if l < 0 {
					l = i
				}
			}
		}
		if l > 0 && 4*(r-l+1) < n {
			p.istpit = 1
		}
	}
	return p.istpit == 1
}

func (p *Profile) IsUpit() bool {
	if p.isupit < 0 {
		p.isupit = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if n < 5 {
			return false
		}
		th := p.Mean()
		if p.Mean() < 2 && p.Range() > 2 {
			th = 2
		}
		status, ucount, lcount, umean, lmean := 0, 0, 0, 0, 0
		for i := 0; i < n; i++ {
			d := p.data[i]
			switch status {
			case 0:
				if d < th {
					if i < p.Pos(25) || i > p.Pos(70) {
						return false
					}
					status = 1
					break
				}
				if d > th {
					ucount++
					umean += d
				}
			case 1:
				if d > th {
					if i < p.Pos(30) || i > p.Pos(75) {
						return false
					}
					status = 2
					break
				}
				if d < th {
					lcount++
					lmean += d
				}
			case 2:
				if d < th {
					return false
				}
				if d > th {
					ucount++
					umean += d
				}
			}
		}
		if ucount > 1 {
			umean /= ucount
		}
		if lcount > 1 {
			lmean /= lcount
		}
		if status == 2 && umean-lmean > p.Range()/2 {
			p.isupit = 1
		}
	}
	return p.isupit == 1
}

func (p *Profile) IsVpit() bool {
	if p.isvpit < 0 {
		p.isvpit = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if p.limit < 5 || n < 5 || !p.IsPit() {
			return false
		}
		noise := p.limit / 20
		level := p.limit/10 + 2
		ll, ln, rl, rn := -1, -1, -1, -1
		for i := 0; i < n; i++ {
			if p.data[i] <= level {
				rl = i
				if ll < 0 {
					ll = i
				}
				if p.data[i] <= noise {
					rn = i
					if ln < 0 {
						ln = i
					}
				}
			}
		}
		wl := rl - ll + 1
		wn := rn - ln + 1
		if ln > 0 && 2*wl <= n+1 && wl-wn <= 2*(level-noise) {
			p.isvpit = 1
		}
	}
	return p.isvpit == 1
}

func (p *Profile) IsTip() bool {
	if p.istip < 0 {
		p.istip = 0
		if p.limit < 0 {
			p.initialize()
		}
		n := p.Samples()
		if n < 5 {
			return false
		}
		th := p.Mean()
		if p.Mean() < 2 && p.Range() > 2 {
			th = 2
		}
		if th < 2 {
			th++
		}
		lth, rth := p.data[0], p.data[n-1]
		begin, end := 0, n-1
		for i, j := 1, maxInt(2, n/10); i < j; i++ {
			if p.data[i] < lth {
				lth, begin = p.data[i], i
			}
			if p.data[n-1-i] < rth {
				rth, end = p.data[n-1-i], n-1-i
			}
		}
		if lth >= th || rth >= th {
			return false
		}
		if 3*lth >= 2*p.Range() || 3*rth >= 2*p.Range() {
			return false
		}
		th = maxInt(lth, rth)
		status := 0
		for i := begin + 1; i < end; i++ {
			switch status {
			case 0:
				if p.data[i] > th+1 {
					status = 1
				}
			case 1:
				if p.data[i] > th+1 {
					status = 2
				} else {
					status = 0
				}
			case 2:
				if p.data[i] <= th {
					status = 3
				}
			case 3:
				if p.data[i] > th+1 {
					return false
				}
			}
		}
		if status >= 2 {
			p.istip = 1
		}
	}
	return p.istip == 1
}

func (p *Profile) IsCtip(cpos int) bool {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	if n < 5 || cpos < 25 || cpos > 75 {
		return false
	}
	mid := ((n - 1) * cpos) / 100
	iend := minInt(n/4, minInt(mid, n-mid))
	th := maxInt(2, minInt(p.Mean(), p.limit/3))
	imax := -1
	for i := 0; i < iend; i++ {
		if p.data[mid+i] > th {
			imax = mid + i
			break
		}
		if p.data[mid-i-1] > th {
			imax = mid - i - 1
			break
		}
	}
	if imax < 0 && p.Mean() == 0 {
		th--
		for i := 0; i < iend; i++ {
			if p.data[mid+i] > th {
				imax = mid + i
				break
			}
			if p.data[mid-i-1] > th {
				imax = mid - i - 1
				break
			}
		}
	}
	if imax < 0 {
		return false
	}
	th = maxInt(th, p.data[imax]/2)
	for i := imax + 1; i < n; i++ {
		if p.data[i] < th {
			for j := imax - 1; j >= 0; j-- {
				if p.data[j] < th {
					return true
				}
			}
			break
		}
	}
	return false
}

func (p *Profile) Imaximum() int {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	margin := n/30 + 1
	mbegin, mend, mvalue := 0, 0, 0
	for i := margin; i < n-margin; i++ {
		if p.data[i] > mvalue {
			mvalue, mbegin = p.data[i], i
		}
	}
	for mend = mbegin + 1; mend < n; mend++ {
		if p.data[mend] < mvalue {
			break
		}
	}
	return (mbegin + mend - 1) / 2
}

func (p *Profile) Iminimum(m, th int) int {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	margin := n/30 + 1
	if n < 2*margin {
		return 0
	}
	if th < 2 {
		th = p.Mean()
		if p.Mean() < 2 {
			th = 2
		}
	}
	minima, status := 0, 0
	begin, end, value := 0, 0, p.limit+1
	for end = margin; end < n-margin; end++ {
		if status == 0 {
			if p.data[end] < th {
				status = 1
				minima++
				begin = end
			}
		} else if p.data[end] > th {
			if minima == m+1 {
				end--
				break
			}
			status = 0
		}
	}
	if end >= n {
		end--
	}
	if minima != m+1 {
		return 0
	}
	for i := begin; i <= end; i++ {
		if p.data[i] < value {
			value, begin = p.data[i], i
		}
	}
	for ; end >= begin; end-- {
		if p.data[end] == value {
			break
		}
	}
	return (begin + end) / 2
}

func (p *Profile) Minima(th int) int {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	if n == 0 {
		return 0
	}
	if th < 1 {
		th = p.Mean()
		if p.Mean() < 2 {
			th = 2
		}
	}
	noise := p.limit / 40
	dth := th - (noise+1)/2
	uth := th + noise/2
	if dth < 1 {
		return 1
	}
	minima := 0
	status := 0
	if p.data[0] < dth {
		minima, status = 1, 1
	}
	for i := 1; i < n; i++ {
		switch status {
		case 0:
			if p.data[i] < dth {
				status = 1
				minima++
			}
		case 1:
			if p.data[i] > uth {
				status = 0
			}
		}
	}
	return minima
}

func (p *Profile) Straight() (dy int, ok bool) {
	if p.limit < 0 {
		p.initialize()
	}
	n := p.Samples()
	if n < 5 {
		return 0, false
	}
	xl := n/30 + 1
	yl := (p.data[xl] + p.data[xl+1]) / 2
	xr := n - xl - 1
	yr := (p.data[xr-1] + p.data[xr]) / 2
	dx := xr - xl
	dyv := yr - yl
	if dx <= 0 {
		return 0, false
	}
	dmax := dx * (n/20 + 2)
	faults := n / 10
	for i := 0; i < n; i++ {
		y := (dx * yl) + ((i - xl) * dyv)
		d := absInt((dx * p.data[i]) - y)
		if d >= dmax && ((dx*p.data[i]) < y || (i >= xl && i <= xr)) {
			if d > dmax || (d == dmax && func() bool { faults--; return faults < 0 }()) {
				return 0, false
			}
		}
	}
	return dyv, true
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
