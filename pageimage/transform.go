package pageimage

import (
	"fmt"

	"github.com/wudi/ocrkit/mask"
	"github.com/wudi/ocrkit/ocrerr"
	"github.com/wudi/ocrkit/rational"
	"github.com/wudi/ocrkit/rect"
	"github.com/wudi/ocrkit/track"
)

// TransformKind enumerates the raster transforms the input contract allows
// (spec §6): rotation by a multiple of 90 degrees and the four mirror axes.
type TransformKind int

const (
	TransformNone TransformKind = iota
	Rotate90
	Rotate180
	Rotate270
	MirrorLR
	MirrorTB
	MirrorD1
	MirrorD2
)

// ParseTransformKind maps a command-line transform name (matching the
// "none|rotate90|rotate180|rotate270|mirror_lr|mirror_tb|mirror_d1|mirror_d2"
// vocabulary spec §6 documents) to a TransformKind.
func ParseTransformKind(name string) (TransformKind, bool) {
	switch name {
	case "none":
		return TransformNone, true
	case "rotate90":
		return Rotate90, true
	case "rotate180":
		return Rotate180, true
	case "rotate270":
		return Rotate270, true
	case "mirror_lr":
		return MirrorLR, true
	case "mirror_tb":
		return MirrorTB, true
	case "mirror_d1":
		return MirrorD1, true
	case "mirror_d2":
		return MirrorD2, true
	default:
		return TransformNone, false
	}
}

func mirrorLeftRight(data [][]uint8) {
	for _, row := range data {
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
}

func mirrorTopBottom(data [][]uint8) {
	for u, d := 0, len(data)-1; u < d; u, d = u+1, d-1 {
		data[u], data[d] = data[d], data[u]
	}
}

func mirrorDiagonal(data [][]uint8, re *rect.Rectangle) [][]uint8 {
	size := maxInt(re.Height(), re.Width())
	out := make([][]uint8, size)
	for i := range out {
		out[i] = make([]uint8, size)
	}
	for r := 0; r < re.Height(); r++ {
		for c := 0; c < re.Width(); c++ {
			out[r][c] = data[r][c]
		}
	}
	for row := 0; row < size; row++ {
		for col := 0; col < row; col++ {
			out[row][col], out[col][row] = out[col][row], out[row][col]
		}
	}
	h, w := re.Height(), re.Width()
	re.SetHeight(w)
	re.SetWidth(h)
	out = out[:re.Height()]
	for i := range out {
		out[i] = out[i][:re.Width()]
	}
	return out
}

// Transform applies one of the eight raster transforms in place, matching
// GNU Ocrad's composition of mirror passes (e.g. rotate180 = mirror_lr then
// mirror_tb).
func (p *PageImage) Transform(t TransformKind) {
	switch t {
	case TransformNone:
	case Rotate90:
		p.data = mirrorDiagonal(p.data, &p.Rectangle)
		mirrorTopBottom(p.data)
	case Rotate180:
		mirrorLeftRight(p.data)
		mirrorTopBottom(p.data)
	case Rotate270:
		p.data = mirrorDiagonal(p.data, &p.Rectangle)
		mirrorLeftRight(p.data)
	case MirrorLR:
		mirrorLeftRight(p.data)
	case MirrorTB:
		mirrorTopBottom(p.data)
	case MirrorD1:
		p.data = mirrorDiagonal(p.data, &p.Rectangle)
	case MirrorD2:
		p.data = mirrorDiagonal(p.data, &p.Rectangle)
		mirrorLeftRight(p.data)
		mirrorTopBottom(p.data)
	}
}

// Cut crops the page to the rectangle described by four relative-or-absolute
// coordinates (left, top, width, height), clipping what is partially
// outside and failing with InvalidGeometry if the requested box ends up
// smaller than 3x3 or fully outside the page.
func (p *PageImage) Cut(ltwh [4]rational.Rational) error {
	re := p.Rectangle

	l := absolutePos(ltwh[0], p.Left(), p.Right())
	if l > re.Left() {
		if l < re.Right() {
			re.SetLeft(l)
		} else {
			return ocrerr.New(ocrerr.InvalidGeometry, "pageimage.Cut", fmt.Errorf("left cut outside image"))
		}
	}
	t := absolutePos(ltwh[1], p.Top(), p.Bottom())
	if t > re.Top() {
		if t < re.Bottom() {
			re.SetTop(t)
		} else {
			return ocrerr.New(ocrerr.InvalidGeometry, "pageimage.Cut", fmt.Errorf("top cut outside image"))
		}
	}
	r := l + absolutePos(ltwh[2], p.Left(), p.Right()) - 1
	if r < re.Right() {
		if r > re.Left() {
			re.SetRight(r)
		} else {
			return ocrerr.New(ocrerr.InvalidGeometry, "pageimage.Cut", fmt.Errorf("right cut outside image"))
		}
	}
	b := t + absolutePos(ltwh[3], p.Top(), p.Bottom()) - 1
	if b < re.Bottom() {
		if b > re.Top() {
			re.SetBottom(b)
		} else {
			return ocrerr.New(ocrerr.InvalidGeometry, "pageimage.Cut", fmt.Errorf("bottom cut outside image"))
		}
	}
	if re.Width() < 3 || re.Height() < 3 {
		return ocrerr.New(ocrerr.InvalidGeometry, "pageimage.Cut", fmt.Errorf("cut rectangle smaller than 3x3"))
	}

	if re.Bottom() < p.Bottom() {
		p.data = p.data[:re.Bottom()-p.Top()+1]
	}
	if re.Right() < p.Right() {
		w := re.Right() - p.Left() + 1
		for i := range p.data {
			p.data[i] = p.data[i][:w]
		}
	}
	if re.Top() > p.Top() {
		p.data = p.data[re.Top()-p.Top():]
	}
	if re.Left() > p.Left() {
		d := re.Left() - p.Left()
		for i := range p.data {
			p.data[i] = p.data[i][d:]
		}
	}
	p.Rectangle = rect.New(0, 0, len(p.data[0])-1, len(p.data)-1)
	return nil
}

func absolutePos(pos rational.Rational, left, right int) int {
	zero, one := rational.FromInt(0), rational.FromInt(1)
	if !rationalLess(pos, zero) {
		if !rationalLess(one, pos) {
			return left + pos.Mul(rational.FromInt(right-left)).Trunc()
		}
		return left + pos.Round()
	}
	neg := rational.FromInt(0).Add(pos.Mul(rational.FromInt(-1)))
	if !rationalLess(one, neg) {
		return right - neg.Mul(rational.FromInt(right-left)).Trunc()
	}
	return right - neg.Round()
}

// Reduced builds a reduced-scale copy by averaging scale*scale pixel blocks,
// the constructor GNU Ocrad uses internally before scanning oversized pages.
func (p *PageImage) Reduced(scale int) (*PageImage, error) {
	if scale < 2 || scale > p.Width() || scale > p.Height() {
		return nil, ocrerr.New(ocrerr.BadArgument, "pageimage.Reduced", fmt.Errorf("bad parameter building a reduced PageImage"))
	}
	scale2 := scale * scale
	out := &PageImage{maxval: p.maxval, threshold: p.threshold}
	h := p.Height() / scale
	w := p.Width() / scale
	out.Rectangle = rect.New(0, 0, w-1, h-1)
	out.data = make([][]uint8, h)
	for row := 0; row < h; row++ {
		srow := row*scale + scale
		out.data[row] = make([]uint8, w)
		for col := 0; col < w; col++ {
			scol := col*scale + scale
			sum := 0
			for i := srow - scale; i < srow; i++ {
				for j := scol - scale; j < scol; j++ {
					sum += int(p.data[i][j])
				}
			}
			out.data[row][col] = uint8(sum / scale2)
		}
	}
	return out, nil
}

// Scale enlarges (n>=2) or reduces (n<=-2) the page image in place. Enlarging
// a bitmap additionally runs the 2x/3x connectivity-preserving expansion
// before falling back to pixel replication, and greymaps are smoothed with a
// (2n-1) x (2n-1) box convolution after replication, matching the original's
// scaling pipeline.
func (p *PageImage) Scale(n int) (bool, error) {
	if n <= -2 {
		reduced, err := p.Reduced(-n)
		if err != nil {
			return false, err
		}
		*p = *reduced
		return true, nil
	}
	if n < 2 {
		return false, nil
	}
	if maxInt(p.Width(), 1) != 0 && (1<<31-1)/n < p.Width()*p.Height() {
		return false, ocrerr.New(ocrerr.ImageTooBig, "pageimage.Scale", fmt.Errorf("scale factor too big, int will overflow"))
	}
	if p.maxval == 1 {
		if n%2 == 0 {
			enlarge2b(&p.data)
			n /= 2
		} else if n%3 == 0 {
			enlarge3b(&p.data)
			n /= 3
		}
	}
	if n >= 2 {
		enlargeN(&p.data, n)
		if p.maxval > 1 {
			if n <= 3 {
				convol23(&p.data, n)
			} else {
				convolN(&p.data, n)
			}
		}
	}
	p.Rectangle = rect.New(0, 0, len(p.data[0])-1, len(p.data)-1)
	return true, nil
}

// DrawMask / DrawRectangle / DrawTrack paint debug overlays into the page;
// they are the annotated-image collaborator spec §1 calls out as external,
// kept here because they share the PageImage bit-setting primitives.
func (p *PageImage) DrawMask(m *mask.Mask) {
	t := maxInt(p.Top(), m.Top())
	b := minInt(p.Bottom(), m.Bottom())
	if t == m.Top() && m.LeftAt(t) >= 0 && m.RightAt(t) >= 0 {
		for col := m.LeftAt(t); col <= m.RightAt(t); col++ {
			p.SetBit(t, col, true)
		}
	}
	if b == m.Bottom() && m.LeftAt(b) >= 0 && m.RightAt(b) >= 0 {
		for col := m.LeftAt(b); col <= m.RightAt(b); col++ {
			p.SetBit(b, col, true)
		}
	}
	lprev, rprev := m.LeftAt(t), m.RightAt(t)
	for row := t + 1; row <= b; row++ {
		lnew, rnew := m.LeftAt(row), m.RightAt(row)
		if lnew < 0 {
			lnew = lprev
		}
		if rnew < 0 {
			rnew = rprev
		}
		if lprev >= 0 && lnew >= 0 {
			c1 := maxInt(p.Left(), minInt(lprev, lnew))
			c2 := minInt(p.Right(), maxInt(lprev, lnew))
			for col := c1; col <= c2; col++ {
				p.SetBit(row, col, true)
			}
		}
		if rprev >= 0 && rnew >= 0 {
			c1 := maxInt(p.Left(), minInt(rprev, rnew))
			c2 := minInt(p.Right(), maxInt(rprev, rnew))
			for col := c1; col <= c2; col++ {
				p.SetBit(row, col, true)
			}
		}
		lprev, rprev = lnew, rnew
	}
}

func (p *PageImage) DrawRectangle(re rect.Rectangle) {
	l := maxInt(p.Left(), re.Left())
	t := maxInt(p.Top(), re.Top())
	r := minInt(p.Right(), re.Right())
	b := minInt(p.Bottom(), re.Bottom())
	if l == re.Left() {
		for row := t; row <= b; row++ {
			p.SetBit(row, l, true)
		}
	}
	if t == re.Top() {
		for col := l; col <= r; col++ {
			p.SetBit(t, col, true)
		}
	}
	if r == re.Right() {
		for row := t; row <= b; row++ {
			p.SetBit(row, r, true)
		}
	}
	if b == re.Bottom() {
		for col := l; col <= r; col++ {
			p.SetBit(b, col, true)
		}
	}
}

func (p *PageImage) DrawTrack(tr *track.Track) {
	l := maxInt(p.Left(), tr.Left())
	r := minInt(p.Right(), tr.Right())
	if l == tr.Left() {
		for row := tr.Top(l); row <= tr.Bottom(l); row++ {
			if row >= p.Top() && row <= p.Bottom() {
				p.SetBit(row, l, true)
			}
		}
	}
	if r == tr.Right() {
		for row := tr.Top(r); row <= tr.Bottom(r); row++ {
			if row >= p.Top() && row <= p.Bottom() {
				p.SetBit(row, r, true)
			}
		}
	}
	for col := l; col <= r; col++ {
		if row := tr.Top(col); row >= p.Top() && row <= p.Bottom() {
			p.SetBit(row, col, true)
		}
		if row := tr.Bottom(col); row >= p.Top() && row <= p.Bottom() {
			p.SetBit(row, col, true)
		}
	}
}
