// Package mask implements the per-row horizontal-interval representation of
// a reading zone (spec's "Zone / Mask" glossary entry): a Rectangle plus one
// Csegment per row, letting a zone have an irregular (non-rectangular)
// outline while still answering Includes/Distance queries cheaply.
package mask

import (
	"math"

	"github.com/wudi/ocrkit/rect"
)

type Mask struct {
	rect.Rectangle
	data []rect.Csegment // one segment per row
}

// New builds a rectangular Mask: every row's segment spans the full width.
func New(re rect.Rectangle) *Mask {
	m := &Mask{Rectangle: re}
	m.data = make([]rect.Csegment, re.Height())
	for i := range m.data {
		m.data[i] = rect.Csegment{Left: re.Left(), Right: re.Right()}
	}
	return m
}

func (m *Mask) LeftAt(row int) int {
	if m.Top() <= row && row <= m.Bottom() && m.data[row-m.Top()].Valid() {
		return m.data[row-m.Top()].Left
	}
	return -1
}

func (m *Mask) RightAt(row int) int {
	if m.Top() <= row && row <= m.Bottom() && m.data[row-m.Top()].Valid() {
		return m.data[row-m.Top()].Right
	}
	return -1
}

func (m *Mask) SetTop(t int) {
	if t == m.Top() {
		return
	}
	if t < m.Top() {
		prefix := make([]rect.Csegment, m.Top()-t)
		for i := range prefix {
			prefix[i] = rect.EmptyCsegment()
		}
		m.data = append(prefix, m.data...)
	} else {
		m.data = m.data[t-m.Top():]
	}
	m.Rectangle.SetTop(t)
}

func (m *Mask) SetBottom(b int) {
	if b == m.Bottom() {
		return
	}
	m.Rectangle.SetBottom(b)
	h := m.Height()
	if h > len(m.data) {
		for len(m.data) < h {
			m.data = append(m.data, rect.EmptyCsegment())
		}
	} else {
		m.data = m.data[:h]
	}
}

func (m *Mask) AddMask(o *Mask) {
	if o.Top() < m.Top() {
		m.SetTop(o.Top())
	}
	if o.Bottom() > m.Bottom() {
		m.SetBottom(o.Bottom())
	}
	for i := o.Top(); i <= o.Bottom(); i++ {
		seg := &m.data[i-m.Top()]
		seg.AddCsegment(o.data[i-o.Top()])
		if seg.Left < m.Left() {
			m.Rectangle.SetLeft(seg.Left)
		}
		if seg.Right > m.Right() {
			m.Rectangle.SetRight(seg.Right)
		}
	}
}

func (m *Mask) AddPoint(row, col int) {
	if row < m.Top() {
		m.SetTop(row)
	} else if row > m.Bottom() {
		m.SetBottom(row)
	}
	m.data[row-m.Top()].AddPoint(col)
	if col < m.Left() {
		m.Rectangle.SetLeft(col)
	} else if col > m.Right() {
		m.Rectangle.SetRight(col)
	}
}

func (m *Mask) AddRectangle(re rect.Rectangle) {
	if re.Top() < m.Top() {
		m.SetTop(re.Top())
	}
	if re.Bottom() > m.Bottom() {
		m.SetBottom(re.Bottom())
	}
	rseg := rect.Csegment{Left: re.Left(), Right: re.Right()}
	for i := re.Top(); i <= re.Bottom(); i++ {
		seg := &m.data[i-m.Top()]
		seg.AddCsegment(rseg)
		if seg.Left < m.Left() {
			m.Rectangle.SetLeft(seg.Left)
		}
		if seg.Right > m.Right() {
			m.Rectangle.SetRight(seg.Right)
		}
	}
}

func (m *Mask) Includes(re rect.Rectangle) bool {
	if re.Top() < m.Top() || re.Bottom() > m.Bottom() {
		return false
	}
	seg := rect.Csegment{Left: re.Left(), Right: re.Right()}
	for i := re.Top(); i <= re.Bottom(); i++ {
		if !m.data[i-m.Top()].Includes(seg) {
			return false
		}
	}
	return true
}

func (m *Mask) IncludesPoint(row, col int) bool {
	return row >= m.Top() && row <= m.Bottom() && m.data[row-m.Top()].IncludesCol(col)
}

func (m *Mask) Distance(re rect.Rectangle) int {
	seg := rect.Csegment{Left: re.Left(), Right: re.Right()}
	mindist := math.MaxInt32
	for i := m.Bottom(); i >= m.Top(); i-- {
		vd := re.VDistanceRow(i)
		if vd >= mindist {
			if i < re.Top() {
				break
			}
			continue
		}
		hd := m.data[i-m.Top()].Distance(seg)
		if hd >= mindist {
			continue
		}
		if d := rect.Hypoti(hd, vd); d < mindist {
			mindist = d
		}
	}
	return mindist
}

func (m *Mask) DistancePoint(row, col int) int {
	mindist := math.MaxInt32
	for i := m.Bottom(); i >= m.Top(); i-- {
		vd := absInt(i - row)
		if vd >= mindist {
			if i < row {
				break
			}
			continue
		}
		hd := m.data[i-m.Top()].DistanceCol(col)
		if hd >= mindist {
			continue
		}
		if d := rect.Hypoti(hd, vd); d < mindist {
			mindist = d
		}
	}
	return mindist
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
