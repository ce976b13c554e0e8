// Package textblock assembles a block's Blobs into Textlines: the normal
// blobs are classified by height into a histogram-derived "pending"
// middle band plus pending-tall/pending-short outliers, the middle band
// seeds one Textline per row via a seek-neighbor scan, then tall blobs
// (ascenders, big initials) and short blobs (punctuation, diacritics) are
// folded in by the same seek-up/seek-down pattern before clipped and
// noise lines are trimmed and inter-character spacing is resolved.
package textblock

import (
	"github.com/wudi/ocrkit/blob"
	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/feats"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/rect"
	"github.com/wudi/ocrkit/textline"
)

// Textblock is a Rectangle plus the ordered Textlines found within it.
type Textblock struct {
	rect.Rectangle
	tlv []*textline.Textline
}

func (tb *Textblock) insertLine(i int) {
	tb.tlv = append(tb.tlv, nil)
	copy(tb.tlv[i+1:], tb.tlv[i:])
	tb.tlv[i] = textline.New()
}

func (tb *Textblock) deleteLine(i int) {
	tb.tlv = append(tb.tlv[:i], tb.tlv[i+1:]...)
}

// joinCharacters composites vertically-stacked pieces (i-dot over stem,
// tilde over n, a stray accent) of the same glyph into one Character.
func joinCharacters(tlv []*textline.Textline) {
	for _, line := range tlv {
		for i := 0; i < line.Characters()-1; {
			c1 := line.Character(i)
			joined := false
			for j := i + 1; j < line.Characters() && !joined; j++ {
				c2 := line.Character(j)
				if !c1.HOverlaps(c2.Rectangle) {
					continue
				}
				cup, cdn := c1, c2
				if c2.Vcenter() < c1.Vcenter() {
					cup, cdn = c2, c1
				}
				merge := cdn.IncludesHcenter(cup.Rectangle) || cup.IncludesHcenter(cdn.Rectangle) ||
					(cdn.Top() > cup.Bottom() && cdn.Hcenter() < cup.Hcenter()) ||
					(len(cdn.Blobs) == 2 && 2*cdn.Blobs[0].Size() < cdn.Blobs[1].Size() &&
						cdn.Blobs[0].IncludesVcenter(cup.Rectangle))
				if !merge {
					continue
				}
				var k int
				switch {
				case 64*c1.Size() < c2.MainBlob().Size():
					k = i
				case 64*c2.Size() < c1.MainBlob().Size():
					k = j
				case cdn == c2:
					c2.Join(c1)
					k = i
				default:
					c1.Join(c2)
					k = j
				}
				line.DeleteCharacter(k)
				joined = true
			}
			if !joined {
				i++
			}
		}
	}
}

// New classifies blobpv by height into pending/pending_tall/pending_short
// bands per block-row cut, assembles the pending band into Textlines by
// vertical neighbor seeking, then folds the tall and short bands in and
// trims clipped and noise lines. blobpv is consumed.
func New(page, block rect.Rectangle, blobpv []*blob.Blob) *Textblock {
	tb := &Textblock{Rectangle: block}

	var pending, pendingTall, pendingShort []*blob.Blob

	for begin, end := 0, 0; end < len(blobpv); begin = end {
		botmax := blobpv[begin].Bottom()
		for end++; end < len(blobpv); end++ {
			if blobpv[end].Top() > botmax {
				break
			}
			if b := blobpv[end].Bottom(); b > botmax {
				botmax = b
			}
		}

		samples := 0
		var heightDistrib []int
		grow := func(h int) {
			for h >= len(heightDistrib) {
				heightDistrib = append(heightDistrib, 0)
			}
			heightDistrib[h]++
			samples++
		}
		for i := begin; i < end; i++ {
			if !blobpv[i].IsAbnormal() {
				grow(blobpv[i].Height())
			}
		}
		if samples == 0 {
			for i := begin; i < end; i++ {
				grow(blobpv[i].Height())
			}
		}

		meanHeight, validSamples, count := 0, 0, 0
		for i, a := range heightDistrib {
			if 10*(count+a) >= samples && 10*count < 9*samples {
				meanHeight += a * i
				validSamples += a
			}
			count += a
		}
		if validSamples > 0 {
			meanHeight /= validSamples
		}

		for i := begin; i < end; i++ {
			p := blobpv[i]
			a := p.IsAbnormal()
			switch {
			case p.Height() >= 2*meanHeight || (a && p.Height() > meanHeight):
				pendingTall = append(pendingTall, p)
			case 2*p.Height() <= meanHeight || p.Height() <= 5 || (a && p.Height() < meanHeight):
				pendingShort = append(pendingShort, p)
			default:
				pending = append(pending, p)
			}
		}
	}

	if len(pending) == 0 {
		return tb
	}

	currentLine := 0
	minLine := 0
	tb.tlv = append(tb.tlv, textline.New())
	tb.tlv[currentLine].ShiftCharacter(classify.NewCharacter(pending[0]), false)

	for i := 1; i < len(pending); i++ {
		b := pending[i]
		if currentLine-2 > minLine {
			currentLine -= 2
		} else {
			currentLine = minLine
		}
		for {
			var cl, cr *classify.Character
			for j := tb.tlv[currentLine].Characters() - 1; j >= 0; j-- {
				cj := tb.tlv[currentLine].Character(j)
				if !b.IncludesHcenter(cj.Rectangle) && !cj.IncludesHcenter(b.Rectangle) {
					if b.HPrecedes(cj.Rectangle) {
						cr = cj
					} else {
						cl = cj
						break
					}
				}
			}
			switch {
			case (cl != nil && (cl.IncludesVcenter(b.Rectangle) || b.IncludesVcenter(cl.Rectangle))) ||
				(cr != nil && (cr.IncludesVcenter(b.Rectangle) || b.IncludesVcenter(cr.Rectangle))):
				tb.tlv[currentLine].ShiftCharacter(classify.NewCharacter(b), false)
				goto placed
			case (cl != nil && cl.Top() > b.Bottom()) || (cr != nil && cr.Top() > b.Bottom()):
				tb.insertLine(currentLine)
				tb.tlv[currentLine].ShiftCharacter(classify.NewCharacter(b), false)
				goto placed
			case (cl != nil && cl.VOverlapPercent(b.Rectangle) > 5) ||
				(cr != nil && cr.VOverlapPercent(b.Rectangle) > 5):
				tb.tlv[currentLine].ShiftCharacter(classify.NewCharacter(b), false)
				goto placed
			default:
				currentLine++
				if currentLine >= len(tb.tlv) {
					tb.tlv = append(tb.tlv, textline.New())
					currentLine = len(tb.tlv) - 1
					tb.tlv[currentLine].ShiftCharacter(classify.NewCharacter(b), false)
					goto placed
				}
			}
		}
	placed:
	}

	for i := len(tb.tlv) - 1; i >= 0; i-- {
		if tb.tlv[i].Characters() == 0 {
			tb.deleteLine(i)
		}
	}

	joinCharacters(tb.tlv)

	for _, l := range tb.tlv {
		l.SetTrack()
	}

	// Insert tall blobs: seek up then down (needed for slanted/curved lines).
	currentLine = 0
	for _, b := range pendingTall {
		for currentLine > 0 && b.Bottom() < tb.tlv[currentLine].Vcenter(b.Hcenter()) {
			currentLine--
		}
		for currentLine < len(tb.tlv) && b.Top() > tb.tlv[currentLine].Vcenter(b.Hcenter()) {
			currentLine++
		}
		if currentLine >= len(tb.tlv) {
			currentLine--
			continue
		}
		l := tb.tlv[currentLine]
		bi := l.BigInitials()
		mh := l.MeanHeight()
		switch {
		case b.Height() <= 3*mh && (b.Height() <= 2*mh || l.Character(bi).Left() < b.Left()):
			l.ShiftCharacter(classify.NewCharacter(b), false)
		case l.Characters() == 0 || l.Character(minInt(bi+1, l.Characters()-1)).Left() > b.Hcenter():
			l.ShiftCharacter(classify.NewCharacter(b), true)
		}
	}

	// Insert short blobs: seek up then down.
	currentLine = 0
	for _, b := range pendingShort {
		for currentLine > 0 && b.Bottom() < tb.tlv[currentLine].Top(b.Hcenter()) {
			currentLine--
		}
		temp := maxInt(0, currentLine-1)
		for currentLine < len(tb.tlv) && b.Top() > tb.tlv[currentLine].Bottom(b.Hcenter()) {
			currentLine++
		}
		if currentLine >= len(tb.tlv) {
			currentLine--
			l := tb.tlv[currentLine]
			p := l.CharacterAt(b.Hcenter())
			if b.Top() > l.Bottom(b.Hcenter())+l.Height()/2 &&
				(p == nil || b.Top() > p.Bottom()+l.Height()/2) {
				continue
			}
			temp = currentLine
		}
		if currentLine-temp > 1 {
			temp = currentLine - 1
		}
		if currentLine != temp &&
			2*(b.Top()-tb.tlv[temp].Bottom(b.Hcenter())) < tb.tlv[currentLine].Top(b.Hcenter())-b.Bottom() {
			currentLine = temp
		}
		tb.tlv[currentLine].ShiftCharacter(classify.NewCharacter(b), false)
	}

	// Remove lines clipped at the top or bottom of the page.
	if len(tb.tlv) > 2 {
		lp := tb.tlv[len(tb.tlv)-1]
		c := 0
		for i := 0; i < lp.Characters(); i++ {
			if lp.Character(i).Bottom() >= page.Bottom() {
				c++
				if 2*c >= lp.Characters() {
					tb.deleteLine(len(tb.tlv) - 1)
					break
				}
			}
		}

		lp = tb.tlv[0]
		top := maxInt(page.Top(), 1)
		c = 0
		for i := 0; i < lp.Characters(); i++ {
			if lp.Character(i).Top() <= top {
				c++
				if 2*c >= lp.Characters() {
					tb.deleteLine(0)
					break
				}
			}
		}
	}

	// Second pass: join lines of i-dots and tildes onto their base line.
	for cur := 0; cur < len(tb.tlv)-1; {
		joined := false
		line1, line2 := tb.tlv[cur], tb.tlv[cur+1]
		if line1.Characters() <= 2*line2.Characters() && 2*line1.MeanHeight() < line2.MeanHeight() {
			for i1 := 0; !joined && i1 < line1.Characters(); i1++ {
				c1 := line1.Character(i1)
				if 2*c1.Height() >= line2.MeanHeight() {
					continue
				}
				for i2 := 0; !joined && i2 < line2.Characters(); i2++ {
					c2 := line2.Character(i2)
					if c2.Right() < c1.Left() {
						continue
					}
					if c2.Left() > c1.Right() {
						break
					}
					if (c2.IncludesHcenter(c1.Rectangle) || c1.IncludesHcenter(c2.Rectangle)) &&
						c2.Top()-c1.Bottom() < line2.MeanHeight() {
						joined = true
						line2.Join(line1)
						tb.deleteLine(cur)
					}
				}
			}
		}
		if !joined {
			cur++
		}
	}

	joinCharacters(tb.tlv)

	for _, l := range tb.tlv {
		l.VerifyBigInitials()
	}

	// Remove noise lines: a thin middle line sandwiched between two
	// similarly tall, well-populated lines.
	if len(tb.tlv) >= 3 {
		for i := 0; i+2 < len(tb.tlv); i++ {
			line1, line2, line3 := tb.tlv[i], tb.tlv[i+1], tb.tlv[i+2]
			if line2.Characters() > 2 || line1.Characters() < 4 || line3.Characters() < 4 {
				continue
			}
			if !feats.Similar(line1.Height(), line3.Height(), 10, 1) {
				continue
			}
			if 8*line2.Height() > line1.Height()+line3.Height() {
				continue
			}
			tb.deleteLine(i + 1)
		}
	}

	// Remove leading and trailing noise characters.
	for _, l := range tb.tlv {
		if l.BigInitials() == 0 && l.Characters() > 2 {
			c0, c1, c2 := l.Character(0), l.Character(1), l.Character(2)
			if len(c0.Blobs) == 1 &&
				4*c0.Size() < c1.Size() && c1.Left()-c0.Right() > 2*l.Height() &&
				4*c0.Size() < c2.Size() && c2.Left()-c1.Right() < l.Height() {
				l.DeleteCharacter(0)
			}
		}
		if l.Characters() > 2 {
			n := l.Characters()
			c0, c1, c2 := l.Character(n-1), l.Character(n-2), l.Character(n-3)
			if len(c0.Blobs) == 1 &&
				4*c0.Size() < c1.Size() && c0.Left()-c1.Right() > 2*l.Height() &&
				4*c0.Size() < c2.Size() && c1.Left()-c2.Right() < l.Height() {
				l.DeleteCharacter(l.Characters() - 1)
			}
		}
	}

	for _, l := range tb.tlv {
		l.InsertSpaces()
	}

	return tb
}

// Recognize runs both recognition passes over every line, applies f if
// active, drops any line left with no recognized character, then
// inserts blank lines where the vertical spacing implies a skipped row.
func (tb *Textblock) Recognize(cs classify.Charset, f filter.Filter) {
	for _, l := range tb.tlv {
		l.Recognize1(cs)
		l.Recognize2(cs)
	}

	if f.Type() != filter.None {
		for _, l := range tb.tlv {
			l.ApplyFilter(f)
		}
	}

	for i := len(tb.tlv) - 1; i >= 0; i-- {
		line := tb.tlv[i]
		recognized := false
		for j := 0; j < line.Characters(); j++ {
			if len(line.Character(j).Guesses) > 0 {
				recognized = true
				break
			}
		}
		if !recognized {
			tb.deleteLine(i)
		}
	}

	if len(tb.tlv) >= 3 {
		minVdistance := (tb.tlv[len(tb.tlv)-1].MeanVcenter() - tb.tlv[0].MeanVcenter()) / (len(tb.tlv) - 1)
		for i := 0; i+1 < len(tb.tlv); i++ {
			line1, line2 := tb.tlv[i], tb.tlv[i+1]
			if !feats.Similar(line1.Characters(), line2.Characters(), 50, 1) ||
				!feats.Similar(line1.Width(), line2.Width(), 30, 1) {
				continue
			}
			vdistance := line2.MeanVcenter() - line1.MeanVcenter()
			if vdistance >= minVdistance {
				continue
			}
			mh1, mh2 := line1.MeanHeight(), line2.MeanHeight()
			if mh1 < 10 || mh2 < 10 {
				continue
			}
			if feats.Similar(mh1, mh2, 20, 1) && 2*vdistance > mh1+mh2 {
				minVdistance = vdistance
			}
		}
		if minVdistance > 0 {
			for i := 0; i+1 < len(tb.tlv); i++ {
				line1, line2 := tb.tlv[i], tb.tlv[i+1]
				vdistance := line2.MeanVcenter() - line1.MeanVcenter() - minVdistance
				for 2*vdistance > minVdistance {
					i++
					tb.insertLine(i)
					vdistance -= minVdistance
				}
			}
		}
	}
}

// Textline returns the i-th line.
func (tb *Textblock) Textline(i int) *textline.Textline { return tb.tlv[i] }

// Textlines reports how many lines the block holds.
func (tb *Textblock) Textlines() int { return len(tb.tlv) }

// Characters reports the total character count across every line.
func (tb *Textblock) Characters() int {
	total := 0
	for _, l := range tb.tlv {
		total += l.Characters()
	}
	return total
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
