// Package textpage turns a binarized page into Textblocks: a single
// top-to-bottom, left-to-right pixel scan grows Blobs incrementally
// (merging as soon as two touch), a battery of noise filters discards
// speckle and picture/frame regions, an optional layout pass groups the
// surviving blobs into reading-order zones by mutual proximity, and each
// zone becomes one Textblock.
package textpage

import (
	"sort"

	"github.com/wudi/ocrkit/blob"
	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/mask"
	"github.com/wudi/ocrkit/ocrerr"
	"github.com/wudi/ocrkit/pageimage"
	"github.com/wudi/ocrkit/rect"
	"github.com/wudi/ocrkit/textblock"
)

// zone is one candidate reading region: its Mask outline plus the blobs
// assigned to it so far.
type zone struct {
	mask *mask.Mask
	blobs []*blob.Blob
}

func newZone(re rect.Rectangle) *zone { return &zone{mask: mask.New(re)} }

func (z *zone) join(o *zone) {
	z.mask.AddMask(o.mask)
	z.blobs = append(z.blobs, o.blobs...)
	o.blobs = nil
}

// Textpage is a Rectangle plus the ordered Textblocks found on the page.
type Textpage struct {
	rect.Rectangle
	name string
	tbv  []*textblock.Textblock
}

// New scans img for connected components, filters noise, optionally
// groups the result into layout zones, and recognizes a Textblock per
// zone using cs/f. name labels the page for xprint-style reporting.
func New(img *pageimage.PageImage, name string, cs classify.Charset, f filter.Filter, layout bool) *Textpage {
	tp := &Textpage{Rectangle: img.Rectangle, name: name}

	zones := scanPage(img, layout)
	for _, z := range zones {
		tb := textblock.New(img.Rectangle, z.mask.Rectangle, z.blobs)
		if tb.Textlines() > 0 {
			tb.Recognize(cs, f)
		}
		if tb.Textlines() > 0 {
			tp.tbv = append(tp.tbv, tb)
		}
	}
	return tp
}

// Textblock returns the i-th block.
func (tp *Textpage) Textblock(i int) *textblock.Textblock {
	if i < 0 || i >= len(tp.tbv) {
		panic(ocrerr.New(ocrerr.InternalInvariant, "textpage.Textblock", errIndexOutOfBounds))
	}
	return tp.tbv[i]
}

// Textblocks reports how many blocks the page holds.
func (tp *Textpage) Textblocks() int { return len(tp.tbv) }

// Textlines sums the line count across every block.
func (tp *Textpage) Textlines() int {
	total := 0
	for _, tb := range tp.tbv {
		total += tb.Textlines()
	}
	return total
}

// Characters sums the character count across every block.
func (tp *Textpage) Characters() int {
	total := 0
	for _, tb := range tp.tbv {
		total += tb.Characters()
	}
	return total
}

type indexOutOfBoundsErr struct{}

func (indexOutOfBoundsErr) Error() string { return "index out of bounds" }

var errIndexOutOfBounds = indexOutOfBoundsErr{}

// scanPage runs the connectivity scan, the noise filters, hole-finding,
// and (when requested and the page is large enough) the layout pass; it
// always returns at least the single whole-page zone when layout is
// skipped or declined.
func scanPage(img *pageimage.PageImage, layout bool) []*zone {
	blobs := connect(img)

	if len(blobs) > 3 {
		blobs = ignoreWideBlobs(img.Rectangle, blobs)
		blobs = ignoreSmallBlobs(blobs)
		blobs = ignoreAbnormalBlobs(blobs)
		removeTopBottomNoise(blobs)
		removeLeftRightNoise(blobs)
	}

	var zones []*zone
	if layout && img.Width() > 200 && img.Height() > 200 && len(blobs) > 3 {
		zones = analyseLayout(blobs)
		if len(zones) > 1 {
			for _, z := range zones {
				z.blobs = ignoreWideBlobs(z.mask.Rectangle, z.blobs)
			}
		}
	} else {
		z := newZone(img.Rectangle)
		z.blobs = blobs
		zones = []*zone{z}
	}

	for _, z := range zones {
		for _, b := range z.blobs {
			b.FindHoles()
		}
	}
	return zones
}

// connect performs the single-pass, 8-connectivity blob scan: each black
// pixel joins the blob already touching it to the left, diagonally
// upper-left, directly above, or diagonally upper-right (in that
// preference order), or else starts a new one; two blobs discovered to
// touch through the same pixel are merged on the spot.
func connect(img *pageimage.PageImage) []*blob.Blob {
	re := img.Rectangle
	th := img.Threshold()
	var blobs []*blob.Blob
	width := re.Width()
	oldData := make([]*blob.Blob, width)
	newData := make([]*blob.Blob, width)

	for row := re.Top(); row <= re.Bottom(); row++ {
		oldData, newData = newData, oldData
		for col := re.Left(); col <= re.Right(); col++ {
			dcol := col - re.Left()
			if !img.GetBitAt(row, col, th) {
				newData[dcol] = nil
				continue
			}
			var lp, ltp, tp, rtp *blob.Blob
			if dcol > 0 {
				lp = newData[dcol-1]
				ltp = oldData[dcol-1]
			}
			tp = oldData[dcol]
			if col < re.Right() {
				rtp = oldData[dcol+1]
			}
			var p *blob.Blob
			switch {
			case lp != nil:
				p = lp
				p.AddPoint(row, col)
			case ltp != nil:
				p = ltp
				p.AddPoint(row, col)
			case tp != nil:
				p = tp
				p.AddPoint(row, col)
			case rtp != nil:
				p = rtp
				p.AddPoint(row, col)
			default:
				p = blob.New(col, row, col, row)
				p.SetBit(row, col, true)
				blobs = append(blobs, p)
			}
			newData[dcol] = p
			if rtp != nil && p != rtp {
				blobs = joinBlobs(blobs, oldData, newData, p, rtp, dcol)
			}
		}
	}
	return blobs
}

// joinBlobs merges p2 into p1 (the earlier-started blob), rewriting every
// reference to p2 still live in the two scan-line buffers.
func joinBlobs(blobs []*blob.Blob, oldData, newData []*blob.Blob, p1, p2 *blob.Blob, i int) []*blob.Blob {
	if p1.Top() > p2.Top() {
		p1, p2 = p2, p1
		replaceUpto(newData, i+1, p2, p1)
	} else {
		replaceFrom(oldData, i, p2, p1)
	}

	idx := -1
	for j := len(blobs) - 1; j >= 0; j-- {
		if blobs[j] == p2 {
			idx = j
			break
		}
	}
	if idx < 0 {
		panic(ocrerr.New(ocrerr.InternalInvariant, "textpage.joinBlobs", errLostBlob))
	}
	blobs = append(blobs[:idx], blobs[idx+1:]...)

	p1.AddBitmap(&p2.Bitmap)
	return blobs
}

func replaceFrom(v []*blob.Blob, from int, old, neu *blob.Blob) {
	for i := from; i < len(v); i++ {
		if v[i] == old {
			v[i] = neu
		}
	}
}

func replaceUpto(v []*blob.Blob, upto int, old, neu *blob.Blob) {
	if upto > len(v) {
		upto = len(v)
	}
	for i := 0; i < upto; i++ {
		if v[i] == old {
			v[i] = neu
		}
	}
}

type lostBlobErr struct{}

func (lostBlobErr) Error() string { return "join_blobs, lost blob" }

var errLostBlob = lostBlobErr{}

// ignoreAbnormalBlobs drops blobs whose aspect ratio is implausible even
// before reaching the textblock height-band classifier.
func ignoreAbnormalBlobs(blobs []*blob.Blob) []*blob.Blob {
	kept := blobs[:0]
	for _, b := range blobs {
		if b.Height() > 35*b.Width() || b.Width() > 25*b.Height() {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// ignoreSmallBlobs drops specks too small to plausibly be a glyph stroke.
func ignoreSmallBlobs(blobs []*blob.Blob) []*blob.Blob {
	kept := blobs[:0]
	for _, b := range blobs {
		if b.Height() > 4 || b.Width() > 4 ||
			((b.Height() > 2 || b.Width() > 2) && b.Area() > 5) {
			kept = append(kept, b)
		}
	}
	return kept
}

// removeTopBottomNoise trims a one-pixel-wide speck row off the top or
// bottom edge of a tall blob, the scan artifact a single stray touching
// pixel leaves behind.
func removeTopBottomNoise(blobs []*blob.Blob) {
	for _, b := range blobs {
		if b.Height() < 11 {
			continue
		}
		c := 0
		for col := b.Left(); col <= b.Right(); col++ {
			if b.GetBit(b.Top(), col) {
				c++
				if c > 1 {
					break
				}
			}
		}
		if c <= 1 {
			b.SetTop(b.Top() + 1)
		}
		c = 0
		for col := b.Left(); col <= b.Right(); col++ {
			if b.GetBit(b.Bottom(), col) {
				c++
				if c > 1 {
					break
				}
			}
		}
		if c <= 1 {
			b.SetBottom(b.Bottom() - 1)
		}
	}
}

// removeLeftRightNoise is removeTopBottomNoise's horizontal counterpart.
func removeLeftRightNoise(blobs []*blob.Blob) {
	for _, b := range blobs {
		if b.Width() < 6 {
			continue
		}
		c := 0
		for row := b.Top(); row <= b.Bottom(); row++ {
			if b.GetBit(row, b.Left()) {
				c++
				if c > 1 {
					break
				}
			}
		}
		if c <= 1 {
			b.SetLeft(b.Left() + 1)
		}
		c = 0
		for row := b.Top(); row <= b.Bottom(); row++ {
			if b.GetBit(row, b.Right()) {
				c++
				if c > 1 {
					break
				}
			}
		}
		if c <= 1 {
			b.SetRight(b.Right() - 1)
		}
	}
}

// meanBlobHeight is the same 10%-90% trimmed-mean histogram textblock
// uses per cut, applied once over an entire blob population: blobs
// shorter than 10px or far wider than tall are excluded from the sample
// unless excluding all of them would leave nothing to average.
func meanBlobHeight(blobs []*blob.Blob) int {
	samples := 0
	var heightDistrib []int
	grow := func(h int) {
		for h >= len(heightDistrib) {
			heightDistrib = append(heightDistrib, 0)
		}
		heightDistrib[h]++
		samples++
	}
	for _, b := range blobs {
		if b.Height() < 10 || b.Width() >= 3*b.Height() {
			continue
		}
		grow(b.Height())
	}
	if samples == 0 {
		for _, b := range blobs {
			grow(b.Height())
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
	return meanHeight
}

// ignoreWideBlobs drops or shrinks blobs spanning most of re's width:
// thin grid lines and picture frames are discarded outright, a picture
// that fills the region clears every other blob in it too (nothing in a
// photograph is text), and blobs a frame encloses are dropped as noise
// once the frame itself is confirmed.
func ignoreWideBlobs(re rect.Rectangle, blobs []*blob.Blob) []*blob.Blob {
	for i := 0; i < len(blobs); {
		b := blobs[i]
		if 2*b.Width() < re.Width() {
			i++
			continue
		}
		blobs = append(blobs[:i], blobs[i+1:]...)

		if 4*b.Area() <= 3*b.Size() {
			count := 0
			for j := i; j < len(blobs); j++ {
				if blobs[j].Top() > b.Bottom() {
					break
				}
				if blobs[j].Size() >= 16 {
					count++
				}
			}
			if count <= b.Size()/400 {
				if 4*b.Area() <= b.Size() {
					continue // thin grid or frame
				}
				b.FindHoles()
				frame := false
				if b.Holes() < minInt(b.Height(), b.Width()) {
					for j := 0; j < b.Holes(); j++ {
						h := b.Hole(j)
						if 4*h.Size() >= b.Size() && 4*h.Area() >= b.Size() {
							frame = true
							break
						}
					}
				}
				if frame {
					continue
				}
			}
		}

		if 5*b.Width() > 4*re.Width() && 5*b.Height() > 4*re.Height() {
			return nil // picture fills the region: nothing here is text
		}

		for j := len(blobs); j > i; {
			j--
			if b.Includes(blobs[j].Rectangle) {
				blobs = append(blobs[:j], blobs[j+1:]...)
			}
		}
	}
	return blobs
}

// analyseLayout groups blobs into reading zones by mutual mask distance,
// discarding outlier-tall blobs, then sorts zones into reading order and
// merges short runs of small, vertically-aligned zones (likely columns
// of the same paragraph the distance pass split too eagerly).
func analyseLayout(blobs []*blob.Blob) []*zone {
	if len(blobs) == 0 {
		return nil
	}
	meanHeight := meanBlobHeight(blobs)

	var zones []*zone
	z0 := newZone(blobs[0].Rectangle)
	z0.blobs = append(z0.blobs, blobs[0])
	zones = append(zones, z0)

	for i := 1; i < len(blobs); i++ {
		b := blobs[i]
		if b.Height() > 10*meanHeight {
			continue
		}
		first := -1
		for j := 0; j < len(zones); j++ {
			if zones[j].mask.Distance(b.Rectangle) < 2*meanHeight {
				if first < 0 {
					first = j
				} else {
					zones[first].join(zones[j])
					zones = append(zones[:j], zones[j+1:]...)
					j--
				}
			}
		}
		if first >= 0 {
			zones[first].mask.AddRectangle(b.Rectangle)
			zones[first].blobs = append(zones[first].blobs, b)
		} else {
			z := newZone(b.Rectangle)
			z.blobs = append(z.blobs, b)
			zones = append(zones, z)
		}
	}

	return sortAndMergeZones(zones, meanHeight)
}

// sortAndMergeZones orders each top-to-bottom "cut" of mutually
// non-overlapping zones left to right (by Rectangle.Precedes), then, for
// a cut with more than one zone, merges the whole run into one when
// every zone in it is small and close enough in height and distance to
// the first — the run is almost certainly one multi-column paragraph the
// distance pass over-split.
func sortAndMergeZones(zones []*zone, meanHeight int) []*zone {
	botmax := 0
	if len(zones) > 0 {
		botmax = zones[0].mask.Bottom()
	}
	var cuts []int
	for i := 1; i < len(zones); i++ {
		if zones[i].mask.Top() > botmax {
			cuts = append(cuts, i)
		}
		if b := zones[i].mask.Bottom(); b > botmax {
			botmax = b
		}
	}
	cuts = append(cuts, len(zones))

	begin := 0
	for cut := 0; cut < len(cuts); cut++ {
		end := cuts[cut]
		sort.SliceStable(zones[begin:end], func(a, b int) bool {
			return zones[begin+a].mask.Precedes(zones[begin+b].mask.Rectangle)
		})

		join := end-begin > 1
		for i := begin; join && i < end; i++ {
			if len(zones[i].blobs) > 80 ||
				zones[i].mask.VDistance(zones[begin].mask.Rectangle) >
					zones[i].mask.Height()+zones[begin].mask.Height() {
				join = false
			}
		}
		for i := begin; join && i < end; i++ {
			if zones[i].mask.Height() > 4*meanBlobHeight(zones[i].blobs) {
				join = false
			}
		}
		if join {
			for i := begin + 1; i < end; i++ {
				zones[begin].join(zones[i])
			}
			removed := end - begin - 1
			zones = append(zones[:begin+1], zones[end:]...)
			for i := cut; i < len(cuts); i++ {
				cuts[i] -= removed
			}
			begin++
		} else {
			begin = end
		}
	}
	return zones
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
