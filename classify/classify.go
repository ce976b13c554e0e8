// Package classify recognizes a Character (one or more joined Blobs) as a
// Unicode code point, by dispatching on blob count and the primary blob's
// hole count and walking a decision tree over Profile and Features
// predicates. It is a representative rule cascade, not the exhaustive
// template-matching battery of the system it is modeled on: every branch
// point of the dispatch is implemented, but each leaf covers a handful of
// canonical shapes per SPEC_FULL.md §4.4 rather than every glyph variant.
package classify

import (
	"github.com/wudi/ocrkit/blob"
	"github.com/wudi/ocrkit/feats"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/profile"
	"github.com/wudi/ocrkit/rect"
	"github.com/wudi/ocrkit/ucs"
)

// Charset gates which non-ASCII code points a leaf may emit.
type Charset int

const (
	ASCII Charset = iota
	ISO885909 // iso-8859-9 (Turkish)
	ISO885915 // iso-8859-15 (Latin-9, adds the euro sign)
)

// Enabled reports whether cs is other. Charsets are compared for equality;
// no charset counts as including another.
func (cs Charset) Enabled(other Charset) bool { return cs == other }

// Guess is a candidate code point and its preference rank: lower value is
// preferred, and gv[0].Code < 0 marks a merged-character sentinel that
// encodes -(blobIndex+1), asking the line pass to split the character.
type Guess struct {
	Code  rune
	Value int
}

// Character is one or more Blobs recognized (or pending recognition) as a
// single code point.
type Character struct {
	rect.Rectangle
	Blobs   []*blob.Blob
	Guesses []Guess
}

// NewCharacter starts a Character from its first blob.
func NewCharacter(b *blob.Blob) *Character {
	return &Character{Rectangle: b.Rectangle, Blobs: []*blob.Blob{b}}
}

// MainBlob returns the first (and usually only) blob.
func (c *Character) MainBlob() *blob.Blob { return c.Blobs[0] }

// ShiftBlob appends an additional blob (an accent mark, a dotted i, a
// second stroke of a merged glyph) and grows the bounding box to match.
func (c *Character) ShiftBlob(b *blob.Blob) {
	c.Blobs = append(c.Blobs, b)
	c.AddRectangle(b.Rectangle)
}

// Join absorbs another Character's blobs into c, growing c's bounding box
// and discarding o's own guesses (the caller re-recognizes the merged
// shape). Used when two vertically-composite pieces (i-dot, tilde, accent)
// turn out to be one glyph.
func (c *Character) Join(o *Character) {
	c.Blobs = append(c.Blobs, o.Blobs...)
	c.AddRectangle(o.Rectangle)
	c.Guesses = nil
}

// AddGuess appends a candidate code point.
func (c *Character) AddGuess(code rune, value int) {
	c.Guesses = append(c.Guesses, Guess{code, value})
}

// ClearGuesses discards every candidate.
func (c *Character) ClearGuesses() { c.Guesses = nil }

// OnlyGuess replaces every candidate with a single one.
func (c *Character) OnlyGuess(code rune, value int) {
	c.Guesses = []Guess{{code, value}}
}

// InsertGuess inserts a candidate at position i.
func (c *Character) InsertGuess(i int, code rune, value int) {
	c.Guesses = append(c.Guesses, Guess{})
	copy(c.Guesses[i+1:], c.Guesses[i:])
	c.Guesses[i] = Guess{code, value}
}

// DeleteGuess removes the candidate at position i.
func (c *Character) DeleteGuess(i int) {
	c.Guesses = append(c.Guesses[:i], c.Guesses[i+1:]...)
}

// SwapGuesses exchanges the rank of two candidates.
func (c *Character) SwapGuesses(i, j int) { c.Guesses[i], c.Guesses[j] = c.Guesses[j], c.Guesses[i] }

// ApplyFilter keeps or demotes this Character's guesses per f: "letters"/
// "numbers" swap in the best alphabetic/numeric guess already on the
// candidate list, or fall back to the nearest lookalike digit/letter;
// the "_only" variants additionally drop the character entirely (zero
// guesses) when no such guess could be produced.
func (c *Character) ApplyFilter(f filter.Filter) {
	if f.Type() == filter.None {
		return
	}
	var code rune
	if len(c.Guesses) > 0 {
		code = c.Guesses[0].Code
	}

	switch f.Type() {
	case filter.Letters, filter.LettersOnly:
		if ucs.IsAlpha(code) || ucs.IsSpace(code) {
			return
		}
		for i := 1; i < len(c.Guesses); i++ {
			if ucs.IsAlpha(c.Guesses[i].Code) {
				c.SwapGuesses(0, i)
				break
			}
		}
		if len(c.Guesses) > 0 && !ucs.IsAlpha(c.Guesses[0].Code) {
			c.Guesses[0].Code = ucs.ToNearestLetter(c.Guesses[0].Code)
		}
		if f.Type() == filter.LettersOnly &&
			(len(c.Guesses) == 0 || !ucs.IsAlpha(c.Guesses[0].Code)) {
			c.ClearGuesses()
		}
	case filter.Numbers, filter.NumbersOnly:
		if ucs.IsDigit(code) || ucs.IsSpace(code) {
			return
		}
		for i := 1; i < len(c.Guesses); i++ {
			if ucs.IsDigit(c.Guesses[i].Code) {
				c.SwapGuesses(0, i)
				break
			}
		}
		if len(c.Guesses) > 0 && !ucs.IsDigit(c.Guesses[0].Code) {
			c.Guesses[0].Code = ucs.ToNearestDigit(c.Guesses[0].Code)
		}
		if f.Type() == filter.NumbersOnly &&
			(len(c.Guesses) == 0 || !ucs.IsDigit(c.Guesses[0].Code)) {
			c.ClearGuesses()
		}
	}
}

// Maybe reports whether code appears anywhere among the candidates.
func (c *Character) Maybe(code rune) bool {
	for _, g := range c.Guesses {
		if g.Code == code {
			return true
		}
	}
	return false
}

// SetMergedGuess records that this Character is probably two glyphs glued
// together: code1 on the left of splitCol, code2 on the right, both
// drawn from blob blobIndex. The sentinel code -(blobIndex+1) in
// Guesses[0].Code asks a later line pass to perform the split.
func (c *Character) SetMergedGuess(code1 rune, splitCol int, code2 rune, blobIndex int) bool {
	if blobIndex < 0 || blobIndex >= len(c.Blobs) {
		return false
	}
	c.Guesses = []Guess{
		{-rune(blobIndex + 1), splitCol},
		{code1, 0},
		{code2, 0},
	}
	return true
}

// Recognize1 makes a first, context-free attempt at recognizing c within
// charbox (the line's nominal character cell), honoring the code points
// cs allows.
func Recognize1(cs Charset, charbox rect.Rectangle, c *Character) {
	switch len(c.Blobs) {
	case 1:
		recognize11(cs, charbox, c)
	case 2:
		recognize12(cs, charbox, c)
	case 3:
		recognize13(cs, charbox, c)
	}
}

func recognize11(cs Charset, charbox rect.Rectangle, c *Character) {
	b := c.MainBlob()
	switch b.Holes() {
	case 0:
		recognize110(cs, charbox, c)
	case 1:
		recognize111(cs, charbox, c)
	case 2:
		recognize112(charbox, c)
	}
}

// recognize110 classifies hole-free single-blob shapes: punctuation
// solids, straight strokes, and the test_misc letter battery.
func recognize110(cs Charset, charbox rect.Rectangle, c *Character) {
	b := c.MainBlob()
	f := feats.New(b)

	if code := f.TestMisc(charbox); code != 0 {
		c.AddGuess(code, 0)
		return
	}

	if code := f.TestG(); code != 0 {
		c.AddGuess(code, 0)
		return
	}
	if code := f.TestC(); code != 0 {
		c.AddGuess(code, 0)
		return
	}

	// A 3-minima bottom profile with a clear gap at hcenter spanning three
	// rows is the 'rn' ligature shape: two strokes the segmenter joined
	// into one blob. Ask the line pass to split it instead of guessing a
	// single code point.
	if f.Bp.Minima(0) == 3 &&
		b.ID(b.Vcenter(), b.Hcenter()) == 0 &&
		b.ID(b.Vcenter()-1, b.Hcenter()) == 0 &&
		b.ID(b.Vcenter()+1, b.Hcenter()) == 0 {
		row := b.Vpos(95)
		col := b.SeekRight(row, b.Left(), true)
		col = b.SeekRight(row, col+1, false)
		col = b.SeekRight(row, col+1, true)
		if col > b.Left() && col < b.Right() && c.SetMergedGuess('r', col, 'n', 0) {
			return
		}
	}

	if dy, ok := f.Lp.Straight(); ok {
		switch {
		case absInt(dy) <= 1:
			c.AddGuess('|', 0)
		case dy > 0:
			c.AddGuess('/', 0)
		default:
			c.AddGuess('\\', 0)
		}
		return
	}

	area := b.Area()
	density := (100 * area) / maxInt(1, b.Size())
	if density >= 70 {
		switch {
		case b.Width() > 2*b.Height():
			if b.VIncludesRow(charbox.Vcenter()) {
				c.AddGuess('-', 0)
			} else {
				c.AddGuess('_', 0)
			}
		case b.Height() > 2*b.Width():
			c.AddGuess('|', 0)
		case b.Bottom() < charbox.Vcenter():
			c.AddGuess('\'', 0)
		case b.Top() > charbox.Vcenter():
			c.AddGuess(',', 0)
		default:
			c.AddGuess('.', 0)
		}
		return
	}

	if f.Hbars() >= 1 && b.Height() > b.Width() {
		switch f.Hbars() {
		case 1:
			if f.Tp.IsFlat() {
				c.AddGuess('L', 0)
			} else {
				c.AddGuess('T', 0)
			}
		default:
			c.AddGuess('E', 0)
		}
		return
	}

	if f.Vbars() >= 1 && b.Height() <= b.Width() {
		c.AddGuess('=', 0)
		return
	}

	if cs.Enabled(ISO885915) && b.TestQ() {
		c.AddGuess(ucsEuro, 0)
		return
	}
}

// recognize111 classifies single-hole letters: the hole's position
// within the blob picks the family (o/d/b/p/q-shaped).
func recognize111(cs Charset, charbox rect.Rectangle, c *Character) {
	_ = cs
	b := c.MainBlob()
	h := b.Hole(0)

	hcenter, vcenter := h.Hcenter(), h.Vcenter()
	upper := vcenter < b.Vcenter()
	left := hcenter < b.Hcenter()

	switch {
	case b.Height() <= 6 || (b.Width() <= b.Height() && !upper && !left):
		c.AddGuess('o', 0)
	case upper && left:
		c.AddGuess('q', 0)
	case upper && !left:
		c.AddGuess('p', 0)
	case !upper && left:
		c.AddGuess('d', 0)
	case !upper && !left:
		c.AddGuess('b', 0)
	}

	if b.Height() > charbox.Height() {
		c.InsertGuess(0, toUpper(c.Guesses[len(c.Guesses)-1].Code), 0)
	}
}

// recognize112 classifies two-hole shapes: the canonical digits and
// letters that draw two enclosed counters ('8', 'B', 'g', ...) as well as
// the looser pairings ('a', 'e', 'Q', 's', '&', ampersand-like ties) that
// a scanned font draws with two holes in one blob.
func recognize112(charbox rect.Rectangle, c *Character) {
	b := c.MainBlob()
	h1, h2 := b.Hole(0), b.Hole(1)
	lp := profile.New(&b.Bitmap, profile.Left)
	tp := profile.New(&b.Bitmap, profile.Top)
	rp := profile.New(&b.Bitmap, profile.Right)
	bp := profile.New(&b.Bitmap, profile.Bottom)

	// Both holes vertically centred and aligned: a merged 'm' or 'w'.
	if 10*absInt(h2.Vcenter()-h1.Vcenter()) <= b.Height() &&
		h1.IsVcentredIn(b.Rectangle) && h2.IsVcentredIn(b.Rectangle) {
		if b.Bottom()-h1.Bottom() <= h1.Top()-b.Top() &&
			b.Bottom()-h2.Bottom() <= h2.Top()-b.Top() && bp.IsFlats() {
			c.AddGuess('m', 0)
			return
		}
		if 5*absInt(h1.Bottom()-b.Vcenter()) <= b.Height() &&
			5*absInt(h2.Bottom()-b.Vcenter()) <= b.Height() &&
			tp.IsFlats() && bp.Minima(0) == 2 {
			c.AddGuess('w', 0)
		}
		return
	}

	if !h1.IsHcentredIn(b.Rectangle) || !h2.IsHcentredIn(b.Rectangle) {
		return
	}
	if h1.Left() > b.Hcenter() && h2.Left() > b.Hcenter() {
		return
	}
	if h1.Right() < b.Hpos(40) && h2.Right() < b.Hpos(40) {
		return
	}
	if h1.Top() > b.Vcenter() || h2.Bottom() < b.Vcenter() {
		return
	}

	a1, a2 := h1.Area(), h2.Area()

	{
		w := b.Right() - minInt(b.Hcenter(), minInt(h1.Hcenter(), h2.Hcenter()))
		for i := h1.Bottom() - b.Top() + 1; i < h2.Top()-b.Top(); i++ {
			if rp.At(i) > w {
				c.AddGuess('g', 2)
				return
			}
		}
	}

	if feats.Similar(a1, a2, 50, 0) {
		if h1.Bottom() > b.Vcenter() && h2.Top() < b.Vcenter() &&
			h1.HOverlaps(h2.Rectangle) && !h1.HIncludes(h2.Rectangle) {
			c.AddGuess('0', 0)
			return
		}

		if h1.Bottom() <= h2.Top() {
			if hdiff, ok := b.BottomHook(); ok && hdiff > b.Height()/2 {
				if hdiff2, ok2 := b.TopHook(); ok2 && hdiff2 > b.Height()/2 {
					c.AddGuess('s', 0)
					return
				}
			}

			if lp.IsFlats() && (lp.IsTip() || (lp.IsFlat() && b.TestBD())) {
				c.AddGuess('B', 0)
				return
			}

			col1 := h1.SeekLeft(h1.Bottom(), h1.Right()+1, false) - 1
			col2 := h2.SeekRight(h2.Top(), h2.Left()-1, false) + 1
			if col1 <= col2 {
				if lp.IsConvex() || lp.IsPit() {
					c.AddGuess('e', 1)
				} else if !rp.IsCtip(50) && tp.Minima(0) == 1 {
					c.AddGuess('a', 1)
				}
				if bp.IsTpit() {
					c.AddGuess('\'', 0)
					return
				}
			}

			if b.Hcenter() > h1.Hcenter() && b.Hcenter() > h2.Hcenter() &&
				(b.Hcenter() >= h1.Right() || b.Hcenter() >= h2.Right()) {
				c.AddGuess('&', 0)
				return
			}

			for row := h1.Bottom() + 1; row < h2.Top(); row++ {
				if !b.GetBit(row, b.Hcenter()) {
					c.AddGuess('g', 0)
					return
				}
			}

			if charbox.Bottom() > h2.Vcenter() && (bp.IsConvex() || (bp.IsPit() && tp.IsPit())) {
				if b.Top() >= charbox.Top() && b.Height() <= charbox.Height() {
					if (lp.IsPit() || lp.IsConvex()) && (!rp.IsPit() || h2.Right() > h1.Right()) {
						c.AddGuess('e', 1)
					} else if b.Right()-rp.At(rp.Pos(50)) > h1.Right() && !rp.IsCtip(50) {
						c.AddGuess('a', 1)
					}
				}
				c.AddGuess('8', 0)
				return
			}

			if lp.Minima(0) == 2 && rp.Minima(0) == 1 {
				if charbox.Vcenter() < h1.Bottom() && charbox.Bottom() < h2.Bottom() {
					c.AddGuess('g', 0)
				} else {
					c.AddGuess('a', 0)
				}
				return
			}

			if charbox.Vcenter() > h1.Top() &&
				(charbox.Vcenter() < h1.Bottom() || charbox.Bottom() < h2.Vcenter()) {
				c.AddGuess('g', 2)
			}
			c.AddGuess('B', 1)
			c.AddGuess('a', 0)
			return
		}
	}

	if a1 > a2 && h1.HOverlaps(h2.Rectangle) {
		if !h1.VOverlaps(h2.Rectangle) {
			if h2.Left() > b.Hcenter() && h2.Bottom() < b.Bottom()-h1.Height() {
				c.AddGuess('9', 0)
			} else {
				c.AddGuess('g', 0)
			}
			return
		}
		if h1.HIncludes(h2.Rectangle) {
			c.AddGuess('Q', 0)
		}
		return
	}

	if a1 < a2 && tp.Minima(0) == 1 {
		if h1.HOverlaps(h2.Rectangle) {
			if rp.Minima(0) == 1 {
				if 2*h1.Height() > h2.Height() && 2*h1.Width() > h2.Width() &&
					3*h2.Width() >= b.Width() && !lp.IsCtip(50) {
					if lp.IsPit() && lp.IsConvex() {
						c.AddGuess('6', 0)
					} else {
						c.AddGuess('B', 0)
					}
				} else if h2.Right() < b.Hcenter() {
					c.AddGuess('&', 0)
				} else {
					c.AddGuess('a', 0)
				}
				return
			}
			if !h1.VOverlaps(h2.Rectangle) && h1.Right() < b.Hcenter() && h1.Top() > b.Top()+h1.Height() {
				c.AddGuess('6', 0)
				return
			}
		}
		if h1.Bottom() < h2.Top() {
			c.AddGuess('&', 0)
		}
	}
}

// recognize12 classifies two-blob characters: a dotted 'i', the ':' and ';'
// punctuation pairs, and '"' for any other pair.
func recognize12(cs Charset, charbox rect.Rectangle, c *Character) {
	_ = cs
	upper, lower := c.Blobs[0], c.Blobs[1]
	if lower.Top() < upper.Top() {
		upper, lower = lower, upper
	}

	if upper.Area() <= 4 && upper.Width() <= lower.Width() && upper.IncludesHcenter(lower.Rectangle) {
		c.AddGuess('i', 0)
		return
	}

	if upper.Area() <= 3 && lower.Area() <= 3 &&
		upper.Bottom() < charbox.Vcenter() && lower.Top() > charbox.Vcenter() {
		c.AddGuess(':', 0)
		return
	}

	if upper.Bottom() < charbox.Vcenter() && lower.Area() > upper.Area() {
		c.AddGuess(';', 0)
		return
	}

	c.AddGuess('"', 0)
}

// recognize13 classifies three-blob characters such as an ellipsis or a
// percent sign.
func recognize13(cs Charset, charbox rect.Rectangle, c *Character) {
	_ = cs
	a, b2, d := c.Blobs[0], c.Blobs[1], c.Blobs[2]
	allSmall := a.Area() <= 3 && b2.Area() <= 3 && d.Area() <= 3
	sameRow := absInt(a.Vcenter()-b2.Vcenter()) <= 1 && absInt(b2.Vcenter()-d.Vcenter()) <= 1
	if allSmall && sameRow && a.Bottom() >= charbox.Vcenter() {
		c.AddGuess('…', 0)
		return
	}
	c.AddGuess('%', 0)
}

const ucsEuro = 0x20AC

func toUpper(code rune) rune {
	if code >= 'a' && code <= 'z' {
		return code - ('a' - 'A')
	}
	return code
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

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
