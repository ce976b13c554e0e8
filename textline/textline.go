// Package textline assembles a single row of Characters into a Textline:
// a Track (baseline geometry) plus the ordered Character slice it guides,
// with space/tab insertion and the two recognition passes (context-free,
// then context-aware) layered on top.
package textline

import (
	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/ocrerr"
	"github.com/wudi/ocrkit/rational"
	"github.com/wudi/ocrkit/rect"
	"github.com/wudi/ocrkit/track"
	"github.com/wudi/ocrkit/ucs"
)

// Textline is a Track plus the ordered Characters riding it.
type Textline struct {
	track.Track
	bigInitials int
	cv          []*classify.Character
}

// New returns an empty Textline.
func New() *Textline { return &Textline{} }

// SetTrack fits this line's baseline/topline to every non-space character
// that isn't one of the leading big initials.
func (tl *Textline) SetTrack() {
	rv := make([]rect.Rectangle, 0, len(tl.cv))
	for i := tl.bigInitials; i < len(tl.cv); i++ {
		if !tl.cv[i].Maybe(' ') {
			rv = append(rv, tl.cv[i].Rectangle)
		}
	}
	tl.Track.SetTrack(rv)
}

// VerifyBigInitials demotes any leading "big initial" that turns out not
// to be much taller than the line's own mean height, once that mean is
// known.
func (tl *Textline) VerifyBigInitials() {
	for tl.bigInitials > 0 && tl.cv[tl.bigInitials-1].Height() <= 2*tl.MeanHeight() {
		tl.bigInitials--
	}
}

// BigInitials reports how many leading characters are excluded from the
// line's own mean-height statistics.
func (tl *Textline) BigInitials() int { return tl.bigInitials }

// Character returns the i-th character.
func (tl *Textline) Character(i int) *classify.Character {
	if i < 0 || i >= len(tl.cv) {
		panic(ocrerr.New(ocrerr.InternalInvariant, "textline.Character", errIndexOutOfBounds))
	}
	return tl.cv[i]
}

// CharacterAt returns the character whose horizontal extent includes col,
// or nil.
func (tl *Textline) CharacterAt(col int) *classify.Character {
	for _, c := range tl.cv {
		if c.HIncludesCol(col) {
			return c
		}
	}
	return nil
}

// Characters reports how many characters (including spaces) the line holds.
func (tl *Textline) Characters() int { return len(tl.cv) }

// Charbox returns c's bounding box widened vertically to the line's track
// at c's horizontal center.
func (tl *Textline) Charbox(c *classify.Character) rect.Rectangle {
	col := c.Hcenter()
	return rect.New(c.Left(), tl.Top(col), c.Right(), tl.Bottom(col))
}

// Width is the span from the first to the last character.
func (tl *Textline) Width() int {
	if len(tl.cv) == 0 {
		return 0
	}
	return tl.cv[len(tl.cv)-1].Right() - tl.cv[0].Left()
}

// DeleteCharacter removes the i-th character.
func (tl *Textline) DeleteCharacter(i int) {
	if i < 0 || i >= len(tl.cv) {
		panic(ocrerr.New(ocrerr.InternalInvariant, "textline.DeleteCharacter", errIndexOutOfBounds))
	}
	if i < tl.bigInitials {
		tl.bigInitials--
	}
	tl.cv = append(tl.cv[:i], tl.cv[i+1:]...)
}

// ShiftCharacter inserts c in horizontal-center order and returns its
// final index; big marks it as a big initial.
func (tl *Textline) ShiftCharacter(c *classify.Character, big bool) int {
	i := len(tl.cv)
	for i > 0 && c.HPrecedes(tl.cv[i-1].Rectangle) {
		i--
	}
	tl.cv = append(tl.cv, nil)
	copy(tl.cv[i+1:], tl.cv[i:])
	tl.cv[i] = c
	if i < tl.bigInitials {
		tl.bigInitials++
	} else if big {
		tl.bigInitials = i + 1
	}
	return i
}

// InsertSpace inserts a space character between cv[i-1] and cv[i] if room
// allows, returning whether it did.
func (tl *Textline) InsertSpace(i int, tab bool) bool {
	if i <= 0 || i >= len(tl.cv) {
		panic(ocrerr.New(ocrerr.InternalInvariant, "textline.InsertSpace", errIndexOutOfBounds))
	}
	if tl.Height() == 0 {
		panic(ocrerr.New(ocrerr.InternalInvariant, "textline.InsertSpace", errTrackNotSet))
	}
	c1, c2 := tl.cv[i-1], tl.cv[i]
	l, r := c1.Right()+1, c2.Left()-1
	if l > r {
		return false
	}
	col := (l + r) / 2
	re := rect.New(l, tl.Top(col), r, tl.Bottom(col))
	value := 0
	if tab {
		value = 1
	}
	p := &classify.Character{Rectangle: re, Guesses: []classify.Guess{{' ', value}}}
	if tab {
		p.AddGuess('\t', 0)
	}
	tl.cv = append(tl.cv, nil)
	copy(tl.cv[i+1:], tl.cv[i:])
	tl.cv[i] = p
	return true
}

func findBigGap(tl *Textline, first, spaceWidthLimit int) int {
	i := first
	for i+1 < len(tl.cv) {
		gap := tl.cv[i+1].Left() - tl.cv[i].Right() - 1
		if gap > spaceWidthLimit {
			break
		}
		i++
	}
	return i
}

// InsertSpaces scans the line and turns oversized gaps into space or tab
// characters, per SPEC_FULL.md §4.6.
func (tl *Textline) InsertSpaces() {
	mw := tl.MeanWidth()
	if mw.LessInt(2) {
		return
	}
	mwt := mw.Trunc()
	spaceWidthLimit := mw.MulInt(3).Trunc()
	first := tl.bigInitials
	for first+1 < len(tl.cv) {
		last := findBigGap(tl, first, spaceWidthLimit)
		mg := tl.MeanGapWidth(first, last)
		if first < last && mg.GreaterEqInt(0) {
			spaces, nospaces, spsum, nospsum := 0, 0, 0, 0
			for i := first; i < last; i++ {
				c1, c2 := tl.cv[i], tl.cv[i+1]
				gap := c2.Left() - c1.Right() - 1
				if gap >= mwt || rational.FromInt(gap).Greater(mg.MulInt(3)) ||
					(5*gap > 2*mw.Trunc() && rational.FromInt(gap).Greater(mg.MulInt(2))) ||
					(3*c1.Width() > 2*mwt && 3*c2.Width() > 2*mwt &&
						2*gap > mwt && 5*gap > 8*mg.Trunc()) {
					spaces++
					spsum += gap
					if tl.InsertSpace(i+1, false) {
						i++
						last++
					}
				} else {
					nospaces++
					nospsum += gap
				}
			}
			if spaces > 0 && nospaces > 0 {
				th := rational.New(3*spsum, spaces).Add(rational.New(nospsum, nospaces)).DivInt(4)
				for i := first; i < last; i++ {
					c1, c2 := tl.cv[i], tl.cv[i+1]
					gap := c2.Left() - c1.Right() - 1
					if rational.FromInt(gap).Greater(th) && tl.InsertSpace(i+1, false) {
						i++
						last++
					}
				}
			}
		}
		last++
		if last < len(tl.cv) && tl.InsertSpace(last, true) {
			last++
		}
		first = last
	}
}

// Join appends every character of tl2 onto tl and empties tl2.
func (tl *Textline) Join(tl2 *Textline) {
	for i, c := range tl2.cv {
		tl.ShiftCharacter(c, i < tl2.bigInitials)
	}
	tl2.bigInitials = 0
	tl2.cv = nil
}

// MeanHeight averages the height of every non-space character past the
// big initials.
func (tl *Textline) MeanHeight() int {
	c, sum := 0, 0
	for i := tl.bigInitials; i < len(tl.cv); i++ {
		if !tl.cv[i].Maybe(' ') {
			c++
			sum += tl.cv[i].Height()
		}
	}
	if c > 0 {
		sum /= c
	}
	return sum
}

// MeanWidth averages the width of every non-space character past the big
// initials.
func (tl *Textline) MeanWidth() rational.Rational {
	c, sum := 0, 0
	for i := tl.bigInitials; i < len(tl.cv); i++ {
		if !tl.cv[i].Maybe(' ') {
			c++
			sum += tl.cv[i].Width()
		}
	}
	if c > 0 {
		return rational.New(sum, c)
	}
	return rational.FromInt(0)
}

// MeanGapWidth averages the inter-character gap over [first,last); last<0
// means "to the end".
func (tl *Textline) MeanGapWidth(first int, last int) rational.Rational {
	if last < 0 {
		last = len(tl.cv) - 1
	}
	sum := 0
	for i := first; i < last; i++ {
		gap := tl.cv[i+1].Left() - tl.cv[i].Right() - 1
		if gap > 0 {
			sum += gap
		}
	}
	if last > first {
		return rational.New(sum, last-first)
	}
	return rational.FromInt(0)
}

// MeanHcenter averages the horizontal center of every character past the
// big initials.
func (tl *Textline) MeanHcenter() int {
	c, sum := 0, 0
	for i := tl.bigInitials; i < len(tl.cv); i++ {
		c++
		sum += tl.cv[i].Hcenter()
	}
	if c > 0 {
		sum /= c
	}
	return sum
}

// MeanVcenter averages the vertical center of every character past the big
// initials.
func (tl *Textline) MeanVcenter() int {
	c, sum := 0, 0
	for i := tl.bigInitials; i < len(tl.cv); i++ {
		c++
		sum += tl.cv[i].Vcenter()
	}
	if c > 0 {
		sum /= c
	}
	return sum
}

// Recognize1 runs the context-free classifier over every character; big
// initials are classified against their own box, everyone else against
// the line's track-fitted charbox, and a lowercase-ambiguous first guess
// on a big initial is forced to uppercase.
func (tl *Textline) Recognize1(cs classify.Charset) {
	for i, c := range tl.cv {
		if i < tl.bigInitials {
			classify.Recognize1(cs, c.Rectangle, c)
			if len(c.Guesses) > 0 && ucs.IsLowerAmbiguous(c.Guesses[0].Code) {
				c.OnlyGuess(ucs.ToUpper(c.Guesses[0].Code), 0)
			}
		} else {
			classify.Recognize1(cs, tl.Charbox(c), c)
		}
	}
}

// ApplyFilter runs f over every character, deleting any that lose every
// guess as a result, then drops now-redundant leading/trailing/doubled
// spaces the deletions may have exposed.
func (tl *Textline) ApplyFilter(f filter.Filter) {
	changed := false
	for i := 0; i < len(tl.cv); {
		c := tl.cv[i]
		had := len(c.Guesses)
		c.ApplyFilter(f)
		if had > 0 && len(c.Guesses) == 0 {
			tl.DeleteCharacter(i)
			changed = true
		} else {
			i++
		}
	}
	if !changed {
		return
	}
	for i := len(tl.cv) - 1; i >= 0; i-- {
		c := tl.cv[i]
		if !c.Maybe(' ') {
			continue
		}
		atEdge := i == 0 || i >= len(tl.cv)-1
		prevSpace := i > 0 && tl.cv[i-1].Maybe(' ')
		if atEdge || prevSpace {
			tl.DeleteCharacter(i)
		}
	}
}

var (
	errIndexOutOfBounds = indexOutOfBoundsErr{}
	errTrackNotSet      = trackNotSetErr{}
)

type indexOutOfBoundsErr struct{}

func (indexOutOfBoundsErr) Error() string { return "index out of bounds" }

type trackNotSetErr struct{}

func (trackNotSetErr) Error() string { return "track not set yet" }
