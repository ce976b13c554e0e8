package textline

import (
	"unicode"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/feats"
	"github.com/wudi/ocrkit/ucs"
)

// checkLowerAmbiguous promotes a small ambiguous lowercase guess (c, o, s,
// u, v, w, x, z) to its uppercase form when the character reads visibly
// taller than the other small letters on the line, or no shorter than its
// uppercase neighbors. Ported from the original's same-named pass.
func (tl *Textline) checkLowerAmbiguous() {
	begin := tl.bigInitials
	isolated := false
	for i := tl.bigInitials; i < len(tl.cv); i++ {
		c1 := tl.cv[i]
		if c1.Maybe(' ') {
			if i+2 < len(tl.cv) && tl.cv[i+2].Maybe(' ') {
				begin, isolated = tl.bigInitials, true
			} else {
				begin, isolated = i+1, false
			}
			continue
		}
		if len(c1.Guesses) != 1 {
			continue
		}
		code := c1.Guesses[0].Code
		if !ucs.IsLowerSmallAmbiguous(code) {
			continue
		}
		if 5*c1.Height() < 4*tl.MeanHeight() {
			continue
		}
		capital := 4*c1.Height() > 5*tl.MeanHeight()
		small := false
		for j := begin; j < len(tl.cv); j++ {
			if j == i {
				continue
			}
			c2 := tl.cv[j]
			if len(c2.Guesses) == 0 {
				continue
			}
			if c2.Maybe(' ') {
				if isolated {
					continue
				}
				break
			}
			code2 := c2.Guesses[0].Code
			if code2 >= 128 || !unicode.IsLetter(code2) {
				continue
			}
			if !capital {
				switch {
				case 4*c1.Height() > 5*c2.Height():
					capital = true
				case unicode.IsUpper(code2) && code2 != 'B' && code2 != 'Q' &&
					(c1.Height() >= c2.Height() || feats.Similar(c1.Height(), c2.Height(), 10, 0)):
					capital = true
				case code2 == 't' && c1.Height() >= c2.Height():
					capital = true
				}
			}
			if !small && unicode.IsLower(code2) && code2 != 'l' && code2 != 'j' {
				switch {
				case 5*c1.Height() < 4*c2.Height():
					small = true
				case ucs.IsLowerSmall(code2) && code2 != 'r' && !c2.Maybe('Q') &&
					(j < i || !ucs.IsLowerSmallAmbiguous(code2)) &&
					feats.Similar(c1.Height(), c2.Height(), 10, 0):
					small = true
				}
			}
		}
		if capital && !small {
			c1.InsertGuess(0, unicode.ToUpper(code), 1)
		}
	}
}

// Recognize2 rewrites first guesses using line-global context, per
// SPEC_FULL.md §4.7. This is a representative subset of the original's
// 700-line contextual pass: the lowercase/uppercase disambiguation is
// ported in full (checkLowerAmbiguous); the remaining rewrites cover the
// canonical numeric-context digit substitution and the comma/apostrophe
// merges the spec calls out by name, rather than every merge/split rule
// the original attempts.
func (tl *Textline) Recognize2(cs classify.Charset) {
	if tl.bigInitials >= len(tl.cv) {
		return
	}
	tl.composeAccents()
	tl.checkLowerAmbiguous()
	tl.rewriteNumericContext()
	tl.mergeAdjacentPunctuation()
}

// composeAccents detects an accent mark (acute, grave, circumflex,
// diaeresis, tilde, dot) segmented as its own small character sitting
// above a base letter and folds the pair into the single composed code
// point per SPEC_FULL.md §4.7 ("dot/tilde/accent above a vowel composes
// into the accented form"). Ported narrowly from the original's much
// larger mark-joining pass; covers the acute/grave/circumflex/diaeresis/
// tilde accents ucs.Compose already knows how to combine.
func (tl *Textline) composeAccents() {
	for i := 0; i+1 < len(tl.cv); i++ {
		mark, base := tl.cv[i], tl.cv[i+1]
		if len(mark.Guesses) == 0 || len(base.Guesses) == 0 {
			continue
		}
		accent, ok := accentRune(mark.Guesses[0].Code)
		if !ok {
			continue
		}
		if mark.Bottom() >= base.Vcenter() || !mark.HOverlaps(base.Rectangle) {
			continue
		}
		composed := ucs.Compose(base.Guesses[0].Code, accent)
		if composed == 0 {
			continue
		}
		base.AddRectangle(mark.Rectangle)
		base.OnlyGuess(composed, 0)
		tl.DeleteCharacter(i)
		i--
	}
}

// accentRune maps a segmented accent-mark glyph's best guess to the
// accent rune ucs.Compose expects, or reports false if code isn't one of
// the marks this pass recognizes.
func accentRune(code rune) (rune, bool) {
	switch code {
	case '\'', '`', '^', ':', '~':
		return code, true
	case '.':
		return ':', true
	}
	return 0, false
}

// rewriteNumericContext turns O/l/| into 0/1 when either line-adjacent
// neighbor is itself a digit of similar height (within 10%).
func (tl *Textline) rewriteNumericContext() {
	for i := tl.bigInitials; i < len(tl.cv); i++ {
		c := tl.cv[i]
		if len(c.Guesses) == 0 {
			continue
		}
		code := c.Guesses[0].Code
		if code != 'O' && code != 'l' && code != '|' {
			continue
		}
		leftDigit := i > 0 && isDigitGuess(tl.cv[i-1]) &&
			feats.Similar(c.Height(), tl.cv[i-1].Height(), 10, 0)
		rightDigit := i+1 < len(tl.cv) && isDigitGuess(tl.cv[i+1]) &&
			feats.Similar(c.Height(), tl.cv[i+1].Height(), 10, 0)
		if leftDigit || rightDigit {
			c.OnlyGuess(ucs.ToNearestDigit(code), 0)
		}
	}
}

func isDigitGuess(c *classify.Character) bool {
	return len(c.Guesses) > 0 && ucs.IsDigit(c.Guesses[0].Code)
}

// mergeAdjacentPunctuation folds a comma immediately followed by a period
// into a semicolon, and two adjacent apostrophes into a double quote.
func (tl *Textline) mergeAdjacentPunctuation() {
	for i := 0; i+1 < len(tl.cv); i++ {
		a, b := tl.cv[i], tl.cv[i+1]
		if len(a.Guesses) == 0 || len(b.Guesses) == 0 {
			continue
		}
		ca, cb := a.Guesses[0].Code, b.Guesses[0].Code
		switch {
		case ca == ',' && cb == '.':
			a.AddRectangle(b.Rectangle)
			a.OnlyGuess(';', 0)
			tl.DeleteCharacter(i + 1)
		case ca == '\'' && cb == '\'':
			a.AddRectangle(b.Rectangle)
			a.OnlyGuess('"', 0)
			tl.DeleteCharacter(i + 1)
		}
	}
}
