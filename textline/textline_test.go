package textline

import (
	"testing"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/rect"
)

func charAt(l, t, r, b int, code rune) *classify.Character {
	return &classify.Character{
		Rectangle: rect.New(l, t, r, b),
		Guesses:   []classify.Guess{{code, 0}},
	}
}

func TestShiftCharacterKeepsHorizontalOrder(t *testing.T) {
	tl := New()
	tl.ShiftCharacter(charAt(10, 0, 15, 10, 'b'), false)
	tl.ShiftCharacter(charAt(0, 0, 5, 10, 'a'), false)
	if tl.Characters() != 2 {
		t.Fatalf("characters = %d, want 2", tl.Characters())
	}
	if tl.Character(0).Guesses[0].Code != 'a' {
		t.Fatalf("first character should be 'a' after horizontal-order insert")
	}
}

func TestMeanHeightIgnoresSpaces(t *testing.T) {
	tl := New()
	tl.ShiftCharacter(charAt(0, 0, 5, 9, 'a'), false)
	sp := charAt(6, 0, 8, 9, ' ')
	tl.ShiftCharacter(sp, false)
	tl.ShiftCharacter(charAt(9, 0, 14, 19, 'b'), false)
	if mh := tl.MeanHeight(); mh != 15 {
		t.Fatalf("mean height = %d, want 15 (10 and 20 averaged, space excluded)", mh)
	}
}

func TestDeleteCharacterRemovesEntry(t *testing.T) {
	tl := New()
	tl.ShiftCharacter(charAt(0, 0, 5, 9, 'a'), false)
	tl.ShiftCharacter(charAt(6, 0, 11, 9, 'b'), false)
	tl.DeleteCharacter(0)
	if tl.Characters() != 1 || tl.Character(0).Guesses[0].Code != 'b' {
		t.Fatalf("expected only 'b' to remain")
	}
}

func TestApplyFilterDropsNonLettersAndCollapsesOrphanedSpaces(t *testing.T) {
	tl := New()
	tl.ShiftCharacter(charAt(0, 0, 5, 9, 'a'), false)
	tl.ShiftCharacter(charAt(6, 0, 8, 9, ' '), false)
	tl.ShiftCharacter(charAt(9, 0, 14, 9, '5'), false)
	var f filter.Filter
	f.Set("letters_only")
	tl.ApplyFilter(f)
	if tl.Characters() != 1 || tl.Character(0).Guesses[0].Code != 'a' {
		t.Fatalf("expected only 'a' to survive letters_only filter, got %d characters", tl.Characters())
	}
}

func TestMergeAdjacentPunctuationFoldsCommaPeriodToSemicolon(t *testing.T) {
	tl := New()
	tl.ShiftCharacter(charAt(0, 0, 3, 9, ','), false)
	tl.ShiftCharacter(charAt(4, 0, 7, 9, '.'), false)
	tl.mergeAdjacentPunctuation()
	if tl.Characters() != 1 || tl.Character(0).Guesses[0].Code != ';' {
		t.Fatalf("comma+period should merge into a single ';' character")
	}
}
