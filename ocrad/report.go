package ocrad

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/wudi/ocrkit/textblock"
	"github.com/wudi/ocrkit/textpage"
)

// Report renders a human-readable summary of a Textpage as Markdown,
// suitable for an operator reviewing a recognition run: block/line counts,
// the recognized text of every line per block, and a guess-quality score (the
// fraction of characters that recognized at least one guess).
func Report(tp *textpage.Textpage, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Recognition report: %s\n\n", name)
	fmt.Fprintf(&sb, "- Text blocks: %d\n", tp.Textblocks())
	fmt.Fprintf(&sb, "- Text lines: %d\n", tp.Textlines())
	fmt.Fprintf(&sb, "- Characters: %d\n\n", tp.Characters())

	for i := 0; i < tp.Textblocks(); i++ {
		tb := tp.Textblock(i)
		fmt.Fprintf(&sb, "## Block %d\n\n", i+1)
		fmt.Fprintf(&sb, "- Lines: %d, characters: %d, guess quality: %.0f%%\n\n",
			tb.Textlines(), tb.Characters(), guessQuality(tb)*100)
		for j := 0; j < tb.Textlines(); j++ {
			line := tb.Textline(j)
			text, err := renderLine(line, true)
			if err != nil {
				text = "(unrenderable)"
			}
			fmt.Fprintf(&sb, "    %s\n", text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// guessQuality reports the fraction of a block's characters that produced
// at least one guess, a confidence-equivalent score spec.md itself has no
// concept of (classification either emits guesses or doesn't).
func guessQuality(tb *textblock.Textblock) float64 {
	total, recognized := 0, 0
	for i := 0; i < tb.Textlines(); i++ {
		line := tb.Textline(i)
		for j := 0; j < line.Characters(); j++ {
			total++
			if len(line.Character(j).Guesses) > 0 {
				recognized++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(recognized) / float64(total)
}

// ReportHTML renders the same summary as HTML via goldmark, for callers
// that want an embeddable fragment instead of raw Markdown.
func ReportHTML(tp *textpage.Textpage, name string) (string, error) {
	md := Report(tp, name)
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("ocrad: render report: %w", err)
	}
	return buf.String(), nil
}
