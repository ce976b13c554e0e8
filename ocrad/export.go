package ocrad

import (
	"fmt"
	"io"

	"github.com/wudi/ocrkit/textblock"
	"github.com/wudi/ocrkit/textline"
	"github.com/wudi/ocrkit/textpage"
	"github.com/wudi/ocrkit/ucs"
)

// Export writes the Ocr Results File (ORF) for the current Textpage to w,
// the line-oriented structured dump spec §6 defines. It is independent of
// SetExportFile, which only records where a caller intends to persist it.
func (d *Descriptor) Export(w io.Writer) error {
	if d.page == nil {
		return fmt.Errorf("ocrad.Export: no recognized page")
	}
	return exportTextpage(w, d.page, d.name, d.control.UTF8)
}

func exportTextpage(w io.Writer, tp *textpage.Textpage, name string, utf8 bool) error {
	if _, err := fmt.Fprintf(w, "# Ocr Results File. Created by ocrad %s\n", Version); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "source file %s\n", name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "total text blocks %d\n", tp.Textblocks()); err != nil {
		return err
	}
	for i := 0; i < tp.Textblocks(); i++ {
		tb := tp.Textblock(i)
		if _, err := fmt.Fprintf(w, "text block %d %d %d %d %d\n",
			i+1, tb.Left(), tb.Top(), tb.Width(), tb.Height()); err != nil {
			return err
		}
		if err := exportTextblock(w, tb, utf8); err != nil {
			return err
		}
	}
	return nil
}

func exportTextblock(w io.Writer, tb *textblock.Textblock, utf8 bool) error {
	if _, err := fmt.Fprintf(w, "lines %d\n", tb.Textlines()); err != nil {
		return err
	}
	for i := 0; i < tb.Textlines(); i++ {
		line := tb.Textline(i)
		if _, err := fmt.Fprintf(w, "line %d chars %d height %d\n",
			i+1, line.Characters(), line.MeanHeight()); err != nil {
			return err
		}
		if err := exportTextline(w, line, utf8); err != nil {
			return err
		}
	}
	return nil
}

func exportTextline(w io.Writer, tl *textline.Textline, utf8 bool) error {
	for i := 0; i < tl.Characters(); i++ {
		c := tl.Character(i)
		box := tl.Charbox(c)
		if _, err := fmt.Fprintf(w, "%3d %3d %2d %2d; %d",
			box.Left(), box.Top(), box.Width(), box.Height(), len(c.Guesses)); err != nil {
			return err
		}
		for _, g := range c.Guesses {
			if !utf8 {
				ch := ucs.MapToByte(g.Code)
				if ch == 0 {
					ch = '_'
				}
				if _, err := fmt.Fprintf(w, ", '%c'%d", ch, g.Value); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprintf(w, ", '%s'%d", ucs.ToUTF8(g.Code), g.Value); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
