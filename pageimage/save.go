package pageimage

import (
	"bufio"
	"fmt"
	"io"
)

// FileType selects the PNM variant Save emits.
type FileType byte

const (
	FilePBM FileType = 'b' // P4, raw bitmap
	FilePGM FileType = 'g' // P5, raw greymap
)

// Save writes the page as a raw PNM file of type ft: FilePBM writes P4, with
// each pixel black or white under the current threshold; FilePGM writes the
// intensity grid unchanged as P5 with the page's maxval.
func (p *PageImage) Save(w io.Writer, ft FileType) error {
	bw := bufio.NewWriter(w)
	rows, cols := p.Height(), p.Width()

	switch ft {
	case FilePBM:
		if _, err := fmt.Fprintf(bw, "P4\n%d %d\n", cols, rows); err != nil {
			return err
		}
		for row := 0; row < rows; row++ {
			var b byte
			var mask byte = 0x80
			for col := 0; col < cols; col++ {
				if p.data[row][col] <= p.threshold {
					b |= mask
				}
				mask >>= 1
				if mask == 0 {
					if err := bw.WriteByte(b); err != nil {
						return err
					}
					b, mask = 0, 0x80
				}
			}
			if mask != 0x80 {
				if err := bw.WriteByte(b); err != nil {
					return err
				}
			}
		}
	case FilePGM:
		if _, err := fmt.Fprintf(bw, "P5\n%d %d\n%d\n", cols, rows, p.maxval); err != nil {
			return err
		}
		for row := 0; row < rows; row++ {
			if _, err := bw.Write(p.data[row]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("pageimage.Save: unknown file type %c", ft)
	}
	return bw.Flush()
}
