package pageimage

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/wudi/ocrkit/ocrerr"
	"github.com/wudi/ocrkit/rect"
)

func rectZeroOrigin(width, height int) rect.Rectangle {
	return rect.New(0, 0, width-1, height-1)
}

// FromPNM decodes a PBM/PGM/PPM stream (magic "P1".."P6"). Rejects zero
// dimensions, images smaller than 3x3, maxval>255 for the raw variants, and
// width*height overflow, matching the PNM file reader contract (spec §6).
func FromPNM(r io.Reader, invert bool) (*PageImage, error) {
	br := bufio.NewReader(r)

	magic, err := readRawByte(br)
	if err != nil {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", err)
	}
	if magic != 'P' {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", fmt.Errorf("bad magic number - not a pbm, pgm or ppm file"))
	}
	typeByte, err := readRawByte(br)
	if err != nil {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", err)
	}
	if typeByte < '1' || typeByte > '6' {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", fmt.Errorf("bad magic number - not a pbm, pgm or ppm file"))
	}

	width, err := readInt(br)
	if err != nil {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", err)
	}
	if width == 0 {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", fmt.Errorf("zero width in pnm file"))
	}
	height, err := readInt(br)
	if err != nil {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", err)
	}
	if height == 0 {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", fmt.Errorf("zero height in pnm file"))
	}
	if width < 3 || height < 3 {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", fmt.Errorf("image too small. Minimum size is 3x3"))
	}
	if float64(width)*float64(height) > math.MaxInt32 {
		return nil, ocrerr.New(ocrerr.ImageTooBig, "pageimage.FromPNM", fmt.Errorf("image too big. int will overflow"))
	}

	p := &PageImage{}
	p.Rectangle = rectZeroOrigin(width, height)
	p.data = make([][]uint8, height)
	for i := range p.data {
		p.data[i] = make([]uint8, width)
	}

	switch typeByte {
	case '1':
		err = p.readP1(br, invert)
	case '4':
		err = p.readP4(br, invert)
	case '2':
		err = p.readP2(br, invert)
	case '5':
		err = p.readP5(br, invert)
	case '3':
		err = p.readP3(br, invert)
	case '6':
		err = p.readP6(br, invert)
	}
	if err != nil {
		return nil, ocrerr.New(ocrerr.BadPnm, "pageimage.FromPNM", err)
	}
	return p, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func readRawByte(br *bufio.Reader) (byte, error) {
	b, err := br.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("end-of-file reading pnm file")
	}
	return b, nil
}

// readCommentAware skips '#'-to-newline comments, matching pnm_getc.
func readCommentAware(br *bufio.Reader) (byte, error) {
	comment := false
	for {
		b, err := readRawByte(br)
		if err != nil {
			return 0, err
		}
		if b == '#' {
			comment = true
		} else if b == '\n' {
			comment = false
		}
		if !comment {
			return b, nil
		}
	}
}

func readInt(br *bufio.Reader) (int, error) {
	var ch byte
	var err error
	for {
		ch, err = readCommentAware(br)
		if err != nil {
			return 0, err
		}
		if !isSpace(ch) {
			break
		}
	}
	if !isDigit(ch) {
		return 0, fmt.Errorf("junk in pnm file where an integer should be")
	}
	i := 0
	for isDigit(ch) {
		d := int(ch - '0')
		if (math.MaxInt32-d)/10 < i {
			return 0, fmt.Errorf("number too big in pnm file")
		}
		i = i*10 + d
		ch, err = readCommentAware(br)
		if err != nil {
			return i, nil // trailing EOF right after the integer is fine
		}
	}
	_ = br.UnreadByte()
	return i, nil
}

func readBit(br *bufio.Reader) (uint8, error) {
	var ch byte
	var err error
	for {
		ch, err = readCommentAware(br)
		if err != nil {
			return 0, err
		}
		if !isSpace(ch) {
			break
		}
	}
	switch ch {
	case '0':
		return 0, nil
	case '1':
		return 1, nil
	default:
		return 0, fmt.Errorf("junk in pbm file where bits should be")
	}
}

func (p *PageImage) readP1(br *bufio.Reader, invert bool) error {
	p.maxval, p.threshold = 1, 0
	rows, cols := p.Height(), p.Width()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			bit, err := readBit(br)
			if err != nil {
				return err
			}
			if invert {
				p.data[row][col] = bit
			} else {
				p.data[row][col] = 1 - bit
			}
		}
	}
	return nil
}

func (p *PageImage) readP4(br *bufio.Reader, invert bool) error {
	p.maxval, p.threshold = 1, 0
	rows, cols := p.Height(), p.Width()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; {
			b, err := readRawByte(br)
			if err != nil {
				return err
			}
			for mask := uint8(0x80); mask > 0 && col < cols; mask >>= 1 {
				black := b&mask != 0
				if black == invert {
					p.data[row][col] = 1
				}
				col++
			}
		}
	}
	return nil
}

func (p *PageImage) readP2(br *bufio.Reader, invert bool) error {
	maxval, err := readInt(br)
	if err != nil {
		return err
	}
	if maxval == 0 {
		return fmt.Errorf("zero maxval in pgm file")
	}
	p.maxval = uint8(minInt(maxval, 255))
	p.threshold = p.maxval / 2
	rows, cols := p.Height(), p.Width()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			val, err := readInt(br)
			if err != nil {
				return err
			}
			if val > maxval {
				return fmt.Errorf("value > maxval in pgm file")
			}
			if invert {
				val = maxval - val
			}
			if maxval > 255 {
				val = val * 255 / maxval
			}
			p.data[row][col] = uint8(val)
		}
	}
	return nil
}

func (p *PageImage) readP5(br *bufio.Reader, invert bool) error {
	maxval, err := readInt(br)
	if err != nil {
		return err
	}
	if maxval == 0 {
		return fmt.Errorf("zero maxval in pgm file")
	}
	if maxval > 255 {
		return fmt.Errorf("maxval > 255 in pgm \"P5\" file")
	}
	p.maxval = uint8(maxval)
	p.threshold = p.maxval / 2
	rows, cols := p.Height(), p.Width()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			v, err := readRawByte(br)
			if err != nil {
				return err
			}
			if v > p.maxval {
				return fmt.Errorf("value > maxval in pgm file")
			}
			if invert {
				v = p.maxval - v
			}
			p.data[row][col] = v
		}
	}
	return nil
}

func (p *PageImage) readP3(br *bufio.Reader, invert bool) error {
	maxval, err := readInt(br)
	if err != nil {
		return err
	}
	if maxval == 0 {
		return fmt.Errorf("zero maxval in ppm file")
	}
	p.maxval = uint8(minInt(maxval, 255))
	p.threshold = p.maxval / 2
	rows, cols := p.Height(), p.Width()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r, err := readInt(br)
			if err != nil {
				return err
			}
			g, err := readInt(br)
			if err != nil {
				return err
			}
			b, err := readInt(br)
			if err != nil {
				return err
			}
			if r > maxval || g > maxval || b > maxval {
				return fmt.Errorf("value > maxval in ppm file")
			}
			var val int
			if !invert {
				val = minInt(r, minInt(g, b))
			} else {
				val = maxval - maxInt(r, maxInt(g, b))
			}
			if maxval > 255 {
				val = val * 255 / maxval
			}
			p.data[row][col] = uint8(val)
		}
	}
	return nil
}

func (p *PageImage) readP6(br *bufio.Reader, invert bool) error {
	maxval, err := readInt(br)
	if err != nil {
		return err
	}
	if maxval == 0 {
		return fmt.Errorf("zero maxval in ppm file")
	}
	if maxval > 255 {
		return fmt.Errorf("maxval > 255 in ppm \"P6\" file")
	}
	p.maxval = uint8(maxval)
	p.threshold = p.maxval / 2
	rows, cols := p.Height(), p.Width()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r, err := readRawByte(br)
			if err != nil {
				return err
			}
			g, err := readRawByte(br)
			if err != nil {
				return err
			}
			b, err := readRawByte(br)
			if err != nil {
				return err
			}
			if r > p.maxval || g > p.maxval || b > p.maxval {
				return fmt.Errorf("value > maxval in ppm file")
			}
			var val uint8
			if !invert {
				val = minU8(r, minU8(g, b))
			} else {
				val = p.maxval - maxU8(r, maxU8(g, b))
			}
			p.data[row][col] = val
		}
	}
	return nil
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
