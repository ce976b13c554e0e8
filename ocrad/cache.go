package ocrad

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/wudi/ocrkit/pageimage"
	"github.com/wudi/ocrkit/textpage"
)

// resultCache memoizes Recognize results keyed by a blake2b digest of the
// pixel grid plus the Control and layout flag driving recognition, so
// re-invoking the façade with an unchanged image/option pair is a cache hit
// instead of a re-scan.
type resultCache struct {
	entries map[[blake2b.Size256]byte]*textpage.Textpage
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[[blake2b.Size256]byte]*textpage.Textpage)}
}

func (rc *resultCache) get(img *pageimage.PageImage, name string, c *Control, layout bool) (*textpage.Textpage, bool) {
	key, err := digest(img, name, c, layout)
	if err != nil {
		return nil, false
	}
	tp, ok := rc.entries[key]
	return tp, ok
}

func (rc *resultCache) put(img *pageimage.PageImage, name string, c *Control, layout bool, tp *textpage.Textpage) {
	key, err := digest(img, name, c, layout)
	if err != nil {
		return
	}
	rc.entries[key] = tp
}

func digest(img *pageimage.PageImage, name string, c *Control, layout bool) ([blake2b.Size256]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return [blake2b.Size256]byte{}, err
	}

	h.Write([]byte(name))
	for row := img.Top(); row <= img.Bottom(); row++ {
		for col := img.Left(); col <= img.Right(); col++ {
			if img.GetBit(row, col) {
				h.Write(blackByte)
			} else {
				h.Write(whiteByte)
			}
		}
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(c.Charset))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c.Filter.Type()))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c.Transform))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(c.Scale)))
	h.Write(buf[:])
	for _, flag := range []bool{c.UTF8, layout, c.Invert} {
		if flag {
			h.Write(trueByte)
		} else {
			h.Write(falseByte)
		}
	}

	var out [blake2b.Size256]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

var (
	blackByte = []byte{1}
	whiteByte = []byte{0}
	trueByte  = []byte{1}
	falseByte = []byte{0}
)
