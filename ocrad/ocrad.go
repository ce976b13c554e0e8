package ocrad

import (
	"fmt"
	"io"
	"os"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/ocrerr"
	"github.com/wudi/ocrkit/pageimage"
	"github.com/wudi/ocrkit/rational"
	"github.com/wudi/ocrkit/recovery"
	"github.com/wudi/ocrkit/textpage"
)

// Errno is the ok-plus-four-codes summary OCRAD_get_errno exposed at the C
// ABI boundary, for callers that poll rather than check a returned error.
type Errno int

const (
	ErrnoOK Errno = iota
	ErrnoBadArgument
	ErrnoMemError
	ErrnoSequenceError
	ErrnoLibraryError
)

func (e Errno) String() string {
	switch e {
	case ErrnoOK:
		return "ok"
	case ErrnoBadArgument:
		return "bad_argument"
	case ErrnoMemError:
		return "mem_error"
	case ErrnoSequenceError:
		return "sequence_error"
	case ErrnoLibraryError:
		return "library_error"
	default:
		return "unknown"
	}
}

func errnoFor(err error) Errno {
	if err == nil {
		return ErrnoOK
	}
	kind, ok := ocrerr.KindOf(err)
	if !ok {
		return ErrnoLibraryError
	}
	switch kind {
	case ocrerr.BadArgument, ocrerr.InvalidGeometry, ocrerr.BadPnm:
		return ErrnoBadArgument
	case ocrerr.OutOfMemory, ocrerr.ImageTooBig:
		return ErrnoMemError
	case ocrerr.SequenceError:
		return ErrnoSequenceError
	default:
		return ErrnoLibraryError
	}
}

// Descriptor is the stateful OCR session: set an image and options, call
// Recognize, then query the result. It mirrors OCRAD_Descriptor's setter /
// recognize / query shape (spec §6).
type Descriptor struct {
	control    *Control
	img        *pageimage.PageImage
	name       string
	page       *textpage.Textpage
	errno      Errno
	lastErr    error
	exportFile string
	recovery   recovery.Strategy
	log        observability.Logger
	tracer     observability.Tracer
	cache      *resultCache
}

// Open creates a Descriptor with the given Control (or a default one if nil),
// the Go equivalent of OCRAD_open.
func Open(control *Control) *Descriptor {
	if control == nil {
		control = NewControl()
	}
	return &Descriptor{
		control: control,
		log:     observability.NopLogger{},
		tracer:  observability.NopTracer(),
		cache:   newResultCache(),
	}
}

// SetLogger wires a structured logger into this Descriptor.
func (d *Descriptor) SetLogger(l observability.Logger) {
	if l == nil {
		l = observability.NopLogger{}
	}
	d.log = l
}

// SetTracer wires a tracer into this Descriptor.
func (d *Descriptor) SetTracer(t observability.Tracer) {
	if t == nil {
		t = observability.NopTracer()
	}
	d.tracer = t
}

// SetRecoveryStrategy chooses how InternalInvariant errors raised during
// Recognize are handled: fail the call, skip (return the partial/zero
// result), or downgrade to a logged warning. A nil strategy fails outright.
func (d *Descriptor) SetRecoveryStrategy(s recovery.Strategy) { d.recovery = s }

// SetImage loads a pixmap, the Go equivalent of OCRAD_set_image.
func (d *Descriptor) SetImage(pix pageimage.Pixmap, name string) error {
	img, err := pageimage.FromPixmap(pix, d.control.Invert)
	if err != nil {
		d.lastErr = err
		d.errno = errnoFor(err)
		return err
	}
	return d.finishImage(img, name)
}

// SetImageFromFile reads a PNM file from path, the Go equivalent of
// OCRAD_set_image_from_file.
func (d *Descriptor) SetImageFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		wrapped := ocrerr.New(ocrerr.BadPnm, "ocrad.SetImageFromFile", err)
		d.lastErr = wrapped
		d.errno = errnoFor(wrapped)
		return wrapped
	}
	defer f.Close()
	return d.SetImageFromReader(f, path)
}

// SetImageFromReader reads a PNM stream, for callers (an HTTP handler, a
// test) that already hold the image in memory rather than on disk.
func (d *Descriptor) SetImageFromReader(r io.Reader, name string) error {
	img, err := pageimage.FromPNM(r, d.control.Invert)
	if err != nil {
		d.lastErr = err
		d.errno = errnoFor(err)
		return err
	}
	return d.finishImage(img, name)
}

// finishImage applies the transform, scale, and threshold options common to
// every image-loading path, then commits img as the active image.
func (d *Descriptor) finishImage(img *pageimage.PageImage, name string) error {
	img.SetLogger(d.log)
	if d.control.Transform != pageimage.TransformNone {
		img.Transform(d.control.Transform)
	}
	if d.control.Scale != 0 && d.control.Scale != 1 && d.control.Scale != -1 {
		if _, err := img.Scale(d.control.Scale); err != nil {
			d.lastErr = err
			d.errno = errnoFor(err)
			return err
		}
	}
	if d.control.ThresholdOK {
		img.SetThresholdFraction(d.control.Threshold)
	} else {
		img.SetThresholdFraction(rational.FromInt(-1)) // out of [0,1]: falls back to Otsu
	}
	d.img = img
	d.name = name
	d.page = nil
	d.lastErr = nil
	d.errno = ErrnoOK
	return nil
}

// SetExportFile records the ORF export destination path. The façade itself
// only builds the ORF text (see Export); a caller decides how to persist it.
func (d *Descriptor) SetExportFile(path string) { d.exportFile = path }

// ExportFile reports the path set by SetExportFile, or "" if none.
func (d *Descriptor) ExportFile() string { return d.exportFile }

// Recognize runs the scan/layout/classification pipeline over the current
// image, the Go equivalent of OCRAD_recognize.
func (d *Descriptor) Recognize(layout bool) error {
	if d.img == nil {
		err := ocrerr.New(ocrerr.SequenceError, "ocrad.Recognize", fmt.Errorf("no image set"))
		d.lastErr = err
		d.errno = errnoFor(err)
		return err
	}

	if cached, ok := d.cache.get(d.img, d.name, d.control, layout); ok {
		d.page = cached
		d.lastErr = nil
		d.errno = ErrnoOK
		return nil
	}

	ctx, span := d.tracer.StartSpan(nil, "ocrad.Recognize")
	defer span.Finish()
	_ = ctx

	result, err := d.recognizeGuarded(layout)
	if err != nil {
		span.SetError(err)
		d.lastErr = err
		d.errno = errnoFor(err)
		if d.recovery != nil {
			switch d.recovery.OnError(nil, err, recovery.Location{Component: "ocrad"}) {
			case recovery.ActionSkip, recovery.ActionWarn:
				d.log.Warn("ocrad: recognition error recovered", observability.Error("err", err))
				d.page = textpage.New(d.img, d.name, d.control.Charset, d.control.Filter, layout)
				d.cache.put(d.img, d.name, d.control, layout, d.page)
				d.lastErr = nil
				d.errno = ErrnoOK
				return nil
			}
		}
		return err
	}
	d.page = result
	d.cache.put(d.img, d.name, d.control, layout, d.page)
	d.lastErr = nil
	d.errno = ErrnoOK
	d.log.Debug("ocrad: recognize complete",
		observability.Int("blocks", d.page.Textblocks()),
		observability.Int("characters", d.page.Characters()))
	return nil
}

// recognizeGuarded recovers an InternalInvariant panic raised deep in the
// layout/classification cascade (spec §7: "internal invariants panic-
// equivalent") and turns it back into a normal error return.
func (d *Descriptor) recognizeGuarded(layout bool) (tp *textpage.Textpage, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*ocrerr.Error); ok {
				err = e
				return
			}
			err = ocrerr.New(ocrerr.InternalInvariant, "ocrad.Recognize", fmt.Errorf("%v", r))
		}
	}()
	tp = textpage.New(d.img, d.name, d.control.Charset, d.control.Filter, layout)
	return tp, nil
}

// Errno reports the last operation's error code, mirroring
// OCRAD_get_errno.
func (d *Descriptor) Errno() Errno { return d.errno }

// LastError returns the full error behind the current Errno, or nil.
func (d *Descriptor) LastError() error { return d.lastErr }

// ResultBlocks reports the number of text blocks found, the Go equivalent of
// OCRAD_result_blocks.
func (d *Descriptor) ResultBlocks() int {
	if d.page == nil {
		return 0
	}
	return d.page.Textblocks()
}

// ResultLines reports the number of lines in block blocknum, the Go
// equivalent of OCRAD_result_lines.
func (d *Descriptor) ResultLines(blocknum int) int {
	if d.page == nil || blocknum < 0 || blocknum >= d.page.Textblocks() {
		return -1
	}
	return d.page.Textblock(blocknum).Textlines()
}

// ResultCharsTotal reports the number of recognized characters across every
// block, the Go equivalent of OCRAD_result_chars_total.
func (d *Descriptor) ResultCharsTotal() int {
	if d.page == nil {
		return 0
	}
	return d.page.Characters()
}

// ResultCharsBlock reports the number of characters in block blocknum.
func (d *Descriptor) ResultCharsBlock(blocknum int) int {
	if d.page == nil || blocknum < 0 || blocknum >= d.page.Textblocks() {
		return -1
	}
	return d.page.Textblock(blocknum).Characters()
}

// ResultCharsLine reports the number of characters in a given block/line.
func (d *Descriptor) ResultCharsLine(blocknum, linenum int) int {
	if d.page == nil || blocknum < 0 || blocknum >= d.page.Textblocks() {
		return -1
	}
	tb := d.page.Textblock(blocknum)
	if linenum < 0 || linenum >= tb.Textlines() {
		return -1
	}
	return tb.Textline(linenum).Characters()
}

// ResultLine renders a block/line as text: byte-encoded single-byte charset
// or UTF-8, per Control.UTF8, the Go equivalent of OCRAD_result_line.
func (d *Descriptor) ResultLine(blocknum, linenum int) (string, error) {
	if d.page == nil || blocknum < 0 || blocknum >= d.page.Textblocks() {
		return "", ocrerr.New(ocrerr.BadArgument, "ocrad.ResultLine", fmt.Errorf("block %d out of range", blocknum))
	}
	tb := d.page.Textblock(blocknum)
	if linenum < 0 || linenum >= tb.Textlines() {
		return "", ocrerr.New(ocrerr.BadArgument, "ocrad.ResultLine", fmt.Errorf("line %d out of range", linenum))
	}
	return renderLine(tb.Textline(linenum), d.control.UTF8)
}

// ResultFirstCharacter reports the code point of the first recognized
// character in the page, or -1, the Go equivalent of
// OCRAD_result_first_character.
func (d *Descriptor) ResultFirstCharacter() int {
	if d.page == nil {
		return -1
	}
	for i := 0; i < d.page.Textblocks(); i++ {
		tb := d.page.Textblock(i)
		for j := 0; j < tb.Textlines(); j++ {
			line := tb.Textline(j)
			for k := 0; k < line.Characters(); k++ {
				c := line.Character(k)
				if len(c.Guesses) > 0 {
					return int(c.Guesses[0].Code)
				}
			}
		}
	}
	return -1
}

// Textpage exposes the underlying result for callers that want direct
// access (export, reporting) instead of the index-based query surface.
func (d *Descriptor) Textpage() *textpage.Textpage { return d.page }

// Image exposes the currently loaded page, for callers building their own
// debug rendering (overlay, preview) on top of the recognized result.
func (d *Descriptor) Image() *pageimage.PageImage { return d.img }

// Charset is re-exported so callers building a Control don't need to import
// the classify package directly for the common case.
type Charset = classify.Charset
