// Command ocrad reads a PNM image and prints the recognized text (or, with
// -x, an Ocr Results File) to standard output, following the setter/
// recognize/query flow the ocrad façade package exposes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/ocrad"
	"github.com/wudi/ocrkit/pageimage"
	"github.com/wudi/ocrkit/rational"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ocrad", flag.ContinueOnError)
	charset := fs.String("charset", "iso-8859-15", "ascii|iso-8859-9|iso-8859-15")
	filterName := fs.String("filter", "none", "none|letters|letters_only|numbers|numbers_only")
	transformName := fs.String("transform", "none", "none|rotate90|rotate180|rotate270|mirror_lr|mirror_tb|mirror_d1|mirror_d2")
	threshold := fs.String("threshold", "auto", "0..255, 0.0..1.0, or auto")
	scale := fs.Int("scale", 0, "positive enlarges, <=-2 reduces")
	utf8 := fs.Bool("utf8", false, "emit UTF-8 instead of single-byte output")
	layout := fs.Bool("layout", false, "enable multi-zone layout analysis")
	invert := fs.Bool("invert", false, "invert intensity at read time")
	exportfile := fs.String("x", "", "write an Ocr Results File to this path instead of text")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ocrad [flags] <file.pnm>")
		return 1
	}

	opts, err := buildOptions(*charset, *filterName, *transformName, *threshold, *scale, *utf8, *layout, *invert)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ocrad: %v\n", err)
		return 1
	}

	path := fs.Arg(0)

	desc := ocrad.Open(ocrad.NewControl(opts...))
	if err := desc.SetImageFromFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "ocrad: %v (errno=%s)\n", err, desc.Errno())
		return 2
	}
	if err := desc.Recognize(*layout); err != nil {
		fmt.Fprintf(os.Stderr, "ocrad: %v (errno=%s)\n", err, desc.Errno())
		return 3
	}

	if *exportfile != "" {
		out, err := os.Create(*exportfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ocrad: %v\n", err)
			return 1
		}
		defer out.Close()
		if err := desc.Export(out); err != nil {
			fmt.Fprintf(os.Stderr, "ocrad: %v\n", err)
			return 1
		}
		return 0
	}

	for i := 0; i < desc.ResultBlocks(); i++ {
		if i > 0 {
			fmt.Println()
		}
		lines := desc.ResultLines(i)
		for j := 0; j < lines; j++ {
			text, err := desc.ResultLine(i, j)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ocrad: %v\n", err)
				return 3
			}
			fmt.Println(text)
		}
	}
	return 0
}

func buildOptions(charsetName, filterName, transformName, thresholdStr string, scale int, utf8, layout, invert bool) ([]ocrad.ControlOption, error) {
	var opts []ocrad.ControlOption

	switch charsetName {
	case "ascii":
		opts = append(opts, ocrad.WithCharset(classify.ASCII))
	case "iso-8859-9":
		opts = append(opts, ocrad.WithCharset(classify.ISO885909))
	case "iso-8859-15":
		opts = append(opts, ocrad.WithCharset(classify.ISO885915))
	default:
		return nil, fmt.Errorf("unknown charset %q", charsetName)
	}

	var f filter.Filter
	if !f.Set(filterName) {
		return nil, fmt.Errorf("unknown filter %q", filterName)
	}
	opts = append(opts, ocrad.WithFilter(f))

	if transformName != "none" {
		t, ok := pageimage.ParseTransformKind(transformName)
		if !ok {
			return nil, fmt.Errorf("unknown transform %q", transformName)
		}
		opts = append(opts, ocrad.WithTransform(t))
	}

	if thresholdStr == "auto" {
		opts = append(opts, ocrad.WithThresholdAuto())
	} else {
		th, err := parseThreshold(thresholdStr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ocrad.WithThresholdFraction(th))
	}

	opts = append(opts, ocrad.WithScale(scale), ocrad.WithUTF8(utf8), ocrad.WithLayout(layout), ocrad.WithInvert(invert))
	return opts, nil
}

// parseThreshold accepts an integer 0..255 or a fraction 0..1.
func parseThreshold(s string) (rational.Rational, error) {
	whole, frac, isFrac := strings.Cut(s, ".")
	if n, err := strconv.Atoi(s); !isFrac && err == nil && n >= 0 && n <= 255 {
		return rational.New(n, 255), nil
	}
	w, err1 := strconv.Atoi(whole)
	f, err2 := strconv.Atoi(frac)
	if isFrac && err1 == nil && err2 == nil && w >= 0 && f >= 0 {
		den := 1
		for range frac {
			den *= 10
		}
		if w*den+f <= den {
			return rational.New(w*den+f, den), nil
		}
	}
	return rational.Rational{}, fmt.Errorf("invalid threshold %q", s)
}
