// Command ocrserver exposes the ocrad façade over HTTP: POST a PNM image to
// /recognize and get back the recognized text (or an Ocr Results File) as
// JSON, one Descriptor per request so concurrent requests never share
// mutable recognition state.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/http2"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/filter"
	"github.com/wudi/ocrkit/observability"
	"github.com/wudi/ocrkit/ocrad"
	"github.com/wudi/ocrkit/pageimage"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ocrserver", flag.ContinueOnError)
	addr := fs.String("addr", ":8420", "listen address")
	maxBody := fs.Int64("max-body", 32<<20, "maximum accepted image size in bytes")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	srv := &server{log: observability.NopLogger{}, maxBody: *maxBody}

	mux := http.NewServeMux()
	mux.HandleFunc("/recognize", srv.handleRecognize)
	mux.HandleFunc("/healthz", srv.handleHealthz)

	httpSrv := &http.Server{
		Addr:    *addr,
		Handler: mux,
	}
	if err := http2.ConfigureServer(httpSrv, &http2.Server{}); err != nil {
		fmt.Fprintf(os.Stderr, "ocrserver: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	srv.log.Info("ocrserver: listening", observability.String("addr", *addr))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "ocrserver: %v\n", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "ocrserver: shutdown: %v\n", err)
			return 1
		}
	}
	return 0
}

type server struct {
	log     observability.Logger
	maxBody int64
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type recognizeResponse struct {
	Blocks     int      `json:"blocks"`
	Characters int      `json:"characters"`
	Lines      []string `json:"lines"`
	ORF        string   `json:"orf,omitempty"`
}

func (s *server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()

	desc := ocrad.Open(ocrad.NewControl(opts...))
	if err := desc.SetImageFromReader(body, r.URL.Path); err != nil {
		s.log.Warn("ocrserver: set image failed", observability.Error("err", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	layout := r.URL.Query().Get("layout") == "true"
	if err := desc.Recognize(layout); err != nil {
		s.log.Warn("ocrserver: recognize failed", observability.Error("err", err))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := recognizeResponse{
		Blocks:     desc.ResultBlocks(),
		Characters: desc.ResultCharsTotal(),
	}
	for i := 0; i < desc.ResultBlocks(); i++ {
		for j := 0; j < desc.ResultLines(i); j++ {
			line, err := desc.ResultLine(i, j)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			resp.Lines = append(resp.Lines, line)
		}
	}

	if r.URL.Query().Get("format") == "orf" {
		var buf bytes.Buffer
		if err := desc.Export(&buf); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.ORF = buf.String()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("ocrserver: encode response failed", observability.Error("err", err))
	}
}

func optionsFromQuery(q url.Values) ([]ocrad.ControlOption, error) {
	var opts []ocrad.ControlOption

	switch get(q, "charset", "iso-8859-15") {
	case "ascii":
		opts = append(opts, ocrad.WithCharset(classify.ASCII))
	case "iso-8859-9":
		opts = append(opts, ocrad.WithCharset(classify.ISO885909))
	case "iso-8859-15":
		opts = append(opts, ocrad.WithCharset(classify.ISO885915))
	default:
		return nil, fmt.Errorf("unknown charset %q", get(q, "charset", ""))
	}

	var f filter.Filter
	if !f.Set(get(q, "filter", "none")) {
		return nil, fmt.Errorf("unknown filter %q", get(q, "filter", ""))
	}
	opts = append(opts, ocrad.WithFilter(f))

	if t := get(q, "transform", "none"); t != "none" {
		kind, ok := pageimage.ParseTransformKind(t)
		if !ok {
			return nil, fmt.Errorf("unknown transform %q", t)
		}
		opts = append(opts, ocrad.WithTransform(kind))
	}

	if scaleStr := get(q, "scale", ""); scaleStr != "" {
		n, err := strconv.Atoi(scaleStr)
		if err != nil {
			return nil, fmt.Errorf("invalid scale %q", scaleStr)
		}
		opts = append(opts, ocrad.WithScale(n))
	}

	opts = append(opts, ocrad.WithUTF8(get(q, "utf8", "") == "true"))
	opts = append(opts, ocrad.WithInvert(get(q, "invert", "") == "true"))
	opts = append(opts, ocrad.WithThresholdAuto())
	return opts, nil
}

func get(q url.Values, key, def string) string {
	if v, ok := q[key]; ok && len(v) > 0 {
		return v[0]
	}
	return def
}
