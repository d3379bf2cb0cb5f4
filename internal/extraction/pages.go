package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"promotore-backend/internal/llm"
	"promotore-backend/internal/shared/telemetry"
)

const (
	mimePDF  = "application/pdf"
	mimePNG  = "image/png"
	mimeJPEG = "image/jpeg"

	defaultDPI      = 300
	defaultPdftoppm = "pdftoppm"
)

var (
	ErrUnsupportedContent = errors.New("unsupported document content")
	ErrNoPages            = errors.New("no pages rendered")
)

// Rasterizer turns a stored document into page images. PDFs are rendered
// with pdftoppm; JPEG and PNG pass through as a single page.
type Rasterizer struct {
	Runner   Runner
	Pdftoppm string
	DPI      int
}

// NewRasterizer builds a Rasterizer, filling defaults for empty values.
func NewRasterizer(runner Runner, pdftoppm string, dpi int) *Rasterizer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if strings.TrimSpace(pdftoppm) == "" {
		pdftoppm = defaultPdftoppm
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &Rasterizer{Runner: runner, Pdftoppm: pdftoppm, DPI: dpi}
}

// Pages returns the document as an ordered list of images.
func (r *Rasterizer) Pages(ctx context.Context, data []byte) ([]llm.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch mime := DetectMime(data); mime {
	case mimePDF:
		return r.renderPDF(ctx, data)
	case mimePNG, mimeJPEG:
		return []llm.Image{{MimeType: mime, Data: data}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, mime)
	}
}

// DetectMime sniffs the content type, dropping parameters.
func DetectMime(data []byte) string {
	mime := http.DetectContentType(data)
	return strings.TrimSpace(strings.Split(mime, ";")[0])
}

func (r *Rasterizer) renderPDF(ctx context.Context, data []byte) ([]llm.Image, error) {
	// The page count only feeds the mismatch warning; pdftoppm decides what renders.
	expected, err := PDFPageCount(data)
	if err != nil {
		telemetry.Warn("extraction.page_count", map[string]any{"error": err.Error()})
		expected = 0
	}

	tmpDir, err := os.MkdirTemp("", "promotore-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			telemetry.Warn("extraction.tmp_cleanup", map[string]any{"dir": tmpDir, "error": err.Error()})
		}
	}()

	input := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := r.Runner.Run(ctx, r.Pdftoppm, "-r", strconv.Itoa(r.DPI), "-png", input, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(errb)))
	}

	// prefix-1.png, prefix-2.png, ... zero-padded to the page count width
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, ErrNoPages
	}
	if expected > 0 && len(matches) != expected {
		telemetry.Warn("extraction.page_mismatch", map[string]any{"expected": expected, "rendered": len(matches)})
	}

	pages := make([]llm.Image, 0, len(matches))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read page: %w", err)
		}
		pages = append(pages, llm.Image{MimeType: mimePNG, Data: raw})
	}
	return pages, nil
}

// PDFPageCount reads the page tree of a PDF.
func PDFPageCount(data []byte) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("read pdf: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	n = reader.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("read pdf: %w", ErrNoPages)
	}
	return n, nil
}
