package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner emulates pdftoppm by writing one PNG per page next to the prefix.
type fakeRunner struct {
	pages int
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, []byte("Syntax Error: broken"), f.err
	}
	prefix := args[len(args)-1]
	width := len(fmt.Sprint(f.pages))
	for i := 1; i <= f.pages; i++ {
		path := fmt.Sprintf("%s-%0*d.png", prefix, width, i)
		body := append(append([]byte{}, pngHeader...), []byte(fmt.Sprintf("page-%d", i))...)
		if err := os.WriteFile(path, body, 0o600); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func TestPDFPageCount(t *testing.T) {
	n, err := PDFPageCount(buildPDF(3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = PDFPageCount([]byte("not a pdf at all"))
	assert.Error(t, err)
}

func TestPagesRendersPDFInPageOrder(t *testing.T) {
	runner := &fakeRunner{pages: 12}
	r := NewRasterizer(runner, "", 0)

	pages, err := r.Pages(context.Background(), buildPDF(12))
	require.NoError(t, err)
	require.Len(t, pages, 12)

	for i, p := range pages {
		assert.Equal(t, "image/png", p.MimeType)
		assert.Contains(t, string(p.Data), fmt.Sprintf("page-%d", i+1))
	}

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "pdftoppm", call[0])
	assert.Equal(t, []string{"-r", "300", "-png"}, call[1:4])
	assert.Equal(t, "input.pdf", filepath.Base(call[4]))

	// temp dir is removed after rendering
	_, statErr := os.Stat(filepath.Dir(call[4]))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPagesUsesConfiguredDPI(t *testing.T) {
	runner := &fakeRunner{pages: 1}
	r := NewRasterizer(runner, "/usr/local/bin/pdftoppm", 150)

	_, err := r.Pages(context.Background(), buildPDF(1))
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/pdftoppm", runner.calls[0][0])
	assert.Equal(t, "150", runner.calls[0][2])
}

func TestPagesRenderFailures(t *testing.T) {
	r := NewRasterizer(&fakeRunner{err: errors.New("exit status 1")}, "", 0)
	_, err := r.Pages(context.Background(), buildPDF(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Syntax Error")

	r = NewRasterizer(&fakeRunner{pages: 0}, "", 0)
	_, err = r.Pages(context.Background(), buildPDF(1))
	assert.ErrorIs(t, err, ErrNoPages)

	// unreadable page tree is left to pdftoppm, whose exit status is the failure
	runner := &fakeRunner{err: errors.New("exit status 1")}
	r = NewRasterizer(runner, "", 0)
	_, err = r.Pages(context.Background(), []byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
	assert.Len(t, runner.calls, 1)
}

func TestPagesRendersPDFsThePageCounterRejects(t *testing.T) {
	v2 := bytes.Replace(buildPDF(1), []byte("%PDF-1.4"), []byte("%PDF-2.0"), 1)
	padded := append(buildPDF(2), bytes.Repeat([]byte("\n"), 200)...)

	cases := []struct {
		name  string
		data  []byte
		pages int
	}{
		{"pdf 2.0 header", v2, 1},
		{"trailing padding", padded, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{pages: tc.pages}
			r := NewRasterizer(runner, "", 0)

			pages, err := r.Pages(context.Background(), tc.data)
			require.NoError(t, err)
			assert.Len(t, pages, tc.pages)
			assert.Len(t, runner.calls, 1)
		})
	}
}

func TestPagesImagesPassThrough(t *testing.T) {
	runner := &fakeRunner{}
	r := NewRasterizer(runner, "", 0)

	png := append(append([]byte{}, pngHeader...), []byte("body")...)
	pages, err := r.Pages(context.Background(), png)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "image/png", pages[0].MimeType)
	assert.Equal(t, png, pages[0].Data)

	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pages, err = r.Pages(context.Background(), jpeg)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", pages[0].MimeType)
	assert.Empty(t, runner.calls)
}

func TestPagesRejectsUnsupportedContent(t *testing.T) {
	r := NewRasterizer(&fakeRunner{}, "", 0)
	_, err := r.Pages(context.Background(), []byte("plain text document"))
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}
