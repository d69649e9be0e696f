package parser

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextParser_Pages(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"single page", "Title\nPeakA\n", []string{"Title\nPeakA\n"}},
		{"form feed separates pages", "page one\fpage two", []string{"page one", "page two"}},
		{"trailing form feed", "a\fb\f", []string{"a", "b"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := TextParser{}.Pages(context.Background(), Document{Name: "r.txt", Data: []byte(tt.data)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, pages)
		})
	}
}

func TestTextParser_DropsInvalidUTF8(t *testing.T) {
	pages, err := TextParser{}.Pages(context.Background(), Document{Data: []byte("Are\xffa")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Area"}, pages)
}

func TestForDocument(t *testing.T) {
	pdf := NewPDFParser()

	tests := []struct {
		name    string
		doc     Document
		wantPDF bool
		wantErr bool
	}{
		{name: "pdf extension", doc: Document{Name: "run1.PDF"}, wantPDF: true},
		{name: "txt extension", doc: Document{Name: "run1.txt"}},
		{name: "pdf signature", doc: Document{Name: "export", Data: []byte("%PDF-1.7\n...")}, wantPDF: true},
		{name: "unknown", doc: Document{Name: "run1.docx", Data: []byte("PK")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ForDocument(tt.doc, pdf)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			if tt.wantPDF {
				assert.Same(t, pdf, src)
			} else {
				assert.IsType(t, TextParser{}, src)
			}
		})
	}
}

func TestPDFParser_RejectsGarbage(t *testing.T) {
	_, err := NewPDFParser().Pages(context.Background(), Document{Name: "bad.pdf", Data: []byte("not a pdf")})
	assert.Error(t, err)
}

func TestPDFParser_BlankPageHasNoText(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "blank.pdf"))
	require.NoError(t, err)

	pages, err := NewPDFParser().Pages(context.Background(), doc)
	require.NoError(t, err, "a PDF without a text layer is not a read failure")
	assert.Empty(t, pages)

	pages, err = Auto{}.Pages(context.Background(), Document{Name: "scan", Data: doc.Data})
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPdftotextArgs(t *testing.T) {
	assert.NotContains(t, pdftotextArgs, "-layout", "layout mode puts table columns on one line")
	assert.Contains(t, pdftotextArgs, "-raw")
}

func TestSplitPages_PdftotextOutput(t *testing.T) {
	out := "Title\nPeakA\nRet. Time\n4.52\n\fArea\n10234.1\n\f\f"
	pages := splitPages(out)
	require.Len(t, pages, 3)
	assert.Equal(t, "Title\nPeakA\nRet. Time\n4.52\n", pages[0])
	assert.Equal(t, "Area\n10234.1\n", pages[1])
	assert.Empty(t, pages[2])
}

func TestPdftotext_OneLabelPerLine(t *testing.T) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		t.Skipf("pdftotext not installed, skipping")
	}
	doc, err := Load(filepath.Join("testdata", "peaks.pdf"))
	require.NoError(t, err)

	pages, err := pdftotext(context.Background(), doc.Data)
	require.NoError(t, err)
	require.NotEmpty(t, pages)

	var lines []string
	for _, l := range strings.Split(pages[0], "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	for _, label := range []string{"Title", "Ret. Time", "Area"} {
		assert.True(t, slices.Contains(lines, label), "%q on its own line in %q", label, lines)
	}
}

func TestAuto_Pages(t *testing.T) {
	pages, err := Auto{}.Pages(context.Background(), Document{Name: "dump.txt", Data: []byte("Title\nP")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Title\nP"}, pages)

	_, err = Auto{}.Pages(context.Background(), Document{Name: "dump.bin"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("Title"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", doc.Name)
	assert.Equal(t, []byte("Title"), doc.Data)
	assert.Len(t, doc.Hash(), 64)
	assert.Equal(t, doc.Hash(), Document{Data: []byte("Title")}.Hash())

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
