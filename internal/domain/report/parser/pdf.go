package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// pdftotextArgs keep content stream order so every label stays on its own line
var pdftotextArgs = []string{"-raw", "-enc", "UTF-8"}

// PDFParser extracts page text with the Go PDF reader. When that fails or
// yields nothing and FallbackPdftotext is set, it shells out to pdftotext.
// A PDF without any text layer returns no pages and no error.
type PDFParser struct {
	FallbackPdftotext bool
}

// NewPDFParser creates a PDF parser with the pdftotext fallback disabled.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

func (p *PDFParser) Pages(ctx context.Context, doc Document) ([]string, error) {
	pages, err := readPDF(doc.Data)
	if p.FallbackPdftotext && (err != nil || len(pages) == 0) {
		pages, err = pdftotext(ctx, doc.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract pdf text from %s: %w", doc.Name, err)
	}
	return pages, nil
}

func readPDF(data []byte) (pages []string, err error) {
	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pdftotext(ctx context.Context, data []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "chromaingest-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.CommandContext(ctx, "pdftotext", append(pdftotextArgs, tmp.Name(), "-")...).Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}
