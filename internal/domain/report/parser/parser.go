// Package parser turns instrument report files into per-page text.
// It supports PDF exports via ledongthuc/pdf and plain-text dumps.
package parser

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat indicates the file is neither a PDF nor a text dump
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Document is one report file held in memory
type Document struct {
	Name string
	Data []byte
}

// Hash returns the hex sha256 of the document contents.
func (d Document) Hash() string {
	sum := sha256.Sum256(d.Data)
	return hex.EncodeToString(sum[:])
}

// Load reads a report from disk.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Document{Name: filepath.Base(path), Data: data}, nil
}

// Source extracts the text of each page, in order
type Source interface {
	Pages(ctx context.Context, doc Document) ([]string, error)
}

var pdfMagic = []byte("%PDF-")

// ForDocument picks a parser from the file extension, falling back to the
// content signature when the extension is unknown.
func ForDocument(doc Document, pdf *PDFParser) (Source, error) {
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		return pdf, nil
	case ".txt", ".text":
		return TextParser{}, nil
	}
	if bytes.HasPrefix(doc.Data, pdfMagic) {
		return pdf, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, doc.Name)
}

// Auto dispatches each document to the parser matching its format
type Auto struct {
	PDF *PDFParser
}

func (a Auto) Pages(ctx context.Context, doc Document) ([]string, error) {
	pdf := a.PDF
	if pdf == nil {
		pdf = NewPDFParser()
	}
	src, err := ForDocument(doc, pdf)
	if err != nil {
		return nil, err
	}
	return src.Pages(ctx, doc)
}
