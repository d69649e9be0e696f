package parser

import (
	"context"
	"strings"
	"unicode/utf8"
)

// pageBreak separates pages in text dumps, matching pdftotext output
const pageBreak = "\f"

// TextParser reads plain-text report dumps
type TextParser struct{}

func (TextParser) Pages(_ context.Context, doc Document) ([]string, error) {
	text := string(doc.Data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return splitPages(text), nil
}

func splitPages(text string) []string {
	text = strings.TrimSuffix(text, pageBreak)
	if text == "" {
		return nil
	}
	return strings.Split(text, pageBreak)
}
