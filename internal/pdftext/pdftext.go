// Package pdftext extracts plain text from uploaded PDF documents.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNoText is returned when a document parses but yields no text.
	ErrNoText = errors.New("pdftext: document contains no extractable text")

	// ErrInvalidPDF is returned when the input cannot be parsed as a PDF.
	ErrInvalidPDF = errors.New("pdftext: invalid pdf")
)

// Extractor turns a stored document into plain text.
type Extractor struct{}

// ExtractFile extracts text from the PDF at path.
func (Extractor) ExtractFile(path string) (string, error) {
	return ExtractFile(path)
}

// ExtractFile extracts text from the PDF at path.
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat document: %w", err)
	}

	return Extract(f, info.Size())
}

// Extract reads a PDF of the given size and returns its text with
// surrounding whitespace trimmed.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	// The parser panics on some malformed inputs
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrInvalidPDF, p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}

	text = strings.TrimSpace(buf.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
