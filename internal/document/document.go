// Package document extracts text from uploaded PDF documents and checks
// whether the extracted content carries enough material to build a script
// from.
package document

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxFileSize is the largest accepted upload per document.
const MaxFileSize = 20 << 20 // 20 MiB

// minSuitableChars is the minimum combined extractable text length. Scanned
// or image-only PDFs typically yield next to nothing.
const minSuitableChars = 100

// ErrFileTooLarge is returned for documents over MaxFileSize.
var ErrFileTooLarge = errors.New("document: file exceeds the 20 MB limit")

// IsPDF reports whether a filename has a .pdf extension.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// ExtractText reads a PDF from r and returns its plain text content.
func ExtractText(r io.ReaderAt, size int64) (string, error) {
	if size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("document: open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("document: extract text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("document: read extracted text: %w", err)
	}
	return strings.TrimSpace(string(text)), nil
}

// ExtractFile reads a PDF from disk and returns its plain text content.
func ExtractFile(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("document: open %s: %w", path, err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return "", ErrFileTooLarge
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("document: extract text from %s: %w", path, err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("document: read extracted text: %w", err)
	}
	return strings.TrimSpace(string(text)), nil
}

// CheckSuitability reports whether the extracted texts hold enough material
// for script generation. When they do not, reason explains why.
func CheckSuitability(texts []string) (ok bool, reason string) {
	total := 0
	for _, t := range texts {
		total += len(strings.TrimSpace(t))
	}
	if total < minSuitableChars {
		return false, fmt.Sprintf(
			"the uploaded documents contain almost no extractable text (%d characters); scanned or image-only PDFs are not supported", total)
	}
	return true, ""
}
