// Package source turns an uploaded file into plain text.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"docqa/internal/domain"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidText     = errors.New("file is not valid UTF-8 text")
)

// File is an upload before extraction.
type File struct {
	Name string
	Kind domain.Kind
	Data []byte
}

// Detect resolves the declared content type from the file name. Only
// .txt and .pdf are accepted.
func Detect(name string) domain.Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return domain.KindPlainText
	case ".pdf":
		return domain.KindPDF
	default:
		return domain.KindUnsupported
	}
}

// Open reads path and tags it with its detected kind.
func Open(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading upload: %w", err)
	}
	return File{Name: filepath.Base(path), Kind: Detect(path), Data: data}, nil
}

// Extract returns the text of f. Unsupported kinds return ErrUnsupportedType.
func Extract(f File) (string, error) {
	switch f.Kind {
	case domain.KindPlainText:
		return extractText(f.Data)
	case domain.KindPDF:
		return extractPDF(f.Data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, f.Name)
	}
}

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidText
	}
	return string(bytes.TrimPrefix(data, []byte("\ufeff"))), nil
}

// extractPDF joins the text of every page with a newline. Pages without
// extractable text are skipped.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf document: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil || strings.TrimSpace(t) == "" {
			continue
		}
		pages = append(pages, t)
	}
	return strings.Join(pages, "\n"), nil
}
