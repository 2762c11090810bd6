package domain

import (
	"context"
	"errors"
)

// Kind is the declared content type of an uploaded file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPlainText
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindPlainText:
		return "text/plain"
	case KindPDF:
		return "application/pdf"
	default:
		return "unsupported"
	}
}

// Document is the single uploaded file after text extraction.
type Document struct {
	ID      string
	Name    string
	Kind    Kind
	Content string
}

// Chunk is one contiguous slice of a document's text.
type Chunk struct {
	Index   int
	Content string
}

// ScoredChunk pairs a chunk with its relevance to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Chunker splits extracted text into ordered chunks.
type Chunker interface {
	Split(text string) []Chunk
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Generator is a hosted language model that turns a prompt into text.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrGeneratorUnavailable marks generator failures caused by transport,
// timeouts or an overloaded backend rather than by the request itself.
var ErrGeneratorUnavailable = errors.New("generator unavailable")
