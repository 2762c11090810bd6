package chunker

import (
	"errors"
	"fmt"

	"docqa/internal/domain"
)

const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

var ErrInvalidWindow = errors.New("invalid chunk window")

// Window splits text into fixed-size character windows that share
// overlap characters with their predecessor.
type Window struct {
	size    int
	overlap int
}

// NewWindow validates the window the same way the config loader does:
// size must be positive and overlap must lie in [0, size).
func NewWindow(size, overlap int) (*Window, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidWindow, size, overlap)
	}
	return &Window{size: size, overlap: overlap}, nil
}

func (w *Window) Size() int    { return w.size }
func (w *Window) Overlap() int { return w.overlap }

// Split returns the chunks of text in document order. Empty text yields no chunks.
func (w *Window) Split(text string) []domain.Chunk {
	return Split(text, w.size, w.overlap)
}

// Split slides a window of size characters over text, advancing by
// size-overlap each step. The last chunk may be shorter than size.
// Sizes are counted in runes so multi-byte characters are never cut.
func Split(text string, size, overlap int) []domain.Chunk {
	runes := []rune(text)
	l := len(runes)
	if l == 0 || size <= 0 {
		return []domain.Chunk{}
	}
	step := size - overlap
	if step <= 0 {
		step = 1
	}

	res := make([]domain.Chunk, 0, l/step+1)
	for pos := 0; ; pos += step {
		end := min(pos+size, l)
		res = append(res, domain.Chunk{Index: len(res), Content: string(runes[pos:end])})
		if end >= l {
			break
		}
	}
	return res
}
