// Package textproc holds the word tokenizer shared by training, ranking
// and the front end. Chunks and queries must go through the same
// Tokenizer so their tokens meet in one vocabulary.
package textproc

import (
	"context"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenizer lowercases text for a locale and splits it on Unicode word
// boundaries, dropping punctuation and whitespace segments.
type Tokenizer struct {
	tag language.Tag
}

// NewTokenizer parses lang as a BCP 47 tag; unknown tags fall back to English.
func NewTokenizer(lang string) *Tokenizer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Tokenizer{tag: tag}
}

// Tokenize returns the lowercase word tokens of text in order.
func (t *Tokenizer) Tokenize(text string) []string {
	// cases.Caser keeps state, so each call gets its own.
	lower := cases.Lower(t.tag).String(text)
	var out []string
	state := -1
	var word string
	for len(lower) > 0 {
		word, lower, state = uniseg.FirstWordInString(lower, state)
		if isWord(word) {
			out = append(out, word)
		}
	}
	return out
}

// TokenizeAll tokenizes every text using up to workers goroutines. The
// result is index-aligned with texts regardless of scheduling.
func (t *Tokenizer) TokenizeAll(ctx context.Context, texts []string, workers int) ([][]string, error) {
	out := make([][]string, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = t.Tokenize(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func isWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r)
	}) >= 0
}
