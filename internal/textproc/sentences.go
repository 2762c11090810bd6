package textproc

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Sentences splits text on Unicode sentence boundaries and returns the
// trimmed, non-blank sentences in order. Trailing text without terminal
// punctuation is kept as the last sentence.
func Sentences(text string) []string {
	var out []string
	state := -1
	var sentence string
	for len(text) > 0 {
		sentence, text, state = uniseg.FirstSentenceInString(text, state)
		if s := strings.TrimSpace(sentence); s != "" {
			out = append(out, s)
		}
	}
	return out
}
