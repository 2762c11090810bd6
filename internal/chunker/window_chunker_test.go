package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func contents(chunks []domain.Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Content)
	}
	return out
}

func Test_Split(t *testing.T) {
	var cases = []struct {
		input   string
		size    int
		overlap int
		output  []string
	}{
		{input: "abcdefg", size: 3, overlap: 0, output: []string{"abc", "def", "g"}},
		{input: "abcdefg", size: 3, overlap: 1, output: []string{"abc", "cde", "efg"}},
		{input: "abcdefg", size: 9, overlap: 5, output: []string{"abcdefg"}},
		{input: "abcdefgh", size: 4, overlap: 2, output: []string{"abcd", "cdef", "efgh"}},
		{input: "", size: 9, overlap: 5, output: []string{}},
		{input: "äöüßé", size: 2, overlap: 0, output: []string{"äö", "üß", "é"}},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			out := Split(c.input, c.size, c.overlap)
			assert.Equal(t, c.output, contents(out))
		})
	}
}

func Test_Split_IndexesInOrder(t *testing.T) {
	chunks := Split(strings.Repeat("x", 1200), DefaultSize, DefaultOverlap)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func Test_Split_Deterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	assert.Equal(t, Split(text, 120, 15), Split(text, 120, 15))
}

func Test_Split_Coverage(t *testing.T) {
	text := strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 30)
	for _, sz := range []struct{ size, overlap int }{{500, 50}, {64, 0}, {17, 16}, {100, 99}} {
		chunks := Split(text, sz.size, sz.overlap)
		require.NotEmpty(t, chunks)

		var b strings.Builder
		b.WriteString(chunks[0].Content)
		for _, c := range chunks[1:] {
			r := []rune(c.Content)
			b.WriteString(string(r[sz.overlap:]))
		}
		assert.Equal(t, text, b.String(), "size=%d overlap=%d", sz.size, sz.overlap)

		for _, c := range chunks {
			assert.LessOrEqual(t, len([]rune(c.Content)), sz.size)
		}
	}
}

func Test_Split_ShortTextIsSingleChunk(t *testing.T) {
	text := "The cat sat on the mat. The dog ran in the park."
	w, err := NewWindow(DefaultSize, DefaultOverlap)
	require.NoError(t, err)
	chunks := w.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func Test_NewWindow(t *testing.T) {
	var cases = []struct {
		size    int
		overlap int
		valid   bool
	}{
		{size: 500, overlap: 50, valid: true},
		{size: 10, overlap: 0, valid: true},
		{size: 10, overlap: 9, valid: true},
		{size: 10, overlap: 10, valid: false},
		{size: 10, overlap: 11, valid: false},
		{size: 10, overlap: -1, valid: false},
		{size: 0, overlap: 0, valid: false},
		{size: -5, overlap: 0, valid: false},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%d/%d", c.size, c.overlap), func(t *testing.T) {
			w, err := NewWindow(c.size, c.overlap)
			if !c.valid {
				assert.ErrorIs(t, err, ErrInvalidWindow)
				assert.Nil(t, w)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.size, w.Size())
			assert.Equal(t, c.overlap, w.Overlap())
		})
	}
}
