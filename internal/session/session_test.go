package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/embedding/word2vec"
)

func trained(t *testing.T, words ...string) *word2vec.Model {
	t.Helper()
	m, err := word2vec.Train(context.Background(), [][]string{words}, word2vec.Options{Seed: 1, Epochs: 1})
	require.NoError(t, err)
	return m
}

func Test_Session_EmptyByDefault(t *testing.T) {
	s := New()
	_, ok := s.Current()
	assert.False(t, ok)
	assert.NotEmpty(t, s.ID())
}

func Test_Session_ReplaceDocument(t *testing.T) {
	s := New()
	first := trained(t, "alpha", "beta")
	require.NoError(t, s.ReplaceDocument(domain.Document{Name: "a.txt"}, []domain.Chunk{{Content: "alpha beta"}}, first))

	second := trained(t, "gamma")
	require.NoError(t, s.ReplaceDocument(domain.Document{Name: "b.txt"}, []domain.Chunk{{Content: "gamma"}}, second))

	idx, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "b.txt", idx.Document.Name)
	assert.Equal(t, "gamma", idx.Chunks[0].Content)
	assert.Same(t, second, idx.Model)
}

func Test_Session_ReplaceRejectsPartialUpdate(t *testing.T) {
	s := New()
	m := trained(t, "alpha")
	require.NoError(t, s.ReplaceDocument(domain.Document{Name: "a.txt"}, []domain.Chunk{{Content: "alpha"}}, m))

	assert.ErrorIs(t, s.ReplaceDocument(domain.Document{Name: "b.txt"}, nil, m), ErrIncomplete)
	assert.ErrorIs(t, s.ReplaceDocument(domain.Document{Name: "b.txt"}, []domain.Chunk{{Content: "x"}}, nil), ErrIncomplete)

	idx, _ := s.Current()
	assert.Equal(t, "a.txt", idx.Document.Name)
}

func Test_Session_ChunksAreCopied(t *testing.T) {
	s := New()
	chunks := []domain.Chunk{{Content: "alpha"}}
	require.NoError(t, s.ReplaceDocument(domain.Document{}, chunks, trained(t, "alpha")))
	chunks[0].Content = "mutated"

	idx, _ := s.Current()
	assert.Equal(t, "alpha", idx.Chunks[0].Content)
}

func Test_Session_Reset(t *testing.T) {
	s := New()
	require.NoError(t, s.ReplaceDocument(domain.Document{}, []domain.Chunk{{Content: "alpha"}}, trained(t, "alpha")))
	s.Reset()
	_, ok := s.Current()
	assert.False(t, ok)
}

func Test_Session_ConcurrentReadersSeeWholePairs(t *testing.T) {
	s := New()
	models := []*word2vec.Model{trained(t, "alpha"), trained(t, "beta")}
	names := []string{"alpha", "beta"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			n := i % 2
			_ = s.ReplaceDocument(domain.Document{Name: names[n]}, []domain.Chunk{{Content: names[n]}}, models[n])
		}(i)
		go func() {
			defer wg.Done()
			if idx, ok := s.Current(); ok {
				assert.True(t, idx.Model.Has(idx.Chunks[0].Content))
				assert.Equal(t, idx.Document.Name, idx.Chunks[0].Content)
			}
		}()
	}
	wg.Wait()
}

func Test_Registry(t *testing.T) {
	r := NewRegistry()
	a := r.Open()
	b := r.Open()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	r.Close(a.ID())
	_, ok = r.Get(a.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}
