package word2vec

// Model maps vocabulary words to their learned vectors. It is read-only
// after training and safe for concurrent lookups.
type Model struct {
	index     map[string]int
	words     []string
	vectors   [][]float64
	dimension int
}

// Vector returns the vector for word. Out-of-vocabulary words report false.
func (m *Model) Vector(word string) ([]float64, bool) {
	i, ok := m.index[word]
	if !ok {
		return nil, false
	}
	return m.vectors[i], true
}

func (m *Model) Has(word string) bool {
	_, ok := m.index[word]
	return ok
}

func (m *Model) Dimension() int { return m.dimension }

func (m *Model) VocabSize() int { return len(m.words) }

// Words returns the vocabulary, most frequent first.
func (m *Model) Words() []string {
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}
