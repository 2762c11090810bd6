// Package word2vec learns word vectors for a single document with
// skip-gram and negative sampling.
//
// Initialization and sampling are random. Unless Options.Seed is set, two
// trainings on the same corpus give different vectors with similar
// neighbourhoods, so callers should compare rankings, not raw values.
package word2vec

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"time"
)

var ErrEmptyCorpus = errors.New("word2vec: empty corpus")

const maxExp = 6.0

// Options configure training. Zero fields take the defaults below.
type Options struct {
	Dimension    int
	Window       int
	MinCount     int
	Epochs       int
	Negative     int
	LearningRate float64
	// Seed makes training reproducible when non-zero.
	Seed uint64
}

func DefaultOptions() Options {
	return Options{
		Dimension:    100,
		Window:       5,
		MinCount:     1,
		Epochs:       5,
		Negative:     5,
		LearningRate: 0.025,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Dimension <= 0 {
		o.Dimension = d.Dimension
	}
	if o.Window <= 0 {
		o.Window = d.Window
	}
	if o.MinCount <= 0 {
		o.MinCount = d.MinCount
	}
	if o.Epochs <= 0 {
		o.Epochs = d.Epochs
	}
	if o.Negative <= 0 {
		o.Negative = d.Negative
	}
	if o.LearningRate <= 0 {
		o.LearningRate = d.LearningRate
	}
	return o
}

// Train fits word vectors over sentences, one sentence per chunk.
// Tokens seen fewer than MinCount times get no vector.
func Train(ctx context.Context, sentences [][]string, opts Options) (*Model, error) {
	opts = opts.withDefaults()

	words, counts := buildVocab(sentences, opts.MinCount)
	if len(words) == 0 {
		return nil, ErrEmptyCorpus
	}
	index := make(map[string]int, len(words))
	for i, w := range words {
		index[w] = i
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	t := &trainer{
		opts:  opts,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		syn0:  make([][]float64, len(words)),
		syn1:  make([][]float64, len(words)),
		noise: noiseDistribution(counts),
		neu1e: make([]float64, opts.Dimension),
	}
	for i := range words {
		t.syn0[i] = make([]float64, opts.Dimension)
		t.syn1[i] = make([]float64, opts.Dimension)
		for j := range t.syn0[i] {
			t.syn0[i][j] = (t.rng.Float64() - 0.5) / float64(opts.Dimension)
		}
	}

	encoded := make([][]int, 0, len(sentences))
	total := 0
	for _, s := range sentences {
		ids := make([]int, 0, len(s))
		for _, w := range s {
			if i, ok := index[w]; ok {
				ids = append(ids, i)
			}
		}
		total += len(ids)
		encoded = append(encoded, ids)
	}

	budget := float64(opts.Epochs*total + 1)
	processed := 0
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for _, ids := range encoded {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			alpha := opts.LearningRate * math.Max(1-float64(processed)/budget, 0.0001)
			t.sentence(ids, alpha)
			processed += len(ids)
		}
	}

	return &Model{index: index, words: words, vectors: t.syn0, dimension: opts.Dimension}, nil
}

type trainer struct {
	opts  Options
	rng   *rand.Rand
	syn0  [][]float64
	syn1  [][]float64
	noise []float64
	neu1e []float64
}

func (t *trainer) sentence(ids []int, alpha float64) {
	for pos, word := range ids {
		// Shrink the window at random so near neighbours weigh more.
		b := t.rng.IntN(t.opts.Window)
		for j := pos - t.opts.Window + b; j <= pos+t.opts.Window-b; j++ {
			if j < 0 || j >= len(ids) || j == pos {
				continue
			}
			t.pair(ids[j], word, alpha)
		}
	}
}

// pair updates the input vector of ctxWord towards predicting word.
func (t *trainer) pair(ctxWord, word int, alpha float64) {
	l1 := t.syn0[ctxWord]
	clear(t.neu1e)
	for d := 0; d <= t.opts.Negative; d++ {
		target, label := word, 1.0
		if d > 0 {
			target, label = t.sampleNoise(), 0
			if target == word {
				continue
			}
		}
		l2 := t.syn1[target]
		f := dot(l1, l2)
		var g float64
		switch {
		case f > maxExp:
			g = (label - 1) * alpha
		case f < -maxExp:
			g = label * alpha
		default:
			g = (label - sigmoid(f)) * alpha
		}
		for k := range l1 {
			t.neu1e[k] += g * l2[k]
		}
		for k := range l2 {
			l2[k] += g * l1[k]
		}
	}
	for k := range l1 {
		l1[k] += t.neu1e[k]
	}
}

func (t *trainer) sampleNoise() int {
	x := t.rng.Float64() * t.noise[len(t.noise)-1]
	i := sort.SearchFloat64s(t.noise, x)
	if i >= len(t.noise) {
		i = len(t.noise) - 1
	}
	return i
}

// buildVocab returns words ordered by descending frequency, ties broken
// alphabetically, with their counts.
func buildVocab(sentences [][]string, minCount int) ([]string, []int) {
	freq := make(map[string]int)
	for _, s := range sentences {
		for _, w := range s {
			freq[w]++
		}
	}
	words := make([]string, 0, len(freq))
	for w, c := range freq {
		if c >= minCount {
			words = append(words, w)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	counts := make([]int, len(words))
	for i, w := range words {
		counts[i] = freq[w]
	}
	return words, counts
}

// noiseDistribution is the cumulative unigram distribution raised to 3/4.
func noiseDistribution(counts []int) []float64 {
	cum := make([]float64, len(counts))
	sum := 0.0
	for i, c := range counts {
		sum += math.Pow(float64(c), 0.75)
		cum[i] = sum
	}
	return cum
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
