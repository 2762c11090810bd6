package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text    string
	err     error
	block   chan struct{}
	prompts []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block != nil {
		<-f.block
	}
	return f.text, f.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func Test_Answer_TrimsGeneratedText(t *testing.T) {
	gen := &fakeGenerator{text: "\n  The cat sat on the mat.  \n"}
	o := NewOrchestrator(gen, time.Second, discard())

	out, err := o.Answer(context.Background(), "Where did the cat sit?", "The cat sat on the mat.")
	require.NoError(t, err)
	assert.Equal(t, "The cat sat on the mat.", out)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Relevant Context:\nThe cat sat on the mat.\n")
	assert.Contains(t, gen.prompts[0], "User's Question: Where did the cat sit?")
}

func Test_Answer_EmptyContextStillGenerates(t *testing.T) {
	gen := &fakeGenerator{text: "From general knowledge."}
	o := NewOrchestrator(gen, time.Second, discard())

	out, err := o.Answer(context.Background(), "What is Go?", "")
	require.NoError(t, err)
	assert.Equal(t, "From general knowledge.", out)
	assert.Equal(t, BuildPrompt("What is Go?", ""), gen.prompts[0])
}

func Test_Answer_Fallbacks(t *testing.T) {
	var cases = []struct {
		name string
		gen  *fakeGenerator
		want error
	}{
		{name: "generator error", gen: &fakeGenerator{err: errors.New("quota exceeded")}, want: ErrGeneration},
		{name: "empty text", gen: &fakeGenerator{text: ""}, want: ErrGeneration},
		{name: "blank text", gen: &fakeGenerator{text: " \n\t"}, want: ErrGeneration},
		{name: "deadline", gen: &fakeGenerator{err: context.DeadlineExceeded}, want: ErrGeneratorUnavailable},
		{name: "unavailable", gen: &fakeGenerator{err: ErrGeneratorUnavailable}, want: ErrGeneratorUnavailable},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := NewOrchestrator(c.gen, time.Second, discard()).Answer(context.Background(), "q", "ctx")
			assert.Equal(t, Fallback, out)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func Test_Answer_FailureNeverLeaksRawError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rpc error: code = PermissionDenied")}
	out, _ := NewOrchestrator(gen, time.Second, discard()).Answer(context.Background(), "q", "")
	assert.Equal(t, Fallback, out)
}

func Test_Answer_TimeoutOnHangingGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "late", block: make(chan struct{})}
	t.Cleanup(func() { close(gen.block) })

	start := time.Now()
	out, err := NewOrchestrator(gen, 20*time.Millisecond, discard()).Answer(context.Background(), "q", "")
	assert.Equal(t, Fallback, out)
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func Test_NewOrchestrator_Defaults(t *testing.T) {
	o := NewOrchestrator(&fakeGenerator{}, 0, nil)
	assert.Equal(t, DefaultTimeout, o.timeout)
	assert.NotNil(t, o.log)
}
