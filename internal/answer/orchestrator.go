package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docqa/internal/domain"
)

// Fallback is shown whenever no answer could be generated.
const Fallback = "Sorry, I couldn't generate a response. Try rephrasing your question."

const DefaultTimeout = 60 * time.Second

var (
	ErrGeneration           = errors.New("generation failed")
	ErrGeneratorUnavailable = domain.ErrGeneratorUnavailable
)

const promptTemplate = `You are a helpful AI assistant. Answer the following question based on the provided information.

Relevant Context:
%s

User's Question: %s

Answer:
`

// BuildPrompt embeds the retrieved context verbatim, even when empty.
func BuildPrompt(query, retrieved string) string {
	return fmt.Sprintf(promptTemplate, retrieved, query)
}

// Orchestrator turns a query and its retrieved context into an answer.
type Orchestrator struct {
	generator domain.Generator
	timeout   time.Duration
	log       *slog.Logger
}

func NewOrchestrator(generator domain.Generator, timeout time.Duration, log *slog.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{generator: generator, timeout: timeout, log: log}
}

type result struct {
	text string
	err  error
}

// Answer always returns text fit for the user: the trimmed generation, or
// Fallback. The error only classifies a failure as ErrGeneration or
// ErrGeneratorUnavailable and must not be shown in place of the text.
func (o *Orchestrator) Answer(ctx context.Context, query, retrieved string) (string, error) {
	prompt := BuildPrompt(query, retrieved)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := o.generator.Generate(ctx, prompt)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	if res.err != nil {
		err := o.classify(ctx, res.err)
		o.log.Warn("answer generation failed",
			slog.String("generator", o.generator.Name()),
			slog.String("error", err.Error()))
		return Fallback, err
	}

	text := strings.TrimSpace(res.text)
	if text == "" {
		o.log.Warn("generator returned no text", slog.String("generator", o.generator.Name()))
		return Fallback, fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return text, nil
}

func (o *Orchestrator) classify(ctx context.Context, err error) error {
	if errors.Is(err, ErrGeneratorUnavailable) {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrGeneration, err)
}
