package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/embedding/word2vec"
	"docqa/internal/retrieval"
	"docqa/internal/session"
	"docqa/internal/source"
	"docqa/internal/textproc"
)

var (
	ErrExtraction    = errors.New("document text could not be extracted")
	ErrEmptyDocument = errors.New("document has no usable text")
	ErrNoDocument    = errors.New("no document uploaded")
)

// Answerer produces user-facing text for a query and its context. The
// returned text is always presentable; the error only classifies failure.
type Answerer interface {
	Answer(ctx context.Context, query, retrieved string) (string, error)
}

// Ingested describes a successfully processed upload.
type Ingested struct {
	Document  domain.Document
	Chunks    int
	VocabSize int
	Summary   string
}

// Reply is the outcome of one question.
type Reply struct {
	Answer  string
	Context []domain.ScoredChunk
}

// Deps wires the pipeline stages.
type Deps struct {
	Tokenizer    *textproc.Tokenizer
	Chunker      domain.Chunker
	Training     word2vec.Options
	Workers      int
	Ranker       *retrieval.Ranker
	Answerer     Answerer
	Summarizer   domain.Summarizer
	MaxSentences int
	Session      *session.Session
	Log          *slog.Logger
}

// Service runs uploads and questions against one session.
type Service struct {
	Deps
}

func New(d Deps) *Service {
	if d.Session == nil {
		d.Session = session.New()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Service{Deps: d}
}

// IngestFile reads and ingests the file at path.
func (s *Service) IngestFile(ctx context.Context, path string) (Ingested, error) {
	f, err := source.Open(path)
	if err != nil {
		s.Session.Reset()
		return Ingested{}, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return s.Ingest(ctx, f)
}

// Ingest replaces the session's document with f. On any failure the
// session is left without a document.
func (s *Service) Ingest(ctx context.Context, f source.File) (Ingested, error) {
	start := time.Now()
	res, err := s.ingest(ctx, f)
	if err != nil {
		s.Session.Reset()
		s.Log.Error("document processing failed",
			slog.String("file", f.Name),
			slog.String("kind", f.Kind.String()),
			slog.String("error", err.Error()))
		return Ingested{}, err
	}
	s.Log.Info("document ingested",
		slog.String("file", f.Name),
		slog.String("kind", f.Kind.String()),
		slog.Int("chunks", res.Chunks),
		slog.Int("vocab", res.VocabSize),
		slog.Duration("took", time.Since(start)))
	return res, nil
}

func (s *Service) ingest(ctx context.Context, f source.File) (Ingested, error) {
	text, err := source.Extract(f)
	if err != nil {
		return Ingested{}, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if text == "" {
		return Ingested{}, fmt.Errorf("%w: %s produced no text", ErrExtraction, f.Name)
	}

	chunks := s.Chunker.Split(text)
	if len(chunks) == 0 {
		return Ingested{}, ErrEmptyDocument
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	sentences, err := s.Tokenizer.TokenizeAll(ctx, contents, s.Workers)
	if err != nil {
		return Ingested{}, err
	}
	model, err := word2vec.Train(ctx, sentences, s.Training)
	if err != nil {
		if errors.Is(err, word2vec.ErrEmptyCorpus) {
			return Ingested{}, fmt.Errorf("%w: %w", ErrEmptyDocument, err)
		}
		return Ingested{}, fmt.Errorf("training word vectors: %w", err)
	}

	doc := domain.Document{ID: uuid.NewString(), Name: f.Name, Kind: f.Kind, Content: text}
	if err := s.Session.ReplaceDocument(doc, chunks, model); err != nil {
		return Ingested{}, err
	}

	res := Ingested{Document: doc, Chunks: len(chunks), VocabSize: model.VocabSize()}
	if s.Summarizer != nil {
		summary, err := s.Summarizer.Summarize(text, s.MaxSentences)
		if err != nil {
			s.Log.Warn("summary failed", slog.String("error", err.Error()))
		}
		res.Summary = summary
	}
	return res, nil
}

// Ask answers query from the current document. Without a document it
// returns ErrNoDocument and touches nothing else. Generation failures come
// back as a fallback Answer together with the classifying error.
func (s *Service) Ask(ctx context.Context, query string) (Reply, error) {
	idx, ok := s.Session.Current()
	if !ok {
		return Reply{}, ErrNoDocument
	}
	query = strings.TrimSpace(query)

	ranked := s.Ranker.Rank(query, idx.Model, idx.Chunks)
	attrs := []any{slog.String("document", idx.Document.Name), slog.Int("selected", len(ranked))}
	for _, sc := range ranked {
		attrs = append(attrs, slog.Group(fmt.Sprintf("chunk_%d", sc.Chunk.Index), slog.Float64("score", sc.Score)))
	}
	s.Log.Info("context ranked", attrs...)

	text, err := s.Answerer.Answer(ctx, query, retrieval.JoinContext(ranked))
	return Reply{Answer: text, Context: ranked}, err
}

// Current reports the loaded document, if any.
func (s *Service) Current() (domain.Document, bool) {
	idx, ok := s.Session.Current()
	if !ok {
		return domain.Document{}, false
	}
	return idx.Document, true
}
