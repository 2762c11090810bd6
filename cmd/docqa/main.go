package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/embedding/word2vec"
	"docqa/internal/generator/gemini"
	"docqa/internal/generator/openai"
	"docqa/internal/retrieval"
	"docqa/internal/service"
	"docqa/internal/session"
	"docqa/internal/summarizer"
	"docqa/internal/textproc"
	"docqa/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
	flag.Parse()
	if flag.NArg() > 1 {
		fmt.Println("Usage: docqa [--config=config.yaml] [document.txt|document.pdf]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logFile, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %s", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, err := newGenerator(ctx, cfg.Generator)
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}
	if c, ok := gen.(io.Closer); ok {
		defer c.Close()
	}

	tok := textproc.NewTokenizer(cfg.Language)
	sessions := session.NewRegistry()
	sess := sessions.Open()
	defer sessions.Close(sess.ID())

	window, err := chunker.NewWindow(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}

	svc := service.New(service.Deps{
		Tokenizer: tok,
		Chunker:   window,
		Training: word2vec.Options{
			Dimension:    cfg.Embedder.Dimension,
			Window:       cfg.Embedder.Window,
			MinCount:     cfg.Embedder.MinCount,
			Epochs:       cfg.Embedder.Epochs,
			Negative:     cfg.Embedder.Negative,
			LearningRate: cfg.Embedder.LearningRate,
			Seed:         cfg.Embedder.Seed,
		},
		Workers:      cfg.Embedder.Workers,
		Ranker:       retrieval.NewRanker(tok, cfg.Retrieval.TopK, cfg.Retrieval.MinScore),
		Answerer:     answer.NewOrchestrator(gen, time.Duration(cfg.Generator.TimeoutSecs)*time.Second, logger),
		Summarizer:   summarizer.NewFrequencySummarizer(tok),
		MaxSentences: cfg.Summarizer.MaxSentences,
		Session:      sess,
		Log:          logger.With(slog.String("session", sess.ID())),
	})
	logger.Info("started", slog.String("generator", gen.Name()), slog.String("session", sess.ID()))

	m := tui.New(ctx, svc, tok).WithStartupFile(flag.Arg(0))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}

func newGenerator(ctx context.Context, cfg config.GeneratorConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "gemini", "":
		c, err := gemini.NewClient(ctx, gemini.Config{APIKeyEnv: cfg.APIKeyEnv, Model: cfg.Model})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		c, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.BaseURL,
			APIKeyEnv:  cfg.APIKeyEnv,
			Model:      cfg.Model,
			Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
			MaxRetries: cfg.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
