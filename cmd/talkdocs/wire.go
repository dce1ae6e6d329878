package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"talkdocs/internal/chunker"
	"talkdocs/internal/config"
	"talkdocs/internal/domain"
	"talkdocs/internal/embedding"
	"talkdocs/internal/embedding/hashing"
	embedollama "talkdocs/internal/embedding/ollama"
	embedopenai "talkdocs/internal/embedding/openai"
	"talkdocs/internal/llm"
	"talkdocs/internal/llm/local"
	llmollama "talkdocs/internal/llm/ollama"
	llmopenai "talkdocs/internal/llm/openai"
	"talkdocs/internal/loader"
	"talkdocs/internal/logging"
	"talkdocs/internal/openaiclient"
	"talkdocs/internal/retriever"
	"talkdocs/internal/service"
	"talkdocs/internal/summarizer"
	"talkdocs/internal/vectorstore"
)

type logTarget int

const (
	logToStderr logTarget = iota
	// The TUI owns the terminal, so its logs go to <data_dir>/talkdocs.log.
	logToFile
)

// app holds the assembled components for one command invocation.
type app struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	svc     *service.RAGService
	closers []io.Closer
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if flagConfig == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(flagConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = strings.ToLower(flagLogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(target logTarget) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.PrepareDirectories(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	var w io.Writer = os.Stderr
	if target == logToFile {
		f, err := os.OpenFile(filepath.Join(cfg.Storage.DataDir, "talkdocs.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		w = f
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, w)
	if err != nil {
		a.close()
		return nil, err
	}
	a.logger = logger

	if err := a.build(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) build() error {
	cfg := a.cfg

	emb, err := newEmbedder(cfg, a.logger)
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg, a.logger)
	if err != nil {
		return err
	}
	ch, err := chunker.NewWindowChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	if err != nil {
		return err
	}

	index, err := vectorstore.New(vectorstore.Config{
		Dir:            cfg.Storage.IndexDir,
		Name:           cfg.Storage.IndexName,
		MetadataFormat: cfg.Storage.MetadataFormat,
	}, a.logger)
	if err != nil {
		return err
	}
	if _, err := index.Load(); err != nil {
		return fmt.Errorf("load index %s: %w", cfg.Storage.IndexName, err)
	}
	// Remote embedders learn their width on the first call and report 0 here.
	if d := emb.Dimension(); d > 0 && index.Len() > 0 && d != index.Dimension() {
		return fmt.Errorf("%w: index %s holds %d-wide vectors but the %s embedder produces %d; clear the index or switch embedder",
			domain.ErrConfiguration, cfg.Storage.IndexName, index.Dimension(), emb.Name(), d)
	}

	ld := loader.New(cfg.Storage.UploadDir, cfg.Storage.MaxFileSizeMB, a.logger)
	rt := retriever.New(emb, index, cfg.Retriever.TopK, float32(cfg.Retriever.ScoreThreshold), a.logger)
	composer := service.NewComposer(rt, gen, a.logger)
	ingestion := service.NewIngestionService(ld, ch, emb, index, a.logger)
	a.svc = service.NewRAGService(ingestion, rt, composer, index, a.logger)

	a.logger.Debug("components ready",
		"embedder", emb.Name(),
		"llm", cfg.LLM.Type,
		"index", cfg.Storage.IndexName,
		"chunks", index.Len(),
	)
	return nil
}

func newEmbedder(cfg *config.AppConfig, logger *slog.Logger) (embedding.Embedder, error) {
	switch strings.ToLower(cfg.Embedder.Type) {
	case "hashing":
		e, err := hashing.NewEmbedder(cfg.Embedder.Dimension)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "openai":
		api, err := openaiclient.New(openaiclient.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return embedopenai.NewClient(api, embedopenai.Config{
			Model:     cfg.OpenAI.EmbeddingModel,
			BatchSize: cfg.OpenAI.BatchSize,
		}, logger), nil
	case "ollama":
		return embedollama.NewEmbedder(embedollama.Config{
			BaseURL:   cfg.Ollama.URL,
			Model:     cfg.Ollama.EmbeddingModel,
			BatchSize: cfg.Ollama.BatchSize,
			Timeout:   time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func newGenerator(cfg *config.AppConfig, logger *slog.Logger) (llm.Generator, error) {
	switch strings.ToLower(cfg.LLM.Type) {
	case "local":
		return local.NewGenerator(summarizer.NewFrequencySummarizer(), cfg.LLM.MaxSentences), nil
	case "openai":
		api, err := openaiclient.New(openaiclient.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai llm init failed: %w", err)
		}
		return llmopenai.NewGenerator(api, llmopenai.Config{
			Model:       cfg.OpenAI.LLMModel,
			Temperature: cfg.LLM.Temperature,
		}, logger), nil
	case "ollama":
		return llmollama.NewChat(llmollama.Config{
			BaseURL: cfg.Ollama.URL,
			Model:   cfg.Ollama.LLMModel,
			Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm: %s", cfg.LLM.Type)
	}
}
