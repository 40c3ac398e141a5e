// Package app wires configuration into the engine and its services. Both
// the API server and the batch command build on it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"quizforge/internal/adapter"
	"quizforge/internal/adapter/embedding"
	"quizforge/internal/adapter/hfinference"
	"quizforge/internal/adapter/llm"
	"quizforge/internal/cache"
	"quizforge/internal/catalog"
	"quizforge/internal/config"
	"quizforge/internal/domain"
	"quizforge/internal/generator"
	"quizforge/internal/service"
	"quizforge/internal/tokenize"
	"quizforge/internal/topics"
)

// Components is everything a binary needs to serve generation requests.
type Components struct {
	// Cache is nil when redis is not configured.
	Cache    domain.Cache
	Catalog  *domain.Catalog
	Engine   *generator.Engine
	Detector *topics.Detector
	Service  service.QuizService

	closers []func() error
}

// Build connects the configured backends. Catalog problems are logged and
// fall back to defaults; a missing inference backend is an error.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Components, error) {
	c := &Components{}

	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		c.Cache = adapter.NewRedisCacheAdapter(client)
		c.closers = append(c.closers, client.Close)
		log.Info("Redis connected", zap.String("address", cfg.Redis.Address))
	} else {
		log.Info("Redis not configured, generations will not be stored")
	}

	cat, warnings := catalog.Load(catalog.Paths{
		Topics:           cfg.Catalog.TopicsPath,
		Templates:        cfg.Catalog.TemplatesPath,
		KeywordTemplates: cfg.Catalog.KeywordTemplatesPath,
	}, log)
	if len(warnings) > 0 {
		log.Warn("Catalog loaded with built-in fallbacks", zap.Int("tables", len(warnings)))
	}
	c.Catalog = cat

	qa, err := NewExtractiveQA(cfg.Inference.QA, log)
	if err != nil {
		return nil, fmt.Errorf("init qa backend: %w", err)
	}
	seq, err := NewSequenceGenerator(cfg.Inference.Seq, log)
	if err != nil {
		return nil, fmt.Errorf("init sequence backend: %w", err)
	}

	var embedder domain.EmbeddingService
	emb, err := embedding.NewFromConfig(cfg.Inference.Embedding, c.Cache, cfg.Redis.EmbeddingTTL, log)
	if err != nil {
		return nil, fmt.Errorf("init embedding backend: %w", err)
	}
	if emb != nil {
		embedder = emb
	}

	c.Engine = generator.NewEngine(cat, qa, seq, NewTruncator(cfg.Generation.TokenizerEncoding, log), cfg.Generation.Params(), log)
	c.Detector = topics.NewDetector(cat, embedder, log)

	var store service.GenerationStore
	if c.Cache != nil {
		store = service.NewGenerationStore(c.Cache, cfg.Redis.ResultTTL)
	}
	c.Service = service.NewQuizService(c.Engine, c.Detector, store)
	return c, nil
}

// Close releases backend connections.
func (c *Components) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewExtractiveQA builds the question-answering backend named by cfg.Source.
func NewExtractiveQA(cfg config.ModelConfig, log *zap.Logger) (domain.ExtractiveQA, error) {
	switch cfg.Source {
	case config.SourceHTTP:
		return hfinference.NewQAClient(httpOptions(cfg, log))
	case config.SourceOllama, config.SourceOpenAI:
		model, err := llm.NewModel(cfg)
		if err != nil {
			return nil, err
		}
		return llm.NewQAAdapter(model, cfg.Timeout, log)
	}
	return nil, fmt.Errorf("unsupported qa source %q", cfg.Source)
}

// NewSequenceGenerator builds the generative backend. Source "none" returns
// nil, which turns off the neural fallback and summaries.
func NewSequenceGenerator(cfg config.ModelConfig, log *zap.Logger) (domain.SequenceGenerator, error) {
	switch cfg.Source {
	case config.SourceNone, "":
		log.Warn("No sequence model configured, neural fallback and summaries are disabled")
		return nil, nil
	case config.SourceHTTP:
		return hfinference.NewText2TextClient(httpOptions(cfg, log))
	case config.SourceOllama, config.SourceOpenAI:
		model, err := llm.NewModel(cfg)
		if err != nil {
			return nil, err
		}
		return llm.NewSequenceAdapter(model, cfg.Timeout, log), nil
	}
	return nil, fmt.Errorf("unsupported sequence source %q", cfg.Source)
}

// NewTruncator loads the tiktoken encoding, or falls back to whitespace
// tokens when the encoding cannot be loaded.
func NewTruncator(encoding string, log *zap.Logger) tokenize.Truncator {
	if encoding == "" {
		return tokenize.Whitespace{}
	}
	tk, err := tokenize.NewTiktoken(encoding)
	if err != nil {
		log.Warn("Falling back to whitespace tokens", zap.String("encoding", encoding), zap.Error(err))
		return tokenize.Whitespace{}
	}
	return tk
}

func httpOptions(cfg config.ModelConfig, log *zap.Logger) hfinference.Options {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return hfinference.Options{
		URL:        cfg.URL,
		Timeout:    cfg.Timeout,
		MaxRetries: uint(retries),
		Logger:     log,
	}
}
