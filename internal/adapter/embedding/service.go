// Package embedding turns text into vectors through langchaingo embedders.
// Vectors are cached gob-encoded and concurrent requests for the same text
// share one upstream call.
package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	ollamaLLM "github.com/tmc/langchaingo/llms/ollama"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quizforge/internal/cache"
	"quizforge/internal/config"
	"quizforge/internal/domain"
)

const defaultTTL = 168 * time.Hour

// Service implements domain.EmbeddingService.
type Service struct {
	embedder embeddings.Embedder
	provider string
	model    string
	cache    domain.Cache
	ttl      time.Duration
	sfGroup  singleflight.Group
	logger   *zap.Logger
}

// New wraps an embedder. cache may be nil.
func New(embedder embeddings.Embedder, provider, model string, c domain.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embedder: embedder, provider: provider, model: model, cache: c, ttl: ttl, logger: logger}
}

// NewFromConfig builds the embedder named by cfg.Source. It returns
// (nil, nil) when embeddings are disabled.
func NewFromConfig(cfg config.ModelConfig, c domain.Cache, ttl time.Duration, logger *zap.Logger) (*Service, error) {
	var (
		embedder embeddings.Embedder
		err      error
	)
	switch cfg.Source {
	case "", config.SourceNone:
		return nil, nil
	case config.SourceOllama:
		embedder, err = newOllamaEmbedder(cfg)
	case config.SourceOpenAI:
		embedder, err = newOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	return New(embedder, cfg.Source, cfg.Model, c, ttl, logger), nil
}

func newOllamaEmbedder(cfg config.ModelConfig) (embeddings.Embedder, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}
	llm, err := ollamaLLM.New(ollamaLLM.WithModel(cfg.Model), ollamaLLM.WithServerURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama LLM client for embedder: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from Ollama LLM: %w", err)
	}
	return embedder, nil
}

func newOpenAIEmbedder(cfg config.ModelConfig) (embeddings.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	opts := []openaiLLM.Option{openaiLLM.WithToken(cfg.APIKey), openaiLLM.WithEmbeddingModel(model)}
	if cfg.URL != "" {
		opts = append(opts, openaiLLM.WithBaseURL(cfg.URL))
	}
	llm, err := openaiLLM.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client for embedder: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from OpenAI LLM: %w", err)
	}
	return embedder, nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Generate returns the embedding of text, from cache when possible.
func (s *Service) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	key := cache.EmbeddingKey(s.provider, s.model, hashString(text))
	if vec, ok := s.lookup(ctx, key); ok {
		return vec, nil
	}

	res, err, shared := s.sfGroup.Do(key, func() (interface{}, error) {
		vec, err := s.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding using %s: %w", s.provider, err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("received empty embedding from %s", s.provider)
		}
		s.store(ctx, key, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("embedding request shared", zap.String("cache_key", key))
	}

	vec, ok := res.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight.Do for embedding: %T", res)
	}
	return vec, nil
}

func (s *Service) lookup(ctx context.Context, key string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("embedding cache read failed", zap.String("cache_key", key), zap.Error(err))
		}
		return nil, false
	}
	var vec []float32
	if err := gob.NewDecoder(bytes.NewReader([]byte(data))).Decode(&vec); err != nil {
		s.logger.Warn("discarding undecodable cached embedding", zap.String("cache_key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (s *Service) store(ctx context.Context, key string, vec []float32) {
	if s.cache == nil {
		return
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vec); err != nil {
		s.logger.Error("failed to gob encode embedding", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, buf.String(), s.ttl); err != nil {
		s.logger.Warn("failed to cache embedding", zap.String("cache_key", key), zap.Error(err))
	}
}
