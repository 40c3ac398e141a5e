package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quizforge/internal/cache"
	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/logger"
)

// ErrGenerationNotFound is returned when a stored generation is absent or expired.
var ErrGenerationNotFound = errors.New("generation not found in store")

// GenerationStore keeps generated question sets for later retrieval by ID.
type GenerationStore interface {
	Put(ctx context.Context, result *dto.QuizResponse) error
	Get(ctx context.Context, id string) (*dto.QuizResponse, error)
}

type generationStoreImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewGenerationStore stores generations in cache for ttl. A nil cache gives
// a store that keeps nothing.
func NewGenerationStore(c domain.Cache, ttl time.Duration) GenerationStore {
	if c == nil {
		logger.Get().Warn("GenerationStore initialized with nil cache. Store will be no-op.")
		return &noopGenerationStore{}
	}
	return &generationStoreImpl{cache: c, ttl: ttl}
}

// Put stores result under its ID.
func (s *generationStoreImpl) Put(ctx context.Context, result *dto.QuizResponse) error {
	if result == nil {
		return domain.NewInvalidInputError("cannot store nil generation")
	}

	key := cache.GenerationKey(result.ID)
	data, err := json.Marshal(result)
	if err != nil {
		logger.Get().Error("Failed to marshal generation", zap.Error(err), zap.String("id", result.ID))
		return domain.NewInternalError("failed to marshal generation", err)
	}

	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		logger.Get().Error("Failed to store generation", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to store generation for key %s", key), err)
	}
	logger.Get().Debug("Stored generation", zap.String("key", key), zap.Duration("ttl", s.ttl))
	return nil
}

// Get loads a stored generation.
func (s *generationStoreImpl) Get(ctx context.Context, id string) (*dto.QuizResponse, error) {
	key := cache.GenerationKey(id)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Debug("Generation store miss", zap.String("key", key))
			return nil, ErrGenerationNotFound
		}
		logger.Get().Error("Failed to read generation", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to read generation for key %s", key), err)
	}
	if data == "" {
		return nil, ErrGenerationNotFound
	}

	var result dto.QuizResponse
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		logger.Get().Error("Failed to unmarshal generation", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to unmarshal generation for key %s", key), err)
	}
	return &result, nil
}

type noopGenerationStore struct{}

func (s *noopGenerationStore) Put(ctx context.Context, result *dto.QuizResponse) error {
	return nil
}

func (s *noopGenerationStore) Get(ctx context.Context, id string) (*dto.QuizResponse, error) {
	return nil, ErrGenerationNotFound
}
