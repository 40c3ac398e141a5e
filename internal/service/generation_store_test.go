package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizforge/internal/adapter"
	"quizforge/internal/cache"
	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/service"
)

// ManualMockCache for domain.Cache interface
type ManualMockCache struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
	PingFunc   func(ctx context.Context) error
}

func (m *ManualMockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", errors.New("GetFunc not set")
}

func (m *ManualMockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	return errors.New("SetFunc not set")
}

func (m *ManualMockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return errors.New("DeleteFunc not set")
}

func (m *ManualMockCache) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func sampleGeneration() *dto.QuizResponse {
	return &dto.QuizResponse{
		ID:    "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Topic: "Physics",
		Questions: []dto.QuestionResponse{
			{Type: "open", Question: "What is gravity?", Answer: "a force"},
		},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestGenerationStore_PutGet(t *testing.T) {
	ctx := context.Background()
	stored := map[string]string{}
	var gotTTL time.Duration
	mockCache := &ManualMockCache{
		SetFunc: func(ctx context.Context, key, value string, ttl time.Duration) error {
			stored[key] = value
			gotTTL = ttl
			return nil
		},
		GetFunc: func(ctx context.Context, key string) (string, error) {
			v, ok := stored[key]
			if !ok {
				return "", domain.ErrCacheMiss
			}
			return v, nil
		},
	}
	store := service.NewGenerationStore(mockCache, time.Hour)
	gen := sampleGeneration()

	require.NoError(t, store.Put(ctx, gen))
	assert.Equal(t, time.Hour, gotTTL)
	assert.Contains(t, stored, cache.GenerationKey(gen.ID))

	got, err := store.Get(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, gen, got)

	_, err = store.Get(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAW")
	assert.ErrorIs(t, err, service.ErrGenerationNotFound)
}

func TestGenerationStore_Errors(t *testing.T) {
	ctx := context.Background()

	store := service.NewGenerationStore(&ManualMockCache{
		SetFunc: func(context.Context, string, string, time.Duration) error { return errors.New("redis down") },
		GetFunc: func(context.Context, string) (string, error) { return "{not json", nil },
	}, time.Minute)

	err := store.Put(ctx, sampleGeneration())
	assert.True(t, domain.IsCode(err, domain.CodeInternal))

	err = store.Put(ctx, nil)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))

	_, err = store.Get(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.True(t, domain.IsCode(err, domain.CodeInternal))
}

func TestGenerationStore_Noop(t *testing.T) {
	store := service.NewGenerationStore(nil, time.Minute)

	assert.NoError(t, store.Put(context.Background(), sampleGeneration()))
	_, err := store.Get(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.ErrorIs(t, err, service.ErrGenerationNotFound)
}

func TestGenerationStore_Redis(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := service.NewGenerationStore(adapter.NewRedisCacheAdapter(db), 24*time.Hour)
	gen := sampleGeneration()
	data, err := json.Marshal(gen)
	require.NoError(t, err)
	key := cache.GenerationKey(gen.ID)

	mock.ExpectSet(key, string(data), 24*time.Hour).SetVal("OK")
	mock.ExpectGet(key).SetVal(string(data))
	mock.ExpectGet(cache.GenerationKey("01ARZ3NDEKTSV4RRFFQ69G5FAW")).RedisNil()

	require.NoError(t, store.Put(ctx, gen))
	got, err := store.Get(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, gen.Questions, got.Questions)

	_, err = store.Get(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAW")
	assert.ErrorIs(t, err, service.ErrGenerationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
