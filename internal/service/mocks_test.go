package service_test

import (
	"context"
	"math/rand"

	"github.com/stretchr/testify/mock"

	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/generator"
	"quizforge/internal/topics"
)

// --- MockQuestionEngine ---
type MockQuestionEngine struct {
	mock.Mock
}

func (m *MockQuestionEngine) Generate(ctx context.Context, req generator.GenerateRequest, rng *rand.Rand) ([]domain.Candidate, error) {
	args := m.Called(ctx, req, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

func (m *MockQuestionEngine) GenerateForKeywords(ctx context.Context, topic, content string, count int, keywords []string, rng *rand.Rand) ([]domain.QAPair, error) {
	args := m.Called(ctx, topic, content, count, keywords, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QAPair), args.Error(1)
}

func (m *MockQuestionEngine) BuildOptions(question, answer string, n int, rng *rand.Rand) []string {
	args := m.Called(question, answer, n, rng)
	return args.Get(0).([]string)
}

func (m *MockQuestionEngine) Summarize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func (m *MockQuestionEngine) SummarizeDocument(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func (m *MockQuestionEngine) Catalog() *domain.Catalog {
	args := m.Called()
	return args.Get(0).(*domain.Catalog)
}

// --- MockTopicDetector ---
type MockTopicDetector struct {
	mock.Mock
}

func (m *MockTopicDetector) Detect(ctx context.Context, text string, method topics.Method, topN int) (topics.Detection, error) {
	args := m.Called(ctx, text, method, topN)
	return args.Get(0).(topics.Detection), args.Error(1)
}

// --- MockGenerationStore ---
type MockGenerationStore struct {
	mock.Mock
}

func (m *MockGenerationStore) Put(ctx context.Context, result *dto.QuizResponse) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockGenerationStore) Get(ctx context.Context, id string) (*dto.QuizResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuizResponse), args.Error(1)
}
