package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/handler"
	"quizforge/internal/middleware"
)

// --- Manual Mocks ---

type MockQuizService struct {
	GenerateQuizFunc       func(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error)
	GenerateByKeywordsFunc func(ctx context.Context, req *dto.GenerateByKeywordsRequest) (*dto.QuizResponse, error)
	BuildOptionsFunc       func(ctx context.Context, req *dto.OptionsRequest) (*dto.OptionsResponse, error)
	SummarizeFunc          func(ctx context.Context, req *dto.SummarizeRequest) (*dto.SummarizeResponse, error)
	DetectTopicsFunc       func(ctx context.Context, req *dto.DetectTopicsRequest) (*dto.DetectTopicsResponse, error)
	ListTopicsFunc         func(ctx context.Context) (*dto.TopicsResponse, error)
	GetGenerationFunc      func(ctx context.Context, id string) (*dto.QuizResponse, error)
}

func (m *MockQuizService) GenerateQuiz(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error) {
	if m.GenerateQuizFunc != nil {
		return m.GenerateQuizFunc(ctx, req)
	}
	panic("MockQuizService.GenerateQuizFunc not implemented")
}

func (m *MockQuizService) GenerateByKeywords(ctx context.Context, req *dto.GenerateByKeywordsRequest) (*dto.QuizResponse, error) {
	if m.GenerateByKeywordsFunc != nil {
		return m.GenerateByKeywordsFunc(ctx, req)
	}
	panic("MockQuizService.GenerateByKeywordsFunc not implemented")
}

func (m *MockQuizService) BuildOptions(ctx context.Context, req *dto.OptionsRequest) (*dto.OptionsResponse, error) {
	if m.BuildOptionsFunc != nil {
		return m.BuildOptionsFunc(ctx, req)
	}
	panic("MockQuizService.BuildOptionsFunc not implemented")
}

func (m *MockQuizService) Summarize(ctx context.Context, req *dto.SummarizeRequest) (*dto.SummarizeResponse, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, req)
	}
	panic("MockQuizService.SummarizeFunc not implemented")
}

func (m *MockQuizService) DetectTopics(ctx context.Context, req *dto.DetectTopicsRequest) (*dto.DetectTopicsResponse, error) {
	if m.DetectTopicsFunc != nil {
		return m.DetectTopicsFunc(ctx, req)
	}
	panic("MockQuizService.DetectTopicsFunc not implemented")
}

func (m *MockQuizService) ListTopics(ctx context.Context) (*dto.TopicsResponse, error) {
	if m.ListTopicsFunc != nil {
		return m.ListTopicsFunc(ctx)
	}
	panic("MockQuizService.ListTopicsFunc not implemented")
}

func (m *MockQuizService) GetGeneration(ctx context.Context, id string) (*dto.QuizResponse, error) {
	if m.GetGenerationFunc != nil {
		return m.GetGenerationFunc(ctx, id)
	}
	panic("MockQuizService.GetGenerationFunc not implemented")
}

type pingCache struct {
	err error
}

func (p pingCache) Get(context.Context, string) (string, error)              { return "", domain.ErrCacheMiss }
func (p pingCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (p pingCache) Delete(context.Context, string) error                     { return nil }
func (p pingCache) Ping(context.Context) error                               { return p.err }

// --- Helpers ---

func setupApp(svc *MockQuizService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	api := app.Group("/api")
	handler.NewQuizHandler(svc).RegisterRoutes(api, middleware.NewValidationMiddleware())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

// --- Tests ---

func TestGenerateQuiz(t *testing.T) {
	var got *dto.GenerateQuizRequest
	svc := &MockQuizService{
		GenerateQuizFunc: func(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error) {
			got = req
			return &dto.QuizResponse{
				ID:        "01ARZ3NDEKTSV4RRFFQ69G5FAV",
				Topic:     req.Topic,
				Questions: []dto.QuestionResponse{{Type: "open", Question: "What is gravity?", Answer: "a force"}},
			}, nil
		},
	}
	app := setupApp(svc)

	resp, body := doJSON(t, app, http.MethodPost, "/api/quiz/generate", map[string]interface{}{
		"topic": "Physics", "text": "Gravity is a force.", "total_count": 3, "mc_count": 1, "with_summary": true,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, got)
	require.NotNil(t, got.TotalCount)
	assert.Equal(t, 3, *got.TotalCount)
	assert.Nil(t, got.OpenCount)
	assert.True(t, got.WithSummary)

	var out dto.QuizResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Physics", out.Topic)
	assert.Len(t, out.Questions, 1)
}

func TestGenerateQuiz_Rejections(t *testing.T) {
	svc := &MockQuizService{
		GenerateQuizFunc: func(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error) {
			return nil, domain.NewInsufficientKeywordsError([]string{})
		},
	}
	app := setupApp(svc)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"malformed json", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing text", map[string]interface{}{"topic": "Physics"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"count too large", map[string]interface{}{"topic": "Physics", "text": "t", "total_count": 500}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"keyword coverage", map[string]interface{}{"topic": "Physics", "text": "t", "keywords": []string{"x"}}, http.StatusBadRequest, "INSUFFICIENT_KEYWORDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodPost, "/api/quiz/generate", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var out map[string]interface{}
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.wantCode, out["code"])
		})
	}
}

func TestGenerateQuiz_InferenceFailure(t *testing.T) {
	svc := &MockQuizService{
		GenerateQuizFunc: func(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error) {
			return nil, domain.NewInferenceError("qa", errors.New("connection refused"))
		},
	}

	resp, _ := doJSON(t, setupApp(svc), http.MethodPost, "/api/quiz/generate",
		map[string]interface{}{"topic": "Physics", "text": "t"})

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGenerateByKeywords(t *testing.T) {
	svc := &MockQuizService{
		GenerateByKeywordsFunc: func(ctx context.Context, req *dto.GenerateByKeywordsRequest) (*dto.QuizResponse, error) {
			return &dto.QuizResponse{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Topic: req.Topic}, nil
		},
	}
	app := setupApp(svc)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/quiz/generate_by_keywords",
		map[string]interface{}{"topic": "Biology", "text": "Cells.", "keywords": []string{"cell"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/quiz/generate_by_keywords",
		map[string]interface{}{"topic": "Biology", "text": "Cells."})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "keywords")
}

func TestGenerateOptions(t *testing.T) {
	svc := &MockQuizService{
		BuildOptionsFunc: func(ctx context.Context, req *dto.OptionsRequest) (*dto.OptionsResponse, error) {
			return &dto.OptionsResponse{Options: []string{"mass", req.Answer}}, nil
		},
	}

	resp, body := doJSON(t, setupApp(svc), http.MethodPost, "/api/quiz/generate_mc",
		map[string]interface{}{"question": "What pulls?", "answer": "gravity", "num_choices": 2})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"options":["mass","gravity"]}`, string(body))
}

func TestSummarize(t *testing.T) {
	svc := &MockQuizService{
		SummarizeFunc: func(ctx context.Context, req *dto.SummarizeRequest) (*dto.SummarizeResponse, error) {
			return &dto.SummarizeResponse{Summary: req.Mode + ":" + req.Text}, nil
		},
	}

	resp, body := doJSON(t, setupApp(svc), http.MethodPost, "/api/summarize",
		map[string]interface{}{"text": "long text", "mode": "document"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"summary":"document:long text"}`, string(body))
}

func TestTopics(t *testing.T) {
	svc := &MockQuizService{
		ListTopicsFunc: func(ctx context.Context) (*dto.TopicsResponse, error) {
			return &dto.TopicsResponse{Topics: []dto.TopicResponse{{Name: "Physics", Keywords: []string{"force"}}}}, nil
		},
		DetectTopicsFunc: func(ctx context.Context, req *dto.DetectTopicsRequest) (*dto.DetectTopicsResponse, error) {
			return &dto.DetectTopicsResponse{Primary: "Physics", Scores: map[string]float64{"Physics": 4}}, nil
		},
	}
	app := setupApp(svc)

	resp, body := doJSON(t, app, http.MethodGet, "/api/topics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"topics":[{"name":"Physics","keywords":["force"]}]}`, string(body))

	resp, body = doJSON(t, app, http.MethodPost, "/api/topics/detect", map[string]interface{}{"text": "force"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"primary":"Physics","scores":{"Physics":4}}`, string(body))
}

func TestGetGeneration(t *testing.T) {
	svc := &MockQuizService{
		GetGenerationFunc: func(ctx context.Context, id string) (*dto.QuizResponse, error) {
			if id == "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
				return &dto.QuizResponse{ID: id, Topic: "Physics"}, nil
			}
			return nil, domain.NewGenerationNotFoundError(id)
		},
	}
	app := setupApp(svc)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/generations/01ARZ3NDEKTSV4RRFFQ69G5FAV", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/generations/01ARZ3NDEKTSV4RRFFQ69G5FAW", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/generations/lowercase-id", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.NewHealthHandler(pingCache{}).Check)
	app.Get("/degraded", handler.NewHealthHandler(pingCache{err: errors.New("no redis")}).Check)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/degraded", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
