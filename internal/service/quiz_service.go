package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/generator"
	"quizforge/internal/logger"
	"quizforge/internal/observability"
	"quizforge/internal/topics"
	"quizforge/internal/util"
)

// Request defaults.
const (
	DefaultTotalCount = 10
	DefaultNumChoices = 4
	DefaultTopN       = 3
)

// keywordTopicSeparator joins the topic and keyword in the keyword branch.
const keywordTopicSeparator = " – "

// QuestionEngine is the part of generator.Engine the service drives.
type QuestionEngine interface {
	Generate(ctx context.Context, req generator.GenerateRequest, rng *rand.Rand) ([]domain.Candidate, error)
	GenerateForKeywords(ctx context.Context, topic, content string, count int, keywords []string, rng *rand.Rand) ([]domain.QAPair, error)
	BuildOptions(question, answer string, n int, rng *rand.Rand) []string
	Summarize(ctx context.Context, text string) (string, error)
	SummarizeDocument(ctx context.Context, text string) (string, error)
	Catalog() *domain.Catalog
}

// TopicDetector ranks catalog topics for a text.
type TopicDetector interface {
	Detect(ctx context.Context, text string, method topics.Method, topN int) (topics.Detection, error)
}

// QuizService defines the question generation use cases.
type QuizService interface {
	GenerateQuiz(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error)
	GenerateByKeywords(ctx context.Context, req *dto.GenerateByKeywordsRequest) (*dto.QuizResponse, error)
	BuildOptions(ctx context.Context, req *dto.OptionsRequest) (*dto.OptionsResponse, error)
	Summarize(ctx context.Context, req *dto.SummarizeRequest) (*dto.SummarizeResponse, error)
	DetectTopics(ctx context.Context, req *dto.DetectTopicsRequest) (*dto.DetectTopicsResponse, error)
	ListTopics(ctx context.Context) (*dto.TopicsResponse, error)
	GetGeneration(ctx context.Context, id string) (*dto.QuizResponse, error)
}

type quizService struct {
	engine   QuestionEngine
	detector TopicDetector
	store    GenerationStore
	now      func() time.Time
}

// NewQuizService creates a new instance of quizService. store may be nil,
// in which case generations are not kept.
func NewQuizService(engine QuestionEngine, detector TopicDetector, store GenerationStore) QuizService {
	if store == nil {
		store = &noopGenerationStore{}
	}
	return &quizService{engine: engine, detector: detector, store: store, now: time.Now}
}

// GenerateQuiz generates a mixed question set. With keywords the request
// must pass the coverage gate and produces one open question per keyword.
func (s *quizService) GenerateQuiz(ctx context.Context, req *dto.GenerateQuizRequest) (_ *dto.QuizResponse, err error) {
	total := intOr(req.TotalCount, DefaultTotalCount)
	ctx, span := observability.StartSpan(ctx, "QuizService.GenerateQuiz",
		attribute.String("quiz.topic", req.Topic),
		attribute.Int("quiz.total_count", total),
		attribute.Int("quiz.keywords", len(req.Keywords)),
	)
	defer observability.FinishSpan(span, &err)

	rng := newRand(req.Seed)
	var candidates []domain.Candidate

	if len(req.Keywords) > 0 {
		found := FoundKeywords(req.Text, req.Keywords)
		if len(found) < max(1, len(req.Keywords)/3) {
			logger.Get().Info("Keyword coverage too low",
				zap.Int("requested", len(req.Keywords)),
				zap.Strings("found", found))
			return nil, domain.NewInsufficientKeywordsError(found)
		}
		for _, kw := range req.Keywords {
			got, err := s.engine.Generate(ctx, generator.GenerateRequest{
				Topic:      req.Topic + keywordTopicSeparator + kw,
				Content:    req.Text,
				TotalCount: 1,
				OpenCount:  1,
			}, rng)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, got...)
		}
		if len(candidates) > total {
			candidates = candidates[:total]
		}
	} else {
		genReq := generator.GenerateRequest{
			Topic:       req.Topic,
			Content:     req.Text,
			TotalCount:  total,
			OpenCount:   intOr(req.OpenCount, total),
			MCCount:     intOr(req.MCCount, 0),
			OptionCount: intOr(req.NumChoices, 0),
		}
		candidates, err = s.engine.Generate(ctx, genReq, rng)
		if err != nil {
			return nil, err
		}
	}

	return s.finish(ctx, req.Topic, req.Text, req.WithSummary, candidates)
}

// GenerateByKeywords asks for one keyword-targeted question per keyword
// until total_count questions are collected.
func (s *quizService) GenerateByKeywords(ctx context.Context, req *dto.GenerateByKeywordsRequest) (_ *dto.QuizResponse, err error) {
	total := intOr(req.TotalCount, DefaultTotalCount)
	ctx, span := observability.StartSpan(ctx, "QuizService.GenerateByKeywords",
		attribute.String("quiz.topic", req.Topic),
		attribute.Int("quiz.total_count", total),
		attribute.Int("quiz.keywords", len(req.Keywords)),
	)
	defer observability.FinishSpan(span, &err)

	if len(req.Keywords) == 0 {
		return nil, domain.NewInvalidInputError("No keywords provided")
	}

	rng := newRand(req.Seed)
	var candidates []domain.Candidate
	for _, kw := range req.Keywords {
		if len(candidates) >= total {
			break
		}
		pairs, err := s.engine.GenerateForKeywords(ctx, req.Topic, req.Text, 1, []string{kw}, rng)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			candidates = append(candidates, domain.NewOpenCandidate(p))
		}
	}
	if len(candidates) > total {
		candidates = candidates[:total]
	}

	return s.finish(ctx, req.Topic, req.Text, req.WithSummary, candidates)
}

func (s *quizService) finish(ctx context.Context, topic, text string, withSummary bool, candidates []domain.Candidate) (*dto.QuizResponse, error) {
	resp := &dto.QuizResponse{
		ID:        util.NewULID(),
		Topic:     topic,
		Questions: ToQuestionResponses(candidates),
		CreatedAt: s.now().UTC(),
	}
	if withSummary {
		summary, err := s.engine.Summarize(ctx, text)
		if err != nil {
			return nil, err
		}
		resp.Summary = summary
	}

	if err := s.store.Put(ctx, resp); err != nil {
		// The questions are still returned; only later lookup by ID is lost.
		logger.Get().Warn("Failed to store generation", zap.String("id", resp.ID), zap.Error(err))
	}
	logger.Get().Info("Generation completed",
		zap.String("id", resp.ID),
		zap.String("topic", topic),
		zap.Int("questions", len(resp.Questions)))
	return resp, nil
}

// BuildOptions returns shuffled options for one question.
func (s *quizService) BuildOptions(ctx context.Context, req *dto.OptionsRequest) (_ *dto.OptionsResponse, err error) {
	_, span := observability.StartSpan(ctx, "QuizService.BuildOptions")
	defer observability.FinishSpan(span, &err)

	n := intOr(req.NumChoices, DefaultNumChoices)
	options := s.engine.BuildOptions(req.Question, req.Answer, n, newRand(req.Seed))
	return &dto.OptionsResponse{Options: options}, nil
}

// Summarize produces a short summary, or a cleaned document summary in
// document mode.
func (s *quizService) Summarize(ctx context.Context, req *dto.SummarizeRequest) (_ *dto.SummarizeResponse, err error) {
	mode := strings.ToLower(req.Mode)
	ctx, span := observability.StartSpan(ctx, "QuizService.Summarize", attribute.String("summary.mode", mode))
	defer observability.FinishSpan(span, &err)

	var summary string
	if mode == dto.SummaryModeDocument {
		summary, err = s.engine.SummarizeDocument(ctx, req.Text)
	} else {
		summary, err = s.engine.Summarize(ctx, req.Text)
	}
	if err != nil {
		return nil, err
	}
	return &dto.SummarizeResponse{Summary: summary}, nil
}

func (s *quizService) DetectTopics(ctx context.Context, req *dto.DetectTopicsRequest) (_ *dto.DetectTopicsResponse, err error) {
	ctx, span := observability.StartSpan(ctx, "QuizService.DetectTopics", attribute.String("topics.method", req.Method))
	defer observability.FinishSpan(span, &err)

	method, err := topics.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	det, err := s.detector.Detect(ctx, req.Text, method, topN)
	if err != nil {
		return nil, err
	}
	return &dto.DetectTopicsResponse{
		Primary:   det.Primary,
		Secondary: det.Secondary,
		Tertiary:  det.Tertiary,
		Scores:    det.Scores,
	}, nil
}

func (s *quizService) ListTopics(ctx context.Context) (*dto.TopicsResponse, error) {
	cat := s.engine.Catalog()
	resp := &dto.TopicsResponse{Topics: make([]dto.TopicResponse, 0, len(cat.Topics))}
	for _, t := range cat.Topics {
		resp.Topics = append(resp.Topics, dto.TopicResponse{Name: t.Name, Keywords: t.Keywords})
	}
	return resp, nil
}

func (s *quizService) GetGeneration(ctx context.Context, id string) (_ *dto.QuizResponse, err error) {
	ctx, span := observability.StartSpan(ctx, "QuizService.GetGeneration", attribute.String("generation.id", id))
	defer observability.FinishSpan(span, &err)

	resp, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrGenerationNotFound) {
		return nil, domain.NewGenerationNotFoundError(id)
	}
	return resp, err
}

// FoundKeywords returns the keywords that occur in text as whole words,
// ignoring case, in request order.
func FoundKeywords(text string, keywords []string) []string {
	found := []string{}
	for _, kw := range keywords {
		if topics.WordPattern(kw).MatchString(text) {
			found = append(found, kw)
		}
	}
	return found
}

// ToQuestionResponses maps engine candidates onto the API shape.
func ToQuestionResponses(candidates []domain.Candidate) []dto.QuestionResponse {
	out := make([]dto.QuestionResponse, 0, len(candidates))
	for _, c := range candidates {
		q := dto.QuestionResponse{Type: string(c.Kind), Question: c.Question, Answer: c.Answer}
		if c.Kind == domain.KindMultipleChoice {
			idx := c.CorrectIndex
			q.Options = c.Options
			q.CorrectIndex = &idx
		}
		out = append(out, q)
	}
	return out
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// newRand gives every request its own source. A fixed seed makes the
// sampling reproducible.
func newRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
