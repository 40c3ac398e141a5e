package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"quizforge/internal/domain"
)

const qaPrompt = `You are an extractive question answering system. Answer the question by copying the shortest exact span from the context. Respond with ONLY a JSON object in the following format:
{
    "answer": "exact span from the context",
    "score": 0.0
}

Rules:
1. "answer" must appear verbatim in the context; use "" when the context does not answer the question
2. "score" is your confidence between 0 and 1

Context: %s
Question: %s`

const qaResponseSchema = `{
  "type": "object",
  "required": ["answer", "score"],
  "properties": {
    "answer": {"type": "string"},
    "score": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

// QAAdapter implements domain.ExtractiveQA by prompting a chat model for a
// JSON answer. Answers that are not a span of the context get score 0, so
// the confidence gate drops them.
type QAAdapter struct {
	model   llms.Model
	timeout time.Duration
	schema  *jsonschema.Schema
	logger  *zap.Logger
}

func NewQAAdapter(model llms.Model, timeout time.Duration, logger *zap.Logger) (*QAAdapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := compileSchema("qa-response", qaResponseSchema)
	if err != nil {
		return nil, err
	}
	return &QAAdapter{model: model, timeout: timeout, schema: schema, logger: logger}, nil
}

func compileSchema(name, def string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", name, err)
	}
	return c.Compile(url)
}

func (q *QAAdapter) Answer(ctx context.Context, query domain.QAQuery) (domain.QAResult, error) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	raw, err := llms.GenerateFromSinglePrompt(ctx, q.model,
		fmt.Sprintf(qaPrompt, query.Context, query.Question), llms.WithTemperature(0.1))
	if err != nil {
		q.logger.Error("llm qa call failed", zap.Error(err))
		return domain.QAResult{}, domain.NewInferenceError("llm qa", err)
	}

	res, err := q.parse(raw)
	if err != nil {
		q.logger.Error("undecodable llm qa response", zap.Error(err), zap.String("raw_response", raw))
		return domain.QAResult{}, domain.NewInferenceError("llm qa", err)
	}

	if res.Answer != "" && !strings.Contains(strings.ToLower(query.Context), strings.ToLower(res.Answer)) {
		q.logger.Debug("llm answer is not a span of the context", zap.String("answer", res.Answer))
		res.Score = 0
	}
	return res, nil
}

// AnswerBatch answers the queries one after another.
func (q *QAAdapter) AnswerBatch(ctx context.Context, queries []domain.QAQuery) ([]domain.QAResult, error) {
	results := make([]domain.QAResult, 0, len(queries))
	for _, query := range queries {
		res, err := q.Answer(ctx, query)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (q *QAAdapter) parse(raw string) (domain.QAResult, error) {
	obj, ok := extractJSONObject(stripThinking(raw))
	if !ok {
		return domain.QAResult{}, errors.New("no JSON object found in llm response")
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(obj))
	if err != nil {
		return domain.QAResult{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := q.schema.Validate(doc); err != nil {
		return domain.QAResult{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var res domain.QAResult
	if err := json.Unmarshal([]byte(obj), &res); err != nil {
		return domain.QAResult{}, err
	}
	res.Answer = strings.TrimSpace(res.Answer)
	return res, nil
}
