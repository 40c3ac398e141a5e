package hfinference

import (
	"context"
	"fmt"

	"quizforge/internal/domain"
)

// QAClient implements domain.ExtractiveQA.
//
// Request:  {"inputs": [{"question": "...", "context": "..."}]}
// Response: [{"answer": "...", "score": 0.93}, ...] in input order.
type QAClient struct {
	c *client
}

func NewQAClient(opts Options) (*QAClient, error) {
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	return &QAClient{c: c}, nil
}

type qaRequest struct {
	Inputs []domain.QAQuery `json:"inputs"`
}

func (q *QAClient) Answer(ctx context.Context, query domain.QAQuery) (domain.QAResult, error) {
	results, err := q.AnswerBatch(ctx, []domain.QAQuery{query})
	if err != nil {
		return domain.QAResult{}, err
	}
	return results[0], nil
}

func (q *QAClient) AnswerBatch(ctx context.Context, queries []domain.QAQuery) ([]domain.QAResult, error) {
	if len(queries) == 0 {
		return []domain.QAResult{}, nil
	}

	var results []domain.QAResult
	if err := q.c.postJSON(ctx, qaRequest{Inputs: queries}, &results); err != nil {
		return nil, domain.NewInferenceError("extractive qa", err)
	}
	if len(results) != len(queries) {
		return nil, domain.NewInferenceError("extractive qa",
			fmt.Errorf("response length mismatch: got %d want %d", len(results), len(queries)))
	}
	return results, nil
}
