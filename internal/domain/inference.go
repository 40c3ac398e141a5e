package domain

import "context"

// QAQuery is one extractive question-answering request.
type QAQuery struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// QAResult is the span extracted for a QAQuery and the model's confidence in [0,1].
type QAResult struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// ExtractiveQA answers questions by extracting a span of the given context.
// AnswerBatch must return exactly one result per query, in query order.
type ExtractiveQA interface {
	Answer(ctx context.Context, query QAQuery) (QAResult, error)
	AnswerBatch(ctx context.Context, queries []QAQuery) ([]QAResult, error)
}

// SequenceParams are the decoding parameters of a generative call.
type SequenceParams struct {
	MaxInputTokens int
	MaxNewTokens   int
	MinNewTokens   int
	NumBeams       int
	Temperature    float64
	EarlyStopping  bool
	DoSample       bool
}

// SequenceGenerator produces one decoded completion for a prompt.
type SequenceGenerator interface {
	Generate(ctx context.Context, prompt string, params SequenceParams) (string, error)
}

// EmbeddingService defines the interface for generating text embeddings.
type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
