package generator

import (
	"context"
	"errors"
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/normalize"
)

var errNoSequenceModel = errors.New("no sequence model configured")

// Summarize condenses text with greedy decoding. Empty input yields an empty
// summary without calling the model.
func (e *Engine) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if e.seq == nil {
		return "", domain.NewInferenceError("summarize", errNoSequenceModel)
	}
	out, err := e.seq.Generate(ctx, text, e.params.Summary)
	if err != nil {
		return "", domain.NewInferenceError("summarize", err)
	}
	return strings.TrimSpace(out), nil
}

// SummarizeDocument summarizes the head of an uploaded document and strips
// page chrome from the result.
func (e *Engine) SummarizeDocument(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if e.seq == nil {
		return "", domain.NewInferenceError("summarize document", errNoSequenceModel)
	}
	out, err := e.seq.Generate(ctx, headRunes(text, e.params.DocumentSummaryChars), e.params.DocumentSummary)
	if err != nil {
		return "", domain.NewInferenceError("summarize document", err)
	}
	return normalize.Summary(out), nil
}

func headRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
