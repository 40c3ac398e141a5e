package llm

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"quizforge/internal/domain"
)

// SequenceAdapter implements domain.SequenceGenerator with a chat model.
// Beam search settings have no chat-model equivalent and are ignored.
type SequenceAdapter struct {
	model   llms.Model
	timeout time.Duration
	logger  *zap.Logger
}

func NewSequenceAdapter(model llms.Model, timeout time.Duration, logger *zap.Logger) *SequenceAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SequenceAdapter{model: model, timeout: timeout, logger: logger}
}

func (s *SequenceAdapter) Generate(ctx context.Context, prompt string, params domain.SequenceParams) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := []llms.CallOption{llms.WithTemperature(temperature(params))}
	if params.MaxNewTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(params.MaxNewTokens))
	}
	if params.MinNewTokens > 0 {
		opts = append(opts, llms.WithMinLength(params.MinNewTokens))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt, opts...)
	if err != nil {
		s.logger.Error("llm generation failed", zap.Error(err))
		return "", domain.NewInferenceError("llm generation", err)
	}
	return stripThinking(out), nil
}

// temperature maps greedy decoding to zero temperature.
func temperature(p domain.SequenceParams) float64 {
	if !p.DoSample && p.Temperature == 0 {
		return 0
	}
	return p.Temperature
}
