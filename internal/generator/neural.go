package generator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quizforge/internal/domain"
	"quizforge/internal/tokenize"
)

// NeuralGenerator asks a text-to-text model for question/answer lines and
// parses them.
type NeuralGenerator struct {
	seq       domain.SequenceGenerator
	truncator tokenize.Truncator
	params    Params
	logger    *zap.Logger
}

func NewNeuralGenerator(seq domain.SequenceGenerator, truncator tokenize.Truncator, params Params, logger *zap.Logger) *NeuralGenerator {
	if truncator == nil {
		truncator = tokenize.Whitespace{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NeuralGenerator{seq: seq, truncator: truncator, params: params.withDefaults(), logger: logger}
}

// Prompt builds the instruction sent to the model, bounded to the input
// token budget.
func (g *NeuralGenerator) Prompt(content string) string {
	prompt := fmt.Sprintf("Generate %d educational questions with answers from this text:\n\n%s",
		g.params.NeuralQuestionCount, content)
	return g.truncator.Truncate(prompt, g.params.Neural.MaxInputTokens)
}

// GenerateFromContent runs one generation and returns the parsed pairs. The
// answers are returned as the model wrote them.
func (g *NeuralGenerator) GenerateFromContent(ctx context.Context, content string) ([]domain.QAPair, error) {
	text, err := g.seq.Generate(ctx, g.Prompt(content), g.params.Neural)
	if err != nil {
		return nil, domain.NewInferenceError("neural question generation", err)
	}
	pairs := ParseQAPairs(text)
	g.logger.Debug("neural generation parsed", zap.Int("pairs", len(pairs)))
	return pairs, nil
}

// ParseQAPairs reads one pair per line of the form "question? answer". The
// text before the first '?' plus '?' is the question; the rest, without
// leading colons, is the answer. Lines without '?' or with an empty side are
// skipped.
func ParseQAPairs(text string) []domain.QAPair {
	var pairs []domain.QAPair
	for _, line := range strings.Split(text, "\n") {
		q, a, found := strings.Cut(line, "?")
		if !found {
			continue
		}
		q = strings.TrimSpace(q)
		a = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(a), ":"))
		if q == "" || a == "" {
			continue
		}
		pairs = append(pairs, domain.QAPair{Question: q + "?", Answer: a})
	}
	return pairs
}
