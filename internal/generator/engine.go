package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"quizforge/internal/domain"
	"quizforge/internal/normalize"
	"quizforge/internal/tokenize"
)

// GenerateRequest asks for a mix of open and multiple-choice questions.
type GenerateRequest struct {
	Topic      string
	Content    string
	TotalCount int
	OpenCount  int
	MCCount    int
	// OptionCount overrides Params.OptionCount when at least 2.
	OptionCount int
}

// Engine ties the generators together. It is safe for concurrent use as long
// as each call gets its own *rand.Rand.
type Engine struct {
	catalog     *domain.Catalog
	seq         domain.SequenceGenerator
	template    *TemplateGenerator
	keyword     *KeywordGenerator
	neural      *NeuralGenerator
	distractors *DistractorBuilder
	params      Params
	logger      *zap.Logger
}

// NewEngine wires an engine. seq may be nil, which disables the generative
// fallback and summarization.
func NewEngine(cat *domain.Catalog, qa domain.ExtractiveQA, seq domain.SequenceGenerator, truncator tokenize.Truncator, params Params, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	params = params.withDefaults()

	e := &Engine{
		catalog:     cat,
		seq:         seq,
		template:    NewTemplateGenerator(qa, cat.GenericTemplates, params, logger),
		distractors: NewDistractorBuilder(cat),
		params:      params,
		logger:      logger,
	}
	if seq != nil {
		e.neural = NewNeuralGenerator(seq, truncator, params, logger)
	}
	e.keyword = NewKeywordGenerator(qa, cat.KeywordTemplates, e, logger)
	return e
}

// Catalog returns the tables the engine was built with.
func (e *Engine) Catalog() *domain.Catalog { return e.catalog }

// GenerateOpen produces up to count open questions: template questions
// first, then, if still short, pairs from the generative model that are not
// already present.
func (e *Engine) GenerateOpen(ctx context.Context, topic, content string, count int, rng *rand.Rand) ([]domain.QAPair, error) {
	if count <= 0 {
		return nil, nil
	}

	pairs, err := e.template.GenerateOpen(ctx, topic, content, count, rng)
	if err != nil {
		return nil, err
	}

	out := newPairCollector(count)
	for _, p := range pairs {
		out.Add(p)
	}
	if out.Full() || !e.params.UseNeural || e.neural == nil {
		return out.Pairs(), nil
	}

	extra, err := e.neural.GenerateFromContent(ctx, content)
	if err != nil {
		return nil, err
	}
	for _, p := range extra {
		if out.Full() {
			break
		}
		p.Answer = normalize.Answer(p.Answer)
		if p.Answer == "" {
			continue
		}
		out.AddUnique(p)
	}
	return out.Pairs(), nil
}

// GenerateForKeywords delegates to the keyword generator, topping up from
// GenerateOpen.
func (e *Engine) GenerateForKeywords(ctx context.Context, topic, content string, count int, keywords []string, rng *rand.Rand) ([]domain.QAPair, error) {
	return e.keyword.GenerateForKeywords(ctx, topic, content, count, keywords, rng)
}

// BuildOptions returns n shuffled options for a multiple-choice question.
func (e *Engine) BuildOptions(question, answer string, n int, rng *rand.Rand) []string {
	return e.distractors.BuildOptions(question, answer, n, rng)
}

// Generate returns at most TotalCount distinct candidates: open candidates
// first, then multiple-choice ones built from freshly generated pairs.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest, rng *rand.Rand) ([]domain.Candidate, error) {
	if req.TotalCount <= 0 {
		return []domain.Candidate{}, nil
	}

	var candidates []domain.Candidate

	if req.OpenCount > 0 {
		pairs, err := e.GenerateOpen(ctx, req.Topic, req.Content, req.OpenCount, rng)
		if err != nil {
			return nil, fmt.Errorf("open questions: %w", err)
		}
		for _, p := range pairs {
			candidates = append(candidates, domain.NewOpenCandidate(p))
		}
	}

	if req.MCCount > 0 {
		n := e.params.OptionCount
		if req.OptionCount >= 2 {
			n = req.OptionCount
		}
		pairs, err := e.GenerateOpen(ctx, req.Topic, req.Content, req.MCCount, rng)
		if err != nil {
			return nil, fmt.Errorf("multiple-choice questions: %w", err)
		}
		for _, p := range pairs {
			options := e.BuildOptions(p.Question, p.Answer, n, rng)
			if len(options) < 2 {
				continue
			}
			candidates = append(candidates,
				domain.NewMultipleChoiceCandidate(p.Question, strings.TrimSpace(p.Answer), options))
		}
	}

	out := Dedupe(candidates, req.TotalCount)
	e.logger.Info("questions generated",
		zap.String("topic", req.Topic),
		zap.Int("total_count", req.TotalCount),
		zap.Int("open_count", req.OpenCount),
		zap.Int("mc_count", req.MCCount),
		zap.Int("returned", len(out)))
	return out, nil
}

// Dedupe keeps the first occurrence of each structurally distinct candidate
// and truncates to limit.
func Dedupe(candidates []domain.Candidate, limit int) []domain.Candidate {
	out := make([]domain.Candidate, 0, min(len(candidates), max(limit, 0)))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
