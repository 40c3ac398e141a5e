package generator

import (
	"context"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"quizforge/internal/domain"
	"quizforge/internal/normalize"
)

// TemplateGenerator fills generic question templates with the topic and keeps
// the questions the extractive QA service can answer confidently.
type TemplateGenerator struct {
	qa        domain.ExtractiveQA
	templates []string
	params    Params
	logger    *zap.Logger
}

func NewTemplateGenerator(qa domain.ExtractiveQA, templates []string, params Params, logger *zap.Logger) *TemplateGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateGenerator{
		qa:        qa,
		templates: templates,
		params:    params.withDefaults(),
		logger:    logger,
	}
}

// GenerateOpen returns up to count open questions about topic, answered from
// content. Every answer is normalized, non-empty and distinct from the other
// answers returned. Work stops as soon as count pairs are collected.
func (g *TemplateGenerator) GenerateOpen(ctx context.Context, topic, content string, count int, rng *rand.Rand) ([]domain.QAPair, error) {
	if count <= 0 || len(g.templates) == 0 {
		return nil, nil
	}

	questions := g.candidateQuestions(topic, count, rng)
	out := newPairCollector(count)
	usedAnswers := make(map[string]struct{}, count)

	for start := 0; start < len(questions) && !out.Full(); start += g.params.TemplateBatchSize {
		end := min(start+g.params.TemplateBatchSize, len(questions))
		batch := questions[start:end]

		queries := make([]domain.QAQuery, len(batch))
		for i, q := range batch {
			queries[i] = domain.QAQuery{Question: q, Context: content}
		}

		results, err := g.qa.AnswerBatch(ctx, queries)
		if err != nil {
			return out.Pairs(), domain.NewInferenceError("template question answering", err)
		}

		for i, res := range results {
			if i >= len(batch) || out.Full() {
				break
			}
			if res.Score < g.params.MinAnswerScore {
				continue
			}
			answer := normalize.Answer(res.Answer)
			if answer == "" {
				continue
			}
			if _, dup := usedAnswers[answer]; dup {
				continue
			}
			usedAnswers[answer] = struct{}{}
			out.Add(domain.QAPair{Question: batch[i], Answer: answer})
		}
	}

	g.logger.Debug("template generation finished",
		zap.String("topic", topic),
		zap.Int("requested", count),
		zap.Int("tried", len(questions)),
		zap.Int("kept", len(out.Pairs())))

	return out.Pairs(), nil
}

// candidateQuestions samples min(OversampleFactor*count, pool size) distinct
// templates and fills them. Malformed templates and fills that only repeat
// the topic ("T and T", "T vs T") are dropped.
func (g *TemplateGenerator) candidateQuestions(topic string, count int, rng *rand.Rand) []string {
	k := min(g.params.OversampleFactor*count, len(g.templates))
	perm := rng.Perm(len(g.templates))[:k]

	degenerate := []string{topic + " and " + topic, topic + " vs " + topic}
	questions := make([]string, 0, k)
	for _, idx := range perm {
		q, ok := fillGeneric(g.templates[idx], topic)
		if !ok {
			g.logger.Debug("skipping malformed template", zap.String("template", g.templates[idx]))
			continue
		}
		if containsAny(q, degenerate) {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
