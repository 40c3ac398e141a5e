package generator

import (
	"context"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"quizforge/internal/catalog"
	"quizforge/internal/domain"
	"quizforge/internal/normalize"
)

// OpenSource produces open questions when a targeted generator falls short.
type OpenSource interface {
	GenerateOpen(ctx context.Context, topic, content string, count int, rng *rand.Rand) ([]domain.QAPair, error)
}

// KeywordGenerator asks one question per requested keyword that actually
// occurs in the content.
type KeywordGenerator struct {
	qa        domain.ExtractiveQA
	templates []string
	topUp     OpenSource
	logger    *zap.Logger
}

// NewKeywordGenerator builds a generator over the keyword template pool.
// topUp fills any shortfall and may be nil.
func NewKeywordGenerator(qa domain.ExtractiveQA, templates []string, topUp OpenSource, logger *zap.Logger) *KeywordGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordGenerator{qa: qa, templates: templates, topUp: topUp, logger: logger}
}

// PresentKeywords keeps the keywords that occur case-insensitively in
// content, in request order.
func PresentKeywords(content string, keywords []string) []string {
	lower := strings.ToLower(content)
	present := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			present = append(present, kw)
		}
	}
	return present
}

// Question renders the question asked for keyword. A template is drawn from
// the pool; if the pool is empty or the drawn template cannot be filled, the
// default keyword template is used.
func (g *KeywordGenerator) Question(topic, keyword string, rng *rand.Rand) string {
	if len(g.templates) > 0 {
		tpl := g.templates[rng.Intn(len(g.templates))]
		if q, ok := fillKeyword(tpl, keyword, topic); ok {
			return q
		}
		g.logger.Debug("keyword template not fillable, using default", zap.String("template", tpl))
	}
	q, _ := fillKeyword(catalog.DefaultKeywordTemplate, keyword, topic)
	return q
}

// GenerateForKeywords returns up to count open questions targeted at the
// keywords present in content. Each present keyword costs one QA call, in
// order, until count pairs exist; answers are normalized but not gated on
// confidence. A shortfall is topped up from the open question source. An
// empty keyword list yields no questions at all.
func (g *KeywordGenerator) GenerateForKeywords(ctx context.Context, topic, content string, count int, keywords []string, rng *rand.Rand) ([]domain.QAPair, error) {
	if count <= 0 || len(keywords) == 0 {
		return nil, nil
	}

	present := PresentKeywords(content, keywords)
	out := newPairCollector(count)

	for _, kw := range present {
		if out.Full() {
			break
		}
		question := g.Question(topic, kw, rng)
		res, err := g.qa.Answer(ctx, domain.QAQuery{Question: question, Context: content})
		if err != nil {
			return out.Pairs(), domain.NewInferenceError("keyword question answering", err)
		}
		answer := normalize.Answer(res.Answer)
		if answer == "" {
			continue
		}
		out.Add(domain.QAPair{Question: question, Answer: answer})
	}

	if !out.Full() && g.topUp != nil {
		extra, err := g.topUp.GenerateOpen(ctx, topic, content, out.Remaining(), rng)
		if err != nil {
			return out.Pairs(), err
		}
		for _, p := range extra {
			out.Add(p)
		}
	}

	g.logger.Debug("keyword generation finished",
		zap.String("topic", topic),
		zap.Strings("present_keywords", present),
		zap.Int("requested", count),
		zap.Int("kept", len(out.Pairs())))

	return out.Pairs(), nil
}
