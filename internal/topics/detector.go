// Package topics guesses which catalog topics a passage is about.
package topics

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"quizforge/internal/domain"
	"quizforge/internal/util"
)

// Method selects how topics are scored.
type Method string

const (
	MethodKeywords  Method = "keywords"
	MethodEmbedding Method = "embedding"
	MethodHybrid    Method = "hybrid"
)

// GeneralTopic is reported when no topic scores.
const GeneralTopic = "General"

// topicNameBonus is added when the topic name itself occurs in the text.
const topicNameBonus = 3

// Detection is the ranked result of Detect.
type Detection struct {
	Primary   string             `json:"Primary"`
	Secondary string             `json:"Secondary,omitempty"`
	Tertiary  string             `json:"Tertiary,omitempty"`
	Scores    map[string]float64 `json:"Scores"`
	// Ranked lists the scored topics, best first.
	Ranked []string `json:"-"`
}

// Detector scores topics by keyword matches and, when an embedding service
// is configured, by semantic similarity of the text to the topic names.
type Detector struct {
	topics   []domain.Topic
	patterns [][]*regexp.Regexp
	embedder domain.EmbeddingService
	logger   *zap.Logger
}

// NewDetector compiles the keyword matchers of cat. embedder may be nil.
func NewDetector(cat *domain.Catalog, embedder domain.EmbeddingService, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Detector{topics: cat.Topics, embedder: embedder, logger: logger}
	d.patterns = make([][]*regexp.Regexp, len(cat.Topics))
	for i, t := range cat.Topics {
		seen := make(map[string]struct{}, len(t.Keywords))
		for _, kw := range t.Keywords {
			lower := strings.ToLower(kw)
			if _, dup := seen[lower]; dup || lower == "" {
				continue
			}
			seen[lower] = struct{}{}
			d.patterns[i] = append(d.patterns[i], WordPattern(lower))
		}
	}
	return d
}

// WordPattern matches kw as a whole word, case-insensitively.
func WordPattern(kw string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
}

// ParseMethod validates a method name; empty selects keywords.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(s)) {
	case "", MethodKeywords:
		return MethodKeywords, nil
	case MethodEmbedding:
		return MethodEmbedding, nil
	case MethodHybrid:
		return MethodHybrid, nil
	}
	return "", domain.NewInvalidInputError(fmt.Sprintf("unknown topic detection method %q", s))
}

// CanEmbed reports whether embedding based methods are available.
func (d *Detector) CanEmbed() bool { return d.embedder != nil }

// Detect ranks the topics of text and returns the best topN.
func (d *Detector) Detect(ctx context.Context, text string, method Method, topN int) (Detection, error) {
	if topN <= 0 {
		topN = 3
	}
	lower := strings.ToLower(text)
	scores := make(map[string]float64)
	order := make([]string, 0, len(d.topics))
	add := func(topic string, v float64) {
		if _, ok := scores[topic]; !ok {
			order = append(order, topic)
		}
		scores[topic] += v
	}

	if method == MethodKeywords || method == MethodHybrid {
		for i, t := range d.topics {
			score := 0
			for _, p := range d.patterns[i] {
				if p.MatchString(lower) {
					score++
				}
			}
			if strings.Contains(lower, strings.ToLower(t.Name)) {
				score += topicNameBonus
			}
			if score > 0 {
				add(t.Name, float64(score))
			}
		}
	}

	if method == MethodEmbedding || method == MethodHybrid {
		if d.embedder == nil {
			return Detection{}, domain.NewInvalidInputError("embedding topic detection is not configured")
		}
		sims, err := d.similarities(ctx, lower)
		if err != nil {
			return Detection{}, err
		}
		for i, t := range d.topics {
			v := sims[i] * 10
			if method == MethodHybrid {
				v = float64(int(v))
				if v == 0 {
					continue
				}
			}
			add(t.Name, v)
		}
	}

	return rank(scores, order, topN), nil
}

func (d *Detector) similarities(ctx context.Context, text string) ([]float64, error) {
	textVec, err := d.embedder.Generate(ctx, text)
	if err != nil {
		return nil, domain.NewInferenceError("embed text", err)
	}
	sims := make([]float64, len(d.topics))
	for i, t := range d.topics {
		topicVec, err := d.embedder.Generate(ctx, t.Name)
		if err != nil {
			return nil, domain.NewInferenceError("embed topic", err)
		}
		sim, err := util.CosineSimilarity(textVec, topicVec)
		if err != nil {
			d.logger.Warn("skipping topic with unusable embedding", zap.String("topic", t.Name), zap.Error(err))
			continue
		}
		sims[i] = sim
	}
	return sims, nil
}

func rank(scores map[string]float64, order []string, topN int) Detection {
	if len(order) == 0 {
		return Detection{Primary: GeneralTopic, Scores: map[string]float64{}}
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })
	if len(order) > topN {
		order = order[:topN]
	}

	det := Detection{Primary: order[0], Scores: make(map[string]float64, len(order)), Ranked: order}
	for _, t := range order {
		det.Scores[t] = scores[t]
	}
	if len(order) > 1 {
		det.Secondary = order[1]
	}
	if len(order) > 2 {
		det.Tertiary = order[2]
	}
	return det
}
