package generator

import (
	"math/rand"
	"strings"

	"quizforge/internal/domain"
)

// UnrelatedConcept pads an option list when the keyword pool is too small.
const UnrelatedConcept = "Unrelated concept"

// altPadding replaces UnrelatedConcept when the correct answer is that phrase.
const altPadding = "None of the above"

// DistractorBuilder samples wrong options for multiple-choice questions from
// the topic keyword table.
type DistractorBuilder struct {
	topics []domain.Topic
}

// NewDistractorBuilder captures the topic table of cat.
func NewDistractorBuilder(cat *domain.Catalog) *DistractorBuilder {
	if cat == nil {
		return &DistractorBuilder{}
	}
	return &DistractorBuilder{topics: cat.Topics}
}

// MatchTopic returns the first topic, in table order, that has a keyword
// occurring case-insensitively in question.
func (b *DistractorBuilder) MatchTopic(question string) (domain.Topic, bool) {
	q := strings.ToLower(question)
	for _, t := range b.topics {
		for _, kw := range t.Keywords {
			if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
				return t, true
			}
		}
	}
	return domain.Topic{}, false
}

// pool returns the keywords distractors are drawn from. When no topic
// matches the question, every keyword of every topic is eligible.
func (b *DistractorBuilder) pool(question, correct string) []string {
	var source []string
	if t, ok := b.MatchTopic(question); ok {
		source = t.Keywords
	} else {
		for _, t := range b.topics {
			source = append(source, t.Keywords...)
		}
	}

	pool := make([]string, 0, len(source))
	for _, kw := range source {
		if !strings.EqualFold(kw, correct) {
			pool = append(pool, kw)
		}
	}
	return pool
}

// BuildOptions returns n options: the trimmed correct answer exactly once and
// n-1 distractors, in an order drawn from rng. Missing distractors are filled
// with UnrelatedConcept. An n below 1 is treated as 1.
func (b *DistractorBuilder) BuildOptions(question, answer string, n int, rng *rand.Rand) []string {
	correct := strings.TrimSpace(answer)
	if n < 1 {
		n = 1
	}

	pool := b.pool(question, correct)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	want := n - 1
	options := make([]string, 0, n)
	if len(pool) > want {
		pool = pool[:want]
	}
	options = append(options, pool...)

	padding := UnrelatedConcept
	if strings.EqualFold(correct, UnrelatedConcept) {
		padding = altPadding
	}
	for len(options) < want {
		options = append(options, padding)
	}

	options = append(options, correct)
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options
}
