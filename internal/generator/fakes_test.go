package generator

import (
	"context"
	"math/rand"
	"strings"

	"quizforge/internal/domain"
)

// fakeQA answers every question with answerFn and records what it was asked.
type fakeQA struct {
	answerFn   func(q domain.QAQuery) domain.QAResult
	err        error
	asked      []string
	batchSizes []int
	singleHits int
}

func (f *fakeQA) Answer(_ context.Context, q domain.QAQuery) (domain.QAResult, error) {
	f.singleHits++
	f.asked = append(f.asked, q.Question)
	if f.err != nil {
		return domain.QAResult{}, f.err
	}
	return f.answerFn(q), nil
}

func (f *fakeQA) AnswerBatch(_ context.Context, qs []domain.QAQuery) ([]domain.QAResult, error) {
	f.batchSizes = append(f.batchSizes, len(qs))
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.QAResult, len(qs))
	for i, q := range qs {
		f.asked = append(f.asked, q.Question)
		out[i] = f.answerFn(q)
	}
	return out, nil
}

// echoAnswers gives every question a distinct, confident answer.
func echoAnswers(q domain.QAQuery) domain.QAResult {
	return domain.QAResult{Answer: "answer for " + q.Question, Score: 0.9}
}

type fakeSeq struct {
	output  string
	err     error
	prompts []string
	params  []domain.SequenceParams
}

func (f *fakeSeq) Generate(_ context.Context, prompt string, params domain.SequenceParams) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	return f.output, f.err
}

type fakeOpenSource struct {
	pairs  []domain.QAPair
	counts []int
}

func (f *fakeOpenSource) GenerateOpen(_ context.Context, _, _ string, count int, _ *rand.Rand) ([]domain.QAPair, error) {
	f.counts = append(f.counts, count)
	if count < len(f.pairs) {
		return f.pairs[:count], nil
	}
	return f.pairs, nil
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func countFold(options []string, s string) int {
	n := 0
	for _, o := range options {
		if strings.EqualFold(o, s) {
			n++
		}
	}
	return n
}

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		Topics: []domain.Topic{
			{Name: "Physics", Keywords: []string{"gravity", "force", "mass", "energy", "velocity", "acceleration"}},
			{Name: "Biology", Keywords: []string{"chlorophyll", "sunlight", "xylem", "cell"}},
		},
		GenericTemplates: []string{
			"What is {}?",
			"Explain how {} works.",
			"Why is {} important?",
			"Who discovered {}?",
			"Where does {} occur?",
			"When was {} first described?",
			"How is {} measured?",
		},
	}
}
