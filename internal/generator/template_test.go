package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizforge/internal/domain"
)

func TestTemplateGenerator_GenerateOpen(t *testing.T) {
	ctx := context.Background()
	content := "Gravity is the force by which a planet draws objects toward its center."

	t.Run("stops after the first batch that fills the request", func(t *testing.T) {
		qa := &fakeQA{answerFn: echoAnswers}
		g := NewTemplateGenerator(qa, testCatalog().GenericTemplates, DefaultParams(), nil)

		pairs, err := g.GenerateOpen(ctx, "gravity", content, 1, seeded(1))

		require.NoError(t, err)
		require.Len(t, pairs, 1)
		assert.Equal(t, []int{5}, qa.batchSizes)
		assert.Equal(t, "answer for "+pairs[0].Question, pairs[0].Answer)
	})

	t.Run("batches oversampled templates by five", func(t *testing.T) {
		qa := &fakeQA{answerFn: func(domain.QAQuery) domain.QAResult {
			return domain.QAResult{Answer: "too unsure", Score: 0.01}
		}}
		g := NewTemplateGenerator(qa, testCatalog().GenericTemplates, DefaultParams(), nil)

		pairs, err := g.GenerateOpen(ctx, "gravity", content, 2, seeded(1))

		require.NoError(t, err)
		assert.Empty(t, pairs)
		assert.Equal(t, []int{5, 2}, qa.batchSizes)
	})

	t.Run("answers already used are skipped", func(t *testing.T) {
		qa := &fakeQA{answerFn: func(domain.QAQuery) domain.QAResult {
			return domain.QAResult{Answer: "a pulling force", Score: 0.8}
		}}
		g := NewTemplateGenerator(qa, testCatalog().GenericTemplates, DefaultParams(), nil)

		pairs, err := g.GenerateOpen(ctx, "gravity", content, 3, seeded(2))

		require.NoError(t, err)
		require.Len(t, pairs, 1)
		assert.Equal(t, "a pulling force", pairs[0].Answer)
	})

	t.Run("answers rejected by the normalizer are skipped", func(t *testing.T) {
		qa := &fakeQA{answerFn: func(q domain.QAQuery) domain.QAResult {
			return domain.QAResult{Answer: "Click here", Score: 0.9}
		}}
		g := NewTemplateGenerator(qa, testCatalog().GenericTemplates, DefaultParams(), nil)

		pairs, err := g.GenerateOpen(ctx, "gravity", content, 2, seeded(2))

		require.NoError(t, err)
		assert.Empty(t, pairs)
	})

	t.Run("degenerate and malformed templates are never asked", func(t *testing.T) {
		qa := &fakeQA{answerFn: echoAnswers}
		templates := []string{"{} and {}", "{} vs {}", "What is {name}?", "What is {}?"}
		g := NewTemplateGenerator(qa, templates, DefaultParams(), nil)

		pairs, err := g.GenerateOpen(ctx, "gravity", content, 4, seeded(3))

		require.NoError(t, err)
		assert.Equal(t, []string{"What is gravity?"}, qa.asked)
		require.Len(t, pairs, 1)
	})

	t.Run("non-positive count makes no calls", func(t *testing.T) {
		qa := &fakeQA{answerFn: echoAnswers}
		g := NewTemplateGenerator(qa, testCatalog().GenericTemplates, DefaultParams(), nil)

		pairs, err := g.GenerateOpen(ctx, "gravity", content, 0, seeded(1))

		require.NoError(t, err)
		assert.Empty(t, pairs)
		assert.Empty(t, qa.batchSizes)
	})

	t.Run("inference failure is reported", func(t *testing.T) {
		qa := &fakeQA{answerFn: echoAnswers, err: errors.New("connection refused")}
		g := NewTemplateGenerator(qa, testCatalog().GenericTemplates, DefaultParams(), nil)

		_, err := g.GenerateOpen(ctx, "gravity", content, 2, seeded(1))

		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.CodeInferenceFailure))
	})
}
