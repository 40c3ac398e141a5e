package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizforge/internal/domain"
	"quizforge/internal/tokenize"
)

func TestParseQAPairs(t *testing.T) {
	text := strings.Join([]string{
		"What is gravity? A force that attracts masses",
		"Why do apples fall?: Because gravity pulls them",
		"A heading without a question",
		"Is it? ",
		"? orphan answer",
		"Who measured it? :: Cavendish",
	}, "\n")

	assert.Equal(t, []domain.QAPair{
		{Question: "What is gravity?", Answer: "A force that attracts masses"},
		{Question: "Why do apples fall?", Answer: "Because gravity pulls them"},
		{Question: "Who measured it?", Answer: "Cavendish"},
	}, ParseQAPairs(text))
}

func TestNeuralGenerator_Prompt(t *testing.T) {
	params := DefaultParams()
	params.Neural.MaxInputTokens = 12
	g := NewNeuralGenerator(&fakeSeq{}, tokenize.Whitespace{}, params, nil)

	prompt := g.Prompt("one two three four five six seven eight nine ten")

	assert.Equal(t, "Generate 10 educational questions with answers from this text: one two three", prompt)
}

func TestNeuralGenerator_GenerateFromContent(t *testing.T) {
	seq := &fakeSeq{output: "What is mass? The amount of matter in a body\nnoise"}
	g := NewNeuralGenerator(seq, tokenize.Whitespace{}, DefaultParams(), nil)

	pairs, err := g.GenerateFromContent(context.Background(), "Mass is the amount of matter in a body.")

	require.NoError(t, err)
	assert.Equal(t, []domain.QAPair{{Question: "What is mass?", Answer: "The amount of matter in a body"}}, pairs)
	require.Len(t, seq.params, 1)
	assert.Equal(t, 512, seq.params[0].MaxNewTokens)
	assert.Equal(t, 4, seq.params[0].NumBeams)
	assert.InDelta(t, 0.7, seq.params[0].Temperature, 1e-9)
	assert.True(t, seq.params[0].EarlyStopping)
	assert.True(t, strings.HasPrefix(seq.prompts[0], "Generate 10 educational questions with answers from this text:\n\n"))
}

func TestNeuralGenerator_Failure(t *testing.T) {
	g := NewNeuralGenerator(&fakeSeq{err: errors.New("model unloaded")}, nil, DefaultParams(), nil)

	_, err := g.GenerateFromContent(context.Background(), "text")

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInferenceFailure))
}
