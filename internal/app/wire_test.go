package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quizforge/internal/adapter/hfinference"
	"quizforge/internal/config"
	"quizforge/internal/dto"
	"quizforge/internal/tokenize"
)

func testConfig() *config.Config {
	return &config.Config{
		Inference: config.InferenceConfig{
			QA:        config.ModelConfig{Source: config.SourceHTTP, URL: "http://127.0.0.1:1/qa"},
			Seq:       config.ModelConfig{Source: config.SourceNone},
			Embedding: config.ModelConfig{Source: config.SourceNone},
		},
		Generation: config.GenerationConfig{TokenizerEncoding: "not-an-encoding"},
	}
}

func TestBuild_WithoutRedisOrEmbeddings(t *testing.T) {
	c, err := Build(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Cache)
	assert.NotEmpty(t, c.Catalog.Topics)
	assert.False(t, c.Detector.CanEmbed())

	topics, err := c.Service.ListTopics(context.Background())
	require.NoError(t, err)
	assert.Len(t, topics.Topics, len(c.Catalog.Topics))

	_, err = c.Service.GetGeneration(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.Error(t, err)

	resp, err := c.Service.BuildOptions(context.Background(), &dto.OptionsRequest{Question: "What is gravity?", Answer: "a force"})
	require.NoError(t, err)
	assert.Len(t, resp.Options, 4)
	assert.Contains(t, resp.Options, "a force")
}

func TestNewExtractiveQA(t *testing.T) {
	qa, err := NewExtractiveQA(config.ModelConfig{Source: config.SourceHTTP, URL: "http://localhost:8000/qa"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &hfinference.QAClient{}, qa)

	_, err = NewExtractiveQA(config.ModelConfig{Source: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewExtractiveQA(config.ModelConfig{Source: config.SourceOllama, URL: "http://localhost:11434"}, zap.NewNop())
	assert.Error(t, err, "model name is required")
}

func TestNewSequenceGenerator(t *testing.T) {
	seq, err := NewSequenceGenerator(config.ModelConfig{Source: config.SourceNone}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, seq)

	seq, err = NewSequenceGenerator(config.ModelConfig{Source: config.SourceHTTP, URL: "http://localhost:8000/generate"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &hfinference.Text2TextClient{}, seq)
}

func TestNewTruncator(t *testing.T) {
	assert.Equal(t, tokenize.Whitespace{}, NewTruncator("", zap.NewNop()))
	assert.Equal(t, tokenize.Whitespace{}, NewTruncator("not-an-encoding", zap.NewNop()))
}
