package hfinference

import (
	"context"
	"errors"

	"quizforge/internal/domain"
)

// Text2TextClient implements domain.SequenceGenerator.
//
// Request:  {"inputs": "...", "parameters": {...}}
// Response: [{"generated_text": "..."}]
type Text2TextClient struct {
	c *client
}

func NewText2TextClient(opts Options) (*Text2TextClient, error) {
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	return &Text2TextClient{c: c}, nil
}

type generationParameters struct {
	Truncation    bool    `json:"truncation"`
	MaxLength     int     `json:"max_length,omitempty"`
	MaxNewTokens  int     `json:"max_new_tokens,omitempty"`
	MinLength     int     `json:"min_length,omitempty"`
	NumBeams      int     `json:"num_beams,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	EarlyStopping bool    `json:"early_stopping,omitempty"`
	DoSample      bool    `json:"do_sample"`
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
	SummaryText   string `json:"summary_text"`
}

func (t *Text2TextClient) Generate(ctx context.Context, prompt string, params domain.SequenceParams) (string, error) {
	req := generationRequest{
		Inputs: prompt,
		Parameters: generationParameters{
			Truncation:    params.MaxInputTokens > 0,
			MaxLength:     params.MaxInputTokens,
			MaxNewTokens:  params.MaxNewTokens,
			MinLength:     params.MinNewTokens,
			NumBeams:      params.NumBeams,
			Temperature:   params.Temperature,
			EarlyStopping: params.EarlyStopping,
			DoSample:      params.DoSample,
		},
	}

	var results []generationResult
	if err := t.c.postJSON(ctx, req, &results); err != nil {
		return "", domain.NewInferenceError("text generation", err)
	}
	if len(results) == 0 {
		return "", domain.NewInferenceError("text generation", errors.New("empty response"))
	}
	if results[0].GeneratedText != "" {
		return results[0].GeneratedText, nil
	}
	return results[0].SummaryText, nil
}
