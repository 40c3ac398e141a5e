// Package generator is the question-generation engine. It turns a topic and
// a source passage into open and multiple-choice questions by filling
// question templates, asking an extractive QA service for answers, falling
// back to a generative model when templates under-deliver, and sampling
// distractors from the topic keyword table.
//
// The engine holds only read-only state. Every operation that samples takes
// the caller's *rand.Rand, so each request owns its random source.
package generator

import "quizforge/internal/domain"

// Params are the tuning constants of the engine.
type Params struct {
	// TemplateBatchSize is the number of questions sent per extractive QA call.
	TemplateBatchSize int
	// OversampleFactor scales how many templates are tried per requested question.
	OversampleFactor int
	// MinAnswerScore is the lowest QA confidence the template path accepts.
	MinAnswerScore float64

	// UseNeural enables the generative fallback for open questions.
	UseNeural bool
	// NeuralQuestionCount is the number of questions the fallback prompt asks for.
	NeuralQuestionCount int
	Neural              domain.SequenceParams

	Summary domain.SequenceParams

	// DocumentSummaryChars bounds the input of SummarizeDocument.
	DocumentSummaryChars int
	DocumentSummary      domain.SequenceParams

	// OptionCount is the number of options of a multiple-choice question.
	OptionCount int
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		TemplateBatchSize:   5,
		OversampleFactor:    5,
		MinAnswerScore:      0.05,
		UseNeural:           true,
		NeuralQuestionCount: 10,
		Neural: domain.SequenceParams{
			MaxInputTokens: 1024,
			MaxNewTokens:   512,
			NumBeams:       4,
			Temperature:    0.7,
			EarlyStopping:  true,
		},
		Summary: domain.SequenceParams{
			MaxNewTokens: 150,
			MinNewTokens: 50,
			DoSample:     false,
		},
		DocumentSummaryChars: 1000,
		DocumentSummary: domain.SequenceParams{
			MaxNewTokens: 300,
			MinNewTokens: 80,
			DoSample:     false,
		},
		OptionCount: 4,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.TemplateBatchSize <= 0 {
		p.TemplateBatchSize = d.TemplateBatchSize
	}
	if p.OversampleFactor <= 0 {
		p.OversampleFactor = d.OversampleFactor
	}
	if p.NeuralQuestionCount <= 0 {
		p.NeuralQuestionCount = d.NeuralQuestionCount
	}
	if p.OptionCount < 2 {
		p.OptionCount = d.OptionCount
	}
	if p.DocumentSummaryChars <= 0 {
		p.DocumentSummaryChars = d.DocumentSummaryChars
	}
	return p
}
