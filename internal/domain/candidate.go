package domain

import (
	"strconv"
	"strings"
)

// CandidateKind tags the two question shapes the engine produces.
type CandidateKind string

const (
	KindOpen           CandidateKind = "open"
	KindMultipleChoice CandidateKind = "mc"
)

// QAPair is an open question with its extracted answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Candidate is one generated question. Options and CorrectIndex are only
// meaningful for KindMultipleChoice; CorrectIndex is -1 for open questions.
type Candidate struct {
	Kind         CandidateKind `json:"type"`
	Question     string        `json:"question"`
	Answer       string        `json:"answer"`
	Options      []string      `json:"options,omitempty"`
	CorrectIndex int           `json:"correct_index"`
}

// NewOpenCandidate builds an open question candidate.
func NewOpenCandidate(p QAPair) Candidate {
	return Candidate{Kind: KindOpen, Question: p.Question, Answer: p.Answer, CorrectIndex: -1}
}

// NewMultipleChoiceCandidate builds a multiple-choice candidate. The correct
// index is the position of answer within options, or -1 if it is absent.
func NewMultipleChoiceCandidate(question, answer string, options []string) Candidate {
	idx := -1
	for i, o := range options {
		if o == answer {
			idx = i
			break
		}
	}
	return Candidate{
		Kind:         KindMultipleChoice,
		Question:     question,
		Answer:       answer,
		Options:      options,
		CorrectIndex: idx,
	}
}

// Key returns the structural identity used for de-duplication. Open
// questions compare as (question, answer); multiple-choice questions also
// compare their option order and correct index.
func (c Candidate) Key() string {
	var b strings.Builder
	b.WriteString(string(c.Kind))
	b.WriteByte(0)
	b.WriteString(c.Question)
	b.WriteByte(0)
	b.WriteString(c.Answer)
	if c.Kind == KindMultipleChoice {
		b.WriteByte(0)
		b.WriteString(strings.Join(c.Options, "\x1f"))
		b.WriteByte(0)
		b.WriteString(strconv.Itoa(c.CorrectIndex))
	}
	return b.String()
}

// Pair returns the (question, answer) view of the candidate.
func (c Candidate) Pair() QAPair {
	return QAPair{Question: c.Question, Answer: c.Answer}
}
