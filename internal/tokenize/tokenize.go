// Package tokenize bounds prompt text to a token budget before it is sent to
// the generative model.
package tokenize

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Truncator cuts text down to at most maxTokens tokens.
type Truncator interface {
	Truncate(text string, maxTokens int) string
}

// Tiktoken truncates with a BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding, e.g. "cl100k_base".
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:maxTokens])
}

// Whitespace counts whitespace separated words as tokens. It needs no
// vocabulary files and is used when no BPE encoding is configured.
type Whitespace struct{}

func (Whitespace) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text
	}
	return strings.Join(words[:maxTokens], " ")
}
