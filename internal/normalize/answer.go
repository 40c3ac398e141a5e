// Package normalize cleans text returned by the inference services before it
// is shown to a user.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinAnswerLength is the shortest answer, in characters, that is kept.
const MinAnswerLength = 5

// bannedPhrases are navigational or boilerplate fragments that mark an
// extracted span as page chrome rather than an answer.
var bannedPhrases = []string{
	"the page you were coming from",
	"click here",
	"back to",
	"article has been updated",
	"story has been amended",
	"no answer found",
	"unanswerable",
}

var stopAnswers = map[string]struct{}{
	"n/a":     {},
	"none":    {},
	"unknown": {},
}

var (
	urlPattern    = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+.\-]*://\S+`)
	periodPattern = regexp.MustCompile(`\.+`)
)

// Answer cleans a raw extracted answer. An empty result means the answer is
// rejected. The result is either empty or at least MinAnswerLength
// characters long, carries no URL and no banned phrase, and is a fixed point:
// Answer(Answer(x)) == Answer(x).
func Answer(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := collapseSpace(raw)
	if hasBannedPhrase(cleaned) {
		return ""
	}

	cleaned = urlPattern.ReplaceAllString(cleaned, "")
	cleaned = periodPattern.ReplaceAllString(cleaned, ".")
	cleaned = strings.Map(keepAnswerRune, cleaned)

	// Dropping characters can join new period runs, URLs, banned phrases
	// or space runs, so the early passes are repeated on the filtered text.
	cleaned = periodPattern.ReplaceAllString(cleaned, ".")
	cleaned = urlPattern.ReplaceAllString(cleaned, "")
	cleaned = collapseSpace(cleaned)
	if hasBannedPhrase(cleaned) {
		return ""
	}

	if utf8.RuneCountInString(cleaned) < MinAnswerLength {
		return ""
	}
	if _, stop := stopAnswers[strings.ToLower(cleaned)]; stop {
		return ""
	}
	return cleaned
}

// AnswerAny normalizes v when it is a string and rejects anything else.
func AnswerAny(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Answer(s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasBannedPhrase(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range bannedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// keepAnswerRune keeps word characters, whitespace and . , : ; ! ? ( ) / -
func keepAnswerRune(r rune) rune {
	switch {
	case unicode.IsLetter(r), unicode.IsNumber(r), r == '_', unicode.IsSpace(r):
		return r
	}
	switch r {
	case '.', ',', ':', ';', '!', '?', '(', ')', '/', '-':
		return r
	}
	return -1
}
