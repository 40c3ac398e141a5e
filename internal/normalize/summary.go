package normalize

import (
	"regexp"
	"strings"
)

// MaxSummarySentences bounds the length of a cleaned summary.
const MaxSummarySentences = 5

var (
	summaryURLPattern  = regexp.MustCompile(`https?://\S+`)
	backToPattern      = regexp.MustCompile(`Back to .*?\.`)
	boilerplatePattern = regexp.MustCompile(`(?i)(the article|the page|this story).*`)
	sentenceEndPattern = regexp.MustCompile(`[.!?]\s`)
)

// Summary strips links and page boilerplate from a generated summary and keeps
// its first MaxSummarySentences sentences.
func Summary(text string) string {
	text = summaryURLPattern.ReplaceAllString(text, "")
	text = backToPattern.ReplaceAllString(text, "")
	text = boilerplatePattern.ReplaceAllString(text, "")
	text = collapseSpace(text)

	var sentences []string
	for len(sentences) < MaxSummarySentences && text != "" {
		loc := sentenceEndPattern.FindStringIndex(text)
		if loc == nil {
			sentences = append(sentences, text)
			break
		}
		sentences = append(sentences, text[:loc[0]+1])
		text = text[loc[1]:]
	}
	return strings.TrimSpace(strings.Join(sentences, " "))
}
