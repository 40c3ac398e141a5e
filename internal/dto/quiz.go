package dto

import "time"

// GenerateQuizRequest asks for a mixed set of open and multiple-choice
// questions about a passage.
// @Description Request body for quiz generation
type GenerateQuizRequest struct {
	Topic       string   `json:"topic"`
	Text        string   `json:"text"`
	TotalCount  *int     `json:"total_count,omitempty"`
	OpenCount   *int     `json:"open_count,omitempty"`
	MCCount     *int     `json:"mc_count,omitempty"`
	NumChoices  *int     `json:"num_choices,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	WithSummary bool     `json:"with_summary"`
	Seed        *int64   `json:"seed,omitempty"`
}

// GenerateByKeywordsRequest asks for questions targeted at each keyword.
// @Description Request body for keyword-targeted generation
type GenerateByKeywordsRequest struct {
	Topic       string   `json:"topic"`
	Text        string   `json:"text"`
	TotalCount  *int     `json:"total_count,omitempty"`
	Keywords    []string `json:"keywords"`
	WithSummary bool     `json:"with_summary"`
	Seed        *int64   `json:"seed,omitempty"`
}

// QuestionResponse is one generated question. Options and CorrectIndex are
// only set for multiple-choice questions.
type QuestionResponse struct {
	Type         string   `json:"type"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
}

// QuizResponse is a stored generation.
// @Description Generated question set
type QuizResponse struct {
	ID        string             `json:"id"`
	Topic     string             `json:"topic"`
	Questions []QuestionResponse `json:"questions"`
	Summary   string             `json:"summary,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// OptionsRequest asks for shuffled multiple-choice options.
type OptionsRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	NumChoices *int   `json:"num_choices,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
}

type OptionsResponse struct {
	Options []string `json:"options"`
}

// Summary modes.
const (
	SummaryModeShort    = "short"
	SummaryModeDocument = "document"
)

type SummarizeRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// DetectTopicsRequest asks which catalog topics a text belongs to.
type DetectTopicsRequest struct {
	Text   string `json:"text"`
	Method string `json:"method,omitempty"`
	TopN   int    `json:"top_n,omitempty"`
}

type DetectTopicsResponse struct {
	Primary   string             `json:"primary"`
	Secondary string             `json:"secondary,omitempty"`
	Tertiary  string             `json:"tertiary,omitempty"`
	Scores    map[string]float64 `json:"scores"`
}

type TopicResponse struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type TopicsResponse struct {
	Topics []TopicResponse `json:"topics"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
