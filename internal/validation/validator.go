package validation

import (
	"regexp"
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/dto"
)

// Request limits.
const (
	MaxQuestionCount = 50
	MaxChoices       = 10
	MaxKeywords      = 50
	MaxTopicLength   = 200
	MaxTopN          = 10
)

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateQuizRequest checks a quiz request before any defaults are applied.
func (v *Validator) ValidateGenerateQuizRequest(req *dto.GenerateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, v.validatePassage(req.Topic, req.Text)...)
	errors = append(errors, validateCount("total_count", req.TotalCount, 1)...)
	errors = append(errors, validateCount("open_count", req.OpenCount, 0)...)
	errors = append(errors, validateCount("mc_count", req.MCCount, 0)...)

	if req.NumChoices != nil && (*req.NumChoices < 2 || *req.NumChoices > MaxChoices) {
		errors = append(errors, domain.NewOutOfRangeError("num_choices", *req.NumChoices, 2, MaxChoices))
	}
	errors = append(errors, validateKeywords(req.Keywords)...)

	return errors
}

// ValidateGenerateByKeywordsRequest requires at least one keyword.
func (v *Validator) ValidateGenerateByKeywordsRequest(req *dto.GenerateByKeywordsRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, v.validatePassage(req.Topic, req.Text)...)
	errors = append(errors, validateCount("total_count", req.TotalCount, 1)...)
	if len(req.Keywords) == 0 {
		errors = append(errors, domain.NewMissingFieldError("keywords"))
	} else {
		errors = append(errors, validateKeywords(req.Keywords)...)
	}

	return errors
}

// ValidateOptionsRequest validates the multiple-choice option request
func (v *Validator) ValidateOptionsRequest(req *dto.OptionsRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Question) == "" {
		errors = append(errors, domain.NewMissingFieldError("question"))
	}
	if strings.TrimSpace(req.Answer) == "" {
		errors = append(errors, domain.NewMissingFieldError("answer"))
	}
	if req.NumChoices != nil && (*req.NumChoices < 1 || *req.NumChoices > MaxChoices) {
		errors = append(errors, domain.NewOutOfRangeError("num_choices", *req.NumChoices, 1, MaxChoices))
	}

	return errors
}

func (v *Validator) ValidateSummarizeRequest(req *dto.SummarizeRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Text) == "" {
		errors = append(errors, domain.NewMissingFieldError("text"))
	}
	switch strings.ToLower(req.Mode) {
	case "", dto.SummaryModeShort, dto.SummaryModeDocument:
	default:
		errors = append(errors, domain.NewInvalidFormatError("mode", req.Mode))
	}

	return errors
}

func (v *Validator) ValidateDetectTopicsRequest(req *dto.DetectTopicsRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Text) == "" {
		errors = append(errors, domain.NewMissingFieldError("text"))
	}
	if req.TopN < 0 || req.TopN > MaxTopN {
		errors = append(errors, domain.NewOutOfRangeError("top_n", req.TopN, 0, MaxTopN))
	}

	return errors
}

// ValidateGenerationID validates a stored generation ID
func (v *Validator) ValidateGenerationID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("id"))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError("id", id))
	}

	return errors
}

func (v *Validator) validatePassage(topic, text string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(topic) == "" {
		errors = append(errors, domain.NewMissingFieldError("topic"))
	} else if len(topic) > MaxTopicLength {
		errors = append(errors, domain.NewOutOfRangeError("topic", len(topic), 1, MaxTopicLength))
	}
	if strings.TrimSpace(text) == "" {
		errors = append(errors, domain.NewMissingFieldError("text"))
	}

	return errors
}

func validateCount(field string, value *int, min int) domain.ValidationErrors {
	if value == nil {
		return nil
	}
	if *value < min || *value > MaxQuestionCount {
		return domain.ValidationErrors{domain.NewOutOfRangeError(field, *value, min, MaxQuestionCount)}
	}
	return nil
}

func validateKeywords(keywords []string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(keywords) > MaxKeywords {
		errors = append(errors, domain.NewOutOfRangeError("keywords", len(keywords), 1, MaxKeywords))
	}
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			errors = append(errors, domain.NewInvalidFormatError("keywords", kw))
			break
		}
	}

	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	return validULID.MatchString(s)
}
