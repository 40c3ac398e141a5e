package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/logger"
	"quizforge/internal/middleware"
	"quizforge/internal/service"
	"quizforge/internal/validation"
)

// QuizHandler handles question generation HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// RegisterRoutes mounts the quiz API on router, normally the /api group.
func (h *QuizHandler) RegisterRoutes(router fiber.Router, vm *middleware.ValidationMiddleware) {
	quiz := router.Group("/quiz")
	quiz.Post("/generate", h.GenerateQuiz)
	quiz.Post("/generate_mc", h.GenerateOptions)
	quiz.Post("/generate_by_keywords", h.GenerateByKeywords)

	router.Post("/summarize", h.Summarize)
	router.Get("/topics", h.ListTopics)
	router.Post("/topics/detect", h.DetectTopics)
	router.Get("/generations/:id", vm.ValidateGenerationID(), h.GetGeneration)
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		logger.Get().Debug("Invalid request body", zap.Error(err), zap.String("path", c.Path()))
		return domain.NewInvalidInputError("Invalid request body")
	}
	return nil
}

// GenerateQuiz godoc
// @Summary Generate questions from a passage
// @Description Generates open and multiple-choice questions about the text. With keywords, one open question per keyword is generated after a coverage check.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /quiz/generate [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateGenerateQuizRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GenerateQuiz(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateByKeywords godoc
// @Summary Generate keyword-targeted questions
// @Description Generates one question per keyword until total_count questions are collected.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateByKeywordsRequest true "Keyword generation request"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /quiz/generate_by_keywords [post]
func (h *QuizHandler) GenerateByKeywords(c *fiber.Ctx) error {
	var req dto.GenerateByKeywordsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateGenerateByKeywordsRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GenerateByKeywords(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateOptions godoc
// @Summary Build multiple-choice options
// @Description Returns shuffled options containing the answer and distractors drawn from the matching topic.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.OptionsRequest true "Question and answer"
// @Success 200 {object} dto.OptionsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /quiz/generate_mc [post]
func (h *QuizHandler) GenerateOptions(c *fiber.Ctx) error {
	var req dto.OptionsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateOptionsRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.BuildOptions(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Summarize godoc
// @Summary Summarize a text
// @Description Short summary by default; mode "document" summarizes the head of a long document and cleans the result.
// @Tags summary
// @Accept json
// @Produce json
// @Param request body dto.SummarizeRequest true "Text to summarize"
// @Success 200 {object} dto.SummarizeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /summarize [post]
func (h *QuizHandler) Summarize(c *fiber.Ctx) error {
	var req dto.SummarizeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateSummarizeRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.Summarize(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListTopics godoc
// @Summary List topics
// @Description Returns the topic table with its keywords.
// @Tags topics
// @Produce json
// @Success 200 {object} dto.TopicsResponse
// @Router /topics [get]
func (h *QuizHandler) ListTopics(c *fiber.Ctx) error {
	resp, err := h.service.ListTopics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DetectTopics godoc
// @Summary Detect topics of a text
// @Description Ranks topics by keyword matches, embedding similarity or both.
// @Tags topics
// @Accept json
// @Produce json
// @Param request body dto.DetectTopicsRequest true "Text and method"
// @Success 200 {object} dto.DetectTopicsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /topics/detect [post]
func (h *QuizHandler) DetectTopics(c *fiber.Ctx) error {
	var req dto.DetectTopicsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := h.validator.ValidateDetectTopicsRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.DetectTopics(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetGeneration godoc
// @Summary Get a stored generation
// @Description Returns a previously generated question set by its ID.
// @Tags quiz
// @Produce json
// @Param id path string true "Generation ID (ULID)"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /generations/{id} [get]
func (h *QuizHandler) GetGeneration(c *fiber.Ctx) error {
	id, _ := c.Locals("validated_generation_id").(string)
	if id == "" {
		id = c.Params("id")
	}

	resp, err := h.service.GetGeneration(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// HealthHandler reports liveness and cache reachability.
type HealthHandler struct {
	cache domain.Cache
}

func NewHealthHandler(cache domain.Cache) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Check godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			logger.Get().Warn("Health check: cache unreachable", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "cache": "unreachable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
