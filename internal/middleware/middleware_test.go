package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizforge/internal/domain"
	"quizforge/internal/middleware"
)

func newApp(h fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Get("/t", h)
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"inference failure", domain.NewInferenceError("qa", errors.New("down")), http.StatusServiceUnavailable, "INFERENCE_FAILURE"},
		{"generation not found", domain.NewGenerationNotFoundError("x"), http.StatusNotFound, "GENERATION_NOT_FOUND"},
		{"invalid input", domain.NewInvalidInputError("bad"), http.StatusBadRequest, "INVALID_INPUT"},
		{"insufficient keywords", domain.NewInsufficientKeywordsError([]string{"a"}), http.StatusBadRequest, "INSUFFICIENT_KEYWORDS"},
		{"wrapped internal", errors.Join(domain.NewInternalError("x", nil)), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"fiber error", fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(func(c *fiber.Ctx) error { return tt.err })
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/t", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode(t, resp)
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestErrorHandler_Details(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return domain.NewInsufficientKeywordsError([]string{"chlorophyll"})
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/t", nil))
	require.NoError(t, err)

	body := decode(t, resp)
	assert.Equal(t, "Too few of your keywords appear in the text.", body["message"])
	assert.Equal(t, map[string]interface{}{"found_keywords": []interface{}{"chlorophyll"}}, body["details"])
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewMissingFieldError("text")}
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/t", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, "text", errs[0].(map[string]interface{})["field"])
}

func TestRequestID(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return c.SendString(middleware.RequestIDFrom(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(middleware.RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/t", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get(middleware.RequestIDHeader))
	assert.NoError(t, err)
}

func TestValidateGenerationID(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	vm := middleware.NewValidationMiddleware()
	app.Get("/g/:id", vm.ValidateGenerationID(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("validated_generation_id").(string))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/g/01ARZ3NDEKTSV4RRFFQ69G5FAV", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/g/not-an-id", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
