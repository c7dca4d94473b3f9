package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/middleware"
)

func TestStatusFor(t *testing.T) {
	tests := map[domain.ErrorCode]int{
		domain.CodeNotFound:        http.StatusNotFound,
		domain.CodeSessionNotFound: http.StatusNotFound,
		domain.CodeLevelNotFound:   http.StatusNotFound,
		domain.CodeLevelEmpty:      http.StatusBadRequest,
		domain.CodeInvalidInput:    http.StatusBadRequest,
		domain.CodeOutOfRange:      http.StatusBadRequest,
		domain.CodeUnauthorized:    http.StatusUnauthorized,
		domain.CodeInvalidState:    http.StatusConflict,
		domain.CodeInternal:        http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, middleware.StatusFor(code), code)
	}
}

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestErrorHandler_DomainError(t *testing.T) {
	app := errorApp(domain.NewSessionNotFoundError("abc"))
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body middleware.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "SESSION_NOT_FOUND", body.Code)
	assert.Equal(t, http.StatusNotFound, body.Status)
	assert.Equal(t, "abc", body.Details["session_id"])
}

func TestErrorHandler_WrappedInvalidState(t *testing.T) {
	app := errorApp(errors.Join(domain.NewInvalidStateError(domain.SessionStateFinished, "advance")))
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := errorApp(domain.ValidationErrors{domain.NewMissingFieldError("level_number")})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "level_number", body.Errors[0].Field)
}

func TestErrorHandler_FiberAndUnknown(t *testing.T) {
	resp, err := errorApp(fiber.NewError(fiber.StatusTeapot, "short and stout")).Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	resp, err = errorApp(errors.New("boom")).Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body middleware.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestRequestLogger(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestLogger())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return domain.NewLevelNotFoundError(3) })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	req := httptest.NewRequest("GET", "/missing", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "req-1", resp.Header.Get(middleware.RequestIDHeader))
}
