package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/service"
	"vocab-quiz/internal/validation"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService, validator *validation.Validator) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validator,
	}
}

// ListLevels godoc
// @Summary List levels
// @Description Returns all playable levels ordered by number
// @Tags levels
// @Produce json
// @Success 200 {object} dto.LevelListResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /levels [get]
func (h *QuizHandler) ListLevels(c *fiber.Ctx) error {
	resp, err := h.service.ListLevels(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// StartSession godoc
// @Summary Start a quiz session
// @Description Starts a session on a level. With a bearer token the result counts toward the user's progress.
// @Tags sessions
// @Accept json
// @Produce json
// @Param body body dto.StartSessionRequest true "Level to play"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions [post]
func (h *QuizHandler) StartSession(c *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return err
	}

	resp, err := h.service.StartSession(c.UserContext(), req.LevelNumber, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetSession godoc
// @Summary Get a quiz session
// @Description Returns the session with its current question. Accepted answers are never included.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *QuizHandler) GetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if errs := h.validator.SessionID(id); errs != nil {
		return errs
	}
	resp, err := h.service.GetSession(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAnswer godoc
// @Summary Answer the current question
// @Description Grades a typed answer or an ordered list of word bank tokens. Each question can be graded once.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body dto.AnswerRequest true "Answer"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Session is not awaiting an answer"
// @Router /sessions/{id}/answer [post]
func (h *QuizHandler) SubmitAnswer(c *fiber.Ctx) error {
	id := c.Params("id")
	if errs := h.validator.SessionID(id); errs != nil {
		return errs
	}
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return err
	}

	resp, err := h.service.GradeCurrent(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// NextQuestion godoc
// @Summary Advance to the next question
// @Description Moves past the graded question. After the last question the session is finished.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Current question is not graded yet"
// @Router /sessions/{id}/next [post]
func (h *QuizHandler) NextQuestion(c *fiber.Ctx) error {
	id := c.Params("id")
	if errs := h.validator.SessionID(id); errs != nil {
		return errs
	}
	resp, err := h.service.AdvanceNext(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Grade godoc
// @Summary Grade an answer
// @Description Grades an answer against an ad-hoc question without a session
// @Tags grading
// @Accept json
// @Produce json
// @Param body body dto.GradeRequest true "Answer and accepted answers"
// @Success 200 {object} dto.GradeResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /grade [post]
func (h *QuizHandler) Grade(c *fiber.Ctx) error {
	var req dto.GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return err
	}
	resp, err := h.service.Grade(c.UserContext(), req)
	if err != nil {
		return err
	}
	logger.Get().Debug("Stateless grade", zap.Bool("correct", resp.Correct))
	return c.JSON(resp)
}
