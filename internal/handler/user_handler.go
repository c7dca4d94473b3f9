package handler

import (
	"github.com/gofiber/fiber/v2"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/service"
)

type UserHandler struct {
	userService     service.UserService
	progressService service.ProgressService
}

func NewUserHandler(userService service.UserService, progressService service.ProgressService) *UserHandler {
	return &UserHandler{userService: userService, progressService: progressService}
}

// GetMyProfile retrieves the profile of the currently authenticated user.
// @Summary Get My Profile
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return domain.NewUnauthorizedError("User ID not found in context")
	}
	profile, err := h.userService.GetUserProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// GetMyProgress lists the best result per level of the authenticated user.
// @Summary Get My Progress
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.ProgressResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /users/me/progress [get]
func (h *UserHandler) GetMyProgress(c *fiber.Ctx) error {
	resp, err := h.progressService.ListUserProgress(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
