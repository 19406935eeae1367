package server

import (
	"github.com/gofiber/fiber/v2"
)

// SendResetPasswordLink handles POST /api/password/reset-password-link
// @Summary Send a password reset link
// @Tags password
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /password/reset-password-link [post]
func (s *Server) SendResetPasswordLink(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.passwordService.SendResetLink(c.UserContext(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "We send you a link to reset your password, check your inbox"})
}

// CheckResetPasswordLink handles GET /api/password/reset-password/:userId/:token
// @Summary Check a password reset link
// @Tags password
// @Produce json
// @Param userId path int true "User ID"
// @Param token path string true "Reset token"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /password/reset-password/{userId}/{token} [get]
func (s *Server) CheckResetPasswordLink(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.passwordService.CheckResetLink(c.UserContext(), userID, c.Params("token")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "valid link"})
}

// ResetPassword handles POST /api/password/reset-password/:userId/:token
// @Summary Reset a password
// @Tags password
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param token path string true "Reset token"
// @Param request body object{password=string} true "New password"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /password/reset-password/{userId}/{token} [post]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.passwordService.ResetPassword(c.UserContext(), userID, c.Params("token"), req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "your password has been reset successfully"})
}
