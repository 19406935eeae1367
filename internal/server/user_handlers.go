package server

import (
	"scribe/internal/middleware"
	"scribe/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
}

// ListUsers handles GET /api/users/profile
// @Summary List all users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} models.ErrorResponse
// @Router /users/profile [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/profile/:id
// @Summary Get a user profile
// @Description Returns the user with their posts, newest first
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/profile/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUserProfile handles PUT /api/users/profile/:id
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body updateProfileRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users/profile/{id} [put]
func (s *Server) UpdateUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), middleware.IdentityFrom(c), id, service.UpdateProfileInput{
		Username: req.Username,
		Password: req.Password,
		Bio:      req.Bio,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UploadProfilePhoto handles POST /api/users/profile/profile-photo-upload
// @Summary Upload a profile photo
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 200 {object} object{message=string,profilePhoto=models.Image}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /users/profile/profile-photo-upload [post]
func (s *Server) UploadProfilePhoto(c *fiber.Ctx) error {
	upload, err := formImage(c, "image")
	if err != nil {
		return respondError(c, err)
	}

	img, err := s.userService.UploadProfilePhoto(c.UserContext(), middleware.IdentityFrom(c), upload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":      "your profile photo uploaded successfully",
		"profilePhoto": img,
	})
}

// DeleteUserProfile handles DELETE /api/users/profile/:id
// @Summary Delete an account
// @Description Removes the user, their posts, comments, likes and stored images
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/profile/{id} [delete]
func (s *Server) DeleteUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteAccount(c.UserContext(), middleware.IdentityFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "your profile has been deleted"})
}

// CountUsers handles GET /api/users/count
// @Summary Count users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {integer} int
// @Router /users/count [get]
func (s *Server) CountUsers(c *fiber.Ctx) error {
	count, err := s.userService.CountUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(count)
}
