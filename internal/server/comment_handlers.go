package server

import (
	"scribe/internal/middleware"
	"scribe/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	PostID uint   `json:"postId"`
	Text   string `json:"text"`
}

type updateCommentRequest struct {
	Text string `json:"text"`
}

// CreateComment handles POST /api/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), middleware.IdentityFrom(c), service.CreateCommentInput{
		PostID: req.PostID,
		Text:   req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/comments
// @Summary List all comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Router /comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListComments(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CountComments handles GET /api/comments/count
// @Summary Count comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Success 200 {integer} int
// @Router /comments/count [get]
func (s *Server) CountComments(c *fiber.Ctx) error {
	count, err := s.commentService.CountComments(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(count)
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body updateCommentRequest true "New text"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), middleware.IdentityFrom(c), id, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string,commentId=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.DeleteComment(c.UserContext(), middleware.IdentityFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "comment has been deleted",
		"commentId": comment.ID,
	})
}
