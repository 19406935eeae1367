package server

import (
	"scribe/internal/middleware"
	"scribe/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updatePostRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param image formData file true "Image file"
// @Success 201 {object} object{message=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	upload, err := formImage(c, "image")
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), middleware.IdentityFrom(c), service.CreatePostInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Image:       upload,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Your post has been created successfully",
		"post":    post,
	})
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description pageNumber selects a page of three posts; otherwise category filters. Newest first.
// @Tags posts
// @Produce json
// @Param pageNumber query int false "Page number, starting at 1"
// @Param category query string false "Category filter"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		PageNumber: c.Query("pageNumber"),
		Category:   c.Query("category"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Description Returns the post with its author, likes and comments
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CountPosts handles GET /api/posts/count
// @Summary Count posts
// @Tags posts
// @Produce json
// @Success 200 {integer} int
// @Router /posts/count [get]
func (s *Server) CountPosts(c *fiber.Ctx) error {
	count, err := s.postService.CountPosts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(count)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body updatePostRequest true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), middleware.IdentityFrom(c), id, service.UpdatePostInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UpdatePostImage handles PUT /api/posts/update-image/:id
// @Summary Replace a post image
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param image formData file true "Image file"
// @Success 200 {object} object{message=string,updatedPost=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/update-image/{id} [put]
func (s *Server) UpdatePostImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	upload, err := formImage(c, "image")
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.UpdatePostImage(c.UserContext(), middleware.IdentityFrom(c), id, upload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Your post image has been updated successfully",
		"updatedPost": post,
	})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Description Removes the post with its comments, likes and image
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string,postId=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.DeletePost(c.UserContext(), middleware.IdentityFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "post has been deleted successfully",
		"postId":  post.ID,
	})
}

// ToggleLike handles PUT /api/posts/like/:id
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/like/{id} [put]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.ToggleLike(c.UserContext(), middleware.IdentityFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}
