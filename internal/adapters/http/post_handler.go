package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/flatpress/core/internal/application/services"
	"github.com/flatpress/core/internal/infrastructure/logger"
	"github.com/flatpress/core/internal/ports"
)

// PostHandler handles post-related API requests
type PostHandler struct {
	postService *services.PostService
	logger      *logger.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		logger:      logger,
	}
}

// ListPosts returns all posts in storage order
func (h *PostHandler) ListPosts(c echo.Context) error {
	posts := h.postService.ListPosts(c.Request().Context())
	return c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by id
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.postService.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post from the request body
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req ports.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postService.CreatePost(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create post failed", "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, post)
}

// UpdatePost replaces the mutable fields of an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	var req ports.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postService.UpdatePost(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update post failed", "error", err, "post_id", id)
		return err
	}

	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	if err := h.postService.DeletePost(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete post failed", "error", err, "post_id", id)
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// postID extracts the integer post id from the route path
func postID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	return id, nil
}

// Request/Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
