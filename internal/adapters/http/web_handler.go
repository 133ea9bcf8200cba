package http

import (
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flatpress/core/internal/application/services"
	"github.com/flatpress/core/internal/infrastructure/logger"
	"github.com/flatpress/core/internal/ports"
	"github.com/flatpress/core/web"
)

// TemplateRenderer adapts html/template to echo's Renderer interface.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the embedded page templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	t, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: t}, nil
}

// Render renders a template document
func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// WebHandler serves the operator-facing HTML pages. It talks to the same
// PostService as the JSON API and renders forms instead of JSON.
type WebHandler struct {
	postService *services.PostService
	logger      *logger.Logger
}

// NewWebHandler creates a new web handler
func NewWebHandler(postService *services.PostService, logger *logger.Logger) *WebHandler {
	return &WebHandler{
		postService: postService,
		logger:      logger,
	}
}

// Index renders the home page with all posts
func (h *WebHandler) Index(c echo.Context) error {
	posts := h.postService.ListPosts(c.Request().Context())
	return c.Render(http.StatusOK, "index.html", map[string]interface{}{
		"Posts": posts,
	})
}

// ShowPost renders a single post page
func (h *WebHandler) ShowPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.postService.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "post.html", map[string]interface{}{
		"Post": post,
	})
}

// AddForm renders the post submission form
func (h *WebHandler) AddForm(c echo.Context) error {
	return c.Render(http.StatusOK, "add.html", nil)
}

// Add handles the post submission form
func (h *WebHandler) Add(c echo.Context) error {
	var req ports.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}

	if _, err := h.postService.CreatePost(c.Request().Context(), req); err != nil {
		h.logger.Error("Create post failed", "error", err)
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// EditForm renders the edit form pre-filled with the current post
func (h *WebHandler) EditForm(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.postService.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "update.html", map[string]interface{}{
		"Post": post,
	})
}

// Edit handles the edit form submission
func (h *WebHandler) Edit(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	var req ports.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}

	if _, err := h.postService.UpdatePost(c.Request().Context(), id, req); err != nil {
		h.logger.Error("Update post failed", "error", err, "post_id", id)
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// Delete handles the delete form submission
func (h *WebHandler) Delete(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	if err := h.postService.DeletePost(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete post failed", "error", err, "post_id", id)
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}
