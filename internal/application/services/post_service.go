package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flatpress/core/internal/domain/entities"
	"github.com/flatpress/core/internal/infrastructure/logger"
	"github.com/flatpress/core/internal/ports"
)

// PostService handles post-related operations
type PostService struct {
	postRepo ports.PostRepository
	logger   *logger.Logger
}

// NewPostService creates a new post service
func NewPostService(postRepo ports.PostRepository, logger *logger.Logger) *PostService {
	return &PostService{
		postRepo: postRepo,
		logger:   logger,
	}
}

// CreatePost validates the request and creates a new post. When the caller
// leaves the date blank it defaults to the current date.
func (s *PostService) CreatePost(ctx context.Context, req ports.CreatePostRequest) (*entities.Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, entities.ErrTitleRequired
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	post := &entities.Post{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
		Date:    date,
	}

	created, err := s.postRepo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info("Post created", "post_id", created.ID, "title", created.Title)

	return created, nil
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id int) (*entities.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return post, nil
}

// UpdatePost replaces the mutable fields of an existing post. The id never
// changes.
func (s *PostService) UpdatePost(ctx context.Context, id int, req ports.UpdatePostRequest) (*entities.Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, entities.ErrTitleRequired
	}

	post := &entities.Post{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
		Date:    req.Date,
	}

	updated, err := s.postRepo.Update(ctx, id, post)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Post updated", "post_id", updated.ID, "title", updated.Title)

	return updated, nil
}

// DeletePost removes a post
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Post deleted", "post_id", id)

	return nil
}

// ListPosts retrieves all posts in storage order
func (s *PostService) ListPosts(ctx context.Context) []*entities.Post {
	return s.postRepo.List(ctx)
}

// CountPosts reports the number of stored posts
func (s *PostService) CountPosts(ctx context.Context) int {
	return s.postRepo.Count(ctx)
}
