package ports

import (
	"context"

	"github.com/flatpress/core/internal/domain/entities"
)

// PostRepository defines the interface for post data operations.
//
// Implementations own the authoritative post collection: after any method
// returns successfully, the in-memory collection and its durable form are
// guaranteed to agree. Returned posts are copies; mutating them has no
// effect on the stored collection.
type PostRepository interface {
	// List returns all posts in storage order. An empty slice is a valid
	// result; List never fails under normal operation.
	List(ctx context.Context) []*entities.Post

	// GetByID returns the post with the given id, or entities.ErrPostNotFound.
	GetByID(ctx context.Context, id int) (*entities.Post, error)

	// Create assigns the next unused id to the post, appends it to the
	// collection and persists. The returned post carries the assigned id.
	Create(ctx context.Context, post *entities.Post) (*entities.Post, error)

	// Update replaces the mutable fields of the post with the given id.
	// The id itself never changes.
	Update(ctx context.Context, id int, post *entities.Post) (*entities.Post, error)

	// Delete removes the post with the given id and persists the remaining
	// collection, which may be empty.
	Delete(ctx context.Context, id int) error

	// Count reports the number of stored posts.
	Count(ctx context.Context) int
}
