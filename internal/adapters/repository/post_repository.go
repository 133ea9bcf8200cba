package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/flatpress/core/internal/domain/entities"
	"github.com/flatpress/core/internal/ports"
)

var _ ports.PostRepository = (*FileRepository)(nil)

// FileRepository is the flat-file implementation of ports.PostRepository.
//
// The whole collection lives in memory and is rewritten to the storage file
// on every mutation. Writes go through a temp file and an atomic rename, so
// a crash mid-write never leaves a syntactically invalid file behind. When
// the rewrite fails the in-memory mutation is rolled back, keeping memory
// consistent with the last persisted snapshot.
//
// A single process is assumed to own the file; the mutex only guards
// in-process access.
type FileRepository struct {
	path string

	mu     sync.RWMutex
	posts  []*entities.Post
	nextID int
}

// NewPostRepository loads the post collection from the given file.
//
// A missing file yields an empty collection. A file that exists but cannot
// be parsed, or that contains duplicate ids, fails with
// entities.ErrStoreCorrupt and is left untouched.
func NewPostRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("storage file path is required")
	}

	repo := &FileRepository{
		path:   path,
		posts:  []*entities.Post{},
		nextID: 1,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return repo, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", entities.ErrStoreCorrupt, path, err)
	}

	var posts []*entities.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", entities.ErrStoreCorrupt, path, err)
	}

	seen := make(map[int]struct{}, len(posts))
	for _, post := range posts {
		if post == nil {
			return nil, fmt.Errorf("%w: null post entry in %s", entities.ErrStoreCorrupt, path)
		}
		if _, dup := seen[post.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate post id %d in %s", entities.ErrStoreCorrupt, post.ID, path)
		}
		seen[post.ID] = struct{}{}

		if post.ID >= repo.nextID {
			repo.nextID = post.ID + 1
		}
	}

	if posts != nil {
		repo.posts = posts
	}

	return repo, nil
}

// Path returns the location of the storage file.
func (r *FileRepository) Path() string {
	return r.path
}

// List returns copies of all posts in storage order.
func (r *FileRepository) List(ctx context.Context) []*entities.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Post, len(r.posts))
	for i, post := range r.posts {
		out[i] = post.Clone()
	}
	return out
}

// GetByID returns a copy of the post with the given id.
func (r *FileRepository) GetByID(ctx context.Context, id int) (*entities.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, post := range r.posts {
		if post.ID == id {
			return post.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", entities.ErrPostNotFound, id)
}

// Count reports the number of stored posts.
func (r *FileRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.posts)
}

// Create validates the post, assigns the next unused id, appends it to the
// collection and persists. Ids increase monotonically and are never reused
// within a process lifetime, even after deletions.
func (r *FileRepository) Create(ctx context.Context, post *entities.Post) (*entities.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := post.Clone()
	created.ID = r.nextID

	next := append(r.slice(), created)
	if err := r.persist(next); err != nil {
		return nil, err
	}

	r.posts = next
	r.nextID++
	return created.Clone(), nil
}

// Update replaces the mutable fields of the post with the given id,
// keeping the id itself unchanged.
func (r *FileRepository) Update(ctx context.Context, id int, post *entities.Post) (*entities.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: id %d", entities.ErrPostNotFound, id)
	}

	updated := post.Clone()
	updated.ID = id

	next := r.slice()
	next[idx] = updated
	if err := r.persist(next); err != nil {
		return nil, err
	}

	r.posts = next
	return updated.Clone(), nil
}

// Delete removes the post with the given id and persists the remaining
// collection, which may be empty.
func (r *FileRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: id %d", entities.ErrPostNotFound, id)
	}

	next := r.slice()
	next = append(next[:idx], next[idx+1:]...)
	if err := r.persist(next); err != nil {
		return err
	}

	r.posts = next
	return nil
}

// indexOf returns the position of the post with the given id, or -1.
// Caller must hold the lock.
func (r *FileRepository) indexOf(id int) int {
	for i, post := range r.posts {
		if post.ID == id {
			return i
		}
	}
	return -1
}

// slice returns a shallow copy of the post slice so mutations can be
// prepared without touching the published collection. Caller must hold
// the lock.
func (r *FileRepository) slice() []*entities.Post {
	next := make([]*entities.Post, len(r.posts))
	copy(next, r.posts)
	return next
}

// persist writes the candidate collection to the storage file. The current
// in-memory collection is untouched when persist fails, so callers roll
// back by simply not publishing the candidate.
func (r *FileRepository) persist(posts []*entities.Post) error {
	data, err := json.MarshalIndent(posts, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", entities.ErrPersistFailed, err)
	}

	if err := writeFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistFailed, err)
	}
	return nil
}

// writeFileAtomic writes data to a uniquely named temp file in the target
// directory, syncs it and renames it over path. Rename on the same
// filesystem is atomic, so readers observe either the old or the new
// content, never a torn file.
func writeFileAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
