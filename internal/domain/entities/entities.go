package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// ErrPostNotFound is returned when the referenced post id does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidPost is returned when caller-supplied post data violates a
	// field constraint. Always recoverable by the caller.
	ErrInvalidPost = errors.New("invalid post")

	// ErrTitleRequired is the concrete validation failure for a missing
	// title. It wraps ErrInvalidPost so callers can match either.
	ErrTitleRequired = fmt.Errorf("%w: title is required", ErrInvalidPost)

	// ErrPersistFailed is returned when the write to the storage file failed.
	// The in-memory state has been rolled back and the operation may be
	// retried.
	ErrPersistFailed = errors.New("failed to persist posts")

	// ErrStoreCorrupt is returned at load time when the storage file exists
	// but cannot be used. Fatal for store initialization; the file is left
	// untouched for operator inspection.
	ErrStoreCorrupt = errors.New("post storage file is corrupt")
)

// Post represents a single blog entry.
//
// ID is assigned by the store on creation, unique across the collection and
// never reused within a process lifetime. Author and Date are opaque text
// and omitted from the persisted JSON when unset.
type Post struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Validate checks the field constraints that must hold before a post may be
// persisted. The id is not checked here; it is store-assigned.
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// Clone returns a copy of the post so callers never alias store-owned memory.
func (p *Post) Clone() *Post {
	c := *p
	return &c
}
