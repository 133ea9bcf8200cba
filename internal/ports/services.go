package ports

// CreatePostRequest carries the fields accepted when creating a post.
// Validation tags are enforced at the HTTP boundary; the application
// service re-checks the title so non-HTTP callers get the same guarantee.
type CreatePostRequest struct {
	Title   string `json:"title" form:"title" validate:"required"`
	Content string `json:"content" form:"content"`
	Author  string `json:"author" form:"author"`
	Date    string `json:"date" form:"date"`
}

// UpdatePostRequest carries the fields accepted when updating a post.
// All mutable fields are replaced; the post id is taken from the path.
type UpdatePostRequest struct {
	Title   string `json:"title" form:"title" validate:"required"`
	Content string `json:"content" form:"content"`
	Author  string `json:"author" form:"author"`
	Date    string `json:"date" form:"date"`
}
