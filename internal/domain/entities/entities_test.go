package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostValidate(t *testing.T) {
	valid := &Post{Title: "Hello"}
	assert.NoError(t, valid.Validate())

	for _, title := range []string{"", "  ", "\n"} {
		p := &Post{Title: title, Content: "body"}
		err := p.Validate()
		assert.ErrorIs(t, err, ErrTitleRequired, "title %q", title)
		assert.ErrorIs(t, err, ErrInvalidPost, "title %q", title)
	}
}

func TestPostClone(t *testing.T) {
	p := &Post{ID: 1, Title: "Original", Content: "body", Author: "Ann"}

	c := p.Clone()
	c.Title = "Changed"

	assert.Equal(t, "Original", p.Title)
	assert.Equal(t, 1, c.ID)
	assert.Equal(t, "Ann", c.Author)
}
