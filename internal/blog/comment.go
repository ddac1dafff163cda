package blog

import "github.com/maruel/blogdb/internal/jsonstore"

// Comment is a reply by a user to a post.
type Comment struct {
	ID     int    `json:"Id" jsonschema:"description=Unique comment identifier"`
	Body   string `json:"Body" jsonschema:"description=Comment text"`
	UserID int    `json:"UserId" jsonschema:"description=ID of the author"`
	PostID int    `json:"PostId" jsonschema:"description=ID of the post commented on"`
}

// Clone returns a copy of the comment.
func (c *Comment) Clone() *Comment {
	d := *c
	return &d
}

// GetID returns the comment's ID.
func (c *Comment) GetID() int {
	return c.ID
}

// SetID sets the comment's ID.
func (c *Comment) SetID(id int) {
	c.ID = id
}

// Validate checks that the required fields are set.
func (c *Comment) Validate() error {
	if c.Body == "" {
		return errBodyRequired
	}
	if c.UserID <= 0 {
		return errAuthorRequired
	}
	if c.PostID <= 0 {
		return errPostRequired
	}
	return nil
}

// CommentTable returns the configuration of the comments table.
func CommentTable() jsonstore.Config[*Comment] {
	return jsonstore.Config[*Comment]{
		Name:     "comments",
		FileName: "comments.json",
		Seed: func() []*Comment {
			return []*Comment{
				{ID: 1, Body: "Nice work!", UserID: 2, PostID: 1},
				{ID: 2, Body: "Welcome!", UserID: 3, PostID: 1},
			}
		},
		Unique: func(c *Comment) string { return c.Body },
		Patch:  func(c *Comment, v string) { c.Body = v },
	}
}
