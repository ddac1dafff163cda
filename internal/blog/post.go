package blog

import "github.com/maruel/blogdb/internal/jsonstore"

// Post is an article written by a user.
type Post struct {
	ID     int    `json:"Id" jsonschema:"description=Unique post identifier"`
	Title  string `json:"Title" jsonschema:"description=Unique post title"`
	Body   string `json:"Body" jsonschema:"description=Post content"`
	IsOpen bool   `json:"IsOpen" jsonschema:"description=Whether the post accepts comments"`
	UserID int    `json:"UserId" jsonschema:"description=ID of the author"`
}

// Clone returns a copy of the post.
func (p *Post) Clone() *Post {
	c := *p
	return &c
}

// GetID returns the post's ID.
func (p *Post) GetID() int {
	return p.ID
}

// SetID sets the post's ID.
func (p *Post) SetID(id int) {
	p.ID = id
}

// Validate checks that the required fields are set.
func (p *Post) Validate() error {
	if p.Title == "" {
		return errTitleRequired
	}
	if p.UserID <= 0 {
		return errAuthorRequired
	}
	return nil
}

// PostTable returns the configuration of the posts table.
func PostTable() jsonstore.Config[*Post] {
	return jsonstore.Config[*Post]{
		Name:     "posts",
		FileName: "posts.json",
		Seed: func() []*Post {
			return []*Post{
				{ID: 1, Title: "Hello World", Body: "My first post", UserID: 1},
				{ID: 2, Title: "Second Post", Body: "More content here", UserID: 2},
			}
		},
		Unique: func(p *Post) string { return p.Title },
		Patch:  func(p *Post, v string) { p.Title = v },
	}
}
