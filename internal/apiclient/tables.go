// Implements the repository interface for each table.

package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/jsonstore"
	"github.com/maruel/blogdb/internal/server/dto"
)

// table maps the repository operations onto one API collection.
//
// R is the single-row response type and L the list response type.
type table[T jsonstore.Row[T], R, L any] struct {
	c      *Client
	path   string
	unique func(T) string
	decode func(*R) T
	items  func(*L) []R
	body   func(T) any
	patch  func(string) any
}

func (t *table[T, R, L]) Add(row T) (T, error) {
	var out R
	if err := t.c.do(context.Background(), http.MethodPost, t.path, t.body(row), &out); err != nil {
		var zero T
		return zero, err
	}
	return t.decode(&out), nil
}

func (t *table[T, R, L]) Update(row T) error {
	return t.c.do(context.Background(), http.MethodPut, t.item(row.GetID()), t.body(row), nil)
}

func (t *table[T, R, L]) Delete(id int) (T, error) {
	return t.one(http.MethodDelete, id, nil)
}

func (t *table[T, R, L]) Patch(id int, value string) (T, error) {
	return t.one(http.MethodPatch, id, t.patch(value))
}

func (t *table[T, R, L]) Get(id int) (T, error) {
	return t.one(http.MethodGet, id, nil)
}

func (t *table[T, R, L]) All() ([]T, error) {
	return t.list(t.path)
}

// Exists lists the collection since the API has no lookup by field.
func (t *table[T, R, L]) Exists(value string) (bool, error) {
	rows, err := t.All()
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if t.unique(row) == value {
			return true, nil
		}
	}
	return false, nil
}

func (t *table[T, R, L]) one(method string, id int, in any) (T, error) {
	var out R
	if err := t.c.do(context.Background(), method, t.item(id), in, &out); err != nil {
		var zero T
		return zero, err
	}
	return t.decode(&out), nil
}

func (t *table[T, R, L]) list(path string) ([]T, error) {
	var out L
	if err := t.c.do(context.Background(), http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	items := t.items(&out)
	rows := make([]T, 0, len(items))
	for i := range items {
		rows = append(rows, t.decode(&items[i]))
	}
	return rows, nil
}

func (t *table[T, R, L]) item(id int) string {
	return t.path + "/" + strconv.Itoa(id)
}

// Users is the users table served by the API.
type Users struct {
	table[*blog.User, dto.UserResponse, dto.ListUsersResponse]
}

// Users returns the users repository.
func (c *Client) Users() *Users {
	return &Users{table[*blog.User, dto.UserResponse, dto.ListUsersResponse]{
		c:      c,
		path:   "/users",
		unique: blog.UserTable().Unique,
		decode: func(r *dto.UserResponse) *blog.User {
			return &blog.User{ID: r.ID, Username: r.Username, Password: r.Password}
		},
		items: func(l *dto.ListUsersResponse) []dto.UserResponse { return l.Users },
		body: func(u *blog.User) any {
			return &dto.CreateUserRequest{Username: u.Username, Password: u.Password}
		},
		patch: func(v string) any { return &dto.PatchUserRequest{Password: v} },
	}}
}

// Posts is the posts table served by the API.
type Posts struct {
	table[*blog.Post, dto.PostResponse, dto.ListPostsResponse]
}

// Posts returns the posts repository.
func (c *Client) Posts() *Posts {
	return &Posts{table[*blog.Post, dto.PostResponse, dto.ListPostsResponse]{
		c:      c,
		path:   "/posts",
		unique: blog.PostTable().Unique,
		decode: func(r *dto.PostResponse) *blog.Post {
			return &blog.Post{ID: r.ID, Title: r.Title, Body: r.Body, IsOpen: r.IsOpen, UserID: r.UserID}
		},
		items: func(l *dto.ListPostsResponse) []dto.PostResponse { return l.Posts },
		body: func(p *blog.Post) any {
			return &dto.CreatePostRequest{Title: p.Title, Body: p.Body, IsOpen: p.IsOpen, UserID: p.UserID}
		},
		patch: func(v string) any { return &dto.PatchPostRequest{Title: v} },
	}}
}

// ByUser returns the posts written by one user, filtered by the server.
func (p *Posts) ByUser(userID int) ([]*blog.Post, error) {
	return p.list(p.path + "?userId=" + strconv.Itoa(userID))
}

// Comments is the comments table served by the API.
type Comments struct {
	table[*blog.Comment, dto.CommentResponse, dto.ListCommentsResponse]
}

// Comments returns the comments repository.
func (c *Client) Comments() *Comments {
	return &Comments{table[*blog.Comment, dto.CommentResponse, dto.ListCommentsResponse]{
		c:      c,
		path:   "/comments",
		unique: blog.CommentTable().Unique,
		decode: func(r *dto.CommentResponse) *blog.Comment {
			return &blog.Comment{ID: r.ID, Body: r.Body, UserID: r.UserID, PostID: r.PostID}
		},
		items: func(l *dto.ListCommentsResponse) []dto.CommentResponse { return l.Comments },
		body: func(c *blog.Comment) any {
			return &dto.CreateCommentRequest{Body: c.Body, UserID: c.UserID, PostID: c.PostID}
		},
		patch: func(v string) any { return &dto.PatchCommentRequest{Body: v} },
	}}
}

// ForPost returns the comments on a post, filtered by the server.
func (c *Comments) ForPost(postID int) ([]*blog.Comment, error) {
	return c.list("/posts/" + strconv.Itoa(postID) + "/comments")
}
