// Package blog defines the blog entities and the repositories that hold them.
//
// Each entity kind lives in its own table:
//   - users: accounts, unique by username, patchable password
//   - posts: unique by title, patchable title
//   - comments: unique by body, patchable body
//
// Tables are independent. References between them (a post's author, a
// comment's post) are checked by callers with CheckAuthor and CheckPost
// before adding rows; the tables themselves never enforce them.
package blog

import (
	"errors"
	"fmt"

	"github.com/maruel/blogdb/internal/jsonstore"
)

var (
	// ErrUnknownUser is returned when a referenced user does not exist.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnknownPost is returned when a referenced post does not exist.
	ErrUnknownPost = errors.New("unknown post")

	errUsernameRequired = errors.New("username is required")
	errPasswordRequired = errors.New("password is required")
	errTitleRequired    = errors.New("title is required")
	errBodyRequired     = errors.New("body is required")
	errAuthorRequired   = errors.New("user id is required")
	errPostRequired     = errors.New("post id is required")
)

// Repository is the operation set of one table.
//
// Both jsonstore.Store and jsonstore.Memory implement it, as does the HTTP
// client in package apiclient.
type Repository[T jsonstore.Row[T]] interface {
	// Add assigns the next id and appends row.
	Add(row T) (T, error)
	// Update replaces the row with the same id.
	Update(row T) error
	// Delete removes the row with the given id and returns it.
	Delete(id int) (T, error)
	// Patch sets the table's patchable field.
	Patch(id int, value string) (T, error)
	// Get returns the row with the given id.
	Get(id int) (T, error)
	// All returns every row in insertion order.
	All() ([]T, error)
	// Exists reports whether a row's unique field equals value.
	Exists(value string) (bool, error)
}

// UserRepository holds users.
type UserRepository = Repository[*User]

// PostRepository holds posts.
type PostRepository = Repository[*Post]

// CommentRepository holds comments.
type CommentRepository = Repository[*Comment]

// CheckAuthor returns ErrUnknownUser if no user has the given id.
func CheckAuthor(users UserRepository, id int) error {
	if _, err := users.Get(id); err != nil {
		if errors.Is(err, jsonstore.ErrNotFound) {
			return fmt.Errorf("%w %d", ErrUnknownUser, id)
		}
		return err
	}
	return nil
}

// CheckPost returns ErrUnknownPost if no post has the given id.
func CheckPost(posts PostRepository, id int) error {
	if _, err := posts.Get(id); err != nil {
		if errors.Is(err, jsonstore.ErrNotFound) {
			return fmt.Errorf("%w %d", ErrUnknownPost, id)
		}
		return err
	}
	return nil
}
