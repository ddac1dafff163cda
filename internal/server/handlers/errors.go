// Maps storage errors to API errors.

package handlers

import (
	"errors"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/jsonstore"
	"github.com/maruel/blogdb/internal/server/dto"
)

// storeError converts an error returned by a repository into an API error.
func storeError(err error, resource string, id int) error {
	switch {
	case errors.Is(err, jsonstore.ErrNotFound):
		return dto.NotFound(resource).WithDetail("id", id)
	case errors.Is(err, blog.ErrUnknownUser), errors.Is(err, blog.ErrUnknownPost):
		return dto.UnknownReference(err)
	default:
		return dto.StorageError(err)
	}
}

// checkUnique returns a conflict error if value is taken in repo.
func checkUnique(exists func(string) (bool, error), field, value string) error {
	taken, err := exists(value)
	if err != nil {
		return dto.StorageError(err)
	}
	if taken {
		return dto.Conflict("A row with this " + field + " already exists").WithDetail(field, value)
	}
	return nil
}
