// Defines shared service dependencies for handlers.

package handlers

import (
	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/history"
)

// Services holds all service dependencies for handlers.
type Services struct {
	Users    blog.UserRepository
	Posts    blog.PostRepository
	Comments blog.CommentRepository
	// Files maps table names to file paths. Empty for in-memory stores.
	Files map[string]string
	// History is nil when versioning is disabled.
	History *history.Repo
}

// NewServices returns Services backed by stores.
func NewServices(stores *blog.Stores, hist *history.Repo) *Services {
	return &Services{
		Users:    stores.Users,
		Posts:    stores.Posts,
		Comments: stores.Comments,
		Files:    stores.Files,
		History:  hist,
	}
}
