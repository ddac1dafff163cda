// Opens the three blog tables as one bundle.

package blog

import (
	"fmt"
	"time"

	"github.com/maruel/blogdb/internal/jsonstore"
)

// FileNames overrides the table file names. Empty fields keep the defaults.
type FileNames struct {
	Users    string
	Posts    string
	Comments string
}

// OpHook observes every table operation.
type OpHook func(table string, op jsonstore.Op, elapsed time.Duration, err error)

// Stores bundles the users, posts and comments repositories.
type Stores struct {
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
	// Files maps table names to file paths. Empty for in-memory stores.
	Files map[string]string
}

// OpenFileStores opens the three file-backed tables in dir, seeding them on
// first use.
func OpenFileStores(dir string, names FileNames, hook OpHook) (*Stores, error) {
	uc := configure(UserTable(), dir, names.Users, hook)
	users, err := jsonstore.Open(uc)
	if err != nil {
		return nil, fmt.Errorf("failed to open users table: %w", err)
	}
	pc := configure(PostTable(), dir, names.Posts, hook)
	posts, err := jsonstore.Open(pc)
	if err != nil {
		return nil, fmt.Errorf("failed to open posts table: %w", err)
	}
	cc := configure(CommentTable(), dir, names.Comments, hook)
	comments, err := jsonstore.Open(cc)
	if err != nil {
		return nil, fmt.Errorf("failed to open comments table: %w", err)
	}
	return &Stores{
		Users:    users,
		Posts:    posts,
		Comments: comments,
		Files: map[string]string{
			users.Name():    users.Path(),
			posts.Name():    posts.Path(),
			comments.Name(): comments.Path(),
		},
	}, nil
}

// NewMemoryStores returns seeded in-memory tables.
func NewMemoryStores(hook OpHook) (*Stores, error) {
	users, err := jsonstore.NewMemory(configure(UserTable(), "", "", hook))
	if err != nil {
		return nil, err
	}
	posts, err := jsonstore.NewMemory(configure(PostTable(), "", "", hook))
	if err != nil {
		return nil, err
	}
	comments, err := jsonstore.NewMemory(configure(CommentTable(), "", "", hook))
	if err != nil {
		return nil, err
	}
	return &Stores{Users: users, Posts: posts, Comments: comments}, nil
}

func configure[T jsonstore.Row[T]](cfg jsonstore.Config[T], dir, fileName string, hook OpHook) jsonstore.Config[T] {
	cfg.Dir = dir
	if fileName != "" {
		cfg.FileName = fileName
	}
	if hook != nil {
		name := cfg.Name
		cfg.OnOp = func(op jsonstore.Op, elapsed time.Duration, err error) {
			hook(name, op, elapsed, err)
		}
	}
	return cfg
}
