// Package history versions the table files of a data directory in a git
// repository, using go-git (pure Go, no git binary dependency).
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// gitignore keeps the table store's temporary files out of the history.
const gitignore = ".*.tmp\n"

var errAuthorRequired = errors.New("author name and email are required")

// Author identifies who commits.
type Author struct {
	Name  string
	Email string
}

// Commit represents a commit in the history.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"` // Subject line.
	Author  string    `json:"author"`
	Email   string    `json:"email"`
	Date    time.Time `json:"date"`
}

// Repo is a git repository rooted at a data directory.
type Repo struct {
	dir    string
	author Author
	repo   *gogit.Repository
	mu     sync.Mutex
}

// Open opens the git repository in dir, initializing it if needed.
//
// On first run it writes .gitignore and commits the files already present,
// so later commits only record changes.
func Open(ctx context.Context, dir string, author Author) (*Repo, error) {
	if author.Name == "" || author.Email == "" {
		return nil, errAuthorRequired
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create repo directory: %w", err)
	}
	repo, err := gogit.PlainOpen(abs)
	if err != nil {
		// Not a repo yet.
		repo, err = gogit.PlainInit(abs, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repo: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = author.Name
		cfg.User.Email = author.Email
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	r := &Repo{dir: abs, author: author, repo: repo}
	if err := r.initialCommit(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the absolute path of the repository root.
func (r *Repo) Dir() string {
	return r.dir
}

func (r *Repo) initialCommit(ctx context.Context) error {
	if _, err := r.repo.Head(); err == nil {
		return nil
	}
	path := filepath.Join(r.dir, ".gitignore")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte(gitignore), 0o644); err != nil { //nolint:gosec // G306: data dir gitignore
			return fmt.Errorf("failed to create .gitignore: %w", err)
		}
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", r.dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	_, err = r.Commit(ctx, "initial commit", files...)
	return err
}

// Commit stages files and commits them if anything changed.
//
// Paths may be absolute or relative to the repository root. It reports
// whether a commit was created.
func (r *Repo) Commit(_ context.Context, msg string, files ...string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	for _, f := range files {
		rel, err := r.rel(f)
		if err != nil {
			return false, err
		}
		if strings.HasPrefix(filepath.Base(rel), ".") && strings.HasSuffix(rel, ".tmp") {
			continue
		}
		if _, err := w.Add(rel); err != nil {
			return false, fmt.Errorf("failed to stage %s: %w", rel, err)
		}
	}

	status, err := w.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	staged := false
	for _, s := range status {
		if s.Staging != gogit.Unmodified && s.Staging != gogit.Untracked {
			staged = true
			break
		}
	}
	if !staged {
		return false, nil
	}

	sig := &object.Signature{Name: r.author.Name, Email: r.author.Email, When: time.Now()}
	if _, err := w.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// Log returns up to n commits, newest first. If file is not empty, only
// commits touching it are returned. n is capped at 1000; n <= 0 means 1000.
func (r *Repo) Log(_ context.Context, file string, n int) ([]*Commit, error) {
	if n <= 0 || n > 1000 {
		n = 1000
	}
	opts := &gogit.LogOptions{}
	if file != "" {
		rel, err := r.rel(file)
		if err != nil {
			return nil, err
		}
		opts.FileName = &rel
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	iter, err := r.repo.Log(opts)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// No commits yet.
		return []*Commit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read git log: %w", err)
	}
	defer iter.Close()

	commits := []*Commit{}
	for range n {
		c, err := iter.Next()
		if err != nil {
			break
		}
		subject, _, _ := strings.Cut(c.Message, "\n")
		commits = append(commits, &Commit{
			Hash:    c.Hash.String(),
			Message: subject,
			Author:  c.Author.Name,
			Email:   c.Author.Email,
			Date:    c.Author.When,
		})
	}
	return commits, nil
}

// rel converts path to a slash-separated path relative to the repository root.
func (r *Repo) rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		// Relative paths resolving outside the repository are taken as
		// relative to its root.
		if rel, err := filepath.Rel(r.dir, abs); err != nil || strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(filepath.Clean(path)), nil
		}
		path = abs
	}
	rel, err := filepath.Rel(r.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside of repository %s", path, r.dir)
	}
	return filepath.ToSlash(rel), nil
}
