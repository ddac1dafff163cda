// Package console implements the interactive menu client.
//
// It reads numbered choices from an io.Reader and writes to an io.Writer, and
// works over any blog.Stores: files, memory or the HTTP API.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maruel/blogdb/internal/blog"
)

// errQuit is returned by the readers when input is exhausted.
var errQuit = errors.New("end of input")

// App is the console client.
type App struct {
	users    blog.UserRepository
	posts    blog.PostRepository
	comments blog.CommentRepository
	in       *bufio.Scanner
	out      io.Writer
	st       styles
}

// New returns a console reading from in and writing to out.
func New(stores *blog.Stores, in io.Reader, out io.Writer) *App {
	return &App{
		users:    stores.Users,
		posts:    stores.Posts,
		comments: stores.Comments,
		in:       bufio.NewScanner(in),
		out:      out,
		st:       newStyles(out),
	}
}

// Run shows the main menu until the user exits, the input ends or ctx is
// canceled.
func (a *App) Run(ctx context.Context) error {
	a.println(a.st.title.Render("Welcome to blogdb!"))
	err := a.menu(ctx, "", []entry{
		{"1", "Manage users", a.usersMenu},
		{"2", "Manage posts", a.postsMenu},
	}, "Exit")
	if err == nil || errors.Is(err, errQuit) {
		a.println("Goodbye!")
		return nil
	}
	return err
}

type entry struct {
	key   string
	label string
	run   func(context.Context) error
}

// menu loops over entries until "0" is chosen.
//
// Storage errors from an entry are printed and the menu is shown again. Only
// errQuit and context errors end the loop early.
func (a *App) menu(ctx context.Context, title string, entries []entry, back string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.println("")
		if title != "" {
			a.println(a.st.title.Render("=== " + title + " ==="))
		}
		for _, e := range entries {
			a.printf("%s) %s\n", e.key, e.label)
		}
		a.printf("0) %s\n", back)
		choice, err := a.readLine("Choose an option: ")
		if err != nil {
			return err
		}
		if choice == "0" {
			return nil
		}
		found := false
		for _, e := range entries {
			if e.key != choice {
				continue
			}
			found = true
			if err := e.run(ctx); err != nil {
				if errors.Is(err, errQuit) || ctx.Err() != nil {
					return err
				}
				a.failf("Error: %v", err)
			}
			break
		}
		if !found {
			a.failf("Invalid option")
		}
	}
}

func (a *App) usersMenu(ctx context.Context) error {
	return a.menu(ctx, "USERS", []entry{
		{"1", "Create new user", func(context.Context) error { return a.CreateUser() }},
		{"2", "List users", func(context.Context) error { return a.ListUsers() }},
	}, "Back to main menu")
}

func (a *App) postsMenu(ctx context.Context) error {
	return a.menu(ctx, "POSTS", []entry{
		{"1", "Create new post", func(context.Context) error { return a.CreatePost() }},
		{"2", "View posts overview", func(context.Context) error { return a.ListPosts() }},
		{"3", "View single post", func(context.Context) error {
			id, err := a.readInt("Post ID: ")
			if err != nil {
				return err
			}
			return a.ShowPost(id)
		}},
		{"4", "Add new comment", func(context.Context) error { return a.AddComment() }},
	}, "Back to main menu")
}

// readLine prompts and returns the next trimmed input line.
func (a *App) readLine(prompt string) (string, error) {
	a.printf("%s", prompt)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(a.in.Text()), nil
}

// readRequired prompts until a non-blank value is entered.
func (a *App) readRequired(prompt string) (string, error) {
	for {
		s, err := a.readLine(prompt)
		if err != nil || s != "" {
			return s, err
		}
		a.failf("Value is required")
	}
}

// readInt prompts until an integer is entered.
func (a *App) readInt(prompt string) (int, error) {
	for {
		s, err := a.readLine(prompt)
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		a.failf("Enter a valid integer")
	}
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(s string) {
	_, _ = fmt.Fprintln(a.out, s)
}

func (a *App) okf(format string, args ...any) {
	a.println(a.st.success.Render(fmt.Sprintf(format, args...)))
}

func (a *App) failf(format string, args ...any) {
	a.println(a.st.err.Render(fmt.Sprintf(format, args...)))
}
