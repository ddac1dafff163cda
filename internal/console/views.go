// Implements the user and post views.

package console

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/jsonstore"
)

// postFilter is implemented by repositories that select a user's posts
// themselves, like the API client.
type postFilter interface {
	ByUser(userID int) ([]*blog.Post, error)
}

// commentFilter is implemented by repositories that select a post's comments
// themselves.
type commentFilter interface {
	ForPost(postID int) ([]*blog.Comment, error)
}

// CreateUser prompts for a username and password and adds the user.
func (a *App) CreateUser() error {
	a.println(a.st.info.Render("Creating user"))
	username, err := a.readRequired("Username: ")
	if err != nil {
		return err
	}
	taken, err := a.users.Exists(username)
	if err != nil {
		return err
	}
	if taken {
		a.failf("Username %q is already taken", username)
		return nil
	}
	password, err := a.readRequired("Password: ")
	if err != nil {
		return err
	}
	u := &blog.User{Username: username, Password: password}
	if err := u.Validate(); err != nil {
		a.failf("Invalid user: %v", err)
		return nil
	}
	u, err = a.users.Add(u)
	if err != nil {
		return err
	}
	a.okf("User created with ID = %d", u.ID)
	return nil
}

// ListUsers prints every user ordered by id.
func (a *App) ListUsers() error {
	users, err := a.users.All()
	if err != nil {
		return err
	}
	users = sortByID(users)
	if len(users) == 0 {
		a.println(a.st.muted.Render("No users found"))
		return nil
	}
	for _, u := range users {
		a.printf("[%d] %s\n", u.ID, u.Username)
	}
	return nil
}

// CreatePost prompts for a post and adds it if the author exists.
func (a *App) CreatePost() error {
	a.println(a.st.info.Render("Create post"))
	title, err := a.readRequired("Title: ")
	if err != nil {
		return err
	}
	body, err := a.readRequired("Body: ")
	if err != nil {
		return err
	}
	userID, err := a.readInt("User ID: ")
	if err != nil {
		return err
	}
	p := &blog.Post{Title: title, Body: body, UserID: userID}
	if err := p.Validate(); err != nil {
		a.failf("Invalid post: %v", err)
		return nil
	}
	if err := blog.CheckAuthor(a.users, userID); err != nil {
		if errors.Is(err, blog.ErrUnknownUser) {
			a.failf("User not found")
			return nil
		}
		return err
	}
	p, err = a.posts.Add(p)
	if err != nil {
		return err
	}
	a.okf("Post created with ID = %d", p.ID)
	return nil
}

// ListPosts prints the id and title of every post ordered by id.
func (a *App) ListPosts() error {
	posts, err := a.posts.All()
	if err != nil {
		return err
	}
	a.printPosts(sortByID(posts))
	return nil
}

// ListUserPosts prints the id and title of the posts written by a user.
func (a *App) ListUserPosts(userID int) error {
	var posts []*blog.Post
	var err error
	if f, ok := a.posts.(postFilter); ok {
		posts, err = f.ByUser(userID)
	} else {
		posts, err = blog.PostsByUser(a.posts, userID)
	}
	if err != nil {
		return err
	}
	a.printPosts(posts)
	return nil
}

func (a *App) printPosts(posts []*blog.Post) {
	if len(posts) == 0 {
		a.println(a.st.muted.Render("No posts found"))
		return
	}
	for _, p := range posts {
		a.printf("%d - %s\n", p.ID, p.Title)
	}
}

// ShowPost prints a post and its comments with their authors' names.
func (a *App) ShowPost(id int) error {
	p, err := a.posts.Get(id)
	if errors.Is(err, jsonstore.ErrNotFound) {
		a.failf("Post not found")
		return nil
	}
	if err != nil {
		return err
	}
	a.println("")
	a.println(a.st.title.Render(p.Title))
	a.println(p.Body)
	a.println("")
	a.println(a.st.info.Render("Comments:"))

	var comments []*blog.Comment
	if f, ok := a.comments.(commentFilter); ok {
		comments, err = f.ForPost(id)
	} else {
		comments, err = blog.CommentsForPost(a.comments, id)
	}
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		a.println(a.st.muted.Render("No comments found"))
		return nil
	}
	names, err := blog.Usernames(a.users)
	if err != nil {
		return err
	}
	for _, c := range comments {
		name, ok := names[c.UserID]
		if !ok {
			name = fmt.Sprintf("User %d", c.UserID)
		}
		a.printf("- %s: %s\n", name, c.Body)
	}
	return nil
}

// AddComment prompts for a comment on an existing post by an existing user.
func (a *App) AddComment() error {
	a.println(a.st.info.Render("Add comment"))
	postID, err := a.readInt("Post ID: ")
	if err != nil {
		return err
	}
	if err := blog.CheckPost(a.posts, postID); err != nil {
		if errors.Is(err, blog.ErrUnknownPost) {
			a.failf("Post not found")
			return nil
		}
		return err
	}
	userID, err := a.readInt("User ID: ")
	if err != nil {
		return err
	}
	if err := blog.CheckAuthor(a.users, userID); err != nil {
		if errors.Is(err, blog.ErrUnknownUser) {
			a.failf("User not found")
			return nil
		}
		return err
	}
	body, err := a.readRequired("Comment: ")
	if err != nil {
		return err
	}
	c := &blog.Comment{Body: body, UserID: userID, PostID: postID}
	if err := c.Validate(); err != nil {
		a.failf("Invalid comment: %v", err)
		return nil
	}
	c, err = a.comments.Add(c)
	if err != nil {
		return err
	}
	a.okf("Comment added with ID = %d", c.ID)
	return nil
}

func sortByID[T jsonstore.Row[T]](rows []T) []T {
	slices.SortStableFunc(rows, func(x, y T) int { return cmp.Compare(x.GetID(), y.GetID()) })
	return rows
}
