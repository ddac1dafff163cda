// Converts between blog entities and API types.

package handlers

import (
	"time"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/history"
	"github.com/maruel/blogdb/internal/server/dto"
)

func userToResponse(u *blog.User) *dto.UserResponse {
	return &dto.UserResponse{ID: u.ID, Username: u.Username, Password: u.Password}
}

func postToResponse(p *blog.Post) *dto.PostResponse {
	return &dto.PostResponse{ID: p.ID, Title: p.Title, Body: p.Body, IsOpen: p.IsOpen, UserID: p.UserID}
}

func commentToResponse(c *blog.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{ID: c.ID, Body: c.Body, UserID: c.UserID, PostID: c.PostID}
}

func commitToResponse(c *history.Commit) dto.CommitResponse {
	return dto.CommitResponse{
		Hash:    c.Hash,
		Message: c.Message,
		Author:  c.Author,
		Email:   c.Email,
		Date:    c.Date.UTC().Format(time.RFC3339),
	}
}

func usersToResponse(users []*blog.User) *dto.ListUsersResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *userToResponse(u))
	}
	return &dto.ListUsersResponse{Users: out}
}

func postsToResponse(posts []*blog.Post) *dto.ListPostsResponse {
	out := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, *postToResponse(p))
	}
	return &dto.ListPostsResponse{Posts: out}
}

func commentsToResponse(comments []*blog.Comment) *dto.ListCommentsResponse {
	out := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, *commentToResponse(c))
	}
	return &dto.ListCommentsResponse{Comments: out}
}
