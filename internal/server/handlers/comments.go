package handlers

import (
	"context"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/server/dto"
)

// CommentHandler handles comment requests.
type CommentHandler struct {
	users    blog.UserRepository
	posts    blog.PostRepository
	comments blog.CommentRepository
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(svc *Services) *CommentHandler {
	return &CommentHandler{users: svc.Users, posts: svc.Posts, comments: svc.Comments}
}

// ListComments returns all comments.
func (h *CommentHandler) ListComments(ctx context.Context, _ *dto.ListCommentsRequest) (*dto.ListCommentsResponse, error) {
	comments, err := h.comments.All()
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return commentsToResponse(comments), nil
}

// CreateComment adds a comment. The author and the post must exist.
func (h *CommentHandler) CreateComment(ctx context.Context, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := h.checkRefs(req.UserID, req.PostID); err != nil {
		return nil, err
	}
	c, err := h.comments.Add(&blog.Comment{Body: req.Body, UserID: req.UserID, PostID: req.PostID})
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return commentToResponse(c), nil
}

// GetComment returns one comment.
func (h *CommentHandler) GetComment(ctx context.Context, req *dto.GetCommentRequest) (*dto.CommentResponse, error) {
	c, err := h.comments.Get(req.ID)
	if err != nil {
		return nil, storeError(err, "comment", req.ID)
	}
	return commentToResponse(c), nil
}

// UpdateComment replaces a comment.
func (h *CommentHandler) UpdateComment(ctx context.Context, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	if err := h.checkRefs(req.UserID, req.PostID); err != nil {
		return nil, err
	}
	c := &blog.Comment{ID: req.ID, Body: req.Body, UserID: req.UserID, PostID: req.PostID}
	if err := h.comments.Update(c); err != nil {
		return nil, storeError(err, "comment", req.ID)
	}
	return commentToResponse(c), nil
}

// PatchComment changes a comment's body.
func (h *CommentHandler) PatchComment(ctx context.Context, req *dto.PatchCommentRequest) (*dto.CommentResponse, error) {
	c, err := h.comments.Patch(req.ID, req.Body)
	if err != nil {
		return nil, storeError(err, "comment", req.ID)
	}
	return commentToResponse(c), nil
}

// DeleteComment removes a comment and returns it.
func (h *CommentHandler) DeleteComment(ctx context.Context, req *dto.DeleteCommentRequest) (*dto.CommentResponse, error) {
	c, err := h.comments.Delete(req.ID)
	if err != nil {
		return nil, storeError(err, "comment", req.ID)
	}
	return commentToResponse(c), nil
}

func (h *CommentHandler) checkRefs(userID, postID int) error {
	if err := blog.CheckAuthor(h.users, userID); err != nil {
		return storeError(err, "user", userID)
	}
	if err := blog.CheckPost(h.posts, postID); err != nil {
		return storeError(err, "post", postID)
	}
	return nil
}
