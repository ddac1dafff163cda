package handlers

import (
	"context"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/server/dto"
)

// PostHandler handles post requests.
type PostHandler struct {
	users    blog.UserRepository
	posts    blog.PostRepository
	comments blog.CommentRepository
}

// NewPostHandler creates a new post handler.
func NewPostHandler(svc *Services) *PostHandler {
	return &PostHandler{users: svc.Users, posts: svc.Posts, comments: svc.Comments}
}

// ListPosts returns all posts, or those of one author when UserID is set.
func (h *PostHandler) ListPosts(ctx context.Context, req *dto.ListPostsRequest) (*dto.ListPostsResponse, error) {
	var posts []*blog.Post
	var err error
	if req.UserID != 0 {
		posts, err = blog.PostsByUser(h.posts, req.UserID)
	} else {
		posts, err = h.posts.All()
	}
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return postsToResponse(posts), nil
}

// CreatePost adds a post. The title must not be taken and the author must exist.
func (h *PostHandler) CreatePost(ctx context.Context, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	if err := checkUnique(h.posts.Exists, "title", req.Title); err != nil {
		return nil, err
	}
	if err := blog.CheckAuthor(h.users, req.UserID); err != nil {
		return nil, storeError(err, "user", req.UserID)
	}
	p, err := h.posts.Add(&blog.Post{Title: req.Title, Body: req.Body, IsOpen: req.IsOpen, UserID: req.UserID})
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return postToResponse(p), nil
}

// GetPost returns one post.
func (h *PostHandler) GetPost(ctx context.Context, req *dto.GetPostRequest) (*dto.PostResponse, error) {
	p, err := h.posts.Get(req.ID)
	if err != nil {
		return nil, storeError(err, "post", req.ID)
	}
	return postToResponse(p), nil
}

// UpdatePost replaces a post.
func (h *PostHandler) UpdatePost(ctx context.Context, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	cur, err := h.posts.Get(req.ID)
	if err != nil {
		return nil, storeError(err, "post", req.ID)
	}
	if cur.Title != req.Title {
		if err := checkUnique(h.posts.Exists, "title", req.Title); err != nil {
			return nil, err
		}
	}
	if err := blog.CheckAuthor(h.users, req.UserID); err != nil {
		return nil, storeError(err, "user", req.UserID)
	}
	p := &blog.Post{ID: req.ID, Title: req.Title, Body: req.Body, IsOpen: req.IsOpen, UserID: req.UserID}
	if err := h.posts.Update(p); err != nil {
		return nil, storeError(err, "post", req.ID)
	}
	return postToResponse(p), nil
}

// PatchPost changes a post's title.
func (h *PostHandler) PatchPost(ctx context.Context, req *dto.PatchPostRequest) (*dto.PostResponse, error) {
	cur, err := h.posts.Get(req.ID)
	if err != nil {
		return nil, storeError(err, "post", req.ID)
	}
	if cur.Title != req.Title {
		if err := checkUnique(h.posts.Exists, "title", req.Title); err != nil {
			return nil, err
		}
	}
	p, err := h.posts.Patch(req.ID, req.Title)
	if err != nil {
		return nil, storeError(err, "post", req.ID)
	}
	return postToResponse(p), nil
}

// DeletePost removes a post and returns it. Its comments are kept.
func (h *PostHandler) DeletePost(ctx context.Context, req *dto.DeletePostRequest) (*dto.PostResponse, error) {
	p, err := h.posts.Delete(req.ID)
	if err != nil {
		return nil, storeError(err, "post", req.ID)
	}
	return postToResponse(p), nil
}

// ListPostComments returns the comments on a post ordered by id.
func (h *PostHandler) ListPostComments(ctx context.Context, req *dto.ListPostCommentsRequest) (*dto.ListCommentsResponse, error) {
	if _, err := h.posts.Get(req.ID); err != nil {
		return nil, storeError(err, "post", req.ID)
	}
	comments, err := blog.CommentsForPost(h.comments, req.ID)
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return commentsToResponse(comments), nil
}
