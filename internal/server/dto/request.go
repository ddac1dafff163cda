package dto

// --- Health ---

// HealthRequest is a request for the server status.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// --- Users ---

// ListUsersRequest is a request to list all users.
type ListUsersRequest struct{}

// Validate is a no-op for ListUsersRequest.
func (r *ListUsersRequest) Validate() error {
	return nil
}

// CreateUserRequest is a request to create a user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the create user request fields.
func (r *CreateUserRequest) Validate() error {
	if r.Username == "" {
		return MissingField("username")
	}
	if r.Password == "" {
		return MissingField("password")
	}
	return nil
}

// GetUserRequest is a request to get one user.
type GetUserRequest struct {
	ID int `path:"id" json:"-"`
}

// Validate validates the get user request fields.
func (r *GetUserRequest) Validate() error {
	return validateID(r.ID)
}

// UpdateUserRequest is a request to replace a user.
type UpdateUserRequest struct {
	ID       int    `path:"id" json:"-"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the update user request fields.
func (r *UpdateUserRequest) Validate() error {
	if err := validateID(r.ID); err != nil {
		return err
	}
	if r.Username == "" {
		return MissingField("username")
	}
	if r.Password == "" {
		return MissingField("password")
	}
	return nil
}

// PatchUserRequest is a request to change a user's password.
type PatchUserRequest struct {
	ID       int    `path:"id" json:"-"`
	Password string `json:"password"`
}

// Validate validates the patch user request fields.
func (r *PatchUserRequest) Validate() error {
	if err := validateID(r.ID); err != nil {
		return err
	}
	if r.Password == "" {
		return MissingField("password")
	}
	return nil
}

// DeleteUserRequest is a request to delete a user.
type DeleteUserRequest struct {
	ID int `path:"id" json:"-"`
}

// Validate validates the delete user request fields.
func (r *DeleteUserRequest) Validate() error {
	return validateID(r.ID)
}

// --- Posts ---

// ListPostsRequest is a request to list posts, optionally by one author.
type ListPostsRequest struct {
	UserID int `query:"userId" json:"-"`
}

// Validate validates the list posts request fields.
func (r *ListPostsRequest) Validate() error {
	if r.UserID < 0 {
		return InvalidField("userId", "must be a positive integer")
	}
	return nil
}

// CreatePostRequest is a request to create a post.
type CreatePostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	IsOpen bool   `json:"isOpen"`
	UserID int    `json:"userId"`
}

// Validate validates the create post request fields.
func (r *CreatePostRequest) Validate() error {
	if r.Title == "" {
		return MissingField("title")
	}
	if r.UserID <= 0 {
		return MissingField("userId")
	}
	return nil
}

// GetPostRequest is a request to get one post.
type GetPostRequest struct {
	ID int `path:"id" json:"-"`
}

// Validate validates the get post request fields.
func (r *GetPostRequest) Validate() error {
	return validateID(r.ID)
}

// UpdatePostRequest is a request to replace a post.
type UpdatePostRequest struct {
	ID     int    `path:"id" json:"-"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	IsOpen bool   `json:"isOpen"`
	UserID int    `json:"userId"`
}

// Validate validates the update post request fields.
func (r *UpdatePostRequest) Validate() error {
	if err := validateID(r.ID); err != nil {
		return err
	}
	if r.Title == "" {
		return MissingField("title")
	}
	if r.UserID <= 0 {
		return MissingField("userId")
	}
	return nil
}

// PatchPostRequest is a request to change a post's title.
type PatchPostRequest struct {
	ID    int    `path:"id" json:"-"`
	Title string `json:"title"`
}

// Validate validates the patch post request fields.
func (r *PatchPostRequest) Validate() error {
	if err := validateID(r.ID); err != nil {
		return err
	}
	if r.Title == "" {
		return MissingField("title")
	}
	return nil
}

// DeletePostRequest is a request to delete a post.
type DeletePostRequest struct {
	ID int `path:"id" json:"-"`
}

// Validate validates the delete post request fields.
func (r *DeletePostRequest) Validate() error {
	return validateID(r.ID)
}

// ListPostCommentsRequest is a request to list the comments on a post.
type ListPostCommentsRequest struct {
	ID int `path:"id" json:"-"`
}

// Validate validates the list post comments request fields.
func (r *ListPostCommentsRequest) Validate() error {
	return validateID(r.ID)
}

// --- Comments ---

// ListCommentsRequest is a request to list all comments.
type ListCommentsRequest struct{}

// Validate is a no-op for ListCommentsRequest.
func (r *ListCommentsRequest) Validate() error {
	return nil
}

// CreateCommentRequest is a request to create a comment.
type CreateCommentRequest struct {
	Body   string `json:"body"`
	UserID int    `json:"userId"`
	PostID int    `json:"postId"`
}

// Validate validates the create comment request fields.
func (r *CreateCommentRequest) Validate() error {
	if r.Body == "" {
		return MissingField("body")
	}
	if r.UserID <= 0 {
		return MissingField("userId")
	}
	if r.PostID <= 0 {
		return MissingField("postId")
	}
	return nil
}

// GetCommentRequest is a request to get one comment.
type GetCommentRequest struct {
	ID int `path:"id" json:"-"`
}

// Validate validates the get comment request fields.
func (r *GetCommentRequest) Validate() error {
	return validateID(r.ID)
}

// UpdateCommentRequest is a request to replace a comment.
type UpdateCommentRequest struct {
	ID     int    `path:"id" json:"-"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
	PostID int    `json:"postId"`
}

// Validate validates the update comment request fields.
func (r *UpdateCommentRequest) Validate() error {
	if err := validateID(r.ID); err != nil {
		return err
	}
	if r.Body == "" {
		return MissingField("body")
	}
	if r.UserID <= 0 {
		return MissingField("userId")
	}
	if r.PostID <= 0 {
		return MissingField("postId")
	}
	return nil
}

// PatchCommentRequest is a request to change a comment's body.
type PatchCommentRequest struct {
	ID   int    `path:"id" json:"-"`
	Body string `json:"body"`
}

// Validate validates the patch comment request fields.
func (r *PatchCommentRequest) Validate() error {
	if err := validateID(r.ID); err != nil {
		return err
	}
	if r.Body == "" {
		return MissingField("body")
	}
	return nil
}

// DeleteCommentRequest is a request to delete a comment.
type DeleteCommentRequest struct {
	ID int `path:"id" json:"-"`
}

// Validate validates the delete comment request fields.
func (r *DeleteCommentRequest) Validate() error {
	return validateID(r.ID)
}

// --- Schema and history ---

// GetSchemaRequest is a request for the JSON Schema of a table's rows.
type GetSchemaRequest struct {
	Table string `path:"table" json:"-"`
}

// Validate validates the get schema request fields.
func (r *GetSchemaRequest) Validate() error {
	if r.Table == "" {
		return MissingField("table")
	}
	return nil
}

// ListHistoryRequest is a request for recent changes to the tables.
type ListHistoryRequest struct {
	Table string `query:"table" json:"-"`
	Limit int    `query:"limit" json:"-"`
}

// Validate validates the list history request fields.
func (r *ListHistoryRequest) Validate() error {
	if r.Limit < 0 {
		return InvalidField("limit", "must be non-negative")
	}
	return nil
}
