package dto

// HealthResponse is the server status.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// UserResponse is a user.
type UserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ListUsersResponse is a list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// PostResponse is a post.
type PostResponse struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	IsOpen bool   `json:"isOpen"`
	UserID int    `json:"userId"`
}

// ListPostsResponse is a list of posts.
type ListPostsResponse struct {
	Posts []PostResponse `json:"posts"`
}

// CommentResponse is a comment.
type CommentResponse struct {
	ID     int    `json:"id"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
	PostID int    `json:"postId"`
}

// ListCommentsResponse is a list of comments.
type ListCommentsResponse struct {
	Comments []CommentResponse `json:"comments"`
}

// CommitResponse is one recorded change to the tables.
type CommitResponse struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Email   string `json:"email"`
	Date    string `json:"date"`
}

// ListHistoryResponse is a list of changes, newest first.
type ListHistoryResponse struct {
	Commits []CommitResponse `json:"commits"`
}
