package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/config"
	"github.com/maruel/blogdb/internal/history"
	"github.com/maruel/blogdb/internal/server/dto"
	"github.com/maruel/blogdb/internal/server/handlers"
	"github.com/maruel/blogdb/internal/server/ratelimit"
)

type testEnv struct {
	server *httptest.Server
	stores *blog.Stores
	hist   *history.Repo
}

func setupFileEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()
	dir := t.TempDir()
	d := config.Default()
	stores, err := blog.OpenFileStores(dir, blog.FileNames{Users: d.Tables.Users, Posts: d.Tables.Posts, Comments: d.Tables.Comments}, nil)
	if err != nil {
		t.Fatalf("OpenFileStores: %v", err)
	}
	hist, err := history.Open(t.Context(), dir, history.Author{Name: "test", Email: "test@example.com"})
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	return newEnv(t, stores, hist, cfg)
}

func setupMemoryEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()
	stores, err := blog.NewMemoryStores(nil)
	if err != nil {
		t.Fatalf("NewMemoryStores: %v", err)
	}
	return newEnv(t, stores, nil, cfg)
}

func newEnv(t *testing.T, stores *blog.Stores, hist *history.Repo, cfg *Config) *testEnv {
	srv := httptest.NewServer(NewRouter(handlers.NewServices(stores, hist), cfg))
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, stores: stores, hist: hist}
}

// doJSON sends body as JSON and decodes the response into response if not nil.
func (e *testEnv) doJSON(t *testing.T, method, path string, body, response any) int {
	t.Helper()
	resp := e.do(t, method, path, body)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if response != nil {
		if err := json.Unmarshal(data, response); err != nil {
			t.Fatalf("%s %s: failed to decode %q: %v", method, path, data, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, e.server.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestIntegration(t *testing.T) {
	envs := map[string]func(*testing.T) *testEnv{
		"file":   func(t *testing.T) *testEnv { return setupFileEnv(t, nil) },
		"memory": func(t *testing.T) *testEnv { return setupMemoryEnv(t, nil) },
	}
	for name, setup := range envs {
		t.Run(name, func(t *testing.T) {
			e := setup(t)

			t.Run("health", func(t *testing.T) {
				var got dto.HealthResponse
				if code := e.doJSON(t, "GET", "/api/v1/health", nil, &got); code != http.StatusOK {
					t.Fatalf("status = %d, want 200", code)
				}
				if got.Status != "ok" {
					t.Errorf("Status = %q, want ok", got.Status)
				}
			})

			t.Run("users", func(t *testing.T) {
				var list dto.ListUsersResponse
				if code := e.doJSON(t, "GET", "/api/v1/users", nil, &list); code != http.StatusOK {
					t.Fatalf("status = %d", code)
				}
				if len(list.Users) != 3 || list.Users[0].Username != "alice" {
					t.Fatalf("users = %+v", list.Users)
				}

				var created dto.UserResponse
				code := e.doJSON(t, "POST", "/api/v1/users", dto.CreateUserRequest{Username: "dora", Password: "pw"}, &created)
				if code != http.StatusCreated {
					t.Fatalf("create status = %d, want 201", code)
				}
				if created.ID != 4 {
					t.Errorf("ID = %d, want 4", created.ID)
				}

				var patched dto.UserResponse
				if code := e.doJSON(t, "PATCH", "/api/v1/users/1", map[string]string{"password": "new"}, &patched); code != http.StatusOK {
					t.Fatalf("patch status = %d", code)
				}
				if patched.Username != "alice" || patched.Password != "new" {
					t.Errorf("patched = %+v", patched)
				}

				var updated dto.UserResponse
				if code := e.doJSON(t, "PUT", "/api/v1/users/4", dto.UpdateUserRequest{Username: "dora2", Password: "x"}, &updated); code != http.StatusOK {
					t.Fatalf("update status = %d", code)
				}
				var got dto.UserResponse
				e.doJSON(t, "GET", "/api/v1/users/4", nil, &got)
				if got.Username != "dora2" {
					t.Errorf("Username = %q, want dora2", got.Username)
				}

				var deleted dto.UserResponse
				if code := e.doJSON(t, "DELETE", "/api/v1/users/4", nil, &deleted); code != http.StatusOK {
					t.Fatalf("delete status = %d", code)
				}
				if deleted.Username != "dora2" {
					t.Errorf("deleted = %+v", deleted)
				}
			})

			t.Run("posts", func(t *testing.T) {
				var list dto.ListPostsResponse
				e.doJSON(t, "GET", "/api/v1/posts?userId=1", nil, &list)
				if len(list.Posts) != 1 || list.Posts[0].Title != "Hello World" {
					t.Fatalf("posts = %+v", list.Posts)
				}

				var created dto.PostResponse
				code := e.doJSON(t, "POST", "/api/v1/posts", dto.CreatePostRequest{Title: "Third", Body: "b", UserID: 3}, &created)
				if code != http.StatusCreated || created.ID != 3 {
					t.Fatalf("create = %d %+v", code, created)
				}

				var patched dto.PostResponse
				e.doJSON(t, "PATCH", "/api/v1/posts/3", map[string]string{"title": "Third!"}, &patched)
				if patched.Title != "Third!" || patched.Body != "b" {
					t.Errorf("patched = %+v", patched)
				}

				var comments dto.ListCommentsResponse
				if code := e.doJSON(t, "GET", "/api/v1/posts/1/comments", nil, &comments); code != http.StatusOK {
					t.Fatalf("comments status = %d", code)
				}
				if len(comments.Comments) != 2 || comments.Comments[0].Body != "Nice work!" {
					t.Errorf("comments = %+v", comments.Comments)
				}
				comments = dto.ListCommentsResponse{}
				e.doJSON(t, "GET", "/api/v1/posts/3/comments", nil, &comments)
				if comments.Comments == nil || len(comments.Comments) != 0 {
					t.Errorf("comments = %#v, want empty list", comments.Comments)
				}
			})

			t.Run("comments", func(t *testing.T) {
				var created dto.CommentResponse
				code := e.doJSON(t, "POST", "/api/v1/comments", dto.CreateCommentRequest{Body: "Thanks", UserID: 1, PostID: 2}, &created)
				if code != http.StatusCreated || created.ID != 3 {
					t.Fatalf("create = %d %+v", code, created)
				}
				var patched dto.CommentResponse
				e.doJSON(t, "PATCH", "/api/v1/comments/3", map[string]string{"body": "Thanks!"}, &patched)
				if patched.Body != "Thanks!" || patched.PostID != 2 {
					t.Errorf("patched = %+v", patched)
				}
				if code := e.doJSON(t, "DELETE", "/api/v1/comments/3", nil, nil); code != http.StatusOK {
					t.Errorf("delete status = %d", code)
				}
				if code := e.doJSON(t, "DELETE", "/api/v1/comments/3", nil, nil); code != http.StatusNotFound {
					t.Errorf("second delete status = %d, want 404", code)
				}
			})

			t.Run("schema", func(t *testing.T) {
				var s map[string]any
				if code := e.doJSON(t, "GET", "/api/v1/schema/posts", nil, &s); code != http.StatusOK {
					t.Fatalf("status = %d", code)
				}
				props, _ := s["properties"].(map[string]any)
				if _, ok := props["UserId"]; !ok {
					t.Errorf("properties = %v, want UserId", props)
				}
			})

			t.Run("request id", func(t *testing.T) {
				resp := e.do(t, "GET", "/api/v1/health", nil)
				_ = resp.Body.Close()
				if resp.Header.Get(RequestIDHeader) == "" {
					t.Error("missing request id header")
				}
			})
		})
	}
}

func TestErrors(t *testing.T) {
	e := setupMemoryEnv(t, nil)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   dto.ErrorCode
	}{
		{"duplicate username", "POST", "/api/v1/users", dto.CreateUserRequest{Username: "alice", Password: "x"}, http.StatusConflict, dto.ErrorCodeConflict},
		{"duplicate title", "POST", "/api/v1/posts", dto.CreatePostRequest{Title: "Hello World", UserID: 1}, http.StatusConflict, dto.ErrorCodeConflict},
		{"rename to taken title", "PATCH", "/api/v1/posts/2", map[string]string{"title": "Hello World"}, http.StatusConflict, dto.ErrorCodeConflict},
		{"missing password", "POST", "/api/v1/users", map[string]string{"username": "x"}, http.StatusBadRequest, dto.ErrorCodeMissingField},
		{"unknown field", "POST", "/api/v1/users", `{"username":"x","password":"y","admin":true}`, http.StatusBadRequest, dto.ErrorCodeInvalidFormat},
		{"bad json", "POST", "/api/v1/users", `{`, http.StatusBadRequest, dto.ErrorCodeInvalidFormat},
		{"absent user", "GET", "/api/v1/users/99", nil, http.StatusNotFound, dto.ErrorCodeNotFound},
		{"non numeric id", "GET", "/api/v1/users/abc", nil, http.StatusBadRequest, dto.ErrorCodeInvalidFormat},
		{"zero id", "GET", "/api/v1/users/0", nil, http.StatusBadRequest, dto.ErrorCodeInvalidFormat},
		{"update absent user", "PUT", "/api/v1/users/99", dto.UpdateUserRequest{Username: "z", Password: "z"}, http.StatusNotFound, dto.ErrorCodeNotFound},
		{"patch absent post", "PATCH", "/api/v1/posts/99", map[string]string{"title": "t"}, http.StatusNotFound, dto.ErrorCodeNotFound},
		{"unknown author", "POST", "/api/v1/posts", dto.CreatePostRequest{Title: "t", UserID: 99}, http.StatusBadRequest, dto.ErrorCodeUnknownReference},
		{"unknown post", "POST", "/api/v1/comments", dto.CreateCommentRequest{Body: "b", UserID: 1, PostID: 99}, http.StatusBadRequest, dto.ErrorCodeUnknownReference},
		{"comments of absent post", "GET", "/api/v1/posts/99/comments", nil, http.StatusNotFound, dto.ErrorCodeNotFound},
		{"unknown schema", "GET", "/api/v1/schema/tags", nil, http.StatusNotFound, dto.ErrorCodeNotFound},
		{"history disabled", "GET", "/api/v1/history", nil, http.StatusNotImplemented, dto.ErrorCodeNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got dto.ErrorResponse
			if code := e.doJSON(t, tt.method, tt.path, tt.body, &got); code != tt.status {
				t.Errorf("status = %d, want %d", code, tt.status)
			}
			if got.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Error.Code, tt.code)
			}
		})
	}
}

func TestStorageErrorHidesDetails(t *testing.T) {
	e := setupFileEnv(t, nil)
	path := e.stores.Files["users"]
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	var got dto.ErrorResponse
	if code := e.doJSON(t, "GET", "/api/v1/users", nil, &got); code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", code)
	}
	if got.Error.Code != dto.ErrorCodeStorageError {
		t.Errorf("code = %q, want %q", got.Error.Code, dto.ErrorCodeStorageError)
	}
	if got.Error.Message != "Storage error" {
		t.Errorf("message = %q, want %q", got.Error.Message, "Storage error")
	}
	if strings.Contains(got.Error.Message, filepath.Base(path)) {
		t.Errorf("message %q leaks the table file", got.Error.Message)
	}
}

func TestHistory(t *testing.T) {
	e := setupFileEnv(t, nil)
	if code := e.doJSON(t, "PATCH", "/api/v1/users/1", map[string]string{"password": "changed"}, nil); code != http.StatusOK {
		t.Fatalf("patch status = %d", code)
	}

	var got dto.ListHistoryResponse
	if code := e.doJSON(t, "GET", "/api/v1/history?table=users&limit=10", nil, &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got.Commits) != 2 {
		t.Fatalf("commits = %+v, want 2", got.Commits)
	}
	if got.Commits[0].Message != "PATCH /api/v1/users/1" {
		t.Errorf("Message = %q", got.Commits[0].Message)
	}
	if got.Commits[0].Author != "test" {
		t.Errorf("Author = %q", got.Commits[0].Author)
	}

	// A failed mutation leaves nothing to commit.
	e.doJSON(t, "DELETE", "/api/v1/users/99", nil, nil)
	var all dto.ListHistoryResponse
	e.doJSON(t, "GET", "/api/v1/history", nil, &all)
	if len(all.Commits) != 2 {
		t.Errorf("commits = %d, want 2", len(all.Commits))
	}

	// Posts were not touched since the initial commit.
	var posts dto.ListHistoryResponse
	e.doJSON(t, "GET", "/api/v1/history?table=posts", nil, &posts)
	if len(posts.Commits) != 1 {
		t.Errorf("posts commits = %d, want 1", len(posts.Commits))
	}

	var errResp dto.ErrorResponse
	if code := e.doJSON(t, "GET", "/api/v1/history?table=tags", nil, &errResp); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestWriteRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute, 1)
	t.Cleanup(limiter.Close)
	e := setupMemoryEnv(t, &Config{WriteLimiter: limiter})

	if code := e.doJSON(t, "PATCH", "/api/v1/users/1", map[string]string{"password": "a"}, nil); code != http.StatusOK {
		t.Fatalf("first status = %d", code)
	}
	resp := e.do(t, "PATCH", "/api/v1/users/1", map[string]string{"password": "b"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	// Reads are not limited.
	if code := e.doJSON(t, "GET", "/api/v1/users/1", nil, nil); code != http.StatusOK {
		t.Errorf("read status = %d", code)
	}
	u, err := e.stores.Users.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if u.Password != "a" {
		t.Errorf("Password = %q, want a", u.Password)
	}
}

func TestBodyLimit(t *testing.T) {
	e := setupMemoryEnv(t, &Config{MaxRequestBodyBytes: 32})
	var got dto.ErrorResponse
	body := dto.CreateUserRequest{Username: strings.Repeat("x", 64), Password: "p"}
	if code := e.doJSON(t, "POST", "/api/v1/users", body, &got); code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", code)
	}
	if got.Error.Code != dto.ErrorCodePayloadTooLarge {
		t.Errorf("code = %q", got.Error.Code)
	}
}
