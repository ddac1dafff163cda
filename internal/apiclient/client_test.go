package apiclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/jsonstore"
	"github.com/maruel/blogdb/internal/server"
	"github.com/maruel/blogdb/internal/server/dto"
	"github.com/maruel/blogdb/internal/server/handlers"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	stores, err := blog.NewMemoryStores(nil)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(server.NewRouter(handlers.NewServices(stores, nil), &server.Config{Version: "test"}))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
}

func TestHealth(t *testing.T) {
	c := newTestClient(t)
	got, err := c.Health(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "ok" || got.Version != "test" {
		t.Errorf("Health() = %+v", got)
	}
}

func TestUsers(t *testing.T) {
	var users blog.UserRepository = newTestClient(t).Users()

	all, err := users.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[2].Username != "carol" {
		t.Fatalf("All() = %v", all)
	}
	u, err := users.Add(&blog.User{ID: 99, Username: "dora", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 4 {
		t.Errorf("ID = %d, want 4", u.ID)
	}
	for _, name := range []string{"alice", "dora"} {
		if ok, err := users.Exists(name); err != nil || !ok {
			t.Errorf("Exists(%q) = %v, %v", name, ok, err)
		}
	}
	if ok, err := users.Exists("zed"); err != nil || ok {
		t.Errorf("Exists(zed) = %v, %v", ok, err)
	}
	p, err := users.Patch(1, "changed")
	if err != nil {
		t.Fatal(err)
	}
	if p.Password != "changed" || p.Username != "alice" {
		t.Errorf("Patch() = %+v", p)
	}
	if err := users.Update(&blog.User{ID: 2, Username: "bobby", Password: "x"}); err != nil {
		t.Fatal(err)
	}
	got, err := users.Get(2)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "bobby" {
		t.Errorf("Username = %q, want bobby", got.Username)
	}
	if _, err := users.Delete(2); err != nil {
		t.Fatal(err)
	}
	if _, err := users.Get(2); !errors.Is(err, jsonstore.ErrNotFound) {
		t.Errorf("Get(2) = %v, want ErrNotFound", err)
	}
	if err := users.Update(&blog.User{ID: 2, Username: "b", Password: "x"}); !errors.Is(err, jsonstore.ErrNotFound) {
		t.Errorf("Update(2) = %v, want ErrNotFound", err)
	}
}

func TestPostsAndComments(t *testing.T) {
	c := newTestClient(t)
	posts := c.Posts()
	comments := c.Comments()

	if _, err := posts.Add(&blog.Post{Title: "x", UserID: 42}); !errors.Is(err, blog.ErrUnknownUser) {
		t.Errorf("Add() = %v, want ErrUnknownUser", err)
	}
	if _, err := comments.Add(&blog.Comment{Body: "x", UserID: 1, PostID: 42}); !errors.Is(err, blog.ErrUnknownPost) {
		t.Errorf("Add() = %v, want ErrUnknownPost", err)
	}

	byUser, err := posts.ByUser(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(byUser) != 1 || byUser[0].Title != "Second Post" {
		t.Errorf("ByUser(2) = %v", byUser)
	}
	forPost, err := comments.ForPost(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(forPost) != 2 {
		t.Errorf("ForPost(1) = %v", forPost)
	}
	// The client-side helpers give the same answer.
	viaAll, err := blog.CommentsForPost(comments, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(viaAll) != len(forPost) || viaAll[0].ID != forPost[0].ID {
		t.Errorf("CommentsForPost() = %v, want %v", viaAll, forPost)
	}
}

func TestError(t *testing.T) {
	c := newTestClient(t)
	err := c.do(t.Context(), http.MethodGet, "/nowhere", nil, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "" {
		t.Errorf("err = %+v", apiErr)
	}
	if errors.Is(err, jsonstore.ErrNotFound) {
		t.Error("an unknown route is not a missing row")
	}

	_, err = c.Users().Add(&blog.User{Username: "alice", Password: "x"})
	if !errors.As(err, &apiErr) || apiErr.Code != dto.ErrorCodeConflict {
		t.Errorf("Add(alice) = %v, want conflict", err)
	}
}
