package blog

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/maruel/blogdb/internal/jsonstore"
)

func openStores(t *testing.T) *Stores {
	t.Helper()
	s, err := OpenFileStores(filepath.Join(t.TempDir(), "Data"), FileNames{}, nil)
	if err != nil {
		t.Fatalf("OpenFileStores failed: %v", err)
	}
	return s
}

func TestOpenFileStores(t *testing.T) {
	t.Run("default files", func(t *testing.T) {
		s := openStores(t)
		want := map[string]string{"users": "users.json", "posts": "posts.json", "comments": "comments.json"}
		if len(s.Files) != len(want) {
			t.Fatalf("Files = %v, want 3 entries", s.Files)
		}
		for table, path := range s.Files {
			if got := filepath.Base(path); got != want[table] {
				t.Errorf("Files[%s] = %q, want %q", table, got, want[table])
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("table file missing: %v", err)
			}
		}
	})

	t.Run("seeded", func(t *testing.T) {
		s := openStores(t)
		users, err := s.Users.All()
		if err != nil {
			t.Fatal(err)
		}
		var names []string
		for _, u := range users {
			names = append(names, u.Username)
		}
		if !slices.Equal(names, []string{"alice", "bob", "carol"}) {
			t.Errorf("usernames = %v, want [alice bob carol]", names)
		}
		posts, _ := s.Posts.All()
		if len(posts) != 2 || posts[0].Title != "Hello World" || posts[1].UserID != 2 {
			t.Errorf("posts = %+v", posts)
		}
		comments, _ := s.Comments.All()
		if len(comments) != 2 || comments[1].Body != "Welcome!" || comments[1].UserID != 3 {
			t.Errorf("comments = %+v", comments)
		}
	})

	t.Run("custom file names", func(t *testing.T) {
		dir := t.TempDir()
		s, err := OpenFileStores(dir, FileNames{Users: "people.json"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got := s.Files["users"]; got != filepath.Join(dir, "people.json") {
			t.Errorf("Files[users] = %q, want people.json", got)
		}
	})

	t.Run("hook", func(t *testing.T) {
		var mu sync.Mutex
		seen := map[string]jsonstore.Op{}
		hook := func(table string, op jsonstore.Op, _ time.Duration, _ error) {
			mu.Lock()
			defer mu.Unlock()
			seen[table] = op
		}
		s, err := OpenFileStores(t.TempDir(), FileNames{}, hook)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = s.Users.All()
		_, _ = s.Posts.Get(1)
		_, _ = s.Comments.Exists("Welcome!")
		want := map[string]jsonstore.Op{"users": jsonstore.OpList, "posts": jsonstore.OpGet, "comments": jsonstore.OpExists}
		for table, op := range want {
			if seen[table] != op {
				t.Errorf("seen[%s] = %q, want %q", table, seen[table], op)
			}
		}
	})
}

func TestScenarios(t *testing.T) {
	for name, open := range map[string]func(t *testing.T) *Stores{
		"file": openStores,
		"memory": func(t *testing.T) *Stores {
			s, err := NewMemoryStores(nil)
			if err != nil {
				t.Fatal(err)
			}
			return s
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Run("patch password", func(t *testing.T) {
				s := open(t)
				u, err := s.Users.Patch(1, "newpass")
				if err != nil {
					t.Fatal(err)
				}
				if u.Username != "alice" || u.Password != "newpass" {
					t.Errorf("Patch(1) = %+v, want alice/newpass", u)
				}
				if _, err := s.Users.Patch(99, "x"); !errors.Is(err, jsonstore.ErrNotFound) {
					t.Errorf("Patch(99) error = %v, want ErrNotFound", err)
				}
			})

			t.Run("add user", func(t *testing.T) {
				s := open(t)
				u, err := s.Users.Add(&User{Username: "dora"})
				if err != nil {
					t.Fatal(err)
				}
				if u.ID != 4 {
					t.Errorf("ID = %d, want 4", u.ID)
				}
			})

			t.Run("delete user", func(t *testing.T) {
				s := open(t)
				if _, err := s.Users.Delete(2); err != nil {
					t.Fatal(err)
				}
				users, _ := s.Users.All()
				if len(users) != 2 || users[0].ID != 1 || users[1].ID != 3 {
					t.Errorf("users = %+v, want ids 1 and 3", users)
				}
			})

			t.Run("patch title and body", func(t *testing.T) {
				s := open(t)
				p, err := s.Posts.Patch(2, "Renamed")
				if err != nil || p.Title != "Renamed" || p.Body != "More content here" {
					t.Errorf("Posts.Patch(2) = %+v, %v", p, err)
				}
				c, err := s.Comments.Patch(1, "Edited")
				if err != nil || c.Body != "Edited" || c.PostID != 1 {
					t.Errorf("Comments.Patch(1) = %+v, %v", c, err)
				}
			})

			t.Run("exists", func(t *testing.T) {
				s := open(t)
				tests := []struct {
					name  string
					check func(string) (bool, error)
					value string
					want  bool
				}{
					{"username", s.Users.Exists, "bob", true},
					{"password is not unique field", s.Users.Exists, "secret", false},
					{"title", s.Posts.Exists, "Second Post", true},
					{"body", s.Comments.Exists, "Nice work!", true},
					{"missing", s.Comments.Exists, "nope", false},
				}
				for _, tt := range tests {
					got, err := tt.check(tt.value)
					if err != nil {
						t.Fatal(err)
					}
					if got != tt.want {
						t.Errorf("%s: Exists(%q) = %v, want %v", tt.name, tt.value, got, tt.want)
					}
				}
			})
		})
	}
}

func TestCheckReferences(t *testing.T) {
	s, err := NewMemoryStores(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckAuthor(s.Users, 1); err != nil {
		t.Errorf("CheckAuthor(1) = %v, want nil", err)
	}
	if err := CheckAuthor(s.Users, 42); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("CheckAuthor(42) = %v, want ErrUnknownUser", err)
	}
	if err := CheckPost(s.Posts, 2); err != nil {
		t.Errorf("CheckPost(2) = %v, want nil", err)
	}
	if err := CheckPost(s.Posts, 0); !errors.Is(err, ErrUnknownPost) {
		t.Errorf("CheckPost(0) = %v, want ErrUnknownPost", err)
	}
}

func TestQueries(t *testing.T) {
	s, err := NewMemoryStores(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Comments.Add(&Comment{Body: "Late", UserID: 1, PostID: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Comments.Add(&Comment{Body: "Again", UserID: 1, PostID: 1}); err != nil {
		t.Fatal(err)
	}

	comments, err := CommentsForPost(s.Comments, 1)
	if err != nil {
		t.Fatal(err)
	}
	var got []int
	for _, c := range comments {
		got = append(got, c.ID)
	}
	if !slices.Equal(got, []int{1, 2, 4}) {
		t.Errorf("CommentsForPost(1) ids = %v, want [1 2 4]", got)
	}

	posts, err := PostsByUser(s.Posts, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Title != "Second Post" {
		t.Errorf("PostsByUser(2) = %+v", posts)
	}

	names, err := Usernames(s.Users)
	if err != nil {
		t.Fatal(err)
	}
	if names[3] != "carol" || len(names) != 3 {
		t.Errorf("Usernames = %v", names)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		v       interface{ Validate() error }
		wantErr bool
	}{
		{"user ok", &User{Username: "a", Password: "b"}, false},
		{"user no name", &User{Password: "b"}, true},
		{"user no password", &User{Username: "a"}, true},
		{"post ok", &Post{Title: "t", UserID: 1}, false},
		{"post no title", &Post{UserID: 1}, true},
		{"post no author", &Post{Title: "t"}, true},
		{"comment ok", &Comment{Body: "b", UserID: 1, PostID: 1}, false},
		{"comment no body", &Comment{UserID: 1, PostID: 1}, true},
		{"comment no post", &Comment{Body: "b", UserID: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.v.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
