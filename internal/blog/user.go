package blog

import "github.com/maruel/blogdb/internal/jsonstore"

// User is an account.
type User struct {
	ID       int    `json:"Id" jsonschema:"description=Unique user identifier"`
	Username string `json:"Username" jsonschema:"description=Unique login name"`
	Password string `json:"Password" jsonschema:"description=Password stored as entered"`
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// GetID returns the user's ID.
func (u *User) GetID() int {
	return u.ID
}

// SetID sets the user's ID.
func (u *User) SetID(id int) {
	u.ID = id
}

// Validate checks that the required fields are set.
func (u *User) Validate() error {
	if u.Username == "" {
		return errUsernameRequired
	}
	if u.Password == "" {
		return errPasswordRequired
	}
	return nil
}

// UserTable returns the configuration of the users table.
func UserTable() jsonstore.Config[*User] {
	return jsonstore.Config[*User]{
		Name:     "users",
		FileName: "users.json",
		Seed: func() []*User {
			return []*User{
				{ID: 1, Username: "alice", Password: "secret"},
				{ID: 2, Username: "bob", Password: "12345678"},
				{ID: 3, Username: "carol", Password: "qwerty"},
			}
		},
		Unique: func(u *User) string { return u.Username },
		Patch:  func(u *User, v string) { u.Password = v },
	}
}
