// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is the authorization role attached to a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID       int64  `json:"id"`
	UserName string `json:"username"`
	Email    string `json:"email"`
	// PasswordHash is the bcrypt digest; it never leaves the server.
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserUpdate lists the fields a profile update may change. Nil means
// "leave as is". Password holds the plaintext until the service replaces it
// with a digest.
type UserUpdate struct {
	UserName *string
	Email    *string
	Password *string
	Role     *Role
}

// Empty reports whether no field is set.
func (u UserUpdate) Empty() bool {
	return u.UserName == nil && u.Email == nil && u.Password == nil && u.Role == nil
}

// TouchesProfile reports whether any non-role field is set.
func (u UserUpdate) TouchesProfile() bool {
	return u.UserName != nil || u.Email != nil || u.Password != nil
}

// NewUser is the input for creating an account.
type NewUser struct {
	UserName string
	Email    string
	Password string
}
