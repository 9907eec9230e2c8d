// Package models holds the client-side data types exchanged with the
// meetscribe API and kept in the local session.
package models

import "encoding/json"

// Role drives navigation and route access.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether r grants access to the admin area.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is an authenticated identity as returned by the API. Token is the
// bearer credential of the current session; it is carried alongside the user
// but is not part of the identity itself.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
	Role       Role   `json:"role"`
	Avatar     string `json:"avatar,omitempty"`
	Token      string `json:"token,omitempty"`
}

// UnmarshalJSON accepts "_id" as an alias for "id"; the admin endpoints
// return raw documents.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	aux := struct {
		*plain
		DocumentID string `json:"_id"`
	}{plain: (*plain)(u)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.DocumentID
	}
	return nil
}

// HasIdentity reports whether u carries the identifier every session needs.
func (u *User) HasIdentity() bool {
	return u != nil && u.ID != ""
}

// Clone returns a shallow copy of u, or nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// WithToken returns a copy of u carrying token.
func (u *User) WithToken(token string) *User {
	c := u.Clone()
	if c != nil {
		c.Token = token
	}
	return c
}
