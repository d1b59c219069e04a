// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the access level assigned to a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account created or refreshed on every successful
// OAuth callback.
//
// The primary external identifier is the OpenID — the unique string the
// identity provider returns for this user on every sign-in. We still keep
// our own auto-incremented integer ID so that analyses can reference users
// without tying foreign keys to a third party's identifier format.
//
// WHY Name/Email string (not *string)?
// The provider may withhold these fields. We use the empty string as the
// zero value rather than a nullable pointer — simpler to work with and safe
// to display. The "was this field supplied?" distinction only matters at
// upsert time, and repository.UserUpsert carries that with pointer fields.
type User struct {
	ID           int64     `json:"id"`
	OpenID       string    `json:"openId"`      // Identity token from the OAuth provider, unique per user
	Name         string    `json:"name"`        // Display name (may be empty)
	Email        string    `json:"email"`       // Primary email (may be empty)
	LoginMethod  string    `json:"loginMethod"` // Provider label, e.g. "oauth"
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}
