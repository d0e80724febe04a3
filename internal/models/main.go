// Package models defines the core data structures for identities, media
// entries and catalog filters shared by the client and the reference server.
package models

// Identity is the authenticated user as issued by the remote API.
type Identity struct {
	// ID is the server-assigned unique identifier.
	ID int64 `json:"id"`
	// Username is the unique login name.
	Username string `json:"username"`
}

// Valid reports whether the identity carries a server-assigned id and a name.
func (i Identity) Valid() bool {
	return i.ID > 0 && i.Username != ""
}

// Credentials is the transient login/register input. It is never persisted.
type Credentials struct {
	// Username is the login name.
	Username string `json:"username"`
	// Password is the plain text password, sent only over the wire.
	Password string `json:"password"`
}

// User represents a stored account on the reference server.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Username is the login name chosen by the user.
	Username string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}

// Identity projects the stored user onto the wire identity.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}
