/*
Package user contains core data structures related to user identity and session.

It defines the verified identity attached to a connection at handshake time,
used for passing user information both internally and to clients.
*/
package user

// Identity is the verified identity of an account holder.
// It is resolved once per connection and never changes for that connection's lifetime.
type Identity struct {
	// UserID is the database id of the account.
	UserID int64 `json:"id"`

	// Email is the login address of the account.
	Email string `json:"email"`

	// DisplayName is the name shown to friends.
	DisplayName string `json:"display_name"`

	// AvatarURL is a resolved (possibly presigned) avatar link.
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Valid reports whether the identity names a real account.
func (i Identity) Valid() bool {
	return i.UserID > 0
}
