package domain

// Identity is a self-asserted (userId, username) pair. It is created once
// per device and immutable afterwards; rooms and messages store snapshots
// of it rather than live references.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Valid reports whether both fields are present. Anything with a non-empty
// user id and username is accepted as an identity.
func (i Identity) Valid() bool {
	return i.UserID != "" && i.Username != ""
}
