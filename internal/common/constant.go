package common

const (
	// DirectoryKey is the slot key holding the serialized user directory.
	DirectoryKey = "users"

	// SessionKey is the slot key holding the token of the logged-in user.
	SessionKey = "session"
)
