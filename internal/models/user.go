// Package models defines the records kept in the user directory.
package models

import "github.com/dmitrijs2005/userdir/internal/timex"

// UserRecord is one entry of the directory. Field order matches the stored
// JSON layout.
type UserRecord struct {
	// ID is the creation time in Unix milliseconds. Two records created in
	// the same millisecond share an ID.
	ID int64 `json:"id"`

	// Email is the identity key, unique across the directory.
	Email string `json:"email"`

	FullName string `json:"fullname"`

	// Password is stored as given, without hashing.
	Password string `json:"password"`

	// Role is a caller supplied classification such as "buyer" or "seller".
	Role string `json:"role"`

	CreatedAt timex.ISOTime `json:"createdAt"`
}
