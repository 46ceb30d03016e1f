// Package models defines server-side records persisted in the database.
package models

import "time"

// User is a chat participant known to the service.
//
// Identity is the external chat id (unique and immutable). Suspended only
// ever moves from false to true.
type User struct {
	ID        int64
	Identity  int64
	Suspended bool
	CreatedAt time.Time
}
