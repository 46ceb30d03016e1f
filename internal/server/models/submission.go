package models

import "time"

// Submission is the metadata row of a stored photo. Rows are never updated
// or deleted; Classified is fixed at insert time.
type Submission struct {
	ID         int64
	Name       string
	Digest     string
	OwnerID    int64
	Classified bool
	CreatedAt  time.Time
}
