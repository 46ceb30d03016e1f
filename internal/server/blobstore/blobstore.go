// Package blobstore keeps the raw bytes of accepted submissions. The
// relational store only records metadata; the image itself lives either on
// the local filesystem or in an S3-compatible bucket.
package blobstore

import (
	"context"
	"errors"
)

// ErrForeignLocation is returned by Delete for a location the store did not
// produce.
var ErrForeignLocation = errors.New("location does not belong to this store")

// Store writes content under a name and returns where it ended up.
type Store interface {
	// Put stores data and returns an opaque location. Put never overwrites
	// existing content.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Delete removes content previously returned by Put. Deleting something
	// that is already gone is not an error.
	Delete(ctx context.Context, location string) error
}
