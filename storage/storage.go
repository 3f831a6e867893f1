// Package storage defines the flat durable key-value store the session is mirrored into.
package storage

import apperrors "github.com/jrsteele09/go-campus-session/internal/errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = apperrors.ErrNotFound

// KV is a synchronous string-keyed store. Only single-key operations are atomic.
type KV interface {
	// Get returns the value for key, or ErrNotFound
	Get(key string) (string, error)

	// Set stores value under key
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error
	Remove(key string) error
}
