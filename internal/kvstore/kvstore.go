// Package kvstore defines the durable key-value slot that cart and session
// state persist to, one profile per store instance.
package kvstore

import "github.com/go-faster/errors"

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store is a small durable key-value port scoped to one user profile.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
