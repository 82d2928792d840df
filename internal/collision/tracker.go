// Package collision tracks cookie keys and detects identity hash collisions
// while the event graph is being built.
package collision

import (
	"github.com/charsyam/traildb/errs"
)

// Tracker maps cookie hashes back to their keys so that two distinct keys
// hashing to the same 64-bit identity are caught at build time instead of
// silently merging two trails.
type Tracker struct {
	cookieKeys map[uint64]string
	count      int
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		cookieKeys: make(map[uint64]string),
	}
}

// Track records a cookie key with its hash.
//
// Returns ErrInvalidCookie for an empty key and ErrCookieCollision when a
// different key already claimed the hash. Re-adding the same key is not an
// error; events for an existing cookie extend its trail.
func (t *Tracker) Track(key string, hash uint64) (seen bool, err error) {
	if key == "" {
		return false, errs.ErrInvalidCookie
	}

	existing, exists := t.cookieKeys[hash]
	if exists {
		if existing != key {
			return false, errs.ErrCookieCollision
		}

		return true, nil
	}

	t.cookieKeys[hash] = key
	t.count++

	return false, nil
}

// Count returns the number of distinct cookies tracked.
func (t *Tracker) Count() int {
	return t.count
}

// Reset clears all tracked cookies, keeping map capacity for reuse.
func (t *Tracker) Reset() {
	for k := range t.cookieKeys {
		delete(t.cookieKeys, k)
	}
	t.count = 0
}
