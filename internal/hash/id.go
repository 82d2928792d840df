// Package hash provides the 64-bit identity hash used for cookie keys.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given cookie key.
func ID(key string) uint64 {
	return xxhash.Sum64String(key)
}
