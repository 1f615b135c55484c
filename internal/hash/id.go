// Package hash derives stable 64-bit keys from stream IDs.
package hash

import "github.com/cespare/xxhash/v2"

// StreamKey computes the xxHash64 of a stream ID.
func StreamKey(id string) uint64 {
	return xxhash.Sum64String(id)
}
