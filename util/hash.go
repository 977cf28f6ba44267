package util

import (
	"github.com/spaolacci/murmur3"
)

// Widen64 reduces a key to the unsigned range by plain integer widening.
// Negative keys of signed types wrap, which keeps the mapping deterministic.
func Widen64[K Integer](key K) uint64 {
	return uint64(key)
}

// Spread64 hashes the encoded key with murmur3. Unlike Widen64 it decouples
// the partition index from the key's low bits, so sequential or strided
// keyspaces still spread evenly across partitions.
func Spread64[K Integer](key K) uint64 {
	return murmur3.Sum64(KeyToByte(key))
}
