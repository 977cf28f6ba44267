package util

import (
	"encoding/binary"
)

// Integer is the set of key types the map supports: any fixed-width integer
// type, signed or unsigned. Partition selection reduces keys to an unsigned
// range, so the key type must widen to uint64 deterministically.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// KeySize is the encoded size of every key, independent of the key type.
const KeySize = 8

// flipped for signed key types so that negative keys sort below positive ones
const signBit = uint64(1) << 63

// KeyToByte encodes key into an 8-byte big-endian form whose bytewise order
// equals the numeric order of the key type.
func KeyToByte[K Integer](key K) []byte {
	u := uint64(key)
	if isSigned[K]() {
		u ^= signBit
	}
	buf := make([]byte, KeySize)
	binary.BigEndian.PutUint64(buf, u)
	return buf
}

// ByteToKey decodes an 8-byte slice produced by KeyToByte back into a key.
func ByteToKey[K Integer](buf []byte) K {
	u := binary.BigEndian.Uint64(buf)
	if isSigned[K]() {
		u ^= signBit
	}
	return K(u)
}

// isSigned reports whether K is a signed integer type: for signed types the
// complement of zero is negative, for unsigned types it is the maximum value.
func isSigned[K Integer]() bool {
	return ^K(0) < K(0)
}
