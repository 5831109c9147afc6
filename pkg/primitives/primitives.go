package primitives

import (
	"hash/fnv"
)

// HashBytes returns the FNV-1a hash of a byte slice.
func HashBytes(b []byte) HashCode {
	h := fnv.New64a()
	h.Write(b)
	return HashCode(h.Sum64())
}

// CombineHash mixes value into seed. Combining is order-sensitive.
func CombineHash(seed HashCode, value uint64) HashCode {
	s := uint64(seed)
	s ^= value + 0x9e3779b97f4a7c15 + (s << 6) + (s >> 2)
	return HashCode(s)
}
