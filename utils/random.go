package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// SecureInt returns a uniform random integer in [lo, hi] drawn from the
// operating system's CSPRNG. Bias is removed by rejection sampling on the
// top of the 64-bit space.
func SecureInt(lo, hi int64) (int64, error) {
	if hi < lo {
		return 0, fmt.Errorf("invalid range [%d, %d]", lo, hi)
	}

	span := uint64(hi-lo) + 1
	if span == 1 {
		return lo, nil
	}

	// Largest multiple of span that fits in a uint64; values at or above
	// it would bias the modulo.
	limit := ^uint64(0) - (^uint64(0) % span)

	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("failed to read random bytes: %w", err)
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return lo + int64(v%span), nil
		}
	}
}
