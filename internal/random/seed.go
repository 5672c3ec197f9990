// Package random provides seeds for the adherence gate roller.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed returns a non-zero seed from crypto/rand. Zero is reserved as
// "pick one for me", so a logged seed can always be replayed.
func NewSeed() (int64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		if seed := int64(binary.LittleEndian.Uint64(b[:])); seed != 0 {
			return seed, nil
		}
	}
}

// ResolveSeed returns fixed when it is non-zero, otherwise a fresh seed.
func ResolveSeed(fixed int64) (int64, error) {
	if fixed != 0 {
		return fixed, nil
	}
	return NewSeed()
}
