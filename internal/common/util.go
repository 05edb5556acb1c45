package common

import "crypto/rand"

// GenerateRandByteArray returns n random bytes. It panics if the system
// random source fails, which leaves no safe way to continue.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Used for passwords and key material.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
