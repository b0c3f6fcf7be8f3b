// Package shared provides helpers for random material and secure memory
// wiping.
package shared

import "crypto/rand"

// GenerateRandByteArray returns size bytes read from crypto/rand.
//
// Example:
//
//	salt, err := GenerateRandByteArray(16)
//	if err != nil {
//	    return err
//	}
//
// It returns an error if the random number generator fails.
func GenerateRandByteArray(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as passphrases or
// cryptographic keys from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
