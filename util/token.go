package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// GenerateToken returns n random bytes from a CSPRNG, hex encoded. Used
// for the opaque bearer tokens handed out at register/login.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// HashToken maps a plaintext bearer token to the digest stored in the
// auth_tokens table. SHA-256 is enough here since the input is already
// high-entropy random data, unlike passwords.
func HashToken(t string) string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])
}
