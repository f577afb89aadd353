// Package credentials hashes the two secrets a daybook user holds: the
// account password and the short unlock PIN.
package credentials

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// HashPin returns the SHA-256 digest of pin's UTF-8 bytes, base64 encoded.
// The result is deterministic so it can be stored and compared directly.
func HashPin(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// VerifyPin reports whether pin hashes to digest.
func VerifyPin(pin, digest string) bool {
	if digest == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashPin(pin)), []byte(digest)) == 1
}
