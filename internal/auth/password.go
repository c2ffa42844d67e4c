package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashing parameters. These are fixed by the stored-secret format:
// base64(16-byte salt || 20-byte PBKDF2-SHA256 key, 10k iterations).
const (
	saltLength = 16
	keyLength  = 20
	iterations = 10000
)

// HashPassword derives a salted hash from a plain text password.
// Two calls with the same password produce different secrets.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	combined := make([]byte, 0, saltLength+keyLength)
	combined = append(combined, salt...)
	combined = append(combined, key...)

	return base64.StdEncoding.EncodeToString(combined), nil
}

// VerifyPassword checks a plain text password against a stored secret.
// The comparison is constant-time.
func VerifyPassword(password, secret string) bool {
	combined, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(combined) != saltLength+keyLength {
		return false
	}

	salt := combined[:saltLength]
	stored := combined[saltLength:]

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	return subtle.ConstantTimeCompare(stored, key) == 1
}
