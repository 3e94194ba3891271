package utils

import (
	"crypto/rand"
	"fmt"
)

// GenerateNumericCode returns a random code of the given length, digits only.
// Used for password-reset and one-time codes.
func GenerateNumericCode(length int) (string, error) {
	const digits = "0123456789"

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	for i := range b {
		b[i] = digits[int(b[i])%len(digits)]
	}
	return string(b), nil
}
