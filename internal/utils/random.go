package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomHex returns n random bytes hex-encoded (2n characters).
func RandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateTempPassword returns a short random password in the format
// XXXX-XXXX, suitable for reading out of an email.
func GenerateTempPassword() (string, error) {
	h, err := RandomHex(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", h[0:4], h[4:8]), nil
}
