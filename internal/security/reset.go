package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateResetToken returns an opaque URL-safe token from the system CSPRNG.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
