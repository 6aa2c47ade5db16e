// Package secrets generates the random tokens used to validate inbound
// webhook calls against their channel mapping.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const webhookSecretBytes = 32

// NewWebhookSecret returns a URL-safe cryptographically random token.
func NewWebhookSecret() (string, error) {
	buf := make([]byte, webhookSecretBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("generate webhook secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
