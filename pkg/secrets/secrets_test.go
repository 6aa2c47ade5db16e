package secrets

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWebhookSecret(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		secret, err := NewWebhookSecret()
		require.NoError(t, err)
		assert.Len(t, secret, 43, "32 bytes of raw url-safe base64")
		assert.False(t, seen[secret], "secrets must be unique")
		seen[secret] = true

		// Must survive a query string without escaping.
		assert.Equal(t, secret, url.QueryEscape(secret))
	}
}
