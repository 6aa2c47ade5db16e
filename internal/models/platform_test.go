package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input    string
		expected Platform
	}{
		{"groupme", PlatformGroupMe},
		{"GroupMe", PlatformGroupMe},
		{" teams ", PlatformTeams},
		{"slack", PlatformSlack},
		{"signal", PlatformSignal},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePlatform(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}

	for _, bad := range []string{"", "discord", "group me"} {
		_, err := ParsePlatform(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
