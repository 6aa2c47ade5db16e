package models

import (
	"fmt"
	"strings"
)

// Platform identifies an external messaging platform.
type Platform string

const (
	PlatformGroupMe Platform = "groupme"
	PlatformTeams   Platform = "teams"
	// Reserved, no client implementation yet.
	PlatformSlack  Platform = "slack"
	PlatformSignal Platform = "signal"
)

// ParsePlatform normalizes a platform name from a route param or payload
// and rejects names outside the known set.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformGroupMe, PlatformTeams, PlatformSlack, PlatformSignal:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

func (p Platform) String() string {
	return string(p)
}
