package model

import (
	"fmt"
	"strings"
)

// Platform represents a supported AI coding platform
type Platform string

const (
	ClaudeCode Platform = "claude-code"
	Cursor     Platform = "cursor"
	Codex      Platform = "codex"
)

// IsValid returns true if the platform is recognized
func (p Platform) IsValid() bool {
	switch p {
	case ClaudeCode, Cursor, Codex:
		return true
	default:
		return false
	}
}

// String returns the string representation of the platform.
func (p Platform) String() string {
	return string(p)
}

// AllPlatforms returns all supported platforms
func AllPlatforms() []Platform {
	return []Platform{ClaudeCode, Cursor, Codex}
}

// ParsePlatform converts a string to a Platform, accepting common aliases.
func ParsePlatform(s string) (Platform, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	p := Platform(normalized)
	if p.IsValid() {
		return p, nil
	}

	switch normalized {
	case "claude", "claudecode", "claude_code":
		return ClaudeCode, nil
	default:
		return "", fmt.Errorf("unknown platform %q (valid: claude-code, cursor, codex)", s)
	}
}
