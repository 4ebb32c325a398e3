package security

import (
	"fmt"
	"regexp"
	"strings"
)

// SensitivePattern describes a pattern used to flag likely secret
// material inside fetched package content.
type SensitivePattern struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
}

// DefaultSensitivePatterns returns the built-in secret detection
// patterns. Detection is advisory: a hit produces a warning, never an
// install failure, because rule text legitimately discusses keys and
// tokens.
func DefaultSensitivePatterns() []SensitivePattern {
	return []SensitivePattern{
		{
			Name:        "API Key",
			Pattern:     regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*['"]?[a-zA-Z0-9_\-]{16,}['"]?`),
			Description: "API key pattern detected",
		},
		{
			Name:        "AWS Access Key",
			Pattern:     regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
			Description: "AWS access key detected",
		},
		{
			Name:        "GitHub Token",
			Pattern:     regexp.MustCompile(`ghp_[a-zA-Z0-9]{36,}`),
			Description: "GitHub personal access token detected",
		},
		{
			Name:        "Private Key",
			Pattern:     regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE\s+KEY-----`),
			Description: "Private key detected",
		},
		{
			Name:        "Bearer Token",
			Pattern:     regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-.]{20,}`),
			Description: "Bearer token detected",
		},
		{
			Name:        "Database Connection String",
			Pattern:     regexp.MustCompile(`(?i)(postgres|mysql|mongodb|redis)://[^:]+:[^@]+@`),
			Description: "Database connection string with credentials detected",
		},
	}
}

// Detector flags sensitive data in package content.
type Detector struct {
	patterns []SensitivePattern
}

// NewDetector creates a detector with the given patterns, or the
// defaults when patterns is empty.
func NewDetector(patterns []SensitivePattern) *Detector {
	if len(patterns) == 0 {
		patterns = DefaultSensitivePatterns()
	}
	return &Detector{patterns: patterns}
}

// ScanContent returns one warning per pattern hit, with the 1-indexed
// line number. Commented lines are skipped as likely documentation.
func (d *Detector) ScanContent(content string) []string {
	if content == "" {
		return nil
	}

	var warnings []string
	for lineNum, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}

		for _, pattern := range d.patterns {
			if pattern.Pattern.MatchString(line) {
				warnings = append(warnings, fmt.Sprintf("%s at line %d", pattern.Description, lineNum+1))
			}
		}
	}
	return warnings
}
