package security

import (
	"fmt"
	"regexp"
	"strings"
)

// blockedGlobPatterns match glob patterns that would scope a rule onto
// secret material, key stores, or version-control internals.
var blockedGlobPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|/)\.env(\.|$|/)`),
	regexp.MustCompile(`(?i)secret|credential`),
	regexp.MustCompile(`(?i)id_(rsa|dsa|ecdsa|ed25519)`),
	regexp.MustCompile(`(?i)(^|/)\.(ssh|gnupg|aws)(/|$)`),
	regexp.MustCompile(`(?i)(^|/)\.git(/|$)`),
	regexp.MustCompile(`(?i)\.(pem|key|pfx|p12)$`),
	regexp.MustCompile(`(?i)(^|/)(passwd|shadow)$`),
	regexp.MustCompile(`\.\.`),
}

// ValidateGlob rejects glob patterns that match sensitive paths.
// Applied to every glob before it is written into any per-package
// scoping configuration.
func ValidateGlob(pattern string) Result {
	if strings.TrimSpace(pattern) == "" {
		return fail("glob pattern is empty")
	}
	if strings.ContainsRune(pattern, 0) {
		return fail("glob pattern contains a null byte")
	}

	for _, blocked := range blockedGlobPatterns {
		if blocked.MatchString(pattern) {
			return fail(fmt.Sprintf("glob %q matches sensitive path signature %q", pattern, blocked.String()))
		}
	}

	return ok()
}
