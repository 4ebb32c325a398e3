// Package security provides the canonical validation gates that every
// handler must pass before writing to disk: the MCP command
// allowlist/blocklist check, filename and folder-name sanitizers, the
// path-containment check, and the glob blocklist. All checks are pure;
// expected validation failures are reported as values, never panics.
package security

// Result reports the outcome of a validation check.
type Result struct {
	// Valid indicates whether the check passed.
	Valid bool
	// Reason describes the specific rule violated when Valid is false.
	Reason string
}

func ok() Result {
	return Result{Valid: true}
}

func fail(reason string) Result {
	return Result{Valid: false, Reason: reason}
}
