package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/klauern/cpm/internal/model"
)

// allowedCommands is the fixed set of interpreter and runner names an
// MCP server configuration may invoke. The command must be a bare name;
// paths are rejected before this list is consulted.
var allowedCommands = map[string]bool{
	"npx":     true,
	"node":    true,
	"bunx":    true,
	"bun":     true,
	"deno":    true,
	"uvx":     true,
	"uv":      true,
	"python":  true,
	"python3": true,
	"docker":  true,
}

// blockedArgPatterns match arguments that turn an allowlisted runner
// into an arbitrary-execution or exfiltration primitive. Each pattern
// is applied per-argument and against the space-joined argument list,
// so a pattern split across adjacent arguments is still caught.
var blockedArgPatterns = []*regexp.Regexp{
	// Inline code execution flags.
	regexp.MustCompile(`(^|\s)--?eval(\s|=|$)`),
	regexp.MustCompile(`(^|\s)-e(\s|$)`),
	regexp.MustCompile(`(^|\s)-c(\s|$)`),
	// Network fetch tools.
	regexp.MustCompile(`(?i)(^|\s)(curl|wget|nc|ncat)(\s|$)`),
	// Destructive or privileged commands.
	regexp.MustCompile(`(?i)rm\s+-[a-z]*f`),
	regexp.MustCompile(`(?i)(^|\s)(sudo|chmod|chown|mkfs)(\s|$)`),
	regexp.MustCompile(`(?i)dd\s+if=`),
	// Shell metacharacters enabling command chaining or substitution.
	regexp.MustCompile("[;&|`$><]"),
}

// blockedEnvVars are environment variables that redirect interpreter
// behavior (preload libraries, startup scripts, injected flags).
// Compared case-insensitively.
var blockedEnvVars = map[string]bool{
	"LD_PRELOAD":            true,
	"LD_LIBRARY_PATH":       true,
	"DYLD_INSERT_LIBRARIES": true,
	"DYLD_LIBRARY_PATH":     true,
	"NODE_OPTIONS":          true,
	"PYTHONSTARTUP":         true,
	"PYTHONPATH":            true,
	"RUBYOPT":               true,
	"PERL5OPT":              true,
	"BASH_ENV":              true,
	"ENV":                   true,
	"IFS":                   true,
}

// ValidateMCPConfig checks an external tool configuration against the
// command allowlist, the argument blocklist, and the environment
// variable blocklist. Any single failure fails the whole config.
func ValidateMCPConfig(cfg *model.MCPConfig) Result {
	if cfg == nil {
		return fail("mcp configuration is empty")
	}

	command := strings.TrimSpace(cfg.Command)
	if command == "" {
		return fail("mcp command is empty")
	}

	// A command carrying a path separator could name a symlink or an
	// arbitrary binary whose base name shadows an allowlisted runner.
	if strings.ContainsAny(command, `/\`) {
		return fail(fmt.Sprintf("command %q must be a bare executable name, not a path", command))
	}

	if !allowedCommands[strings.ToLower(command)] {
		return fail(fmt.Sprintf("command %q is not an allowed runner", command))
	}

	for _, arg := range cfg.Args {
		for _, pattern := range blockedArgPatterns {
			if pattern.MatchString(arg) {
				return fail(fmt.Sprintf("argument %q matches blocked pattern %q", arg, pattern.String()))
			}
		}
	}

	// Joined scan catches patterns that only materialize across
	// adjacent arguments, e.g. ["test", "; rm -rf"].
	joined := strings.Join(cfg.Args, " ")
	for _, pattern := range blockedArgPatterns {
		if pattern.MatchString(joined) {
			return fail(fmt.Sprintf("arguments match blocked pattern %q when joined", pattern.String()))
		}
	}

	for key := range cfg.Env {
		if blockedEnvVars[strings.ToUpper(strings.TrimSpace(key))] {
			return fail(fmt.Sprintf("environment variable %q is blocked", key))
		}
	}

	return ok()
}
