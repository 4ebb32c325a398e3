package model

import (
	"fmt"
	"strings"
)

// PackageType discriminates the manifest union. Each type maps to one
// handler per platform.
type PackageType string

const (
	// TypeRules is a coding-rule bundle materialized as markdown files.
	TypeRules PackageType = "rules"
	// TypeSkill is a slash-command skill invoked by users.
	TypeSkill PackageType = "skill"
	// TypeMCP is an external tool integration written into shared MCP config.
	TypeMCP PackageType = "mcp"

	// Content-generic types. These intentionally share the lenient
	// rules-style schema and are installed through the rules handler.
	TypeAgent    PackageType = "agent"
	TypeHook     PackageType = "hook"
	TypeWorkflow PackageType = "workflow"
	TypeTemplate PackageType = "template"
	TypeBundle   PackageType = "bundle"
)

// IsValid returns true if the package type is recognized.
func (t PackageType) IsValid() bool {
	switch t {
	case TypeRules, TypeSkill, TypeMCP, TypeAgent, TypeHook, TypeWorkflow, TypeTemplate, TypeBundle:
		return true
	default:
		return false
	}
}

// IsContentGeneric returns true for the five types that share the
// lenient rules-style schema.
func (t PackageType) IsContentGeneric() bool {
	switch t {
	case TypeAgent, TypeHook, TypeWorkflow, TypeTemplate, TypeBundle:
		return true
	default:
		return false
	}
}

// String returns the string representation of the package type.
func (t PackageType) String() string {
	return string(t)
}

// AllPackageTypes returns all supported package types.
func AllPackageTypes() []PackageType {
	return []PackageType{TypeRules, TypeSkill, TypeMCP, TypeAgent, TypeHook, TypeWorkflow, TypeTemplate, TypeBundle}
}

// ParsePackageType converts a string to a PackageType.
// Returns TypeRules (default) if the string is empty.
func ParsePackageType(s string) (PackageType, error) {
	if s == "" {
		return TypeRules, nil
	}

	normalized := strings.ToLower(strings.TrimSpace(s))

	t := PackageType(normalized)
	if t.IsValid() {
		return t, nil
	}

	switch normalized {
	case "rule", "ruleset", "rule-set":
		return TypeRules, nil
	case "command", "slash-command", "prompt":
		return TypeSkill, nil
	case "tool", "mcp-server":
		return TypeMCP, nil
	default:
		return "", fmt.Errorf("unknown package type %q", s)
	}
}
