package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// PackageManifest is the resolved, structured description of a package.
// The Type field discriminates which payload is meaningful; exactly one
// of Universal, Skill, or MCP should be populated for a valid manifest.
type PackageManifest struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Description string      `json:"description"`
	Type        PackageType `json:"type"`
	Author      string      `json:"author,omitempty"`
	Repository  string      `json:"repository,omitempty"`
	License     string      `json:"license,omitempty"`
	Keywords    []string    `json:"keywords,omitempty"`

	Universal *UniversalConfig `json:"universal,omitempty"`
	Skill     *SkillConfig     `json:"skill,omitempty"`
	MCP       *MCPConfig       `json:"mcp,omitempty"`
}

// UniversalConfig carries content for rules and the content-generic types.
type UniversalConfig struct {
	Rules  string   `json:"rules,omitempty"`
	Prompt string   `json:"prompt,omitempty"`
	Globs  []string `json:"globs,omitempty"`
}

// SkillConfig carries the slash-command payload.
type SkillConfig struct {
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
}

// MCPConfig carries the external tool integration payload.
type MCPConfig struct {
	Transport string            `json:"transport,omitempty"`
	Command   string            `json:"command"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// SchemaError reports the first structurally invalid field of a manifest.
type SchemaError struct {
	Field   string
	Message string
}

// Error returns a formatted schema error message.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid manifest field %q: %s", e.Field, e.Message)
}

// slashCommandPattern matches a slash token such as "/review" or "review".
var slashCommandPattern = regexp.MustCompile(`^/?[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Validate checks the manifest structure against its declared type.
// It returns a *SchemaError describing the first offending field.
func (m *PackageManifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return &SchemaError{Field: "name", Message: "name is required"}
	}
	if m.Type == "" {
		return &SchemaError{Field: "type", Message: "type is required"}
	}
	if !m.Type.IsValid() {
		return &SchemaError{Field: "type", Message: fmt.Sprintf("unknown package type %q", m.Type)}
	}

	switch m.Type {
	case TypeSkill:
		if m.Skill == nil {
			return &SchemaError{Field: "skill", Message: "skill payload is required for type skill"}
		}
		if strings.TrimSpace(m.Skill.Command) == "" {
			return &SchemaError{Field: "skill.command", Message: "command is required"}
		}
		if !slashCommandPattern.MatchString(strings.TrimSpace(m.Skill.Command)) {
			return &SchemaError{Field: "skill.command", Message: fmt.Sprintf("%q is not a valid slash command", m.Skill.Command)}
		}
	case TypeMCP:
		if m.MCP == nil {
			return &SchemaError{Field: "mcp", Message: "mcp payload is required for type mcp"}
		}
		if strings.TrimSpace(m.MCP.Command) == "" {
			return &SchemaError{Field: "mcp.command", Message: "command is required"}
		}
	}

	// Rules and the content-generic types share a lenient schema: the
	// universal payload is optional and an absent payload installs as
	// "no content" rather than failing validation.
	return nil
}

// Content returns the universal payload only when the declared type is
// content-bearing. A populated payload under a mismatched type is
// treated as no content, never reinterpreted.
func (m *PackageManifest) Content() *UniversalConfig {
	if m.Type == TypeRules || m.Type.IsContentGeneric() {
		return m.Universal
	}
	return nil
}

// CommandToken returns the skill command without its leading slash.
func (s *SkillConfig) CommandToken() string {
	return strings.TrimPrefix(strings.TrimSpace(s.Command), "/")
}

// ParseManifest decodes and validates a manifest document.
func ParseManifest(data []byte) (*PackageManifest, error) {
	var m PackageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
