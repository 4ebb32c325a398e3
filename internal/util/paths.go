package util

import (
	"os"
	"path/filepath"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// CPMConfigPath returns the cpm configuration directory (~/.cpm)
func CPMConfigPath() string {
	return filepath.Join(HomeDir(), ".cpm")
}

// ClaudeRulesPath returns the Claude Code rules directory for a project
func ClaudeRulesPath(projectDir string) string {
	return filepath.Join(projectDir, ".claude", "rules")
}

// ClaudeCommandsPath returns the Claude Code slash-command directory for a project
func ClaudeCommandsPath(projectDir string) string {
	return filepath.Join(projectDir, ".claude", "commands")
}

// ClaudeMCPConfigPath returns the shared Claude Code MCP config file for a project
func ClaudeMCPConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ".mcp.json")
}

// CursorRulesPath returns the Cursor rules directory for a project
func CursorRulesPath(projectDir string) string {
	return filepath.Join(projectDir, ".cursor", "rules")
}

// CursorMCPConfigPath returns the shared Cursor MCP config file for a project
func CursorMCPConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ".cursor", "mcp.json")
}

// CodexRulesPath returns the Codex rules directory for a project
func CodexRulesPath(projectDir string) string {
	return filepath.Join(projectDir, ".codex", "rules")
}

// CodexConfigPath returns the Codex config.toml for a project
func CodexConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ".codex", "config.toml")
}
