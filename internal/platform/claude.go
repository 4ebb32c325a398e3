package platform

import (
	"github.com/klauern/cpm/internal/handler"
	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/util"
)

// ClaudeAdapter targets Claude Code: rules under .claude/rules,
// slash commands under .claude/commands, and MCP servers in the
// project's .mcp.json.
type ClaudeAdapter struct {
	*core
}

// NewClaudeAdapter creates the Claude Code adapter.
func NewClaudeAdapter(opts Options) *ClaudeAdapter {
	return &ClaudeAdapter{
		core: newCore(layout{
			platform:    model.ClaudeCode,
			rulesDir:    util.ClaudeRulesPath,
			commandsDir: util.ClaudeCommandsPath,
			configPath:  util.ClaudeMCPConfigPath,
		}, opts),
	}
}

// ListInstalled scans the rules and commands directories plus the
// shared MCP config's server keys. The filesystem is the only ledger
// consulted.
func (a *ClaudeAdapter) ListInstalled(projectPath string) ([]model.InstalledPackage, error) {
	var packages []model.InstalledPackage
	packages = append(packages, scanContentDir(util.ClaudeRulesPath(projectPath), model.TypeRules, model.ClaudeCode)...)
	packages = append(packages, scanContentDir(util.ClaudeCommandsPath(projectPath), model.TypeSkill, model.ClaudeCode)...)

	configPath := util.ClaudeMCPConfigPath(projectPath)
	keys, err := handler.InstalledServerKeys(configPath)
	if err != nil {
		logging.Warn("unreadable mcp config during listing",
			logging.Path(configPath), logging.Err(err))
	}
	for _, key := range keys {
		packages = append(packages, model.InstalledPackage{
			Name:       key,
			FolderName: key,
			Type:       model.TypeMCP,
			Path:       configPath,
			Platform:   model.ClaudeCode,
		})
	}

	sortPackages(packages)
	return packages, nil
}
