package platform

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/util"
)

// CodexAdapter targets Codex: rules under .codex/rules only. Codex
// has neither slash commands nor a JSON MCP config this tool manages;
// its MCP servers live in the TOML config file, which the listing
// reads but installs never touch.
type CodexAdapter struct {
	*core
}

// NewCodexAdapter creates the Codex adapter.
func NewCodexAdapter(opts Options) *CodexAdapter {
	return &CodexAdapter{
		core: newCore(layout{
			platform: model.Codex,
			rulesDir: util.CodexRulesPath,
		}, opts),
	}
}

// codexConfig is the subset of .codex/config.toml the listing needs.
type codexConfig struct {
	MCPServers map[string]struct {
		Command string   `toml:"command"`
		Args    []string `toml:"args"`
	} `toml:"mcp_servers"`
}

// ListInstalled scans the rules directory and reports the MCP servers
// declared in the Codex TOML config as externally managed entries.
func (a *CodexAdapter) ListInstalled(projectPath string) ([]model.InstalledPackage, error) {
	var packages []model.InstalledPackage
	packages = append(packages, scanContentDir(util.CodexRulesPath(projectPath), model.TypeRules, model.Codex)...)

	configPath := util.CodexConfigPath(projectPath)
	if data, err := os.ReadFile(configPath); err == nil {
		var cfg codexConfig
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			logging.Warn("unreadable codex config during listing",
				logging.Path(configPath), logging.Err(err))
		} else {
			for key := range cfg.MCPServers {
				packages = append(packages, model.InstalledPackage{
					Name:       key,
					FolderName: key,
					Type:       model.TypeMCP,
					Path:       configPath,
					Platform:   model.Codex,
				})
			}
		}
	}

	sortPackages(packages)
	return packages, nil
}
