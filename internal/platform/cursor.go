package platform

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klauern/cpm/internal/handler"
	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/security"
	"github.com/klauern/cpm/internal/util"
)

// CursorAdapter targets Cursor: rules are stored as .mdc files with
// YAML front matter under .cursor/rules, MCP servers in
// .cursor/mcp.json. Cursor has no slash-command concept, so skill
// packages are skipped.
type CursorAdapter struct {
	*core
}

// NewCursorAdapter creates the Cursor adapter.
func NewCursorAdapter(opts Options) *CursorAdapter {
	return &CursorAdapter{
		core: newCore(layout{
			platform:     model.Cursor,
			rulesDir:     util.CursorRulesPath,
			configPath:   util.CursorMCPConfigPath,
			transformFor: cursorTransform,
		}, opts),
	}
}

// cursorFrontMatter is the machine-readable header of a .mdc rule
// file. Serialized with the YAML encoder so free-text description
// fields cannot inject keys of their own.
type cursorFrontMatter struct {
	Description string   `yaml:"description,omitempty"`
	Globs       []string `yaml:"globs,omitempty"`
	AlwaysApply bool     `yaml:"alwaysApply"`
}

// cursorTransform renames markdown content to .mdc and prepends front
// matter derived from the manifest. Globs pass the blocklist before
// they are written; blocked patterns are dropped with a warning.
func cursorTransform(manifest *model.PackageManifest) handler.TransformFunc {
	fm := cursorFrontMatter{
		Description: manifest.Description,
	}
	if content := manifest.Content(); content != nil {
		for _, glob := range content.Globs {
			if result := security.ValidateGlob(glob); !result.Valid {
				logging.Warn("dropping blocked glob pattern",
					logging.Package(manifest.Name),
					logging.Operation(result.Reason))
				continue
			}
			fm.Globs = append(fm.Globs, glob)
		}
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		logging.Warn("front matter serialization failed",
			logging.Package(manifest.Name), logging.Err(err))
		header = []byte("alwaysApply: false\n")
	}

	return func(name string, content []byte) (string, []byte) {
		if strings.HasSuffix(name, ".md") {
			name = strings.TrimSuffix(name, ".md") + ".mdc"
		}
		if !strings.HasSuffix(name, ".mdc") {
			return name, content
		}

		var b strings.Builder
		b.WriteString("---\n")
		b.Write(header)
		b.WriteString("---\n")
		b.Write(content)
		return name, []byte(b.String())
	}
}

// ListInstalled scans the rules directory and the shared MCP config.
func (a *CursorAdapter) ListInstalled(projectPath string) ([]model.InstalledPackage, error) {
	var packages []model.InstalledPackage
	packages = append(packages, scanContentDir(util.CursorRulesPath(projectPath), model.TypeRules, model.Cursor)...)

	configPath := util.CursorMCPConfigPath(projectPath)
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
			Platform:   model.Cursor,
		})
	}

	sortPackages(packages)
	return packages, nil
}
