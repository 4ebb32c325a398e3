package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/security"
)

// SkillHandler installs slash-command skill packages into the
// platform's command directory. Content handling mirrors the rules
// handler, but the manifest must carry a skill command token.
type SkillHandler struct {
	rules *RulesHandler
}

// NewSkillHandler creates the skill handler.
func NewSkillHandler() *SkillHandler {
	return &SkillHandler{rules: NewRulesHandler(model.TypeSkill)}
}

func (h *SkillHandler) Type() model.PackageType { return model.TypeSkill }

// Install validates the skill payload, then installs content files the
// same way the rules handler does. When no scratch content exists, the
// skill's command documentation is materialized from the manifest.
func (h *SkillHandler) Install(ctx *InstallContext) ([]string, error) {
	skill := ctx.Manifest.Skill
	if skill == nil || skill.Command == "" {
		return nil, &model.SchemaError{Field: "skill.command", Message: "required for skill packages"}
	}

	pkgDir := filepath.Join(ctx.TargetDir, ctx.FolderName)
	if err := os.MkdirAll(pkgDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating skill directory: %w", err)
	}

	var written []string
	if ctx.ScratchDir != "" {
		paths, err := h.rules.copyScratchFiles(ctx, pkgDir)
		if err != nil {
			return nil, err
		}
		written = paths
	}

	if len(written) == 0 {
		path, err := h.writeCommandFile(ctx, pkgDir)
		if err != nil {
			if rmErr := os.RemoveAll(pkgDir); rmErr != nil {
				logging.Warn("removing skill directory failed",
					logging.Path(pkgDir), logging.Err(rmErr))
			}
			return nil, err
		}
		written = append(written, path)
	}

	metaPath, err := WriteMetadata(pkgDir, ctx.Manifest)
	if err != nil {
		return nil, err
	}
	written = append(written, metaPath)

	logging.Info("skill installed",
		logging.Package(ctx.Manifest.Name),
		logging.Platform(string(ctx.Platform)),
		logging.Operation(ctx.Manifest.Skill.CommandToken()))
	return written, nil
}

// Uninstall removes the skill's package folder.
func (h *SkillHandler) Uninstall(ctx *UninstallContext) ([]string, error) {
	return h.rules.Uninstall(ctx)
}

// writeCommandFile materializes a markdown command file named after
// the slash token.
func (h *SkillHandler) writeCommandFile(ctx *InstallContext, pkgDir string) (string, error) {
	token := ctx.Manifest.Skill.CommandToken()
	name, result := security.SanitizeFilename(token+".md", h.rules.extensions)
	if !result.Valid {
		return "", fmt.Errorf("skill command %q yields unsafe filename: %s", token, result.Reason)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# /%s\n", token)
	if desc := ctx.Manifest.Skill.Description; desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}

	data := []byte(b.String())
	if ctx.Transform != nil {
		name, data = ctx.Transform(name, data)
	}

	dest := filepath.Join(pkgDir, name)
	if !security.IsPathWithinDirectory(dest, pkgDir) {
		return "", fmt.Errorf("skill file %q escapes package directory", name)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("writing skill file: %w", err)
	}
	return dest, nil
}
