// Package platform orchestrates installs per target platform. Each
// adapter knows its platform's on-disk conventions (rules directory,
// command directory, shared external-tool config) and dispatches by
// manifest type to the handler registry. Adapters never propagate
// panics or errors from handlers; every install converges to a uniform
// InstallResult.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauern/cpm/internal/handler"
	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/security"
)

// InstallResult is the uniform outcome of one adapter install.
type InstallResult struct {
	Success      bool
	Platform     model.Platform
	FilesWritten []string
	Err          error
}

// Adapter installs, uninstalls, and lists packages for one platform.
type Adapter interface {
	Platform() model.Platform
	Install(manifest *model.PackageManifest, projectPath, scratchDir string) InstallResult
	Uninstall(name, projectPath string) ([]string, error)
	ListInstalled(projectPath string) ([]model.InstalledPackage, error)
}

// Options tunes adapter behavior from user config.
type Options struct {
	// ScanContent enables the advisory sensitive-content scan.
	ScanContent bool
}

// ForPlatform returns the adapter for a platform.
func ForPlatform(p model.Platform, opts Options) (Adapter, error) {
	switch p {
	case model.ClaudeCode:
		return NewClaudeAdapter(opts), nil
	case model.Cursor:
		return NewCursorAdapter(opts), nil
	case model.Codex:
		return NewCodexAdapter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", p)
	}
}

// layout captures one platform's directory conventions. A nil path
// function means the platform has no concept of that package type.
type layout struct {
	platform    model.Platform
	rulesDir    func(projectPath string) string
	commandsDir func(projectPath string) string
	configPath  func(projectPath string) string
	// transformFor builds the per-manifest content transform, when the
	// platform stores content in its own format.
	transformFor func(manifest *model.PackageManifest) handler.TransformFunc
}

// core implements the type dispatch shared by every adapter.
type core struct {
	layout   layout
	registry *handler.Registry
	opts     Options
}

func newCore(l layout, opts Options) *core {
	reg := handler.NewRegistry()
	for _, t := range model.AllPackageTypes() {
		if t == model.TypeRules || t.IsContentGeneric() {
			reg.Register(handler.NewRulesHandler(t))
		}
	}
	reg.Register(handler.NewSkillHandler())
	reg.Register(handler.NewMCPHandler())
	return &core{layout: l, registry: reg, opts: opts}
}

func (c *core) Platform() model.Platform { return c.layout.platform }

// Install dispatches the manifest to its type handler and converts
// every failure mode, including panics, into a failed InstallResult.
func (c *core) Install(manifest *model.PackageManifest, projectPath, scratchDir string) (result InstallResult) {
	result.Platform = c.layout.platform
	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Err = fmt.Errorf("install failed: %v", r)
		}
	}()

	folder, err := security.SanitizeFolderName(manifest.Name)
	if err != nil {
		result.Err = fmt.Errorf("unusable package name: %w", err)
		return result
	}

	pkgType, h, ok := c.resolveHandler(manifest)
	if !ok {
		result.Err = fmt.Errorf("no handler for package type %q", manifest.Type)
		return result
	}

	ctx, supported := c.installContext(manifest, pkgType, folder, projectPath, scratchDir)
	if !supported {
		logging.Warn("package type not supported on platform, skipping",
			logging.Package(manifest.Name),
			logging.Platform(string(c.layout.platform)),
			logging.Type(string(pkgType)))
		result.Success = true
		return result
	}

	written, err := h.Install(ctx)
	if err != nil {
		result.Err = err
		return result
	}

	result.Success = true
	result.FilesWritten = written
	return result
}

// Uninstall sanitizes the name once and asks each relevant handler to
// remove its artifacts. Handlers finding nothing are not errors.
func (c *core) Uninstall(name, projectPath string) ([]string, error) {
	folder, err := security.SanitizeFolderName(name)
	if err != nil {
		return nil, fmt.Errorf("unusable package name: %w", err)
	}

	var removed []string
	for _, target := range c.uninstallTargets(projectPath) {
		h, ok := c.registry.Lookup(target.pkgType)
		if !ok {
			continue
		}
		paths, err := h.Uninstall(&handler.UninstallContext{
			FolderName: folder,
			TargetDir:  target.dir,
			ConfigPath: target.configPath,
			Platform:   c.layout.platform,
		})
		if err != nil {
			return removed, err
		}
		removed = append(removed, paths...)
	}
	return removed, nil
}

type uninstallTarget struct {
	pkgType    model.PackageType
	dir        string
	configPath string
}

func (c *core) uninstallTargets(projectPath string) []uninstallTarget {
	targets := []uninstallTarget{
		{pkgType: model.TypeRules, dir: c.layout.rulesDir(projectPath)},
	}
	if c.layout.commandsDir != nil {
		targets = append(targets, uninstallTarget{
			pkgType: model.TypeSkill,
			dir:     c.layout.commandsDir(projectPath),
		})
	}
	if c.layout.configPath != nil {
		targets = append(targets, uninstallTarget{
			pkgType:    model.TypeMCP,
			configPath: c.layout.configPath(projectPath),
		})
	}
	return targets
}

// resolveHandler looks the manifest type up in the registry, falling
// back to structural detection when the declared type has no handler.
func (c *core) resolveHandler(manifest *model.PackageManifest) (model.PackageType, handler.Handler, bool) {
	if h, ok := c.registry.Lookup(manifest.Type); ok {
		return manifest.Type, h, true
	}

	guessed, ok := guessType(manifest)
	if !ok {
		return "", nil, false
	}
	logging.Debug("falling back to structural type detection",
		logging.Package(manifest.Name),
		logging.Type(string(guessed)))
	h, ok := c.registry.Lookup(guessed)
	return guessed, h, ok
}

// guessType detects what a manifest looks like from its payload.
func guessType(manifest *model.PackageManifest) (model.PackageType, bool) {
	switch {
	case manifest.MCP != nil:
		return model.TypeMCP, true
	case manifest.Skill != nil:
		return model.TypeSkill, true
	case manifest.Universal != nil:
		return model.TypeRules, true
	default:
		return "", false
	}
}

// installContext builds the handler context for a type, or reports
// that the platform does not support it.
func (c *core) installContext(manifest *model.PackageManifest, pkgType model.PackageType, folder, projectPath, scratchDir string) (*handler.InstallContext, bool) {
	ctx := &handler.InstallContext{
		Manifest:    manifest,
		FolderName:  folder,
		ScratchDir:  scratchDir,
		Platform:    c.layout.platform,
		ScanContent: c.opts.ScanContent,
	}
	if c.layout.transformFor != nil {
		ctx.Transform = c.layout.transformFor(manifest)
	}

	switch pkgType {
	case model.TypeSkill:
		if c.layout.commandsDir == nil {
			return nil, false
		}
		ctx.TargetDir = c.layout.commandsDir(projectPath)
	case model.TypeMCP:
		if c.layout.configPath == nil {
			return nil, false
		}
		ctx.ConfigPath = c.layout.configPath(projectPath)
	default:
		ctx.TargetDir = c.layout.rulesDir(projectPath)
	}
	return ctx, true
}

// scanContentDir lists per-package subdirectories of a content
// directory, reading the optional metadata file for display fields.
func scanContentDir(dir string, defaultType model.PackageType, platform model.Platform) []model.InstalledPackage {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var packages []model.InstalledPackage
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pkg := model.InstalledPackage{
			Name:       entry.Name(),
			FolderName: entry.Name(),
			Type:       defaultType,
			Path:       filepath.Join(dir, entry.Name()),
			Platform:   platform,
		}
		if meta, err := handler.ReadMetadata(pkg.Path); err == nil && meta != nil {
			pkg.Name = meta.Name
			pkg.Version = meta.Version
			pkg.Type = meta.Type
			pkg.InstalledAt = meta.InstalledAt
		}
		packages = append(packages, pkg)
	}
	return packages
}

// sortPackages orders a listing by name for stable output.
func sortPackages(packages []model.InstalledPackage) {
	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})
}
