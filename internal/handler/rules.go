package handler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/security"
)

// RulesHandler installs content-generic packages (rules, agents,
// hooks, workflows, templates, bundles) into a per-package folder
// under the platform's content directory. One instance serves one
// package type so the registry stays a plain type → handler map.
type RulesHandler struct {
	packageType model.PackageType
	extensions  []string
	detector    *security.Detector
}

// NewRulesHandler creates a content handler for the given type using
// the default accepted extensions.
func NewRulesHandler(t model.PackageType) *RulesHandler {
	return &RulesHandler{
		packageType: t,
		extensions:  security.DefaultContentExtensions,
		detector:    security.NewDetector(security.DefaultSensitivePatterns()),
	}
}

func (h *RulesHandler) Type() model.PackageType { return h.packageType }

// Install copies content files from the scratch directory when one is
// available, otherwise materializes the manifest's inline text. Every
// file passes the filename sanitizer and path-containment check;
// individual failures are skipped with a warning and do not fail the
// install. If no content lands, the package folder is removed again
// and zero paths are reported.
func (h *RulesHandler) Install(ctx *InstallContext) ([]string, error) {
	pkgDir := filepath.Join(ctx.TargetDir, ctx.FolderName)
	if err := os.MkdirAll(pkgDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating package directory: %w", err)
	}

	var written []string
	if ctx.ScratchDir != "" {
		paths, err := h.copyScratchFiles(ctx, pkgDir)
		if err != nil {
			return nil, err
		}
		written = paths
	}

	if len(written) == 0 {
		if path, ok := h.writeInlineContent(ctx, pkgDir); ok {
			written = append(written, path)
		}
	}

	if len(written) == 0 {
		// Never leave an orphan empty folder behind.
		if err := os.RemoveAll(pkgDir); err != nil {
			logging.Warn("removing empty package directory failed",
				logging.Path(pkgDir), logging.Err(err))
		}
		logging.Warn("no installable content found",
			logging.Package(ctx.Manifest.Name),
			logging.Platform(string(ctx.Platform)))
		return nil, nil
	}

	metaPath, err := WriteMetadata(pkgDir, ctx.Manifest)
	if err != nil {
		return nil, err
	}
	written = append(written, metaPath)

	logging.Info("content installed",
		logging.Package(ctx.Manifest.Name),
		logging.Platform(string(ctx.Platform)),
		logging.Count(len(written)))
	return written, nil
}

// Uninstall removes the package folder. A missing folder is not an
// error.
func (h *RulesHandler) Uninstall(ctx *UninstallContext) ([]string, error) {
	pkgDir := filepath.Join(ctx.TargetDir, ctx.FolderName)
	if !security.IsPathWithinDirectory(pkgDir, ctx.TargetDir) {
		return nil, fmt.Errorf("package folder %q escapes %q", ctx.FolderName, ctx.TargetDir)
	}

	if _, err := os.Stat(pkgDir); os.IsNotExist(err) {
		return nil, nil
	}
	if err := os.RemoveAll(pkgDir); err != nil {
		return nil, fmt.Errorf("removing package directory: %w", err)
	}
	return []string{pkgDir}, nil
}

// copyScratchFiles walks the scratch directory and copies every
// acceptable content file into pkgDir, flattened to base names.
func (h *RulesHandler) copyScratchFiles(ctx *InstallContext, pkgDir string) ([]string, error) {
	var written []string

	err := filepath.WalkDir(ctx.ScratchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			logging.Warn("skipping symlink in package contents",
				logging.Path(path))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if d.Name() == "cpm.json" || d.Name() == MetadataFilename {
			return nil
		}

		name, result := security.SanitizeFilename(d.Name(), h.extensions)
		if !result.Valid {
			logging.Warn("skipping unsafe content file",
				logging.Path(d.Name()),
				logging.Operation(result.Reason))
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logging.Warn("skipping unreadable content file",
				logging.Path(path), logging.Err(readErr))
			return nil
		}

		if ctx.Transform != nil {
			name, data = ctx.Transform(name, data)
		}

		dest := filepath.Join(pkgDir, name)
		if !security.IsPathWithinDirectory(dest, pkgDir) {
			logging.Warn("skipping content file outside package directory",
				logging.Path(name))
			return nil
		}

		h.scanForSecrets(ctx, name, data)

		if writeErr := os.WriteFile(dest, data, 0o644); writeErr != nil {
			return fmt.Errorf("writing %s: %w", name, writeErr)
		}
		written = append(written, dest)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("copying package contents: %w", err)
	}
	return written, nil
}

// writeInlineContent materializes the manifest's inline rules or
// prompt text as a single markdown file.
func (h *RulesHandler) writeInlineContent(ctx *InstallContext, pkgDir string) (string, bool) {
	content := ctx.Manifest.Content()
	if content == nil {
		return "", false
	}

	text := content.Rules
	if text == "" {
		text = content.Prompt
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	name := ctx.FolderName + ".md"
	data := []byte(text)
	if ctx.Transform != nil {
		name, data = ctx.Transform(name, data)
	}

	dest := filepath.Join(pkgDir, name)
	h.scanForSecrets(ctx, name, data)

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		logging.Warn("writing inline content failed",
			logging.Path(dest), logging.Err(err))
		return "", false
	}
	return dest, true
}

// scanForSecrets runs the advisory sensitive-content detector and logs
// a warning per finding. Findings never block an install.
func (h *RulesHandler) scanForSecrets(ctx *InstallContext, name string, data []byte) {
	if !ctx.ScanContent {
		return
	}
	for _, warning := range h.detector.ScanContent(string(data)) {
		logging.Warn("possible sensitive content",
			logging.Package(ctx.Manifest.Name),
			logging.Path(name),
			logging.Operation(warning))
	}
}
