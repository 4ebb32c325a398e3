// Package installer drives the package pipeline end to end: registry
// lookup, manifest resolution through the source chain, schema
// validation, and per-platform dispatch. It owns the scratch directory
// lifecycle — every install gets a fresh one, removed unconditionally
// when the run finishes.
package installer

import (
	"context"
	"fmt"
	"os"

	"github.com/klauern/cpm/internal/config"
	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/platform"
	"github.com/klauern/cpm/internal/registry"
	"github.com/klauern/cpm/internal/source"
)

// RegistryLookup is the single registry operation the pipeline needs.
type RegistryLookup interface {
	GetPackage(ctx context.Context, name string) (*model.PackageReference, error)
}

// Installer orchestrates installs, uninstalls, and listings across
// platforms.
type Installer struct {
	registry RegistryLookup
	resolver *source.Resolver
	opts     platform.Options
}

// New wires the default pipeline from user configuration: registry
// client plus the github → tarball → fallback → registry source chain.
func New(cfg *config.Config) *Installer {
	return &Installer{
		registry: registry.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout),
		resolver: source.NewResolver(
			source.NewGitHubSource(cfg.Sources.ManifestTimeout),
			source.NewTarballSource(cfg.Sources.DownloadTimeout),
			source.NewFallbackSource(),
			source.NewRegistrySource(),
		),
		opts: platform.Options{ScanContent: cfg.Install.ScanContent},
	}
}

// NewWithComponents wires an installer from explicit collaborators.
func NewWithComponents(lookup RegistryLookup, resolver *source.Resolver, opts platform.Options) *Installer {
	return &Installer{registry: lookup, resolver: resolver, opts: opts}
}

// InstallOutcome reports one install run: the resolved manifest facts
// plus one result per target platform.
type InstallOutcome struct {
	Package string
	Version string
	Type    model.PackageType
	Source  string
	Results []platform.InstallResult
}

// Failed reports whether any platform failed.
func (o *InstallOutcome) Failed() bool {
	for _, r := range o.Results {
		if !r.Success {
			return true
		}
	}
	return false
}

// Install resolves one package and installs it on every target
// platform. Registry unavailability degrades to a bare reference so
// the offline sources still get their chance; manifest resolution and
// schema validation failures abort before any platform is touched.
func (i *Installer) Install(ctx context.Context, name, projectPath string, platforms []model.Platform) (*InstallOutcome, error) {
	ref, err := i.registry.GetPackage(ctx, name)
	if err != nil {
		logging.Warn("registry lookup failed, continuing with offline sources",
			logging.Package(name), logging.Err(err))
	}
	if ref == nil {
		ref = &model.PackageReference{Name: name}
	}

	scratchDir, err := os.MkdirTemp("", "cpm-install-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratchDir); rmErr != nil {
			logging.Warn("removing scratch directory failed",
				logging.Path(scratchDir), logging.Err(rmErr))
		}
	}()

	manifest, srcName, err := i.resolver.Resolve(ctx, ref, scratchDir)
	if err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("manifest for %q: %w", name, err)
	}

	outcome := &InstallOutcome{
		Package: manifest.Name,
		Version: manifest.Version,
		Type:    manifest.Type,
		Source:  srcName,
	}
	for _, p := range platforms {
		adapter, err := platform.ForPlatform(p, i.opts)
		if err != nil {
			outcome.Results = append(outcome.Results, platform.InstallResult{
				Platform: p,
				Err:      err,
			})
			continue
		}
		outcome.Results = append(outcome.Results, adapter.Install(manifest, projectPath, scratchDir))
	}
	return outcome, nil
}

// UninstallOutcome reports removal results for one platform.
type UninstallOutcome struct {
	Platform model.Platform
	Removed  []string
	Err      error
}

// Uninstall removes a package's artifacts from every target platform.
// A platform with nothing to remove reports an empty Removed list.
func (i *Installer) Uninstall(name, projectPath string, platforms []model.Platform) []UninstallOutcome {
	outcomes := make([]UninstallOutcome, 0, len(platforms))
	for _, p := range platforms {
		adapter, err := platform.ForPlatform(p, i.opts)
		if err != nil {
			outcomes = append(outcomes, UninstallOutcome{Platform: p, Err: err})
			continue
		}
		removed, err := adapter.Uninstall(name, projectPath)
		outcomes = append(outcomes, UninstallOutcome{Platform: p, Removed: removed, Err: err})
	}
	return outcomes
}

// List aggregates installed packages across platforms.
func (i *Installer) List(projectPath string, platforms []model.Platform) ([]model.InstalledPackage, error) {
	var packages []model.InstalledPackage
	for _, p := range platforms {
		adapter, err := platform.ForPlatform(p, i.opts)
		if err != nil {
			return nil, err
		}
		installed, err := adapter.ListInstalled(projectPath)
		if err != nil {
			return nil, fmt.Errorf("listing %s packages: %w", p, err)
		}
		packages = append(packages, installed...)
	}
	return packages, nil
}
