// Package handler implements per-package-type install and uninstall
// logic. Handlers are pure workers: the platform adapter decides the
// target directories and shared config paths, builds a context, and
// dispatches by manifest type through the Registry.
package handler

import (
	"github.com/klauern/cpm/internal/model"
)

// TransformFunc lets a platform rewrite a content file before it is
// written (rename, wrap in front matter). It receives the sanitized
// filename and raw content and returns the final filename and content.
type TransformFunc func(filename string, content []byte) (string, []byte)

// InstallContext carries everything a handler needs to install one
// package for one platform.
type InstallContext struct {
	// Manifest is the resolved, validated manifest.
	Manifest *model.PackageManifest
	// FolderName is the sanitized per-package folder name.
	FolderName string
	// TargetDir is the platform directory for this package type
	// (rules dir, commands dir). Unused by the MCP handler.
	TargetDir string
	// ScratchDir holds already-downloaded package contents, when a
	// source fetched an archive. Empty when resolution produced only
	// a manifest.
	ScratchDir string
	// ConfigPath is the platform's shared external-tool config file.
	// Used only by the MCP handler.
	ConfigPath string
	// Platform is the target platform, for logging.
	Platform model.Platform
	// Transform optionally rewrites each content file for the
	// platform's on-disk format.
	Transform TransformFunc
	// ScanContent enables the advisory sensitive-content scan on
	// installed text files.
	ScanContent bool
}

// UninstallContext carries what a handler needs to remove one
// package's artifacts.
type UninstallContext struct {
	FolderName string
	TargetDir  string
	ConfigPath string
	Platform   model.Platform
}

// Handler installs and uninstalls packages of a single type. Install
// returns every path written; Uninstall returns every path removed.
// Finding nothing to remove is not an error.
type Handler interface {
	Type() model.PackageType
	Install(ctx *InstallContext) ([]string, error)
	Uninstall(ctx *UninstallContext) ([]string, error)
}

// Registry maps package types to handlers. Registration is explicit;
// adapters construct their own registry rather than relying on global
// state.
type Registry struct {
	handlers map[model.PackageType]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[model.PackageType]Handler)}
}

// Register binds a handler to its type. Registering the same type
// again replaces the previous handler, so repeated wiring is safe.
func (r *Registry) Register(h Handler) {
	r.handlers[h.Type()] = h
}

// Lookup returns the handler for a type, if one is registered.
func (r *Registry) Lookup(t model.PackageType) (Handler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}

// Types returns the registered types, for diagnostics.
func (r *Registry) Types() []model.PackageType {
	types := make([]model.PackageType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}
