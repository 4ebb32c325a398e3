package model

import (
	"strings"
	"time"
)

// PackageReference identifies a package to install. It is produced by
// the registry lookup and is immutable once resolution starts.
type PackageReference struct {
	// Name is the registry name, optionally scoped (@scope/name).
	Name string `json:"name"`
	// Description is the registry description, used when a manifest
	// must be synthesized from registry metadata alone.
	Description string `json:"description,omitempty"`
	// Version is the registry-known version, if any.
	Version string `json:"version,omitempty"`
	// Type is the registry-declared package type, if any.
	Type PackageType `json:"type,omitempty"`
	// Repository is a version-controlled repository URL hosting the
	// package manifest.
	Repository string `json:"repository,omitempty"`
	// Tarball is a downloadable archive URL with full package contents.
	Tarball string `json:"tarball,omitempty"`
	// Path is a registry-relative content path.
	Path string `json:"path,omitempty"`
	// Keywords are registry search keywords.
	Keywords []string `json:"keywords,omitempty"`
}

// BareName returns the reference name without a leading @scope/ segment.
func (r PackageReference) BareName() string {
	name := r.Name
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
	}
	return name
}

// InstalledPackage describes a package discovered by scanning a
// platform's content directories and shared config. It is derived
// state; the filesystem is the source of truth.
type InstalledPackage struct {
	Name        string      `json:"name"`
	FolderName  string      `json:"folder_name"`
	Type        PackageType `json:"type"`
	Version     string      `json:"version,omitempty"`
	Path        string      `json:"path"`
	Platform    Platform    `json:"platform,omitempty"`
	InstalledAt time.Time   `json:"installed_at,omitzero"`
}
