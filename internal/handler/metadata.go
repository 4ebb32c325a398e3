package handler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/cpm/internal/model"
)

// MetadataFilename is the per-package metadata file written alongside
// installed content. It recovers display metadata during listing; the
// directory's presence, not this file, decides whether a package is
// installed.
const MetadataFilename = ".cpm-metadata.json"

// Metadata records what was installed into a package folder.
type Metadata struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Type        model.PackageType `json:"type"`
	InstalledAt time.Time         `json:"installedAt"`
}

// WriteMetadata writes the metadata file into dir and returns its path.
func WriteMetadata(dir string, manifest *model.PackageManifest) (string, error) {
	meta := Metadata{
		Name:        manifest.Name,
		Version:     manifest.Version,
		Type:        manifest.Type,
		InstalledAt: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing metadata: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, MetadataFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}
	return path, nil
}

// ReadMetadata loads the metadata file from dir. Returns (nil, nil)
// when the file does not exist, since metadata is optional.
func ReadMetadata(dir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return &meta, nil
}
