package source

import (
	"context"

	"github.com/klauern/cpm/internal/model"
)

const registryPriority = 4

// RegistrySource synthesizes a minimal manifest purely from the
// registry metadata already carried by the reference. It performs no
// I/O and always succeeds, making it the chain's last resort.
type RegistrySource struct{}

// NewRegistrySource creates the synthesized-manifest source.
func NewRegistrySource() *RegistrySource {
	return &RegistrySource{}
}

func (s *RegistrySource) Name() string  { return "registry" }
func (s *RegistrySource) Priority() int { return registryPriority }

func (s *RegistrySource) CanFetch(ref *model.PackageReference) bool {
	return ref != nil && ref.Name != ""
}

func (s *RegistrySource) Fetch(_ context.Context, ref *model.PackageReference, _ string) (*model.PackageManifest, error) {
	pkgType, err := model.ParsePackageType(string(ref.Type))
	if err != nil {
		pkgType = model.TypeRules
	}

	version := ref.Version
	if version == "" {
		version = "1.0.0"
	}

	manifest := &model.PackageManifest{
		Name:        ref.Name,
		Version:     version,
		Description: ref.Description,
		Type:        pkgType,
		Repository:  ref.Repository,
		Keywords:    ref.Keywords,
	}
	if pkgType.IsContentGeneric() {
		manifest.Universal = &model.UniversalConfig{}
	}
	return manifest, nil
}
