package source

import (
	"context"
	"embed"
	"errors"
	"io/fs"

	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
)

const fallbackPriority = 3

//go:embed manifests/*.json
var embeddedManifests embed.FS

// FallbackSource serves manifests bundled into the binary, so a known
// set of packages installs without any network access.
type FallbackSource struct {
	fsys fs.FS
}

// NewFallbackSource creates a source backed by the embedded manifest
// set.
func NewFallbackSource() *FallbackSource {
	return &FallbackSource{fsys: embeddedManifests}
}

func (s *FallbackSource) Name() string  { return "fallback" }
func (s *FallbackSource) Priority() int { return fallbackPriority }

// CanFetch always returns true; whether a bundled manifest exists is
// only known at Fetch time, which misses softly when it does not.
func (s *FallbackSource) CanFetch(ref *model.PackageReference) bool {
	return ref != nil && ref.Name != ""
}

func (s *FallbackSource) Fetch(_ context.Context, ref *model.PackageReference, _ string) (*model.PackageManifest, error) {
	data, err := fs.ReadFile(s.fsys, "manifests/"+ref.BareName()+".json")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("reading bundled manifest failed",
				logging.Package(ref.Name), logging.Err(err))
		}
		return nil, nil
	}

	manifest, err := model.ParseManifest(data)
	if err != nil {
		logging.Warn("bundled manifest invalid",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}
	return manifest, nil
}
