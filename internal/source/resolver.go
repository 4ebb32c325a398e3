package source

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
)

// ErrNoManifest indicates that every applicable source missed.
var ErrNoManifest = errors.New("no manifest found")

// Resolver walks a chain of sources in ascending priority order and
// stops at the first manifest produced.
type Resolver struct {
	sources []Source
}

// NewResolver builds a resolver from an unordered set of sources. The
// chain is sorted once at construction so resolution order is
// deterministic.
func NewResolver(sources ...Source) *Resolver {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Resolver{sources: sorted}
}

// Resolve tries each source strictly sequentially: CanFetch first,
// then Fetch. The first non-nil manifest wins and is returned with the
// name of the source that produced it. A source returning (nil, nil)
// is a miss and the next source is tried. If no source produces a
// manifest, the error wraps ErrNoManifest.
func (r *Resolver) Resolve(ctx context.Context, ref *model.PackageReference, scratchDir string) (*model.PackageManifest, string, error) {
	for _, src := range r.sources {
		if !src.CanFetch(ref) {
			logging.Debug("source not applicable",
				logging.Source(src.Name()),
				logging.Package(ref.Name))
			continue
		}

		manifest, err := src.Fetch(ctx, ref, scratchDir)
		if err != nil {
			return nil, "", fmt.Errorf("source %s: %w", src.Name(), err)
		}
		if manifest == nil {
			logging.Debug("source miss",
				logging.Source(src.Name()),
				logging.Package(ref.Name))
			continue
		}

		logging.Debug("manifest resolved",
			logging.Source(src.Name()),
			logging.Package(manifest.Name),
			logging.Type(string(manifest.Type)))
		return manifest, src.Name(), nil
	}

	return nil, "", fmt.Errorf("%w for package %q", ErrNoManifest, ref.Name)
}
