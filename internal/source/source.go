// Package source resolves package references into manifests through a
// prioritized fail-over chain. Each source answers CanFetch cheaply
// (string inspection only, no I/O); Fetch may hit the network or disk.
// A miss is reported as (nil, nil) so the resolver can continue down
// the chain; errors are reserved for conditions that should abort the
// whole resolution.
package source

import (
	"context"

	"github.com/klauern/cpm/internal/model"
)

// Source produces a package manifest for a reference, or reports a
// miss. Priority orders sources in the chain (lower tried first), and
// Name identifies the source in logs and results.
type Source interface {
	Name() string
	Priority() int
	CanFetch(ref *model.PackageReference) bool
	Fetch(ctx context.Context, ref *model.PackageReference, scratchDir string) (*model.PackageManifest, error)
}
