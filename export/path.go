package export

import (
	"context"
	"fmt"
)

// UnnamedSegment substitutes for a container whose label cannot be read.
// Resolution fails soft rather than aborting the whole path.
const UnnamedSegment = "(unnamed)"

// ResolvePath reconstructs the ordered container names enclosing a leaf,
// root first, exclusive of the leaf's own name. Hierarchy is recovered
// purely through the region-ownership relation (the container that declares
// it controls the region a node sits in), never through rendered ancestry:
// the DOM nesting of the surface does not mirror logical depth.
//
// The relation is queried fresh on every call; nothing is cached, because
// an expansion step may invalidate all prior structure.
func ResolvePath(ctx context.Context, s Surface, leaf Node, maxDepth int) ([]string, error) {
	if maxDepth <= 0 {
		maxDepth = 64
	}

	var segs []string
	cur := leaf.ID
	for depth := 0; ; depth++ {
		if depth >= maxDepth {
			return segs, fmt.Errorf("export: path depth cap at %d segments for %q", maxDepth, leaf.Name)
		}

		region, ok, err := s.EnclosingRegion(ctx, cur)
		if err != nil {
			return segs, fmt.Errorf("export: enclosing region of %s: %w", cur, err)
		}
		if !ok {
			return segs, nil // root reached
		}

		owner, ok, err := s.RegionOwner(ctx, region)
		if err != nil {
			return segs, fmt.Errorf("export: owner of region %q: %w", region, err)
		}
		if !ok {
			// Orphan region: nothing declares ownership. Treat as root.
			return segs, nil
		}

		name := owner.Name
		if name == "" {
			name = UnnamedSegment
		}
		segs = append([]string{name}, segs...)
		cur = owner.ID
	}
}

// JoinPath turns resolved segments plus the leaf name into an archive path:
// "/"-joined, no leading separator.
func JoinPath(segs []string, leaf string) string {
	full := leaf
	for i := len(segs) - 1; i >= 0; i-- {
		full = segs[i] + "/" + full
	}
	return full
}
