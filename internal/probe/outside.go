package probe

import (
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

// isOutside performs the "is-blocked?" check of spec §4.4 step 5: a
// ray that terminates (miss, below threshold, or maxBounce reached)
// is marked outside unless a blocker is found along
// origin + direction*cfg.DetectOutsideLength.
func isOutside(tree *worldbvh.Tree, origin, dir geom.Vec, cfg Config) bool {
	return !worldbvh.Blocked(tree, origin, dir, cfg.DetectOutsideLength)
}
