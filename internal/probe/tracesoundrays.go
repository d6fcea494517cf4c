package probe

import (
	"context"

	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/soundray"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

// TraceResult is one direction's contribution to the pooled room
// totals accumulated while tracing it (spec §4.4's "room totals
// computed on the first hit per ray").
type TraceResult struct {
	RootRay int

	Hit         bool
	RoomVolume  float64
	RoomSurface float64
	Sabine      material.Bands

	// BounceLength/BounceSegments accumulate spec §4.4 step 6:
	// "meanFreePath += segment.length only for bouncing segments".
	// The finish task divides the pooled sums to get a true mean.
	BounceLength   float64
	BounceSegments int

	Cancelled bool
}

// unitGain is the full-energy gain a root ray starts with.
var unitGain = material.Bands{1, 1, 1}

// TraceSoundRays traces a single direction through at most
// cfg.MaxBounce reflections and cfg.MaxTransmit transmissions,
// recording one soundray.Ray (plus any transmitted children) and
// their segments into list, and returns this direction's contribution
// to the pooled room totals (spec §4.4).
//
// list is not safe for concurrent use; callers running many
// directions concurrently must give each a private list and merge the
// results afterward (spec §4.4 "Thread safety": "the task owns its
// own rays, visitors, and result buffer").
func TraceSoundRays(ctx context.Context, tree *worldbvh.Tree, origin, dir geom.Vec, cfg Config, list *soundray.List) TraceResult {
	root := list.AddRootRay(origin, dir, unitGain)
	result := TraceResult{RootRay: root}

	type frame struct {
		origin   geom.Vec
		dir      geom.Vec
		gain     material.Bands
		traveled float64
		bounce   int
		transmit int
		rayIdx   int
	}
	stack := []frame{{origin: origin, dir: dir, gain: unitGain, rayIdx: root}}
	firstHitDone := false

	for len(stack) > 0 {
		if ctx.Err() != nil {
			result.Cancelled = true
			return result
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		hit, ok := castStepwise(tree, f.origin, f.dir, cfg.Range-f.traveled, cfg)
		if !ok {
			list.Rays[f.rayIdx].Outside = isOutside(tree, f.origin, f.dir, cfg)
			continue
		}

		segLen := hit.Distance
		list.AddSegment(f.rayIdx, soundray.Segment{
			Origin:      f.origin,
			Direction:   f.dir,
			Length:      segLen,
			PathLength:  f.traveled,
			GainOnEntry: f.gain,
			Bounce:      f.bounce,
		})

		if !firstHitDone && f.bounce == 0 {
			d := segLen
			cosOut := -geom.Dot(f.dir, hit.Face.Normal)
			surfaceFactor := d * d * (1 + (1-cosOut)*cfg.GrazingScaleFactor)
			coeff := hit.Component.Coefficients(hit.Face.TextureIndex)
			result.Hit = true
			result.RoomVolume = d * d * d
			result.RoomSurface = surfaceFactor
			result.Sabine = coeff.Absorption.Scale(surfaceFactor)
			firstHitDone = true
		}
		if f.bounce > 0 {
			result.BounceLength += segLen
			result.BounceSegments++
		}

		traveled := f.traveled + segLen
		if f.bounce >= cfg.MaxBounce || traveled >= cfg.Range {
			list.Rays[f.rayIdx].Outside = isOutside(tree, hit.Point, f.dir, cfg)
			continue
		}

		coeff := hit.Component.Coefficients(hit.Face.TextureIndex)

		transmittedGain := material.Bands{}
		if f.transmit < cfg.MaxTransmit {
			if depth := coeff.MaxPenetrationDepth(); depth > 0 {
				if exit, thickness, ok := findExitFace(tree, f.origin, f.dir, hit, depth); ok {
					gain := coeff.TransmissionGain(f.gain, thickness)
					if gain.Max()*distanceAttenuation(traveled+thickness) >= cfg.ThresholdTransmit {
						childOrigin := geom.Add(exit.Point, geom.Scale(cfg.BackStepDistance, f.dir))
						childIdx := list.AddChildRay(f.rayIdx, childOrigin, f.dir, gain)
						stack = append(stack, frame{
							origin: childOrigin, dir: f.dir, gain: gain,
							traveled: traveled + thickness, bounce: f.bounce, transmit: f.transmit + 1,
							rayIdx: childIdx,
						})
						transmittedGain = gain
					}
				}
			}
		}

		reflectedGain := coeff.ReflectedGain(f.gain, transmittedGain)
		if reflectedGain.Max()*distanceAttenuation(traveled) < cfg.ThresholdReflect {
			list.Rays[f.rayIdx].Outside = isOutside(tree, hit.Point, f.dir, cfg)
			continue
		}

		reflDir := geom.Reflect(f.dir, hit.Face.Normal)
		reflOrigin := geom.Add(hit.Point, geom.Scale(cfg.BackStepDistance, reflDir))
		stack = append(stack, frame{
			origin: reflOrigin, dir: reflDir, gain: reflectedGain,
			traveled: traveled, bounce: f.bounce + 1, transmit: f.transmit,
			rayIdx: f.rayIdx,
		})
	}

	return result
}

// castStepwise casts from origin in dir, extending the accepted limit
// by doubling from cfg.InitialRayLength until a hit is found or
// remaining is exhausted (spec §4.4 step 1).
func castStepwise(tree *worldbvh.Tree, origin, dir geom.Vec, remaining float64, cfg Config) (worldbvh.Hit, bool) {
	if remaining <= 0 {
		return worldbvh.Hit{}, false
	}
	limit := cfg.InitialRayLength
	if limit <= 0 || limit > remaining {
		limit = remaining
	}
	for {
		if hit, ok := worldbvh.Closest(tree, origin, dir, limit); ok {
			return hit, true
		}
		if limit >= remaining {
			return worldbvh.Hit{}, false
		}
		limit *= 2
		if limit > remaining {
			limit = remaining
		}
	}
}

// findExitFace looks, along the same (origin, dir) ray that produced
// entry, for the nearest back-facing hit on the same component and
// texture within depth past entry — the back face of the same
// material a transmitted ray would exit through (spec §4.4 step 3).
func findExitFace(tree *worldbvh.Tree, origin, dir geom.Vec, entry worldbvh.Hit, depth float64) (worldbvh.Hit, float64, bool) {
	hits := worldbvh.AllHits(tree, origin, dir, entry.Distance+depth)
	for _, h := range hits {
		if h.Distance <= entry.Distance+geom.Epsilon {
			continue
		}
		if h.Front {
			continue
		}
		if h.Component != entry.Component || h.Face.TextureIndex != entry.Face.TextureIndex {
			continue
		}
		return h, h.Distance - entry.Distance, true
	}
	return worldbvh.Hit{}, 0, false
}
