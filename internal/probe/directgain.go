package probe

import (
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

// DirectPath casts a single straight ray from listenerPos to sourcePos
// and accumulates the per-band transmission gain through every
// material slab it crosses (spec §2's "direct-path transmission gains
// ... between each source and the listener, accounting for materials
// the ray passes through").
//
// Each crossed face's exit is located the same way TraceSoundRays
// finds a transmitted child's exit face (findExitFace). A
// zero-thickness material (a membrane: τ_b=0 in every band) has no
// search depth to locate a back face within, so it is treated as
// exited immediately, at the entry face itself. A material with real
// thickness but no locatable exit within its own max penetration depth
// is instead treated as extending all the way to the source.
func DirectPath(tree *worldbvh.Tree, listenerPos, sourcePos geom.Vec, cfg Config) material.Bands {
	toSource := geom.Sub(sourcePos, listenerPos)
	length := geom.Norm(toSource)
	if length <= geom.Epsilon {
		return unitGain
	}
	dir := geom.Scale(1/length, toSource)

	gain := unitGain
	origin := listenerPos
	traveled := 0.0

	for traveled < length {
		remaining := length - traveled
		hit, ok := worldbvh.Closest(tree, origin, dir, remaining)
		if !ok {
			break
		}

		coeff := hit.Component.Coefficients(hit.Face.TextureIndex)
		depth := coeff.MaxPenetrationDepth()

		var thickness float64
		if exit, t, ok := findExitFace(tree, origin, dir, hit, depth); ok {
			thickness = t
			_ = exit
		} else if depth > 0 {
			thickness = remaining - hit.Distance
		}

		gain = coeff.TransmissionGain(gain, thickness)
		if gain.Max() <= 0 {
			return gain
		}

		advance := hit.Distance + thickness + cfg.BackStepDistance
		origin = geom.Add(origin, geom.Scale(advance, dir))
		traveled += advance
	}

	return gain
}

// Bandpass reduces a per-band gain to the broadband scalar plus
// low/high rolloff ratios an OpenAL-style direct-path filter expects
// (spec §8 scenario 2: "BandPass gain = 0.5; BandPass low/high =
// 1.0" for a uniform (0.5, 0.5, 0.5) gain). gain and lowRatio/highRatio
// are all zero if the mid band carries no energy.
func Bandpass(g material.Bands) (gain, lowRatio, highRatio float64) {
	gain = g[material.Mid]
	if gain <= 0 {
		return 0, 0, 0
	}
	return gain, g[material.Low] / gain, g[material.High] / gain
}
