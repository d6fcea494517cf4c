package probe

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

// RoomEstimateSample is one direction's contribution to a RoomEstimate
// probe (spec §4.7): a cheaper, single-hit-per-direction pass used for
// sources too far from the listener to warrant a full TraceSoundRays.
type RoomEstimateSample struct {
	Hit         bool
	RoomVolume  float64        // d²·d, zero if Hit is false
	RoomSurface float64        // d²·(1+(1−cosθ_out)·cfg.GrazingScaleFactor), zero if Hit is false
	Sabine      material.Bands // roomSurface-factor · α_b, zero if Hit is false
	Absorption  material.Bands // first-hit material's α_b, zero if Hit is false
	Cancelled   bool
}

// RoomEstimate casts a single direction until something is hit or
// cfg.Range is reached, and returns that direction's contribution to
// the aggregate (spec §4.7 "Algorithm").
func RoomEstimate(tree *worldbvh.Tree, origin, dir geom.Vec, cfg Config) RoomEstimateSample {
	hit, ok := worldbvh.Closest(tree, origin, dir, cfg.Range)
	if !ok {
		return RoomEstimateSample{}
	}

	d := hit.Distance
	cosOut := -geom.Dot(dir, hit.Face.Normal)
	surfaceFactor := d * d * (1 + (1-cosOut)*cfg.GrazingScaleFactor)
	coeff := hit.Component.Coefficients(hit.Face.TextureIndex)

	return RoomEstimateSample{
		Hit:         true,
		RoomVolume:  d * d * d,
		RoomSurface: surfaceFactor,
		Sabine:      coeff.Absorption.Scale(surfaceFactor),
		Absorption:  coeff.Absorption,
	}
}

// RoomEstimateResult is the joined, per-probe aggregate of spec §4.7's
// "Aggregation" step.
type RoomEstimateResult struct {
	RoomVolume    float64
	RoomSurface   float64
	Sabine        material.Bands
	AvgAbsorption material.Bands
	HitCount      int
	RayCount      int

	T60          material.Bands
	MeanFreePath float64
	EchoDelay    float64
	SplitTime    float64

	// SurfaceVariance is the sample variance of per-direction
	// roomSurface contributions across hit rays, a Monte-Carlo
	// dispersion estimate for the roomSurface aggregate (spec §8
	// scenario 3 calls out "± 10% (Monte-Carlo variance)" as an
	// expected property of this estimator).
	SurfaceVariance float64

	// Degraded is set once any contributing sample was cancelled
	// (spec §7: "the aggregator treats the cancelled task's
	// contribution as zero and marks the probe result as degraded").
	Degraded bool
}

// RoomEstimateFinish joins every per-direction RoomEstimate sample
// into the aggregate room estimate (spec §4.7's finish task). Un-hit
// rays are treated as "absorption 1 at range" so mean absorption
// climbs in open scenes: each contributes a full 1.0 per band to the
// avgAbsorption sum, but (having no real surface) nothing to
// roomVolume/roomSurface/sabine.
func RoomEstimateFinish(samples []RoomEstimateSample, cfg Config) RoomEstimateResult {
	res := RoomEstimateResult{RayCount: len(samples)}
	if len(samples) == 0 {
		return res
	}

	var surfaceSamples []float64
	var absorptionSum material.Bands

	for _, s := range samples {
		if s.Cancelled {
			res.Degraded = true
			continue
		}
		if !s.Hit {
			absorptionSum = absorptionSum.Add(material.Bands{1, 1, 1})
			continue
		}
		res.HitCount++
		res.RoomVolume += s.RoomVolume
		res.RoomSurface += s.RoomSurface
		res.Sabine = res.Sabine.Add(s.Sabine)
		absorptionSum = absorptionSum.Add(s.Absorption)
		surfaceSamples = append(surfaceSamples, s.RoomSurface)
	}

	res.AvgAbsorption = absorptionSum.Scale(1 / float64(res.RayCount))

	if len(surfaceSamples) > 1 {
		_, res.SurfaceVariance = stat.MeanVariance(surfaceSamples, nil)
	}

	res.T60 = eyringT60(res.RoomVolume, res.Sabine, cfg)

	// meanFreePath = 4V/S, the classical room-acoustics mean free
	// path (spec §8 scenario 3 confirms this exact formula:
	// "meanFreePath ≈ 4·V/S").
	if res.RoomSurface > 0 {
		res.MeanFreePath = 4 * res.RoomVolume / res.RoomSurface
	}
	res.EchoDelay = res.MeanFreePath / cfg.SoundSpeed

	// Split-time separating early reflections from late reverberation:
	// taken as twice the mean free path's transit time (spec §4.7
	// names the output but not its formula; see DESIGN.md's Open
	// Question decision).
	res.SplitTime = 2 * res.EchoDelay

	return res
}

// eyringT60 computes the per-band Eyring reverberation time (spec
// §4.5 step 4), clamped to [0.1, 20] seconds.
func eyringT60(roomVolume float64, sabine material.Bands, cfg Config) material.Bands {
	eyringConst := 24 * math.Log(10) / cfg.SoundSpeed // ≈0.1611 at c_sound=343 (spec §4.5 step 4)
	var out material.Bands
	for i := 0; i < material.NumBands; i++ {
		if sabine[i] <= 0 {
			out[i] = 20
			continue
		}
		t60 := eyringConst * roomVolume / sabine[i]
		if t60 < 0.1 {
			t60 = 0.1
		}
		if t60 > 20 {
			t60 = 20
		}
		out[i] = t60
	}
	return out
}
