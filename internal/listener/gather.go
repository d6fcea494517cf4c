package listener

import (
	"math"
	"sort"

	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/soundray"
)

// SphereRadius returns the radius of the listener-centered gathering
// sphere: the radius of a sphere whose area equals the per-ray
// angular footprint at the mean distance (spec §4.5 step 1). It
// returns 0 if either input is non-positive, in which case Gather
// treats direct sound as the only contribution.
func SphereRadius(meanFreePath float64, rayCount int) float64 {
	if meanFreePath <= 0 || rayCount <= 0 {
		return 0
	}
	return meanFreePath * math.Sqrt(2*math.Pi/float64(rayCount))
}

// Accumulator holds the per-band energies, minimum delays and
// weighted pan directions gathered from a sound-ray list (spec §4.5
// step 3).
type Accumulator struct {
	ReflectedGain     material.Bands
	ReverberationGain material.Bands

	ReflectionDelay    float64
	ReverberationDelay float64

	ReflectionPan    geom.Vec
	ReverberationPan geom.Vec

	HasReflection    bool
	HasReverberation bool

	// Impulses is the full impulse response (spec §3's "ordered
	// sequence of (time, gain_low, gain_mid, gain_high) impulses"),
	// including the direct-sound (bounce 0) arrival, sorted by time.
	// Debug/visualization only (internal/histogram); reverb parameters
	// above are derived from the bucketed sums, not from this list.
	Impulses []Impulse
}

// rawPan accumulates a gain-weighted directional sum and normalizes it
// on demand, mirroring the teacher's running-sum-then-normalize shape
// in SimilarityEngine.ComputeSimilarity.
type rawPan struct {
	sum    geom.Vec
	weight float64
}

func (p *rawPan) add(dir geom.Vec, weight float64) {
	p.sum = geom.Add(p.sum, geom.Scale(weight, dir))
	p.weight += weight
}

func (p rawPan) normalized() geom.Vec {
	if p.weight <= 0 {
		return geom.Vec{}
	}
	return geom.Normalize(p.sum)
}

// Gather folds every segment of every ray in list into reflected and
// reverberation energy, delay and pan, testing each segment against
// the listener's gathering sphere (spec §4.5 steps 2-3). meanFreePath
// and rayCount come from the same probe's aggregate and sphere
// radius; soundSpeed is c_sound.
func Gather(list *soundray.List, listenerPos geom.Vec, meanFreePath float64, rayCount int, soundSpeed float64) Accumulator {
	acc := Accumulator{}

	r := SphereRadius(meanFreePath, rayCount)
	if r <= 0 {
		return acc
	}

	var reflPan, revPan rawPan

	for rayIdx := range list.Rays {
		for _, seg := range list.SegmentsOf(rayIdx) {
			imp, ok := gatherSegment(seg, listenerPos, r, soundSpeed)
			if !ok {
				continue
			}
			acc.Impulses = append(acc.Impulses, imp)

			if seg.Bounce == 0 {
				// The initial cast is direct sound: it belongs in the
				// impulse response but not in the reflected/reverberant
				// buckets (spec §4.5 step 3 only names first- and
				// later-bounce impulses).
				continue
			}

			gainSum := imp.Gain[material.Low] + imp.Gain[material.Mid] + imp.Gain[material.High]

			if seg.Bounce == 1 {
				acc.ReflectedGain = acc.ReflectedGain.Add(imp.Gain)
				if !acc.HasReflection || imp.Time < acc.ReflectionDelay {
					acc.ReflectionDelay = imp.Time
				}
				acc.HasReflection = true
				reflPan.add(imp.Dir, gainSum)
				continue
			}

			acc.ReverberationGain = acc.ReverberationGain.Add(imp.Gain)
			if !acc.HasReverberation || imp.Time < acc.ReverberationDelay {
				acc.ReverberationDelay = imp.Time
			}
			acc.HasReverberation = true
			revPan.add(imp.Dir, gainSum)
		}
	}

	if acc.HasReverberation && acc.HasReflection {
		floor := acc.ReflectionDelay + 1e-3
		if acc.ReverberationDelay < floor {
			acc.ReverberationDelay = floor
		}
	}

	acc.ReflectionPan = reflPan.normalized()
	acc.ReverberationPan = revPan.normalized()

	sort.Slice(acc.Impulses, func(i, j int) bool { return acc.Impulses[i].Time < acc.Impulses[j].Time })

	return acc
}

// gatherSegment tests one segment against the listener sphere and, if
// it falls within range and within the segment's parametric range,
// produces the impulse it contributes (spec §4.5 step 2).
func gatherSegment(seg soundray.Segment, listenerPos geom.Vec, r, soundSpeed float64) (Impulse, bool) {
	toListener := geom.Sub(listenerPos, seg.Origin)
	t := geom.Dot(toListener, seg.Direction)
	if t < 0 || t > seg.Length {
		return Impulse{}, false
	}

	q := geom.Add(seg.Origin, geom.Scale(t, seg.Direction))
	if geom.Norm(geom.Sub(q, listenerPos)) > r {
		return Impulse{}, false
	}

	tau := (seg.PathLength + t - r) / soundSpeed
	gain := seg.GainOnEntry.Scale(material.DistanceAttenuation(seg.PathLength + t))
	dir := geom.Normalize(geom.Sub(q, listenerPos))

	return Impulse{Time: tau, Gain: gain, Dir: dir, Bounce: seg.Bounce}, true
}
