// Package probe implements the per-tick acoustic probe tasks (spec
// §4.4, §4.7): RoomEstimate, TraceSoundRays, and their finish/join
// aggregation, run concurrently over a set of pre-generated
// directions.
//
// Per-task concurrency follows the teacher's Worker
// (internal/analysis/worker.go): a pool of goroutines, atomic
// counters, and context-based cancellation. Submit/join itself uses
// golang.org/x/sync/errgroup in place of the teacher's raw
// WaitGroup-plus-channel, since every task here returns the same
// shape of result (a per-direction sample) rather than a stream of
// jobs pulled off a queue.
package probe

import "github.com/resonantfield/auralcore/internal/material"

// Config holds the tunables of spec §4.4's configuration table plus
// the ray count and speed of sound shared by every probe task.
type Config struct {
	// RayCount is the number of pre-generated unit directions N used
	// by both RoomEstimate and TraceSoundRays.
	RayCount int

	// Range is the maximum cumulative path length per ray, in meters.
	Range float64

	// AddRayMinLength is a minimum total ray path length (default
	// 0.2 m). No probe task reads it: rays are not filtered by length,
	// and short rays contribute like any other.
	AddRayMinLength float64

	// MaxBounce is the hard cap on reflection bounces per ray.
	MaxBounce int
	// MaxTransmit is the hard cap on transmitted child rays per ray.
	MaxTransmit int

	// InitialRayLength is the starting stride for the stepwise cast;
	// it doubles each time the ray reaches its end without a hit.
	InitialRayLength float64

	// ThresholdReflect: a ray dies once max-across-bands of
	// gain*distanceAttenuation falls below this.
	ThresholdReflect float64
	// ThresholdTransmit: same threshold, checked before spawning a
	// transmitted child.
	ThresholdTransmit float64

	// DetectOutsideLength is the cast length used by the final
	// is-outside check once a ray terminates.
	DetectOutsideLength float64
	// BackStepDistance nudges a continuation ray's origin past the
	// hit it spawned from, to avoid re-hitting the same face.
	BackStepDistance float64

	// SoundSpeed is c_sound in meters/second.
	SoundSpeed float64

	// GrazingScaleFactor is the Lambert-like "*2" scale-up term in
	// roomSurface += d²·(1 + (1−cosθ_out)·GrazingScaleFactor). Spec
	// §4.4/§4.7 call this term empirical; it is a Config field
	// (DefaultConfig sets 2) rather than a bare literal, so it can be
	// tuned in one place.
	GrazingScaleFactor float64

	// EstimateDistance is the listener-to-source distance beyond which
	// a probe submission uses the cheaper RoomEstimate pass instead of
	// a full TraceSoundRays (spec §4.7's "sources too far from the
	// listener to warrant a full TraceSoundRays").
	EstimateDistance float64
}

// DefaultConfig returns the tunables from spec §4.4's example values.
func DefaultConfig() Config {
	return Config{
		RayCount:            162,
		Range:               60,
		AddRayMinLength:     0.2,
		MaxBounce:           20,
		MaxTransmit:         2,
		InitialRayLength:    10,
		ThresholdReflect:    1e-3,
		ThresholdTransmit:   1e-3,
		DetectOutsideLength: 1000,
		BackStepDistance:    1e-4,
		SoundSpeed:          343,
		GrazingScaleFactor:  2,
		EstimateDistance:    30,
	}
}

// distanceAttenuation delegates to material.DistanceAttenuation, kept
// as a package-local alias so the threshold checks in
// tracesoundrays.go read the way spec §4.4 phrases them.
func distanceAttenuation(pathLength float64) float64 {
	return material.DistanceAttenuation(pathLength)
}
