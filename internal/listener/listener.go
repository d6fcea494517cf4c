// Package listener implements spec §4.5's listener-side
// sphere-gathering: folding the pooled ray/segment list from a
// TraceSoundRays probe into reflected/reverberation energy, delays
// and pan, then deriving EAX-style reverb parameters and
// frame-to-frame smoothing them.
//
// The accumulate-then-normalize shape mirrors the teacher's
// SimilarityEngine.ComputeSimilarity (internal/analysis/similarity.go):
// there, per-feature distances are weighted and summed before
// normalizing into one similarity score; here, per-impulse energies
// are weighted and summed before normalizing into pan directions and
// EAX gains.
package listener

import (
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
)

// Impulse is one (time, per-band gain) arrival produced by
// sphere-gathering a single segment against the listener sphere
// (spec §4.5 step 2).
type Impulse struct {
	Time   float64
	Gain   material.Bands
	Dir    geom.Vec // unit direction from the listener to the arrival
	Bounce int
}
