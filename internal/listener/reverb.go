package listener

import (
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
)

// Reverb is the EAX-style parameter set derived from a sphere-gather
// accumulator (spec §4.5 step 5): eleven comparable scalars plus two
// pan vectors, the exact shape step 6's smoother operates on.
type Reverb struct {
	MasterGain float64
	GainLF     float64
	GainHF     float64

	DecayTime     float64
	DecayLFRatio  float64
	DecayHFRatio  float64

	ReflectionsGain  float64
	ReflectionsDelay float64
	LateReverbGain   float64
	LateReverbDelay  float64
	EchoTime         float64

	ReflectionsPan geom.Vec
	LateReverbPan  geom.Vec
}

// clampRange restricts v to [lo, hi], the shape every EAX/EFX
// hardware-range clamp in this file shares. Scenario 4 (spec §8) spells
// out echoTime's own range, [0.075, 0.25]; the rest follow the real
// EAX/EFX eaxreverb property ranges, since spec §4.5 step 5 names "the
// hardware range" without giving bounds of its own.
func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUnit(v float64) float64 { return clampRange(v, 0, 1) }

// DeriveReverb maps a gather accumulator plus the probe's T60 and
// echo delay into EAX parameters (spec §4.5 steps 4-5). orientation
// is the listener's world-to-local rotation, applied to the
// accumulated pan vectors ("inverse-listener-orientation ·
// accumulated pan").
func DeriveReverb(acc Accumulator, t60 material.Bands, echoDelay float64, orientation geom.Mat4, cfg Config) Reverb {
	var combinedMax material.Bands
	for i := 0; i < material.NumBands; i++ {
		combinedMax[i] = max(acc.ReflectedGain[i], acc.ReverberationGain[i])
	}

	out := Reverb{}
	out.MasterGain = clampUnit(combinedMax.Max())

	if out.MasterGain > 0 {
		out.GainLF = clampUnit(combinedMax[material.Low] / out.MasterGain)
		out.GainHF = clampUnit(combinedMax[material.High] / out.MasterGain)
		out.ReflectionsGain = clampRange(acc.ReflectedGain.Max()/out.MasterGain*cfg.UserReflectionsFactor, 0, 3.16)
		out.LateReverbGain = clampRange(acc.ReverberationGain.Max()/out.MasterGain*cfg.UserLateReverbFactor, 0, 10)
	}

	out.DecayTime = clampRange(t60.Max(), 0.1, 20)
	out.DecayLFRatio = clampRange(t60[material.Low]/out.DecayTime, 0.1, 2.0)
	out.DecayHFRatio = clampRange(t60[material.High]/out.DecayTime, 0.1, 2.0)

	out.ReflectionsDelay = clampRange(acc.ReflectionDelay, 0, 0.3)
	out.LateReverbDelay = clampRange(acc.ReverberationDelay, 0, 0.1)
	out.EchoTime = clampRange(echoDelay, 0.075, 0.25)

	out.ReflectionsPan = orientation.TransformDirection(acc.ReflectionPan)
	out.LateReverbPan = orientation.TransformDirection(acc.ReverberationPan)

	return out
}
