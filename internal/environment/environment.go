// Package environment wraps the stateless listener gather/derive
// functions (internal/listener) with the per-source state spec §4.5
// step 6 needs: each audio source has its own Environment, carrying
// its own previous-frame Reverb to smooth toward, since the
// exponential smoother has no memory of listener position and
// sources are gathered independently.
//
// The smoothing idiom itself is the teacher's
// internal/audio/analyzer.go smoothingFactor*previous +
// (1-smoothingFactor)*goal blend, applied here to a Reverb's eleven
// scalars and two pan vectors instead of a spectrum's frequency bins.
package environment

import (
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/listener"
	"github.com/resonantfield/auralcore/internal/material"
)

// Environment holds one audio source's frame-to-frame reverb state.
type Environment struct {
	cfg  listener.Config
	prev listener.Reverb
	init bool
}

// New returns an Environment using cfg's smoothing factor and EAX
// user-gain factors.
func New(cfg listener.Config) *Environment {
	return &Environment{cfg: cfg}
}

// Update folds this frame's gather accumulator and room acoustics
// into an EAX reverb result, smoothed toward the previous frame's
// value. reset bypasses smoothing for one frame (spec §4.5 step 6:
// "a reset flag (new source, scene change) bypasses smoothing for one
// frame").
func (e *Environment) Update(acc listener.Accumulator, t60 material.Bands, echoDelay float64, orientation geom.Mat4, reset bool) listener.Reverb {
	goal := listener.DeriveReverb(acc, t60, echoDelay, orientation, e.cfg)

	if reset || !e.init {
		e.prev = goal
		e.init = true
		return e.prev
	}

	f := e.cfg.SmoothingFactor
	g := 1 - f

	out := listener.Reverb{
		MasterGain: f*e.prev.MasterGain + g*goal.MasterGain,
		GainLF:     f*e.prev.GainLF + g*goal.GainLF,
		GainHF:     f*e.prev.GainHF + g*goal.GainHF,

		DecayTime:    f*e.prev.DecayTime + g*goal.DecayTime,
		DecayLFRatio: f*e.prev.DecayLFRatio + g*goal.DecayLFRatio,
		DecayHFRatio: f*e.prev.DecayHFRatio + g*goal.DecayHFRatio,

		ReflectionsGain:  f*e.prev.ReflectionsGain + g*goal.ReflectionsGain,
		ReflectionsDelay: f*e.prev.ReflectionsDelay + g*goal.ReflectionsDelay,
		LateReverbGain:   f*e.prev.LateReverbGain + g*goal.LateReverbGain,
		LateReverbDelay:  f*e.prev.LateReverbDelay + g*goal.LateReverbDelay,
		EchoTime:         f*e.prev.EchoTime + g*goal.EchoTime,

		ReflectionsPan: geom.Lerp(e.prev.ReflectionsPan, goal.ReflectionsPan, g),
		LateReverbPan:  geom.Lerp(e.prev.LateReverbPan, goal.LateReverbPan, g),
	}

	e.prev = out
	return out
}

// Reset forces the next Update call to snap to its goal rather than
// smoothing, without needing the caller to thread a reset flag
// through an extra frame.
func (e *Environment) Reset() {
	e.init = false
}
