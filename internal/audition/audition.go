// Package audition is a debug-only tool: it synthesizes a short noise
// burst shaped by a computed Reverb result and plays it through the
// default audio output, so a developer can listen to a probe result
// instead of only reading its numbers. Not part of the engine's
// external interface.
//
// Grounded directly on the teacher's internal/audio/output.go
// OtoOutput: an oto.Context plus a buffered io.Reader player, stripped
// of the pause/resume/analyzer machinery a one-shot preview doesn't
// need.
package audition

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"

	"github.com/hajimehoshi/oto/v2"

	"github.com/resonantfield/auralcore/internal/listener"
)

const (
	sampleRate = 44100
	channels   = 2
	bitDepth   = 2
	duration   = 1.5 // seconds of synthesized tail
)

// Preview plays one synthesized Reverb result at a time.
type Preview struct {
	ctx    *oto.Context
	player oto.Player
	buffer *bytes.Buffer
}

// NewPreview creates an oto output context for one-shot debug preview
// playback.
func NewPreview() (*Preview, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channels, bitDepth)
	if err != nil {
		return nil, fmt.Errorf("audition: failed to create oto context: %w", err)
	}
	<-ready

	buffer := &bytes.Buffer{}
	p := &Preview{ctx: ctx, buffer: buffer}
	p.player = ctx.NewPlayer(buffer)
	return p, nil
}

// Play synthesizes r as a click followed by a decaying noise tail and
// starts it playing. It does not block for
// playback to finish.
func (p *Preview) Play(r listener.Reverb) {
	p.buffer.Reset()
	p.buffer.Write(synthesize(r))
	if !p.player.IsPlaying() {
		p.player.Play()
	}
}

// IsPlaying reports whether the last Play call's audio is still
// sounding.
func (p *Preview) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Close releases the preview's audio resources.
func (p *Preview) Close() error {
	return p.player.Close()
}

// synthesize renders r into 16-bit stereo PCM: a unit click at t=0,
// then noise from the next sample up to lateReverbDelay with envelope
// ReflectionsGain·exp(-t/(DecayTime/4)), then noise with envelope
// LateReverbGain·exp(-t/DecayTime) to the end. The noise amplitude
// depends only on the sample index (see bandedNoise); the per-band
// gains GainLF/GainHF are not used.
func synthesize(r listener.Reverb) []byte {
	n := int(duration * sampleRate)
	samples := make([]float64, n)

	samples[0] += 1.0

	earlyEnd := int(r.LateReverbDelay * sampleRate)
	if earlyEnd > n {
		earlyEnd = n
	}
	for i := 1; i < earlyEnd; i++ {
		t := float64(i) / sampleRate
		env := r.ReflectionsGain * math.Exp(-t/max(r.DecayTime*0.25, 1e-3))
		samples[i] += env * bandedNoise(i)
	}

	for i := earlyEnd; i < n; i++ {
		t := float64(i) / sampleRate
		env := r.LateReverbGain * math.Exp(-t/max(r.DecayTime, 1e-3))
		samples[i] += env * bandedNoise(i)
	}

	return encodePCM(samples)
}

func bandedNoise(i int) float64 {
	v := rand.Float64()*2 - 1
	switch {
	case i%4 == 0:
		return v // every fourth sample: full amplitude
	case i%2 == 0:
		return v * 0.5 // remaining even samples: half amplitude
	default:
		return v * 0.25 // odd samples: quarter amplitude
	}
}

func encodePCM(samples []float64) []byte {
	out := make([]byte, len(samples)*channels*bitDepth)
	for i, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * bitDepth
			out[off] = byte(v)
			out[off+1] = byte(v >> 8)
		}
	}
	return out
}
