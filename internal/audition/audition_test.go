package audition

import (
	"testing"

	"github.com/resonantfield/auralcore/internal/listener"
)

func TestSynthesize_StartsWithAClick(t *testing.T) {
	r := listener.Reverb{ReflectionsGain: 0.5, LateReverbGain: 0.3, DecayTime: 1, LateReverbDelay: 0.02}
	pcm := synthesize(r)

	if len(pcm) == 0 {
		t.Fatal("expected non-empty PCM output")
	}

	v := int16(pcm[0]) | int16(pcm[1])<<8
	if v <= 0 {
		t.Fatalf("expected a positive click sample at t=0, got %v", v)
	}
}

func TestSynthesize_OutputLengthMatchesDuration(t *testing.T) {
	r := listener.Reverb{DecayTime: 1}
	pcm := synthesize(r)

	wantSamples := int(duration * sampleRate)
	wantBytes := wantSamples * channels * bitDepth
	if len(pcm) != wantBytes {
		t.Fatalf("len(pcm) = %v, want %v", len(pcm), wantBytes)
	}
}

func TestEncodePCM_ClampsOutOfRangeSamples(t *testing.T) {
	pcm := encodePCM([]float64{2, -2})
	if len(pcm) != 2*channels*bitDepth {
		t.Fatalf("unexpected PCM length %v", len(pcm))
	}
	if v := int16(pcm[0]) | int16(pcm[1])<<8; v != 32767 {
		t.Fatalf("sample 2 encoded as %v, want clamped 32767", v)
	}
	off := channels * bitDepth
	if v := int16(pcm[off]) | int16(pcm[off+1])<<8; v != -32767 {
		t.Fatalf("sample -2 encoded as %v, want clamped -32767", v)
	}
}
