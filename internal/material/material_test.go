package material

import (
	"math"
	"testing"
)

func TestTransmissionGainBoundaries(t *testing.T) {
	c := Coefficients{
		Absorption: Bands{0.5, 0.2, 0.0},
		Thickness:  Bands{0.3, 0.3, 0.3},
	}
	incoming := Bands{1, 1, 1}

	at0 := c.TransmissionGain(incoming, 0)
	want0 := Bands{1 - 0.5, 1 - 0.2, 1 - 0.0}
	for i := range at0 {
		if math.Abs(at0[i]-want0[i]) > 1e-9 {
			t.Errorf("band %d at t=0: got %v want %v", i, at0[i], want0[i])
		}
	}

	atTau := c.TransmissionGain(incoming, 0.3)
	for i := range atTau {
		if atTau[i] != 0 {
			t.Errorf("band %d at t=tau: got %v want 0", i, atTau[i])
		}
	}

	beyond := c.TransmissionGain(incoming, 10)
	for i := range beyond {
		if beyond[i] != 0 {
			t.Errorf("band %d beyond tau: got %v want 0", i, beyond[i])
		}
	}
}

func TestReflectedGainNeverNegative(t *testing.T) {
	c := Coefficients{Absorption: Bands{0.9, 0.9, 0.9}, Thickness: Bands{1, 1, 1}}
	incoming := Bands{1, 1, 1}
	transmitted := Bands{1, 1, 1} // deliberately larger than (1-a)*incoming
	got := c.ReflectedGain(incoming, transmitted)
	for i := range got {
		if got[i] < 0 {
			t.Errorf("band %d reflected gain went negative: %v", i, got[i])
		}
	}
}

func TestNoEffectDoesNotAffectSound(t *testing.T) {
	if NoEffect.AffectsSound() {
		t.Fatal("NoEffect coefficients should not affect sound")
	}
	gain := NoEffect.TransmissionGain(Bands{1, 1, 1}, 1e6)
	for i := range gain {
		if math.Abs(gain[i]-1) > 1e-9 {
			t.Errorf("band %d: NoEffect attenuated transmission: %v", i, gain[i])
		}
	}
}

func TestAffectsSoundTrueCases(t *testing.T) {
	onlyAbsorption := Coefficients{
		Absorption: Bands{0, 0.1, 0},
		Thickness:  Bands{math.Inf(1), math.Inf(1), math.Inf(1)},
	}
	if !onlyAbsorption.AffectsSound() {
		t.Error("nonzero absorption should affect sound")
	}

	onlyThickness := Coefficients{Thickness: Bands{0.5, math.Inf(1), math.Inf(1)}}
	if !onlyThickness.AffectsSound() {
		t.Error("finite thickness should affect sound")
	}
}

func TestMaxPenetrationDepthSkipsFullAbsorption(t *testing.T) {
	c := Coefficients{
		Absorption: Bands{1, 0, 0.5},
		Thickness:  Bands{5, 2, 3},
	}
	got := c.MaxPenetrationDepth()
	if got != 3 {
		t.Errorf("got %v, want 3 (band 0 fully absorbs and is excluded)", got)
	}
}

func TestClampBounds(t *testing.T) {
	c := Coefficients{
		Absorption: Bands{-1, 2, 0.5},
		Thickness:  Bands{-3, 1, 2},
	}
	got := c.Clamp()
	if got.Absorption[0] != 0 || got.Absorption[1] != 1 || got.Absorption[2] != 0.5 {
		t.Errorf("absorption clamp failed: %v", got.Absorption)
	}
	if got.Thickness[0] != 0 {
		t.Errorf("thickness floor failed: %v", got.Thickness)
	}
}

func TestBandsHelpers(t *testing.T) {
	a := Bands{1, 5, 3}
	if a.Max() != 5 {
		t.Errorf("Max: got %v want 5", a.Max())
	}
	scaled := a.Scale(2)
	if scaled != (Bands{2, 10, 6}) {
		t.Errorf("Scale: got %v", scaled)
	}
	b := Bands{2, 1, 10}
	sub := a.Sub(b)
	if sub != (Bands{0, 4, 0}) {
		t.Errorf("Sub floor: got %v", sub)
	}
}
