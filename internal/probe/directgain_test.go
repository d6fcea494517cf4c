package probe

import (
	"math"
	"testing"

	"github.com/resonantfield/auralcore/internal/component"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

// thinWallComponent builds a two-faced wall normal to X at x=offset
// and x=offset+gap, gap meters apart, sharing one texture with the
// given absorption/thickness coefficients.
func thinWallComponent(t *testing.T, offset, gap float64, coeff material.Coefficients) *component.Component {
	t.Helper()
	front := []geom.Face{
		geom.NewFace(
			geom.Vec{X: offset, Y: -5, Z: -5},
			geom.Vec{X: offset, Y: -5, Z: 5},
			geom.Vec{X: offset, Y: 5, Z: -5},
			0, 0,
		),
		geom.NewFace(
			geom.Vec{X: offset, Y: 5, Z: -5},
			geom.Vec{X: offset, Y: -5, Z: 5},
			geom.Vec{X: offset, Y: 5, Z: 5},
			1, 0,
		),
	}
	back := []geom.Face{
		geom.NewFace(
			geom.Vec{X: offset + gap, Y: -5, Z: -5},
			geom.Vec{X: offset + gap, Y: 5, Z: -5},
			geom.Vec{X: offset + gap, Y: -5, Z: 5},
			2, 0,
		),
		geom.NewFace(
			geom.Vec{X: offset + gap, Y: 5, Z: -5},
			geom.Vec{X: offset + gap, Y: 5, Z: 5},
			geom.Vec{X: offset + gap, Y: -5, Z: 5},
			3, 0,
		),
	}
	faces := append(front, back...)
	model := component.NewModel("wall", faces, []component.Texture{component.NewTexture("wall", coeff)})
	return component.NewComponent(model, geom.Vec{}, geom.Vec{X: 1, Y: 1, Z: 1},
		geom.Vec{X: 1}, geom.Vec{Y: 1}, geom.Vec{Z: 1}, 1)
}

func TestDirectPath_EmptyWorldIsUnitGain(t *testing.T) {
	tree := worldbvh.Build(geom.Vec{}, nil)
	g := DirectPath(tree, geom.Vec{}, geom.Vec{X: 5}, DefaultConfig())
	if g != unitGain {
		t.Fatalf("DirectPath = %v, want unit gain", g)
	}
}

func TestDirectPath_ZeroThicknessWallReducesByAbsorption(t *testing.T) {
	coeff := material.Coefficients{
		Absorption: material.Bands{0.5, 0.5, 0.5},
		Thickness:  material.Bands{0, 0, 0},
	}
	c := thinWallComponent(t, 1, 0, coeff)
	tree := worldbvh.Build(geom.Vec{}, []*component.Component{c})

	g := DirectPath(tree, geom.Vec{}, geom.Vec{X: 2}, DefaultConfig())
	want := material.Bands{0.5, 0.5, 0.5}
	for i := range want {
		if math.Abs(g[i]-want[i]) > 1e-6 {
			t.Fatalf("DirectPath = %v, want %v", g, want)
		}
	}

	gain, lowRatio, highRatio := Bandpass(g)
	if math.Abs(gain-0.5) > 1e-9 {
		t.Fatalf("Bandpass gain = %v, want 0.5", gain)
	}
	if math.Abs(lowRatio-1) > 1e-9 || math.Abs(highRatio-1) > 1e-9 {
		t.Fatalf("Bandpass ratios = (%v, %v), want (1, 1)", lowRatio, highRatio)
	}
}

func TestDirectPath_ThickWallLinearStepsEachBand(t *testing.T) {
	coeff := material.Coefficients{
		Absorption: material.Bands{0.01, 0, 0},
		Thickness:  material.Bands{0.3, 0.1, 0.05},
	}
	c := thinWallComponent(t, 1, 0.1, coeff)
	tree := worldbvh.Build(geom.Vec{}, []*component.Component{c})

	g := DirectPath(tree, geom.Vec{}, geom.Vec{X: 3}, DefaultConfig())
	if math.Abs(g[material.Low]-0.653) > 1e-2 {
		t.Fatalf("gain_low = %v, want ~0.653", g[material.Low])
	}
	if g[material.Mid] > 1e-9 {
		t.Fatalf("gain_mid = %v, want ~0 (thickness reached tau_mid)", g[material.Mid])
	}
	if g[material.High] > 1e-9 {
		t.Fatalf("gain_high = %v, want 0 (thickness exceeds tau_high)", g[material.High])
	}
}
