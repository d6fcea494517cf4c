package environment

import (
	"testing"

	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/listener"
	"github.com/resonantfield/auralcore/internal/material"
)

func TestEnvironment_FirstUpdateSnapsToGoal(t *testing.T) {
	env := New(listener.DefaultConfig())
	acc := listener.Accumulator{ReflectedGain: material.Bands{0.5, 0.5, 0.5}}

	got := env.Update(acc, material.Bands{1, 1, 1}, 0.02, geom.Identity(), false)
	want := listener.DeriveReverb(acc, material.Bands{1, 1, 1}, 0.02, geom.Identity(), listener.DefaultConfig())

	if got != want {
		t.Fatalf("first Update = %+v, want unsmoothed goal %+v", got, want)
	}
}

func TestEnvironment_SmoothsTowardGoal(t *testing.T) {
	cfg := listener.DefaultConfig()
	cfg.SmoothingFactor = 0.5
	env := New(cfg)

	zero := listener.Accumulator{}
	full := listener.Accumulator{ReflectedGain: material.Bands{1, 1, 1}}

	env.Update(zero, material.Bands{}, 0, geom.Identity(), false)
	got := env.Update(full, material.Bands{}, 0, geom.Identity(), false)

	if got.MasterGain != 0.5 {
		t.Fatalf("MasterGain = %v, want 0.5 after one 0.5-weighted blend toward 1", got.MasterGain)
	}
}

func TestEnvironment_ResetBypassesSmoothing(t *testing.T) {
	env := New(listener.DefaultConfig())
	env.Update(listener.Accumulator{}, material.Bands{}, 0, geom.Identity(), false)

	full := listener.Accumulator{ReflectedGain: material.Bands{1, 1, 1}}
	got := env.Update(full, material.Bands{}, 0, geom.Identity(), true)

	if got.MasterGain != 1 {
		t.Fatalf("MasterGain = %v, want 1 (reset should bypass smoothing)", got.MasterGain)
	}
}

func TestEnvironment_ResetMethodForcesSnapNextUpdate(t *testing.T) {
	env := New(listener.DefaultConfig())
	env.Update(listener.Accumulator{}, material.Bands{}, 0, geom.Identity(), false)
	env.Reset()

	full := listener.Accumulator{ReflectedGain: material.Bands{1, 1, 1}}
	got := env.Update(full, material.Bands{}, 0, geom.Identity(), false)

	if got.MasterGain != 1 {
		t.Fatalf("MasterGain = %v, want 1 after explicit Reset", got.MasterGain)
	}
}
