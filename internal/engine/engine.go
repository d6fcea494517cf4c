// Package engine implements the external interface of spec §6: the
// facade the embedding audio module drives once per tick to set the
// scene, begin a tick against a listener, submit one probe per sound
// source, join the tick's outstanding work, and read back each
// source's direct-path gain and reverb parameters.
//
// Grounded on the teacher's internal/ipc.Server: one struct owning
// every subsystem (here the scene's components, the per-tick world
// BVH, and a per-source Environment registry) behind a small set of
// exported methods, the way Server owns the player/queue/config
// managers behind Start/playNextTrack/etc. The scene's component list
// uses the same RWMutex-guarded-slice shape as
// internal/queue/queue.go's Manager, retargeted from a playback queue
// to a set_scene registry.
package engine

import (
	"sync"

	"github.com/resonantfield/auralcore/internal/component"
	"github.com/resonantfield/auralcore/internal/config"
	"github.com/resonantfield/auralcore/internal/environment"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

// Engine owns the current scene, the current tick's world BVH, and
// every source's persistent smoothing state.
type Engine struct {
	cfg *config.Config

	sceneMu    sync.RWMutex
	components []*component.Component

	tickMu              sync.Mutex
	tree                *worldbvh.Tree
	listenerPos         geom.Vec
	listenerOrientation geom.Mat4
	tickRange           float64

	envMu        sync.Mutex
	environments map[string]*environment.Environment

	batchMu sync.Mutex
	batch   *probeBatch
}

// New returns an engine configured by cfg. cfg is kept by pointer:
// cfg.Probe and cfg.Histogram are read at each SubmitProbe, so updating
// them between ticks takes effect on the next submission. cfg.Listener
// is copied into a source's Environment when that source is first
// submitted; later changes to it do not reach existing sources.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:          cfg,
		environments: make(map[string]*environment.Environment),
	}
}

// SetScene replaces the scene's components (spec §6 "set_scene(components,
// layer_mask)"), keeping only those whose layer mask intersects
// layerMask. A zero layerMask keeps every component, matching the
// "no filter configured yet" case a fresh scene starts in.
func (e *Engine) SetScene(components []*component.Component, layerMask uint32) {
	filtered := make([]*component.Component, 0, len(components))
	for _, c := range components {
		if layerMask == 0 || c.LayerMask&layerMask != 0 {
			filtered = append(filtered, c)
		}
	}

	e.sceneMu.Lock()
	e.components = filtered
	e.sceneMu.Unlock()
}

// PerTickBegin builds the tick's WorldBVH around listenerPos, from
// only the sound-affecting components within rangeM (spec §4.3's "the
// listener world position and the set of sound-affecting components
// within range", §6 "per_tick_begin"). It must be called, and any
// prior tick's JoinAll awaited, before the next SubmitProbe — the core
// assumes a barrier at tick boundaries (spec §5 "Ordering"). A
// rangeM <= 0 keeps every sound-affecting component regardless of
// distance.
func (e *Engine) PerTickBegin(listenerPos geom.Vec, listenerOrientation geom.Mat4, rangeM float64) {
	e.sceneMu.RLock()
	components := e.components
	e.sceneMu.RUnlock()

	inRange := make([]*component.Component, 0, len(components))
	for _, c := range components {
		if !c.AffectsSound() {
			continue
		}
		if rangeM > 0 && aabbDistance(c.WorldExtents(), listenerPos) > rangeM {
			continue
		}
		inRange = append(inRange, c)
	}

	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	e.tree = worldbvh.Build(listenerPos, inRange)
	e.listenerPos = listenerPos
	e.listenerOrientation = listenerOrientation
	e.tickRange = rangeM

	e.batchMu.Lock()
	e.batch = newProbeBatch()
	e.batchMu.Unlock()
}

// aabbDistance returns the distance from p to its closest point on
// box, 0 if p is inside box.
func aabbDistance(box geom.AABB, p geom.Vec) float64 {
	min, max := box.Min(), box.Max()
	d := geom.Vec{
		X: clampedAxisDistance(p.X, min.X, max.X),
		Y: clampedAxisDistance(p.Y, min.Y, max.Y),
		Z: clampedAxisDistance(p.Z, min.Z, max.Z),
	}
	return geom.Norm(d)
}

func clampedAxisDistance(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

// sourceEnvironment returns sourceID's persistent Environment,
// creating one on first use (spec's "per-source compound: direct-path
// + environment; exponential smoothing of listener result across
// frames").
func (e *Engine) sourceEnvironment(sourceID string) *environment.Environment {
	e.envMu.Lock()
	defer e.envMu.Unlock()

	env, ok := e.environments[sourceID]
	if !ok {
		env = environment.New(e.cfg.Listener)
		e.environments[sourceID] = env
	}
	return env
}

// ResetSource discards sourceID's smoothing memory, so its next result
// snaps to the freshly derived goal instead of blending from a stale
// previous frame (useful when a source just started playing or
// teleported).
func (e *Engine) ResetSource(sourceID string) {
	e.envMu.Lock()
	defer e.envMu.Unlock()
	if env, ok := e.environments[sourceID]; ok {
		env.Reset()
	}
}
