package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/resonantfield/auralcore/internal/config"
	"github.com/resonantfield/auralcore/internal/environment"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/histogram"
	"github.com/resonantfield/auralcore/internal/listener"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/probe"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

// Handle identifies one submitted probe within the current tick (spec
// §6 "submit_probe(...) → probe_handle").
type Handle uint64

// Result is the finished probe a caller reads back via Result (spec §6
// "result(probe_handle) → {gain_lmh, bandpass_lmh, reverb_params}").
type Result struct {
	// Gain is the direct-path per-band transmission gain between the
	// source and the listener (spec §2 item 1, §6's gain_lmh).
	Gain material.Bands

	// BandpassGain/LowRatio/HighRatio reduce Gain to the broadband
	// scalar plus low/high rolloff ratios an OpenAL-style direct-path
	// filter expects (spec §6's bandpass_lmh).
	BandpassGain     float64
	BandpassLowRatio float64
	BandpassHighRatio float64

	// Reverb is the source's smoothed reverb parameters (spec §4.5,
	// §6's reverb_params).
	Reverb listener.Reverb

	// Histogram is the debug energy histogram built from this probe's
	// impulse response, nil for an estimate-mode probe (spec §3's
	// "used only for debug/visualization").
	Histogram *histogram.Histogram

	// Degraded reports whether any contributing task was cancelled
	// (spec §7's "aggregator ... marks the probe result as degraded").
	Degraded bool

	// Estimate reports whether this probe used the cheaper RoomEstimate
	// pass instead of a full TraceSoundRays (spec §4.7).
	Estimate bool
}

// probeBatch holds one tick's outstanding probe submissions: an
// errgroup to join and a handle-keyed result map, mirroring the
// teacher's internal/analysis.Worker pairing a job group with a
// results slice guarded by its own mutex.
type probeBatch struct {
	group *errgroup.Group
	ctx   context.Context

	mu      sync.Mutex
	results map[Handle]Result
	next    Handle
}

func newProbeBatch() *probeBatch {
	g, ctx := errgroup.WithContext(context.Background())
	return &probeBatch{group: g, ctx: ctx, results: make(map[Handle]Result)}
}

// SubmitProbe queues one source's probe: a direct-path gain plus a
// listener-centric room probe (spec §4.4 or, past cfg.EstimateDistance,
// the cheaper §4.7 RoomEstimate), applied through the source's
// persistent Environment smoother (spec §6 "submit_probe(source_id,
// source_position, config) → probe_handle"). cfg overrides the
// engine's configured probe tunables for this submission only; pass
// the zero value to reuse the engine's own.
func (e *Engine) SubmitProbe(sourceID string, sourcePos geom.Vec, cfg probe.Config) (Handle, error) {
	e.tickMu.Lock()
	tree := e.tree
	listenerPos := e.listenerPos
	orientation := e.listenerOrientation
	tickRange := e.tickRange
	e.tickMu.Unlock()

	if tree == nil {
		return 0, fmt.Errorf("engine: SubmitProbe called before PerTickBegin")
	}

	if cfg == (probe.Config{}) {
		cfg = e.cfg.Probe
	}
	if tickRange > 0 {
		cfg.Range = tickRange
	}

	e.batchMu.Lock()
	batch := e.batch
	e.batchMu.Unlock()
	if batch == nil {
		return 0, fmt.Errorf("engine: SubmitProbe called before PerTickBegin")
	}

	batch.mu.Lock()
	batch.next++
	handle := batch.next
	batch.mu.Unlock()

	env := e.sourceEnvironment(sourceID)
	listenerCfg := e.cfg.Listener
	histCfg := e.cfg.Histogram

	batch.group.Go(func() error {
		relSource := geom.Sub(sourcePos, listenerPos)
		result := runProbe(batch.ctx, tree, relSource, cfg, listenerCfg, histCfg, orientation, env)

		batch.mu.Lock()
		batch.results[handle] = result
		batch.mu.Unlock()
		return nil
	})

	return handle, nil
}

// runProbe performs one source's probe work: direct-path gain, the
// listener-centric reflection/reverberation probe (full or estimate,
// per distance), and the source's smoothed reverb parameters. tree,
// listener position and orientation are all listener-relative/local:
// relSource is the source position relative to the listener, and the
// tree itself was built around the listener (spec §4.3), matching
// every probe.* entry point's own origin-at-listener convention.
func runProbe(
	ctx context.Context,
	tree *worldbvh.Tree,
	relSource geom.Vec,
	cfg probe.Config,
	listenerCfg listener.Config,
	histCfg config.HistogramConfig,
	orientation geom.Mat4,
	env *environment.Environment,
) Result {
	gain := probe.DirectPath(tree, geom.Vec{}, relSource, cfg)
	bandpassGain, lowRatio, highRatio := probe.Bandpass(gain)

	result := Result{
		Gain:              gain,
		BandpassGain:      bandpassGain,
		BandpassLowRatio:  lowRatio,
		BandpassHighRatio: highRatio,
	}

	scheduler := probe.NewScheduler(cfg)
	distance := geom.Norm(relSource)

	var acc listener.Accumulator
	var t60 material.Bands
	var echoDelay float64

	if cfg.EstimateDistance > 0 && distance > cfg.EstimateDistance {
		result.Estimate = true
		estimate := scheduler.RunRoomEstimate(ctx, tree)
		result.Degraded = estimate.Degraded
		t60 = estimate.T60
		echoDelay = estimate.EchoDelay
	} else {
		list, agg := scheduler.RunTraceSoundRays(ctx, tree)
		result.Degraded = agg.Degraded
		t60 = agg.T60
		echoDelay = agg.EchoDelay
		acc = listener.Gather(list, geom.Vec{}, agg.MeanFreePath, cfg.RayCount, cfg.SoundSpeed)

		if histCfg.BinCount > 0 {
			h := histogram.New(histCfg.BinCount, histCfg.Span)
			h.Accumulate(acc.Impulses)
			result.Histogram = h
		}
	}

	result.Reverb = env.Update(acc, t60, echoDelay, orientation, false)
	return result
}

// JoinAll blocks until every probe submitted since the last
// PerTickBegin has finished (spec §6 "join_all() → void"), matching
// spec §5's "results from tick N must be joined before tick N+1 begins
// submitting".
func (e *Engine) JoinAll() error {
	e.batchMu.Lock()
	batch := e.batch
	e.batchMu.Unlock()
	if batch == nil {
		return nil
	}
	return batch.group.Wait()
}

// Result reads back a finished probe (spec §6 "result(probe_handle)").
// ok is false if the handle is unknown or its probe hasn't finished
// (JoinAll not yet called).
func (e *Engine) Result(h Handle) (Result, bool) {
	e.batchMu.Lock()
	batch := e.batch
	e.batchMu.Unlock()
	if batch == nil {
		return Result{}, false
	}

	batch.mu.Lock()
	defer batch.mu.Unlock()
	r, ok := batch.results[h]
	return r, ok
}
