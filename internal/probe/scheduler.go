package probe

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/soundray"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

// Scheduler submits one task per pre-generated direction and joins
// them (spec §5): tasks are CPU-bound with no cooperative suspension
// beyond the RayCache's brief lock, so submit/join is a plain
// errgroup fan-out/fan-in rather than the teacher's job-channel
// worker pool (internal/analysis/worker.go) — there's no queue of
// heterogeneous jobs here, just N identical per-direction tasks.
type Scheduler struct {
	Config Config
}

// NewScheduler returns a scheduler that runs every task it submits
// with cfg.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{Config: cfg}
}

// RunRoomEstimate submits one RoomEstimate task per configured
// direction against tree (already built relative to the listener
// position), joins them, and returns the finished aggregate (spec
// §4.7). A task observing ctx cancelled before it starts contributes a
// cancelled sample rather than aborting its siblings, matching spec
// §7's "aggregator treats the cancelled task's contribution as zero
// and marks the probe result as degraded".
func (s *Scheduler) RunRoomEstimate(ctx context.Context, tree *worldbvh.Tree) RoomEstimateResult {
	directions := FibonacciSphere(s.Config.RayCount)
	samples := make([]RoomEstimateSample, len(directions))

	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range directions {
		i, dir := i, dir
		g.Go(func() error {
			if gctx.Err() != nil {
				samples[i] = RoomEstimateSample{Cancelled: true}
				return nil
			}
			samples[i] = RoomEstimate(tree, geom.Vec{}, dir, s.Config)
			return nil
		})
	}
	_ = g.Wait() // task bodies never fail; join just waits for every goroutine to finish writing its slot

	return RoomEstimateFinish(samples, s.Config)
}

// RunTraceSoundRays submits one TraceSoundRays task per configured
// direction against tree, joins their per-direction lists into one
// merged soundray.List, and returns it alongside the finished
// room-totals aggregate (spec §4.4).
func (s *Scheduler) RunTraceSoundRays(ctx context.Context, tree *worldbvh.Tree) (*soundray.List, TraceAggregate) {
	directions := FibonacciSphere(s.Config.RayCount)
	results := make([]TraceResult, len(directions))
	lists := make([]*soundray.List, len(directions))

	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range directions {
		i, dir := i, dir
		g.Go(func() error {
			lists[i] = soundray.New()
			results[i] = TraceSoundRays(gctx, tree, geom.Vec{}, dir, s.Config, lists[i])
			return nil
		})
	}
	_ = g.Wait()

	merged := mergeLists(lists)
	return merged, TraceSoundRaysFinish(results, s.Config)
}

// mergeLists concatenates per-direction soundray.Lists into one,
// rewriting each ray's ParentRay and segment-range offsets into the
// merged list's index space.
func mergeLists(lists []*soundray.List) *soundray.List {
	merged := soundray.New()
	for _, l := range lists {
		if l == nil {
			continue
		}
		rayOffset := len(merged.Rays)
		segOffset := len(merged.Segments)
		for _, r := range l.Rays {
			if r.ParentRay >= 0 {
				r.ParentRay += rayOffset
			}
			r.FirstSegment += segOffset
			merged.Rays = append(merged.Rays, r)
		}
		merged.Segments = append(merged.Segments, l.Segments...)
	}
	return merged
}
