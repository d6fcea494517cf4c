package probe

import "github.com/resonantfield/auralcore/internal/material"

// TraceAggregate is the joined room-totals aggregate over every traced
// direction of a single TraceSoundRays probe (spec §4.4's pooled
// "room totals" plus the meanFreePath accumulation of step 6).
type TraceAggregate struct {
	RoomVolume  float64
	RoomSurface float64
	Sabine      material.Bands
	HitCount    int
	RayCount    int

	MeanFreePath float64
	EchoDelay    float64
	SplitTime    float64
	T60          material.Bands

	Degraded bool
}

// TraceSoundRaysFinish joins the per-direction TraceResults of a
// TraceSoundRays probe: room totals from first-hit contributions, and
// a true mean free path from the pooled bounce-segment lengths (spec
// §4.4 step 6: "meanFreePath += segment.length only for bouncing
// segments ... summed across all rays").
func TraceSoundRaysFinish(results []TraceResult, cfg Config) TraceAggregate {
	agg := TraceAggregate{RayCount: len(results)}

	var totalBounceLength float64
	var totalBounceSegments int

	for _, r := range results {
		if r.Cancelled {
			agg.Degraded = true
			continue
		}
		if r.Hit {
			agg.HitCount++
			agg.RoomVolume += r.RoomVolume
			agg.RoomSurface += r.RoomSurface
			agg.Sabine = agg.Sabine.Add(r.Sabine)
		}
		totalBounceLength += r.BounceLength
		totalBounceSegments += r.BounceSegments
	}

	if totalBounceSegments > 0 {
		agg.MeanFreePath = totalBounceLength / float64(totalBounceSegments)
	}
	agg.EchoDelay = agg.MeanFreePath / cfg.SoundSpeed
	agg.SplitTime = 2 * agg.EchoDelay
	agg.T60 = eyringT60(agg.RoomVolume, agg.Sabine, cfg)

	return agg
}
