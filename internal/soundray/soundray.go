// Package soundray provides the flat, per-task storage for traced sound
// rays and their bounce segments (spec §3, §4.4): root rays, transmitted
// child rays, and segments, each referencing a contiguous range into
// shared backing slices. A List is owned by exactly one probe task and
// reset between tasks rather than shared (spec §5), so unlike the
// teacher's queue.Manager (internal/queue/queue.go) it needs no mutex —
// only that slice-plus-index-range bookkeeping idiom survives here.
package soundray

import (
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
)

// Segment is one bounce (or the initial cast) of a traced ray.
type Segment struct {
	Origin      geom.Vec
	Direction   geom.Vec // unit
	Length      float64
	PathLength  float64 // cumulative distance from the root ray's origin to this segment's start
	GainOnEntry material.Bands
	Bounce      int // 0 = initial cast, 1 = first bounce, 2 = second, ...
}

// Ray is a traced half-line: either a root ray (one per cast direction)
// or a transmitted child spawned when a parent ray passed through a
// face (spec §3).
type Ray struct {
	Origin        geom.Vec
	Direction     geom.Vec // unit
	TraveledLength float64
	Bounces       int
	Transmissions int
	Gain          material.Bands
	AbsorptionSum material.Bands
	Outside       bool

	ParentRay     int // index into List.Rays, or -1 for a root ray
	FirstSegment  int
	SegmentCount  int
}

// List is the flat, per-task storage of spec §3's "sound-ray list".
type List struct {
	Rays     []Ray
	Segments []Segment
}

// New returns an empty list.
func New() *List { return &List{} }

// Reset discards all rays and segments, retaining backing capacity for
// reuse across probe tasks (spec §3: "the list is reset per probe
// task").
func (l *List) Reset() {
	l.Rays = l.Rays[:0]
	l.Segments = l.Segments[:0]
}

// AddRootRay appends a new root ray (parentRay == -1) and returns its
// index.
func (l *List) AddRootRay(origin, direction geom.Vec, gain material.Bands) int {
	l.Rays = append(l.Rays, Ray{
		Origin:       origin,
		Direction:    direction,
		Gain:         gain,
		ParentRay:    -1,
		FirstSegment: len(l.Segments),
	})
	return len(l.Rays) - 1
}

// AddChildRay appends a transmitted child of parentRay and returns its
// index (spec §3: "transmitted child rays").
func (l *List) AddChildRay(parentRay int, origin, direction geom.Vec, gain material.Bands) int {
	l.Rays = append(l.Rays, Ray{
		Origin:       origin,
		Direction:    direction,
		Gain:         gain,
		ParentRay:    parentRay,
		FirstSegment: len(l.Segments),
	})
	l.Rays[parentRay].Transmissions++
	return len(l.Rays) - 1
}

// AddSegment appends seg to rayIdx's segment range. Segments for a
// given ray must be added contiguously (no interleaving with another
// ray's segments) so the range stays contiguous, per spec §3.
func (l *List) AddSegment(rayIdx int, seg Segment) {
	if l.Rays[rayIdx].SegmentCount == 0 {
		l.Rays[rayIdx].FirstSegment = len(l.Segments)
	}
	l.Segments = append(l.Segments, seg)
	l.Rays[rayIdx].SegmentCount++
	l.Rays[rayIdx].TraveledLength += seg.Length
	l.Rays[rayIdx].Bounces = max(l.Rays[rayIdx].Bounces, seg.Bounce)
}

// SegmentsOf returns the segment range belonging to rayIdx.
func (l *List) SegmentsOf(rayIdx int) []Segment {
	r := l.Rays[rayIdx]
	return l.Segments[r.FirstSegment : r.FirstSegment+r.SegmentCount]
}
