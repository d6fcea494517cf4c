// Package raycache implements the per-model ray cache of spec §4.6: a
// thread-safe store mapping (origin, direction, length) fingerprints to
// a previously computed all-hits result, spatially indexed so lookup
// doesn't degrade to a linear scan as entries accumulate.
//
// The reader/writer lock around an in-memory store mirrors the
// teacher's FeatureStore (internal/analysis/db.go), retargeted from a
// map keyed by track path to a kd-tree keyed by 3D origin.
package raycache

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/resonantfield/auralcore/internal/geom"
)

// DefaultCacheRange is the default origin-proximity match radius, in
// meters (spec §4.6).
const DefaultCacheRange = 0.1

// DefaultSpreadAngle is the default direction-cone match angle.
const DefaultSpreadAngle = 0.5 * math.Pi / 180

// lengthSlack is the tolerance subtracted from a query's length before
// comparing against a candidate entry's usable length (spec §4.6: "1
// mm").
const lengthSlack = 1e-3

// Entry is one cached ray: its casting origin, unit direction, usable
// length, and the all-hits result along it.
type Entry struct {
	Origin    geom.Vec
	Direction geom.Vec
	Length    float64
	Hits      []geom.Hit
}

// entryPoint adapts an *Entry to kdtree.Comparable, indexing purely by
// origin position; direction and length compatibility are checked by
// the caller once a spatial candidate is found.
type entryPoint struct {
	entry *Entry
}

func (p entryPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	o := c.(entryPoint)
	return geom.Component(p.entry.Origin, int(d)) - geom.Component(o.entry.Origin, int(d))
}

func (p entryPoint) Dims() int { return 3 }

func (p entryPoint) Distance(c kdtree.Comparable) float64 {
	o := c.(entryPoint)
	return geom.Norm(geom.Sub(p.entry.Origin, o.entry.Origin))
}

// entryPoints is a kdtree.Interface over a slice of entryPoint, rebuilt
// on every cache mutation: per-model cache sizes are bounded enough per
// tick that a full rebuild is cheaper than maintaining balance
// incrementally.
type entryPoints []entryPoint

func (e entryPoints) Len() int                      { return len(e) }
func (e entryPoints) Index(i int) kdtree.Comparable { return e[i] }
func (e entryPoints) Slice(start, end int) kdtree.Interface {
	return e[start:end]
}

// Pivot sorts e by dimension d and returns the median index, the split
// point kdtree.New uses to build balanced left/right subtrees.
func (e entryPoints) Pivot(d kdtree.Dim) int {
	sort.Sort(byDim{e, d})
	return len(e) / 2
}

type byDim struct {
	pts entryPoints
	d   kdtree.Dim
}

func (b byDim) Len() int      { return len(b.pts) }
func (b byDim) Swap(i, j int) { b.pts[i], b.pts[j] = b.pts[j], b.pts[i] }
func (b byDim) Less(i, j int) bool {
	return geom.Component(b.pts[i].entry.Origin, int(b.d)) < geom.Component(b.pts[j].entry.Origin, int(b.d))
}

// radiusKeeper collects every candidate within a fixed radius of the
// query point. Returning a constant Max lets the tree prune any branch
// further than radius without ever discarding an already-kept
// candidate, giving an unbounded-count radius search.
type radiusKeeper struct {
	radius float64
	found  []kdtree.ComparableDist
}

func (k *radiusKeeper) Keep(cd kdtree.ComparableDist) { k.found = append(k.found, cd) }
func (k *radiusKeeper) Max() kdtree.ComparableDist {
	return kdtree.ComparableDist{Distance: k.radius}
}

// Cache is a per-model, thread-safe ray cache (spec §4.6).
type Cache struct {
	mu      sync.RWMutex
	entries []*Entry
	index   *kdtree.Tree

	CacheRange  float64
	SpreadAngle float64 // radians
}

// New returns an empty cache with the spec's default match tolerances.
func New() *Cache {
	return &Cache{CacheRange: DefaultCacheRange, SpreadAngle: DefaultSpreadAngle}
}

// Find returns a cached hit list compatible with a query ray (origin,
// unit direction, length), trimmed to hits within length, or false if
// no entry matches (spec §4.6).
func (c *Cache) Find(origin, direction geom.Vec, length float64) ([]geom.Hit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	best := c.findCompatibleLocked(origin, direction, length-lengthSlack)
	if best == nil {
		return nil, false
	}

	trimmed := make([]geom.Hit, 0, len(best.Hits))
	for _, h := range best.Hits {
		if h.Distance <= length {
			trimmed = append(trimmed, h)
		}
	}
	return trimmed, true
}

// Insert adds a freshly computed ray and its hit list. If a compatible
// entry already exists (inserted by another task racing this one), the
// longer of the two rays wins and the shorter is discarded (spec
// §4.6).
func (c *Cache) Insert(origin, direction geom.Vec, length float64, hits []geom.Hit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing := c.findCompatibleLocked(origin, direction, 0); existing != nil {
		if existing.Length >= length {
			return
		}
		for i, e := range c.entries {
			if e == existing {
				c.entries[i] = &Entry{Origin: origin, Direction: direction, Length: length, Hits: hits}
				break
			}
		}
		c.rebuildLocked()
		return
	}

	c.entries = append(c.entries, &Entry{Origin: origin, Direction: direction, Length: length, Hits: hits})
	c.rebuildLocked()
}

// findCompatibleLocked returns the longest entry within CacheRange of
// origin, within SpreadAngle of direction, and at least minLength long.
// Callers must hold c.mu for reading or writing.
func (c *Cache) findCompatibleLocked(origin, direction geom.Vec, minLength float64) *Entry {
	if c.index == nil {
		return nil
	}
	cosSpread := math.Cos(c.SpreadAngle)
	keeper := &radiusKeeper{radius: c.CacheRange}
	c.index.NearestSet(keeper, entryPoint{entry: &Entry{Origin: origin}})

	var best *Entry
	for _, cd := range keeper.found {
		e := cd.Comparable.(entryPoint).entry
		if geom.Dot(direction, e.Direction) < cosSpread {
			continue
		}
		if e.Length < minLength {
			continue
		}
		if best == nil || e.Length > best.Length {
			best = e
		}
	}
	return best
}

// rebuildLocked rebuilds the spatial index over the current entries.
// Callers must hold c.mu for writing.
func (c *Cache) rebuildLocked() {
	pts := make(entryPoints, len(c.entries))
	for i, e := range c.entries {
		pts[i] = entryPoint{entry: e}
	}
	c.index = kdtree.New(pts, false)
}

// Reset discards every cached entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.index = nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
