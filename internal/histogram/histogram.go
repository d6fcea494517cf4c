// Package histogram implements the debug-only energy histogram of
// spec §3: three parallel per-band bins into which an impulse
// response is accumulated for visualization. Reverb parameters never
// read from this package — internal/listener derives them straight
// from the impulse list.
//
// The fixed-size per-band bin arrays plus an optional FFT view
// (spectrum.go) are grounded on
// the teacher's internal/audio/analyzer.go, retargeted from a live PCM
// spectrum to a static impulse-response view.
package histogram

import (
	"github.com/resonantfield/auralcore/internal/listener"
	"github.com/resonantfield/auralcore/internal/material"
)

const (
	// DefaultBinCount is N, the default number of time bins (spec §3).
	DefaultBinCount = 50
	// DefaultSpan is the time window the histogram covers, in seconds
	// (spec §3: "spanning 0.5 s").
	DefaultSpan = 0.5
)

// Histogram holds three parallel arrays of N time bins, one per band
// (spec §3's "Energy histogram").
type Histogram struct {
	binCount int
	span     float64
	bins     [material.NumBands][]float64
}

// New returns an empty histogram with binCount bins spanning span
// seconds.
func New(binCount int, span float64) *Histogram {
	h := &Histogram{binCount: binCount, span: span}
	for b := 0; b < material.NumBands; b++ {
		h.bins[b] = make([]float64, binCount)
	}
	return h
}

// NewDefault returns a histogram using spec §3's default bin count and
// span.
func NewDefault() *Histogram {
	return New(DefaultBinCount, DefaultSpan)
}

// Reset clears every bin back to zero.
func (h *Histogram) Reset() {
	for b := 0; b < material.NumBands; b++ {
		for i := range h.bins[b] {
			h.bins[b][i] = 0
		}
	}
}

// Accumulate folds impulses into the histogram's bins, taking the max
// of the existing and new value per bin (spec §3: "accumulated (max of
// existing and new value per bin)"). Impulses with a negative time or
// a time past the histogram's span are dropped.
func (h *Histogram) Accumulate(impulses []listener.Impulse) {
	binWidth := h.span / float64(h.binCount)
	for _, imp := range impulses {
		if imp.Time < 0 || imp.Time >= h.span {
			continue
		}
		bin := int(imp.Time / binWidth)
		if bin >= h.binCount {
			bin = h.binCount - 1
		}
		for b := 0; b < material.NumBands; b++ {
			if imp.Gain[b] > h.bins[b][bin] {
				h.bins[b][bin] = imp.Gain[b]
			}
		}
	}
}

// Band returns a copy of one band's bins, for rendering.
func (h *Histogram) Band(b material.Band) []float64 {
	out := make([]float64, h.binCount)
	copy(out, h.bins[b])
	return out
}

// PeakBin returns the bin index and value of the largest value across
// all bands, used by a debug view to mark the dominant echo.
func (h *Histogram) PeakBin() (bin int, value float64) {
	for b := 0; b < material.NumBands; b++ {
		for i, v := range h.bins[b] {
			if v > value {
				value = v
				bin = i
			}
		}
	}
	return bin, value
}

// BinTime returns the start time, in seconds, that bin i represents.
func (h *Histogram) BinTime(i int) float64 {
	return float64(i) * h.span / float64(h.binCount)
}

// EchoPeriodBins estimates the dominant echo period, in bins, via
// autocorrelation of the low-band histogram — useful for distinguishing
// a flutter echo from diffuse reverberation in the debug view (spec §8
// scenario 4's "distinct echo peaks ... at multiples of" a fixed
// period is exactly the periodicity this looks for).
func (h *Histogram) EchoPeriodBins() int {
	low := h.bins[material.Low]
	n := len(low)
	if n < 2 {
		return 0
	}

	bestLag, bestScore := 0, 0.0
	for lag := 1; lag < n; lag++ {
		var score float64
		for i := 0; i+lag < n; i++ {
			score += low[i] * low[i+lag]
		}
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestScore <= 0 {
		return 0
	}
	return bestLag
}
