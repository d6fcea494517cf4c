package histogram

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/resonantfield/auralcore/internal/material"
)

// Spectrum is an optional FFT view over one band's histogram bins,
// for a debug UI that wants a frequency-domain look at the impulse
// response rather than its raw time bins. Grounded directly on the
// teacher's AudioAnalyzer.computeFFT: a Hanning window applied before
// an FFT, magnitudes taken from the real FFT's n/2+1 coefficients.
type Spectrum struct {
	fft    *fourier.FFT
	window []float64
}

// NewSpectrum returns a Spectrum sized to n samples (typically a
// histogram's bin count, zero-padded by the caller to a convenient FFT
// size if needed).
func NewSpectrum(n int) *Spectrum {
	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return &Spectrum{fft: fourier.NewFFT(n), window: window}
}

// Magnitudes windows one band's histogram bins and returns the
// magnitude spectrum (all n/2+1 coefficients of the real FFT, the
// Nyquist-and-below range).
func (s *Spectrum) Magnitudes(h *Histogram, b material.Band) []float64 {
	bins := h.Band(b)
	windowed := make([]float64, len(bins))
	for i, v := range bins {
		windowed[i] = v * s.window[i]
	}

	coeffs := s.fft.Coefficients(nil, windowed)

	n := len(coeffs)
	mags := make([]float64, n)
	for i := 0; i < n; i++ {
		re, im := real(coeffs[i]), imag(coeffs[i])
		mags[i] = math.Sqrt(re*re + im*im)
	}
	return mags
}
