package analysis

import (
	"errors"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

var ErrShortSeries = errors.New("analysis: need at least 4 samples")

// Spectrum is the single-sided amplitude spectrum of a uniformly sampled
// series with its mean removed.
type Spectrum struct {
	Freqs      []float64
	Amplitudes []float64
}

type Peak struct {
	Freq      float64
	Amplitude float64
}

// Compute transforms values sampled every dt seconds.
func Compute(values []float64, dt float64) (*Spectrum, error) {
	n := len(values)
	if n < 4 {
		return nil, ErrShortSeries
	}
	if !(dt > 0) {
		return nil, errors.New("analysis: sample interval must be positive")
	}

	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)
	seq := make([]float64, n)
	for i, v := range values {
		seq[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, seq)

	s := &Spectrum{
		Freqs:      make([]float64, len(coeff)),
		Amplitudes: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freqs[i] = fft.Freq(i) / dt
		amp := cmplx.Abs(c) / float64(n)
		if i > 0 && !(n%2 == 0 && i == n/2) {
			amp *= 2
		}
		s.Amplitudes[i] = amp
	}
	return s, nil
}

// Peaks returns up to k local maxima above minFreq, largest first.
func (s *Spectrum) Peaks(k int, minFreq float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(s.Amplitudes)-1; i++ {
		a := s.Amplitudes[i]
		if s.Freqs[i] < minFreq || a <= s.Amplitudes[i-1] || a < s.Amplitudes[i+1] {
			continue
		}
		peaks = append(peaks, Peak{Freq: s.Freqs[i], Amplitude: a})
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Amplitude > peaks[j].Amplitude })
	if len(peaks) > k {
		peaks = peaks[:k]
	}
	return peaks
}

// Dominant is the largest peak above minFreq.
func (s *Spectrum) Dominant(minFreq float64) (Peak, bool) {
	p := s.Peaks(1, minFreq)
	if len(p) == 0 {
		return Peak{}, false
	}
	return p[0], true
}
