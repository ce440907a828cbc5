// Package spectrum derives a coarse 4-band visual spectrum from the audio
// stream without altering it. The analyzer sits in the playback pipeline and
// runs on the audio path, so its per-buffer cost must stay well under the
// buffer's playback duration.
package spectrum

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/madelynnblue/go-dsp/fft"
)

// NumBands is the number of visualizer frequency buckets.
const NumBands = 4

// bufSize is the number of mono samples accumulated per FFT.
const bufSize = 1024

// Each bucket sums a pair of low/high probe frequencies.
var bucketFreqs = [NumBands][2]float64{
	{40, 80},
	{120, 250},
	{400, 800},
	{1200, 2400},
}

// Per-bucket magnitude weights and the common normalization factor.
var bucketGains = [NumBands]float64{0.3, 0.7, 0.9, 1.0}

const baseScale = 0.07

// Smoothing coefficients per bucket: low bands move slower than high ones.
var bucketAlphas = [NumBands]float64{0.08, 0.18, 0.28, 0.35}

const (
	minLevel = 0.05
	maxLevel = 1.0
)

// State holds the latest band magnitudes. The analyzer writes it from the
// audio path and the UI reads it at a throttled rate; readers must tolerate
// values from a partially elapsed write cycle.
type State struct {
	mu    sync.Mutex
	bands [NumBands]float64
}

// NewState creates a State with all bands at the floor level.
func NewState() *State {
	s := &State{}
	for i := range s.bands {
		s.bands[i] = minLevel
	}
	return s
}

// Bands returns the current band magnitudes, each in [0.05, 1.0].
func (s *State) Bands() [NumBands]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bands
}

func (s *State) update(targets [NumBands]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bands {
		a := bucketAlphas[i]
		s.bands[i] = s.bands[i]*(1-a) + targets[i]*a
	}
}

// Analyzer is a pass-through streamer that mixes the signal to mono into an
// accumulation buffer and recomputes the shared State every 1024 samples.
type Analyzer struct {
	s          beep.Streamer
	state      *State
	sampleRate float64
	buf        []float64
}

// NewAnalyzer wraps a streamer, publishing spectra into state.
func NewAnalyzer(s beep.Streamer, state *State, sampleRate float64) *Analyzer {
	return &Analyzer{
		s:          s,
		state:      state,
		sampleRate: sampleRate,
		buf:        make([]float64, 0, bufSize),
	}
}

// Stream passes samples through unchanged while accumulating a mono mix.
func (a *Analyzer) Stream(samples [][2]float64) (int, bool) {
	n, ok := a.s.Stream(samples)
	for i := range n {
		a.buf = append(a.buf, (samples[i][0]+samples[i][1])/2)
		if len(a.buf) == bufSize {
			a.process()
			a.buf = a.buf[:0]
		}
	}
	return n, ok
}

// Err returns the underlying streamer's error.
func (a *Analyzer) Err() error {
	return a.s.Err()
}

// process runs one FFT over the filled buffer and folds the probed bucket
// magnitudes into the shared state.
func (a *Analyzer) process() {
	spec := fft.FFTReal(a.buf)
	scale := 1 / math.Sqrt(float64(bufSize))

	var targets [NumBands]float64
	for b, pair := range bucketFreqs {
		sum := a.magnitudeAt(spec, pair[0])*scale + a.magnitudeAt(spec, pair[1])*scale
		level := sum * bucketGains[b] * baseScale
		targets[b] = math.Min(math.Max(level, minLevel), maxLevel)
	}
	a.state.update(targets)
}

// magnitudeAt returns the magnitude of the FFT bin nearest to freq.
func (a *Analyzer) magnitudeAt(spec []complex128, freq float64) float64 {
	bin := int(math.Round(freq * bufSize / a.sampleRate))
	if bin < 0 {
		bin = 0
	}
	if max := len(spec)/2 - 1; bin > max {
		bin = max
	}
	return cmplx.Abs(spec[bin])
}
