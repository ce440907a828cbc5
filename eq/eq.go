// Package eq implements a 10-band parametric equalizer applied per sample
// in the playback pipeline. One mutex guards the whole bank: the UI and
// config paths write band parameters while the audio path reads them and
// updates running filter state.
package eq

import (
	"math"
	"sync"
)

// NumBands is the number of equalizer bands.
const NumBands = 10

// CenterFreqs are the center frequencies of the bands, in Hz.
var CenterFreqs = [NumBands]float64{70, 180, 320, 600, 1000, 3000, 6000, 12000, 14000, 16000}

const (
	// DefaultQ is the Q factor used when none is configured.
	DefaultQ = 1.4

	minGainDB = -12
	maxGainDB = 12

	// Gains this close to zero bypass the band entirely.
	neutralGainDB = 0.1
)

// Band holds the user-facing parameters of one equalizer band.
type Band struct {
	GainDB float64 `json:"gain_db"`
	Q      float64 `json:"q"`
}

// Settings is the persisted configuration of the full bank.
type Settings struct {
	Enabled bool           `json:"enabled"`
	Bands   [NumBands]Band `json:"bands"`
}

// DefaultSettings returns a neutral, enabled equalizer.
func DefaultSettings() Settings {
	s := Settings{Enabled: true}
	for i := range s.Bands {
		s.Bands[i] = Band{Q: DefaultQ}
	}
	return s
}

// filter is a second-order IIR peaking filter per the Audio EQ Cookbook,
// with per-channel running state.
type filter struct {
	gainDB float64
	q      float64

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     [2]float64
	stale              bool
}

// Equalizer is the shared filter bank. Construct it with New or FromSettings
// and rebuild it with SetSampleRate whenever a new file changes the rate.
type Equalizer struct {
	mu         sync.Mutex
	sampleRate float64
	filters    [NumBands]filter
}

// New creates a neutral Equalizer for the given sample rate.
func New(sampleRate float64) *Equalizer {
	return FromSettings(sampleRate, DefaultSettings())
}

// FromSettings builds an Equalizer with all band coefficients derived from
// persisted gain/Q values.
func FromSettings(sampleRate float64, s Settings) *Equalizer {
	e := &Equalizer{sampleRate: sampleRate}
	e.ApplySettings(s)
	return e
}

// SetSampleRate rebuilds every band for a new sample rate, keeping the
// current gain/Q parameters. Filter state is reset.
func (e *Equalizer) SetSampleRate(sampleRate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sampleRate = sampleRate
	for i := range e.filters {
		e.filters[i].stale = true
		e.filters[i].x1 = [2]float64{}
		e.filters[i].x2 = [2]float64{}
		e.filters[i].y1 = [2]float64{}
		e.filters[i].y2 = [2]float64{}
	}
}

// SampleRate returns the sample rate the bank is built for.
func (e *Equalizer) SampleRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sampleRate
}

// SetGain sets one band's gain in dB, clamped to [-12, +12]. Out-of-range
// band indices are ignored.
func (e *Equalizer) SetGain(band int, gainDB float64) {
	if band < 0 || band >= NumBands {
		return
	}
	e.mu.Lock()
	e.filters[band].gainDB = clamp(gainDB, minGainDB, maxGainDB)
	e.filters[band].stale = true
	e.mu.Unlock()
}

// SetQ sets one band's Q factor. Out-of-range band indices are ignored.
func (e *Equalizer) SetQ(band int, q float64) {
	if band < 0 || band >= NumBands {
		return
	}
	if q <= 0 {
		q = DefaultQ
	}
	e.mu.Lock()
	e.filters[band].q = q
	e.filters[band].stale = true
	e.mu.Unlock()
}

// ApplySettings bulk-applies a full set of band parameters. A disabled
// Settings zeroes all gains: the filters stay in the pipeline but neutral.
func (e *Equalizer) ApplySettings(s Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.filters {
		gain := s.Bands[i].GainDB
		if !s.Enabled {
			gain = 0
		}
		q := s.Bands[i].Q
		if q <= 0 {
			q = DefaultQ
		}
		e.filters[i].gainDB = clamp(gain, minGainDB, maxGainDB)
		e.filters[i].q = q
		e.filters[i].stale = true
	}
}

// SetEnabled zeroes all gains when disabling. The filter graph is never
// bypassed; a disabled equalizer is simply neutral.
func (e *Equalizer) SetEnabled(enabled bool) {
	if enabled {
		return
	}
	e.mu.Lock()
	for i := range e.filters {
		e.filters[i].gainDB = 0
		e.filters[i].stale = true
	}
	e.mu.Unlock()
}

// Bands returns a copy of the current band parameters.
func (e *Equalizer) Bands() [NumBands]Band {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out [NumBands]Band
	for i, f := range e.filters {
		out[i] = Band{GainDB: f.gainDB, Q: f.q}
	}
	return out
}

// Process filters n stereo samples in place. The whole bank runs under one
// lock acquisition per buffer to keep lock traffic off the per-sample path.
func (e *Equalizer) Process(samples [][2]float64, n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for b := range e.filters {
		f := &e.filters[b]
		if f.gainDB > -neutralGainDB && f.gainDB < neutralGainDB {
			continue
		}
		if f.stale {
			e.recalcLocked(b)
		}
		for i := range n {
			for ch := range 2 {
				x := samples[i][ch]
				y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
				f.x2[ch] = f.x1[ch]
				f.x1[ch] = x
				f.y2[ch] = f.y1[ch]
				f.y1[ch] = y
				samples[i][ch] = y
			}
		}
	}
}

// recalcLocked derives peaking-filter coefficients for band b.
func (e *Equalizer) recalcLocked(b int) {
	f := &e.filters[b]
	a := math.Pow(10, f.gainDB/40)
	w0 := 2 * math.Pi * CenterFreqs[b] / e.sampleRate
	sinW0 := math.Sin(w0)
	cosW0 := math.Cos(w0)
	alpha := sinW0 / (2 * f.q)

	b0 := 1 + alpha*a
	b1 := -2 * cosW0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosW0
	a2 := 1 - alpha/a

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
	f.stale = false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
