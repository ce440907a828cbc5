package spectrum

import (
	"math"
	"testing"
)

// sineStreamer produces an endless stereo sine at the given frequency.
type sineStreamer struct {
	freq       float64
	sampleRate float64
	pos        int
}

func (s *sineStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * s.freq * float64(s.pos) / s.sampleRate)
		samples[i] = [2]float64{v, v}
		s.pos++
	}
	return len(samples), true
}

func (s *sineStreamer) Err() error { return nil }

type silence struct{}

func (silence) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (silence) Err() error { return nil }

func drain(a *Analyzer, n int) {
	buf := make([][2]float64, 512)
	for n > 0 {
		a.Stream(buf)
		n -= len(buf)
	}
}

func TestAnalyzer_PassesSamplesThrough(t *testing.T) {
	const sampleRate = 44100
	src := &sineStreamer{freq: 440, sampleRate: sampleRate}
	ref := &sineStreamer{freq: 440, sampleRate: sampleRate}

	a := NewAnalyzer(src, NewState(), sampleRate)

	got := make([][2]float64, 2048)
	want := make([][2]float64, 2048)
	a.Stream(got)
	ref.Stream(want)

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d altered by analyzer: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAnalyzer_SilenceStaysAtFloor(t *testing.T) {
	state := NewState()
	a := NewAnalyzer(silence{}, state, 44100)
	drain(a, 8*bufSize)

	for i, b := range state.Bands() {
		if math.Abs(b-minLevel) > 1e-9 {
			t.Errorf("band %d = %v on silence, want floor %v", i, b, minLevel)
		}
	}
}

func TestAnalyzer_InBandSignalRaisesItsBucket(t *testing.T) {
	const sampleRate = 44100
	// 1205.86 Hz sits exactly on FFT bin 28, the bin probed for 1200 Hz,
	// so all of the tone's energy lands in the top bucket.
	freq := sampleRate * 28.0 / bufSize

	state := NewState()
	a := NewAnalyzer(&sineStreamer{freq: freq, sampleRate: sampleRate}, state, sampleRate)
	drain(a, 16*bufSize)

	bands := state.Bands()
	if bands[3] < 0.5 {
		t.Errorf("top bucket = %v for a %v Hz tone, want well above the floor", bands[3], freq)
	}
	for i := 0; i < 2; i++ {
		if bands[i] > 0.3 {
			t.Errorf("bucket %d = %v for a %v Hz tone, want near the floor", i, bands[i], freq)
		}
	}
}

func TestAnalyzer_BandsStayInRange(t *testing.T) {
	const sampleRate = 44100
	state := NewState()
	a := NewAnalyzer(&sineStreamer{freq: 80, sampleRate: sampleRate}, state, sampleRate)
	drain(a, 32*bufSize)

	for i, b := range state.Bands() {
		if b < minLevel || b > maxLevel {
			t.Errorf("band %d = %v, want within [%v, %v]", i, b, minLevel, maxLevel)
		}
	}
}

func TestAnalyzer_PartialBufferDoesNotPublish(t *testing.T) {
	const sampleRate = 44100
	state := NewState()
	a := NewAnalyzer(&sineStreamer{freq: 1000, sampleRate: sampleRate}, state, sampleRate)

	buf := make([][2]float64, bufSize-1)
	a.Stream(buf)

	for i, b := range state.Bands() {
		if b != minLevel {
			t.Errorf("band %d = %v before a full accumulation window, want %v", i, b, minLevel)
		}
	}
}
