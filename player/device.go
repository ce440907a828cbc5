package player

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Device opens the audio output at a given sample rate and hands back the
// sink feeding it. Exactly one device/sink pair is live at a time; the
// engine is the only component allowed to open or close one.
type Device interface {
	Open(sampleRate beep.SampleRate) (Sink, error)
}

// Sink is the live handle for an audio stream feeding the output device.
type Sink interface {
	// Load replaces the sink's content. The new content starts paused and
	// the elapsed counter resets.
	Load(content beep.Streamer)
	Play()
	Pause()
	// SetGain sets the linear output gain applied after the pipeline.
	SetGain(gain float64)
	// Empty reports whether the loaded content has been fully streamed.
	Empty() bool
	// Elapsed returns the stream time consumed since the last Load.
	Elapsed() time.Duration
	Close()
}

// SpeakerDevice drives the machine's default audio output through the beep
// speaker. Opening it re-initializes the speaker at the new sample rate,
// which tears down whatever was playing before.
type SpeakerDevice struct {
	bufLen time.Duration
}

// NewSpeakerDevice creates a SpeakerDevice with a 100 ms hardware buffer.
func NewSpeakerDevice() *SpeakerDevice {
	return &SpeakerDevice{bufLen: time.Second / 10}
}

// Open implements Device.
func (d *SpeakerDevice) Open(sampleRate beep.SampleRate) (Sink, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(d.bufLen)); err != nil {
		return nil, fmt.Errorf("open output device: %w", err)
	}
	s := &speakerSink{sr: sampleRate}
	s.gain.store(1)
	return s, nil
}

type speakerSink struct {
	sr beep.SampleRate

	mu     sync.Mutex
	ctrl   *beep.Ctrl
	closed bool

	gain     atomicFloat64
	streamed atomic.Int64
	done     atomic.Bool
}

func (s *speakerSink) Load(content beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.done.Store(false)
	s.streamed.Store(0)
	s.ctrl = &beep.Ctrl{
		Streamer: &sinkStreamer{src: content, sink: s},
		Paused:   true,
	}
	speaker.Clear()
	speaker.Play(beep.Seq(s.ctrl, beep.Callback(func() {
		s.done.Store(true)
	})))
}

func (s *speakerSink) Play()  { s.setPaused(false) }
func (s *speakerSink) Pause() { s.setPaused(true) }

func (s *speakerSink) setPaused(paused bool) {
	s.mu.Lock()
	ctrl := s.ctrl
	s.mu.Unlock()
	if ctrl == nil {
		return
	}
	speaker.Lock()
	ctrl.Paused = paused
	speaker.Unlock()
}

func (s *speakerSink) SetGain(gain float64) {
	s.gain.store(gain)
}

func (s *speakerSink) Empty() bool {
	return s.done.Load()
}

func (s *speakerSink) Elapsed() time.Duration {
	return s.sr.D(int(s.streamed.Load()))
}

func (s *speakerSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.ctrl = nil
	speaker.Clear()
}

// sinkStreamer applies the sink's gain and counts streamed samples. It runs
// on the speaker's playback goroutine.
type sinkStreamer struct {
	src  beep.Streamer
	sink *speakerSink
}

func (w *sinkStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := w.src.Stream(samples)
	g := w.sink.gain.load()
	for i := range n {
		samples[i][0] *= g
		samples[i][1] *= g
	}
	w.sink.streamed.Add(int64(n))
	return n, ok
}

func (w *sinkStreamer) Err() error { return w.src.Err() }

// atomicFloat64 stores a float64 via its bit pattern so the audio goroutine
// can read the gain without taking a lock.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (f *atomicFloat64) store(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *atomicFloat64) load() float64   { return math.Float64frombits(f.bits.Load()) }
