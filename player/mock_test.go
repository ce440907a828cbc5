package player

import (
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/vleerapp/vleer-sub000/eq"
	"github.com/vleerapp/vleer-sub000/library"
	"github.com/vleerapp/vleer-sub000/spectrum"
)

// silentStreamer is an immediately exhausted streamer for stub pipelines.
type silentStreamer struct{}

func (silentStreamer) Stream(samples [][2]float64) (int, bool) { return 0, false }
func (silentStreamer) Err() error                              { return nil }

// mockDevice records Open calls and hands out mock sinks.
type mockDevice struct {
	mu       sync.Mutex
	opens    int
	failOpen bool
	last     *mockSink
}

func (d *mockDevice) Open(sampleRate beep.SampleRate) (Sink, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	if d.failOpen {
		return nil, errors.New("no output device")
	}
	s := &mockSink{gain: 1}
	d.last = s
	return s, nil
}

func (d *mockDevice) openCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

func (d *mockDevice) lastSink() *mockSink {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// mockSink records every state transition.
type mockSink struct {
	mu      sync.Mutex
	loads   int
	plays   int
	pauses  int
	playing bool
	gain    float64
	empty   bool
	elapsed time.Duration
	closed  bool
}

func (s *mockSink) Load(content beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	s.playing = false
	s.empty = false
	s.elapsed = 0
}

func (s *mockSink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
	s.playing = true
}

func (s *mockSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses++
	s.playing = false
}

func (s *mockSink) SetGain(gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = gain
}

func (s *mockSink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.empty
}

func (s *mockSink) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *mockSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *mockSink) setEmpty(empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.empty = empty
}

func (s *mockSink) snapshot() mockSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mockSink{
		loads:   s.loads,
		plays:   s.plays,
		pauses:  s.pauses,
		playing: s.playing,
		gain:    s.gain,
		closed:  s.closed,
	}
}

// recordNotifier captures playback notifications for assertions.
type recordNotifier struct {
	mu     sync.Mutex
	songs  []string
	states []State
}

func (n *recordNotifier) SongChanged(song library.Song) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.songs = append(n.songs, song.ID)
}

func (n *recordNotifier) StateChanged(state State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, state)
}

func (n *recordNotifier) PositionChanged(float64) {}
func (n *recordNotifier) CanGoChanged(bool, bool) {}

func (n *recordNotifier) songList() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.songs...)
}

// stubBuilder returns pipelines without touching the filesystem. Paths with
// an entry in gates block until their channel is closed (or sent a value,
// which releases a single build), which lets tests control completion order.
func stubBuilder(gates map[string]chan struct{}) pipelineBuilder {
	return func(path string, startAt time.Duration, eqz *eq.Equalizer, vis *spectrum.State, normGain float64) (*pipeline, error) {
		if gate, ok := gates[path]; ok {
			<-gate
		}
		if path == badPath {
			return nil, errors.New("decode: corrupt stream")
		}
		return &pipeline{
			format: beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2},
			out:    silentStreamer{},
		}, nil
	}
}

const badPath = "/broken.mp3"
