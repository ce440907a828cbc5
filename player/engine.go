// Package player implements the playback engine: it owns the exclusive
// audio device and sink, builds the decoded sample pipeline and runs the
// asynchronous track-load workflow with stale-load suppression.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vleerapp/vleer-sub000/config"
	"github.com/vleerapp/vleer-sub000/eq"
	"github.com/vleerapp/vleer-sub000/library"
	"github.com/vleerapp/vleer-sub000/queue"
	"github.com/vleerapp/vleer-sub000/spectrum"
)

// monitorInterval is how often the engine polls the sink for natural
// end-of-track.
const monitorInterval = 100 * time.Millisecond

// Engine coordinates the queue, the catalog and the audio device. All of
// its mutable playback state lives behind a single mutex; the only
// long-running work, file decode, happens on worker goroutines and commits
// its result through a load-token check.
type Engine struct {
	catalog  library.Catalog
	queue    *queue.Queue
	device   Device
	notifier Notifier
	log      zerolog.Logger

	build pipelineBuilder
	eqz   *eq.Equalizer
	vis   *spectrum.State

	commands chan Command

	mu            sync.Mutex
	sink          Sink
	pipe          *pipeline
	volume        float64
	paused        bool
	currentID     string
	currentFile   string
	currentLUFS   *float64
	normalization bool
	position      time.Duration // baseline, reset on load and seek
	loadToken     uint64
}

// NewEngine creates an Engine. Nothing plays until a song is loaded.
func NewEngine(catalog library.Catalog, q *queue.Queue, device Device, notifier Notifier, logger zerolog.Logger) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		catalog:  catalog,
		queue:    q,
		device:   device,
		notifier: notifier,
		log:      logger,
		build:    buildPipeline,
		eqz:      eq.New(44100),
		vis:      spectrum.NewState(),
		commands: make(chan Command, commandBuffer),
		volume:   0.5,
		paused:   true,
	}
}

// LoadSongByID starts an asynchronous load of the given song. A catalog
// miss silently aborts. The blocking open/decode work runs off the caller's
// goroutine; when it finishes, the result is installed only if no newer
// load has been requested in the meantime.
func (e *Engine) LoadSongByID(id string) {
	song, err := e.catalog.GetSong(id)
	if err != nil {
		e.log.Debug().Str("song", id).Msg("song missing from library, skipping load")
		return
	}

	e.mu.Lock()
	e.loadToken++
	token := e.loadToken
	normGain := NormalizationGain(e.normalization, song.LUFS)
	e.mu.Unlock()

	go e.finishLoad(song, token, normGain)
}

func (e *Engine) finishLoad(song library.Song, token uint64, normGain float64) {
	pipe, err := e.build(song.FilePath, 0, e.eqz, e.vis, normGain)
	if err != nil {
		e.log.Error().Err(err).Str("path", song.FilePath).Msg("failed to load audio file")
		return
	}

	e.mu.Lock()
	if token != e.loadToken {
		e.mu.Unlock()
		pipe.Close()
		e.log.Debug().Str("path", song.FilePath).Msg("discarding superseded load")
		return
	}

	// Stop and drop the previous device/sink pair before anything new
	// goes live. This is the only code path that replaces the pair.
	oldSink, oldPipe := e.sink, e.pipe
	e.sink, e.pipe = nil, nil
	if oldSink != nil {
		oldSink.Close()
	}
	oldPipe.Close()

	sink, err := e.device.Open(pipe.format.SampleRate)
	if err != nil {
		// The old pair is already gone; clear the track fields too so the
		// engine is coherently silent rather than naming a song it cannot
		// play, pause or seek.
		wasPlaying := !e.paused
		e.currentID = ""
		e.currentFile = ""
		e.currentLUFS = nil
		e.position = 0
		e.paused = true
		e.mu.Unlock()
		pipe.Close()
		e.log.Error().Err(err).Msg("failed to open audio device")
		if wasPlaying {
			go e.notifier.StateChanged(StateStopped)
		}
		return
	}

	e.eqz.SetSampleRate(float64(pipe.format.SampleRate))

	sink.SetGain(LogVolume(e.volume))
	sink.Load(pipe.out)
	sink.Play()
	e.sink = sink
	e.pipe = pipe
	e.position = 0
	e.currentID = song.ID
	e.currentFile = song.FilePath
	e.currentLUFS = song.LUFS
	e.paused = false
	e.mu.Unlock()

	e.log.Debug().
		Str("path", song.FilePath).
		Int("sample_rate", int(pipe.format.SampleRate)).
		Msg("loaded audio file")

	go e.notifyIfCurrent(token, func() {
		e.notifier.SongChanged(song)
		e.notifier.StateChanged(StatePlaying)
	})
	e.notifyCanGo()
}

// Play resumes playback. It touches the sink only on an actual transition.
func (e *Engine) Play() {
	e.mu.Lock()
	changed := e.paused && e.sink != nil
	if changed {
		e.sink.Play()
		e.paused = false
	}
	e.mu.Unlock()
	if changed {
		e.log.Debug().Msg("playback started")
		go e.notifier.StateChanged(StatePlaying)
	}
}

// Pause pauses playback. It touches the sink only on an actual transition.
func (e *Engine) Pause() {
	e.mu.Lock()
	changed := !e.paused && e.sink != nil
	if changed {
		e.sink.Pause()
		e.paused = true
	}
	e.mu.Unlock()
	if changed {
		e.log.Debug().Msg("playback paused")
		go e.notifier.StateChanged(StatePaused)
	}
}

// PlayPause toggles between playing and paused.
func (e *Engine) PlayPause() {
	e.mu.Lock()
	paused := e.paused
	e.mu.Unlock()
	if paused {
		e.Play()
	} else {
		e.Pause()
	}
}

// Seek reconstructs the pipeline from the current file at the given offset,
// preserving the play/pause state. The decoder seek is best effort; on
// failure playback resumes from the nearest decodable point.
func (e *Engine) Seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}

	e.mu.Lock()
	path := e.currentFile
	if path == "" || e.sink == nil {
		e.mu.Unlock()
		return
	}
	wasPlaying := !e.paused
	normGain := NormalizationGain(e.normalization, e.currentLUFS)
	token := e.loadToken
	e.mu.Unlock()

	startAt := time.Duration(seconds * float64(time.Second))
	pipe, err := e.build(path, startAt, e.eqz, e.vis, normGain)
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("seek failed to rebuild pipeline")
		return
	}

	e.mu.Lock()
	// The captured token matches even if the load that bumped it committed
	// meanwhile, so the rebuilt file must also still be the current one.
	if token != e.loadToken || e.currentFile != path || e.sink == nil {
		e.mu.Unlock()
		pipe.Close()
		return
	}
	oldPipe := e.pipe
	e.pipe = pipe
	e.sink.Load(pipe.out)
	if wasPlaying {
		e.sink.Play()
		e.paused = false
	} else {
		e.paused = true
	}
	e.position = startAt
	e.mu.Unlock()

	oldPipe.Close()
	e.log.Debug().Float64("position", seconds).Msg("seeked")
	go e.notifier.PositionChanged(seconds)
}

// SetVolume clamps to [0, 1], stores the raw value and applies the
// perceptual curve to the live sink.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.mu.Lock()
	e.volume = v
	if e.sink != nil {
		e.sink.SetGain(LogVolume(v))
	}
	e.mu.Unlock()
}

// Volume returns the raw volume in [0, 1].
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Playing reports whether playback is not paused.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.paused
}

// Empty reports whether the sink has run out of audio.
func (e *Engine) Empty() bool {
	e.mu.Lock()
	sink := e.sink
	e.mu.Unlock()
	if sink == nil {
		return true
	}
	return sink.Empty()
}

// Position returns the playback position in seconds: the baseline set by
// the last load or seek plus the sink's own elapsed stream time.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sink == nil {
		return 0
	}
	return (e.position + e.sink.Elapsed()).Seconds()
}

// CurrentSongID returns the id of the loaded song, or "".
func (e *Engine) CurrentSongID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentID
}

// Next advances the queue and loads the resulting song. At the end of the
// queue under repeat Off, playback stops on the finished track.
func (e *Engine) Next() {
	id, ok := e.queue.AdvanceNextID()
	if !ok {
		e.log.Debug().Msg("queue exhausted")
		e.stopAtQueueEnd()
		return
	}
	e.LoadSongByID(id)
}

// Previous moves the queue backward and loads the resulting song.
func (e *Engine) Previous() {
	id, ok := e.queue.AdvancePreviousID()
	if !ok {
		return
	}
	e.LoadSongByID(id)
}

// PlayQueue loads whatever song the queue cursor points at.
func (e *Engine) PlayQueue() {
	id, ok := e.queue.CurrentID()
	if !ok {
		e.log.Debug().Msg("queue is empty, nothing to play")
		return
	}
	e.LoadSongByID(id)
}

// PlayIndex jumps the queue cursor and loads the selected song.
func (e *Engine) PlayIndex(i int) {
	id, ok := e.queue.SetCurrentIndex(i)
	if !ok {
		return
	}
	e.LoadSongByID(id)
}

func (e *Engine) stopAtQueueEnd() {
	e.mu.Lock()
	wasPlaying := !e.paused
	e.paused = true
	if e.sink != nil {
		e.sink.Pause()
	}
	e.mu.Unlock()
	if wasPlaying {
		go e.notifier.StateChanged(StateStopped)
	}
}

// notifyIfCurrent runs fn unless a newer load has been requested since
// token was captured, so a superseded load is never announced.
func (e *Engine) notifyIfCurrent(token uint64, fn func()) {
	e.mu.Lock()
	current := token == e.loadToken
	e.mu.Unlock()
	if current {
		fn()
	}
}

func (e *Engine) notifyCanGo() {
	next, prev := e.queue.HasNext(), e.queue.HasPrevious()
	go e.notifier.CanGoChanged(next, prev)
}

// SetEQGain sets one equalizer band's gain in dB.
func (e *Engine) SetEQGain(band int, gainDB float64) {
	e.eqz.SetGain(band, gainDB)
}

// SetEQQ sets one equalizer band's Q factor.
func (e *Engine) SetEQQ(band int, q float64) {
	e.eqz.SetQ(band, q)
}

// EQBands returns the current equalizer band parameters.
func (e *Engine) EQBands() [eq.NumBands]eq.Band {
	return e.eqz.Bands()
}

// SetNormalization toggles loudness normalization. It takes effect on the
// next load or seek.
func (e *Engine) SetNormalization(enabled bool) {
	e.mu.Lock()
	e.normalization = enabled
	e.mu.Unlock()
	e.log.Debug().Bool("enabled", enabled).Msg("normalization toggled")
}

// Normalization reports whether loudness normalization is enabled.
func (e *Engine) Normalization() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.normalization
}

// ApplySettings applies persisted volume, equalizer and normalization
// configuration, at startup or on explicit reload.
func (e *Engine) ApplySettings(s config.Settings) {
	e.SetVolume(s.Volume)
	e.eqz.ApplySettings(s.Equalizer)
	e.SetNormalization(s.Normalization)
	e.log.Debug().Msg("applied settings")
}

// Spectrum returns the visualizer's current 4-band magnitudes.
func (e *Engine) Spectrum() [spectrum.NumBands]float64 {
	return e.vis.Bands()
}

// RunMonitor polls the sink and auto-advances the queue when the current
// track has played out. End-of-track is detected by sink exhaustion while
// the engine still considers itself playing.
func (e *Engine) RunMonitor(ctx context.Context) {
	t := time.NewTicker(monitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if e.Empty() && e.Playing() {
				e.log.Debug().Msg("track finished, advancing")
				e.Next()
			}
		}
	}
}

// Close stops playback and releases the device, sink and decoder.
func (e *Engine) Close() {
	e.mu.Lock()
	e.loadToken++ // orphan any in-flight load
	sink, pipe := e.sink, e.pipe
	e.sink, e.pipe = nil, nil
	e.paused = true
	e.mu.Unlock()
	if sink != nil {
		sink.Close()
	}
	pipe.Close()
}
