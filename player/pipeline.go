package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/vleerapp/vleer-sub000/eq"
	"github.com/vleerapp/vleer-sub000/spectrum"
)

// pipeline bundles every resource of one decoded track:
//
//	[Decode] -> [10x Biquad EQ] -> [Spectrum Tap] -> [Normalization Gain]
//
// The sink's volume gain is applied downstream of Out, so volume changes
// never require a rebuild.
type pipeline struct {
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	out      beep.Streamer
}

// Close releases the decoder and the underlying file.
func (p *pipeline) Close() {
	if p == nil {
		return
	}
	if p.streamer != nil {
		p.streamer.Close()
	}
	if p.file != nil {
		p.file.Close()
	}
}

// pipelineBuilder builds a full pipeline from a file path. The engine's
// tests substitute this to run without real audio files.
type pipelineBuilder func(path string, startAt time.Duration, eqz *eq.Equalizer, vis *spectrum.State, normGain float64) (*pipeline, error)

// buildPipeline opens and decodes an audio file, seeks best-effort to
// startAt and wraps the decoder with the processing chain. This does
// blocking file I/O and must never run on the audio path.
func buildPipeline(path string, startAt time.Duration, eqz *eq.Equalizer, vis *spectrum.State, normGain float64) (*pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	streamer, format, err := decode(f, path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode: %w", err)
	}

	if startAt > 0 {
		pos := format.SampleRate.N(startAt)
		if pos >= streamer.Len() {
			pos = streamer.Len() - 1
		}
		if pos > 0 {
			// Best effort: a failed seek plays from the nearest
			// decodable point instead.
			_ = streamer.Seek(pos)
		}
	}

	var s beep.Streamer = streamer
	s = &eqStreamer{src: s, eq: eqz}
	s = spectrum.NewAnalyzer(s, vis, float64(format.SampleRate))
	s = &gainStreamer{src: s, gain: normGain}

	return &pipeline{file: f, streamer: streamer, format: format, out: s}, nil
}

// decode picks a decoder from the file extension.
func decode(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg", ".oga":
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

// eqStreamer runs the shared equalizer bank over each buffer.
type eqStreamer struct {
	src beep.Streamer
	eq  *eq.Equalizer
}

func (e *eqStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.src.Stream(samples)
	e.eq.Process(samples, n)
	return n, ok
}

func (e *eqStreamer) Err() error { return e.src.Err() }

// gainStreamer applies a fixed linear gain, used as the final normalization
// stage after EQ and spectrum analysis.
type gainStreamer struct {
	src  beep.Streamer
	gain float64
}

func (g *gainStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.src.Stream(samples)
	if g.gain != 1 {
		for i := range n {
			samples[i][0] *= g.gain
			samples[i][1] *= g.gain
		}
	}
	return n, ok
}

func (g *gainStreamer) Err() error { return g.src.Err() }
