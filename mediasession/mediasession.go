// Package mediasession is the interface boundary to OS "now playing"
// integrations (MPRIS, SMTC, MPNowPlaying). The platform bridges themselves
// live outside this module; this package provides the notifier the engine
// talks to and the command bridge platform callbacks talk back through.
package mediasession

import (
	"github.com/rs/zerolog"

	"github.com/vleerapp/vleer-sub000/library"
	"github.com/vleerapp/vleer-sub000/player"
)

// LogNotifier records playback notifications to the structured log. It
// stands in for a platform bridge and doubles as a trace of what a real
// bridge would receive.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SongChanged(song library.Song) {
	n.log.Debug().
		Str("song", song.ID).
		Str("title", song.Title).
		Str("artist", song.Artist).
		Msg("media session: song changed")
}

func (n *LogNotifier) StateChanged(state player.State) {
	n.log.Debug().Stringer("state", state).Msg("media session: state changed")
}

func (n *LogNotifier) PositionChanged(seconds float64) {
	n.log.Debug().Float64("position", seconds).Msg("media session: position changed")
}

func (n *LogNotifier) CanGoChanged(next, previous bool) {
	n.log.Debug().
		Bool("can_go_next", next).
		Bool("can_go_previous", previous).
		Msg("media session: capabilities changed")
}

// Bridge is the inbound half of a media session: platform callbacks (media
// keys, MPRIS method calls) invoke its methods, which enqueue playback
// commands without blocking the caller.
type Bridge struct {
	commands chan<- player.Command
}

// NewBridge creates a Bridge feeding the given command channel.
func NewBridge(commands chan<- player.Command) *Bridge {
	return &Bridge{commands: commands}
}

func (b *Bridge) PlayPause() {
	b.send(player.Command{Kind: player.CmdPlayPause})
}

func (b *Bridge) Next() {
	b.send(player.Command{Kind: player.CmdNext})
}

func (b *Bridge) Previous() {
	b.send(player.Command{Kind: player.CmdPrevious})
}

func (b *Bridge) Seek(seconds float64) {
	b.send(player.Command{Kind: player.CmdSeek, SeekTo: seconds})
}

// send never blocks; platform callback threads must return promptly, so a
// full channel drops the command instead.
func (b *Bridge) send(cmd player.Command) {
	select {
	case b.commands <- cmd:
	default:
	}
}
