package player

import "github.com/vleerapp/vleer-sub000/library"

// State is the externally visible playback state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Notifier receives fire-and-forget playback notifications, typically
// forwarded to an OS media-session bridge (MPRIS, SMTC, MPNowPlaying).
// Implementations must return quickly; the engine calls them from short
// lived goroutines so a slow bridge can never block a track swap.
type Notifier interface {
	SongChanged(song library.Song)
	StateChanged(state State)
	PositionChanged(seconds float64)
	CanGoChanged(next, previous bool)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) SongChanged(library.Song) {}
func (NopNotifier) StateChanged(State)       {}
func (NopNotifier) PositionChanged(float64)  {}
func (NopNotifier) CanGoChanged(bool, bool)  {}
