package player

import "context"

// CommandKind enumerates the playback commands external surfaces can issue.
type CommandKind int

const (
	CmdPlayPause CommandKind = iota
	CmdNext
	CmdPrevious
	CmdSeek
)

// Command is one playback request. Platform callback threads and the UI
// push these onto the engine's channel instead of calling the engine
// directly, so they can return immediately.
type Command struct {
	Kind CommandKind
	// SeekTo is the target position in seconds, used by CmdSeek.
	SeekTo float64
}

// commandBuffer bounds the command channel. A full channel drops the
// command rather than blocking the sender.
const commandBuffer = 16

// Commands returns the channel RunCommands consumes.
func (e *Engine) Commands() chan<- Command {
	return e.commands
}

// Send enqueues a command without blocking; when the channel is full the
// command is dropped.
func (e *Engine) Send(cmd Command) {
	select {
	case e.commands <- cmd:
	default:
		e.log.Warn().Int("kind", int(cmd.Kind)).Msg("command channel full, dropping command")
	}
}

// RunCommands processes commands one at a time in arrival order until the
// context is canceled.
func (e *Engine) RunCommands(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-e.commands:
			e.dispatch(cmd)
		}
	}
}

func (e *Engine) dispatch(cmd Command) {
	switch cmd.Kind {
	case CmdPlayPause:
		e.PlayPause()
	case CmdNext:
		e.Next()
	case CmdPrevious:
		e.Previous()
	case CmdSeek:
		e.Seek(cmd.SeekTo)
	}
}
