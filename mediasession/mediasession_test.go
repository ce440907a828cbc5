package mediasession

import (
	"testing"

	"github.com/vleerapp/vleer-sub000/player"
)

func TestBridge_EnqueuesCommands(t *testing.T) {
	ch := make(chan player.Command, 4)
	b := NewBridge(ch)

	b.PlayPause()
	b.Next()
	b.Previous()
	b.Seek(42.5)

	want := []player.Command{
		{Kind: player.CmdPlayPause},
		{Kind: player.CmdNext},
		{Kind: player.CmdPrevious},
		{Kind: player.CmdSeek, SeekTo: 42.5},
	}
	for i, w := range want {
		got := <-ch
		if got != w {
			t.Errorf("command %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestBridge_FullChannelDropsWithoutBlocking(t *testing.T) {
	ch := make(chan player.Command, 1)
	b := NewBridge(ch)

	b.Next()
	b.Next() // channel full: must not block

	if got := <-ch; got.Kind != player.CmdNext {
		t.Errorf("first command = %+v, want next", got)
	}
	select {
	case got := <-ch:
		t.Errorf("unexpected queued command %+v", got)
	default:
	}
}
