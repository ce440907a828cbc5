// Command vleer is the desktop music player front-end: it scans the given
// audio files into the library, queues them and drives the playback engine
// through a terminal UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/vleerapp/vleer-sub000/config"
	"github.com/vleerapp/vleer-sub000/eq"
	"github.com/vleerapp/vleer-sub000/library"
	"github.com/vleerapp/vleer-sub000/mediasession"
	"github.com/vleerapp/vleer-sub000/player"
	"github.com/vleerapp/vleer-sub000/queue"
	"github.com/vleerapp/vleer-sub000/ui"
)

func run() error {
	if len(os.Args) < 2 {
		return errors.New("usage: vleer <file.mp3|wav|flac|ogg> [file2 ...]")
	}

	logger, closeLog := newLogger()
	defer closeLog()

	// Expand shell globs that may not have been expanded by the shell
	var files []string
	for _, arg := range os.Args[1:] {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			files = append(files, arg)
		} else {
			files = append(files, matches...)
		}
	}

	store := library.NewStore()
	var ids []string
	for _, f := range files {
		song := store.Add(library.SongFromFile(f))
		ids = append(ids, song.ID)
	}

	q := queue.New()
	q.ClearAndQueueSongs(ids)

	settingsPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		logger.Error().Err(err).Msg("falling back to default settings")
	}

	engine := player.NewEngine(
		store,
		q,
		player.NewSpeakerDevice(),
		mediasession.NewLogNotifier(logger),
		logger,
	)
	defer engine.Close()
	engine.ApplySettings(settings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.RunCommands(ctx)
	go engine.RunMonitor(ctx)

	engine.PlayQueue()

	m := ui.NewModel(engine, q, store)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	saved := config.Settings{
		Volume:        engine.Volume(),
		Normalization: engine.Normalization(),
		Equalizer:     eq.Settings{Enabled: true, Bands: engine.EQBands()},
	}
	if err := saved.Save(settingsPath); err != nil {
		logger.Error().Err(err).Msg("failed to save settings")
	}

	return nil
}

// newLogger writes structured logs to $VLEER_LOG when set; logging to the
// terminal would corrupt the TUI, so the default is to discard.
func newLogger() (zerolog.Logger, func()) {
	path := os.Getenv("VLEER_LOG")
	if path == "" {
		return zerolog.Nop(), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}
	}
	logger := zerolog.New(f).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return logger, func() { f.Close() }
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
