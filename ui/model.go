// Package ui implements the Bubbletea front-end for the Vleer playback
// core. It issues PlaybackCommands to the engine and renders engine and
// queue state at a throttled rate.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vleerapp/vleer-sub000/library"
	"github.com/vleerapp/vleer-sub000/player"
	"github.com/vleerapp/vleer-sub000/queue"
)

type focusArea int

const (
	focusQueue focusArea = iota
	focusEQ
)

type tickMsg time.Time

// Model is the Bubbletea model wired to the engine, queue and catalog.
type Model struct {
	engine  *player.Engine
	queue   *queue.Queue
	catalog library.Catalog

	focus    focusArea
	eqCursor int // selected EQ band (0-9)
	qCursor  int // selected queue item
	qScroll  int // scroll offset for the queue view
	qVisible int // max visible queue items

	width    int
	height   int
	quitting bool
}

// NewModel creates a Model.
func NewModel(engine *player.Engine, q *queue.Queue, catalog library.Catalog) Model {
	return Model{
		engine:   engine,
		queue:    q,
		catalog:  catalog,
		qVisible: 6,
	}
}

// Init starts the render tick and requests the terminal size.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.WindowSize())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses, ticks and window resizes. Track advancement
// is the engine monitor's job; the UI only renders and issues commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tickCmd()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
	case " ":
		m.engine.Send(player.Command{Kind: player.CmdPlayPause})
	case "n":
		m.engine.Send(player.Command{Kind: player.CmdNext})
	case "b":
		m.engine.Send(player.Command{Kind: player.CmdPrevious})
	case "+", "=":
		m.engine.SetVolume(m.engine.Volume() + 0.05)
	case "-":
		m.engine.SetVolume(m.engine.Volume() - 0.05)
	case "s":
		m.queue.ToggleShuffle()
	case "r":
		m.queue.CycleRepeat()
	case "N":
		m.engine.SetNormalization(!m.engine.Normalization())
	case "tab":
		if m.focus == focusQueue {
			m.focus = focusEQ
		} else {
			m.focus = focusQueue
		}
	case "left":
		if m.focus == focusEQ {
			if m.eqCursor > 0 {
				m.eqCursor--
			}
		} else {
			m.seekBy(-5)
		}
	case "right":
		if m.focus == focusEQ {
			if m.eqCursor < 9 {
				m.eqCursor++
			}
		} else {
			m.seekBy(5)
		}
	case "up":
		if m.focus == focusEQ {
			m.adjustEQ(1)
		} else if m.qCursor > 0 {
			m.qCursor--
			m.adjustScroll()
		}
	case "down":
		if m.focus == focusEQ {
			m.adjustEQ(-1)
		} else if m.qCursor < m.queue.Len()-1 {
			m.qCursor++
			m.adjustScroll()
		}
	case "enter":
		if m.focus == focusQueue {
			m.engine.PlayIndex(m.qCursor)
		}
	case "x":
		if m.focus == focusQueue {
			m.queue.Remove(m.qCursor)
			if max := m.queue.Len() - 1; m.qCursor > max && max >= 0 {
				m.qCursor = max
			}
		}
	}
}

func (m *Model) seekBy(deltaSeconds float64) {
	target := m.engine.Position() + deltaSeconds
	if target < 0 {
		target = 0
	}
	m.engine.Send(player.Command{Kind: player.CmdSeek, SeekTo: target})
}

func (m *Model) adjustEQ(deltaDB float64) {
	bands := m.engine.EQBands()
	m.engine.SetEQGain(m.eqCursor, bands[m.eqCursor].GainDB+deltaDB)
}

// adjustScroll keeps qCursor visible in the queue view.
func (m *Model) adjustScroll() {
	if m.qCursor < m.qScroll {
		m.qScroll = m.qCursor
	}
	if m.qCursor >= m.qScroll+m.qVisible {
		m.qScroll = m.qCursor - m.qVisible + 1
	}
}
