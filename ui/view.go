package ui

import (
	"fmt"
	"strings"

	"github.com/vleerapp/vleer-sub000/eq"
	"github.com/vleerapp/vleer-sub000/queue"
)

const panelWidth = 60 // usable inner width (66 frame - 2 border - 4 padding)

// Unicode block elements for bar height (9 levels including space).
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// View renders the full TUI frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderTitle(),
		m.renderTrackInfo(),
		m.renderTimeStatus(),
		"",
		m.renderSpectrum(),
		m.renderSeekBar(),
		"",
		m.renderVolume(),
		m.renderEQ(),
		"",
		m.renderQueueHeader(),
		m.renderQueue(),
		"",
		m.renderHelp(),
	}

	return frameStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderTitle() string {
	return titleStyle.Render("V L E E R")
}

func (m Model) renderTrackInfo() string {
	name := "No track loaded"
	if id := m.engine.CurrentSongID(); id != "" {
		if song, err := m.catalog.GetSong(id); err == nil {
			name = song.DisplayName()
		}
	}
	runes := []rune("♫ " + name)
	if len(runes) > panelWidth {
		runes = runes[:panelWidth]
	}
	return trackStyle.Render(string(runes))
}

func (m Model) renderTimeStatus() string {
	status := "PAUSED"
	if m.engine.Playing() {
		status = "PLAYING"
	}

	toggles := ""
	if m.queue.Shuffled() {
		toggles += "  " + activeToggle.Render("SHUF")
	}
	if r := m.queue.Repeat(); r != queue.RepeatOff {
		toggles += "  " + activeToggle.Render("RPT:"+r.String())
	}
	if m.engine.Normalization() {
		toggles += "  " + activeToggle.Render("NORM")
	}

	pos := formatSeconds(m.engine.Position())
	return timeStyle.Render(pos) + "  " + statusStyle.Render(status) + toggles
}

// renderSpectrum draws the 4 shared visualizer bands as wide bars.
func (m Model) renderSpectrum() string {
	bands := m.engine.Spectrum()
	const barWidth = 13

	var sb strings.Builder
	for i, level := range bands {
		idx := int(level * float64(len(barBlocks)-1))
		idx = max(0, min(idx, len(barBlocks)-1))
		block := barBlocks[idx]

		style := specLowStyle
		switch {
		case level > 0.75:
			style = specHighStyle
		case level > 0.45:
			style = specMidStyle
		}

		sb.WriteString(style.Render(strings.Repeat(block, barWidth)))
		if i < len(bands)-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func (m Model) renderSeekBar() string {
	duration := m.currentDurationSeconds()
	if duration <= 0 {
		return seekDimStyle.Render(strings.Repeat("─", panelWidth))
	}
	ratio := m.engine.Position() / duration
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(panelWidth))
	return seekFillStyle.Render(strings.Repeat("━", filled)) +
		seekDimStyle.Render(strings.Repeat("─", panelWidth-filled))
}

func (m Model) currentDurationSeconds() float64 {
	id := m.engine.CurrentSongID()
	if id == "" {
		return 0
	}
	song, err := m.catalog.GetSong(id)
	if err != nil {
		return 0
	}
	return song.Duration.Seconds()
}

func (m Model) renderVolume() string {
	const barWidth = 20
	vol := m.engine.Volume()
	filled := int(vol * barWidth)
	bar := volBarStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))
	return labelStyle.Render("VOL ") + bar + timeStyle.Render(fmt.Sprintf(" %3.0f%%", vol*100))
}

// renderEQ draws a column per band scaled from -12..+12 dB.
func (m Model) renderEQ() string {
	bands := m.engine.EQBands()

	var sb strings.Builder
	sb.WriteString(labelStyle.Render("EQ  "))
	for i, band := range bands {
		level := (band.GainDB + 12) / 24
		idx := int(level * float64(len(barBlocks)-1))
		idx = max(0, min(idx, len(barBlocks)-1))

		style := dimStyle
		if m.focus == focusEQ && i == m.eqCursor {
			style = selectedStyle
		} else if band.GainDB != 0 {
			style = trackStyle
		}
		sb.WriteString(style.Render(barBlocks[idx]))
		if i < eq.NumBands-1 {
			sb.WriteString(" ")
		}
	}
	if m.focus == focusEQ {
		sb.WriteString(timeStyle.Render(fmt.Sprintf("  %+.0f dB", bands[m.eqCursor].GainDB)))
	}
	return sb.String()
}

func (m Model) renderQueueHeader() string {
	return labelStyle.Render(fmt.Sprintf("QUEUE (%d)", m.queue.Len()))
}

func (m Model) renderQueue() string {
	ids := m.queue.Items()
	if len(ids) == 0 {
		return dimStyle.Render("  (empty)")
	}
	current := m.queue.CurrentIndex()

	var lines []string
	for i := m.qScroll; i < len(ids) && i < m.qScroll+m.qVisible; i++ {
		name := ids[i]
		if song, err := m.catalog.GetSong(ids[i]); err == nil {
			name = song.DisplayName()
		}
		prefix := "  "
		style := timeStyle
		if i == current {
			prefix = "▶ "
			style = playingStyle
		}
		if m.focus == focusQueue && i == m.qCursor {
			style = selectedStyle
		}
		runes := []rune(prefix + name)
		if len(runes) > panelWidth {
			runes = runes[:panelWidth]
		}
		lines = append(lines, style.Render(string(runes)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	return dimStyle.Render("space play  n/b skip  ←→ seek  ±vol  s shuf  r rpt  tab eq  q quit")
}

func formatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
