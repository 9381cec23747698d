package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const barRows = 8

var barGlyphs = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E0245E"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	spikeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700"))

	modeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AA00"))
)

// renderMeterView renders the main meter view
func renderMeterView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(renderHeart(m))
	b.WriteString("\n\n")
	b.WriteString(renderBars(m.Level.Bars, m.Level.MaxHeight, m.Level.Heart.Band.Color.Hex()))
	b.WriteString("\n\n")
	b.WriteString(renderNumbers(m))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("m: biofeedback mode • r: reset heart • q: quit"))
	b.WriteString("\n")

	return b.String()
}

func renderHeader(m Model) string {
	title := titleStyle.Render("Heartbeat 💓")
	if m.ModeActive {
		title += "  " + modeStyle.Render("[biofeedback]")
	}
	return title
}

// renderHeart shows the heart in the band color, a beat bar and the status
func renderHeart(m Model) string {
	heart := m.Level.Heart
	bandStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(heart.Band.Color.Hex()))

	status := bandStyle.Render(fmt.Sprintf("♥ %s", heart.Status()))
	beat := bandStyle.Render(strings.Repeat("■", int(math.Round(heart.Intensity*20))))
	line := fmt.Sprintf("%s  %s", status, beat)

	if m.Flashing() {
		line += "  " + spikeStyle.Render("⚡ SPIKE")
	}
	return line
}

// renderBars draws the waveform as columns of block glyphs, tallest row first
func renderBars(bars []float64, maxHeight float64, color string) string {
	if len(bars) == 0 || maxHeight <= 0 {
		return mutedStyle.Render("(waiting for audio)")
	}

	// eighths of a row per bar
	units := make([]int, len(bars))
	for i, h := range bars {
		u := int(math.Round(h / maxHeight * barRows * 8))
		if u < 0 {
			u = 0
		}
		if u > barRows*8 {
			u = barRows * 8
		}
		units[i] = u
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	rows := make([]string, 0, barRows)
	for row := barRows - 1; row >= 0; row-- {
		var line strings.Builder
		for i, u := range units {
			if i > 0 {
				line.WriteString(" ")
			}
			fill := u - row*8
			if fill < 0 {
				fill = 0
			}
			if fill > 8 {
				fill = 8
			}
			line.WriteString(barGlyphs[fill])
		}
		rows = append(rows, style.Render(line.String()))
	}
	return strings.Join(rows, "\n")
}

func renderNumbers(m Model) string {
	r := m.Level.Result
	return mutedStyle.Render(fmt.Sprintf(
		"rms %.4f | level %.2f | smoothed %.2f | particles %.0f/s | spikes %d",
		r.RawRMS, r.NormalizedLevel, r.SmoothedLevel, m.Level.Heart.ParticleRate, m.Spikes,
	))
}
