package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gateseq/core"
	"gateseq/input"
	"gateseq/sim"
)

// frameInterval is how often the main loop polls the sequencer
const frameInterval = 16 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type styles struct {
	header   lipgloss.Style
	bpm      lipgloss.Style
	dim      lipgloss.Style
	label    lipgloss.Style
	labelSel lipgloss.Style
	active   lipgloss.Style
	inactive lipgloss.Style
	beat     lipgloss.Style
	playhead lipgloss.Style
	selected lipgloss.Style
	gateOn   lipgloss.Style
}

func newStyles() styles {
	return styles{
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("#949494")).Bold(true),
		bpm:      lipgloss.NewStyle().Foreground(lipgloss.Color("#f07826")).Bold(true),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")),
		labelSel: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true),
		active:   lipgloss.NewStyle().Foreground(lipgloss.Color("#949494")),
		inactive: lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")),
		beat:     lipgloss.NewStyle().Background(lipgloss.Color("#121212")),
		playhead: lipgloss.NewStyle().Background(lipgloss.Color("#444444")),
		selected: lipgloss.NewStyle().Background(lipgloss.Color("#ffffff")).Foreground(lipgloss.Color("#000000")),
		gateOn:   lipgloss.NewStyle().Foreground(lipgloss.Color("#134213")).Background(lipgloss.Color("#2fbf2f")),
	}
}

type model struct {
	sq      *core.Sequencer
	handler *input.Handler
	pins    *sim.Pins
	gate    core.GPIOPin
	trigger *sim.Trigger
	styles  styles

	playhead uint8
	frames   int
	status   string
	quitting bool
}

func newModel(sq *core.Sequencer, h *input.Handler, pins *sim.Pins, gate core.GPIOPin, trig *sim.Trigger) model {
	return model{
		sq:      sq,
		handler: h,
		pins:    pins,
		gate:    gate,
		trigger: trig,
		styles:  newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.handler.Modifier = !m.handler.Modifier
			return m, nil
		}
		key, ok := keyByte(msg)
		if !ok {
			return m, nil
		}
		if err := m.handler.HandleKey(key); err != nil {
			if errors.Is(err, input.ErrUnmappedKey) {
				m.status = fmt.Sprintf("unmapped key %q", key)
			} else {
				m.status = err.Error()
			}
			return m, nil
		}
		m.status = ""

	case tickMsg:
		f := m.sq.Poll()
		if f.StepChanged {
			m.playhead = f.Step
		}
		if !f.Idle() {
			m.frames++
			logger.Debug("frame",
				"dirty", fmt.Sprintf("%#x", uint32(f.Dirty)),
				"step", f.Step,
				"prev_step", f.PrevStep,
				"playing", f.Playing)
		}
		if f.Dirty.Has(core.DirtyRTCache) {
			logger.Debug("cache rebuilt", "active", m.sq.Cache().ActiveIndex())
		}
		return m, tick()
	}
	return m, nil
}

// keyByte converts a key press to the raw byte the firmware would receive
func keyByte(msg tea.KeyMsg) (byte, bool) {
	switch msg.Type {
	case tea.KeySpace:
		return ' ', true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && msg.Runes[0] < 0x80 {
			return byte(msg.Runes[0]), true
		}
	}
	return 0, false
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	view := m.sq.View()
	s := m.styles
	var b strings.Builder

	visible, _ := view.VisiblePattern()
	transport := "STOP"
	if m.sq.Clock().Playing() {
		transport = "PLAY"
	}
	playing := fmt.Sprintf("P%02d", view.PlayingPattern()+1)
	if view.Mode() == core.PlaySong {
		playing = fmt.Sprintf("SONG %02d/%02d", view.SongPosition()+1, view.SongLen())
	}
	gate := s.dim.Render(" GATE ")
	if m.pins.Level(m.gate) {
		gate = s.gateOn.Render(" GATE ")
	}
	b.WriteString(s.header.Render(fmt.Sprintf("gateseq  %s  E%02d  %s  ", transport, visible+1, playing)))
	b.WriteString(s.bpm.Render(fmt.Sprintf("%3d BPM", m.sq.BPM())))
	b.WriteString("  " + gate)
	b.WriteString(s.dim.Render(fmt.Sprintf("  oct %+d", m.handler.Octave)))
	if m.handler.Modifier {
		b.WriteString(s.labelSel.Render("  MULTI"))
	}
	b.WriteString("\n\n")

	tracks, _ := view.SelectedTracks()
	sel, hasSel := view.SelectedStep()
	for track := uint8(0); track < core.NumTracks; track++ {
		label := s.label
		if tracks&(1<<track) != 0 {
			label = s.labelSel
		}
		b.WriteString(label.Render(fmt.Sprintf("T%d ", track+1)))

		length := view.TrackLength(visible, track)
		for step := uint8(0); step < core.NumSteps; step++ {
			if step >= length {
				b.WriteString("    ")
				continue
			}
			st := view.Step(visible, track, step)
			text := fmt.Sprintf("%-4s", core.NoteName(st.Pitch))
			if !st.Active {
				text = "--  "
			}

			style := s.inactive
			if st.Active {
				style = s.active
			}
			switch {
			case hasSel && sel == step && tracks&(1<<track) != 0:
				style = s.selected
			case m.sq.Clock().Playing() && m.playhead == step:
				style = style.Inherit(s.playhead)
			case step%4 == 0:
				style = style.Inherit(s.beat)
			}
			b.WriteString(style.Render(text))
		}
		b.WriteString("\n")
	}

	st := m.sq.Clock().Stats()
	b.WriteString("\n")
	b.WriteString(s.dim.Render(fmt.Sprintf("steps %d  missed %d  max overrun %dus  triggers %d  rebuilds %d",
		st.Steps, st.MissedSegments, st.MaxOverrunUS, m.trigger.Pulses(), m.sq.Cache().Builds())))
	b.WriteString("\n")
	b.WriteString(s.dim.Render("1-0 qwerty:steps  !-*:tracks  tab:multi  z-m:notes  +/-:octave  space:play  .:stop  [ ]:tempo  o/p:pattern  esc:quit"))
	if m.status != "" {
		b.WriteString("\n" + s.bpm.Render(m.status))
	}
	return b.String()
}
