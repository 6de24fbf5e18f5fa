// Package tui draws the Lumatone keyboard in the terminal and drives the
// MIDI connection from the keyboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/icco/lumaviz/internal/geom"
	"github.com/icco/lumaviz/internal/layout"
	"github.com/icco/lumaviz/internal/midi"
	"github.com/icco/lumaviz/internal/record"
	"github.com/icco/lumaviz/internal/tracker"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

const (
	defaultFPS        = 30
	defaultBrightness = 0.6

	// highlight spring: angular frequency and damping ratio
	springFrequency = 12.0
	springDamping   = 1.0
)

// frameMsg drives the per-frame drain and animation.
type frameMsg time.Time

// Config is everything the UI needs from the command line.
type Config struct {
	Layout     *layout.Layout
	LayoutPath string
	Machine    *midi.Machine
	Tracker    *tracker.Tracker
	// Recorder, if set, receives every drained event.
	Recorder *record.Recorder
	Log      *zap.Logger

	Brightness float64
	FPS        int

	// InputName and OutputName preselect ports when the user initializes MIDI.
	InputName  string
	OutputName string
}

// glow is the animated highlight of one key.
type glow struct {
	pos, vel float64
}

// Model is the bubbletea model of the visualizer.
type Model struct {
	cfg    Config
	log    *zap.Logger
	spring harmonica.Spring
	frame  time.Duration

	width  int
	height int

	glow [geom.Boards][geom.KeysPerBoard]glow

	picker  picker
	message string
	last    string
}

// New returns a Model. Zero Brightness and FPS take their defaults.
func New(cfg Config) *Model {
	if cfg.FPS <= 0 {
		cfg.FPS = defaultFPS
	}
	if cfg.Brightness <= 0 {
		cfg.Brightness = defaultBrightness
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Tracker == nil {
		cfg.Tracker = tracker.New()
	}
	return &Model{
		cfg:    cfg,
		log:    cfg.Log,
		spring: harmonica.NewSpring(harmonica.FPS(cfg.FPS), springFrequency, springDamping),
		frame:  time.Second / time.Duration(cfg.FPS),
	}
}

// Init only starts the frame clock. MIDI stays uninitialized until the
// user asks for it.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case frameMsg:
		m.step()
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// step drains the bridge and advances the highlight animation by one frame.
func (m *Model) step() {
	mc := m.cfg.Machine
	if mc.Connected() {
		m.cfg.Tracker.Drain(mc, m.onEvent)
	}
	m.cfg.Tracker.Observe(mc.Connected())

	for b := range m.glow {
		for k := range m.glow[b] {
			target := 0.0
			if m.pressed(b, k) {
				target = 1
			}
			g := &m.glow[b][k]
			g.pos, g.vel = m.spring.Update(g.pos, g.vel, target)
		}
	}
}

func (m *Model) onEvent(ev midi.LiveEvent) {
	m.last = ev.String()
	if m.cfg.Recorder != nil {
		m.cfg.Recorder.Add(ev)
	}
}

func (m *Model) pressed(board, key int) bool {
	k := m.cfg.Layout.Boards[board].Keys[key]
	return m.cfg.Tracker.IsPressed(tracker.Note{Channel: k.Chan, Key: k.Note})
}

func (m *Model) initialize() {
	if err := m.cfg.Machine.Initialize(); err != nil {
		m.message = err.Error()
		return
	}
	m.message = ""
	m.refreshPorts()
	m.preselect()
}

// preselect applies the port names given on the command line.
func (m *Model) preselect() {
	var missing []string
	if name := m.cfg.InputName; name != "" {
		if p, ok := midi.FindInput(m.picker.ins, name); ok {
			_ = m.cfg.Machine.SelectInput(p)
		} else {
			missing = append(missing, fmt.Sprintf("input %q", name))
		}
	}
	if name := m.cfg.OutputName; name != "" {
		if p, ok := midi.FindOutput(m.picker.outs, name); ok {
			_ = m.cfg.Machine.SelectOutput(p)
		} else {
			missing = append(missing, fmt.Sprintf("output %q", name))
		}
	}
	if len(missing) > 0 {
		m.message = "no such " + strings.Join(missing, ", ")
		m.log.Warn("preselected port not found", zap.Strings("ports", missing))
	}
}

func (m *Model) refreshPorts() {
	r, ok := m.cfg.Machine.State().(*midi.Ready)
	if !ok {
		return
	}
	m.picker.set(r.InputPorts(), r.OutputPorts())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mc := m.cfg.Machine

	switch msg.String() {
	case "ctrl+c", "q":
		mc.Uninitialize()
		m.cfg.Tracker.Clear()
		return m, tea.Quit
	case "+", "=":
		m.cfg.Brightness = clampFloat(m.cfg.Brightness+0.05, 0.05, 1)
		return m, nil
	case "-", "_":
		m.cfg.Brightness = clampFloat(m.cfg.Brightness-0.05, 0.05, 1)
		return m, nil
	}

	switch mc.State().(type) {
	case *midi.Uninitialized:
		if msg.String() == "i" {
			m.initialize()
		}

	case *midi.Ready:
		switch msg.String() {
		case "tab":
			m.picker.toggleFocus()
		case keyUp, "k":
			m.picker.move(-1)
		case keyDown, "j":
			m.picker.move(1)
		case "enter":
			m.selectUnderCursor()
		case "r":
			m.refreshPorts()
			m.message = fmt.Sprintf("Found %d input(s), %d output(s)", len(m.picker.ins), len(m.picker.outs))
		case "c":
			if err := mc.Connect(); err != nil {
				m.message = err.Error()
			} else {
				m.message = ""
			}
		case "u":
			mc.Uninitialize()
			m.message = ""
		}

	case *midi.Connected:
		switch msg.String() {
		case "d":
			if err := mc.Disconnect(); err != nil {
				m.message = err.Error()
			}
			m.refreshPorts()
		case "u":
			mc.Uninitialize()
		}
	}
	return m, nil
}

func (m *Model) selectUnderCursor() {
	var err error
	switch m.picker.focus {
	case focusInputs:
		if p, ok := m.picker.input(); ok {
			err = m.cfg.Machine.SelectInput(p)
		}
	case focusOutputs:
		if p, ok := m.picker.output(); ok {
			err = m.cfg.Machine.SelectOutput(p)
		}
	}
	if err != nil {
		m.message = err.Error()
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Lumatone") + " " + statusStyle.Render(m.cfg.LayoutPath) + " " + m.stateLine() + "\n")
	switch s := m.cfg.Machine.State().(type) {
	case *midi.Ready:
		b.WriteString(m.picker.view(s) + "\n")
	case *midi.Connected:
		b.WriteString(m.heldLine() + "\n")
	}
	if m.message != "" {
		b.WriteString(errorStyle.Render(m.message) + "\n")
	}
	header := b.String()
	footer := helpStyle.Render(m.help())

	rows := m.height - strings.Count(header, "\n") - lipgloss.Height(footer)
	if m.width > 0 && rows > 0 {
		c := newCanvas(m.width, rows)
		drawKeyboard(c, m.keyColor)
		header += c.String() + "\n"
	}
	return header + footer
}

func (m *Model) keyColor(board, key int) colorful.Color {
	k := m.cfg.Layout.Boards[board].Keys[key]
	return keyFill(k.Color, m.cfg.Brightness, m.glow[board][key].pos)
}

func (m *Model) stateLine() string {
	switch s := m.cfg.Machine.State().(type) {
	case *midi.Uninitialized:
		if s.Err != nil {
			return errorStyle.Render("MIDI unavailable: " + s.Err.Error())
		}
		return statusStyle.Render("MIDI not initialized")
	case *midi.Ready:
		line := statusStyle.Render("MIDI ready")
		if s.LastErr != nil {
			line += " " + errorStyle.Render(s.LastErr.Error())
		}
		return line
	case *midi.Connected:
		return connectedStyle.Render(fmt.Sprintf("%s → %s", s.Input().Name, s.Output().Name))
	}
	return ""
}

func (m *Model) heldLine() string {
	held := m.cfg.Tracker.Pressed()
	names := make([]string, 0, len(held))
	for _, n := range held {
		names = append(names, fmt.Sprintf("%s/%d", noteName(n.Key), n.Channel+1))
	}
	line := headingStyle.Render("Held: ") + strings.Join(names, " ")
	if m.last != "" {
		line += statusStyle.Render("  last: " + m.last)
	}
	if m.cfg.Recorder != nil {
		line += statusStyle.Render(fmt.Sprintf("  recorded: %d", m.cfg.Recorder.Len()))
	}
	return line
}

func (m *Model) help() string {
	const common = "+/-: brightness • q: quit"
	switch m.cfg.Machine.State().(type) {
	case *midi.Uninitialized:
		return "i: initialize MIDI • " + common
	case *midi.Ready:
		return "tab: inputs/outputs • ↑/k ↓/j: move • enter: select • c: connect • r: refresh • u: uninitialize • " + common
	default:
		return "d: disconnect • u: uninitialize • " + common
	}
}
