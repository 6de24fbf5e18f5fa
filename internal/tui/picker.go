package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/icco/lumaviz/internal/midi"
)

const (
	keyUp   = "up"
	keyDown = "down"
)

type focus int

const (
	focusInputs focus = iota
	focusOutputs
)

// picker is the two port lists shown while MIDI is ready.
type picker struct {
	ins    []midi.InPort
	outs   []midi.OutPort
	focus  focus
	cursor [2]int
}

func (p *picker) set(ins []midi.InPort, outs []midi.OutPort) {
	p.ins, p.outs = ins, outs
	p.cursor[focusInputs] = clampInt(p.cursor[focusInputs], 0, max(len(ins)-1, 0))
	p.cursor[focusOutputs] = clampInt(p.cursor[focusOutputs], 0, max(len(outs)-1, 0))
}

func (p *picker) toggleFocus() {
	if p.focus == focusInputs {
		p.focus = focusOutputs
	} else {
		p.focus = focusInputs
	}
}

func (p *picker) length(f focus) int {
	if f == focusInputs {
		return len(p.ins)
	}
	return len(p.outs)
}

func (p *picker) move(d int) {
	n := p.length(p.focus)
	if n == 0 {
		return
	}
	p.cursor[p.focus] = clampInt(p.cursor[p.focus]+d, 0, n-1)
}

func (p *picker) input() (midi.InPort, bool) {
	i := p.cursor[focusInputs]
	if i >= len(p.ins) {
		return midi.InPort{}, false
	}
	return p.ins[i], true
}

func (p *picker) output() (midi.OutPort, bool) {
	i := p.cursor[focusOutputs]
	if i >= len(p.outs) {
		return midi.OutPort{}, false
	}
	return p.outs[i], true
}

func (p *picker) view(r *midi.Ready) string {
	in, hasIn := r.Input()
	out, hasOut := r.Output()

	names := func(n int, name func(int) string) []string {
		s := make([]string, n)
		for i := range s {
			s[i] = name(i)
		}
		return s
	}
	inNames := names(len(p.ins), func(i int) string { return p.ins[i].Name })
	outNames := names(len(p.outs), func(i int) string { return p.outs[i].Name })

	inCol := p.column("Input", focusInputs, inNames, func(i int) bool {
		return hasIn && p.ins[i].Name == in.Name && p.ins[i].Number() == in.Number()
	})
	outCol := p.column("Output", focusOutputs, outNames, func(i int) bool {
		return hasOut && p.outs[i].Name == out.Name && p.outs[i].Number() == out.Number()
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, inCol, "    ", outCol)
}

func (p *picker) column(title string, f focus, names []string, chosen func(int) bool) string {
	var b strings.Builder

	heading := title
	if p.focus == f {
		heading = "▸ " + heading
	} else {
		heading = "  " + heading
	}
	b.WriteString(headingStyle.Render(heading))

	if len(names) == 0 {
		b.WriteString("\n" + statusStyle.Render("  (none found)"))
	}
	for i, name := range names {
		cursor := "  "
		if p.focus == f && i == p.cursor[f] {
			cursor = "> "
		}
		mark := ""
		if chosen(i) {
			mark = " ✓"
		}
		line := fmt.Sprintf("%s%s%s", cursor, name, mark)
		if p.focus == f && i == p.cursor[f] {
			line = selectedStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}
