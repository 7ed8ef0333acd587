package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/propsim/internal/qprop"
)

const historyCapacity = 120

// param is one tunable quantity of the operating point.
type param struct {
	name string
	unit string
	step float64 // additive step, used when the value is zero
	get  func(f *qprop.Flow) float64
	set  func(f *qprop.Flow, v float64)
}

var params = []param{
	{
		name: "rpm", unit: "rpm", step: 100,
		get: func(f *qprop.Flow) float64 { return f.RPM() },
		set: func(f *qprop.Flow, v float64) { f.Omega = v * math.Pi / 30 },
	},
	{
		name: "velocity", unit: "m/s", step: 0.5,
		get: func(f *qprop.Flow) float64 { return f.Velocity },
		set: func(f *qprop.Flow, v float64) { f.Velocity = v },
	},
	{
		name: "density", unit: "kg/m3", step: 0.01,
		get: func(f *qprop.Flow) float64 { return f.Density },
		set: func(f *qprop.Flow, v float64) { f.Density = v },
	},
}

// Explorer re-solves a rotor as its operating point is tuned.
type Explorer struct {
	rotor    *qprop.Rotor
	cfg      qprop.Config
	flow     qprop.Flow
	initial  qprop.Flow
	perf     *qprop.Performance
	err      error
	selected int
	thrust   []float64
	showHelp bool
	width    int
}

func NewExplorer(rotor *qprop.Rotor, flow qprop.Flow, cfg qprop.Config) Explorer {
	m := Explorer{
		rotor:   rotor,
		cfg:     cfg,
		flow:    flow,
		initial: flow,
		thrust:  make([]float64, 0, historyCapacity),
		width:   80,
	}
	m.solve()
	return m
}

func (m Explorer) Init() tea.Cmd { return nil }

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.selected = (m.selected + 1) % len(params)
		case "up", "k":
			m.adjust(1.05, 1)
		case "down", "j":
			m.adjust(0.95, -1)
		case "r":
			m.flow = m.initial
			m.solve()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// adjust scales the selected parameter, stepping additively away from zero.
func (m *Explorer) adjust(factor, dir float64) {
	p := params[m.selected]
	v := p.get(&m.flow)
	if v == 0 {
		v = dir * p.step
	} else {
		v *= factor
	}
	p.set(&m.flow, v)
	m.solve()
}

func (m *Explorer) solve() {
	perf, err := qprop.Solve(m.rotor, m.flow, m.cfg)
	m.err = err
	if perf == nil {
		return
	}
	m.perf = perf
	if len(m.thrust) == historyCapacity {
		m.thrust = m.thrust[1:]
	}
	m.thrust = append(m.thrust, perf.Thrust)
}

// Flow returns the current operating point.
func (m Explorer) Flow() qprop.Flow { return m.flow }

// Performance returns the latest solve, nil if none succeeded.
func (m Explorer) Performance() *qprop.Performance { return m.perf }

func (m Explorer) View() string {
	var left strings.Builder
	if m.perf != nil {
		left.WriteString(Summary(m.rotor.Name, m.flow, m.perf) + "\n")
		if plot := LoadingPlot(m.perf.DTdr); plot != "" {
			left.WriteString(plot + "\n")
		}
	}
	if m.err != nil {
		left.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}

	var right strings.Builder
	right.WriteString(titleStyle().Render("OPERATING POINT") + "\n\n")
	for i, p := range params {
		line := fmt.Sprintf("%-9s %10.3f %s", p.name, p.get(&m.flow), p.unit)
		if i == m.selected {
			right.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).Render("> "+line) + "\n")
		} else {
			right.WriteString("  " + line + "\n")
		}
	}
	right.WriteString("\nthrust history\n" + Sparkline(m.thrust, 30) + "\n")
	right.WriteString(keyHint.Render("\nTAB:Param ↑↓:Tune R:Reset\nT:Theme ?:Help Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, left.String(), panelStyle().Render(right.String()))
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

const helpText = `
  Tab      cycle parameter
  Up/K     increase parameter (+5%)
  Down/J   decrease parameter (-5%)
  R        reset operating point
  T        cycle themes
  ?        toggle this help
  Q        quit
`

// RunExplorer starts the explorer on the alternate screen.
func RunExplorer(rotor *qprop.Rotor, flow qprop.Flow, cfg qprop.Config) error {
	_, err := tea.NewProgram(NewExplorer(rotor, flow, cfg), tea.WithAltScreen()).Run()
	return err
}
