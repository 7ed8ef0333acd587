package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/propsim/internal/qprop"
)

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Accent)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(14)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
}

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Muted).
		Padding(0, 2)
}

var keyHint = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

// Status renders an element or point status in the theme colors.
func Status(s qprop.ElementStatus) string {
	style := lipgloss.NewStyle().Bold(true)
	switch s {
	case qprop.StatusConverged:
		style = style.Foreground(CurrentTheme.Success)
	case qprop.StatusUnconverged:
		style = style.Foreground(CurrentTheme.Warning)
	default:
		style = style.Foreground(CurrentTheme.Error)
	}
	return style.Render(s.String())
}

// overall picks the worst element status.
func overall(perf *qprop.Performance) qprop.ElementStatus {
	worst := qprop.StatusConverged
	for _, s := range perf.Status {
		if s > worst {
			worst = s
		}
	}
	return worst
}

func row(label, value string) string {
	return labelStyle().Render(label) + valueStyle().Render(value) + "\n"
}

// Summary renders the integral results of one solve in a panel.
func Summary(name string, flow qprop.Flow, perf *qprop.Performance) string {
	var s strings.Builder
	s.WriteString(titleStyle().Render(strings.ToUpper(name)) + "\n\n")
	s.WriteString(row("velocity", fmt.Sprintf("%.2f m/s", flow.Velocity)))
	s.WriteString(row("speed", fmt.Sprintf("%.0f rpm", flow.RPM())))
	s.WriteString(row("J", fmt.Sprintf("%.4f", perf.J)))
	s.WriteString(row("thrust", fmt.Sprintf("%.4f N", perf.Thrust)))
	s.WriteString(row("torque", fmt.Sprintf("%.5f N m", perf.Torque)))
	s.WriteString(row("power", fmt.Sprintf("%.2f W", perf.Power())))
	s.WriteString(row("CT", fmt.Sprintf("%.5f", perf.CT)))
	s.WriteString(row("CP", fmt.Sprintf("%.5f", perf.CP)))
	s.WriteString(row("efficiency", fmt.Sprintf("%.3f", perf.Efficiency())))

	status := Status(overall(perf))
	if n := len(perf.Unconverged()) + len(perf.Failed()); n > 0 {
		status += fmt.Sprintf(" (%d of %d elements)", n, perf.Len())
	}
	s.WriteString(labelStyle().Render("status") + status)
	return panelStyle().Render(s.String())
}

// Sparkline renders values as a one-line bar chart of the given width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(b.String())
}
