package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/soilsim/internal/config"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type field struct {
	label string
	get   func(*config.Config) float64
	set   func(*config.Config, float64)
}

var fields = []field{
	{"drying rate (a)", func(c *config.Config) float64 { return c.Plant.DryingRate }, func(c *config.Config, v float64) { c.Plant.DryingRate = v }},
	{"irrigation effect (b)", func(c *config.Config) float64 { return c.Plant.Irrigation }, func(c *config.Config, v float64) { c.Plant.Irrigation = v }},
	{"ambient moisture", func(c *config.Config) float64 { return c.Plant.Ambient }, func(c *config.Config, v float64) { c.Plant.Ambient = v }},
	{"target moisture", func(c *config.Config) float64 { return c.Plant.Target }, func(c *config.Config, v float64) { c.Plant.Target = v }},
	{"initial moisture", func(c *config.Config) float64 { return c.Plant.Initial }, func(c *config.Config, v float64) { c.Plant.Initial = v }},
	{"kp", func(c *config.Config) float64 { return c.Controller.Kp }, func(c *config.Config, v float64) { c.Controller.Kp = v }},
	{"ki", func(c *config.Config) float64 { return c.Controller.Ki }, func(c *config.Config, v float64) { c.Controller.Ki = v }},
	{"kd", func(c *config.Config) float64 { return c.Controller.Kd }, func(c *config.Config, v float64) { c.Controller.Kd = v }},
	{"observer l1", func(c *config.Config) float64 { return c.Observer.L1 }, func(c *config.Config, v float64) { c.Observer.L1 = v }},
	{"observer l2", func(c *config.Config) float64 { return c.Observer.L2 }, func(c *config.Config, v float64) { c.Observer.L2 = v }},
	{"time start", func(c *config.Config) float64 { return c.Grid.Start }, func(c *config.Config, v float64) { c.Grid.Start = v }},
	{"time end", func(c *config.Config) float64 { return c.Grid.End }, func(c *config.Config, v float64) { c.Grid.End = v }},
	{"samples", func(c *config.Config) float64 { return float64(c.Grid.Samples) }, func(c *config.Config, v float64) { c.Grid.Samples = int(v) }},
}

type promptModel struct {
	cfg     *config.Config
	cursor  int
	editing bool
	editBuf string
	accept  bool
}

func newPrompt(cfg *config.Config) promptModel {
	return promptModel{cfg: cfg}
}

func (m promptModel) Init() tea.Cmd { return nil }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		switch key.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				fields[m.cursor].set(m.cfg, v)
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(key.String()) == 1 {
				c := key.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += key.String()
				}
			}
		}
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(fields)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = ""
	case "r":
		m.accept = true
		return m, tea.Quit
	}
	return m, nil
}

func (m promptModel) View() string {
	s := cyan.Render("  soilsim parameters") + "\n\n"

	for i, f := range fields {
		cursor := "  "
		style := white
		if i == m.cursor {
			cursor = cyan.Render("> ")
			style = yellow
		}

		val := fmt.Sprintf("%g", f.get(m.cfg))
		if m.editing && i == m.cursor {
			val = green.Render(m.editBuf + "_")
		}
		s += fmt.Sprintf("  %s%-22s %s\n", cursor, style.Render(f.label), val)
	}

	s += "\n" + dim.Render("  enter: edit   r: run   q: quit") + "\n"
	return s
}

// RunPrompt edits cfg in place through an interactive form. It reports
// whether the user chose to run the simulation.
func RunPrompt(cfg *config.Config) (bool, error) {
	final, err := tea.NewProgram(newPrompt(cfg)).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(promptModel)
	if !ok {
		return false, fmt.Errorf("unexpected prompt model %T", final)
	}
	return m.accept, nil
}
