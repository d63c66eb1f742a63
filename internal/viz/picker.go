package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/springsim/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// Entry is one selectable system in the picker menu.
type Entry struct {
	ID          string
	Label       string
	Description string
}

// Loader computes the trajectory for a menu entry.
type Loader func(id string) (*sim.Trajectory, error)

// Picker lists systems and hands the chosen one to a Player. Esc returns
// from playback to the menu.
type Picker struct {
	entries []Entry
	cursor  int
	load    Loader
	player  *Player
	err     error
}

func NewPicker(entries []Entry, load Loader) Picker {
	return Picker{entries: entries, load: load}
}

func (m Picker) Init() tea.Cmd { return nil }

func (m Picker) Playing() bool { return m.player != nil }

func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.player != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.player = nil
			return m, nil
		}
		next, cmd := m.player.Update(msg)
		p := next.(Player)
		m.player = &p
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.cursor]
		traj, err := m.load(e.ID)
		if err != nil {
			m.err = fmt.Errorf("%s: %w", e.ID, err)
			return m, nil
		}
		m.err = nil
		p := NewPlayer(traj, e.Label)
		m.player = &p
		return m, p.Init()
	}
	return m, nil
}

func (m Picker) View() string {
	if m.player != nil {
		return m.player.View() + "\n" + dim.Render("esc: back to menu")
	}

	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("springsim") + dim.Render("  choose a system") + "\n\n")
	for i, e := range m.entries {
		cursor := "  "
		line := white.Render(fmt.Sprintf("%-18s", e.ID))
		if i == m.cursor {
			cursor = yellow.Render("> ")
			line = yellow.Render(fmt.Sprintf("%-18s", e.ID))
		}
		b.WriteString(cursor + line + dim.Render(e.Label) + "\n")
	}
	if len(m.entries) > 0 {
		b.WriteString("\n" + dim.Render(m.entries[m.cursor].Description) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + SparkLow.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + KeyHint.Render("↑↓ select  enter play  q quit"))
	return b.String()
}

func RunPicker(entries []Entry, load Loader) error {
	_, err := tea.NewProgram(NewPicker(entries, load), tea.WithAltScreen()).Run()
	return err
}
