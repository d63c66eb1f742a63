package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/springsim/internal/sim"
)

const (
	canvasWidth  = 60
	canvasHeight = 16
	framesPerSec = 30
	chartWindow  = 300
	minSpeed     = 0.125
	maxSpeed     = 64
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/framesPerSec, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Player animates a precomputed trajectory: a wall, a spring and the mass
// at the sampled displacement, next to live readouts and an energy chart.
type Player struct {
	traj     *sim.Trajectory
	title    string
	canvas   *Canvas
	pos      float64
	speed    float64
	running  bool
	showHelp bool
	theme    Theme
	scale    float64
}

func NewPlayer(traj *sim.Trajectory, title string) Player {
	peak := 0.0
	for _, x := range traj.X {
		peak = math.Max(peak, math.Abs(x))
	}
	scale := 0.0
	if peak > 0 {
		scale = 0.35 * float64(canvasWidth*2) / peak
	}
	if title == "" {
		title = traj.Params.Label
	}
	return Player{
		traj:    traj,
		title:   title,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		speed:   1,
		running: true,
		theme:   ThemeTerminal,
		scale:   scale,
	}
}

func (m Player) Init() tea.Cmd { return tick() }

// Index is the sample currently shown.
func (m Player) Index() int {
	i := int(m.pos)
	return max(0, min(i, m.traj.Len()-1))
}

func (m Player) Speed() float64 { return m.speed }

func (m Player) Running() bool { return m.running }

func (m Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.running && m.Index() == m.traj.Len()-1 {
				m.pos = 0
			}
			m.running = !m.running
		case "r":
			m.pos = 0
			m.running = true
		case "+", "=":
			m.speed = math.Min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = math.Max(m.speed/2, minSpeed)
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "t":
			m.theme = m.theme.Next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(1.0 / framesPerSec)
		}
		return m, tick()
	}
	return m, nil
}

// advance moves the play head by wall seconds of real time.
func (m *Player) advance(wall float64) {
	last := float64(m.traj.Len() - 1)
	m.pos += wall * m.speed / m.traj.Step
	if m.pos >= last {
		m.pos = last
		m.running = false
	}
}

// scrub jumps one simulated second and pauses.
func (m *Player) scrub(dir int) {
	m.running = false
	m.pos = math.Round(m.pos + float64(dir)/m.traj.Step)
	m.pos = math.Max(0, math.Min(m.pos, float64(m.traj.Len()-1)))
}

func (m Player) View() string {
	i := m.Index()
	tr := m.traj
	m.draw(tr.X[i])

	var s strings.Builder
	s.WriteString(m.theme.header().Render(strings.ToUpper(m.title)) + "\n")

	status := StatusRunning.Render("PLAYING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(fmt.Sprintf("%s  x%g\n", status, m.speed))
	s.WriteString(ProgressBar(float64(i)/float64(max(tr.Len()-1, 1)), 30) + "\n\n")

	row := func(label, value string) {
		s.WriteString(m.theme.label().Render(label) + m.theme.value().Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3f s", tr.T[i]))
	row("Position", fmt.Sprintf("%+.4f m", tr.X[i]))
	row("Velocity", fmt.Sprintf("%+.4f m/s", tr.V[i]))
	row("Accel", fmt.Sprintf("%+.3f m/s²", tr.A[i]))
	row("Kinetic", fmt.Sprintf("%.4f J", tr.KE[i]))
	row("Potential", fmt.Sprintf("%.4f J", tr.PE[i]))
	row("Total", fmt.Sprintf("%.4f J", tr.ETotal[i]))
	row("Dissipated", fmt.Sprintf("%.4f J", tr.EDissipated[i]))
	row("Regime", tr.Params.Regime().Title())
	row("Force", tr.ForceKind)

	if i > 1 {
		from := max(0, i-chartWindow)
		chart := asciigraph.Plot(tr.ETotal[from:i+1], asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy"))
		s.WriteString(m.theme.graph().Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\n+/-:Speed [ ]:Seek T:Theme ?:Help"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return `
  Space  pause or resume playback
  R      restart from t0
  + / -  double or halve playback speed
  [ / ]  seek one simulated second
  T      cycle colour theme
  Q      quit
` + "\n" + view
	}
	return view
}

// draw renders the wall, the spring and the mass displaced by x from
// equilibrium.
func (m Player) draw(x float64) {
	c := m.canvas
	c.Clear()
	cw, ch := c.Width*2, c.Height*4
	cy := ch / 2
	wallX := 4
	equilibrium := wallX + int(0.5*float64(cw))

	c.DrawLine(wallX, cy-14, wallX, cy+14)
	for y := cy - 14; y <= cy+14; y += 4 {
		c.DrawLine(wallX, y, wallX-3, y+3)
	}
	for y := cy - 12; y <= cy+12; y += 3 {
		c.Set(equilibrium, y)
	}
	c.DrawLine(0, cy+10, cw-1, cy+10)

	massX := equilibrium + int(x*m.scale)
	massX = max(wallX+12, min(massX, cw-6))
	c.FillRect(massX, cy+2, 5, 7)

	const coils = 12
	end := massX - 6
	step := float64(end-wallX) / coils
	prevX, prevY := wallX, cy
	for k := 1; k < coils; k++ {
		nx := wallX + int(float64(k)*step)
		ny := cy - 5
		if k%2 == 0 {
			ny = cy + 5
		}
		c.DrawLine(prevX, prevY, nx, ny)
		prevX, prevY = nx, ny
	}
	c.DrawLine(prevX, prevY, end, cy)
}

// Play runs the playback view until the user quits.
func Play(traj *sim.Trajectory, title string) error {
	_, err := tea.NewProgram(NewPlayer(traj, title), tea.WithAltScreen()).Run()
	return err
}
