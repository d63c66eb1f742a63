package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/springsim/internal/sim"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PhasePortrait2D holds (x, v) pairs of a trajectory.
type PhasePortrait2D struct {
	Points []Point `json:"points"`
}

// PhasePortrait collects the (position, velocity) pairs of traj.
func PhasePortrait(traj *sim.Trajectory) *PhasePortrait2D {
	if traj == nil {
		return nil
	}
	portrait := &PhasePortrait2D{Points: make([]Point, traj.Len())}
	for i := range traj.X {
		portrait.Points[i] = Point{X: traj.X[i], Y: traj.V[i]}
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection samples (x, v) stroboscopically once per drive period,
// interpolating linearly between grid points. Skip drops the first
// samples so transients can die out.
func PoincareSection(traj *sim.Trajectory, period float64, skip int) *PhasePortrait2D {
	if traj == nil || traj.Len() < 2 || !(period > 0) {
		return nil
	}

	section := &PhasePortrait2D{}
	t0 := traj.T[0]
	last := traj.T[traj.Len()-1]
	for k := 0; ; k++ {
		ts := t0 + float64(k)*period
		if ts > last {
			break
		}
		if k < skip {
			continue
		}
		pos := (ts - t0) / traj.Step
		i := int(pos)
		if i >= traj.Len()-1 {
			i = traj.Len() - 2
		}
		frac := pos - float64(i)
		section.Points = append(section.Points, Point{
			X: traj.X[i] + frac*(traj.X[i+1]-traj.X[i]),
			Y: traj.V[i] + frac*(traj.V[i+1]-traj.V[i]),
		})
	}
	return section
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PhasePortrait2D, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(section, width, height)
}
