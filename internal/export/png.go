package export

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/sim"
)

type Chart string

const (
	ChartMotion Chart = "motion"
	ChartEnergy Chart = "energy"
)

var (
	colorX     = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorV     = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	colorEnv   = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	colorKE    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorPE    = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	colorTotal = color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}
	colorDiss  = color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff}
)

// PNGOptions sizes the image in inches at the given DPI.
type PNGOptions struct {
	Width, Height float64
	DPI           int
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Width: 8, Height: 5, DPI: 150}
}

// WritePNG renders a chart of traj. The motion chart overlays the decay
// envelope for unforced underdamped systems.
func WritePNG(w io.Writer, traj *sim.Trajectory, chart Chart, opts PNGOptions) error {
	p := plot.New()
	p.X.Label.Text = "t (s)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	switch chart {
	case ChartMotion, "":
		p.Title.Text = fmt.Sprintf("%s: displacement and velocity", traj.Params.Label)
		p.Y.Label.Text = "x (m), v (m/s)"
		if err := addLine(p, traj.T, traj.X, "x", colorX, false); err != nil {
			return err
		}
		if err := addLine(p, traj.T, traj.V, "v", colorV, false); err != nil {
			return err
		}
		if !traj.Forced() {
			if upper, lower, ok := analysis.Envelope(traj.Params, traj.T); ok {
				if err := addLine(p, traj.T, upper, "envelope", colorEnv, true); err != nil {
					return err
				}
				if err := addLine(p, traj.T, lower, "", colorEnv, true); err != nil {
					return err
				}
			}
		}
	case ChartEnergy:
		p.Title.Text = fmt.Sprintf("%s: energy", traj.Params.Label)
		p.Y.Label.Text = "E (J)"
		series := []struct {
			name string
			ys   []float64
			c    color.Color
		}{
			{"kinetic", traj.KE, colorKE},
			{"potential", traj.PE, colorPE},
			{"total", traj.ETotal, colorTotal},
			{"dissipated", traj.EDissipated, colorDiss},
		}
		for _, s := range series {
			if err := addLine(p, traj.T, s.ys, s.name, s.c, false); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown chart %q", chart)
	}

	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultPNGOptions()
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultPNGOptions().DPI
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	png := vgimg.PngCanvas{Canvas: c}
	_, err := png.WriteTo(w)
	return err
}

func addLine(p *plot.Plot, xs, ys []float64, name string, c color.Color, dashed bool) error {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	if dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}
	p.Add(line)
	if name != "" {
		p.Legend.Add(name, line)
	}
	return nil
}
