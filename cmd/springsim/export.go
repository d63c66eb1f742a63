package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/export"
)

// output opens --out, or stdout when it is empty and the format is text.
func output(def string) (io.WriteCloser, error) {
	name := outFile
	if name == "" {
		name = def
	}
	if name == "" || name == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	traj, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output("")
	if err != nil {
		return err
	}
	defer w.Close()
	return export.WriteCSV(w, traj)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	traj, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output("")
	if err != nil {
		return err
	}
	defer w.Close()
	return export.WriteJSON(w, traj)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	traj, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	switch svgKind {
	case "displacement":
		svg = export.PathSVG(export.DisplacementPoints(traj), 800, 300, "#1f77b4")
	case "phase":
		svg = export.CanvasToSVG(export.PhaseCanvas(traj, 80, 40), 4)
	default:
		return fmt.Errorf("unknown svg kind %q (displacement, phase)", svgKind)
	}

	w, err := output("")
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.WriteString(w, svg)
	return err
}

func exportPNG(cmd *cobra.Command, args []string) error {
	traj, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	c := export.Chart(chart)
	if c != export.ChartMotion && c != export.ChartEnergy {
		return fmt.Errorf("unknown chart %q (motion, energy)", chart)
	}

	w, err := output(args[0] + ".png")
	if err != nil {
		return err
	}
	defer w.Close()
	if err := export.WritePNG(w, traj, c, export.DefaultPNGOptions()); err != nil {
		return err
	}
	if outFile != "-" {
		fmt.Fprintf(os.Stderr, "wrote %s chart\n", c)
	}
	return nil
}

func exportWAV(cmd *cobra.Command, args []string) error {
	traj, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	opts := export.DefaultWAVOptions()
	opts.Carrier = carrier
	opts.Speed = audioSpeed

	name := outFile
	if name == "" {
		name = args[0] + ".wav"
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteWAV(f, traj, opts); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s)\n", name, export.WAVDuration(traj, opts))
	return nil
}
