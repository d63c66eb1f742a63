package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvas_Set(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	if !c.IsSet(0, 0) || !c.IsSet(3, 3) {
		t.Error("dots not set")
	}
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell 0 = %U, want U+2801", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("cell 1 = %U, want U+2880", c.Grid[0][1])
	}
}

func TestCanvas_OutOfRange(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Set(-1, 0)
	c.Set(2, 0)
	c.Set(0, 4)
	if c.IsSet(-1, 0) || c.Grid[0][0] != blank {
		t.Error("out-of-range dots must be ignored")
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for x := 0; x < 8; x++ {
		if !c.IsSet(x, 0) {
			t.Errorf("dot %d missing", x)
		}
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("Clear left dots behind")
	}
}

func TestCanvas_FillRect(t *testing.T) {
	c := NewCanvas(4, 2)
	c.FillRect(3, 3, 1, 1)
	n := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if c.IsSet(x, y) {
				n++
			}
		}
	}
	if n != 9 {
		t.Errorf("filled %d dots, want 9", n)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8); got != "▁▂▃▄▅▆▇█" {
		t.Errorf("Sparkline = %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty Sparkline = %q", got)
	}
}

func TestThemeNext(t *testing.T) {
	th := ThemeTerminal
	seen := map[string]bool{}
	for range Themes {
		seen[th.Name] = true
		th = th.Next()
	}
	if len(seen) != len(Themes) || th.Name != ThemeTerminal.Name {
		t.Errorf("Next did not cycle through all themes: %v", seen)
	}
	if GetTheme("nope").Name != ThemeTerminal.Name {
		t.Error("unknown theme should fall back to terminal")
	}
}

func TestSeparator(t *testing.T) {
	sep := Separator(40)
	if !strings.Contains(sep, "◆") {
		t.Errorf("Separator(40) = %q, want a centre mark", sep)
	}
	if w := lipgloss.Width(sep); w != 40 {
		t.Errorf("width = %d, want 40", w)
	}
	if w := lipgloss.Width(Separator(3)); w != 3 {
		t.Errorf("narrow width = %d, want 3", w)
	}
}
