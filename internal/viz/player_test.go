package viz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

func testTrajectory(t *testing.T) *sim.Trajectory {
	t.Helper()
	p := physics.Params{Mass: 1, Stiffness: 100, Damping: 2, X0: 0.2, Label: "Spring-mass system"}
	traj, err := sim.Integrate(context.Background(), p, sim.Span{Start: 0, End: 2}, 0.01, nil)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	return traj
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tea.Model, msg tea.Msg) Player {
	t.Helper()
	next, _ := m.Update(msg)
	p, ok := next.(Player)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return p
}

func TestPlayer_Playback(t *testing.T) {
	traj := testTrajectory(t)
	p := NewPlayer(traj, "")

	if !p.Running() || p.Index() != 0 {
		t.Fatal("player should start running at sample 0")
	}

	for i := 0; i < 3; i++ {
		p = update(t, p, TickMsg(time.Now()))
	}
	// 3 frames at 30 fps is 0.1 s, or 10 samples at step 0.01.
	if idx := p.Index(); idx < 9 || idx > 10 {
		t.Errorf("Index() = %d after 0.1 s, want ~10", idx)
	}

	p = update(t, p, key(" "))
	paused := p.Index()
	p = update(t, p, TickMsg(time.Now()))
	if p.Running() || p.Index() != paused {
		t.Error("paused player advanced")
	}

	p = update(t, p, key("r"))
	if p.Index() != 0 || !p.Running() {
		t.Error("restart should rewind and resume")
	}
}

func TestPlayer_SpeedAndSeek(t *testing.T) {
	p := NewPlayer(testTrajectory(t), "demo")

	p = update(t, p, key("+"))
	if p.Speed() != 2 {
		t.Errorf("speed = %v, want 2", p.Speed())
	}
	for i := 0; i < 20; i++ {
		p = update(t, p, key("-"))
	}
	if p.Speed() != minSpeed {
		t.Errorf("speed = %v, want clamp at %v", p.Speed(), minSpeed)
	}

	p = update(t, p, key("]"))
	if p.Index() != 100 || p.Running() {
		t.Errorf("seek forward: index=%d running=%v", p.Index(), p.Running())
	}
	p = update(t, p, key("]"))
	p = update(t, p, key("]"))
	if p.Index() != 199 {
		t.Errorf("seek past end: index=%d, want 199", p.Index())
	}
	p = update(t, p, key("["))
	if p.Index() != 99 {
		t.Errorf("seek back: index=%d, want 99", p.Index())
	}
}

func TestPlayer_StopsAtEnd(t *testing.T) {
	p := NewPlayer(testTrajectory(t), "demo")
	for i := 0; i < 5; i++ {
		p = update(t, p, key("+"))
	}
	for i := 0; i < 100 && p.Running(); i++ {
		p = update(t, p, TickMsg(time.Now()))
	}
	if p.Running() || p.Index() != 199 {
		t.Errorf("expected paused at last sample, got index=%d running=%v", p.Index(), p.Running())
	}

	p = update(t, p, key(" "))
	if p.Index() != 0 || !p.Running() {
		t.Error("resuming at the end should restart")
	}
}

func TestPlayer_View(t *testing.T) {
	p := NewPlayer(testTrajectory(t), "")
	p = update(t, p, TickMsg(time.Now()))
	view := p.View()

	for _, want := range []string{"SPRING-MASS SYSTEM", "Position", "Underdamped", "none"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPicker(t *testing.T) {
	traj := testTrajectory(t)
	entries := []Entry{
		{ID: "a", Label: "First"},
		{ID: "broken", Label: "Broken"},
	}
	load := func(id string) (*sim.Trajectory, error) {
		if id == "broken" {
			return nil, errors.New("no data")
		}
		return traj, nil
	}

	var m tea.Model = NewPicker(entries, load)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(Picker).Playing() {
		t.Fatal("failed load should stay in the menu")
	}
	if !strings.Contains(m.View(), "no data") {
		t.Error("load error not shown")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.(Picker).Playing() || cmd == nil {
		t.Fatal("enter should start playback")
	}
	if !strings.Contains(m.View(), "FIRST") {
		t.Error("player view missing title")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(Picker).Playing() {
		t.Error("esc should return to the menu")
	}
}
