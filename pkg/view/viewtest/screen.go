// Package viewtest draws primitives on a simulation screen for tests.
package viewtest

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var NewSimulationScreen = tcell.NewSimulationScreen

// TB is the part of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// NewSimScreen returns an initialized screen of the given size.
func NewSimScreen(t TB, charset string, width, height int) tcell.Screen {
	t.Helper()
	s := NewSimulationScreen(charset)
	if err := s.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	s.SetSize(width, height)
	return s
}

// Draw lays p out over the whole screen and draws it.
func Draw(screen tcell.Screen, p tview.Primitive) {
	width, height := screen.Size()
	p.SetRect(0, 0, width, height)
	p.Draw(screen)
}

// ReadLine reads row y, with blanks for cells nothing was drawn on.
func ReadLine(screen tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		str, _, _ := screen.Get(x, y)
		if str == "" || str == "\x00" {
			b.WriteRune(' ')
			continue
		}
		b.WriteString(str)
	}
	return b.String()
}

// Colors returns the foreground and background drawn at x, y.
func Colors(screen tcell.Screen, x, y int) (fg, bg tcell.Color) {
	_, style, _ := screen.Get(x, y)
	fg, bg, _ = style.Decompose()
	return fg, bg
}
