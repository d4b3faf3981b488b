// Package theme holds the color presets a listing can be drawn with.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) TCell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (c RGB) Lipgloss() lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// Pair is a foreground/background combination.
type Pair struct {
	FG, BG RGB
}

// Theme is the full set of colors used to draw a listing.
type Theme struct {
	FG        RGB
	BG        RGB
	Selected  Pair
	Highlight RGB
}

// Flavor names one of the built-in presets.
type Flavor int

const (
	Latte Flavor = iota
	Frappe
	Macchiato
	Mocha
)

// DefaultFlavor is used when no theme is configured.
const DefaultFlavor = Mocha

var flavorNames = [...]string{
	Latte:     "latte",
	Frappe:    "frappe",
	Macchiato: "macchiato",
	Mocha:     "mocha",
}

func (f Flavor) String() string {
	if f < 0 || int(f) >= len(flavorNames) {
		return fmt.Sprintf("flavor(%d)", int(f))
	}
	return flavorNames[f]
}

// Flavors lists every preset in declaration order.
func Flavors() []Flavor {
	return []Flavor{Latte, Frappe, Macchiato, Mocha}
}

func ParseFlavor(name string) (Flavor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "é", "e")
	for _, f := range Flavors() {
		if flavorNames[f] == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown flavor %q", ErrInvalidTheme, name)
}
