package theme

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/gdamore/tcell/v2"
)

func TestAccessorsArePure(t *testing.T) {
	accessors := map[Flavor]func() Theme{
		Latte:     LatteTheme,
		Frappe:    FrappeTheme,
		Macchiato: MacchiatoTheme,
		Mocha:     MochaTheme,
	}
	for flavor, get := range accessors {
		t.Run(flavor.String(), func(t *testing.T) {
			first := get()
			second := get()
			assert.Equal(t, first, second)
			assert.Equal(t, first, ForFlavor(flavor))

			// mutating a returned copy does not leak into the preset
			first.FG = RGB{}
			assert.NotEqual(t, first, get())
		})
	}
}

func TestFlavorsAreDistinct(t *testing.T) {
	seen := map[Theme]Flavor{}
	for _, f := range Flavors() {
		th := ForFlavor(f)
		if other, ok := seen[th]; ok {
			t.Fatalf("%s and %s share a palette", f, other)
		}
		seen[th] = f
	}
	assert.Equal(t, 4, len(seen))
}

func TestForFlavor_OutOfRange(t *testing.T) {
	assert.Equal(t, ForFlavor(DefaultFlavor), ForFlavor(Flavor(99)))
	assert.Equal(t, ForFlavor(DefaultFlavor), ForFlavor(Flavor(-1)))
}

func TestParseFlavor(t *testing.T) {
	tests := []struct {
		in      string
		want    Flavor
		wantErr bool
	}{
		{in: "latte", want: Latte},
		{in: " Mocha ", want: Mocha},
		{in: "Frappé", want: Frappe},
		{in: "MACCHIATO", want: Macchiato},
		{in: "espresso", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlavor(tt.in)
			if tt.wantErr {
				assert.IsError(t, err, ErrInvalidTheme)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlavor_String(t *testing.T) {
	assert.Equal(t, "latte", Latte.String())
	assert.Equal(t, "flavor(7)", Flavor(7).String())
}

func TestRGB(t *testing.T) {
	c := RGB{R: 255, G: 16, B: 0}
	assert.Equal(t, "#ff1000", c.Hex())
	assert.Equal(t, "#ff1000", string(c.Lipgloss()))
	assert.Equal(t, tcell.NewRGBColor(255, 16, 0), c.TCell())
}

func rgbTable(r, g, b any) map[string]any {
	return map[string]any{"r": r, "g": g, "b": b}
}

func TestFromTable(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"fg": rgbTable(int64(1), int64(2), int64(3)),
			"bg": rgbTable(4, 5, 6),
			"selected": map[string]any{
				"fg": rgbTable(7.0, 8.0, 9.0),
				"bg": rgbTable(10, 11, 12),
			},
			"Highlight": rgbTable(255, 0, 128),
		}
	}

	t.Run("valid", func(t *testing.T) {
		th, err := FromTable(valid())
		assert.NoError(t, err)
		assert.Equal(t, Theme{
			FG:        RGB{1, 2, 3},
			BG:        RGB{4, 5, 6},
			Selected:  Pair{FG: RGB{7, 8, 9}, BG: RGB{10, 11, 12}},
			Highlight: RGB{255, 0, 128},
		}, th)
	})

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{name: "missing_fg", mutate: func(m map[string]any) { delete(m, "fg") }},
		{name: "out_of_range", mutate: func(m map[string]any) { m["bg"] = rgbTable(0, 256, 0) }},
		{name: "negative", mutate: func(m map[string]any) { m["bg"] = rgbTable(-1, 0, 0) }},
		{name: "fraction", mutate: func(m map[string]any) { m["bg"] = rgbTable(0.5, 0, 0) }},
		{name: "string_channel", mutate: func(m map[string]any) { m["bg"] = rgbTable("red", 0, 0) }},
		{name: "missing_channel", mutate: func(m map[string]any) { m["bg"] = map[string]any{"r": 1, "g": 2} }},
		{name: "selected_not_table", mutate: func(m map[string]any) { m["selected"] = "blue" }},
		{name: "selected_missing_bg", mutate: func(m map[string]any) {
			m["selected"] = map[string]any{"fg": rgbTable(1, 1, 1)}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := valid()
			tt.mutate(table)
			_, err := FromTable(table)
			assert.IsError(t, err, ErrInvalidTheme)
		})
	}
}
