package theme

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTheme = errors.New("invalid theme")

// FromTable builds a Theme from a nested table of the form
//
//	fg        = {r, g, b}
//	bg        = {r, g, b}
//	selected  = {fg = {r, g, b}, bg = {r, g, b}}
//	highlight = {r, g, b}
//
// as decoded from the init file. Every key is required.
func FromTable(table map[string]any) (Theme, error) {
	var t Theme
	var err error
	if t.FG, err = rgbAt(table, "fg"); err != nil {
		return Theme{}, err
	}
	if t.BG, err = rgbAt(table, "bg"); err != nil {
		return Theme{}, err
	}
	selected, err := tableAt(table, "selected")
	if err != nil {
		return Theme{}, err
	}
	if t.Selected.FG, err = rgbAt(selected, "fg"); err != nil {
		return Theme{}, fmt.Errorf("selected.%w", err)
	}
	if t.Selected.BG, err = rgbAt(selected, "bg"); err != nil {
		return Theme{}, fmt.Errorf("selected.%w", err)
	}
	if t.Highlight, err = rgbAt(table, "highlight"); err != nil {
		return Theme{}, err
	}
	return t, nil
}

func tableAt(table map[string]any, key string) (map[string]any, error) {
	v, ok := lookup(table, key)
	if !ok {
		return nil, fmt.Errorf("%s: %w: missing", key, ErrInvalidTheme)
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w: expected a table, got %T", key, ErrInvalidTheme, v)
	}
	return sub, nil
}

func rgbAt(table map[string]any, key string) (RGB, error) {
	sub, err := tableAt(table, key)
	if err != nil {
		return RGB{}, err
	}
	var c RGB
	for _, ch := range []struct {
		name string
		dst  *uint8
	}{{"r", &c.R}, {"g", &c.G}, {"b", &c.B}} {
		v, ok := lookup(sub, ch.name)
		if !ok {
			return RGB{}, fmt.Errorf("%s.%s: %w: missing", key, ch.name, ErrInvalidTheme)
		}
		n, err := channel(v)
		if err != nil {
			return RGB{}, fmt.Errorf("%s.%s: %w", key, ch.name, err)
		}
		*ch.dst = n
	}
	return c, nil
}

// lookup is case-insensitive because config loaders lower-case keys.
func lookup(table map[string]any, key string) (any, bool) {
	if v, ok := table[key]; ok {
		return v, true
	}
	for k, v := range table {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func channel(v any) (uint8, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case float64:
		if x != float64(int64(x)) {
			return 0, fmt.Errorf("%w: channel %v is not an integer", ErrInvalidTheme, x)
		}
		n = int64(x)
	default:
		return 0, fmt.Errorf("%w: channel has type %T", ErrInvalidTheme, v)
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("%w: channel %d outside 0..255", ErrInvalidTheme, n)
	}
	return uint8(n), nil
}
