package theme

var palettes = [...]Theme{
	Latte: {
		FG:        RGB{76, 79, 105},
		BG:        RGB{239, 241, 245},
		Selected:  Pair{FG: RGB{76, 79, 105}, BG: RGB{188, 192, 204}},
		Highlight: RGB{136, 57, 239},
	},
	Frappe: {
		FG:        RGB{198, 208, 245},
		BG:        RGB{48, 52, 70},
		Selected:  Pair{FG: RGB{198, 208, 245}, BG: RGB{81, 87, 109}},
		Highlight: RGB{202, 158, 230},
	},
	Macchiato: {
		FG:        RGB{202, 211, 245},
		BG:        RGB{36, 39, 58},
		Selected:  Pair{FG: RGB{202, 211, 245}, BG: RGB{73, 77, 100}},
		Highlight: RGB{198, 160, 246},
	},
	Mocha: {
		FG:        RGB{205, 214, 244},
		BG:        RGB{30, 30, 46},
		Selected:  Pair{FG: RGB{205, 214, 244}, BG: RGB{69, 71, 90}},
		Highlight: RGB{203, 166, 247},
	},
}

// ForFlavor returns a copy of the preset for f. Unknown values fall back to DefaultFlavor.
func ForFlavor(f Flavor) Theme {
	if f < 0 || int(f) >= len(palettes) {
		f = DefaultFlavor
	}
	return palettes[f]
}

func LatteTheme() Theme     { return palettes[Latte] }
func FrappeTheme() Theme    { return palettes[Frappe] }
func MacchiatoTheme() Theme { return palettes[Macchiato] }
func MochaTheme() Theme     { return palettes[Mocha] }
