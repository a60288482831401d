// Package theme defines color themes for the poupa TUI.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/store"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active item, selected row)
	SurfaceBright lipgloss.Color // Extra bright surface for emphasis
	Border        lipgloss.Color // Subtle borders
	BorderBright  lipgloss.Color // Prominent borders (cards, focus)
	BorderAccent  lipgloss.Color // Accent-colored borders for focus states
	TextDim       lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted     lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary   lipgloss.Color // Primary content text
	Accent        lipgloss.Color // Primary accent (links, active states)
	AccentBright  lipgloss.Color // Brighter accent for emphasis
	AccentDim     lipgloss.Color // Dimmed accent for backgrounds
	Green         lipgloss.Color // Income
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color // Expenses
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color // XP
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// Palette is a theme family with a dark and a light variant.
type Palette struct {
	Name  string
	Dark  Theme
	Light Theme
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderBright:  lipgloss.Color("#575653"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AccentDim:     lipgloss.Color("#1A3533"),
	Green:         lipgloss.Color("#879A39"),
	GreenBright:   lipgloss.Color("#A3B859"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	BlueBright:    lipgloss.Color("#6BA3D6"),
	Yellow:        lipgloss.Color("#D0A215"),
	Magenta:       lipgloss.Color("#CE5D97"),
	Cyan:          lipgloss.Color("#24837B"),
}

// FlexokiLight is the paper side of Flexoki.
var FlexokiLight = Theme{
	Name:          "flexoki-light",
	Background:    lipgloss.Color("#FFFCF0"),
	Surface:       lipgloss.Color("#F2F0E5"),
	SurfaceHover:  lipgloss.Color("#E6E4D9"),
	SurfaceBright: lipgloss.Color("#DAD8CE"),
	Border:        lipgloss.Color("#CECDC3"),
	BorderBright:  lipgloss.Color("#B7B5AC"),
	BorderAccent:  lipgloss.Color("#24837B"),
	TextDim:       lipgloss.Color("#B7B5AC"),
	TextMuted:     lipgloss.Color("#6F6E69"),
	TextPrimary:   lipgloss.Color("#100F0F"),
	Accent:        lipgloss.Color("#24837B"),
	AccentBright:  lipgloss.Color("#3AA99F"),
	AccentDim:     lipgloss.Color("#DDF1E4"),
	Green:         lipgloss.Color("#66800B"),
	GreenBright:   lipgloss.Color("#879A39"),
	Orange:        lipgloss.Color("#BC5215"),
	Red:           lipgloss.Color("#AF3029"),
	Blue:          lipgloss.Color("#205EA6"),
	BlueBright:    lipgloss.Color("#4385BE"),
	Yellow:        lipgloss.Color("#AD8301"),
	Magenta:       lipgloss.Color("#A02F6F"),
	Cyan:          lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a warm pastel theme with soft, soothing colors.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceHover:  lipgloss.Color("#45475A"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderBright:  lipgloss.Color("#7F849C"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	AccentDim:     lipgloss.Color("#293147"),
	Green:         lipgloss.Color("#A6E3A1"),
	GreenBright:   lipgloss.Color("#C6F6C1"),
	Orange:        lipgloss.Color("#FAB387"),
	Red:           lipgloss.Color("#F38BA8"),
	Blue:          lipgloss.Color("#89B4FA"),
	BlueBright:    lipgloss.Color("#B4D0FB"),
	Yellow:        lipgloss.Color("#F9E2AF"),
	Magenta:       lipgloss.Color("#F5C2E7"),
	Cyan:          lipgloss.Color("#94E2D5"),
}

// CatppuccinLatte is the light Catppuccin flavour.
var CatppuccinLatte = Theme{
	Name:          "catppuccin-latte",
	Background:    lipgloss.Color("#EFF1F5"),
	Surface:       lipgloss.Color("#E6E9EF"),
	SurfaceHover:  lipgloss.Color("#CCD0DA"),
	SurfaceBright: lipgloss.Color("#BCC0CC"),
	Border:        lipgloss.Color("#ACB0BE"),
	BorderBright:  lipgloss.Color("#9CA0B0"),
	BorderAccent:  lipgloss.Color("#1E66F5"),
	TextDim:       lipgloss.Color("#8C8FA1"),
	TextMuted:     lipgloss.Color("#6C6F85"),
	TextPrimary:   lipgloss.Color("#4C4F69"),
	Accent:        lipgloss.Color("#1E66F5"),
	AccentBright:  lipgloss.Color("#7287FD"),
	AccentDim:     lipgloss.Color("#DCE0E8"),
	Green:         lipgloss.Color("#40A02B"),
	GreenBright:   lipgloss.Color("#5DBB48"),
	Orange:        lipgloss.Color("#FE640B"),
	Red:           lipgloss.Color("#D20F39"),
	Blue:          lipgloss.Color("#1E66F5"),
	BlueBright:    lipgloss.Color("#7287FD"),
	Yellow:        lipgloss.Color("#DF8E1D"),
	Magenta:       lipgloss.Color("#EA76CB"),
	Cyan:          lipgloss.Color("#179299"),
}

// TokyoNight is a cool blue/purple theme inspired by Tokyo city lights.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceHover:  lipgloss.Color("#343A52"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderBright:  lipgloss.Color("#7982A9"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	AccentDim:     lipgloss.Color("#252B3F"),
	Green:         lipgloss.Color("#9ECE6A"),
	GreenBright:   lipgloss.Color("#B9E87A"),
	Orange:        lipgloss.Color("#FF9E64"),
	Red:           lipgloss.Color("#F7768E"),
	Blue:          lipgloss.Color("#7AA2F7"),
	BlueBright:    lipgloss.Color("#A9C1FF"),
	Yellow:        lipgloss.Color("#E0AF68"),
	Magenta:       lipgloss.Color("#BB9AF7"),
	Cyan:          lipgloss.Color("#7DCFFF"),
}

// TokyoDay is the light Tokyo Night variant.
var TokyoDay = Theme{
	Name:          "tokyo-day",
	Background:    lipgloss.Color("#E1E2E7"),
	Surface:       lipgloss.Color("#D0D5E3"),
	SurfaceHover:  lipgloss.Color("#C4C8DA"),
	SurfaceBright: lipgloss.Color("#B7BCD1"),
	Border:        lipgloss.Color("#A8AECB"),
	BorderBright:  lipgloss.Color("#8990B3"),
	BorderAccent:  lipgloss.Color("#2E7DE9"),
	TextDim:       lipgloss.Color("#8990B3"),
	TextMuted:     lipgloss.Color("#6172B0"),
	TextPrimary:   lipgloss.Color("#3760BF"),
	Accent:        lipgloss.Color("#2E7DE9"),
	AccentBright:  lipgloss.Color("#188092"),
	AccentDim:     lipgloss.Color("#C4C8DA"),
	Green:         lipgloss.Color("#587539"),
	GreenBright:   lipgloss.Color("#387068"),
	Orange:        lipgloss.Color("#B15C00"),
	Red:           lipgloss.Color("#F52A65"),
	Blue:          lipgloss.Color("#2E7DE9"),
	BlueBright:    lipgloss.Color("#188092"),
	Yellow:        lipgloss.Color("#8C6C3E"),
	Magenta:       lipgloss.Color("#9854F1"),
	Cyan:          lipgloss.Color("#007197"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// TerminalLight inverts the ANSI foreground/background pair.
var TerminalLight = Theme{
	Name:          "terminal-light",
	Background:    lipgloss.Color("15"),
	Surface:       lipgloss.Color("15"),
	SurfaceHover:  lipgloss.Color("7"),
	SurfaceBright: lipgloss.Color("7"),
	Border:        lipgloss.Color("7"),
	BorderBright:  lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("7"),
	TextMuted:     lipgloss.Color("8"),
	TextPrimary:   lipgloss.Color("0"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("4"),
	AccentDim:     lipgloss.Color("15"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("2"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// Palettes lists every family. The first entry is the default.
var Palettes = []Palette{
	{Name: "flexoki", Dark: FlexokiDark, Light: FlexokiLight},
	{Name: "catppuccin", Dark: CatppuccinMocha, Light: CatppuccinLatte},
	{Name: "tokyo-night", Dark: TokyoNight, Light: TokyoDay},
	{Name: "terminal", Dark: Terminal, Light: TerminalLight},
}

// PaletteNames returns the configurable palette names.
func PaletteNames() []string {
	names := make([]string, len(Palettes))
	for i, p := range Palettes {
		names[i] = p.Name
	}
	return names
}

// PaletteByName returns a palette by name, defaulting to flexoki.
func PaletteByName(name string) Palette {
	for _, p := range Palettes {
		if p.Name == name {
			return p
		}
	}
	return Palettes[0]
}

// Resolve returns the variant of palette for mode.
func Resolve(palette string, mode store.Theme) Theme {
	p := PaletteByName(palette)
	if mode == store.ThemeLight {
		return p.Light
	}
	return p.Dark
}

// SetActive sets the active theme from a palette name and mode.
func SetActive(palette string, mode store.Theme) {
	Active = Resolve(palette, mode)
}
