package tui

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/config"
	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/tui/theme"
)

// setupValues holds the first-run form's bound values.
type setupValues struct {
	baseURL string
	palette string
}

func newSetupForm(vals *setupValues) *huh.Form {
	opts := make([]huh.Option[string], 0, len(theme.Palettes))
	for _, p := range theme.Palettes {
		opts = append(opts, huh.NewOption(p.Name, p.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to poupa").
				Description("A terminal client for Pac Poupança.\nLet's set up a few things."),
			huh.NewInput().
				Title("API base URL").
				Description("Where the Pac Poupança API listens").
				Placeholder(config.DefaultBaseURL).
				Value(&vals.baseURL),
			huh.NewSelect[string]().
				Title("Color palette").
				Description("Dark/light is toggled with t").
				Options(opts...).
				Value(&vals.palette),
		),
	).WithShowHelp(false)
}

func (a App) viewSetup() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(a.setupForm.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// saveSetupConfig persists the form and applies it to the running app.
func (a *App) saveSetupConfig() {
	cfg, err := config.Load()
	if err != nil {
		a.log.Warn("loading config for setup", logging.FieldError, err)
		cfg = config.DefaultConfig()
	}

	if u := strings.TrimRight(strings.TrimSpace(a.setupVals.baseURL), "/"); u != "" {
		if u != a.deps.Client.BaseURL() && a.deps.Rebuild != nil {
			a.deps.Client = a.deps.Rebuild(u)
		}
		cfg.API.BaseURL = u
	}

	cfg.Appearance.Palette = theme.PaletteByName(a.setupVals.palette).Name
	a.deps.Palette = cfg.Appearance.Palette
	theme.SetActive(a.deps.Palette, a.mode)

	if err := config.Save(cfg); err != nil {
		a.log.Warn("saving config", logging.FieldError, err)
	}
}
