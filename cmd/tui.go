package cmd

import (
	"fmt"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/config"
	"github.com/theirongolddev/poupa/internal/gamify"
	"github.com/theirongolddev/poupa/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagStartRoute string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive client (default)",
	RunE:  runTUI,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&flagStartRoute, "open", "", "Start on a page (/dashboard, /transactions, /challenges)")
	}
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	start := flagStartRoute
	if start == "" && rt.prefs.HasToken() {
		start = tui.RouteDashboard
	}

	app := tui.NewApp(tui.Deps{
		Client:     rt.client,
		Prefs:      rt.prefs,
		XP:         gamify.NewStore(50),
		Log:        rt.log,
		Nav:        rt.nav,
		Palette:    rt.cfg.Appearance.Palette,
		StartRoute: start,
		NeedSetup:  !config.Exists(),
		Rebuild:    func(baseURL string) *api.Client { return rt.newClient(baseURL) },
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
