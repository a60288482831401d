package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/theirongolddev/poupa/internal/config"
	"github.com/theirongolddev/poupa/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func validateBaseURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL, e.g. http://localhost:5000/api")
	}
	return nil
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	timeout := ""
	if cfg.API.TimeoutSec > 0 {
		timeout = strconv.Itoa(cfg.API.TimeoutSec)
	}

	var paletteOpts []huh.Option[string]
	for _, name := range theme.PaletteNames() {
		paletteOpts = append(paletteOpts, huh.NewOption(name, name))
	}

	fmt.Println()
	fmt.Println("  Welcome to poupa!")
	fmt.Println()

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Root of the Pac Poupança REST API.").
				Validate(validateBaseURL).
				Value(&cfg.API.BaseURL),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Description("Empty for no timeout.").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
						return errors.New("enter a whole number of seconds")
					}
					return nil
				}).
				Value(&timeout),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color palette").
				Options(paletteOpts...).
				Value(&cfg.Appearance.Palette),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&cfg.Log.Level),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	cfg.API.TimeoutSec, _ = strconv.Atoi(strings.TrimSpace(timeout))

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `poupa setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
