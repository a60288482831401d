// Package cmd implements the poupa CLI commands.
package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.cfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Data dir:    %s\n", flagDataDir)
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", cfg.API.BaseURL)
	if cfg.API.TimeoutSec > 0 {
		fmt.Printf("    Timeout:  %ds\n", cfg.API.TimeoutSec)
	} else {
		fmt.Println("    Timeout:  none")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Palette: %s\n", cfg.Appearance.Palette)
	fmt.Printf("    Mode:    %s\n", rt.prefs.Theme())
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Printf("    File:  %s\n", cfg.Log.File)
	}
	fmt.Println()

	fmt.Println("  [Session]")
	sess := rt.prefs.Session()
	if sess.Token == "" {
		fmt.Println("    Not logged in")
	} else {
		fmt.Printf("    User:  %s (id %s)\n", sess.Username, sess.UserID)
		if exp, ok := api.TokenExpiry(sess.Token); ok {
			fmt.Printf("    Token: %s\n", cli.FormatExpiry(exp, time.Now()))
		} else {
			fmt.Println("    Token: no expiry claim")
		}
	}
	fmt.Println()

	fmt.Println("  Run `poupa setup` to reconfigure.")
	return nil
}
