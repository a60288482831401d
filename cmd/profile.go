package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagProfileEmail    string
	flagProfilePhone    string
	flagProfileName     string
	flagProfileBirth    string
	flagProfilePassword bool
	flagDeleteYes       bool
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"whoami"},
	Short:   "Show the logged-in user's profile",
	RunE:    runProfileShow,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile fields",
	RunE:  runProfileUpdate,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the account",
	RunE:  runProfileDelete,
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&flagProfileEmail, "email", "", "New email")
	f.StringVar(&flagProfilePhone, "phone", "", "New phone")
	f.StringVar(&flagProfileName, "name", "", "New full name")
	f.StringVar(&flagProfileBirth, "birth-date", "", "New birth date (DD/MM/YYYY)")
	f.BoolVar(&flagProfilePassword, "password", false, "Prompt for a new password")

	profileDeleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "Skip the confirmation")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := cmdContext()
	defer cancel()
	p, err := rt.client.Profile(ctx)
	if err != nil {
		return err
	}
	printProfile(p)
	return nil
}

func printProfile(p *api.Profile) {
	rows := [][]string{
		{"Username", p.Username},
		{"Name", p.FullName},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Birth date", cli.FormatDate(p.BirthDate)},
		{"Member since", cli.FormatDate(dateOnly(p.CreatedAt))},
	}
	if p.LastLogin != nil {
		rows = append(rows, []string{"Last login", cli.FormatDate(dateOnly(*p.LastLogin))})
	}
	if p.Level > 0 {
		rows = append(rows, []string{"---"}, []string{"Level", cli.FormatLevel(p.Level)},
			[]string{"XP", fmt.Sprintf("%d/%d", p.XP, p.NextLevelXP)})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROFILE"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Field", "Value"}, Rows: rows}))
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}

	var upd api.ProfileUpdate
	changed := false
	set := func(name string, v string, dst **string) {
		if cmd.Flags().Changed(name) {
			s := v
			*dst = &s
			changed = true
		}
	}
	set("email", flagProfileEmail, &upd.Email)
	set("phone", flagProfilePhone, &upd.Phone)
	set("name", flagProfileName, &upd.FullName)
	if cmd.Flags().Changed("birth-date") {
		d, err := cli.ParseDate(flagProfileBirth)
		if err != nil {
			return err
		}
		upd.BirthDate = &d
		changed = true
	}
	if flagProfilePassword {
		var pw, confirm string
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&pw),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm),
		)).Run()
		if err != nil {
			return err
		}
		if pw != confirm {
			return errors.New("passwords do not match")
		}
		upd.Password = &pw
		changed = true
	}
	if !changed {
		return errors.New("nothing to update (see --help)")
	}

	ctx, cancel := cmdContext()
	defer cancel()
	p, err := rt.client.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Println("  Profile updated.")
	printProfile(p)
	return nil
}

func runProfileDelete(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}

	var (
		password string
		confirm  = flagDeleteYes
	)
	fields := []huh.Field{
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
	}
	if !flagDeleteYes {
		fields = append(fields, huh.NewConfirm().
			Title("Delete your account?").
			Description("Your transactions and progress are removed for good.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirm))
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}
	if !confirm {
		fmt.Println("  Cancelled.")
		return nil
	}

	ctx, cancel := cmdContext()
	defer cancel()
	msg, err := rt.client.DeleteAccount(ctx, password)
	if err != nil {
		return err
	}
	if err := rt.prefs.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if msg == "" {
		msg = "Account deleted."
	}
	fmt.Printf("  %s\n", msg)
	return nil
}

// dateOnly keeps the "YYYY-MM-DD" prefix of a timestamp.
func dateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
