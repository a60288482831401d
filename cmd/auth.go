package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/finance"
	"github.com/theirongolddev/poupa/internal/store"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagLoginUser string
	flagLoginPass string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

func init() {
	loginCmd.Flags().StringVarP(&flagLoginUser, "username", "u", "", "Username (prompted when empty)")
	loginCmd.Flags().StringVar(&flagLoginPass, "password", "", "Password (prompted when empty)")
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	form := finance.LoginForm{Username: flagLoginUser, Password: flagLoginPass}
	if form.Username == "" || form.Password == "" {
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Username").Value(&form.Username),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&form.Password),
			),
		).Run()
		if err != nil {
			return err
		}
	}
	if err := form.Validate(); err != nil {
		return err
	}

	ctx, cancel := cmdContext()
	defer cancel()
	progress("Logging in to %s...", rt.client.BaseURL())
	res, err := rt.client.Login(ctx, strings.TrimSpace(form.Username), form.Password)
	if err != nil {
		return err
	}

	if err := rt.prefs.SaveSession(store.Session{
		Token:    res.AccessToken,
		UserID:   strconv.Itoa(res.UserID),
		Username: res.Username,
	}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Printf("  Logged in as %s\n", res.Username)
	if exp, ok := api.TokenExpiry(res.AccessToken); ok {
		fmt.Printf("  Session %s\n", cli.FormatExpiry(exp, time.Now()))
	}
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.prefs.HasToken() {
		fmt.Println("  Not logged in.")
		return nil
	}
	if err := rt.prefs.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Println("  Logged out.")
	return nil
}

func runRegister(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	var (
		form  finance.RegisterForm
		birth string
	)
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&form.FullName),
			huh.NewInput().Title("Username").Value(&form.Username),
			huh.NewInput().Title("Email").Value(&form.Email),
			huh.NewInput().Title("Phone").Value(&form.Phone),
			huh.NewInput().Title("Birth date").Placeholder("DD/MM/YYYY").
				Validate(func(s string) error {
					_, err := cli.ParseDate(s)
					return err
				}).
				Value(&birth),
		),
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&form.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&form.ConfirmPassword),
		),
	).Run()
	if err != nil {
		return err
	}

	form.BirthDate, _ = cli.ParseDate(birth)
	if err := form.Validate(); err != nil {
		return err
	}

	ctx, cancel := cmdContext()
	defer cancel()
	msg, err := rt.client.Register(ctx, form.Request())
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Registration successful!"
	}
	fmt.Printf("  %s\n", msg)
	fmt.Println("  Run `poupa login` to continue.")
	return nil
}
