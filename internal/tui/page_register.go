package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/finance"
	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/tui/theme"
)

const (
	msgRegistered     = "Registration successful! Log in to continue."
	msgRegisterFailed = "Could not create your account. Please try again."
)

type registerDoneMsg struct {
	mountRef
	err error
}

type registerPage struct {
	env
	vals       *finance.RegisterForm
	birth      *string // typed as DD/MM/YYYY
	form       *huh.Form
	submitting bool
	errMsg     string
}

func newRegisterPage(e env) *registerPage {
	p := &registerPage{env: e, vals: &finance.RegisterForm{}, birth: new(string)}
	p.form = p.newForm()
	return p
}

func (p *registerPage) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&p.vals.FullName),
			huh.NewInput().Title("Username").Value(&p.vals.Username),
			huh.NewInput().Title("Email").Value(&p.vals.Email),
			huh.NewInput().Title("Phone").Value(&p.vals.Phone),
			huh.NewInput().
				Title("Birth date").
				Placeholder("DD/MM/YYYY").
				Value(p.birth),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&p.vals.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&p.vals.ConfirmPassword),
		),
	).WithShowHelp(false).WithWidth(48)
}

func (p *registerPage) Init() tea.Cmd { return p.form.Init() }
func (p *registerPage) Leave()        {}

func (p *registerPage) Capturing() bool {
	return !p.submitting && p.form.State == huh.StateNormal
}

func (p *registerPage) Hints() []components.KeyHint {
	if p.submitting {
		return nil
	}
	return []components.KeyHint{{Key: "enter", Label: "next"}, {Key: "shift+tab", Label: "back"}}
}

func (p *registerPage) Update(msg tea.Msg) tea.Cmd {
	if done, ok := msg.(registerDoneMsg); ok {
		p.submitting = false
		if done.err != nil {
			p.errMsg = errorText(done.err, msgRegisterFailed)
			p.vals.Password, p.vals.ConfirmPassword = "", ""
			p.form = p.newForm()
			return p.form.Init()
		}
		return navigate(RouteLogin, msgRegistered)
	}
	if p.submitting {
		return nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateCompleted:
		return p.submit()
	case huh.StateAborted:
		return navigate(RouteLanding, "")
	}
	return cmd
}

func (p *registerPage) submit() tea.Cmd {
	p.vals.BirthDate = strings.TrimSpace(*p.birth)
	if d, err := cli.ParseDate(*p.birth); err == nil {
		p.vals.BirthDate = d
	}

	// The confirmation is checked here and never sent.
	if err := p.vals.Validate(); err != nil {
		p.errMsg = err.Error()
		p.vals.Password, p.vals.ConfirmPassword = "", ""
		p.form = p.newForm()
		return p.form.Init()
	}

	p.submitting = true
	p.errMsg = ""
	client, ref, req := p.client, mountRef{p.mount}, p.vals.Request()
	return func() tea.Msg {
		_, err := client.Register(context.Background(), req)
		return registerDoneMsg{mountRef: ref, err: err}
	}
}

func (p *registerPage) View(w, h int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.Yellow).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Create your account"))
	b.WriteString("\n\n")
	if p.submitting {
		b.WriteString(dimStyle.Render("Creating account..."))
	} else {
		b.WriteString(p.form.View())
	}

	var top []string
	if p.errMsg != "" {
		top = append(top, components.Banner(p.errMsg, true, w))
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(b.String())

	top = append(top, "", lipgloss.PlaceHorizontal(w, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background)))
	return strings.Join(top, "\n")
}

