package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/finance"
	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/store"
	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/tui/theme"
)

// msgLoginFailed is shown when the server gives no reason.
const msgLoginFailed = "Could not log in. Please try again."

type loginDoneMsg struct {
	mountRef
	res *api.LoginResult
	err error
}

type loginPage struct {
	env
	vals       *finance.LoginForm
	form       *huh.Form
	submitting bool
	errMsg     string
}

func newLoginPage(e env) *loginPage {
	p := &loginPage{env: e, vals: &finance.LoginForm{}}
	p.form = p.newForm()
	return p
}

func (p *loginPage) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&p.vals.Username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&p.vals.Password),
		),
	).WithShowHelp(false).WithWidth(44)
}

func (p *loginPage) Init() tea.Cmd { return p.form.Init() }
func (p *loginPage) Leave()        {}

func (p *loginPage) Capturing() bool {
	return !p.submitting && p.form.State == huh.StateNormal
}

func (p *loginPage) Hints() []components.KeyHint {
	if p.submitting {
		return nil
	}
	return []components.KeyHint{{Key: "enter", Label: "log in"}, {Key: "ctrl+r", Label: "register"}}
}

func (p *loginPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginDoneMsg:
		return p.finish(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+r" && !p.submitting {
			return navigate(RouteRegister, "")
		}
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

func (p *loginPage) submit() tea.Cmd {
	if err := p.vals.Validate(); err != nil {
		p.errMsg = err.Error()
		p.form = p.newForm()
		return p.form.Init()
	}
	p.submitting = true
	p.errMsg = ""
	p.flash = ""

	client, ref := p.client, mountRef{p.mount}
	user, pass := strings.TrimSpace(p.vals.Username), p.vals.Password
	return func() tea.Msg {
		res, err := client.Login(context.Background(), user, pass)
		return loginDoneMsg{mountRef: ref, res: res, err: err}
	}
}

func (p *loginPage) finish(msg loginDoneMsg) tea.Cmd {
	p.submitting = false
	if msg.err != nil {
		p.errMsg = loginErrorText(msg.err)
		p.vals.Password = ""
		p.form = p.newForm()
		return p.form.Init()
	}

	sess := store.Session{
		Token:    msg.res.AccessToken,
		UserID:   strconv.Itoa(msg.res.UserID),
		Username: msg.res.Username,
	}
	if err := p.prefs.SaveSession(sess); err != nil {
		p.log.Error("saving session", logging.FieldError, err)
		p.errMsg = api.MsgGeneric
		p.form = p.newForm()
		return p.form.Init()
	}
	return navigate(RouteDashboard, "")
}

// loginErrorText prefers the server's reason (wrong password and the like).
func loginErrorText(err error) string {
	switch api.Classify(err) {
	case api.KindAuth, api.KindServer, api.KindValidation:
		if msg := api.UserMessage(err); msg != api.MsgSessionExpired && msg != api.MsgGeneric {
			return msg
		}
		return msgLoginFailed
	}
	return api.UserMessage(err)
}

func (p *loginPage) View(w, h int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.Yellow).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Log in"))
	b.WriteString("\n\n")
	if p.submitting {
		b.WriteString(dimStyle.Render("Logging in..."))
	} else {
		b.WriteString(p.form.View())
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("No account yet? Press ctrl+r to register."))

	var top []string
	if p.flash != "" {
		top = append(top, components.Banner(p.flash, false, w))
	}
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
