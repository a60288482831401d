package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/poupa/internal/gamify"
)

// mountRef tags an async result with the mount it was issued from. The app
// drops results whose mount is no longer the live page.
type mountRef struct {
	mount int
}

func (m mountRef) pageMount() int { return m.mount }

// pageMsg is implemented by every async page result.
type pageMsg interface {
	pageMount() int
}

// navigateMsg asks the app to switch pages. flash is shown once on the
// next page.
type navigateMsg struct {
	route string
	flash string
}

func navigate(route, flash string) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{route: route, flash: flash}
	}
}

// forcedNavMsg arrives when the API client forced a logout or a reconciler
// found no token.
type forcedNavMsg struct {
	route string
}

// xpEventMsg carries one published XP state change.
type xpEventMsg struct {
	event gamify.Event
	ok    bool
}

// reconciledMsg reports the end of a reconciler mount sequence.
type reconciledMsg struct {
	mountRef
	err error
}

// recalculatedMsg reports the end of a level recalculation.
type recalculatedMsg struct {
	mountRef
	err error
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// waitForNav blocks until the next forced navigation request.
func waitForNav(ch chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return forcedNavMsg{route: <-ch}
	}
}

// waitForXPEvent blocks until the next store event. ok is false once the
// subscription closed.
func waitForXPEvent(sub <-chan gamify.Event) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-sub
		return xpEventMsg{event: ev, ok: ok}
	}
}

// mountCmd runs the reconciler mount sequence off the UI loop.
func mountCmd(rec *gamify.Reconciler, mount int) tea.Cmd {
	return func() tea.Msg {
		err := rec.Mount(context.Background())
		return reconciledMsg{mountRef: mountRef{mount}, err: err}
	}
}

// recalcCmd runs a level recalculation off the UI loop.
func recalcCmd(rec *gamify.Reconciler, mount int) tea.Cmd {
	return func() tea.Msg {
		err := rec.Recalculate(context.Background())
		return recalculatedMsg{mountRef: mountRef{mount}, err: err}
	}
}
