// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"golang.org/x/term"

	"github.com/staranto/procurectl/internal/config"
)

// ErrNotTerminal is returned when confirmation is needed but stdin is not a
// terminal and --yes was not given.
var ErrNotTerminal = errors.New("confirmation requires a terminal; use --yes")

// Confirmer asks the user to approve a submission.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a func to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AutoConfirm approves everything. It backs --yes.
var AutoConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// refuse backs non interactive stdin without --yes.
var refuse Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return false, ErrNotTerminal
})

// NewConfirmer picks the confirmer for a command: AutoConfirm when yes is
// set, a modal when in is a terminal, and a refusal otherwise.
func NewConfirmer(yes bool, in *os.File, out io.Writer) Confirmer {
	if yes {
		return AutoConfirm
	}
	if in == nil || !term.IsTerminal(int(in.Fd())) {
		return refuse
	}
	return &Modal{In: in, Out: out}
}

// Modal is a full screen bubbletea confirmation dialog.
type Modal struct {
	In  io.Reader
	Out io.Writer
}

func (m *Modal) Confirm(ctx context.Context, prompt string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(m.In),
		tea.WithOutput(m.Out),
	)
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	cm, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return cm.confirmed, nil
}

type confirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Select key.Binding
}

var defaultConfirmKeys = confirmKeys{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	No:     key.NewBinding(key.WithKeys("n", "N", "esc", "q", "ctrl+c"), key.WithHelp("n/esc", "cancel")),
	Toggle: key.NewBinding(key.WithKeys("left", "right", "tab", "shift+tab", "h", "l"), key.WithHelp("←/→", "switch")),
	Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
}

// confirmModel starts focused on No so a stray enter cancels.
type confirmModel struct {
	prompt    string
	keys      confirmKeys
	focusYes  bool
	done      bool
	confirmed bool
}

func newConfirmModel(prompt string) confirmModel {
	return confirmModel{prompt: prompt, keys: defaultConfirmKeys}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Yes):
		m.done, m.confirmed = true, true
		return m, tea.Quit
	case key.Matches(km, m.keys.No):
		m.done, m.confirmed = true, false
		return m, tea.Quit
	case key.Matches(km, m.keys.Toggle):
		m.focusYes = !m.focusYes
	case key.Matches(km, m.keys.Select):
		m.done, m.confirmed = true, m.focusYes
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	accent, _ := config.GetString("colors.title", "#00c8f0")
	var (
		box = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(accent)).
			Padding(1, 2)
		button = lipgloss.NewStyle().Padding(0, 2)
		active = button.Reverse(true).Bold(true)
		help   = lipgloss.NewStyle().Faint(true)
	)

	yes, no := button.Render("Yes"), active.Render("No")
	if m.focusYes {
		yes, no = active.Render("Yes"), button.Render("No")
	}

	hint := fmt.Sprintf("%s  %s  %s",
		m.keys.Yes.Help().Key+" "+m.keys.Yes.Help().Desc,
		m.keys.No.Help().Key+" "+m.keys.No.Help().Desc,
		m.keys.Toggle.Help().Key+" "+m.keys.Toggle.Help().Desc)

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.prompt,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes, " ", no),
		"",
		help.Render(hint),
	)
	return box.Render(body) + "\n"
}
