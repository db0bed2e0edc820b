// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/staranto/procurectl/internal/filters"
)

// queryMsg is a debounced query ready to run.
type queryMsg struct {
	query string
}

type resultMsg struct {
	seq int
	out string
	err error
}

var (
	quitKey  = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit"))
	flushKey = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search now"))
)

type model struct {
	input   textinput.Model
	run     Runner
	trigger func(string)
	flush   func()

	last      string
	seq       int
	searching bool
	results   string
	err       error
}

func newModel(run Runner, trigger func(string), flush func()) model {
	ti := textinput.New()
	ti.Placeholder = "status=OPEN requester=E1 laptop"
	ti.Prompt = "search> "
	ti.CharLimit = 256
	ti.Focus()
	return model{input: ti, run: run, trigger: trigger, flush: flush}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, quitKey):
			return m, tea.Quit
		case key.Matches(msg, flushKey):
			m.flush()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != m.last {
			m.last = v
			m.trigger(v)
		}
		return m, cmd

	case queryMsg:
		m.seq++
		m.searching = true
		seq, run, q := m.seq, m.run, msg.query
		return m, func() tea.Msg {
			out, err := run(ParseQuery(q).Filter())
			return resultMsg{seq: seq, out: out, err: err}
		}

	case resultMsg:
		// A newer query was started; its results replace these.
		if msg.seq != m.seq {
			return m, nil
		}
		m.searching = false
		m.results, m.err = msg.out, msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var (
		status = lipgloss.NewStyle().Faint(true)
		failed = lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149"))
	)

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(status.Render("searching..."))
	case m.err != nil:
		b.WriteString(failed.Render(m.err.Error()))
	default:
		b.WriteString(status.Render(fmt.Sprintf("%s  %s",
			quitKey.Help().Key+" "+quitKey.Help().Desc,
			flushKey.Help().Key+" "+flushKey.Help().Desc)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.results)
	return b.String()
}

// Interactive runs the search screen until the user quits.
func Interactive(ctx context.Context, in io.Reader, out io.Writer, delay time.Duration, run Runner) error {
	var p *tea.Program
	deb := filters.NewDebouncer(delay, func(q string) {
		p.Send(queryMsg{query: q})
	})
	defer deb.Stop()

	p = tea.NewProgram(newModel(run, deb.Trigger, func() { deb.Flush() }),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return nil
}
