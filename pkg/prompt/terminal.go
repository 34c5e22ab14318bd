// Package prompt provides geolocation.Prompter implementations: an
// interactive terminal dialog and fixed answers for unattended runs.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/geolocation/pkg/geolocation"
)

// ErrAborted is returned when the user quits the dialog without answering.
var ErrAborted = errors.New("prompt: aborted")

// Terminal shows prompts as a two-button dialog on a terminal.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal returns a Terminal reading keys from in and drawing on out.
// Nil streams select the process's stdin and stdout.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Confirm runs the dialog until the user picks a choice. There is no way to
// dismiss it other than answering or quitting with ctrl+c.
func (t *Terminal) Confirm(ctx context.Context, p geolocation.Prompt) (bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.in != nil {
		opts = append(opts, tea.WithInput(t.in))
	}
	if t.out != nil {
		opts = append(opts, tea.WithOutput(t.out))
	}

	final, err := tea.NewProgram(newModel(p), opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("prompt: %w", err)
	}
	m, ok := final.(model)
	if !ok {
		return false, fmt.Errorf("prompt: unexpected model %T", final)
	}
	if m.aborted {
		return false, ErrAborted
	}
	return m.answer, nil
}

// model is the bubbletea model of a confirmation dialog.
type model struct {
	prompt  geolocation.Prompt
	focus   int // 0 confirm, 1 cancel
	answer  bool
	done    bool
	aborted bool
	width   int
}

func newModel(p geolocation.Prompt) model {
	return model{prompt: p}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		m.aborted = true
		m.done = true
		return m, tea.Quit
	case "left", "h", "shift+tab":
		m.focus = 0
	case "right", "l":
		m.focus = 1
	case "tab":
		m.focus = 1 - m.focus
	case "y":
		return m.choose(true)
	case "n":
		return m.choose(false)
	case "enter", " ":
		return m.choose(m.focus == 0)
	}
	return m, nil
}

func (m model) choose(answer bool) (tea.Model, tea.Cmd) {
	m.answer = answer
	m.done = true
	return m, tea.Quit
}

func (m model) View() string {
	if m.done {
		return ""
	}
	confirm, cancel := buttonInactive, buttonInactive
	if m.focus == 0 {
		confirm = buttonActive
	} else {
		cancel = buttonActive
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		confirm.Render(m.prompt.ConfirmLabel),
		"  ",
		cancel.Render(m.prompt.CancelLabel),
	)

	message := messageStyle
	if m.width > 8 {
		message = message.Width(m.width - 8)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.prompt.Title),
		message.Render(m.prompt.Message),
		buttons,
		helpStyle.Render("←/→ choose • enter confirm • y/n answer"),
	)
	return boxStyle.Render(body) + "\n"
}

// Fixed returns a Prompter that answers every prompt with answer.
func Fixed(answer bool) geolocation.Prompter {
	return geolocation.PrompterFunc(func(ctx context.Context, p geolocation.Prompt) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return answer, nil
	})
}
