package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// taskDoneMsg carries the result of the background task
type taskDoneMsg struct {
	err error
}

// spinnerModel shows a spinner and the elapsed time until its task ends.
// Ctrl+C cancels the task's context; the model still waits for the task
// to return so nothing outlives the program.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	start   time.Time
	run     tea.Cmd
	cancel  context.CancelFunc

	done bool
	err  error
}

func newSpinnerModel(ctx context.Context, label string, task func(context.Context) error) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(ctx)
	return spinnerModel{
		spinner: s,
		label:   label,
		start:   time.Now(),
		run: func() tea.Msg {
			return taskDoneMsg{err: task(ctx)}
		},
		cancel: cancel,
	}
}

// Init implements tea.Model
func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.run, m.spinner.Tick)
}

// Update implements tea.Model
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	elapsed := time.Since(m.start).Round(time.Second)
	return fmt.Sprintf("%s %s (%s)\n", m.spinner.View(), SpinnerStyle.Render(m.label), elapsed)
}

// Spin runs task, showing a spinner labelled label while it works. When
// stdout is not a terminal the task runs without any output.
func Spin(ctx context.Context, label string, task func(context.Context) error) error {
	if !IsInteractive() {
		return task(ctx)
	}

	p := tea.NewProgram(newSpinnerModel(ctx, label, task), tea.WithOutput(os.Stdout))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("spinner failed: %w", err)
	}
	return final.(spinnerModel).err
}
