package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type stopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	text    string
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

// Spinner shows an animated spinner next to the current step and leaves a
// ✔/✖/ℹ line behind when the step ends.
type Spinner struct {
	out io.Writer

	mu      sync.Mutex
	text    string
	program *tea.Program
	done    chan struct{}
}

func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.text = msg

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	program := tea.NewProgram(
		spinnerModel{spinner: sp, text: msg},
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = program.Run()
	}()

	s.program = program
	s.done = done
}

func (s *Spinner) stopLocked() {
	if s.program == nil {
		return
	}
	s.program.Send(stopMsg{})
	<-s.done
	s.program = nil
	s.done = nil
}

func (s *Spinner) finish(symbol string, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if msg == "" {
		msg = s.text
	}
	fmt.Fprintf(s.out, "%s %s\n", symbol, msg)
}

func (s *Spinner) Succeed(msg string) { s.finish(successStyle.Render(successSymbol), msg) }
func (s *Spinner) Fail(msg string)    { s.finish(errorStyle.Render(failSymbol), msg) }
func (s *Spinner) Info(msg string)    { s.finish(infoStyle.Render(infoSymbol), msg) }

func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Lines writes one line per finished step, for output that is not a terminal.
type Lines struct {
	out  io.Writer
	text string
}

func NewLines(out io.Writer) *Lines {
	return &Lines{out: out}
}

func (l *Lines) Start(msg string) {
	l.text = msg
}

func (l *Lines) finish(symbol, msg string) {
	if msg == "" {
		msg = l.text
	}
	fmt.Fprintf(l.out, "%s %s\n", symbol, msg)
}

func (l *Lines) Succeed(msg string) { l.finish(successSymbol, msg) }
func (l *Lines) Fail(msg string)    { l.finish(failSymbol, msg) }
func (l *Lines) Info(msg string)    { l.finish(infoSymbol, msg) }
func (l *Lines) Stop()              {}
