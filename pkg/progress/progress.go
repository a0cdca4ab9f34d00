package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/compozy/testproject/pkg/logger"
	"github.com/mattn/go-isatty"
)

// -----
// Models
// -----

// Model represents the progress indicator model
type Model struct {
	spinner spinner.Model
	styles  styles
	message string
	done    bool
	err     error
	total   int
	current int
}

// -----
// Messages
// -----

// UpdateMsg updates the progress message
type UpdateMsg struct {
	Message string
}

// Msg updates the progress counter
type Msg struct {
	Current int
	Total   int
}

// DoneMsg signals completion
type DoneMsg struct {
	Error error
}

// -----
// Styles
// -----

type styles struct {
	spinner lipgloss.Style
	text    lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		spinner: r.NewStyle().Foreground(lipgloss.Color("69")),
		text:    r.NewStyle().Foreground(lipgloss.Color("252")),
		err:     r.NewStyle().Foreground(lipgloss.Color("196")),
		success: r.NewStyle().Foreground(lipgloss.Color("82")),
	}
}

// -----
// Constructor
// -----

// New creates a new progress indicator rendering for w
func New(w io.Writer, message string) Model {
	st := newStyles(lipgloss.NewRenderer(w))
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = st.spinner
	return Model{
		spinner: s,
		styles:  st,
		message: message,
	}
}

// -----
// Bubbletea Interface
// -----

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case UpdateMsg:
		m.message = msg.Message
		return m, nil

	case Msg:
		m.current = msg.Current
		m.total = msg.Total
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Error
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.done {
		return m.final() + "\n"
	}
	return m.spinner.View() + " " + m.styles.text.Render(m.message) + m.counter()
}

func (m *Model) counter() string {
	if m.total <= 0 {
		return ""
	}
	percentage := m.current * 100 / m.total
	return m.styles.text.Render(fmt.Sprintf(" [%d/%d] %d%%", m.current, m.total, percentage))
}

func (m *Model) final() string {
	if m.err != nil {
		return m.styles.err.Render("✗ ") + m.styles.text.Render(m.message) +
			m.styles.err.Render(fmt.Sprintf(" - Error: %v", m.err))
	}
	return m.styles.success.Render("✓ ") + m.styles.text.Render(m.message)
}

// -----
// Runner
// -----

// Runner runs an operation with a spinner on a terminal, or with plain
// status lines otherwise
type Runner struct {
	output   io.Writer
	model    Model
	program  *tea.Program
	finished chan struct{}
	mu       sync.Mutex
}

// IsTTY reports whether w is a terminal
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewRunner creates a progress runner writing to w. The spinner is used
// only when interactive is true and w is a terminal.
func NewRunner(w io.Writer, message string, interactive bool) *Runner {
	r := &Runner{
		output: w,
		model:  New(w, message),
	}
	if interactive && IsTTY(w) {
		r.program = tea.NewProgram(&r.model, tea.WithOutput(w), tea.WithInput(nil))
	}
	return r
}

// Start starts the progress indicator
func (r *Runner) Start() {
	if r.program == nil {
		fmt.Fprintln(r.output, r.model.message+"...")
		return
	}
	r.finished = make(chan struct{})
	go func() {
		defer close(r.finished)
		if _, err := r.program.Run(); err != nil {
			logger.Error("Error running progress", "error", err)
		}
	}()
}

// Update updates the progress message
func (r *Runner) Update(message string) {
	if r.program != nil {
		r.program.Send(UpdateMsg{Message: message})
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.model.message = message
	fmt.Fprintln(r.output, message+"...")
}

// SetProgress updates the progress counter
func (r *Runner) SetProgress(current, total int) {
	if r.program != nil {
		r.program.Send(Msg{Current: current, Total: total})
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.model.current, r.model.total = current, total
}

// Done signals completion and waits for the final frame
func (r *Runner) Done(err error) {
	if r.program == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.model.done = true
		r.model.err = err
		fmt.Fprintln(r.output, r.model.final())
		return
	}
	r.program.Send(DoneMsg{Error: err})
	select {
	case <-r.finished:
	case <-time.After(time.Second):
		r.program.Kill()
	}
}

// -----
// Simple Progress Functions
// -----

// WithProgress runs fn with a progress indicator
func WithProgress(w io.Writer, message string, interactive bool, fn func() error) error {
	return WithProgressSteps(w, message, interactive, func(func(string), func(int, int)) error {
		return fn()
	})
}

// WithProgressSteps runs fn with message and counter updates
func WithProgressSteps(
	w io.Writer,
	message string,
	interactive bool,
	fn func(update func(string), progress func(int, int)) error,
) error {
	runner := NewRunner(w, message, interactive)
	runner.Start()
	err := fn(runner.Update, runner.SetProgress)
	runner.Done(err)
	return err
}
