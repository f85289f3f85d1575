package tui

import (
	"strings"
	"time"

	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/runner"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// controllerMsg carries a console.Msg produced by a console.Cmd back into Update.
type controllerMsg struct{ msg console.Msg }

// Model is the bubbletea front end of a console.Controller.
// The controller is only touched from Update, which bubbletea calls from a single goroutine.
type Model struct {
	ctrl   *console.Controller
	keys   KeyMap
	styles Styles
	prompt runner.Prompt

	timestamps bool
	renderer   func(string) (string, error)

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width, height int
	ready         bool
}

// Option configures the Model.
type Option func(*Model)

// WithTheme selects the colour palette (auto, dark or light).
func WithTheme(theme string) Option {
	return func(m *Model) {
		m.styles = NewStyles(theme)
	}
}

// WithPrompt sets the user and host shown in the prompt.
func WithPrompt(p runner.Prompt) Option {
	return func(m *Model) {
		m.prompt = p
	}
}

// WithTimestamps prefixes transcript entries with their time.
func WithTimestamps(enabled bool) Option {
	return func(m *Model) {
		m.timestamps = enabled
	}
}

// WithRenderer renders system entries (e.g. markdown through NewRenderer).
func WithRenderer(r func(string) (string, error)) Option {
	return func(m *Model) {
		m.renderer = r
	}
}

// NewModel creates the UI for ctrl.
func NewModel(ctrl *console.Controller, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = runner.DefaultMaxInputSize
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctrl:    ctrl,
		keys:    DefaultKeyMap(),
		styles:  NewStyles(ThemeAuto),
		prompt:  runner.DefaultPrompt,
		input:   ti,
		spinner: sp,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.spinner.Style = m.styles.Spinner
	return m
}

// Init starts the cursor blink, the spinner and the controller's start-up Cmds.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, wrap(m.ctrl.Init()))
}

// Update satisfies tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-lipgloss.Width(m.promptText())-2, 10)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.viewportHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.viewportHeight()
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case controllerMsg:
		cmds := m.ctrl.Update(msg.msg)
		m.sync()
		return m, wrap(cmds)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var event console.Msg
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		event = console.Submit{}
	case key.Matches(msg, m.keys.Up):
		event = console.KeyUp{}
	case key.Matches(msg, m.keys.Down):
		event = console.KeyDown{}
	case key.Matches(msg, m.keys.Accept):
		event = console.Accept{}
	case key.Matches(msg, m.keys.Dismiss):
		event = console.Dismiss{}
	case key.Matches(msg, m.keys.Clear):
		event = console.ClearScreen{}
	case key.Matches(msg, m.keys.Search):
		event = console.SearchHistory{}
	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if event != nil {
		cmds := m.ctrl.Update(event)
		m.sync()
		return m, wrap(cmds)
	}

	// Editing keys go to the text input; a changed value is a new input event.
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	cmds := m.ctrl.Update(console.InputChanged{Value: m.input.Value()})
	m.sync()
	return m, tea.Batch(cmd, wrap(cmds))
}

// sync mirrors the controller state into the widgets.
func (m *Model) sync() {
	if v := m.ctrl.Store().Input(); v != m.input.Value() {
		m.input.SetValue(v)
		m.input.CursorEnd()
	}
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.Height = m.viewportHeight()
	m.viewport.SetContent(m.renderTranscript(m.ctrl.Store().Transcript()))
	m.viewport.GotoBottom()
}

// viewportHeight leaves room for the input line, the status line and the suggestion list.
func (m Model) viewportHeight() int {
	h := m.height - 2 - len(m.visibleSuggestions())
	return max(h, 1)
}

func (m Model) visibleSuggestions() []string {
	store := m.ctrl.Store()
	if !store.SuggestionsVisible() {
		return nil
	}
	return store.Suggestions()
}

func (m Model) promptText() string {
	return m.prompt.Render(m.ctrl.Store().Directory())
}

// View satisfies tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Prompt.Render(m.promptText()))
	b.WriteString(" ")
	b.WriteString(m.input.View())

	selected := m.ctrl.Store().SelectedSuggestion()
	for i, s := range m.visibleSuggestions() {
		b.WriteString("\n")
		if i == selected {
			b.WriteString(m.styles.Selected.Render("▸ " + s))
		} else {
			b.WriteString(m.styles.Suggestion.Render("  " + s))
		}
	}

	b.WriteString("\n")
	if m.ctrl.Store().IsLoading() {
		b.WriteString(m.spinner.View() + m.styles.Help.Render(" running..."))
	} else {
		b.WriteString(m.styles.Help.Render("tab complete • ↑/↓ history • ctrl+l clear • ctrl+r search • ctrl+c quit"))
	}
	return b.String()
}

func (m Model) renderTranscript(entries []domain.TranscriptEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		var line string
		switch e.Kind {
		case domain.EntryCommand:
			line = m.styles.Prompt.Render(m.prompt.Render(e.Directory)) + " " + m.styles.Command.Render(e.Text)
		case domain.EntryError:
			line = m.styles.Error.Render(strings.TrimRight(e.Text, "\n"))
		case domain.EntrySystem:
			text := e.Text
			if m.renderer != nil {
				if rendered, err := m.renderer(text); err == nil {
					text = rendered
				}
			}
			line = m.styles.System.Render(text)
		default:
			line = m.styles.Output.Render(strings.TrimRight(e.Text, "\n"))
		}
		if m.timestamps {
			line = m.styles.Timestamp.Render("["+e.Timestamp.Format(time.TimeOnly)+"]") + " " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// wrap adapts controller Cmds to bubbletea Cmds.
func wrap(cmds []console.Cmd) tea.Cmd {
	batch := make([]tea.Cmd, 0, len(cmds))
	for _, c := range cmds {
		if c == nil {
			continue
		}
		batch = append(batch, func() tea.Msg {
			msg := c()
			if msg == nil {
				return nil
			}
			return controllerMsg{msg: msg}
		})
	}
	return tea.Batch(batch...)
}
