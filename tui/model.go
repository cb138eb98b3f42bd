// Package tui is the interactive terminal front-end for the todo API.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/todo-graphql-demo/client"
)

type mode int

const (
	modeList mode = iota
	modeForm
)

type field int

const (
	fieldTitle field = iota
	fieldDescription
)

// Model is the Bubble Tea model for the task list and creation form.
type Model struct {
	session *client.Session
	timeout time.Duration

	tasks  []client.Task
	cursor int

	mode        mode
	field       field
	title       string
	description string

	loading bool
	notice  string
	err     error
	width   int
}

// tasksLoadedMsg is sent when a refresh completes.
type tasksLoadedMsg struct {
	err error
}

// taskChangedMsg is sent when a create, toggle or delete completes.
type taskChangedMsg struct {
	notice string
	err    error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Strikethrough(true)
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	formStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// New creates a Model. Each API call is bounded by timeout.
func New(session *client.Session, timeout time.Duration) Model {
	return Model{
		session: session,
		timeout: timeout,
		tasks:   session.Tasks(),
		loading: true,
	}
}

// Run starts the interactive program and blocks until it exits.
func Run(session *client.Session, timeout time.Duration) error {
	_, err := tea.NewProgram(New(session, timeout), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.sync()
		return m, nil

	case taskChangedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.notice = msg.notice
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "n", "a":
		m.mode = modeForm
		m.field = fieldTitle
		m.title, m.description = "", ""
		m.notice = ""
	case "r":
		m.loading = true
		return m, m.refresh()
	case " ", "enter", "x":
		if t, ok := m.selected(); ok {
			m.loading = true
			return m, m.toggle(t)
		}
	case "d", "delete":
		if t, ok := m.selected(); ok {
			m.loading = true
			return m, m.remove(t)
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		if m.field == fieldTitle {
			m.field = fieldDescription
		} else {
			m.field = fieldTitle
		}
		return m, nil
	case tea.KeyEnter:
		if !m.canSubmit() {
			return m, nil
		}
		m.mode = modeList
		m.loading = true
		return m, m.create(m.title, m.description)
	case tea.KeyBackspace:
		m.setInput(dropLastRune(m.input()))
		return m, nil
	case tea.KeySpace:
		m.setInput(m.input() + " ")
		return m, nil
	case tea.KeyRunes:
		m.setInput(m.input() + string(msg.Runes))
		return m, nil
	}
	return m, nil
}

// canSubmit gates the form on a non-blank title.
func (m Model) canSubmit() bool {
	return strings.TrimSpace(m.title) != ""
}

func (m Model) input() string {
	if m.field == fieldTitle {
		return m.title
	}
	return m.description
}

func (m *Model) setInput(s string) {
	if m.field == fieldTitle {
		m.title = s
	} else {
		m.description = s
	}
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// ordered returns the tasks in display order: pending, then completed.
func (m Model) ordered() []client.Task {
	pending, completed := client.Partition(m.tasks)
	return append(pending, completed...)
}

func (m Model) selected() (client.Task, bool) {
	ordered := m.ordered()
	if m.cursor < 0 || m.cursor >= len(ordered) {
		return client.Task{}, false
	}
	return ordered[m.cursor], true
}

// sync copies the session list into the model and clamps the cursor.
func (m *Model) sync() {
	m.tasks = m.session.Tasks()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) call(f func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return f(ctx)
	}
}

func (m Model) refresh() tea.Cmd {
	s := m.session
	return m.call(func(ctx context.Context) tea.Msg {
		return tasksLoadedMsg{err: s.Refresh(ctx)}
	})
}

func (m Model) create(title, description string) tea.Cmd {
	s := m.session
	return m.call(func(ctx context.Context) tea.Msg {
		t, err := s.Create(ctx, title, description)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{notice: fmt.Sprintf("Created %q", t.Title)}
	})
}

func (m Model) toggle(t client.Task) tea.Cmd {
	s := m.session
	return m.call(func(ctx context.Context) tea.Msg {
		updated, err := s.Toggle(ctx, t.ID)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		if updated.Status == client.StatusCompleted {
			return taskChangedMsg{notice: fmt.Sprintf("Completed %q", updated.Title)}
		}
		return taskChangedMsg{notice: fmt.Sprintf("Reopened %q", updated.Title)}
	})
}

func (m Model) remove(t client.Task) tea.Cmd {
	s := m.session
	return m.call(func(ctx context.Context) tea.Msg {
		if _, err := s.Delete(ctx, t.ID); err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{notice: fmt.Sprintf("Deleted %q", t.Title)}
	})
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" Todo "))
	b.WriteString("\n\n")

	if m.mode == modeForm {
		b.WriteString(m.viewForm())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("tab: switch field | enter: create | esc: cancel"))
		return b.String()
	}

	pending, completed := client.Partition(m.tasks)
	b.WriteString(m.viewSection("Pending", pending, 0))
	b.WriteString("\n")
	b.WriteString(m.viewSection("Completed", completed, len(pending)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + describeError(m.err)))
		b.WriteString("\n")
	case m.loading:
		b.WriteString(descStyle.Render("Loading..."))
		b.WriteString("\n")
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k: move | space: toggle | n: new | d: delete | r: refresh | q: quit"))
	return b.String()
}

func (m Model) viewSection(name string, tasks []client.Task, offset int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", name, len(tasks))))
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString(descStyle.Render("  No tasks"))
		b.WriteString("\n")
		return b.String()
	}

	for i, t := range tasks {
		box := "[ ]"
		title := t.Title
		if t.Status == client.StatusCompleted {
			box = "[x]"
			title = completedStyle.Render(title)
		}

		line := fmt.Sprintf("  %s %s", box, title)
		if offset+i == m.cursor {
			line = selectedStyle.Render(fmt.Sprintf("> %s", box)) + " " + title
		}
		b.WriteString(line)
		if t.Description != nil && *t.Description != "" {
			b.WriteString(descStyle.Render("  " + *t.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewForm() string {
	titleLabel, descLabel := "  Title:", "  Description:"
	titleValue, descValue := m.title, m.description
	if m.field == fieldTitle {
		titleLabel = selectedStyle.Render("> Title:")
		titleValue += "_"
	} else {
		descLabel = selectedStyle.Render("> Description:")
		descValue += "_"
	}

	lines := []string{
		headerStyle.Render("New task"),
		titleLabel + " " + titleValue,
		descLabel + " " + descValue,
	}
	if !m.canSubmit() {
		lines = append(lines, descStyle.Render("A title is required."))
	}
	return formStyle.Render(strings.Join(lines, "\n"))
}

// describeError hides transport details behind a generic message.
func describeError(err error) string {
	if errors.Is(err, client.ErrTransport) {
		return "could not reach the todo server"
	}
	return err.Error()
}
