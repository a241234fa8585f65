package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hari31416/multimodal-chatbot/internal/chat"
)

// TUI adapts a running bubbletea program to the ui.UI interface so the
// controller can push status and progress events into it.
type TUI struct {
	program *tea.Program
}

func NewTUI(p *tea.Program) *TUI {
	return &TUI{program: p}
}

func (t *TUI) Status(msg string) {
	t.program.Send(StatusMsg(msg))
}

func (t *TUI) Progress(file string, pct int) {
	t.program.Send(ProgressMsg{File: file, Pct: pct})
}

func (t *TUI) Log(msg string) {
	t.program.Send(LogMsg(msg))
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)

type StatusMsg string
type LogMsg string
type ProgressMsg struct {
	File string
	Pct  int
}

// opDoneMsg signals that a controller operation finished and the
// transcript should re-render from a fresh snapshot.
type opDoneMsg struct{}

// Model is the interactive chat screen: a transcript viewport, a text
// input with slash commands, and upload progress bars.
type Model struct {
	ctrl *chat.Controller

	viewport viewport.Model
	input    textinput.Model
	progress progress.Model

	status   string
	uploads  map[string]int
	width    int
	height   int
	ready    bool
	quitting bool
}

func NewModel(ctrl *chat.Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, or /help"
	ti.Focus()

	return Model{
		ctrl:     ctrl,
		input:    ti,
		progress: progress.New(progress.WithDefaultGradient()),
		uploads:  make(map[string]int),
		status:   "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if text == "" {
				break
			}
			if strings.HasPrefix(text, "/") {
				return m.runCommand(text)
			}
			m.status = "sending"
			return m, m.sendCmd(text)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-7)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 7
		}
		m.refresh()

	case StatusMsg:
		m.status = string(msg)

	case LogMsg:
		m.status = string(msg)

	case ProgressMsg:
		m.uploads[msg.File] = msg.Pct
		if msg.Pct >= 100 {
			delete(m.uploads, msg.File)
		}

	case opDoneMsg:
		m.status = "ready"
		m.uploads = make(map[string]int)
		m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) sendCmd(text string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Send(context.Background(), text)
		return opDoneMsg{}
	}
}

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	ctrl := m.ctrl

	switch fields[0] {
	case "/help":
		m.status = "/new /switch <id> /attach <glob> /csv <file> /rm <artifactId> /quit"
		return m, nil

	case "/quit":
		m.quitting = true
		return m, tea.Quit

	case "/new":
		m.status = "starting new chat"
		return m, func() tea.Msg {
			_ = ctrl.NewChat(context.Background())
			return opDoneMsg{}
		}

	case "/switch":
		if len(fields) < 2 {
			m.status = "usage: /switch <sessionId>"
			return m, nil
		}
		id := fields[1]
		m.status = "loading session"
		return m, func() tea.Msg {
			_ = ctrl.SwitchTo(context.Background(), id)
			return opDoneMsg{}
		}

	case "/attach":
		if len(fields) < 2 {
			m.status = "usage: /attach <glob>"
			return m, nil
		}
		files, err := resolveFiles(fields[1])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("uploading %d file(s)", len(files))
		return m, func() tea.Msg {
			_ = ctrl.UploadImages(context.Background(), files)
			return opDoneMsg{}
		}

	case "/csv":
		if len(fields) < 2 {
			m.status = "usage: /csv <file>"
			return m, nil
		}
		files, err := resolveFiles(fields[1])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = "uploading csv"
		return m, func() tea.Msg {
			_ = ctrl.UploadCSV(context.Background(), files[0])
			return opDoneMsg{}
		}

	case "/rm":
		if len(fields) < 2 {
			m.status = "usage: /rm <artifactId>"
			return m, nil
		}
		id := fields[1]
		return m, func() tea.Msg {
			_ = ctrl.RemoveArtifact(context.Background(), id)
			return opDoneMsg{}
		}
	}

	m.status = "unknown command: " + fields[0]
	return m, nil
}

// resolveFiles expands a glob pattern and reads every matched file.
func resolveFiles(pattern string) ([]chat.UploadFile, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern: %v", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %s", pattern)
	}

	var files []chat.UploadFile
	for _, path := range matches {
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("reading %s: %v", path, err)
		}
		files = append(files, chat.UploadFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.ctrl.State().Snapshot(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.quitting {
		return "Bye.\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Multimodal Chat"))
	snap := m.ctrl.State().Snapshot()
	if snap.SessionID != "" {
		b.WriteString(tagStyle.Render("  " + snap.SessionID))
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if len(m.uploads) > 0 {
		names := make([]string, 0, len(m.uploads))
		for name := range m.uploads {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("%s %s\n", name, m.progress.ViewAs(float64(m.uploads[name])/100)))
		}
	}

	if snap.Error != "" {
		b.WriteString(errorStyle.Render(snap.Error))
		b.WriteString("\n")
	}

	status := m.status
	if snap.Pending {
		status = "thinking..."
	}
	b.WriteString(tagStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

// renderTranscript formats the normalized message list for the viewport.
func renderTranscript(snap chat.Snapshot, width int) string {
	var b strings.Builder

	if !snap.Dataset.Empty() {
		b.WriteString(tagStyle.Render(fmt.Sprintf("dataset: %s (%d rows)",
			strings.Join(snap.Dataset.Columns, ", "), snap.Dataset.NumRows)))
		b.WriteString("\n\n")
	}

	for _, msg := range snap.Messages {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userStyle.Render("you"))
		default:
			b.WriteString(assistantStyle.Render("assistant"))
		}
		if msg.Modality != chat.ModalityText {
			b.WriteString(tagStyle.Render(" [" + string(msg.Modality) + "]"))
		}
		b.WriteString("\n")

		if msg.Content != "" {
			b.WriteString(wrap(msg.Content, width))
			b.WriteString("\n")
		}
		if n := len(msg.ImageURLs); n > 0 {
			b.WriteString(tagStyle.Render(fmt.Sprintf("  [%d image(s) attached]", n)))
			b.WriteString("\n")
		}
		if msg.Code != "" {
			b.WriteString(tagStyle.Render("  ```\n"))
			b.WriteString(msg.Code)
			b.WriteString(tagStyle.Render("\n  ```"))
			b.WriteString("\n")
		}
		if msg.Artifact != nil && msg.Artifact.Chart != "" {
			b.WriteString(tagStyle.Render("  [chart]"))
			b.WriteString("\n")
		}
		if msg.Artifact != nil && msg.Artifact.Text != "" {
			b.WriteString(msg.Artifact.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
