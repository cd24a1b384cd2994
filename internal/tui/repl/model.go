// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     repl
// Description: Bubbletea model for the interactive script editor
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package repl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/hivemind/internal/hivemind"
	"github.com/msto63/hivemind/internal/hivemind/command"
)

// SourceName labels REPL runs in the history
const SourceName = "repl"

// Interpreter is the part of hivemind.Engine the REPL uses
type Interpreter interface {
	Parse(text string) (command.Script, error)
	Run(ctx context.Context, text string, ro hivemind.RunOptions) (*hivemind.Result, error)
}

// Config holds REPL configuration
type Config struct {
	Interpreter    Interpreter
	ShowHex        bool
	MaxOutputLines int
	Version        string
}

// DefaultConfig returns default configuration
func DefaultConfig(interp Interpreter) Config {
	return Config{
		Interpreter:    interp,
		MaxOutputLines: 500,
		Version:        "dev",
	}
}

// Model is the main Bubbletea model for the REPL
type Model struct {
	// State
	width   int
	height  int
	ready   bool
	running bool
	showHex bool

	// Components
	editor   textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// Transcript
	entries []Entry

	// Configuration
	interp         Interpreter
	maxOutputLines int
	version        string
}

const (
	editorHeight = 6
	headerHeight = 3
	footerHeight = 2
)

// New creates a new REPL model
func New(cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Skript eingeben, z.B. string hallo / hex ..."
	ta.Focus()
	ta.CharLimit = 0
	ta.SetHeight(editorHeight)
	ta.ShowLineNumbers = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	if cfg.MaxOutputLines <= 0 {
		cfg.MaxOutputLines = 500
	}

	return Model{
		editor:         ta,
		spinner:        sp,
		showHex:        cfg.ShowHex,
		interp:         cfg.Interpreter,
		maxOutputLines: cfg.MaxOutputLines,
		version:        cfg.Version,
	}
}

// Entries returns the transcript
func (m Model) Entries() []Entry {
	return m.entries
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, next, cmd := m.handleKeyPress(msg); handled {
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := msg.Height - headerHeight - (editorHeight + 2) - footerHeight - 2
		if viewportHeight < 3 {
			viewportHeight = 3
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.editor.SetWidth(msg.Width - 4)
		m.updateViewportContent()

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case runFinishedMsg:
		m.running = false
		m.entries = append(m.entries, msg.entry)
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case checkFinishedMsg:
		m.entries = append(m.entries, msg.entry)
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil
	}

	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles the REPL shortcuts; other keys go to the editor
func (m Model) handleKeyPress(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return true, m, tea.Quit

	case "ctrl+r":
		source := m.editor.Value()
		if m.running || strings.TrimSpace(source) == "" {
			return true, m, nil
		}
		m.running = true
		return true, m, m.runScript(len(m.entries)+1, source)

	case "ctrl+k":
		source := m.editor.Value()
		if strings.TrimSpace(source) == "" {
			return true, m, nil
		}
		return true, m, m.checkScript(len(m.entries)+1, source)

	case "ctrl+e":
		m.showHex = !m.showHex
		m.updateViewportContent()
		return true, m, nil

	case "ctrl+l":
		m.entries = nil
		m.updateViewportContent()
		return true, m, nil

	case "ctrl+n":
		m.editor.Reset()
		return true, m, nil

	case "pgup":
		m.viewport.ViewUp()
		return true, m, nil

	case "pgdown":
		m.viewport.ViewDown()
		return true, m, nil
	}
	return false, m, nil
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Lade REPL..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(TranscriptPanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")

	b.WriteString(EditorPanelStyle.Width(m.width - 2).Render(m.editor.View()))
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	b.WriteString(m.renderHelpBar())

	return b.String()
}

// renderHeader renders the header with logo and mode
func (m Model) renderHeader() string {
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(Logo),
		strings.Repeat(" ", 3),
		SubHeaderStyle.Render("Puffer-Pipeline, Ausgabe von Schritt i ist Eingabe von Schritt i+1"),
	)
	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

// renderStatusBar renders the status bar
func (m Model) renderStatusBar() string {
	leftPart := HelpDescStyle.Render(fmt.Sprintf("Läufe: %d", len(m.entries)))
	centerPart := RenderMode("Hex-Escapes", m.showHex)

	var rightPart string
	if m.running {
		rightPart = m.spinner.View() + " Läuft..."
	} else {
		rightPart = HelpDescStyle.Render("v" + m.version)
	}

	leftLen := lipgloss.Width(leftPart)
	centerLen := lipgloss.Width(centerPart)
	rightLen := lipgloss.Width(rightPart)
	availableSpace := m.width - leftLen - centerLen - rightLen - 4
	if availableSpace < 2 {
		availableSpace = 2
	}
	leftPadding := availableSpace / 2
	rightPadding := availableSpace - leftPadding

	content := leftPart + strings.Repeat(" ", leftPadding) + centerPart + strings.Repeat(" ", rightPadding) + rightPart
	return StatusBarStyle.Width(m.width - 2).Render(content)
}

// renderHelpBar renders the help shortcuts bar
func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("Ctrl+R", "Ausführen"),
		RenderKeyHint("Ctrl+K", "Prüfen"),
		RenderKeyHint("Ctrl+E", "Hex"),
		RenderKeyHint("Ctrl+N", "Neu"),
		RenderKeyHint("Ctrl+L", "Leeren"),
		RenderKeyHint("PgUp/PgDn", "Scrollen"),
		RenderKeyHint("Esc", "Beenden"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// updateViewportContent renders the transcript into the viewport
func (m *Model) updateViewportContent() {
	var content strings.Builder

	for _, e := range m.entries {
		index := EntryIndexStyle.Render(fmt.Sprintf("#%d", e.Index))
		at := EntryTimestampStyle.Render(e.At.Format("15:04:05"))
		meta := HelpDescStyle.Render(fmt.Sprintf("%d Befehle, %s", e.Commands, e.Duration.Round(time.Microsecond)))
		content.WriteString(fmt.Sprintf("%s %s %s %s\n", index, at, RenderStatusBadge(e), meta))

		for _, line := range strings.Split(strings.TrimRight(e.Source, "\n"), "\n") {
			content.WriteString(EntrySourceStyle.Render("  > " + line))
			content.WriteString("\n")
		}

		if !e.CheckOnly || e.Err != nil {
			content.WriteString(EntryOutputStyle.Render(m.renderOutput(e)))
			content.WriteString("\n")
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderOutput renders one entry's result, capped at maxOutputLines
func (m Model) renderOutput(e Entry) string {
	var text string
	if m.showHex {
		text = hivemind.RenderEscaped(e.Output, e.Err)
	} else {
		text = hivemind.Render(e.Output, e.Err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) > m.maxOutputLines {
		hidden := len(lines) - m.maxOutputLines
		lines = append(lines[:m.maxOutputLines], fmt.Sprintf("... %d weitere Zeilen", hidden))
	}
	return strings.Join(lines, "\n")
}

// runScript executes source in the background
func (m Model) runScript(index int, source string) tea.Cmd {
	interp := m.interp
	return func() tea.Msg {
		entry := Entry{Index: index, At: time.Now(), Source: source}
		res, err := interp.Run(context.Background(), source, hivemind.RunOptions{SourceName: SourceName})
		entry.Err = err
		if res != nil {
			entry.RunID = res.RunID
			entry.Output = res.Output
			entry.Commands = res.Script.Len()
			entry.Duration = res.Duration
			if res.Report != nil {
				entry.Timeouts = len(res.Report.Timeouts)
			}
		}
		return runFinishedMsg{entry: entry}
	}
}

// checkScript parses source without running it
func (m Model) checkScript(index int, source string) tea.Cmd {
	interp := m.interp
	return func() tea.Msg {
		start := time.Now()
		script, err := interp.Parse(source)
		return checkFinishedMsg{entry: Entry{
			Index:     index,
			At:        start,
			Source:    source,
			Err:       err,
			Commands:  script.Len(),
			Duration:  time.Since(start),
			CheckOnly: true,
		}}
	}
}

// Run starts the REPL TUI
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
