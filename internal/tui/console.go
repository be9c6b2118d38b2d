// Package tui implements the interactive analysis console: type a
// prompt, pick a method, and read the result against the loaded
// documents.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"elements/internal/domain"
)

// Model is the Bubble Tea model for the analysis console.
type Model struct {
	analyzer domain.Analyzer
	files    []domain.RawFile
	extra    string

	input    textinput.Model
	viewport viewport.Model
	method   domain.Method
	digest   string
	status   string
	ready    bool
	busy     bool
}

type analysisMsg struct {
	result domain.AnalysisResult
}

// New creates a console over the given analyzer and preloaded files.
// The digest is shown under the header as a reminder of what was loaded.
func New(analyzer domain.Analyzer, files []domain.RawFile, supplementary, digest string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe what to analyze and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		analyzer: analyzer,
		files:    files,
		extra:    supplementary,
		input:    ti,
		viewport: vp,
		method:   domain.MethodReasoning,
		digest:   digest,
		status:   fmt.Sprintf("Loaded %d file(s). Tab switches method.", len(files)),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := promptBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + digest, status, prompt box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil
	case analysisMsg:
		m.busy = false
		if msg.result.Success {
			m.status = fmt.Sprintf("Done in %dms (attempts: %d)",
				msg.result.Diagnostics.TimingMs, msg.result.Diagnostics.Attempts)
		} else {
			m.status = "Analysis failed"
		}
		m.viewport.SetContent(renderResult(msg.result))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.method == domain.MethodReasoning {
				m.method = domain.MethodExtraction
			} else {
				m.method = domain.MethodReasoning
			}
			return m, nil
		case "enter":
			prompt := strings.TrimSpace(m.input.Value())
			if prompt != "" && !m.busy {
				m.busy = true
				m.status = fmt.Sprintf("Analyzing with %s...", m.method)
				return m, m.analyze(prompt)
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) analyze(prompt string) tea.Cmd {
	element := domain.Element{
		Name:   "console",
		Prompt: prompt,
		Method: m.method,
	}
	analyzer, files, extra := m.analyzer, m.files, m.extra
	return func() tea.Msg {
		return analysisMsg{result: analyzer.Analyze(context.Background(), element, files, extra)}
	}
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Element Analysis  [" + string(m.method) + "]")
	digest := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.digest)
	result := resultBoxStyle.Render(m.viewport.View())
	input := promptBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + digest + "\n" + result + "\n" + input + "\n" + status
}

func renderResult(res domain.AnalysisResult) string {
	var b strings.Builder
	if res.Success {
		b.WriteString(res.Output)
	} else {
		b.WriteString(failureStyle.Render("Failed: " + res.Output))
		for _, msg := range res.Diagnostics.Errors {
			b.WriteString("\n  " + msg)
		}
	}
	b.WriteString(fmt.Sprintf("\n\nmethod=%s id=%s", res.MethodUsed, res.Diagnostics.AnalysisID))
	if res.Diagnostics.Retrieved > 0 {
		b.WriteString(fmt.Sprintf(" retrieved=%d", res.Diagnostics.Retrieved))
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	failureStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
