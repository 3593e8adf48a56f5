package tui

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

	"github.com/msto63/euklid/internal/euklid/render"
	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/internal/euklid/store"
)

// View represents different views in the TUI
type View int

const (
	ViewCalculate View = iota
	ViewLCD
	ViewDecimal
	ViewHistory
	viewCount
)

// requestTimeout bounds one calculation, which matters for remote calculators
const requestTimeout = 15 * time.Second

// Options configures the model
type Options struct {
	Calculator service.Calculator
	Presenter  service.Presenter
	Locale     string
	Steps      bool

	// History is nil for a remote calculator
	History service.HistoryReader
	// Target names the calculator in the status bar, "local" by default
	Target  string
}

// entry is one answered input
type entry struct {
	input  string
	output string
	failed bool
}

// Model is the main TUI model
type Model struct {
	// State
	view    View
	width   int
	height  int
	ready   bool
	loading bool

	// Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// Per view transcripts
	entries [viewCount][]entry

	// History state
	records    []*store.Record
	historyErr string

	calc    service.Calculator
	printer *render.Printer
	history service.HistoryReader
	target  string
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	ta := textarea.New()
	ta.Focus()
	ta.CharLimit = 512
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	target := opts.Target
	if target == "" {
		target = "local"
	}

	m := Model{
		view:     ViewCalculate,
		textarea: ta,
		spinner:  sp,
		calc:     opts.Calculator,
		printer: &render.Printer{
			Presenter: opts.Presenter,
			Locale:    opts.Locale,
			Format:    render.FormatText,
			Steps:     opts.Steps,
		},
		history: opts.History,
		target:  target,
	}
	m.updatePlaceholder()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "shift+tab":
			if msg.String() == "tab" {
				m.view = (m.view + 1) % viewCount
			} else {
				m.view = (m.view + viewCount - 1) % viewCount
			}
			m.textarea.Reset()
			m.updatePlaceholder()
			m.updateContent()
			if m.view == ViewHistory {
				return m, m.loadHistory()
			}
			return m, nil

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if m.loading || input == "" || m.view == ViewHistory {
				return m, nil
			}
			m.textarea.Reset()
			m.loading = true
			return m, tea.Batch(m.compute(m.view, input), m.spinner.Tick)

		case "ctrl+l":
			// Clear current view
			if m.view == ViewHistory {
				m.records = nil
				m.historyErr = ""
			} else {
				m.entries[m.view] = nil
			}
			m.updateContent()
			return m, nil

		case "ctrl+r":
			if m.view == ViewHistory {
				return m, m.loadHistory()
			}

		case "ctrl+s":
			m.printer.Steps = !m.printer.Steps
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(1, msg.Height-8))
			m.viewport.YPosition = 3
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(1, msg.Height-8)
		}
		m.textarea.SetWidth(max(10, msg.Width-4))
		m.updateContent()

	case resultMsg:
		m.loading = false
		e := entry{input: msg.input}
		if msg.err != nil {
			e.output = m.printer.Presenter.Explain(m.printer.Locale, msg.err).Message
			e.failed = true
		} else {
			e.output = m.printer.Text(msg.result)
		}
		m.entries[msg.view] = append(m.entries[msg.view], e)
		m.updateContent()

	case historyMsg:
		m.historyErr = ""
		if msg.err != nil {
			m.historyErr = m.printer.Presenter.Explain(m.printer.Locale, msg.err).Message
		} else {
			m.records = msg.records
		}
		m.updateContent()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Update components
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) updatePlaceholder() {
	switch m.view {
	case ViewCalculate:
		m.textarea.Placeholder = "1/2 + 3/4 × 2"
	case ViewLCD:
		m.textarea.Placeholder = "1/2, 1/3, 1 1/4"
	case ViewDecimal:
		m.textarea.Placeholder = "0.375 or 3/8"
	case ViewHistory:
		m.textarea.Placeholder = "Ctrl+R to refresh"
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder

	// Header
	s.WriteString(m.renderHeader())
	s.WriteString("\n")

	// Main content
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	if m.loading {
		s.WriteString(m.spinner.View())
		s.WriteString(" Calculating...\n")
	}
	if m.view == ViewHistory {
		s.WriteString(renderHint("Ctrl+R: refresh"))
	} else {
		s.WriteString(inputStyle.Render(m.textarea.View()))
	}

	// Footer
	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m *Model) tabs() []string {
	return []string{
		m.printer.Presenter.Label(m.printer.Locale, "result"),
		m.printer.Presenter.Label(m.printer.Locale, "lcd"),
		m.printer.Presenter.Label(m.printer.Locale, "decimal"),
		m.printer.Presenter.Label(m.printer.Locale, "history"),
	}
}

func (m *Model) renderHeader() string {
	var renderedTabs []string

	for i, tab := range m.tabs() {
		if View(i) == m.view {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, tabStyle.Render(tab))
		}
	}

	title := titleStyle.Render("euklid")
	tabLine := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabLine)
}

func (m *Model) renderFooter() string {
	help := "Tab: switch • Enter: compute • Ctrl+S: steps • Ctrl+L: clear • Ctrl+C: quit"
	status := "calculator: " + m.target
	if m.printer.Steps {
		status = "steps on • " + status
	}

	return statusBarStyle.Width(m.width).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			help,
			strings.Repeat(" ", max(0, m.width-lipgloss.Width(help)-lipgloss.Width(status)-4)),
			status,
		),
	)
}

func (m *Model) updateContent() {
	var content strings.Builder

	if m.view == ViewHistory {
		content.WriteString(m.renderHistory())
	} else {
		for _, e := range m.entries[m.view] {
			content.WriteString(echoStyle.Render("> " + e.input))
			content.WriteString("\n")
			if e.failed {
				content.WriteString(renderError(e.output))
				content.WriteString("\n")
			} else {
				content.WriteString(resultStyle.Render(strings.TrimRight(e.output, "\n")))
				content.WriteString("\n")
			}
			content.WriteString("\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderHistory() string {
	switch {
	case m.history == nil:
		return noteStyle.Render("History is only available for the local calculator.")
	case m.historyErr != "":
		return renderError(m.historyErr)
	case len(m.records) == 0:
		return noteStyle.Render("No calculations recorded yet.")
	}
	return m.printer.Text(m.records)
}

// Message types for async operations
type resultMsg struct {
	view   View
	input  string
	result interface{}
	err    error
}

type historyMsg struct {
	records []*store.Record
	err     error
}

// compute runs input against the calculator operation of view
func (m *Model) compute(view View, input string) tea.Cmd {
	calc := m.calc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			result interface{}
			err    error
		)
		switch view {
		case ViewCalculate:
			result, err = calc.Calculate(ctx, input)
		case ViewLCD:
			result, err = calc.Compare(ctx, service.SplitList(input))
		case ViewDecimal:
			// A decimal point asks for the fraction, anything else for the decimal
			if strings.ContainsAny(input, ".,") {
				result, err = calc.FromDecimal(ctx, strings.ReplaceAll(input, ",", "."))
			} else {
				result, err = calc.ToDecimal(ctx, input, true)
			}
		}
		return resultMsg{view: view, input: input, result: result, err: err}
	}
}

// loadHistory fetches the newest records
func (m *Model) loadHistory() tea.Cmd {
	if m.history == nil {
		return nil
	}
	history := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		records, err := history.History(ctx, store.Filter{Limit: 100})
		return historyMsg{records: records, err: err}
	}
}

// Run starts the TUI and blocks until the user quits
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
