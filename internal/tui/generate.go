package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/phasedocs/internal/config"
	"github.com/gerunddev/phasedocs/internal/generate"
	"github.com/gerunddev/phasedocs/internal/styles"
)

// PageStartedMsg is sent when the generator picks up a phase
type PageStartedMsg struct {
	Phase config.Phase
}

// PageDoneMsg is sent when a phase is written or has failed
type PageDoneMsg struct {
	Result generate.PageResult
}

// GenerateDoneMsg is sent when the run completes
type GenerateDoneMsg struct {
	Result *generate.Result
}

// generateModel is the Bubble Tea model for the generation progress display
type generateModel struct {
	spinner  spinner.Model
	status   string
	total    int
	pages    []generate.PageResult
	complete bool
	result   *generate.Result
}

// InitGenerateModel creates a progress model for total pages
func InitGenerateModel(total int) generateModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return generateModel{
		spinner: s,
		status:  "Reading phase documents...",
		total:   total,
	}
}

func (m generateModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m generateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case PageStartedMsg:
		m.status = fmt.Sprintf("Generating %s (%d/%d)", msg.Phase.OutputName(), len(m.pages)+1, m.total)
		return m, nil

	case PageDoneMsg:
		m.pages = append(m.pages, msg.Result)
		return m, nil

	case GenerateDoneMsg:
		m.complete = true
		m.result = msg.Result
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m generateModel) View() string {
	var b strings.Builder
	for _, p := range m.pages {
		b.WriteString(PageLine(p))
		b.WriteString("\n")
	}

	if m.complete {
		b.WriteString(Summary(m.result))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), m.status))
	return b.String()
}

// PageLine is the ✓/✗ line printed for one page
func PageLine(p generate.PageResult) string {
	if p.Err != nil {
		return styles.ErrorStyle.Render("✗ " + p.Err.Error())
	}
	line := styles.SuccessStyle.Render("✓ "+p.Phase.OutputName()) + " " +
		styles.DimStyle.Render(fmt.Sprintf("Fase %d: %s", p.Phase.Num, p.Phase.Title))
	for _, w := range p.Warnings {
		line += "\n  " + styles.WarningStyle.Render("! "+w)
	}
	return line
}

// Summary is the closing line of a run
func Summary(r *generate.Result) string {
	if r == nil {
		return styles.WarningStyle.Render("Generation interrupted") + "\n"
	}

	msg := styles.SuccessStyle.Render(fmt.Sprintf("✓ Generated %d page(s)", r.Generated()))
	if failed := len(r.Failed()); failed > 0 {
		msg += ", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", failed))
	}
	msg += "\n" + styles.HelpStyle.Render(fmt.Sprintf("Completed in %v", r.EndTime.Sub(r.StartTime).Round(time.Millisecond))) + "\n"
	return msg
}

// programProgress forwards generator events to a running program
type programProgress struct {
	program *tea.Program
}

func (p programProgress) PageStarted(phase config.Phase) {
	p.program.Send(PageStartedMsg{Phase: phase})
}

func (p programProgress) PageDone(r generate.PageResult) {
	p.program.Send(PageDoneMsg{Result: r})
}

// RunGenerate runs g over phases behind a spinner. It waits for the run to
// finish even when the display is quit early.
func RunGenerate(g *generate.Generator, phases []config.Phase) (*generate.Result, error) {
	p := tea.NewProgram(InitGenerateModel(len(phases)), tea.WithInput(os.Stdin))
	g.SetProgress(programProgress{program: p})

	done := make(chan *generate.Result, 1)
	go func() {
		result := g.Run(phases)
		done <- result
		p.Send(GenerateDoneMsg{Result: result})
	}()

	if _, err := p.Run(); err != nil {
		return <-done, err
	}
	return <-done, nil
}
