package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobmatch/internal/search"
)

// searchTimeout bounds one interactive search, including every source and the ranking pass.
const searchTimeout = 3 * time.Minute

var errCancelled = errors.New("cancelled")

type searchDoneMsg struct {
	result search.Result
}

type loaderModel struct {
	label   string
	runFn   func(ctx context.Context) search.Result
	cancel  context.CancelFunc
	ctx     context.Context
	spinner spinner.Model
	result  search.Result
	err     error
	done    bool
}

func newLoaderModel(label string, runFn func(ctx context.Context) search.Result) loaderModel {
	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{
		label:   label,
		runFn:   runFn,
		ctx:     ctx,
		cancel:  cancel,
		spinner: s,
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doSearch(), m.spinner.Tick)
}

func (m loaderModel) doSearch() tea.Cmd {
	runFn, ctx := m.runFn, m.ctx
	return func() tea.Msg {
		return searchDoneMsg{result: runFn(ctx)}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		m.result = msg.result
		m.done = true
		m.cancel()
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = errCancelled
			m.cancel()
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Searching %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while the search runs. It renders inline (no alt screen).
func RunLoader(label string, runFn func(ctx context.Context) search.Result) (search.Result, error) {
	p := tea.NewProgram(newLoaderModel(label, runFn))
	result, err := p.Run()
	if err != nil {
		return search.Result{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
