// Package tui is the interactive front end: it edits a session's asset from
// the keyboard and redraws every scenario after each edit.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/session"
)

// inputMode selects what keystrokes are routed to
type inputMode int

const (
	modeBrowse inputMode = iota
	modeEditPrice
	modeEditProceeds
)

// Model represents the entire application state
type Model struct {
	session *session.Session

	keys  keyMap
	help  help.Model
	input textinput.Model
	mode  inputMode

	scenario domain.ScenarioKind
	cursor   int

	// results when the session opened, the reference for trend arrows
	baseline map[domain.ScenarioKind]*domain.ScenarioResult

	width  int
	height int

	status    string
	statusErr bool
}

// NewModel creates a new application model
func NewModel(s *session.Session) Model {
	input := textinput.New()
	input.CharLimit = 20
	input.Width = 20

	m := Model{
		session:  s,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    input,
		baseline: make(map[domain.ScenarioKind]*domain.ScenarioResult),
		width:    100,
		height:   30,
	}
	for _, r := range s.Results() {
		m.baseline[r.Scenario] = r
		if m.scenario == "" {
			m.scenario = r.Scenario
		}
	}
	return m
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return waitForNotice(m.session)
}

// Scenario returns the scenario currently on display
func (m Model) Scenario() domain.ScenarioKind {
	return m.scenario
}

// Status returns the status line text and whether it reports an error
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// selectedPhase returns the phase under the cursor
func (m Model) selectedPhase(asset *domain.Asset) (domain.Phase, bool) {
	if m.cursor < 0 || m.cursor >= len(asset.Phases) {
		return domain.Phase{}, false
	}
	return asset.Phases[m.cursor], true
}
