package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.handleInput(msg)
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case NoticeMsg:
		if msg.Err != nil {
			m.setError(fmt.Errorf("save failed for %s: %w", msg.Event, msg.Err))
		} else {
			m.setStatus("saved %s", msg.Event)
		}
		applied, err := m.session.ApplyPending()
		switch {
		case err != nil:
			m.setError(err)
		case applied && msg.Err == nil:
			m.setStatus("saved %s; base figures updated from store", msg.Event)
		}
		return m, waitForNotice(m.session)

	case ErrorMsg:
		m.setError(msg.Err)
		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input in browse mode
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	asset := m.session.Asset()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(asset.Phases)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Inc), key.Matches(msg, m.keys.Dec):
		phase, ok := m.selectedPhase(asset)
		if !ok {
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.keys.Dec) {
			step = -1
		}
		if err := m.session.AdjustPhase(phase.ID, step); err != nil {
			m.setError(err)
		} else {
			m.setStatus("%s %+d month", phase.Name, step)
		}

	case key.Matches(msg, m.keys.Reset):
		if err := m.session.ResetOverrides(); err != nil {
			m.setError(err)
		} else {
			m.setStatus("overrides cleared")
		}

	case key.Matches(msg, m.keys.Scenario):
		m.scenario = m.nextScenario()

	case key.Matches(msg, m.keys.Price):
		return m.startInput(modeEditPrice, "acquisition price", asset.AcquisitionPrice)

	case key.Matches(msg, m.keys.Proceeds):
		def, err := asset.Scenario(m.scenario)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		return m.startInput(modeEditProceeds, def.Name+" proceeds", def.Proceeds)
	}

	return m, nil
}

func (m Model) startInput(mode inputMode, placeholder string, current *decimal.Decimal) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	if current != nil {
		m.input.SetValue(current.StringFixed(domain.CentPlaces))
	}
	m.input.Focus()
	return m, textinput.Blink
}

// handleInput routes keystrokes to the amount editor
func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		m.setStatus("edit cancelled")
		return m, nil

	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		amount, err := parseAmount(m.input.Value())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		if m.mode == modeEditPrice {
			err = m.session.SetAcquisitionPrice(amount)
		} else {
			err = m.session.SetProceeds(m.scenario, amount)
		}
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("%s set to %s", m.input.Placeholder, domain.FormatAmount(amount))
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// nextScenario cycles through the scenarios the session has results for
func (m Model) nextScenario() domain.ScenarioKind {
	results := m.session.Results()
	for i, r := range results {
		if r.Scenario == m.scenario {
			return results[(i+1)%len(results)].Scenario
		}
	}
	if len(results) > 0 {
		return results[0].Scenario
	}
	return m.scenario
}

// parseAmount reads a dollar amount typed by the user. An empty entry marks
// the figure unknown.
func parseAmount(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return &d, nil
}
