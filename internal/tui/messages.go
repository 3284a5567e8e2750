package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/dispo/internal/session"
)

// Message types for the Bubble Tea update cycle

// NoticeMsg carries the outcome of a background persist
type NoticeMsg struct {
	session.Notice
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// waitForNotice blocks on the session's notice channel. The channel is never
// closed, so the command is re-issued after every notice.
func waitForNotice(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Notice: <-s.Notices()}
	}
}
