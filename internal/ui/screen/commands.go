package screen

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/coinwatch/internal/ui"
)

// Commands that talk to the rest of the program. They run off the UI
// goroutine and report back with a message.

func navigate(to ui.Route) tea.Cmd {
	return func() tea.Msg {
		return ui.RouterMsg{To: to}
	}
}

func (s *DashboardScreen) loadStateCmd() tea.Cmd {
	reader := s.svc.State
	if reader == nil {
		return nil
	}
	return func() tea.Msg {
		return ui.StateMsg{Tokens: reader.GetAll(), At: time.Now()}
	}
}

func (s *DashboardScreen) loadFearGreedCmd() tea.Cmd {
	source := s.svc.FearGreed
	if source == nil {
		return nil
	}
	s.fgLoading = true
	ctx, limit := s.svc.Context(), s.svc.FearGreedLimit
	if limit <= 0 {
		limit = 30
	}
	return func() tea.Msg {
		series, err := source.FearGreed(ctx, limit)
		return ui.FearGreedMsg{Series: series, Err: err}
	}
}

func (s *DashboardScreen) execCmd(text string) tea.Cmd {
	commands := s.svc.Commands
	if commands == nil {
		return nil
	}
	ctx := s.svc.Context()
	return func() tea.Msg {
		out, err := commands.Exec(ctx, text)
		return ui.CommandResultMsg{Input: text, Result: out, Err: err}
	}
}

func logsTickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return ui.LogsTickMsg{}
	})
}
