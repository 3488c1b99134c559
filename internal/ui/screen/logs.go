package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/coinwatch/internal/ui"
	"github.com/rovshanmuradov/coinwatch/internal/ui/component"
	"github.com/rovshanmuradov/coinwatch/internal/ui/router"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
	"go.uber.org/zap/zapcore"
)

const (
	logsRefreshInterval = time.Second
	logsLimit           = 500
)

// LogsScreen shows the in-memory log ring.
type LogsScreen struct {
	width  int
	height int
	keyMap ui.KeyMap

	// UI components
	viewer  *component.LogViewer
	helpBar *component.HelpBar

	lastUpdate time.Time
}

// NewLogsScreen creates a new logs screen
func NewLogsScreen(source ui.LogSource) *LogsScreen {
	return &LogsScreen{
		keyMap:  ui.DefaultKeyMap(),
		viewer:  component.NewLogViewer(source, logsLimit),
		helpBar: component.NewHelpBar(),
	}
}

// Init loads the logs and starts the auto-refresh timer
func (s *LogsScreen) Init() tea.Cmd {
	s.reload()
	return logsTickCmd(logsRefreshInterval)
}

// Update handles screen updates
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.FilterDebug):
			s.viewer.SetMinLevel(zapcore.DebugLevel)
		case key.Matches(msg, s.keyMap.FilterInfo):
			s.viewer.SetMinLevel(zapcore.InfoLevel)
		case key.Matches(msg, s.keyMap.FilterWarn):
			s.viewer.SetMinLevel(zapcore.WarnLevel)
		case key.Matches(msg, s.keyMap.FilterError):
			s.viewer.SetMinLevel(zapcore.ErrorLevel)
		case key.Matches(msg, s.keyMap.Follow):
			s.viewer.ToggleFollow()
		case key.Matches(msg, s.keyMap.Logs):
			return s, navigate(ui.RouteDashboard)
		default:
			return s, s.viewer.Update(msg)
		}

	case ui.LogsTickMsg:
		s.reload()
		return s, logsTickCmd(logsRefreshInterval)

	case tea.MouseMsg:
		return s, s.viewer.Update(msg)
	}

	return s, nil
}

func (s *LogsScreen) reload() {
	s.viewer.Refresh()
	s.lastUpdate = time.Now()
}

// View renders the logs screen
func (s *LogsScreen) View() string {
	return strings.Join([]string{
		style.TitleStyle.Render("Application Logs"),
		s.renderStatusBar(),
		s.viewer.View(),
		s.helpBar.SetKeyBindings(s.keyMap.ContextualHelp(ui.RouteLogs)).View(),
	}, "\n")
}

// SetSize sets the screen dimensions
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	s.viewer.SetSize(width, height-5)
}

// renderStatusBar renders the status information
func (s *LogsScreen) renderStatusBar() string {
	follow := "off"
	if s.viewer.Following() {
		follow = "on"
	}
	parts := []string{
		fmt.Sprintf("Level: %s+", s.viewer.MinLevel().CapitalString()),
		fmt.Sprintf("Shown: %d", s.viewer.Shown()),
		"Follow: " + follow,
		"Updated: " + s.lastUpdate.Format("15:04:05"),
	}
	return style.MutedStyle.Render(strings.Join(parts, " • "))
}
