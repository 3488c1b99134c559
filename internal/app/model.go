package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/coinwatch/internal/ui"
	"github.com/rovshanmuradov/coinwatch/internal/ui/router"
	"github.com/rovshanmuradov/coinwatch/internal/ui/screen"
	"go.uber.org/zap"
)

// Listener delivers background updates one message at a time.
type Listener interface {
	Listen() tea.Cmd
}

// Model is the root tea model: a router over the dashboard plus the plumbing
// that feeds engine events and scheduler transitions into it.
type Model struct {
	router  *router.Router
	svc     ui.Services
	updates Listener
	keyMap  ui.KeyMap
	logger  *zap.Logger
	width   int
	height  int
}

// NewModel creates the root model with the dashboard as the bottom screen.
// updates may be nil when nothing runs in the background.
func NewModel(svc ui.Services, updates Listener, logger *zap.Logger) *Model {
	return &Model{
		router:  router.New(screen.NewDashboardScreen(svc)),
		svc:     svc,
		updates: updates,
		keyMap:  ui.DefaultKeyMap(),
		logger:  logger.Named("tui"),
	}
}

// Init initializes the application
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.router.Init(), m.listen())
}

func (m *Model) listen() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return m.updates.Listen()
}

// Update handles application-level updates
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.router.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// ctrl+c always quits; q only when no text input has the keyboard.
		if key.Matches(msg, m.keyMap.Quit) && (msg.Type == tea.KeyCtrlC || !m.router.CapturesInput()) {
			m.logger.Debug("Quit requested")
			return m, tea.Quit
		}
		return m, m.router.Update(msg)

	case ui.RouterMsg:
		return m, m.navigate(msg.To)

	case ui.DomainEventMsg, ui.SchedulerStatusMsg:
		// Both only ever come from the update channel.
		return m, tea.Batch(m.router.Broadcast(msg), m.listen())

	case ui.StateMsg, ui.FearGreedMsg:
		return m, m.router.Broadcast(msg)
	}

	return m, m.router.Update(msg)
}

// navigate keeps the dashboard at the bottom of the stack and at most one
// screen above it.
func (m *Model) navigate(route ui.Route) tea.Cmd {
	for m.router.Depth() > 1 {
		m.router.Pop()
	}

	switch route {
	case ui.RouteHelp:
		return m.router.Push(screen.NewHelpScreen())
	case ui.RouteLogs:
		if m.svc.Logs == nil {
			return nil
		}
		return m.router.Push(screen.NewLogsScreen(m.svc.Logs))
	}
	return nil
}

// Current returns the screen on top of the stack.
func (m *Model) Current() router.Screen {
	return m.router.Current()
}

// View renders the application
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.router.View()
}
