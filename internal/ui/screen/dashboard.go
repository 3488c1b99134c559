package screen

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/coinwatch/internal/command"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/scheduler"
	"github.com/rovshanmuradov/coinwatch/internal/sorting"
	"github.com/rovshanmuradov/coinwatch/internal/ui"
	"github.com/rovshanmuradov/coinwatch/internal/ui/component"
	"github.com/rovshanmuradov/coinwatch/internal/ui/router"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
)

// Tab is a page of the dashboard.
type Tab int

const (
	TabWatchlist Tab = iota
	TabPortfolio
	TabMarket
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabWatchlist:
		return "Watchlist"
	case TabPortfolio:
		return "Portfolio"
	case TabMarket:
		return "Fear & Greed"
	default:
		return "unknown"
	}
}

// view returns the sortable view behind the tab.
func (t Tab) view() (sorting.View, bool) {
	switch t {
	case TabWatchlist:
		return sorting.WatchlistView, true
	case TabPortfolio:
		return sorting.PortfolioView, true
	default:
		return 0, false
	}
}

// DashboardScreen is the main screen: watchlist, portfolio and market tabs,
// plus the command line.
type DashboardScreen struct {
	width  int
	height int
	keyMap ui.KeyMap
	svc    ui.Services

	// UI components
	header  *component.StatusHeader
	table   *component.Table
	alloc   *component.AllocationList
	spark   *component.Sparkline
	helpBar *component.HelpBar
	cmdLine *component.CommandLine

	// State
	tab        Tab
	tokens     []domain.TrackedToken
	rows       []domain.TrackedToken
	sorts      map[sorting.View]sorting.State
	cursors    map[sorting.View]int
	status     scheduler.Status
	fearGreed  domain.FearGreedSeries
	fgErr      error
	fgLoading  bool
	commanding bool

	message    string
	messageErr bool
	messageAt  time.Time
}

// NewDashboardScreen creates the dashboard
func NewDashboardScreen(svc ui.Services) *DashboardScreen {
	s := &DashboardScreen{
		keyMap:  ui.DefaultKeyMap(),
		svc:     svc,
		header:  component.NewStatusHeader(),
		table:   component.NewTable(),
		alloc:   component.NewAllocationList(60),
		spark:   component.NewSparkline(30).SetScale(0, 100),
		helpBar: component.NewHelpBar(),
		cmdLine: component.NewCommandLine("add <id> -w | -p <amount> <price> | -wp <amount> <price>   rm <id> -w | -p | -wp", validateCommand),
		sorts: map[sorting.View]sorting.State{
			sorting.WatchlistView: sorting.DefaultState(sorting.WatchlistView),
			sorting.PortfolioView: sorting.DefaultState(sorting.PortfolioView),
		},
		cursors: make(map[sorting.View]int),
	}
	if svc.Scheduler != nil {
		s.status = svc.Scheduler.Status()
		s.header.SetStatus(s.status)
	}
	s.rebuild()
	return s
}

func validateCommand(input string) error {
	_, err := command.Parse(input)
	return err
}

// Init loads the state and the Fear & Greed history.
func (s *DashboardScreen) Init() tea.Cmd {
	return tea.Batch(s.loadStateCmd(), s.loadFearGreedCmd())
}

// Update handles screen updates
func (s *DashboardScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.commanding {
			return s, s.handleCommandKey(msg)
		}
		return s, s.handleKey(msg)

	case ui.StateMsg:
		s.tokens = msg.Tokens
		s.rebuild()

	case ui.DomainEventMsg:
		return s, s.loadStateCmd()

	case ui.SchedulerStatusMsg:
		s.status = msg.Status
		s.header.SetStatus(msg.Status)

	case ui.FearGreedMsg:
		s.fgLoading = false
		if msg.Err != nil {
			s.fgErr = msg.Err
		} else {
			s.fearGreed = msg.Series
			s.fgErr = nil
		}

	case ui.CommandResultMsg:
		return s, s.handleCommandResult(msg)
	}

	return s, nil
}

func (s *DashboardScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keyMap.Up):
		s.table.MoveUp()
		s.saveCursor()

	case key.Matches(msg, s.keyMap.Down):
		s.table.MoveDown()
		s.saveCursor()

	case key.Matches(msg, s.keyMap.NextView):
		s.tab = (s.tab + 1) % tabCount
		s.rebuild()

	case key.Matches(msg, s.keyMap.PrevView):
		s.tab = (s.tab + tabCount - 1) % tabCount
		s.rebuild()

	case key.Matches(msg, s.keyMap.SortColumn):
		if v, ok := s.tab.view(); ok {
			s.sorts[v] = s.sorts[v].Next()
			s.rebuild()
		}

	case key.Matches(msg, s.keyMap.SortDirection):
		if v, ok := s.tab.view(); ok {
			s.sorts[v] = s.sorts[v].Toggle()
			s.rebuild()
		}

	case key.Matches(msg, s.keyMap.Refresh):
		return s.refresh()

	case key.Matches(msg, s.keyMap.Command):
		s.commanding = true
		return s.cmdLine.Focus()

	case key.Matches(msg, s.keyMap.Help):
		return navigate(ui.RouteHelp)

	case key.Matches(msg, s.keyMap.Logs):
		return navigate(ui.RouteLogs)
	}
	return nil
}

func (s *DashboardScreen) handleCommandKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keyMap.Execute):
		text := s.cmdLine.Submit()
		s.commanding = false
		s.cmdLine.Blur()
		if text == "" {
			return nil
		}
		return s.execCmd(text)

	case key.Matches(msg, s.keyMap.Cancel):
		s.commanding = false
		s.cmdLine.Blur()
		return nil
	}

	var cmd tea.Cmd
	s.cmdLine, cmd = s.cmdLine.Update(msg)
	return cmd
}

func (s *DashboardScreen) handleCommandResult(msg ui.CommandResultMsg) tea.Cmd {
	var persistErr *domain.PersistenceError
	switch {
	case msg.Err == nil:
		s.setMessage(msg.Result.Describe(), false)
	case errors.As(msg.Err, &persistErr):
		s.setMessage(fmt.Sprintf("%s, but saving failed: %v", msg.Result.Describe(), persistErr.Err), true)
	default:
		s.setMessage(msg.Err.Error(), true)
		return nil
	}

	// A new token has no quote yet.
	if msg.Result.Created && msg.Result.Command.Op == command.Add && s.svc.Scheduler != nil {
		s.svc.Scheduler.Refresh()
	}
	return s.loadStateCmd()
}

// refresh asks the scheduler for an immediate fetch and reloads the index.
func (s *DashboardScreen) refresh() tea.Cmd {
	if s.svc.Scheduler != nil && !s.svc.Scheduler.Refresh() {
		s.setMessage("refresh already in progress", false)
	}
	return s.loadFearGreedCmd()
}

func (s *DashboardScreen) setMessage(text string, isErr bool) {
	s.message = text
	s.messageErr = isErr
	s.messageAt = time.Now()
}

// CapturesInput reports whether the command line has the keyboard.
func (s *DashboardScreen) CapturesInput() bool {
	return s.commanding
}

// Tab returns the active tab.
func (s *DashboardScreen) Tab() Tab {
	return s.tab
}

// SortState returns the sort selection of a view.
func (s *DashboardScreen) SortState(v sorting.View) sorting.State {
	return s.sorts[v]
}

// Rows returns the tokens of the active table in display order.
func (s *DashboardScreen) Rows() []domain.TrackedToken {
	return s.rows
}

// Message returns the status line text.
func (s *DashboardScreen) Message() string {
	return s.message
}

func (s *DashboardScreen) saveCursor() {
	if v, ok := s.tab.view(); ok {
		s.cursors[v] = s.table.GetSelectedRow()
	}
}

// rebuild re-sorts the active view and refreshes the components.
func (s *DashboardScreen) rebuild() {
	summary := domain.Summarize(sorting.Filter(sorting.PortfolioView, s.tokens))
	s.header.SetTracked(len(s.tokens))
	if summary.Assets > 0 {
		s.header.SetPortfolio(valid(summary.NetWorth), valid(summary.PnL))
	} else {
		s.header.SetPortfolio(invalid, invalid)
	}
	s.alloc.SetAllocations(summary.Allocations)

	v, ok := s.tab.view()
	if !ok {
		s.rows = nil
		return
	}

	state := s.sorts[v]
	s.rows = state.Apply(s.tokens)
	cols := sorting.Columns(v)

	tableCols := make([]component.TableColumn, len(cols))
	sortIdx := -1
	for i, c := range cols {
		tableCols[i] = component.TableColumn{Header: c.Header(), Width: columnWidth(c), Align: columnAlign(c)}
		if c == state.Column {
			sortIdx = i
		}
	}

	rows := make([][]component.Cell, len(s.rows))
	for i, t := range s.rows {
		row := make([]component.Cell, len(cols))
		for j, c := range cols {
			row[j] = CellFor(t, c)
		}
		rows[i] = row
	}

	empty := "Watchlist is empty. Press e and type: add bitcoin -w"
	if v == sorting.PortfolioView {
		empty = "Portfolio is empty. Press e and type: add bitcoin -p <amount> <price>"
	}

	s.table.SetColumns(tableCols).
		SetSort(sortIdx, state.Direction.Indicator()).
		SetEmptyText(empty).
		SetRows(rows).
		SetSelectedRow(s.cursors[v])
	s.cursors[v] = s.table.GetSelectedRow()
}

// View renders the dashboard
func (s *DashboardScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(s.header.View())
	content.WriteString("\n")
	content.WriteString(s.renderTabs())
	content.WriteString("\n")

	switch s.tab {
	case TabWatchlist:
		content.WriteString(s.table.View())
	case TabPortfolio:
		content.WriteString(s.renderPortfolio())
	case TabMarket:
		content.WriteString(s.renderMarket())
	}
	content.WriteString("\n")

	if s.commanding {
		content.WriteString(s.cmdLine.View())
		content.WriteString("\n")
		content.WriteString(s.helpBar.SetKeyBindings(s.keyMap.CommandHelp()).View())
	} else {
		content.WriteString(s.renderStatusLine())
		content.WriteString("\n")
		content.WriteString(s.helpBar.SetKeyBindings(s.keyMap.ContextualHelp(ui.RouteDashboard)).View())
	}

	return content.String()
}

// SetSize sets the screen dimensions
func (s *DashboardScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.header.SetWidth(width)
	s.helpBar.SetWidth(width)
	s.cmdLine.SetWidth(width)
	s.alloc.SetWidth(style.AdaptiveWidth(width, 40))
	s.spark.SetWidth(max(min(width-8, 90), 10))

	// Header, tabs, status, help and the table frame.
	rows := height - 14
	if s.tab == TabPortfolio {
		rows -= 7
	}
	s.table.SetSize(width, max(rows, 3))
}

func (s *DashboardScreen) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := t.String()
		if v, ok := t.view(); ok {
			label = fmt.Sprintf("%s (%d)", label, len(sorting.Filter(v, s.tokens)))
		}
		if t == s.tab {
			tabs = append(tabs, style.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, style.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (s *DashboardScreen) renderStatusLine() string {
	var parts []string

	if s.status.LastErr != nil {
		parts = append(parts, style.ErrorStyle.Render("✗ "+s.status.LastErr.Error()))
	} else if s.status.Stale() {
		parts = append(parts, style.WarningStyle.Render(fmt.Sprintf("⚠ no quote for %d tokens", len(s.status.Last.Missing))))
	}

	if s.message != "" {
		text := s.messageAt.Format("15:04:05") + " " + s.message
		if s.messageErr {
			parts = append(parts, style.ErrorStyle.Render(text))
		} else {
			parts = append(parts, style.SuccessStyle.Render(text))
		}
	}

	if len(parts) == 0 {
		return style.MutedStyle.Render("Press e to enter a command, ? for help")
	}
	return strings.Join(parts, style.MutedStyle.Render(" • "))
}
