package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/coinwatch/internal/scheduler"
	"github.com/rovshanmuradov/coinwatch/internal/ui/format"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
	"github.com/shopspring/decimal"
)

// StatusHeader provides a clean header with essential status information
type StatusHeader struct {
	status   scheduler.Status
	netWorth decimal.NullDecimal
	pnl      decimal.NullDecimal
	tracked  int
	width    int
	now      func() time.Time
	style    StatusHeaderStyle
}

// StatusHeaderStyle contains all styling for the status header
type StatusHeaderStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	label     lipgloss.Style
	good      lipgloss.Style
	busy      lipgloss.Style
	bad       lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		now: time.Now,
		style: StatusHeaderStyle{
			container: lipgloss.NewStyle().
				Foreground(palette.Text).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 2),

			title: lipgloss.NewStyle().
				Foreground(palette.Primary).
				Bold(true),

			label: lipgloss.NewStyle().
				Foreground(palette.TextSecondary),

			good: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			busy: lipgloss.NewStyle().
				Foreground(palette.Warning).
				Bold(true),

			bad: lipgloss.NewStyle().
				Foreground(palette.Error).
				Bold(true),
		},
	}
}

// SetStatus updates the refresh status display
func (sh *StatusHeader) SetStatus(status scheduler.Status) {
	sh.status = status
}

// SetPortfolio updates the net worth and total P/L. Invalid values render
// as N/A.
func (sh *StatusHeader) SetPortfolio(netWorth, pnl decimal.NullDecimal) {
	sh.netWorth = netWorth
	sh.pnl = pnl
}

// SetTracked updates the number of tracked tokens.
func (sh *StatusHeader) SetTracked(n int) {
	sh.tracked = n
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
}

// View renders the status header
func (sh *StatusHeader) View() string {
	sep := sh.style.label.Render(" │ ")
	content := lipgloss.JoinHorizontal(
		lipgloss.Left,
		sh.style.title.Render("coinwatch"),
		sep,
		sh.renderRefresh(),
		sep,
		sh.style.label.Render(fmt.Sprintf("Tracking %d", sh.tracked)),
		sep,
		sh.renderNetWorth(),
	)

	container := sh.style.container
	if sh.width > 4 {
		container = container.Width(sh.width - 2)
	}
	return container.Render(content)
}

// renderRefresh shows the scheduler state and the age of the data.
func (sh *StatusHeader) renderRefresh() string {
	st := sh.status
	updated := "never"
	if !st.LastSuccess.IsZero() {
		updated = st.LastSuccess.Format("15:04:05") + " (" + Ago(sh.now().Sub(st.LastSuccess)) + ")"
	}

	switch {
	case st.State == scheduler.Fetching || st.State == scheduler.Reconciling:
		return sh.style.busy.Render("⟳ Refreshing") + sh.style.label.Render(" · updated "+updated)
	case st.State == scheduler.FailedBackoff:
		return sh.style.bad.Render("✗ Refresh failed") + sh.style.label.Render(" · updated "+updated)
	case st.Stale():
		return sh.style.busy.Render("● Partial") + sh.style.label.Render(" · updated "+updated)
	default:
		return sh.style.good.Render("● Live") + sh.style.label.Render(" · updated "+updated)
	}
}

func (sh *StatusHeader) renderNetWorth() string {
	worth := format.NA
	if sh.netWorth.Valid {
		worth = format.USD(sh.netWorth.Decimal)
	}
	out := sh.style.label.Render("Net worth ") + sh.style.title.Render(worth)
	if sh.pnl.Valid {
		s := sh.style.good
		if sh.pnl.Decimal.IsNegative() {
			s = sh.style.bad
		}
		out += " " + s.Render(format.SignedUSD(sh.pnl.Decimal))
	}
	return out
}

// GetHeight returns the component height for layout calculations
func (sh *StatusHeader) GetHeight() int {
	return 3 // Border + content
}

// Ago renders a short age such as "12s ago" or "3m ago".
func Ago(d time.Duration) string {
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
