package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/ui/format"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
)

// AllocationList renders the portfolio share of every priced holding as a
// horizontal bar.
type AllocationList struct {
	allocations []domain.Allocation
	width       int

	symbolStyle lipgloss.Style
	shareStyle  lipgloss.Style
	filledStyle lipgloss.Style
	emptyStyle  lipgloss.Style
	valueStyle  lipgloss.Style
}

// NewAllocationList creates an allocation list of the given width.
func NewAllocationList(width int) *AllocationList {
	palette := style.DefaultPalette()
	return &AllocationList{
		width:       width,
		symbolStyle: lipgloss.NewStyle().Foreground(palette.Header).Bold(true),
		shareStyle:  lipgloss.NewStyle().Foreground(palette.Primary),
		filledStyle: lipgloss.NewStyle().Foreground(palette.Primary),
		emptyStyle:  lipgloss.NewStyle().Foreground(palette.TextMuted),
		valueStyle:  lipgloss.NewStyle().Foreground(palette.Text),
	}
}

// SetAllocations sets the rows, expected largest first.
func (a *AllocationList) SetAllocations(allocations []domain.Allocation) *AllocationList {
	a.allocations = allocations
	return a
}

// SetWidth sets the available width
func (a *AllocationList) SetWidth(width int) *AllocationList {
	a.width = width
	return a
}

// BarWidth shrinks the bar on narrow panels.
func (a *AllocationList) BarWidth() int {
	switch {
	case a.width > 50:
		return 15
	case a.width > 40:
		return 10
	default:
		return 5
	}
}

// View renders one line per allocation.
func (a *AllocationList) View() string {
	if len(a.allocations) == 0 {
		return a.emptyStyle.Render("No priced holdings")
	}

	barWidth := a.BarWidth()
	lines := make([]string, 0, len(a.allocations))
	for _, alloc := range a.allocations {
		filled := Bar(alloc.Share.InexactFloat64(), barWidth)
		lines = append(lines, fmt.Sprintf("%s %s %s%s %s",
			a.symbolStyle.Render(fmt.Sprintf("%-6s", Truncate(alloc.Symbol, 6))),
			a.shareStyle.Render(fmt.Sprintf("%6s", format.Share(alloc.Share))),
			a.filledStyle.Render(strings.Repeat("█", filled)),
			a.emptyStyle.Render(strings.Repeat("░", barWidth-filled)),
			a.valueStyle.Render(format.USD(alloc.Value)),
		))
	}
	return strings.Join(lines, "\n")
}

// Bar returns how many of width cells a percentage fills, rounded and
// clamped to the bar.
func Bar(percent float64, width int) int {
	filled := int(percent*float64(width)/100 + 0.5)
	return max(0, min(filled, width))
}
