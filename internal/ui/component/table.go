package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// Cell is one rendered value. A nil Color uses the row style.
type Cell struct {
	Text  string
	Color lipgloss.TerminalColor
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        [][]Cell
	width       int
	height      int
	selectedRow int
	offset      int

	// Sort indicator
	sortColumn    int
	sortIndicator string

	// Styling
	headerStyle      lipgloss.Style
	activeHeader     lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style

	emptyText string
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		sortColumn: -1,

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		activeHeader: lipgloss.NewStyle().
			Foreground(palette.Header).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		emptyText: "Nothing to show",
	}
}

// SetColumns sets the table columns
func (t *Table) SetColumns(columns []TableColumn) *Table {
	t.columns = make([]TableColumn, len(columns))
	copy(t.columns, columns)
	return t
}

// SetRows replaces all rows and keeps the selection in range.
func (t *Table) SetRows(rows [][]Cell) *Table {
	t.rows = rows
	t.SetSelectedRow(t.selectedRow)
	return t
}

// SetSort marks column index col with indicator. A negative col clears it.
func (t *Table) SetSort(col int, indicator string) *Table {
	t.sortColumn = col
	t.sortIndicator = indicator
	return t
}

// SetEmptyText sets the placeholder shown when there are no rows.
func (t *Table) SetEmptyText(text string) *Table {
	t.emptyText = text
	return t
}

// SetSize sets the table dimensions. Height bounds the number of visible
// rows; zero means unbounded.
func (t *Table) SetSize(width, height int) *Table {
	t.width = width
	t.height = height
	return t
}

// SetSelectedRow sets the currently selected row, clamped to the rows.
func (t *Table) SetSelectedRow(index int) *Table {
	switch {
	case len(t.rows) == 0:
		t.selectedRow = 0
	case index < 0:
		t.selectedRow = 0
	case index >= len(t.rows):
		t.selectedRow = len(t.rows) - 1
	default:
		t.selectedRow = index
	}
	return t
}

// GetSelectedRow returns the currently selected row index
func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	return t.SetSelectedRow(t.selectedRow - 1)
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	return t.SetSelectedRow(t.selectedRow + 1)
}

// GetRowCount returns the number of rows
func (t *Table) GetRowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	var content strings.Builder

	// Header
	for i, col := range t.columns {
		header := col.Header
		hs := t.headerStyle
		if i == t.sortColumn {
			header += " " + t.sortIndicator
			hs = t.activeHeader
		}
		content.WriteString(renderCell(header, col.Width, col.Align, hs))
		if i < len(t.columns)-1 {
			content.WriteString("│")
		}
	}
	content.WriteString("\n")

	for i, col := range t.columns {
		content.WriteString(strings.Repeat("─", col.Width))
		if i < len(t.columns)-1 {
			content.WriteString("┼")
		}
	}

	if len(t.rows) == 0 {
		content.WriteString("\n")
		content.WriteString(lipgloss.NewStyle().
			Foreground(style.DefaultPalette().TextMuted).
			Padding(0, 1).
			Render(t.emptyText))
		return t.borderStyle.Render(content.String())
	}

	start, end := t.visibleRange()
	for rowIndex := start; rowIndex < end; rowIndex++ {
		content.WriteString("\n")
		selected := rowIndex == t.selectedRow
		for i, col := range t.columns {
			var cell Cell
			if i < len(t.rows[rowIndex]) {
				cell = t.rows[rowIndex][i]
			}

			cs := t.rowStyle
			if selected {
				cs = t.selectedRowStyle
			} else if cell.Color != nil {
				cs = cs.Foreground(cell.Color)
			}
			content.WriteString(renderCell(cell.Text, col.Width, col.Align, cs))
			if i < len(t.columns)-1 {
				content.WriteString("│")
			}
		}
	}

	return t.borderStyle.Render(content.String())
}

// visibleRange scrolls the window so the selected row stays visible.
func (t *Table) visibleRange() (int, int) {
	n := len(t.rows)
	if t.height <= 0 || n <= t.height {
		t.offset = 0
		return 0, n
	}
	if t.selectedRow < t.offset {
		t.offset = t.selectedRow
	}
	if t.selectedRow >= t.offset+t.height {
		t.offset = t.selectedRow - t.height + 1
	}
	if t.offset > n-t.height {
		t.offset = n - t.height
	}
	return t.offset, t.offset + t.height
}

// renderCell renders a single table cell. Width includes the style padding.
func renderCell(content string, width int, align lipgloss.Position, s lipgloss.Style) string {
	inner := width - s.GetHorizontalPadding()
	if inner < 1 {
		inner = 1
	}
	content = Truncate(content, inner)
	return s.Width(width).MaxWidth(width).Align(align).Render(content)
}

// Truncate shortens s to at most width terminal cells, marking the cut
// with an ellipsis.
func Truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return string([]rune(s)[:width])
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
