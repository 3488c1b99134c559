package component

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/coinwatch/internal/logger"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
	"go.uber.org/zap/zapcore"
)

// LogSource is the in-memory log ring the viewer reads from.
type LogSource interface {
	GetRecentLogs(limit int) []logger.LogEntry
}

// LogViewer shows the most recent log entries at or above a minimum level.
type LogViewer struct {
	source   LogSource
	viewport viewport.Model
	minLevel zapcore.Level
	follow   bool
	limit    int
	shown    int
	style    LogViewerStyle
}

// LogViewerStyle contains all styling for the log viewer
type LogViewerStyle struct {
	timestamp lipgloss.Style
	name      lipgloss.Style
	fields    lipgloss.Style
	levels    map[zapcore.Level]lipgloss.Style
}

// NewLogViewer creates a log viewer showing up to limit entries.
func NewLogViewer(source LogSource, limit int) *LogViewer {
	palette := style.DefaultPalette()

	return &LogViewer{
		source:   source,
		minLevel: zapcore.InfoLevel,
		follow:   true,
		limit:    limit,
		style: LogViewerStyle{
			timestamp: lipgloss.NewStyle().Foreground(palette.TextMuted),
			name:      lipgloss.NewStyle().Foreground(palette.Secondary),
			fields:    lipgloss.NewStyle().Foreground(palette.TextSecondary),
			levels: map[zapcore.Level]lipgloss.Style{
				zapcore.DebugLevel: style.DebugStyle,
				zapcore.InfoLevel:  style.InfoStyle,
				zapcore.WarnLevel:  style.WarnStyle,
				zapcore.ErrorLevel: style.ErrorStyle,
				zapcore.FatalLevel: style.FatalStyle,
			},
		},
		viewport: viewport.New(80, 10),
	}
}

// SetSize sets the component dimensions
func (lv *LogViewer) SetSize(width, height int) {
	lv.viewport.Width = max(width, 10)
	lv.viewport.Height = max(height, 2)
	lv.Refresh()
}

// SetMinLevel hides entries below level.
func (lv *LogViewer) SetMinLevel(level zapcore.Level) {
	lv.minLevel = level
	lv.Refresh()
}

// MinLevel returns the current filter level.
func (lv *LogViewer) MinLevel() zapcore.Level {
	return lv.minLevel
}

// ToggleFollow switches between following new entries and free scrolling.
func (lv *LogViewer) ToggleFollow() {
	lv.follow = !lv.follow
	if lv.follow {
		lv.viewport.GotoBottom()
	}
}

// Following reports whether the view sticks to the newest entry.
func (lv *LogViewer) Following() bool {
	return lv.follow
}

// Shown returns how many entries passed the filter on the last refresh.
func (lv *LogViewer) Shown() int {
	return lv.shown
}

// Update handles viewport scrolling. Scrolling up leaves follow mode.
func (lv *LogViewer) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	lv.viewport, cmd = lv.viewport.Update(msg)
	if !lv.viewport.AtBottom() {
		lv.follow = false
	}
	return cmd
}

// Refresh reloads the entries from the source.
func (lv *LogViewer) Refresh() {
	if lv.source == nil {
		lv.viewport.SetContent("No log buffer available")
		return
	}

	entries := lv.source.GetRecentLogs(lv.limit)
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if ParseLevel(entry.Level) < lv.minLevel {
			continue
		}
		lines = append(lines, lv.formatLogEntry(entry))
	}
	lv.shown = len(lines)

	if len(lines) == 0 {
		lv.viewport.SetContent("No logs match current filter")
		return
	}
	lv.viewport.SetContent(strings.Join(lines, "\n"))
	if lv.follow {
		lv.viewport.GotoBottom()
	}
}

// View renders the log viewer
func (lv *LogViewer) View() string {
	return lv.viewport.View()
}

// formatLogEntry renders "time LEVEL name message key=value ..."
func (lv *LogViewer) formatLogEntry(entry logger.LogEntry) string {
	level := ParseLevel(entry.Level)
	ls, ok := lv.style.levels[level]
	if !ok {
		ls = style.InfoStyle
	}

	parts := []string{
		lv.style.timestamp.Render(entry.Timestamp.Format("15:04:05")),
		ls.Render(fmt.Sprintf("%-5s", level.CapitalString())),
	}
	if name, ok := entry.Fields["logger"].(string); ok && name != "" {
		parts = append(parts, lv.style.name.Render(name))
	}
	parts = append(parts, entry.Message)
	if f := formatFields(entry.Fields); f != "" {
		parts = append(parts, lv.style.fields.Render(f))
	}
	return strings.Join(parts, " ")
}

// formatFields renders the extra fields sorted by key.
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "logger" || k == "caller" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(out, " ")
}

// ParseLevel maps a level name to a zap level. Unknown names count as info.
func ParseLevel(s string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
