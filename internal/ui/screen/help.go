package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rovshanmuradov/coinwatch/internal/ui"
	"github.com/rovshanmuradov/coinwatch/internal/ui/component"
	"github.com/rovshanmuradov/coinwatch/internal/ui/router"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
)

const commandHelp = `# Commands

Press **e** (or **:**) on the dashboard to open the command line, type a
command and press **enter**. **esc** cancels.

| Command | Effect |
|---|---|
| ` + "`add <id>`" + ` | add to the watchlist (same as ` + "`-w`" + `) |
| ` + "`add <id> -w`" + ` | add to the watchlist |
| ` + "`add <id> -p <amount> <price>`" + ` | add to the portfolio, replacing any previous holding |
| ` + "`add <id> -wp <amount> <price>`" + ` | both of the above |
| ` + "`rm <id>`" + ` | remove from both lists (same as ` + "`-wp`" + `) |
| ` + "`rm <id> -w`" + ` | remove from the watchlist |
| ` + "`rm <id> -p`" + ` | remove from the portfolio and drop the holding |
| ` + "`rm <id> -wp`" + ` | remove from both lists and forget the token |

` + "`<id>`" + ` is the CoinMarketCap slug, e.g. ` + "`bitcoin`" + ` or ` + "`ethereum`" + `.
Amounts and prices must be non-negative numbers. ` + "`-pw`" + ` is accepted for ` + "`-wp`" + `.
Adding a flag that is already set, or removing one that is not, does nothing.

## Examples

    add solana -w
    add bitcoin -p 0.5 42000
    rm solana
`

// HelpScreen renders the command grammar and key bindings.
type HelpScreen struct {
	width    int
	height   int
	keyMap   ui.KeyMap
	viewport viewport.Model
	helpBar  *component.HelpBar
	rendered int
}

// NewHelpScreen creates a new help screen
func NewHelpScreen() *HelpScreen {
	return &HelpScreen{
		keyMap:   ui.DefaultKeyMap(),
		viewport: viewport.New(80, 20),
		helpBar:  component.NewHelpBar(),
	}
}

// Init initializes the help screen
func (s *HelpScreen) Init() tea.Cmd {
	return nil
}

// Update handles scrolling
func (s *HelpScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, s.keyMap.Help) {
		return s, navigate(ui.RouteDashboard)
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

// View renders the help screen
func (s *HelpScreen) View() string {
	return strings.Join([]string{
		style.TitleStyle.Render("coinwatch help"),
		s.viewport.View(),
		s.helpBar.SetKeyBindings(s.keyMap.ContextualHelp(ui.RouteHelp)).View(),
	}, "\n")
}

// SetSize sets the screen dimensions and re-renders the markdown for the
// new width.
func (s *HelpScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	s.viewport.Width = max(width, 20)
	s.viewport.Height = max(height-4, 5)

	if width != s.rendered {
		s.viewport.SetContent(s.render(max(width-4, 20)))
		s.rendered = width
	}
}

func (s *HelpScreen) render(wrap int) string {
	source := commandHelp + "\n" + keyTable(s.keyMap)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return source
	}
	out, err := r.Render(source)
	if err != nil {
		return source
	}
	return out
}

// keyTable renders the full key map as a markdown table.
func keyTable(k ui.KeyMap) string {
	var b strings.Builder
	b.WriteString("# Keys\n\n| Key | Action |\n|---|---|\n")
	for _, group := range k.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", strings.Join(binding.Keys(), "`, `"), h.Desc)
		}
	}
	return b.String()
}
