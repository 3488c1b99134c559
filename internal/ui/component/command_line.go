package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
)

// CommandLine is a single focused text input with history and live
// validation of what is being typed.
type CommandLine struct {
	input    textinput.Model
	validate func(string) error
	errText  string

	history []string
	histIdx int
	maxHist int

	width int

	// Styling
	inputStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewCommandLine creates a command line. validate may be nil.
func NewCommandLine(placeholder string, validate func(string) error) *CommandLine {
	palette := style.DefaultPalette()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 60

	return &CommandLine{
		input:    ti,
		validate: validate,
		maxHist:  50,

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),
	}
}

// Focus gives the input the keyboard and clears the previous text.
func (c *CommandLine) Focus() tea.Cmd {
	c.input.Reset()
	c.errText = ""
	c.histIdx = len(c.history)
	return c.input.Focus()
}

// Blur releases the keyboard.
func (c *CommandLine) Blur() {
	c.input.Blur()
	c.errText = ""
}

// Focused reports whether the input owns the keyboard.
func (c *CommandLine) Focused() bool {
	return c.input.Focused()
}

// Value returns the trimmed input.
func (c *CommandLine) Value() string {
	return strings.TrimSpace(c.input.Value())
}

// SetValue replaces the input text.
func (c *CommandLine) SetValue(s string) {
	c.input.SetValue(s)
	c.input.CursorEnd()
	c.check()
}

// Submit records the current input in the history and returns it.
func (c *CommandLine) Submit() string {
	v := c.Value()
	if v != "" && (len(c.history) == 0 || c.history[len(c.history)-1] != v) {
		c.history = append(c.history, v)
		if len(c.history) > c.maxHist {
			c.history = c.history[len(c.history)-c.maxHist:]
		}
	}
	c.histIdx = len(c.history)
	return v
}

// SetWidth sets the component width
func (c *CommandLine) SetWidth(width int) *CommandLine {
	c.width = width
	c.input.Width = max(width-8, 10)
	return c
}

// Update handles typing and history navigation.
func (c *CommandLine) Update(msg tea.Msg) (*CommandLine, tea.Cmd) {
	if !c.input.Focused() {
		return c, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "up":
			if c.histIdx > 0 {
				c.histIdx--
				c.SetValue(c.history[c.histIdx])
			}
			return c, nil
		case "down":
			if c.histIdx < len(c.history)-1 {
				c.histIdx++
				c.SetValue(c.history[c.histIdx])
			} else {
				c.histIdx = len(c.history)
				c.SetValue("")
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	c.check()
	return c, cmd
}

func (c *CommandLine) check() {
	c.errText = ""
	if c.validate == nil || c.Value() == "" {
		return
	}
	if err := c.validate(c.Value()); err != nil {
		c.errText = err.Error()
	}
}

// Error returns the validation message for the current text, if any.
func (c *CommandLine) Error() string {
	return c.errText
}

// View renders the input and, below it, the validation message.
func (c *CommandLine) View() string {
	s := c.inputStyle
	if c.input.Focused() {
		s = c.focusedStyle
	}
	if c.width > 4 {
		s = s.Width(c.width - 2)
	}

	out := s.Render(c.input.View())
	if c.errText != "" {
		out += "\n" + c.errorStyle.Render("  "+c.errText)
	}
	return out
}
