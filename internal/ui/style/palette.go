package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Color palette
var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Warnings, headers
	Green   = lipgloss.Color("#2AFFAA") // Gains
	Red     = lipgloss.Color("#FF5555") // Losses / errors
	Blue    = lipgloss.Color("#3B82F6") // Info
	Orange  = lipgloss.Color("#FF8C42")

	Base03 = lipgloss.Color("#1B1D23") // Background
	Base02 = lipgloss.Color("#262831") // Darker background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Header    lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	Gain lipgloss.Color
	Loss lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Header:    Yellow,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		Gain: Green,
		Loss: Red,
	}
}

// ChangeColor picks the gain or loss color for a signed value. Missing
// values use the regular text color.
func (p Palette) ChangeColor(d decimal.NullDecimal) lipgloss.Color {
	switch {
	case !d.Valid:
		return p.Text
	case d.Decimal.IsNegative():
		return p.Loss
	default:
		return p.Gain
	}
}

// SentimentColor colors a Fear & Greed value from extreme fear to extreme
// greed.
func SentimentColor(value int) lipgloss.Color {
	switch {
	case value < 25:
		return Red
	case value < 45:
		return Orange
	case value <= 55:
		return Yellow
	case value <= 75:
		return Green
	default:
		return Cyan
	}
}
