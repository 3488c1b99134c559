package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline is a one-line chart of a series, oldest value on the left.
type Sparkline struct {
	data  []float64
	width int
	color lipgloss.Color

	// Fixed scale bounds. When lo == hi the data range is used.
	lo, hi float64
}

// NewSparkline creates a new sparkline component
func NewSparkline(width int) *Sparkline {
	return &Sparkline{
		width: width,
		color: style.DefaultPalette().Primary,
	}
}

// SetData sets the data points. Only the last width points are drawn.
func (s *Sparkline) SetData(data []float64) *Sparkline {
	s.data = make([]float64, len(data))
	copy(s.data, data)
	return s
}

// SetWidth sets the width of the sparkline
func (s *Sparkline) SetWidth(width int) *Sparkline {
	s.width = width
	return s
}

// SetColor sets the color for the sparkline
func (s *Sparkline) SetColor(color lipgloss.Color) *Sparkline {
	s.color = color
	return s
}

// SetScale pins the vertical scale, e.g. 0..100 for an index.
func (s *Sparkline) SetScale(lo, hi float64) *Sparkline {
	s.lo, s.hi = lo, hi
	return s
}

// View renders the sparkline
func (s *Sparkline) View() string {
	if s.width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(s.color).Render(s.Blocks())
}

// Blocks returns the unstyled chart, padded to the width.
func (s *Sparkline) Blocks() string {
	points := s.data
	if len(points) > s.width {
		points = points[len(points)-s.width:]
	}
	if len(points) == 0 {
		return strings.Repeat("▁", s.width)
	}

	lo, hi := s.lo, s.hi
	if lo == hi {
		lo, hi = points[0], points[0]
		for _, v := range points {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	var b strings.Builder
	for _, v := range points {
		if hi == lo {
			b.WriteRune(sparkChars[len(sparkChars)/2])
			continue
		}
		idx := int((v - lo) / (hi - lo) * float64(len(sparkChars)-1))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteRune(sparkChars[idx])
	}
	if pad := s.width - len(points); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	return b.String()
}
