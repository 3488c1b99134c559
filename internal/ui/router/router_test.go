package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type fakeScreen struct {
	name     string
	msgs     int
	width    int
	capture  bool
	initCmds int
}

func (s *fakeScreen) Init() tea.Cmd {
	s.initCmds++
	return nil
}

func (s *fakeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.msgs++
	return s, nil
}

func (s *fakeScreen) View() string { return s.name }
func (s *fakeScreen) SetSize(w, h int) { s.width = w }
func (s *fakeScreen) CapturesInput() bool { return s.capture }

func TestRouterNavigation(t *testing.T) {
	root := &fakeScreen{name: "root"}
	r := New(root)
	r.SetSize(120, 40)

	help := &fakeScreen{name: "help"}
	r.Push(help)
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "help", r.View())
	assert.Equal(t, 120, help.width)
	assert.Equal(t, 1, help.initCmds)

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "root", r.View())

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth(), "the root screen is never popped")
	assert.Equal(t, 1, root.msgs, "esc on the root screen reaches it")
}

func TestRouterEscWhileCapturing(t *testing.T) {
	r := New(&fakeScreen{name: "root"})
	top := &fakeScreen{name: "top", capture: true}
	r.Push(top)

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, 1, top.msgs)
	assert.True(t, r.CapturesInput())
}

func TestRouterBroadcast(t *testing.T) {
	root := &fakeScreen{name: "root"}
	r := New(root)
	top := &fakeScreen{name: "top"}
	r.Push(top)

	r.Broadcast("data")
	assert.Equal(t, 1, root.msgs)
	assert.Equal(t, 1, top.msgs)

	r.Update("key")
	assert.Equal(t, 1, root.msgs)
	assert.Equal(t, 2, top.msgs)
}
