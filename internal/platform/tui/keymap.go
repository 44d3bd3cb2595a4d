package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/window-flappy/internal/core"
)

// KeyMap defines the key bindings of a game.
type KeyMap struct {
	Jump    key.Binding
	Dismiss key.Binding // Any key works; the binding only feeds the help line
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Jump, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Jump, k.Dismiss, k.Quit}}
}

// DismissHelp returns the bindings shown while the final score is up.
func (k KeyMap) DismissHelp() help.KeyMap {
	return bindingList{k.Dismiss, k.Quit}
}

// bindingList is a fixed list of bindings for the help view.
type bindingList []key.Binding

func (l bindingList) ShortHelp() []key.Binding  { return l }
func (l bindingList) FullHelp() [][]key.Binding { return [][]key.Binding{l} }

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return NewKeyMap([]string{"space", "up", "w"})
}

// NewKeyMap creates bindings with the given jump keys. "space" may be used
// for the space bar.
func NewKeyMap(jump []string) KeyMap {
	keys := make([]string, 0, len(jump))
	for _, k := range jump {
		if k == "space" {
			k = " "
		}
		keys = append(keys, k)
	}

	return KeyMap{
		Jump: key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(jump, "/"), "flap"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("any key/click", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MapKeyToFrame updates an input frame based on a key message.
// Every key counts as a key press; jump keys also flap.
// Returns true if the key was a quit request.
func (k KeyMap) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	if key.Matches(msg, k.Quit) {
		frame.Set(core.ActionQuit)
		return true
	}

	frame.Set(core.ActionKey)
	if key.Matches(msg, k.Jump) {
		frame.Set(core.ActionJump)
	}
	return false
}
