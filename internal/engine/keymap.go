package engine

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/vovakirdan/termfx/internal/core"
)

// Keymap translates keys to actions. Bindings are checked in order, so the
// first binding that matches wins.
type Keymap struct {
	bindings []binding
}

type binding struct {
	action core.Action
	key    key.Binding
}

// NewKeymap returns the default bindings: arrows plus WASD and vim keys for
// movement, space to fire, enter to confirm, p to pause and r to restart.
func NewKeymap() *Keymap {
	km := &Keymap{}
	km.Bind(core.ActionUp, key.NewBinding(key.WithKeys("up", "w", "k"), key.WithHelp("↑/w", "up")))
	km.Bind(core.ActionDown, key.NewBinding(key.WithKeys("down", "s", "j"), key.WithHelp("↓/s", "down")))
	km.Bind(core.ActionLeft, key.NewBinding(key.WithKeys("left", "a", "h"), key.WithHelp("←/a", "left")))
	km.Bind(core.ActionRight, key.NewBinding(key.WithKeys("right", "d", "l"), key.WithHelp("→/d", "right")))
	km.Bind(core.ActionFire, key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "fire")))
	km.Bind(core.ActionConfirm, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")))
	km.Bind(core.ActionPause, key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")))
	km.Bind(core.ActionRestart, key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")))
	return km
}

// Bind appends a binding for action.
func (km *Keymap) Bind(action core.Action, b key.Binding) {
	km.bindings = append(km.bindings, binding{action: action, key: b})
}

// Lookup returns the action bound to the key name, or ActionNone.
func (km *Keymap) Lookup(name string) core.Action {
	if km == nil {
		return core.ActionNone
	}
	for _, b := range km.bindings {
		if key.Matches(keyName(name), b.key) {
			return b.action
		}
	}
	return core.ActionNone
}

// Help returns the enabled bindings' help entries in binding order.
func (km *Keymap) Help() []key.Help {
	var out []key.Help
	for _, b := range km.bindings {
		if b.key.Enabled() {
			out = append(out, b.key.Help())
		}
	}
	return out
}

// keyName lets a plain string be matched against key bindings.
type keyName string

func (k keyName) String() string { return string(k) }
