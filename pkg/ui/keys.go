// Package ui provides the Bubble Tea TUI for the swap desk.
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit     key.Binding
	FromNext key.Binding
	ToNext   key.Binding
	Flip     key.Binding
	Slippage key.Binding
	MEV      key.Binding
	Wallet   key.Binding
	Confirm  key.Binding
	Clear    key.Binding
	Help     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		FromNext: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "from token"),
		),
		ToNext: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑/↓", "to token"),
		),
		Flip: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "flip pair"),
		),
		Slippage: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "slippage"),
		),
		MEV: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "mev protection"),
		),
		Wallet: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "wallet"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "swap"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "help"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Flip, k.Slippage, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.FromNext, k.ToNext, k.Flip, k.Clear},
		{k.Slippage, k.MEV, k.Wallet, k.Confirm},
		{k.Help, k.Quit},
	}
}
