// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the help view.
	Help key.Binding

	// Open loads a document from a path.
	Open key.Binding

	// Tool selection.
	Highlight key.Binding
	Underline key.Binding
	Comment   key.Binding
	Signature key.Binding

	// Cursor movement on the page.
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Act clicks at the cursor, or starts and commits a text selection.
	Act key.Binding

	// NextPage and PrevPage move between pages.
	NextPage key.Binding
	PrevPage key.Binding

	// ZoomIn and ZoomOut step the zoom factor.
	ZoomIn  key.Binding
	ZoomOut key.Binding

	// Fullscreen toggles fullscreen; Escape leaves it or cancels a selection.
	Fullscreen key.Binding
	Escape     key.Binding

	// Color cycles the highlight colour.
	Color key.Binding

	// Undo removes the last annotation on the page.
	Undo key.Binding

	// Layers toggles focus on the annotation list.
	Layers key.Binding

	// Delete removes the annotation selected in the list.
	Delete key.Binding

	// Export writes the annotated document.
	Export key.Binding

	// Save confirms a dialog.
	Save key.Binding

	// Bold and Italic toggle comment formatting.
	Bold   key.Binding
	Italic key.Binding

	// SwitchMode flips between drawing and typing a signature.
	SwitchMode key.Binding

	// Pen lifts or lowers the pen on the signature pad.
	Pen key.Binding

	// Clear empties the signature pad.
	Clear key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Highlight:  key.NewBinding(key.WithKeys("1", "h"), key.WithHelp("1/h", "highlight")),
		Underline:  key.NewBinding(key.WithKeys("2", "u"), key.WithHelp("2/u", "underline")),
		Comment:    key.NewBinding(key.WithKeys("3", "c"), key.WithHelp("3/c", "comment")),
		Signature:  key.NewBinding(key.WithKeys("4", "s"), key.WithHelp("4/s", "signature")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		Act:        key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "place/select")),
		NextPage:   key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Fullscreen: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
		Escape:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Color:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "colour")),
		Undo:       key.NewBinding(key.WithKeys("ctrl+z", "z"), key.WithHelp("z", "undo")),
		Layers:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "layers")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete", "backspace"), key.WithHelp("d", "delete")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Bold:       key.NewBinding(key.WithKeys("ctrl+b", "alt+b"), key.WithHelp("ctrl+b", "bold")),
		Italic:     key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "italic")),
		SwitchMode: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "draw/type")),
		Pen:        key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pen up/down")),
		Clear:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Act, k.Undo, k.Export, k.Help, k.Quit}
}

// EmptyHelp returns keybindings shown before a document is loaded.
func (k *KeyMap) EmptyHelp() []key.Binding {
	return []key.Binding{k.Open, k.Help, k.Quit}
}

// LayersHelp returns keybindings for the annotation list.
func (k *KeyMap) LayersHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Delete, k.Layers}
}

// CommentHelp returns keybindings for the comment dialog.
func (k *KeyMap) CommentHelp() []key.Binding {
	return []key.Binding{k.Save, k.Bold, k.Italic, k.Escape}
}

// SignatureHelp returns keybindings for the signature dialog.
func (k *KeyMap) SignatureHelp() []key.Binding {
	return []key.Binding{k.SwitchMode, k.Pen, k.Clear, k.Save, k.Escape}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Export, k.Help, k.Quit},
		{k.Highlight, k.Underline, k.Comment, k.Signature, k.Color},
		{k.Up, k.Down, k.Left, k.Right, k.Act, k.Escape},
		{k.NextPage, k.PrevPage, k.ZoomIn, k.ZoomOut, k.Fullscreen},
		{k.Undo, k.Layers, k.Delete},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
